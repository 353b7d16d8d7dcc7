package template_installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyBufferSize is the chunk size in which file contents are streamed.
const copyBufferSize = 32 * 1024

// CopyTree copies the contents of the directory src into dst, recursing into
// subdirectories. dst and any missing parents are created first, existing files in dst
// are overwritten.
//
// A failure to copy one entry does not stop the copying of its siblings. Each failure
// is logged, and the first one is returned after everything else has been copied.
// Entries that are neither directories nor regular files (e.g. symlinks) are skipped.
func CopyTree(src, dst string) error {
	logger := GetLogger("copy")
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	buf := make([]byte, copyBufferSize)
	var firstErr error
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		switch {
		case entry.IsDir():
			err = CopyTree(srcPath, dstPath)
		case entry.Type().IsRegular():
			err = copyFile(srcPath, dstPath, buf)
		default:
			logger.Debug().Str("path", srcPath).Msg("Skipping non-regular file")
			continue
		}
		if err != nil {
			logger.Warn().Err(err).Str("src", srcPath).Str("dst", dstPath).Msg("Copy failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// CopyFile copies a single regular file, overwriting dst if it exists.
func CopyFile(src, dst string) error {
	return copyFile(src, dst, make([]byte, copyBufferSize))
}

func copyFile(src, dst string, buf []byte) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()
	if _, err = io.CopyBuffer(out, in, buf); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
