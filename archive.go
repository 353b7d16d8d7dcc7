package template_installer

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Permission bits of all archive entries, independent of the source files.
const (
	archiveDirMode  = 0755
	archiveFileMode = 0644
)

// BuildArchive writes every file and directory beneath root into a new gzip-compressed
// tar archive at archivePath. Entry names are relative to root, slash-separated, and
// directories end in a slash; root itself has no entry. Headers use the PAX format, so
// long and non-ASCII paths are kept intact.
//
// If anything fails, including flushing the compressed stream on close, the error is
// returned and the incomplete archive file is removed.
func BuildArchive(root, archivePath string) (err error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(archivePath)
		}
	}()

	zw := gzip.NewWriter(out)
	tw := tar.NewWriter(zw)
	w := archiveWriter{tw: tw, buf: make([]byte, copyBufferSize)}
	if err = w.writeDir(root, ""); err != nil {
		return err
	}
	if err = tw.Close(); err != nil {
		return fmt.Errorf("finish tar stream: %w", err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finish gzip stream: %w", err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	logger := GetLogger("archive")
	logger.Debug().
		Str("root", root).
		Str("archive", archivePath).
		Int("entries", w.entries).
		Msg("Archive written")
	return nil
}

// archiveWriter emits one tar entry at a time. Each file body is written completely
// before the next header.
type archiveWriter struct {
	tw      *tar.Writer
	buf     []byte
	entries int
}

// writeDir writes entries for the contents of dir, whose archive name is prefix ("" for
// the archive root).
func (w *archiveWriter) writeDir(dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		fsPath := filepath.Join(dir, entry.Name())
		name := path.Join(prefix, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", fsPath, err)
		}
		switch {
		case info.IsDir():
			if err := w.writeHeader(name+"/", tar.TypeDir, archiveDirMode, 0, info.ModTime()); err != nil {
				return err
			}
			if err := w.writeDir(fsPath, name); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := w.writeFile(fsPath, name, info); err != nil {
				return err
			}
		default:
			logger := GetLogger("archive")
			logger.Debug().Str("path", fsPath).Msg("Skipping non-regular file")
		}
	}
	return nil
}

func (w *archiveWriter) writeFile(fsPath, name string, info os.FileInfo) error {
	f, err := os.Open(fsPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", fsPath, err)
	}
	defer f.Close()
	size := info.Size()
	if err := w.writeHeader(name, tar.TypeReg, archiveFileMode, size, info.ModTime()); err != nil {
		return err
	}
	n, err := io.CopyBuffer(w.tw, io.LimitReader(f, size), w.buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if n != size {
		return fmt.Errorf("write %s: file shrank from %d to %d bytes", name, size, n)
	}
	return nil
}

func (w *archiveWriter) writeHeader(
	name string, typeflag byte, mode int64, size int64, modTime time.Time,
) error {
	hdr := &tar.Header{
		Typeflag: typeflag,
		Name:     name,
		Mode:     mode,
		Size:     size,
		ModTime:  modTime.Truncate(time.Second),
		Format:   tar.FormatPAX,
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	w.entries++
	return nil
}
