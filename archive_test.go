package template_installer

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArchive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.txt":         "top",
		"dir/nested.json": "{}",
		"dir/empty/":      "",
	})
	archivePath := filepath.Join(t.TempDir(), "out.tgz")

	require.NoError(t, BuildArchive(root, archivePath))

	entries := readArchive(t, archivePath)
	assert.Equal(t, map[string]archiveEntry{
		"top.txt":         {typeflag: tar.TypeReg, mode: 0644, content: "top"},
		"dir/":            {typeflag: tar.TypeDir, mode: 0755},
		"dir/nested.json": {typeflag: tar.TypeReg, mode: 0644, content: "{}"},
		"dir/empty/":      {typeflag: tar.TypeDir, mode: 0755},
	}, entries)
}

func TestBuildArchiveNormalizesPermissions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"private/secret.txt": "s", "script.sh": "#!/bin/sh"})
	require.NoError(t, os.Chmod(filepath.Join(root, "private", "secret.txt"), 0600))
	require.NoError(t, os.Chmod(filepath.Join(root, "script.sh"), 0777))
	require.NoError(t, os.Chmod(filepath.Join(root, "private"), 0700))
	archivePath := filepath.Join(t.TempDir(), "out.tgz")

	require.NoError(t, BuildArchive(root, archivePath))

	for name, entry := range readArchive(t, archivePath) {
		if entry.typeflag == tar.TypeDir {
			assert.EqualValues(t, 0755, entry.mode, name)
		} else {
			assert.EqualValues(t, 0644, entry.mode, name)
		}
	}
}

func TestBuildArchiveLongAndUnicodePaths(t *testing.T) {
	root := t.TempDir()
	longDir := strings.Repeat("d", 60) + "/" + strings.Repeat("e", 60)
	longName := longDir + "/" + strings.Repeat("f", 60) + ".asset"
	unicodeName := "Ассеты/текстура.png"
	writeTree(t, root, map[string]string{longName: "long", unicodeName: "ü"})
	archivePath := filepath.Join(t.TempDir(), "out.tgz")

	require.NoError(t, BuildArchive(root, archivePath))

	entries := readArchive(t, archivePath)
	assert.Equal(t, "long", entries[longName].content)
	assert.Equal(t, "ü", entries[unicodeName].content)
	assert.Contains(t, entries, "Ассеты/")
}

func TestBuildArchiveLargeFile(t *testing.T) {
	root := t.TempDir()
	content := bytes.Repeat([]byte("0123456789abcdef"), 3*copyBufferSize/16+7)
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.bin"), content, 0644))
	archivePath := filepath.Join(t.TempDir(), "out.tgz")

	require.NoError(t, BuildArchive(root, archivePath))

	assert.Equal(t, string(content), readArchive(t, archivePath)["big.bin"].content)
}

func TestBuildArchiveEmptyRoot(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "out.tgz")

	require.NoError(t, BuildArchive(t.TempDir(), archivePath))

	assert.Empty(t, readArchive(t, archivePath))
}

func TestBuildArchiveSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"file.txt": "content"})
	if err := os.Symlink("file.txt", filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	var logs bytes.Buffer
	defaultLogger, defaultLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&logs)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = defaultLogger
		zerolog.SetGlobalLevel(defaultLevel)
	})
	archive := filepath.Join(t.TempDir(), "template.tgz")

	require.NoError(t, BuildArchive(root, archive))

	entries := readArchive(t, archive)
	assert.Contains(t, entries, "file.txt")
	assert.NotContains(t, entries, "link.txt")
	assert.Contains(t, logs.String(), "Skipping non-regular file")
	assert.Contains(t, logs.String(), "link.txt")
}

func TestBuildArchiveFailures(t *testing.T) {
	t.Run("output not creatable", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "missing", "out.tgz")
		err := BuildArchive(t.TempDir(), archivePath)
		assert.Error(t, err)
		assert.NoFileExists(t, archivePath)
	})
	t.Run("root missing removes partial archive", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "out.tgz")
		err := BuildArchive(filepath.Join(t.TempDir(), "missing"), archivePath)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.NoFileExists(t, archivePath)
	})
}
