package template_installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"a.txt":           "a",
		"sub/b.txt":       "b",
		"sub/deep/c.txt":  "c",
		"empty/":          "",
		"sub/deep/empty/": "",
	})
	dst := filepath.Join(t.TempDir(), "not", "yet", "there")

	require.NoError(t, CopyTree(src, dst))

	for name, want := range map[string]string{"a.txt": "a", "sub/b.txt": "b", "sub/deep/c.txt": "c"} {
		got, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)
	}
	for _, dir := range []string{"empty", "sub/deep/empty"} {
		info, err := os.Stat(filepath.Join(dst, filepath.FromSlash(dir)))
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}
}

func TestCopyTreeOverwrites(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"f.txt": "new"})
	writeTree(t, dst, map[string]string{"f.txt": "old content that is longer", "keep.txt": "keep"})

	require.NoError(t, CopyTree(src, dst))

	got, err := os.ReadFile(filepath.Join(dst, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	got, err = os.ReadFile(filepath.Join(dst, "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}

func TestCopyTreeMissingSource(t *testing.T) {
	err := CopyTree(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopyTreeContinuesAfterFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})
	require.NoError(t, os.Chmod(filepath.Join(src, "b.txt"), 0))
	dst := t.TempDir()

	err := CopyTree(src, dst)

	assert.ErrorIs(t, err, os.ErrPermission)
	for _, name := range []string{"a.txt", "c.txt"} {
		assert.FileExists(t, filepath.Join(dst, name))
	}
}

func TestCopyTreeSkipsSymlinks(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "a"})
	if err := os.Symlink(filepath.Join(src, "a.txt"), filepath.Join(src, "link")); err != nil {
		t.Skip("symlinks not supported:", err)
	}
	dst := t.TempDir()

	require.NoError(t, CopyTree(src, dst))

	assert.FileExists(t, filepath.Join(dst, "a.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "link"))
}
