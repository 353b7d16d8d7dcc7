package template_installer

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

type archiveEntry struct {
	typeflag byte
	mode     int64
	content  string
}

// writeTree creates files (and, for names ending in "/", directories) below root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// readArchive reads back a gzip-compressed tar archive, keyed by entry name.
func readArchive(t *testing.T, path string) map[string]archiveEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]archiveEntry)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		require.NotContains(t, entries, hdr.Name, "duplicate entry")
		entries[hdr.Name] = archiveEntry{
			typeflag: hdr.Typeflag,
			mode:     hdr.Mode,
			content:  string(content),
		}
	}
	return entries
}

func testConfig(t *testing.T, mode Mode) *Config {
	t.Helper()
	config, err := ParseConfig([]byte("mode: " + string(mode)))
	require.NoError(t, err)
	config.StagingDirName = "template_installer_" + filepath.Base(filepath.Dir(t.TempDir()))
	return config
}
