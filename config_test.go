package template_installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	config, err := ParseConfig([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, "template.tgz", config.ArchiveName)
	assert.Equal(t, ModeBuild, config.Mode)
	assert.False(t, config.ValidatePath)
	assert.Equal(t, []string{"Assets", "Packages", "ProjectSettings"}, config.Subtrees)
	assert.Equal(t, []string{"ProjectSettings/ProjectVersion.txt"}, config.ExcludedFiles)
	assert.Equal(t, "ProjectData~", config.WrapperDir)
	assert.Equal(t, "Editor/Data/Resources/PackageManager/ProjectTemplates", config.TemplatesSubpath)
	assert.Equal(t, "template.tgz", config.Variables["archive"])
	assert.Equal(t, filepath.Join(os.TempDir(), "template_installer_staging"), config.StagingPath())
}

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(`
archive_name: custom.tgz
mode: copy
validate_path: true
excluded_files: []
variables:
  product: Test
`))
	require.NoError(t, err)

	assert.Equal(t, "custom.tgz", config.ArchiveName)
	assert.Equal(t, ModeCopy, config.Mode)
	assert.True(t, config.ValidatePath)
	assert.Empty(t, config.ExcludedFiles)
	assert.Equal(t, StringMap{"product": "Test", "archive": "custom.tgz"}, config.Variables)
}

func TestParseConfigInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"unknown mode":     "mode: unpack",
		"archive with dir": "archive_name: sub/template.tgz",
		"malformed yaml":   "mode: [copy",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestNewConfig(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		config, err := NewConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, ModeBuild, config.Mode)
		assert.Equal(t, "AssetSandbox", config.SandboxDir)
		assert.Equal(t, "Unity Template Installer", config.Variables["product"])
	})
	t.Run("override next to program", func(t *testing.T) {
		baseDir := t.TempDir()
		writeTree(t, baseDir, map[string]string{"installer.yml": "mode: copy\nvalidate_path: true\n"})
		config, err := NewConfig(baseDir)
		require.NoError(t, err)
		assert.Equal(t, ModeCopy, config.Mode)
		assert.True(t, config.ValidatePath)
		assert.Equal(t, "AssetSandbox", config.SandboxDir)
	})
	t.Run("override archive name", func(t *testing.T) {
		baseDir := t.TempDir()
		writeTree(t, baseDir, map[string]string{"installer.yml": "archive_name: custom.tgz\n"})
		config, err := NewConfig(baseDir)
		require.NoError(t, err)
		assert.Equal(t, "custom.tgz", config.ArchiveName)
		assert.Equal(t, "custom.tgz", config.Variables["archive"])
		assert.Equal(t, "Unity Template Installer", config.Variables["product"])
	})
	t.Run("override archive variable", func(t *testing.T) {
		baseDir := t.TempDir()
		writeTree(t, baseDir, map[string]string{
			"installer.yml": "archive_name: custom.tgz\nvariables:\n  archive: My Template\n",
		})
		config, err := NewConfig(baseDir)
		require.NoError(t, err)
		assert.Equal(t, "My Template", config.Variables["archive"])
	})
	t.Run("invalid override", func(t *testing.T) {
		baseDir := t.TempDir()
		writeTree(t, baseDir, map[string]string{"installer.yml": "mode: sideways\n"})
		_, err := NewConfig(baseDir)
		assert.Error(t, err)
	})
}
