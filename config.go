package template_installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	configFilename         = "config.yml"
	configOverrideFilename = "installer.yml"
)

// Mode selects how the template archive comes into being.
type Mode string

const (
	// ModeCopy copies a prebuilt archive lying next to the program.
	ModeCopy Mode = "copy"
	// ModeBuild packs the asset sandbox into a fresh archive and installs that.
	ModeBuild Mode = "build"
)

// Config holds the installer settings from the embedded config.yml, optionally
// overridden by an installer.yml next to the program.
type Config struct {
	ArchiveName      string    `yaml:"archive_name"`
	SandboxDir       string    `yaml:"sandbox_dir"`
	WrapperDir       string    `yaml:"wrapper_dir"`
	Subtrees         []string  `yaml:"subtrees"`
	ExcludedFiles    []string  `yaml:"excluded_files"`
	StagingDirName   string    `yaml:"staging_dir_name"`
	TemplatesSubpath string    `yaml:"templates_subpath"`
	Mode             Mode      `yaml:"mode"`
	ValidatePath     bool      `yaml:"validate_path"`
	UnityMarkers     []string  `yaml:"unity_markers"`
	Variables        StringMap `yaml:"variables"`
}

// NewConfig reads the embedded config.yml, and merges an installer.yml from baseDir
// over it if one exists.
func NewConfig(baseDir string) (*Config, error) {
	configFile, err := GetResource(configFilename)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err := yaml.Unmarshal([]byte(configFile), config); err != nil {
		log.Error().Err(err).Str("file", configFilename).Msg("Unable to parse config file")
		return nil, err
	}
	overridePath := filepath.Join(baseDir, configOverrideFilename)
	override, err := os.ReadFile(overridePath)
	if err == nil {
		if err := yaml.Unmarshal(override, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", overridePath, err)
		}
		log.Info().Str("file", overridePath).Msg("Config override loaded")
	} else if !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", overridePath).Msg("Config override not readable")
	}
	config.setDefaults()
	return config, config.validate()
}

// ParseConfig parses a config file, filling in defaults for every missing key.
func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	config.setDefaults()
	return config, config.validate()
}

// StagingPath is the fixed temporary directory the archive is assembled in.
func (c *Config) StagingPath() string {
	return filepath.Join(os.TempDir(), c.StagingDirName)
}

func (c *Config) setDefaults() {
	if c.ArchiveName == "" {
		c.ArchiveName = "template.tgz"
	}
	if c.SandboxDir == "" {
		c.SandboxDir = "AssetSandbox"
	}
	if c.WrapperDir == "" {
		c.WrapperDir = "ProjectData~"
	}
	if len(c.Subtrees) == 0 {
		c.Subtrees = []string{"Assets", "Packages", "ProjectSettings"}
	}
	if c.ExcludedFiles == nil {
		c.ExcludedFiles = []string{"ProjectSettings/ProjectVersion.txt"}
	}
	if c.StagingDirName == "" {
		c.StagingDirName = "template_installer_staging"
	}
	if c.TemplatesSubpath == "" {
		c.TemplatesSubpath = "Editor/Data/Resources/PackageManager/ProjectTemplates"
	}
	if c.Mode == "" {
		c.Mode = ModeBuild
	}
	if len(c.UnityMarkers) == 0 {
		c.UnityMarkers = []string{"Editor", "MonoBleedingEdge", "Unity.app"}
	}
	if c.Variables == nil {
		c.Variables = make(StringMap)
	}
	if _, ok := c.Variables["archive"]; !ok {
		c.Variables["archive"] = c.ArchiveName
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeCopy, ModeBuild:
	default:
		return fmt.Errorf("unknown install mode '%s'", c.Mode)
	}
	if filepath.Base(c.ArchiveName) != c.ArchiveName {
		return fmt.Errorf("archive name '%s' must not contain a directory", c.ArchiveName)
	}
	return nil
}
