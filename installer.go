package template_installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Size units for human-readable sizes.
const (
	KB = int64(1) << (10 * (iota + 1))
	MB
	GB
	TB
)

// Installer places a template archive into the project templates folder of a Unity
// installation, either copying a prebuilt archive (ModeCopy) or building one from the
// asset sandbox first (ModeBuild). All paths of the program's own files are relative
// to BaseDir, normally the directory of the executable.
type Installer struct {
	BaseDir string
	config  *Config
}

// NewInstaller creates an Installer for the program files in baseDir.
func NewInstaller(baseDir string, config *Config) *Installer {
	return &Installer{BaseDir: baseDir, config: config}
}

// Mode returns the configured install mode.
func (i *Installer) Mode() Mode { return i.config.Mode }

// ArchivePath is the archive next to the program: the prebuilt one in ModeCopy, the
// freshly built one in ModeBuild.
func (i *Installer) ArchivePath() string {
	return filepath.Join(i.BaseDir, i.config.ArchiveName)
}

// TargetPath returns the path the archive is installed to for a Unity installation.
func (i *Installer) TargetPath(unityPath string) string {
	return filepath.Join(TemplatesDir(unityPath, i.config.TemplatesSubpath), i.config.ArchiveName)
}

// Install runs the installation into the Unity installation at unityPath. It blocks
// until the archive is in place or something failed.
func (i *Installer) Install(unityPath string) error {
	logger := GetLogger("installer")
	unityPath = strings.TrimSpace(unityPath)
	if unityPath == "" {
		return ErrInvalidUnityPath
	}
	unityPath, err := filepath.Abs(unityPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUnityPath, err)
	}
	if i.config.ValidatePath && !ValidateUnityPath(unityPath, i.config.UnityMarkers) {
		return fmt.Errorf("%w: %s", ErrInvalidUnityPath, unityPath)
	}
	logger.Info().Str("unity", unityPath).Str("mode", string(i.Mode())).Msg("Installing template")

	switch i.Mode() {
	case ModeCopy:
		_, err = PlaceArchive(i.ArchivePath(), TemplatesDir(unityPath, i.config.TemplatesSubpath))
	case ModeBuild:
		err = NewAssembler(i.BaseDir, i.config).Assemble(unityPath)
	default:
		err = fmt.Errorf("unknown install mode '%s'", i.Mode())
	}
	if err != nil {
		return err
	}
	logger.Info().Str("target", i.TargetPath(unityPath)).Msg("Template installed")
	return nil
}

// ValidateUnityPath reports whether path looks like a Unity editor installation, i.e.
// whether it is a directory containing one of the given marker entries.
func ValidateUnityPath(path string, markers []string) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
			return true
		}
	}
	return false
}

// TemplatesDir returns the project templates directory of a Unity installation.
func TemplatesDir(unityPath, templatesSubpath string) string {
	return filepath.Join(unityPath, filepath.FromSlash(templatesSubpath))
}

// PlaceArchive copies the archive into targetDir, under the archive's own file name,
// replacing an existing file of that name. targetDir is created if needed, but only
// once the archive is known to exist.
//
// The archive is written to a temporary file beside the target first, and renamed over
// it only once its digest matches the source. The installed path is returned.
func PlaceArchive(archivePath, targetDir string) (string, error) {
	logger := GetLogger("installer")
	info, err := os.Stat(archivePath)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrArchiveMissing, archivePath)
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreateTargetDir, err)
	}
	if !osFileWriteAccess(targetDir) {
		return "", fmt.Errorf("%w: %s", ErrTargetNotWritable, targetDir)
	}
	if space := osDiskSpace(targetDir); space >= 0 && space < info.Size() {
		logger.Warn().
			Str("required", SizeString(info.Size())).
			Str("available", SizeString(space)).
			Msg("Not enough disk space")
		return "", fmt.Errorf("%w: %s", ErrNotEnoughSpace, targetDir)
	}

	targetPath := filepath.Join(targetDir, filepath.Base(archivePath))
	tmp, err := os.CreateTemp(targetDir, "."+filepath.Base(archivePath)+"-*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyArchive, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := CopyFile(archivePath, tmpPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyArchive, err)
	}
	if err := syncFile(tmpPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyArchive, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyArchive, err)
	}
	if err := verifyDigest(archivePath, tmpPath); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyArchive, err)
	}
	logger.Info().
		Str("target", targetPath).
		Str("size", SizeString(info.Size())).
		Msg("Archive placed")
	return targetPath, nil
}

// SizeString returns a human-readable version of a byte count, appending a size
// suffix, as needed.
func SizeString(size int64) string {
	switch {
	case size < KB:
		return fmt.Sprintf("%dB", size)
	case size < MB:
		return fmt.Sprintf("%.2fKB", float64(size)/float64(KB))
	case size < GB:
		return fmt.Sprintf("%.2fMB", float64(size)/float64(MB))
	case size < TB:
		return fmt.Sprintf("%.2fGB", float64(size)/float64(GB))
	default:
		return fmt.Sprintf("%.2fTB", float64(size)/float64(TB))
	}
}

// verifyDigest fails with ErrCopyArchive unless placed has the same content digest as src.
func verifyDigest(src, placed string) error {
	want, err := fileDigest(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCopyArchive, err)
	}
	got, err := fileDigest(placed)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCopyArchive, err)
	}
	if got != want {
		return fmt.Errorf("%w: digest %s, expected %s", ErrCopyArchive, got, want)
	}
	logger := GetLogger("installer")
	logger.Debug().Str("digest", got.String()).Msg("Digest verified")
	return nil
}

func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.Canonical.FromReader(f)
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
