package template_installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Assembler stages the named subtrees of an asset sandbox below a wrapper directory,
// prunes excluded files, packs the result into an archive and installs the archive
// into a Unity installation.
type Assembler struct {
	// SandboxDir is the asset sandbox, containing one folder per subtree.
	SandboxDir string
	// StagingDir is a fixed temporary path. It is wiped before and after each run.
	StagingDir string
	// WrapperDir is the single top-level folder of the archive.
	WrapperDir string
	// Subtrees are copied from SandboxDir into the wrapper directory, in order.
	Subtrees []string
	// ExcludedFiles, relative to the wrapper directory, are deleted before packing.
	ExcludedFiles []string
	// ArchivePath is where the archive is built before being placed.
	ArchivePath string
	// TemplatesSubpath leads from a Unity installation to its project templates.
	TemplatesSubpath string
}

// NewAssembler returns an Assembler for the sandbox and archive beside the program in
// baseDir.
func NewAssembler(baseDir string, config *Config) *Assembler {
	return &Assembler{
		SandboxDir:       filepath.Join(baseDir, config.SandboxDir),
		StagingDir:       config.StagingPath(),
		WrapperDir:       config.WrapperDir,
		Subtrees:         config.Subtrees,
		ExcludedFiles:    config.ExcludedFiles,
		ArchivePath:      filepath.Join(baseDir, config.ArchiveName),
		TemplatesSubpath: config.TemplatesSubpath,
	}
}

// Assemble builds the archive and places it into the project templates folder of
// unityPath. The staging directory is removed again whether this succeeds or not.
func (a *Assembler) Assemble(unityPath string) (err error) {
	logger := GetLogger("assemble")
	if err := os.RemoveAll(a.StagingDir); err != nil {
		return fmt.Errorf("remove stale staging dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(a.StagingDir); rmErr != nil {
			logger.Error().Err(rmErr).Str("staging", a.StagingDir).Msg("Staging dir not removed")
			if err == nil {
				err = rmErr
			}
		}
	}()

	if err := a.checkSandbox(); err != nil {
		return err
	}
	if err := a.Stage(); err != nil {
		return fmt.Errorf("%w: %w", ErrBuildArchive, err)
	}
	logger.Info().Str("staging", a.StagingDir).Str("archive", a.ArchivePath).Msg("Building archive")
	if err := BuildArchive(a.StagingDir, a.ArchivePath); err != nil {
		return fmt.Errorf("%w: %w", ErrBuildArchive, err)
	}
	_, err = PlaceArchive(a.ArchivePath, TemplatesDir(unityPath, a.TemplatesSubpath))
	return err
}

// Stage copies the subtrees into the staging directory and deletes the excluded files.
func (a *Assembler) Stage() error {
	wrapper := filepath.Join(a.StagingDir, filepath.FromSlash(a.WrapperDir))
	for _, subtree := range a.Subtrees {
		err := CopyTree(filepath.Join(a.SandboxDir, subtree), filepath.Join(wrapper, subtree))
		if err != nil {
			return fmt.Errorf("stage %s: %w", subtree, err)
		}
	}
	for _, excluded := range a.ExcludedFiles {
		err := os.Remove(filepath.Join(wrapper, filepath.FromSlash(excluded)))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("prune %s: %w", excluded, err)
		}
	}
	return nil
}

// checkSandbox makes sure all subtrees exist before anything is written.
func (a *Assembler) checkSandbox() error {
	for _, subtree := range a.Subtrees {
		info, err := os.Stat(filepath.Join(a.SandboxDir, subtree))
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrSandboxMissing, filepath.Join(a.SandboxDir, subtree))
		}
	}
	return nil
}
