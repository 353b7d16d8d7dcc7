package template_installer

import "errors"

// Installation errors. The error strings are message keys in the language files, so
// that frontends can show them to the user with Translator.Get(err.Error()).
var (
	ErrInvalidUnityPath  = errors.New("err_invalid_unity_path")
	ErrArchiveMissing    = errors.New("err_archive_missing")
	ErrSandboxMissing    = errors.New("err_sandbox_missing")
	ErrCreateTargetDir   = errors.New("err_create_target_dir")
	ErrTargetNotWritable = errors.New("err_target_not_writable")
	ErrNotEnoughSpace    = errors.New("err_not_enough_space")
	ErrCopyArchive       = errors.New("err_copy_archive")
	ErrBuildArchive      = errors.New("err_build_archive")
)

// errInstallFailedKey is the message key for any error not in the list above.
const errInstallFailedKey = "err_install_failed"

var messageErrors = []error{
	ErrInvalidUnityPath,
	ErrArchiveMissing,
	ErrSandboxMissing,
	ErrCreateTargetDir,
	ErrTargetNotWritable,
	ErrNotEnoughSpace,
	ErrCopyArchive,
	ErrBuildArchive,
}

// MessageKey returns the language file key describing err. Wrapped errors are
// unwrapped until one of the installation errors is found.
func MessageKey(err error) string {
	for _, known := range messageErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return errInstallFailedKey
}
