//go:build linux || darwin

package template_installer

import (
	"os/exec"

	"golang.org/x/sys/unix"
)

func osFileWriteAccess(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

// osDiskSpace returns the bytes available to unprivileged users on the filesystem of
// path, or -1 if unknown.
func osDiskSpace(path string) int64 {
	fs := unix.Statfs_t{}
	if err := unix.Statfs(path, &fs); err != nil {
		return -1
	}
	return int64(fs.Bavail) * int64(fs.Bsize)
}

// osShowRawErrorDialog shows an error message without GTK, using zenity (on Linux) or
// osascript (on macOS), whichever is there.
func osShowRawErrorDialog(message string) error {
	if path, err := exec.LookPath("zenity"); err == nil {
		return exec.Command(path, "--error", "--no-wrap", "--text", message).Run()
	}
	path, err := exec.LookPath("osascript")
	if err != nil {
		return err
	}
	return exec.Command(
		path, "-e", `display alert "Unity Template Installer" message "`+message+`" as critical`,
	).Run()
}
