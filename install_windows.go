//go:build windows

package template_installer

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

func osFileWriteAccess(path string) bool {
	testPath, err := windows.UTF16PtrFromString(filepath.Join(path, ".write-test"))
	if err != nil {
		return false
	}
	handle, err := windows.CreateFile(
		testPath,
		windows.GENERIC_WRITE|windows.GENERIC_READ,
		0,
		nil,
		windows.CREATE_NEW,
		windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_FLAG_DELETE_ON_CLOSE,
		0,
	)
	if err != nil {
		return false
	}
	windows.CloseHandle(handle)
	return true
}

func osDiskSpace(path string) int64 {
	dir, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return -1
	}
	var available uint64
	if err := windows.GetDiskFreeSpaceEx(dir, &available, nil, nil); err != nil {
		return -1
	}
	return int64(available)
}

func osShowRawErrorDialog(message string) error {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return err
	}
	caption, _ := windows.UTF16PtrFromString("Unity Template Installer")
	_, err = windows.MessageBox(0, text, caption, windows.MB_OK|windows.MB_ICONERROR)
	return err
}
