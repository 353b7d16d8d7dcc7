// A small installer for Unity project templates.
//
// The installer packs the Assets, Packages and ProjectSettings folders of an asset
// sandbox into a gzip-compressed tar archive and places it into the
// "Editor/Data/Resources/PackageManager/ProjectTemplates" folder of a Unity editor
// installation, where the Unity Hub picks it up as a new project template.
// Alternatively, a prebuilt template.tgz lying next to the program is copied there
// as-is.
//
// The installation is run from a GTK3-based GUI (a plugin, see gui/), or from the
// commandline with --target (referred to as a "silent" install).
//
// The resources directory (config.yml, the language files and the GUI) is appended to
// the binary with go.rice:
//
//	go build -buildmode=plugin -o resources/gui/gui.so ./gui
//	go build -o template_installer ./cmd/template_installer
//	rice append --exec template_installer -i .
package template_installer
