// Package main is the GTK3 GUI of the template installer, built as a Go plugin (gui.so)
// and loaded at runtime, so that the installer still runs in commandline mode where
// GTK is not available:
//
//	go build -buildmode=plugin -o resources/gui/gui.so ./gui
package main

import (
	// this is the installer package - here it refers to the parent directory
	"github.com/grandchild/template_installer"

	"errors"
	"fmt"
	"path/filepath"

	"github.com/gotk3/gotk3/gtk"
	"github.com/rs/zerolog/log"
)

var gui *Gui

type (
	// EventHandler maps signal names from the .glade GUI-definition file to handler
	// functions.
	EventHandler map[string]interface{}
	// Gui defines a GTK3-based single window form: a path entry with a browse button,
	// an install button, and a progress bar. After a successful installation the
	// install button is replaced by an OK button which closes the installer.
	Gui struct {
		installer     *template_installer.Installer
		translator    *template_installer.Translator
		builder       *gtk.Builder
		win           *gtk.Window
		dirPathEdit   *gtk.Entry
		browseButton  *gtk.Button
		installButton *gtk.Button
		okButton      *gtk.Button
		progressBar   *gtk.ProgressBar
	}
)

// guiEventHandler returns an EventHandler that handles events from the GTK3 elements in
// the .glade file, such as buttons, entries and window events.
func guiEventHandler(g *Gui) EventHandler {
	return EventHandler{
		"on_path_browse_clicked": func() { g.browseUnityDir() },
		"on_path_entry_activate": func() { g.install() },
		"on_install_clicked":     func() { g.install() },
		"on_ok_clicked":          func() { gtk.MainQuit() },
		"on_main_destroy":        func() { gtk.MainQuit() },
	}
}

// NewGui creates the installer GUI, given the path to the unpacked GUI resources. The
// gui object is stored in the global variable "gui", and can then be run with
// "RunGui()".
func NewGui(
	guiPath string,
	i *template_installer.Installer,
	translator *template_installer.Translator,
	config *template_installer.Config,
) error {
	if err := gtk.InitCheck(nil); err != nil {
		return err
	}
	builder, err := gtk.BuilderNewFromFile(filepath.Join(guiPath, "gui.glade"))
	if err != nil {
		return err
	}
	gui = &Gui{
		installer:     i,
		translator:    translator,
		builder:       builder,
		win:           getWindow(builder, "installer-frame"),
		dirPathEdit:   getEntry(builder, "path-entry"),
		browseButton:  getButton(builder, "button-browse"),
		installButton: getButton(builder, "button-install"),
		okButton:      getButton(builder, "button-ok"),
		progressBar:   getProgressBar(builder, "progress-bar"),
	}
	if gui.win == nil || gui.dirPathEdit == nil || gui.browseButton == nil ||
		gui.installButton == nil || gui.okButton == nil || gui.progressBar == nil {
		return errors.New("gui.glade is missing widgets")
	}
	gui.builder.ConnectSignals(guiEventHandler(gui))

	gui.win.SetTitle(gui.t("title"))
	gui.setLabel("path-label", gui.t("path_label"))
	gui.dirPathEdit.SetPlaceholderText(gui.t("path_placeholder"))
	gui.browseButton.SetLabel(gui.t("button_browse"))
	gui.installButton.SetLabel(gui.t("button_install"))
	gui.okButton.SetLabel(gui.t("button_ok"))
	log.Debug().Str("mode", string(config.Mode)).Msg("GUI created")
	return nil
}

// RunGui presents the GUI and starts the main event loop. When RunGui returns the
// application is done and should quit.
func RunGui() {
	gui.win.ShowAll()
	gui.okButton.Hide()
	gui.progressBar.Hide()
	gui.installButton.GrabFocus()
	gtk.Main()
}

// install runs the installation into the path from the path entry. This blocks the
// GTK main loop until the installation is done.
func (g *Gui) install() {
	unityPath, err := g.dirPathEdit.GetText()
	if err != nil {
		log.Error().Err(err).Msg("Unable to read path entry")
		return
	}
	template_installer.RunInstall(g, g.installer, g.translator, unityPath)
}

// Busy locks the form and shows a pulsing progress bar while busy.
func (g *Gui) Busy(busy bool) {
	g.dirPathEdit.SetSensitive(!busy)
	g.browseButton.SetSensitive(!busy)
	g.installButton.SetSensitive(!busy)
	g.progressBar.SetVisible(busy)
	if busy {
		g.progressBar.Pulse()
	}
	flushEvents()
}

// Succeeded shows the success message. The install button gives way to the OK button.
func (g *Gui) Succeeded(message string) {
	g.showMessage(gtk.MESSAGE_INFO, g.t("success_title"), message)
	g.installButton.Hide()
	g.okButton.Show()
	g.okButton.GrabFocus()
}

func (g *Gui) Failed(message string) {
	g.showMessage(gtk.MESSAGE_ERROR, g.t("error_title"), message)
}

// showMessage shows a modal message dialog and waits for it to be dismissed.
func (g *Gui) showMessage(messageType gtk.MessageType, title, message string) {
	dialog := gtk.MessageDialogNew(g.win, gtk.DIALOG_MODAL, messageType, gtk.BUTTONS_OK, "%s", message)
	dialog.SetTitle(title)
	dialog.Run()
	dialog.Destroy()
}

// browseUnityDir opens a GTK folder chooser and fills the path edit field with the
// result, unless the chooser was cancelled.
func (g *Gui) browseUnityDir() {
	chooser, err := gtk.FileChooserDialogNewWith2Buttons(
		g.t("dir_browse_title"), g.win,
		gtk.FILE_CHOOSER_ACTION_SELECT_FOLDER,
		g.t("cancel"), gtk.RESPONSE_CANCEL,
		g.t("ok"), gtk.RESPONSE_ACCEPT,
	)
	if err != nil {
		log.Error().Err(err).Msg(g.t("err_couldnt_open_browse_dialog"))
		g.Failed(g.t("err_couldnt_open_browse_dialog"))
		return
	}
	if current, _ := g.dirPathEdit.GetText(); current != "" {
		chooser.SetCurrentFolder(current)
	}
	if gtk.ResponseType(chooser.Run()) == gtk.RESPONSE_ACCEPT {
		g.dirPathEdit.SetText(filepath.FromSlash(chooser.GetFilename()))
	}
	chooser.Destroy()
}

// t returns a localized string for the key, and expands any template variables therein.
func (g *Gui) t(key string) string { return g.translator.Get(key) }

// setLabel changes the text on a label with the given labelId to the given string.
func (g *Gui) setLabel(labelId string, content string) error {
	label := getLabel(g.builder, labelId)
	if label == nil {
		return fmt.Errorf("no label '%s'", labelId)
	}
	label.SetLabel(content)
	return nil
}

func main() {}
