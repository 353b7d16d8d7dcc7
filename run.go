package template_installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Exit codes of Run.
const (
	ExitOK = iota
	ExitInstallFailed
	ExitUsage
	ExitSetupFailed
	ExitGuiFailed
)

const installerTempDirName = "template_installer"

// Run parses commandline options (if any) and starts one of two installer modes, GUI
// or commandline mode.
//
// Commandline parameters are:
//
//	--target      // Unity installation to install the template into
//	--mode        // "build" to pack the asset sandbox, "copy" to copy the prebuilt archive
//	--validate    // Require the target to look like a Unity installation
//	--lang        // Choose the language. This also affects the GUI mode.
//	-v            // More verbose logging, repeat for even more
//
// Giving --target will trigger commandline, or "silent" mode.
func Run() int {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	baseDir := programDir()
	config, err := NewConfig(baseDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid installer configuration:", err)
		return ExitSetupFailed
	}
	translator, err := NewTranslator(
		MergeVariables(config.Variables, StringMap{"installerName": filepath.Base(os.Args[0])}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "No language strings available:", err)
		return ExitSetupFailed
	}

	var (
		target    string
		lang      string
		mode      string
		validate  bool
		verbosity int
		exitCode  = ExitOK
	)
	rootCmd := &cobra.Command{
		Use:           filepath.Base(os.Args[0]),
		Short:         translator.Get("title"),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logfile := SetupLogger(verbosity)
			defer logfile.Close()

			if lang != "" {
				if err := translator.SetLanguage(lang); err != nil {
					fmt.Printf("Language '%s' not available\n", lang)
				}
			}
			if cmd.Flags().Changed("mode") {
				config.Mode = Mode(mode)
				if err := config.validate(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("validate") {
				config.ValidatePath = validate
			}
			installer := NewInstaller(baseDir, config)
			log.Info().
				Str("baseDir", baseDir).
				Str("mode", string(installer.Mode())).
				Bool("validate", config.ValidatePath).
				Str("language", translator.GetLanguage()).
				Msg("Installer started")

			if target != "" {
				if !RunCliInstall(installer, translator, target) {
					exitCode = ExitInstallFailed
				}
				return nil
			}
			installerTempPath := filepath.Join(os.TempDir(), installerTempDirName)
			defer os.RemoveAll(installerTempPath)
			if err := RunGuiInstall(installerTempPath, installer, translator, config); err != nil {
				exitCode = ExitGuiFailed
			}
			return nil
		},
	}
	flags := rootCmd.Flags()
	flags.StringVar(&target, "target", "", translator.Get("cli_help_target"))
	flags.StringVar(&mode, "mode", string(config.Mode), translator.Get("cli_help_mode"))
	flags.BoolVar(&validate, "validate", config.ValidatePath, translator.Get("cli_help_validate"))
	flags.StringVar(
		&lang, "lang", "",
		translator.Get("cli_help_lang")+" "+strings.Join(translator.GetLanguages(), ", "),
	)
	flags.CountVarP(&verbosity, "verbose", "v", translator.Get("cli_help_verbose"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitUsage
	}
	return exitCode
}

// RunCliInstall runs a "silent" installation, on the command line with no further user
// interaction.
func RunCliInstall(installer *Installer, translator *Translator, target string) bool {
	pterm.Info.Println(installer.TargetPath(strings.TrimSpace(target)))
	return RunInstall(
		&cliPresenter{text: translator.Get("silent_installing")},
		installer, translator, target,
	)
}

// cliPresenter shows a spinner while installing.
type cliPresenter struct {
	text    string
	spinner *pterm.SpinnerPrinter
}

func (c *cliPresenter) Busy(busy bool) {
	if busy {
		c.spinner, _ = pterm.DefaultSpinner.Start(c.text)
		return
	}
	if c.spinner != nil && c.spinner.IsActive {
		c.spinner.Stop()
	}
}

func (c *cliPresenter) Succeeded(message string) {
	if c.spinner != nil {
		c.spinner.Success(message)
		return
	}
	pterm.Success.Println(message)
}

func (c *cliPresenter) Failed(message string) {
	if c.spinner != nil {
		c.spinner.Fail(message)
		return
	}
	pterm.Error.Println(message)
}

// RunGuiInstall loads the gui.so plugin, and starts the installer GUI.
//
// If the GUI can't be loaded for some reason, an error is returned. Most common reasons
// for error include (on Linux):
//
//   - no desktop running (headless servers, remote logins)
//   - GTK3 missing
//
// When the GUI fails to load it will try a last-ditch effort to show an error dialog
// with zenity. Beyond that there is no way to interact with the user graphically, and
// it will simply log the error, and print usage help to the command line.
func RunGuiInstall(
	installerTempPath string, installer *Installer, translator *Translator, config *Config,
) error {
	guiPath := filepath.Join(installerTempPath, "gui")
	if err := UnpackResourceDir("gui", guiPath); err != nil {
		return handleGuiErr(translator.Get("err_gui_startup_failed"), err)
	}
	newGui, runGui, err := loadGuiPlugin(guiPath, translator)
	if err != nil {
		return err
	}
	if err := newGui(guiPath, installer, translator, config); err != nil {
		return handleGuiErr(translator.Get("err_gui_startup_failed"), err)
	}
	runGui()
	return nil
}

// loadGuiPlugin tries and loads the code from gui.so, casts and returns the constructor
// and run-function for the GUI. If there are errors, a message is displayed using
// zenity and the error is logged and returned.
func loadGuiPlugin(guiPath string, translator *Translator) (
	newGui func(string, *Installer, *Translator, *Config) error,
	runGui func(),
	err error,
) {
	guiPlugin, err := plugin.Open(filepath.Join(guiPath, "gui.so"))
	if err != nil {
		if dialogErr := osShowRawErrorDialog(translator.Get("err_gui_startup_failed_nogtk")); dialogErr != nil {
			log.Warn().Err(dialogErr).Msg("Unable to show error dialog")
		}
		return nil, nil, handleGuiErr(translator.Get("err_gui_startup_failed_nogtk"), err)
	}
	newGuiRaw, errNewGui := guiPlugin.Lookup("NewGui")
	runGuiRaw, errRunGui := guiPlugin.Lookup("RunGui")
	if errNewGui != nil || errRunGui != nil {
		return nil, nil, handleGuiErr(
			translator.Get("err_gui_startup_internal_error"), errNewGui, errRunGui,
		)
	}
	newGui, castOkNewGui := newGuiRaw.(func(string, *Installer, *Translator, *Config) error)
	runGui, castOkRunGui := runGuiRaw.(func())
	if !castOkNewGui || !castOkRunGui {
		osShowRawErrorDialog(translator.Get("err_gui_startup_internal_error"))
		return nil, nil, handleGuiErr(
			translator.Get("err_gui_startup_internal_error"),
			errors.New("GUI plugin function type mismatch"),
		)
	}
	return newGui, runGui, nil
}

// handleGuiErr logs GUI startup errors, prints msg and the commandline usage. The last
// non-nil error is returned.
func handleGuiErr(msg string, errs ...error) (err error) {
	for _, e := range errs {
		if e != nil {
			log.Error().Err(e).Msg("Unable to load GUI")
			err = e
		}
	}
	if msg != "" {
		log.Error().Msg(msg)
		fmt.Println(msg)
	}
	fmt.Printf("Usage: %s --target <unity-path>\n", filepath.Base(os.Args[0]))
	return err
}

// programDir returns the directory of the running executable, or the working directory
// if that can't be determined.
func programDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, _ := os.Getwd()
	return wd
}
