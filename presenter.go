package template_installer

// Presenter is the frontend side of an installation: it shows that the installer is
// busy, and the outcome.
type Presenter interface {
	// Busy is called with true before the installation starts, and with false after
	// the outcome has been presented.
	Busy(busy bool)
	// Succeeded presents a successful installation.
	Succeeded(message string)
	// Failed presents a failed installation.
	Failed(message string)
}

// RunInstall installs into unityPath, presenting progress and outcome with p. Exactly
// one of p.Succeeded and p.Failed is called, between p.Busy(true) and p.Busy(false).
// Errors are logged and translated, never returned; the result reports success.
func RunInstall(p Presenter, installer *Installer, translator *Translator, unityPath string) bool {
	logger := GetLogger("installer")
	p.Busy(true)
	defer p.Busy(false)
	err := installer.Install(unityPath)
	if err != nil {
		logger.Error().Err(err).Str("unity", unityPath).Msg("Installation failed")
		p.Failed(translator.Get(MessageKey(err)))
		return false
	}
	p.Succeeded(translator.Get("msg_success"))
	return true
}
