// Package main provides the entry point for the whiteboard application.
package main

import (
	"os"
	"time"

	"plm-whiteboard/internal/app"
	"plm-whiteboard/internal/logging"
	"plm-whiteboard/internal/version"
	"plm-whiteboard/ui/board"
	"plm-whiteboard/ui/mainwindow"
	"plm-whiteboard/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	log "github.com/sirupsen/logrus"
)

const appID = "org.plm.whiteboard"

func main() {
	appPrefs := prefs.Load()
	settings := app.LoadSettings(appPrefs)
	logging.Setup(os.Stdout, settings.LogLevel)
	log.Infof("Starting whiteboard %s", version.String())

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.WhiteboardTheme{})

	b := board.New()
	appState := app.NewState(settings, b)
	defer appState.Close()
	b.Attach(appState)

	win := mainwindow.New(fyneApp, appState, b, appPrefs)

	// Handle command line arguments
	var docPath string
	if len(os.Args) > 1 {
		docPath = os.Args[1]
	}
	win.OpenInitial(docPath)

	setupHotReload(win)

	win.SetOnClosed(win.SavePreferences)
	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Warn("Hot reload: unable to determine executable path")
		return
	}

	log.WithFields(log.Fields{
		"path":     reloader.ExecPath(),
		"modified": reloader.StartupTime().Format("15:04:05"),
	}).Debug("Hot reload: watching")

	reloader.OnTick(win.SavePreferencesIfChanged)

	reloader.OnNewBinary(func() {
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Info("Hot reload: saving preferences before restart...")
				win.SavePreferences()
				if err := reloader.Restart(); err != nil {
					log.WithError(err).Error("Hot reload: restart failed")
				}
			}, win.Window)
	})

	reloader.Start()
}
