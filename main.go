package main

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/scene-archiver/internal/archive"
	"github.com/ytget/scene-archiver/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.scene-archiver"
	AppName = "Scene Archiver"

	WindowWidth  = 960
	WindowHeight = 640
)

func main() {
	log.Printf("%s v%s starting...", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Queued jobs finish before the process exits
	archiveSvc := archive.NewService()
	defer archiveSvc.Close()

	ui.NewRootUI(myWindow, myApp, archiveSvc)

	myWindow.ShowAndRun()
}
