package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/scene-archiver/internal/archive"
	"github.com/ytget/scene-archiver/internal/ui"
)

func main() {
	myApp := app.NewWithID("com.ytget.scene-archiver")
	myWindow := myApp.NewWindow(ui.AppTitle)
	myWindow.Resize(fyne.NewSize(960, 640))

	archiveSvc := archive.NewService()
	defer archiveSvc.Close()

	ui.NewRootUI(myWindow, myApp, archiveSvc)

	myWindow.ShowAndRun()
}
