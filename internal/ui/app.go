package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"petris/internal/config"
	"petris/internal/models"
	"petris/internal/ui/cwidget"
	"petris/processing/results"
	"petris/processing/server"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

// resultTimeout bounds how long the app polls for an in-flight
// detection before giving up on showing its result.
const (
	statusInterval = 200 * time.Millisecond
	resultTimeout  = 5 * time.Minute
)

type DetectApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config  *config.Config
	server  *server.Server
	baseDir string
	log     zerolog.Logger

	statusLabel *widget.Label
	outputLog   *widget.Label

	resultCanvas *canvas.Image
	resultLabel  *widget.Label

	startBtn  *widget.Button
	stopBtn   *widget.Button
	imageBtn  *widget.Button
	folderBtn *widget.Button

	stopChan chan struct{}
}

func CreateApp(srv *server.Server, cfg *config.Config, baseDir string, log zerolog.Logger) *DetectApp {
	a := app.New()
	w := a.NewWindow("Petris Detect")

	w.Resize(fyne.NewSize(1200, 700))

	return &DetectApp{
		fyneApp:  a,
		mainWin:  w,
		server:   srv,
		config:   cfg,
		baseDir:  baseDir,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

func (a *DetectApp) Run() {
	a.statusLabel = widget.NewLabel("Server: stopped")
	a.outputLog = widget.NewLabel("")
	a.outputLog.Wrapping = fyne.TextWrapWord

	a.resultCanvas = canvas.NewImageFromImage(nil)
	a.resultCanvas.FillMode = canvas.ImageFillContain
	a.resultCanvas.SetMinSize(fyne.NewSize(640, 480))

	a.resultLabel = widget.NewLabel("")

	a.startBtn = widget.NewButtonWithIcon("Start Server", theme.MediaPlayIcon(), a.onStartServer)
	a.stopBtn = widget.NewButtonWithIcon("Stop Server", theme.MediaStopIcon(), a.onStopServer)
	a.imageBtn = widget.NewButtonWithIcon("Detect Image", theme.FileImageIcon(), a.onDetectImage)
	a.folderBtn = widget.NewButtonWithIcon("Detect Folder", theme.FolderOpenIcon(), a.onDetectFolder)

	a.stopBtn.Disable()
	a.imageBtn.Disable()
	a.folderBtn.Disable()

	settingsLabel := widget.NewLabelWithStyle("Configuration", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	sidebar := container.NewVBox(
		settingsLabel,
		widget.NewSeparator(),
		a.setupConfigSettings(),
		widget.NewSeparator(),
		a.startBtn,
		a.stopBtn,
		widget.NewSeparator(),
		a.imageBtn,
		a.folderBtn,
	)

	resultContainer := container.NewBorder(
		container.NewHBox(a.statusLabel),
		container.NewVBox(a.resultLabel, a.outputLog),
		nil, nil,
		a.resultCanvas,
	)

	split := container.NewHSplit(
		container.NewPadded(container.NewVScroll(sidebar)),
		container.NewPadded(resultContainer),
	)
	split.SetOffset(0.3)

	a.mainWin.SetContent(split)

	go a.runStatusLoop()
	go a.runEventLoop()

	a.mainWin.SetCloseIntercept(func() {
		close(a.stopChan)
		a.server.Shutdown()
		if err := a.config.SaveByDefault(); err != nil {
			a.log.Warn().Err(err).Msg("could not save config")
		}
		a.mainWin.Close()
	})

	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

func (a *DetectApp) onStartServer() {
	cfg, err := a.buildServerConfig()
	if err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}

	a.startBtn.Disable()
	a.setStatus("Server: starting...")

	go func() {
		err := a.server.Start(cfg)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, a.mainWin)
				a.startBtn.Enable()
				a.setStatus("Server: stopped")
				return
			}
			a.stopBtn.Enable()
			a.imageBtn.Enable()
			a.folderBtn.Enable()
		})
	}()
}

func (a *DetectApp) onStopServer() {
	a.stopBtn.Disable()
	a.setStatus("Server: stopping...")

	go func() {
		err := a.server.Stop()
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, a.mainWin)
			}
			a.startBtn.Enable()
			a.imageBtn.Disable()
			a.folderBtn.Disable()
			a.setStatus("Server: stopped")
		})
	}()
}

func (a *DetectApp) onDetectImage() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if err := a.server.SendImage(path); err != nil {
			dialog.ShowError(err, a.mainWin)
			return
		}

		a.config.LastImage = path
		a.setStatus("Server: detecting...")
		go a.awaitImageResult(filepath.Base(path))
	}, a.mainWin)
}

func (a *DetectApp) onDetectFolder() {
	dialog.ShowFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil || list == nil {
			return
		}
		path := list.Path()

		if err := a.server.SendFolder(path); err != nil {
			dialog.ShowError(err, a.mainWin)
			return
		}

		a.config.LastFolder = path
		a.setStatus("Server: detecting batch...")
		go a.awaitFolderResult()
	}, a.mainWin)
}

// awaitImageResult waits for the in-flight command to finish, then
// loads the annotated image named after the original input file.
func (a *DetectApp) awaitImageResult(inputName string) {
	if !a.waitProcessed() {
		return
	}

	path, err := results.ImagePath(a.baseDir, a.config.GetProject(), inputName)
	if err != nil {
		a.showError(err)
		return
	}

	detections, err := results.LoadCSV(a.baseDir, a.config.GetProject())
	if err != nil {
		a.log.Warn().Err(err).Msg("detections log unavailable")
	}

	fyne.Do(func() {
		a.resultCanvas.File = path
		a.resultCanvas.Refresh()
		a.resultLabel.SetText(a.summarize(inputName, detections))
	})
}

// awaitFolderResult waits for the batch to finish and shows the last
// annotated image plus a batch summary.
func (a *DetectApp) awaitFolderResult() {
	if !a.waitProcessed() {
		return
	}

	project := a.config.GetProject()
	images, err := results.List(a.baseDir, project)
	if err != nil {
		a.showError(err)
		return
	}

	detections, err := results.LoadCSV(a.baseDir, project)
	if err != nil {
		a.log.Warn().Err(err).Msg("detections log unavailable")
	}

	fyne.Do(func() {
		if len(images) > 0 {
			a.resultCanvas.File = images[len(images)-1]
			a.resultCanvas.Refresh()
		}
		a.resultLabel.SetText(fmt.Sprintf("Batch done: %d result images, %d detections", len(images), len(detections)))
	})
}

// waitProcessed polls the processing flag instead of sleeping a fixed
// delay. Returns false when the server stops or the app closes first.
func (a *DetectApp) waitProcessed() bool {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	deadline := time.After(resultTimeout)

	for {
		select {
		case <-ticker.C:
			if !a.server.Running() {
				return false
			}
			if !a.server.Processing() {
				return true
			}
		case <-deadline:
			a.showError(fmt.Errorf("detection did not finish within %s", resultTimeout))
			return false
		case <-a.stopChan:
			return false
		}
	}
}

func (a *DetectApp) summarize(inputName string, detections []models.Detection) string {
	count := 0
	classes := make(map[string]int)
	for _, d := range detections {
		if d.Image != inputName {
			continue
		}
		count++
		classes[d.Class]++
	}

	if count == 0 {
		return fmt.Sprintf("%s: no detections", inputName)
	}

	text := fmt.Sprintf("%s: %d detections", inputName, count)
	for class, n := range classes {
		text += fmt.Sprintf(", %s x%d", class, n)
	}
	return text
}

func (a *DetectApp) runStatusLoop() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refreshStatus()
		case <-a.stopChan:
			return
		}
	}
}

func (a *DetectApp) refreshStatus() {
	running := a.server.Running()
	ready := a.server.Ready()
	processing := a.server.Processing()

	text := "Server: stopped"
	switch {
	case processing:
		text = "Server: detecting..."
	case running && ready:
		text = "Server: ready"
	case running:
		text = "Server: warming up..."
	}

	fyne.Do(func() {
		a.statusLabel.SetText(text)
		if !running && !a.stopBtn.Disabled() {
			// worker crashed out from under us
			a.stopBtn.Disable()
			a.imageBtn.Disable()
			a.folderBtn.Disable()
			a.startBtn.Enable()
		}
	})
}

// runEventLoop surfaces classified worker output in the log pane.
func (a *DetectApp) runEventLoop() {
	for {
		select {
		case ev := <-a.server.Events():
			a.showEvent(ev)
		case <-a.stopChan:
			return
		}
	}
}

func (a *DetectApp) showEvent(ev server.Event) {
	var text string
	switch ev.Kind {
	case server.EventProgress:
		text = fmt.Sprintf("Processing %d/%d images", ev.Done, ev.Total)
	case server.EventError:
		text = fmt.Sprintf("[%s] %s", ev.Error, ev.Line)
	case server.EventExit:
		text = ev.Line
	default:
		text = ev.Line
	}

	fyne.Do(func() {
		a.outputLog.SetText(text)
	})
}

func (a *DetectApp) setStatus(text string) {
	a.statusLabel.SetText(text)
}

func (a *DetectApp) showError(err error) {
	a.log.Error().Err(err).Msg("detection failed")
	fyne.Do(func() {
		a.resultLabel.SetText(err.Error())
		a.statusLabel.SetText("Server: ready")
	})
}

func (a *DetectApp) buildServerConfig() (server.Config, error) {
	runtimePath, err := server.LocateRuntime(a.baseDir)
	if err != nil {
		return server.Config{}, err
	}
	script, err := server.LocateScript(a.baseDir)
	if err != nil {
		return server.Config{}, err
	}
	engine, labels, err := server.FindModels(filepath.Join(a.baseDir, a.config.ModelsDir))
	if err != nil {
		return server.Config{}, err
	}

	return server.Config{
		Runtime:     runtimePath,
		Script:      script,
		Engine:      engine,
		Labels:      labels,
		InputHeight: a.config.GetInputHeight(),
		InputWidth:  a.config.GetInputWidth(),
		ConfThresh:  a.config.GetConfThresh(),
		NMSThresh:   a.config.GetNMSThresh(),
		HideLabels:  a.config.GetHideLabels(),
		HideConf:    a.config.GetHideConf(),
		Project:     a.config.GetProject(),
		WorkDir:     a.baseDir,
	}, nil
}

func (a *DetectApp) setupConfigSettings() *fyne.Container {
	settings := container.NewVBox()

	heightInput := cwidget.NewIntInput(
		"Input Height",
		"Enter integer",
		a.config.GetInputHeight(),
		a.config.SetInputHeight,
	)

	widthInput := cwidget.NewIntInput(
		"Input Width",
		"Enter integer",
		a.config.GetInputWidth(),
		a.config.SetInputWidth,
	)

	confInput := cwidget.NewFloatInput(
		"Confidence Threshold",
		"0..1",
		a.config.GetConfThresh(),
		a.config.SetConfThresh,
	)

	nmsInput := cwidget.NewFloatInput(
		"IoU Threshold",
		"0..1",
		a.config.GetNMSThresh(),
		a.config.SetNMSThresh,
	)

	projectEntry := widget.NewEntry()
	projectEntry.SetText(a.config.GetProject())
	projectEntry.OnChanged = a.config.SetProject

	hideLabelsCheck := widget.NewCheck("Hide labels", a.config.SetHideLabels)
	hideLabelsCheck.SetChecked(a.config.GetHideLabels())

	hideConfCheck := widget.NewCheck("Hide confidence", a.config.SetHideConf)
	hideConfCheck.SetChecked(a.config.GetHideConf())

	settings.Add(heightInput)
	settings.Add(widthInput)
	settings.Add(confInput)
	settings.Add(nmsInput)
	settings.Add(widget.NewLabel("Project Name:"))
	settings.Add(projectEntry)
	settings.Add(hideLabelsCheck)
	settings.Add(hideConfCheck)

	return settings
}
