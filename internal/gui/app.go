package gui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/phuslu/log"

	"github.com/fmuoria/hiring-agent/internal/agent"
	"github.com/fmuoria/hiring-agent/internal/config"
	"github.com/fmuoria/hiring-agent/internal/export"
	"github.com/fmuoria/hiring-agent/internal/ingestion"
	"github.com/fmuoria/hiring-agent/internal/models"
)

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	configPath string
	agent      *agent.HiringAgent
	ctx        context.Context
	cancelFunc context.CancelFunc

	// UI Components
	agentsLabel    *widget.Label
	baseURLEntry   *widget.Entry
	fileList       *widget.List
	processBtn     *widget.Button
	cancelBtn      *widget.Button
	progressBar    *widget.ProgressBar
	progressLabel  *widget.Label
	resultsBox     *fyne.Container
	insightsBtn    *widget.Button
	exportBtn      *widget.Button
	matchEntry     *widget.Entry
	matchResults   *widget.Table
	explanations   []agent.Explanation
	matchedSummary *widget.Label

	uploads  []models.Upload
	previews []ingestion.Preview
	report   *agent.RunReport
}

// NewApp creates a new GUI application for cfg, which was loaded from configPath
func NewApp(cfg *config.Config, configPath string) *App {
	a := app.New()
	w := a.NewWindow("Hiring Agent Dashboard")
	w.Resize(fyne.NewSize(1100, 800))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		configPath: configPath,
		agent:      agent.NewHiringAgent(cfg, nil),
	}

	guiApp.setupUI()
	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Process Files", a.createProcessTab()),
		container.NewTabItem("File Matching", a.createMatchTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createProcessTab creates the main processing tab
func (a *App) createProcessTab() fyne.CanvasObject {
	a.agentsLabel = widget.NewLabel("")
	a.refreshAgentsLabel()

	a.baseURLEntry = widget.NewEntry()
	a.baseURLEntry.SetText(a.config.N8N.BaseURL)
	a.baseURLEntry.SetPlaceHolder("http://localhost:5678")

	connectionSection := container.NewVBox(
		widget.NewLabelWithStyle("n8n Connection", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.agentsLabel,
		widget.NewForm(widget.NewFormItem("Base URL", a.baseURLEntry)),
	)

	// Upload section
	a.fileList = widget.NewList(
		func() int { return len(a.uploads) },
		func() fyne.CanvasObject { return widget.NewLabel("Template") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if id < len(a.previews) {
				item.(*widget.Label).SetText(previewText(a.previews[id]))
			}
		},
	)

	addBtn := widget.NewButton("Add CSV File...", a.handleAddFile)
	clearBtn := widget.NewButton("Clear", func() {
		a.uploads = nil
		a.previews = nil
		a.fileList.Refresh()
	})

	uploadSection := container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Files", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			container.NewHBox(addBtn, clearBtn),
		),
		nil, nil, nil,
		container.NewGridWrap(fyne.NewSize(700, 120), a.fileList),
	)

	// Progress section
	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.processBtn = widget.NewButton("Run Agents", a.handleProcess)
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	progressSection := container.NewVBox(
		a.progressLabel,
		a.progressBar,
		container.NewHBox(a.processBtn, a.cancelBtn),
	)

	// Results section
	a.resultsBox = container.NewVBox()
	a.insightsBtn = widget.NewButton("Download Insights", a.handleDownloadInsights)
	a.insightsBtn.Disable()
	a.exportBtn = widget.NewButton("Export to Excel", a.handleExport)
	a.exportBtn.Disable()

	resultsSection := container.NewVBox(
		widget.NewLabelWithStyle("Results", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(a.insightsBtn, a.exportBtn),
		a.resultsBox,
	)

	return container.NewVScroll(
		container.NewVBox(
			connectionSection,
			widget.NewSeparator(),
			uploadSection,
			widget.NewSeparator(),
			progressSection,
			widget.NewSeparator(),
			resultsSection,
		),
	)
}

// createMatchTab shows which agents a filename would be sent to
func (a *App) createMatchTab() fyne.CanvasObject {
	a.matchEntry = widget.NewEntry()
	a.matchEntry.SetPlaceHolder("e.g., Summary.csv")
	a.matchedSummary = widget.NewLabel("")

	headers := []string{"Agent", "Enabled", "Keywords", "Hits", "Name Match"}
	a.matchResults = widget.NewTable(
		func() (int, int) { return len(a.explanations) + 1, len(headers) },
		func() fyne.CanvasObject { return widget.NewLabel("Template") },
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(headers[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			label.SetText(explanationCell(a.explanations[id.Row-1], id.Col))
		},
	)
	a.matchResults.SetColumnWidth(0, 220)
	a.matchResults.SetColumnWidth(1, 80)
	a.matchResults.SetColumnWidth(2, 260)
	a.matchResults.SetColumnWidth(3, 180)
	a.matchResults.SetColumnWidth(4, 100)

	check := func() {
		name := strings.TrimSpace(a.matchEntry.Text)
		agents := a.config.N8N.Agents.All()
		a.explanations = agent.Explain(name, agents)
		matched := agent.OrderByGroups(agent.Match(name, agents, a.config.DefaultAgent), a.config.N8N.Groups)
		if len(matched) == 0 {
			a.matchedSummary.SetText("No agent would process this file")
		} else {
			a.matchedSummary.SetText("Would run: " + strings.Join(matched, ", "))
		}
		a.matchResults.Refresh()
	}
	a.matchEntry.OnSubmitted = func(string) { check() }

	return container.NewBorder(
		container.NewVBox(
			widget.NewForm(widget.NewFormItem("Filename", a.matchEntry)),
			widget.NewButton("Check", check),
			a.matchedSummary,
		),
		nil, nil, nil,
		a.matchResults,
	)
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	pathLabel := widget.NewLabel("Config file: " + a.configPath)

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(strconv.Itoa(a.config.N8N.TimeoutSeconds))

	defaultEntry := widget.NewEntry()
	defaultEntry.SetText(a.config.DefaultAgent)
	defaultEntry.SetPlaceHolder(config.NoDefaultAgent)

	yamlEntry := widget.NewMultiLineEntry()
	yamlEntry.SetMinRowsVisible(18)
	yamlEntry.TextStyle = fyne.TextStyle{Monospace: true}
	if data, err := a.config.Marshal(); err == nil {
		yamlEntry.SetText(string(data))
	}

	form := widget.NewForm(
		widget.NewFormItem("Timeout (seconds)", timeoutEntry),
		widget.NewFormItem("Default Agent", defaultEntry),
	)

	// fields win over the YAML text for the values they show
	build := func() (*config.Config, error) {
		cfg, err := config.Parse([]byte(yamlEntry.Text))
		if err != nil {
			return nil, err
		}
		secs, err := strconv.Atoi(strings.TrimSpace(timeoutEntry.Text))
		if err != nil {
			return nil, fmt.Errorf("timeout must be a whole number of seconds")
		}
		cfg.N8N.TimeoutSeconds = secs
		cfg.DefaultAgent = strings.TrimSpace(defaultEntry.Text)
		cfg.N8N.BaseURL = strings.TrimSpace(a.baseURLEntry.Text)
		return cfg, cfg.Validate()
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		cfg, err := build()
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if err := cfg.SaveTo(a.configPath); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		a.config = cfg
		a.agent = agent.NewHiringAgent(cfg, nil)
		a.refreshAgentsLabel()
		log.Info().Str("path", a.configPath).Int("agents", cfg.N8N.Agents.Len()).Msg("Settings saved")
		dialog.ShowInformation("Success", "Settings saved successfully", a.mainWindow)
	})

	validateBtn := widget.NewButton("Validate", func() {
		if _, err := build(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	return container.NewVScroll(container.NewVBox(
		pathLabel,
		form,
		widget.NewLabel("Agents (YAML)"),
		yamlEntry,
		container.NewHBox(saveBtn, validateBtn),
	))
}

func (a *App) refreshAgentsLabel() {
	enabled := len(a.config.N8N.Agents.Enabled())
	if enabled == 0 {
		a.agentsLabel.Importance = widget.WarningImportance
		a.agentsLabel.SetText("No agents enabled. Add agents in the Settings tab.")
		return
	}
	a.agentsLabel.Importance = widget.MediumImportance
	a.agentsLabel.SetText(fmt.Sprintf("%d of %d agents enabled", enabled, a.config.N8N.Agents.Len()))
}

// handleAddFile picks a CSV file and adds it to the upload list
func (a *App) handleAddFile() {
	fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		up, err := ingestion.ReadUpload(uc.URI().Name(), uc)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		preview, err := ingestion.Describe(up)
		if err != nil {
			log.Warn().Err(err).Str("file", up.Name).Msg("Could not preview file")
		}

		a.uploads = append(a.uploads, up)
		a.previews = append(a.previews, preview)
		a.fileList.Refresh()
	}, a.mainWindow)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fd.Show()
}

// handleProcess runs the uploaded files through their agents
func (a *App) handleProcess() {
	if len(a.uploads) == 0 {
		dialog.ShowError(fmt.Errorf("please add at least one CSV file"), a.mainWindow)
		return
	}

	a.processBtn.Disable()
	a.cancelBtn.Enable()
	a.insightsBtn.Disable()
	a.exportBtn.Disable()
	a.resultsBox.RemoveAll()
	a.progressBar.SetValue(0)

	a.ctx, a.cancelFunc = context.WithCancel(context.Background())

	a.agent.SetProgressCallback(func(current, total int, message string) {
		fyne.Do(func() {
			if total > 0 {
				a.progressBar.SetValue(float64(current) / float64(total))
			}
			a.progressLabel.SetText(message)
		})
	})

	uploads := append([]models.Upload(nil), a.uploads...)
	opts := agent.RunOptions{BaseURL: strings.TrimSpace(a.baseURLEntry.Text)}

	go func() {
		report, err := a.agent.Process(a.ctx, uploads, opts)

		fyne.Do(func() {
			a.processBtn.Enable()
			a.cancelBtn.Disable()

			if report != nil {
				a.report = report
				a.showReport(report)
				a.insightsBtn.Enable()
				a.exportBtn.Enable()
			}

			switch {
			case errors.Is(err, context.Canceled):
				a.progressLabel.SetText("Processing canceled")
				return
			case err != nil:
				a.progressLabel.SetText("Error: " + err.Error())
				dialog.ShowError(err, a.mainWindow)
				return
			}

			pairs := len(report.Pairs())
			a.progressLabel.SetText(fmt.Sprintf("Complete! %d agent results, %d insights", pairs, len(report.Insights)))
			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Processing Complete",
				Content: fmt.Sprintf("Processed %d files", len(report.Files)),
			})
		})
	}()
}

// handleCancel handles cancellation of processing
func (a *App) handleCancel() {
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.progressLabel.SetText("Canceling...")
	}
}

// showReport lays out the results of a run, grouped per file
func (a *App) showReport(report *agent.RunReport) {
	a.resultsBox.RemoveAll()

	for _, file := range report.Files {
		a.resultsBox.Add(widget.NewLabelWithStyle("Results for "+file.File, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		if len(file.Pairs) == 0 {
			notice := widget.NewLabel("No agent matched this file")
			notice.Importance = widget.WarningImportance
			a.resultsBox.Add(notice)
			continue
		}

		group := ""
		for _, pair := range file.Pairs {
			if pair.Group != "" && pair.Group != group {
				group = pair.Group
				a.resultsBox.Add(widget.NewLabelWithStyle(group, fyne.TextAlignLeading, fyne.TextStyle{Bold: true, Italic: true}))
			}
			a.resultsBox.Add(widget.NewCard(pair.Heading(), pair.AgentID, buildView(pair.View)))
		}
		a.resultsBox.Add(widget.NewSeparator())
	}

	if len(report.Insights) > 0 {
		a.resultsBox.Add(widget.NewCard("Consolidated Insights", fmt.Sprintf("%d unique items", len(report.Insights)), numberedList(report.Insights)))
	}
	a.resultsBox.Refresh()
}

// handleDownloadInsights saves the consolidated insights as a text file
func (a *App) handleDownloadInsights() {
	if a.report == nil {
		dialog.ShowError(fmt.Errorf("no results to download"), a.mainWindow)
		return
	}

	a.saveFile(export.InsightsFileName, func(w io.Writer) error {
		return export.WriteInsightsText(w, a.report.Insights)
	})
}

// handleExport handles exporting results to Excel
func (a *App) handleExport() {
	if a.report == nil {
		dialog.ShowError(fmt.Errorf("no results to export"), a.mainWindow)
		return
	}

	timestamp := time.Now().Format("2006-01-02_150405")
	a.saveFile(fmt.Sprintf("Hiring_Agent_Results_%s.xlsx", timestamp), func(w io.Writer) error {
		return export.WriteExcel(w, a.report)
	})
}

func (a *App) saveFile(defaultName string, write func(io.Writer) error) {
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		if err := write(uc); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Saved "+filepath.Base(uc.URI().Path()), a.mainWindow)
	}, a.mainWindow)
	fd.SetFileName(defaultName)
	fd.Show()
}

func previewText(p ingestion.Preview) string {
	if len(p.Columns) == 0 {
		return fmt.Sprintf("%s (%d bytes)", p.Name, p.Size)
	}
	return fmt.Sprintf("%s: %d rows, columns %s", p.Name, p.Rows, strings.Join(p.Columns, ", "))
}

func explanationCell(e agent.Explanation, col int) string {
	switch col {
	case 0:
		return e.AgentID
	case 1:
		return yesNo(e.Enabled)
	case 2:
		return strings.Join(e.Keywords, ", ")
	case 3:
		return strings.Join(e.Hits, ", ")
	case 4:
		return yesNo(e.NameMatch)
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
