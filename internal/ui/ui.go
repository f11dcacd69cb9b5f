package ui

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"wiivcinjector/internal/binstr"
	"wiivcinjector/internal/buildlog"
	"wiivcinjector/internal/config"
	"wiivcinjector/internal/controller"
	"wiivcinjector/internal/disc"
	"wiivcinjector/internal/exporter"
	"wiivcinjector/internal/tr"
)

type UI struct {
	app        fyne.App
	window     fyne.Window
	controller *controller.Controller

	config     *config.Config
	configPath string

	imageEntry     *widget.Entry
	browseBtn      *widget.Button
	openBtn        *widget.Button
	closeBtn       *widget.Button
	configBtn      *widget.Button
	exportBtn      *widget.Button
	templateBtn    *widget.Button
	newTemplateBtn *widget.Button
	statusIcon     *widget.Icon
	apiStatusLabel *widget.Label
	imageCard      *widget.Card

	infoTable *widget.Table
	infoData  map[string]string
	infoKeys  []string

	readCard    *widget.Card
	offsetLabel *widget.Label
	offsetEntry *widget.Entry
	peekCheck   *widget.Check
	readBtn     *widget.Button
	countLabel  *widget.Label
	countEntry  *widget.Entry
	orderSelect *widget.Select
	tableBtn    *widget.Button
	resultLabel *widget.Label

	stringsCard     *widget.Card
	entriesTable    *widget.Table
	entryRows       []binstr.Entry
	entriesMutex    sync.RWMutex
	clearEntriesBtn *widget.Button

	logTitle    *widget.Label
	copyLogBtn  *widget.Button
	clearLogBtn *widget.Button
	logText     *widget.RichText
	logScroll   *container.Scroll
	logMutex    sync.Mutex
	logBuilder  *strings.Builder

	captions map[string]func(n *tr.Node)
}

const maxLogSegments = 15000

func NewUI(c *controller.Controller, configPath string) *UI {
	a := app.NewWithID("com.wiivcinjector.app")
	a.Settings().SetTheme(&compactTheme{})
	w := a.NewWindow("WiiVC Injector")
	w.Resize(fyne.NewSize(1100, 760))

	ui := &UI{
		app:        a,
		window:     w,
		controller: c,
		config:     c.Config(),
		configPath: configPath,
		infoKeys: []string{
			"Game ID", "Title", "Platform", "Encoding", "Size", "Alternates", "Path",
		},
		infoData:       make(map[string]string),
		logBuilder:     new(strings.Builder),
		apiStatusLabel: widget.NewLabel(c.ApiStatus()),
	}

	ui.initWidgets()
	ui.initCallbacks()
	ui.initCaptions()
	ui.window.SetContent(ui.makeLayout())

	ui.window.SetOnClosed(func() {
		logrus.Info("window closed, shutting down")
		ui.saveConfig()
		ui.controller.Shutdown()
	})

	go func() {
		for {
			time.Sleep(1 * time.Second)
			fyne.Do(func() {
				ui.apiStatusLabel.SetText(ui.controller.ApiStatus())
			})
		}
	}()

	if ui.config.TemplatePath != "" {
		if err := c.LoadTemplate(ui.config.TemplatePath); err != nil {
			logrus.WithError(err).Warn("load template")
		}
	}
	ui.applyTranslation()

	if p := ui.config.ImagePath; p != "" {
		if _, err := os.Stat(p); err == nil {
			go ui.controller.Open(p)
		}
	}
	return ui
}

func (ui *UI) Run() {
	ui.window.ShowAndRun()
}

func (ui *UI) GetConfig() *config.Config {
	return ui.config
}

func (ui *UI) initWidgets() {
	ui.imageEntry = widget.NewEntry()
	ui.imageEntry.SetPlaceHolder("Path to a Wii or GameCube image (.iso/.gcm)")
	ui.imageEntry.SetText(ui.config.ImagePath)
	ui.imageEntry.OnSubmitted = func(string) { ui.onOpenClicked() }

	ui.browseBtn = widget.NewButtonWithIcon("Browse...", theme.FolderOpenIcon(), func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			path := reader.URI().Path()
			reader.Close()
			ui.imageEntry.SetText(path)
			ui.onOpenClicked()
		}, ui.window)
	})
	ui.openBtn = widget.NewButtonWithIcon("Open", theme.DocumentIcon(), ui.onOpenClicked)
	ui.closeBtn = widget.NewButtonWithIcon("Close", theme.CancelIcon(), func() {
		go ui.controller.Close()
	})
	ui.closeBtn.Disable()
	ui.configBtn = widget.NewButtonWithIcon("Settings", theme.SettingsIcon(), ui.showConfigDialog)
	ui.exportBtn = widget.NewButtonWithIcon("Export", theme.DownloadIcon(), ui.showExportDialog)
	ui.templateBtn = widget.NewButtonWithIcon("Load Template", theme.FileTextIcon(), ui.showLoadTemplateDialog)
	ui.newTemplateBtn = widget.NewButtonWithIcon("New Template", theme.DocumentCreateIcon(), ui.showNewTemplateDialog)

	ui.statusIcon = widget.NewIcon(theme.CancelIcon())

	ui.infoTable = widget.NewTable(
		func() (int, int) {
			return len(ui.infoKeys), 2
		},
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			lbl.Wrapping = fyne.TextWrapWord
			return lbl
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			key := ui.infoKeys[id.Row]
			if id.Col == 0 {
				lbl.SetText(key)
				lbl.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				lbl.SetText(ui.infoData[key])
				lbl.TextStyle = fyne.TextStyle{}
			}
			lbl.Alignment = fyne.TextAlignLeading
			lbl.Refresh()
		},
	)
	ui.infoTable.SetColumnWidth(0, 100)
	ui.infoTable.SetColumnWidth(1, 260)

	ui.offsetLabel = widget.NewLabel("Offset")
	ui.offsetEntry = widget.NewEntry()
	ui.offsetEntry.SetPlaceHolder("0x20")
	ui.offsetEntry.OnSubmitted = func(string) { ui.onReadClicked() }
	ui.peekCheck = widget.NewCheck("Peek (keep position)", nil)
	ui.peekCheck.SetChecked(true)
	ui.readBtn = widget.NewButtonWithIcon("Read String", theme.SearchIcon(), ui.onReadClicked)

	ui.countLabel = widget.NewLabel("Count")
	ui.countEntry = widget.NewEntry()
	ui.countEntry.SetText("1")
	ui.orderSelect = widget.NewSelect(append([]string(nil), byteOrderChoices...), nil)
	ui.orderSelect.PlaceHolder = "Byte Order"
	if strings.EqualFold(ui.config.ByteOrder, "little") {
		ui.orderSelect.SetSelectedIndex(1)
	} else {
		ui.orderSelect.SetSelectedIndex(0)
	}
	ui.orderSelect.OnChanged = func(string) {
		if ui.orderSelect.SelectedIndex() == 1 {
			ui.config.ByteOrder = "little"
		} else {
			ui.config.ByteOrder = "big"
		}
	}
	ui.tableBtn = widget.NewButtonWithIcon("Read Pointer Table", theme.ListIcon(), ui.onTableClicked)

	ui.resultLabel = widget.NewLabel("")
	ui.resultLabel.Wrapping = fyne.TextWrapWord

	ui.entriesTable = widget.NewTable(
		func() (int, int) {
			ui.entriesMutex.RLock()
			defer ui.entriesMutex.RUnlock()
			return len(ui.entryRows) + 1, 4
		},
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			rect := canvas.NewRectangle(color.Transparent)
			return container.NewStack(rect, lbl)
		},
		ui.updateEntriesTableCell,
	)
	for i, w := range []float32{100, 70, 80, 420} {
		ui.entriesTable.SetColumnWidth(i, w)
	}
	ui.entriesTable.OnSelected = func(id widget.TableCellID) {
		if id.Row == 0 {
			return
		}
		ui.entriesMutex.RLock()
		defer ui.entriesMutex.RUnlock()
		if row := id.Row - 1; row < len(ui.entryRows) {
			e := ui.entryRows[row]
			ui.offsetEntry.SetText(fmt.Sprintf("0x%X", e.Offset))
			ui.resultLabel.SetText(e.Text)
		}
	}
	ui.clearEntriesBtn = widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
		go ui.controller.ClearEntries()
	})

	ui.logText = widget.NewRichText()
	ui.logText.Wrapping = fyne.TextWrapOff
	ui.logText.Segments = []widget.RichTextSegment{&widget.TextSegment{Text: "", Style: widget.RichTextStyleInline}}
	ui.logScroll = container.NewScroll(ui.logText)
	ui.logScroll.SetMinSize(fyne.NewSize(200, 150))
	ui.logTitle = widget.NewLabelWithStyle("Logs", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.clearLogBtn = widget.NewButtonWithIcon("Clear Logs", theme.ContentClearIcon(), ui.clearLogs)
	ui.copyLogBtn = widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), ui.copyLogs)

	ui.imageCard = widget.NewCard("Image", "", nil)
	ui.readCard = widget.NewCard("Read", "", nil)
	ui.stringsCard = widget.NewCard("Strings", "", nil)
}

func (ui *UI) updateEntriesTableCell(id widget.TableCellID, obj fyne.CanvasObject) {
	ui.entriesMutex.RLock()
	defer ui.entriesMutex.RUnlock()

	stack := obj.(*fyne.Container)
	lbl := stack.Objects[1].(*widget.Label)
	if id.Row == 0 {
		lbl.TextStyle = fyne.TextStyle{Bold: true}
		lbl.SetText([]string{"Offset", "Length", "Encoding", "Text"}[id.Col])
		return
	}
	lbl.TextStyle = fyne.TextStyle{}
	row := id.Row - 1
	if row >= len(ui.entryRows) {
		lbl.SetText("")
		return
	}
	e := ui.entryRows[row]
	switch id.Col {
	case 0:
		lbl.SetText(fmt.Sprintf("0x%08X", e.Offset))
	case 1:
		lbl.SetText(strconv.Itoa(e.Length))
	case 2:
		lbl.SetText(e.Encoding.String())
	default:
		lbl.SetText(strings.ReplaceAll(e.Text, "\n", `\n`))
	}
}

func (ui *UI) initCallbacks() {
	c := ui.controller
	go func() {
		for msg := range c.LogChan {
			ts := time.Now().Format("15:04:05")
			fullLine := fmt.Sprintf("[%s] %s\n", ts, msg)

			newSegments := parseColorTags(fullLine)
			fyne.Do(func() {
				ui.logMutex.Lock()
				defer ui.logMutex.Unlock()
				ui.logBuilder.WriteString(fullLine)
				ui.logText.Segments = append(ui.logText.Segments, newSegments...)
				if len(ui.logText.Segments) > maxLogSegments {
					startIndex := len(ui.logText.Segments) - (maxLogSegments * 3 / 4)
					ui.logText.Segments = ui.logText.Segments[startIndex:]
				}
				ui.logText.Refresh()
				if ui.logScroll != nil {
					ui.logScroll.ScrollToBottom()
				}
			})
		}
	}()

	c.OnImageChange = func(info *disc.Info, err error) {
		fyne.Do(func() {
			if info == nil {
				ui.infoData = make(map[string]string)
				ui.statusIcon.SetResource(theme.CancelIcon())
				ui.closeBtn.Disable()
			} else {
				ui.infoData = map[string]string{
					"Game ID":    info.GameID,
					"Title":      info.Title,
					"Platform":   string(info.Platform),
					"Encoding":   info.TitleEncoding,
					"Size":       info.SizeText,
					"Alternates": strings.Join(info.Alternates, ", "),
					"Path":       info.Path,
				}
				ui.statusIcon.SetResource(theme.ConfirmIcon())
				ui.closeBtn.Enable()
				ui.saveConfig()
			}
			ui.infoTable.Refresh()
			if err != nil {
				dialog.ShowError(err, ui.window)
			}
		})
	}

	c.OnEntriesUpdate = func(entries []binstr.Entry) {
		fyne.Do(func() {
			ui.entriesMutex.Lock()
			ui.entryRows = entries
			ui.entriesMutex.Unlock()
			ui.entriesTable.Refresh()
		})
	}
}

// initCaptions registers a setter per translatable widget, keyed by the
// names used in formTree.
func (ui *UI) initCaptions() {
	button := func(b *widget.Button) func(*tr.Node) {
		return func(n *tr.Node) { b.SetText(n.Text) }
	}
	card := func(c *widget.Card) func(*tr.Node) {
		return func(n *tr.Node) { c.SetTitle(n.Text) }
	}
	label := func(l *widget.Label) func(*tr.Node) {
		return func(n *tr.Node) { l.SetText(n.Text) }
	}
	ui.captions = map[string]func(*tr.Node){
		mainFormName:      func(n *tr.Node) { ui.window.SetTitle(n.Text) },
		"ImageCard":       card(ui.imageCard),
		"BrowseBtn":       button(ui.browseBtn),
		"OpenBtn":         button(ui.openBtn),
		"CloseBtn":        button(ui.closeBtn),
		"ConfigBtn":       button(ui.configBtn),
		"ExportBtn":       button(ui.exportBtn),
		"ReadCard":        card(ui.readCard),
		"OffsetLabel":     label(ui.offsetLabel),
		"ReadBtn":         button(ui.readBtn),
		"CountLabel":      label(ui.countLabel),
		"TableBtn":        button(ui.tableBtn),
		"StringsCard":     card(ui.stringsCard),
		"ClearEntriesBtn": button(ui.clearEntriesBtn),
		"LogsPanel":       label(ui.logTitle),
		"CopyLogBtn":      button(ui.copyLogBtn),
		"ClearLogBtn":     button(ui.clearLogBtn),
		"TemplateBtn":     button(ui.templateBtn),
		"NewTemplateBtn":  button(ui.newTemplateBtn),
		"PeekCheck": func(n *tr.Node) {
			ui.peekCheck.Text = n.Text
			ui.peekCheck.Refresh()
		},
		"OrderSelect": func(n *tr.Node) {
			idx := ui.orderSelect.SelectedIndex()
			ui.orderSelect.PlaceHolder = n.Text
			ui.orderSelect.SetOptions(n.Items)
			if idx >= 0 {
				ui.orderSelect.SetSelectedIndex(idx)
			}
		},
	}
}

// caption is the translated text of a main window node.
func (ui *UI) caption(name string) string {
	return formCaption(ui.controller.Template(), name)
}

// applyTranslation sets every caption from the loaded template.
func (ui *UI) applyTranslation() {
	tr.Walk(translatedForm(ui.controller.Template()), &captionVisitor{setters: ui.captions})
}

func (ui *UI) onOpenClicked() {
	path := strings.TrimSpace(ui.imageEntry.Text)
	if path == "" {
		return
	}
	go ui.controller.Open(path)
}

func (ui *UI) onReadClicked() {
	offset, err := parseOffset(ui.offsetEntry.Text)
	if err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	peek := ui.peekCheck.Checked
	go func() {
		e, err := ui.controller.ReadString(offset, peek)
		if err != nil {
			fyne.Do(func() { ui.resultLabel.SetText("") })
			return
		}
		fyne.Do(func() {
			ui.resultLabel.SetText(e.Text)
			if !peek {
				// the cursor moved past the terminator
				ui.offsetEntry.SetText(fmt.Sprintf("0x%X", e.Offset+int64(e.Length)+1))
			}
		})
	}()
}

func (ui *UI) onTableClicked() {
	offset, err := parseOffset(ui.offsetEntry.Text)
	if err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	count, err := strconv.Atoi(strings.TrimSpace(ui.countEntry.Text))
	if err != nil || count < 1 {
		dialog.ShowError(fmt.Errorf("invalid count %q", ui.countEntry.Text), ui.window)
		return
	}
	go ui.controller.ReadTable(offset, count)
}

// parseOffset accepts 0x-prefixed hex, decimal, or bare hex digits.
func parseOffset(s string) (int64, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	var v int64
	var err error
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err = strconv.ParseInt(lower[2:], 16, 64)
	default:
		v, err = strconv.ParseInt(lower, 10, 64)
		if err != nil {
			v, err = strconv.ParseInt(lower, 16, 64)
		}
	}
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return v, nil
}

func (ui *UI) showConfigDialog() {
	maxLenEntry := widget.NewEntry()
	maxLenEntry.SetPlaceHolder("bytes, 0 for default")
	maxLenEntry.SetText(strconv.Itoa(ui.config.MaxStringLength))

	templateEntry := widget.NewEntry()
	templateEntry.SetPlaceHolder("empty for built-in English")
	templateEntry.SetText(ui.config.TemplatePath)
	templateBrowseBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err == nil && reader != nil {
				templateEntry.SetText(reader.URI().Path())
				reader.Close()
			}
		}, ui.window)
	})
	templateRow := container.NewBorder(nil, nil, nil, templateBrowseBtn, templateEntry)

	trCacheCheck := widget.NewCheck("Cache translations", nil)
	trCacheCheck.SetChecked(ui.config.EnableTrCache)

	apiPortEntry := widget.NewEntry()
	apiPortEntry.SetPlaceHolder("e.g., 8080")
	apiPortEntry.SetText(ui.config.ApiPort)

	apiEnabledCheck := widget.NewCheck("Enable API/Web Server", nil)
	apiEnabledCheck.SetChecked(ui.config.ApiEnabled)

	disableLogCheck := widget.NewCheck("Disable logs", nil)
	disableLogCheck.SetChecked(ui.config.DisableLog)

	formItems := []*widget.FormItem{
		widget.NewFormItem("Max String Length", maxLenEntry),
		widget.NewFormItem("Template", templateRow),
		widget.NewFormItem("", trCacheCheck),
		widget.NewFormItem("API Port", apiPortEntry),
		widget.NewFormItem("", apiEnabledCheck),
		widget.NewFormItem("", disableLogCheck),
	}

	d := dialog.NewForm(ui.caption("ConfigBtn"), "Save", "Cancel", formItems, func(ok bool) {
		if !ok {
			return
		}
		cfg := *ui.config
		if n, err := strconv.Atoi(strings.TrimSpace(maxLenEntry.Text)); err == nil {
			cfg.MaxStringLength = n
		}
		cfg.EnableTrCache = trCacheCheck.Checked
		cfg.ApiPort = strings.TrimSpace(apiPortEntry.Text)
		cfg.ApiEnabled = apiEnabledCheck.Checked
		cfg.DisableLog = disableLogCheck.Checked
		cfg.TemplatePath = strings.TrimSpace(templateEntry.Text)
		if err := cfg.Validate(); err != nil {
			dialog.ShowError(err, ui.window)
			return
		}

		go func() {
			ui.controller.ApplySettings(&cfg)
			fyne.Do(func() {
				ui.config = ui.controller.Config()
				ui.applyTranslation()
				ui.saveConfig()
			})
		}()
	}, ui.window)

	d.Resize(fyne.NewSize(500, 360))
	d.Show()
}

func (ui *UI) loadTemplate(path string) {
	go func() {
		if err := ui.controller.LoadTemplate(path); err != nil {
			return
		}
		fyne.Do(func() {
			ui.applyTranslation()
			ui.saveConfig()
		})
	}()
}

func (ui *UI) showLoadTemplateDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		ui.loadTemplate(path)
	}, ui.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".ini"}))
	d.Show()
}

func (ui *UI) showNewTemplateDialog() {
	languageEntry := widget.NewEntry()
	languageEntry.SetPlaceHolder("e.g., 简体中文")
	authorEntry := widget.NewEntry()

	d := dialog.NewForm(ui.caption("NewTemplateBtn"), "Create", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Language", languageEntry),
			widget.NewFormItem("Author", authorEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			language := strings.TrimSpace(languageEntry.Text)
			author := strings.TrimSpace(authorEntry.Text)
			saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, ui.window)
					return
				}
				if writer == nil {
					return
				}
				path := writer.URI().Path()
				writer.Close()
				go ui.createTemplate(path, language, author)
			}, ui.window)
			saveDialog.SetFileName("template.ini")
			saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{".ini"}))
			saveDialog.Show()
		}, ui.window)
	d.Show()
}

func (ui *UI) createTemplate(path, language, author string) {
	t, err := ui.controller.CreateTemplate(path, language, author)
	if err == nil {
		err = t.AppendForm(formTree())
	}
	if err != nil {
		fyne.Do(func() { dialog.ShowError(err, ui.window) })
		return
	}
	fyne.CurrentApp().SendNotification(&fyne.Notification{
		Title:   "Template Created",
		Content: path,
	})
}

func (ui *UI) showExportDialog() {
	fileTypeRadio := widget.NewRadioGroup([]string{"JSON", "CSV", "Excel"}, nil)
	fileTypeRadio.SetSelected("JSON")
	fileTypeRadio.Horizontal = true

	d := dialog.NewForm(ui.caption("ExportBtn"), "Export", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Format", fileTypeRadio),
		},
		func(ok bool) {
			if !ok {
				return
			}
			format := fileTypeRadio.Selected
			var extension string
			switch format {
			case "CSV":
				extension = ".csv"
			case "Excel":
				extension = ".xlsx"
			default:
				extension = ".json"
			}

			saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, ui.window)
					return
				}
				if writer == nil {
					return
				}
				filePath := writer.URI().Path()
				writer.Close()
				go ui.runExport(filePath, format)
			}, ui.window)
			saveDialog.SetFileName("strings" + extension)
			saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{extension}))
			saveDialog.Show()
		}, ui.window)
	d.Show()
}

func (ui *UI) runExport(filePath, format string) {
	entries := ui.controller.Entries()
	if len(entries) == 0 {
		fyne.CurrentApp().SendNotification(&fyne.Notification{
			Title:   "Export Aborted",
			Content: "No strings have been read yet.",
		})
		ui.controller.Log("[yellow]Export aborted: no strings.[-]")
		return
	}

	var err error
	switch format {
	case "CSV":
		err = exporter.ExportToCSV(entries, filePath)
	case "Excel":
		err = exporter.ExportToExcel(entries, filePath)
	default:
		err = exporter.ExportToJSON(entries, filePath)
	}

	if err != nil {
		fyne.CurrentApp().SendNotification(&fyne.Notification{
			Title:   "Export Failed",
			Content: err.Error(),
		})
		ui.controller.Log(fmt.Sprintf("[red]Export failed: %v[-]", err))
		return
	}
	fyne.CurrentApp().SendNotification(&fyne.Notification{
		Title:   "Export Successful",
		Content: "Strings exported to " + filePath,
	})
	ui.controller.Log(fmt.Sprintf("[green]Exported %d strings to %s[-]", len(entries), filePath))
}

func (ui *UI) makeLayout() fyne.CanvasObject {
	imageWithStatus := container.NewBorder(nil, nil, nil, container.NewHBox(ui.browseBtn, ui.statusIcon), ui.imageEntry)
	ui.imageCard.SetContent(container.NewVBox(
		imageWithStatus,
		container.NewGridWithColumns(4, ui.openBtn, ui.closeBtn, ui.configBtn, ui.exportBtn),
		container.NewGridWithColumns(2, ui.templateBtn, ui.newTemplateBtn),
		ui.apiStatusLabel,
	))

	infoScroll := container.NewVScroll(ui.infoTable)
	infoScroll.SetMinSize(fyne.NewSize(0, 220))
	leftPanel := container.NewVSplit(ui.imageCard, widget.NewCard("", "", infoScroll))
	leftPanel.SetOffset(0.3)

	ui.readCard.SetContent(container.NewVBox(
		container.NewBorder(nil, nil, ui.offsetLabel, ui.peekCheck, ui.offsetEntry),
		container.NewBorder(nil, nil, ui.countLabel, ui.orderSelect, ui.countEntry),
		container.NewGridWithColumns(2, ui.readBtn, ui.tableBtn),
		ui.resultLabel,
	))

	toolbarBg := canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))
	toolbar := container.NewStack(toolbarBg, container.NewHBox(ui.clearEntriesBtn))
	ui.stringsCard.SetContent(container.NewBorder(toolbar, nil, nil, nil, container.NewVScroll(ui.entriesTable)))

	header := container.NewBorder(
		nil, nil,
		ui.logTitle,
		container.NewHBox(ui.copyLogBtn, ui.clearLogBtn),
		layout.NewSpacer(),
	)
	logContainer := container.NewBorder(header, nil, nil, nil, ui.logScroll)

	rightPanel := container.NewVSplit(
		container.NewBorder(ui.readCard, nil, nil, nil, ui.stringsCard),
		logContainer,
	)
	rightPanel.SetOffset(0.6)

	mainLayout := container.NewHSplit(leftPanel, rightPanel)
	mainLayout.SetOffset(0.35)
	return container.NewStack(mainLayout)
}

func (ui *UI) copyLogs() {
	ui.logMutex.Lock()
	text := ui.logBuilder.String()
	ui.logMutex.Unlock()
	ui.window.Clipboard().SetContent(buildlog.StripTags(text))
}

func (ui *UI) clearLogs() {
	ui.logMutex.Lock()
	ui.logBuilder.Reset()
	ui.logText.Segments = []widget.RichTextSegment{
		&widget.TextSegment{Text: "", Style: widget.RichTextStyleInline},
	}
	ui.logMutex.Unlock()
	fyne.Do(func() {
		ui.logText.Refresh()
		ui.logScroll.ScrollToTop()
	})
}

type compactTheme struct{}

func (t *compactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameBackground && variant == theme.VariantLight {
		return color.NRGBA{R: 245, G: 247, B: 250, A: 255}
	}
	if name == theme.ColorNameDisabled {
		return color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	}
	if name == theme.ColorNameSeparator || name == theme.ColorNameShadow {
		return color.NRGBA{R: 0, G: 0, B: 0, A: 0}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *compactTheme) Font(style fyne.TextStyle) fyne.Resource {
	if CJKFont != nil && !style.Monospace && !style.Symbol {
		return CJKFont
	}
	return theme.DefaultTheme().Font(style)
}
func (t *compactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (t *compactTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 4
	case theme.SizeNameText:
		return 12
	case theme.SizeNameInlineIcon:
		return 14
	case theme.SizeNameHeadingText:
		return 14
	default:
		return theme.DefaultTheme().Size(name)
	}
}

func (ui *UI) saveConfig() {
	if ui.configPath == "" {
		return
	}
	if err := ui.config.Save(ui.configPath); err != nil {
		ui.controller.Log(fmt.Sprintf("[red]%v[-]", err))
		logrus.WithError(err).Warn("save config")
	}
}

var themeColorNameMap = map[string]fyne.ThemeColorName{
	"green":  theme.ColorNameSuccess,
	"red":    theme.ColorNameError,
	"blue":   theme.ColorNamePrimary,
	"yellow": theme.ColorNameWarning,
}

func parseColorTags(logText string) []widget.RichTextSegment {
	matches := buildlog.TagRegex.FindAllStringIndex(logText, -1)
	var segments []widget.RichTextSegment
	lastIndex := 0
	currentStyle := widget.RichTextStyle{ColorName: "", Inline: true}
	for _, match := range matches {
		tagStart := match[0]
		tagEnd := match[1]
		if tagStart > lastIndex {
			segments = append(segments, &widget.TextSegment{
				Style: currentStyle,
				Text:  logText[lastIndex:tagStart],
			})
		}
		tag := logText[tagStart:tagEnd]
		if tag == "[-]" {
			currentStyle.ColorName = ""
		} else if name, ok := themeColorNameMap[strings.Trim(tag, "[]")]; ok {
			currentStyle.ColorName = name
		} else {
			currentStyle.ColorName = ""
		}
		lastIndex = tagEnd
	}
	if lastIndex < len(logText) {
		segments = append(segments, &widget.TextSegment{
			Style: currentStyle,
			Text:  logText[lastIndex:],
		})
	}
	return segments
}
