package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"wiivcinjector/internal/binstr"
	"wiivcinjector/internal/buildlog"
	"wiivcinjector/internal/config"
	"wiivcinjector/internal/disc"
	"wiivcinjector/internal/titleid"
	"wiivcinjector/internal/tr"
	"wiivcinjector/internal/util"
)

var ErrNoImage = errors.New("no image is open")

// ImageManager defines the interface for API server interactions, breaking import cycles.
type ImageManager interface {
	Info() (*disc.Info, error)
	ReadString(offset int64, peek bool) (binstr.Entry, error)
	ReadTable(offset int64, count int) ([]binstr.Entry, error)
	Entries() []binstr.Entry
	GetApiBroadcastChan() chan buildlog.Item
	IsLogDisabled() bool
}

// ApiServerStarter defines the function signature for starting the API server.
// setStatus may be called from any goroutine.
type ApiServerStarter func(ctx context.Context, mgr ImageManager, setStatus func(string), cfg *config.Config) *http.Server

type Controller struct {
	mu      sync.RWMutex
	image   *disc.Image
	info    *disc.Info
	entries []binstr.Entry
	cfg     *config.Config
	tmpl    *tr.Template
	ids     titleid.Map
	out     *buildlog.Buffer

	// API Server fields, guarded by apiMu. apiStatus is guarded by mu.
	apiMu           sync.Mutex
	apiServer       *http.Server
	apiServerCtx    context.Context
	apiServerCancel context.CancelFunc
	apiStarter      ApiServerStarter
	apiStatus       string

	// UI callbacks
	OnImageChange   func(info *disc.Info, err error)
	OnEntriesUpdate func(entries []binstr.Entry)

	// Channels
	ApiBroadcastChan chan buildlog.Item
	LogChan          chan string
}

func New(cfg *config.Config) *Controller {
	if cfg == nil {
		cfg = config.Default()
	}
	ids, err := titleid.Default()
	if err != nil {
		logrus.WithError(err).Warn("title id map unavailable")
		ids = titleid.Map{}
	}
	c := &Controller{
		cfg:              cfg,
		ids:              ids,
		out:              buildlog.New(16 * 1024),
		ApiBroadcastChan: make(chan buildlog.Item, 64),
		LogChan:          make(chan string, 256),
	}
	c.out.OnFlush = func(it buildlog.Item) {
		it.Output = strings.TrimRight(it.Output, "\n")
		c.Log(it.Tagged())
		select {
		case c.ApiBroadcastChan <- it:
		default:
		}
	}
	return c
}

func (c *Controller) Log(msg string) {
	if c.IsLogDisabled() {
		return
	}
	select {
	case c.LogChan <- msg:
	default:
	}
}

// IsLogDisabled reports whether logs should be suppressed based on current config
func (c *Controller) IsLogDisabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg != nil && c.cfg.DisableLog
}

func (c *Controller) Config() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Tr translates s with the loaded template, if any.
func (c *Controller) Tr(s string) string {
	c.mu.RLock()
	t := c.tmpl
	c.mu.RUnlock()
	if t == nil {
		return s
	}
	return t.Tr(s)
}

func (c *Controller) trf(format string, args ...any) string {
	return fmt.Sprintf(c.Tr(format), args...)
}

func (c *Controller) Template() *tr.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tmpl
}

// LoadTemplate switches the translation to the template at path.
// An empty path restores the built-in texts. Loading the current
// template again re-reads its file.
func (c *Controller) LoadTemplate(path string) error {
	return c.loadTemplate(path, false)
}

func (c *Controller) loadTemplate(path string, fresh bool) error {
	defer c.out.Flush()
	if strings.TrimSpace(path) == "" {
		c.mu.Lock()
		c.tmpl = nil
		c.cfg.TemplatePath = ""
		c.mu.Unlock()
		return nil
	}
	if cur := c.Template(); !fresh && cur != nil && util.SamePath(cur.FileName(), path) {
		if err := cur.Reload(); err != nil {
			c.out.Append(c.trf(msgTemplateFailed, err), buildlog.Error, true)
			return err
		}
		c.out.Append(c.trf(msgTemplateLoaded, path, cur.Header(AppName).Language), buildlog.Succeed, true)
		return nil
	}

	t, err := tr.Load(path, c.Config().EnableTrCache)
	if err == nil && !t.Valid() {
		err = fmt.Errorf("template %s does not exist", path)
	}
	if err != nil {
		c.out.Append(c.trf(msgTemplateFailed, err), buildlog.Error, true)
		return err
	}
	t.SetResources(Resources)
	if !slices.Contains(t.Sections(), AppName) {
		c.out.Append(c.trf(msgTemplateNoHeader, path, AppName), buildlog.Exec, true)
	}

	c.mu.Lock()
	c.tmpl = t
	c.cfg.TemplatePath = path
	c.mu.Unlock()
	c.out.Append(c.trf(msgTemplateLoaded, path, t.Header(AppName).Language), buildlog.Succeed, true)
	return nil
}

// CreateTemplate writes a new template holding the header and all log messages.
// Window captions are appended by the caller, which owns the widget tree.
func (c *Controller) CreateTemplate(path, language, author string) (*tr.Template, error) {
	defer c.out.Flush()
	t, err := tr.Create(path, AppName, language, Version, author)
	if err == nil {
		err = t.AppendResources(Resources)
	}
	if err != nil {
		c.out.Append(c.trf(msgTemplateFailed, err), buildlog.Error, true)
		return nil, err
	}
	c.out.Append(c.trf(msgTemplateCreated, path), buildlog.Succeed, true)
	return t, nil
}

// Open opens the image at path. Opening the image that is already open
// keeps it and its extracted strings.
func (c *Controller) Open(path string) error {
	defer c.out.Flush()
	if cur := c.currentImage(); cur != nil && util.SamePath(cur.Path(), path) {
		c.out.Append(c.trf(msgAlreadyOpen, path), buildlog.Normal, true)
		return nil
	}
	c.out.Append(c.trf(msgOpening, path), buildlog.Step, true)

	img, err := disc.Open(path, c.Config().StringLimit())
	if err != nil {
		c.out.Append(c.trf(msgOpenFailed, err), buildlog.Error, true)
		logrus.WithError(err).WithField("path", path).Warn("open image")
		c.notifyImage(nil, err)
		return err
	}
	info, err := img.Info()
	if err != nil {
		img.Close()
		c.out.Append(c.trf(msgInfoFailed, err), buildlog.Error, true)
		logrus.WithError(err).WithField("path", path).Warn("read image header")
		c.notifyImage(nil, err)
		return err
	}
	info.Alternates = c.ids.Alternates(info.GameID)

	c.mu.Lock()
	old := c.image
	c.image = img
	c.info = info
	c.entries = nil
	c.cfg.ImagePath = path
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}

	c.out.Append(c.trf(msgOpened, info.GameID, info.Title, info.Platform, info.SizeText), buildlog.Succeed, true)
	if len(info.Alternates) > 0 {
		c.out.Append(c.trf(msgAlternates, strings.Join(info.Alternates, ", ")), buildlog.Normal, true)
	}
	c.notifyImage(info, nil)
	c.notifyEntries()
	return nil
}

func (c *Controller) Close() {
	c.mu.Lock()
	img := c.image
	c.image = nil
	c.info = nil
	c.entries = nil
	c.mu.Unlock()
	if img == nil {
		return
	}
	if err := img.Close(); err != nil {
		logrus.WithError(err).Warn("close image")
	}
	c.out.Append(c.Tr(msgClosed), buildlog.Normal, true)
	c.out.Flush()
	c.notifyImage(nil, nil)
	c.notifyEntries()
}

func (c *Controller) currentImage() *disc.Image {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.image
}

func (c *Controller) Info() (*disc.Info, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return nil, ErrNoImage
	}
	info := *c.info
	info.Alternates = append([]string(nil), c.info.Alternates...)
	return &info, nil
}

func (c *Controller) ReadString(offset int64, peek bool) (binstr.Entry, error) {
	img := c.currentImage()
	if img == nil {
		c.Log("[yellow]" + c.Tr(msgNoImage) + "[-]")
		return binstr.Entry{}, ErrNoImage
	}
	defer c.out.Flush()
	c.out.Append(c.trf(msgReading, offset), buildlog.Step, true)

	e, err := img.ReadString(offset, peek)
	if err != nil {
		c.out.Append(c.trf(msgReadFailed, offset, err), buildlog.Error, true)
		return binstr.Entry{}, err
	}
	c.addEntries(e)
	c.out.Append(c.trf(msgRead, e.Length, e.Offset, e.Encoding, e.Text), buildlog.Succeed, true)
	return e, nil
}

func (c *Controller) ReadTable(offset int64, count int) ([]binstr.Entry, error) {
	img := c.currentImage()
	if img == nil {
		c.Log("[yellow]" + c.Tr(msgNoImage) + "[-]")
		return nil, ErrNoImage
	}
	defer c.out.Flush()
	c.out.Append(c.trf(msgReadingTable, count, offset), buildlog.Step, true)

	entries, err := img.ReadTable(offset, count, c.Config().Order())
	if err != nil {
		c.out.Append(c.trf(msgTableFailed, offset, err), buildlog.Error, true)
		return nil, err
	}
	c.addEntries(entries...)
	for _, e := range entries {
		c.out.Append(fmt.Sprintf("0x%08X  %s", e.Offset, e.Text), buildlog.Normal, true)
	}
	c.out.Append(c.trf(msgTableRead, len(entries), offset), buildlog.Succeed, true)
	return entries, nil
}

// addEntries records extracted strings, replacing any earlier read at the same offset.
func (c *Controller) addEntries(entries ...binstr.Entry) {
	c.mu.Lock()
	for _, e := range entries {
		replaced := false
		for i := range c.entries {
			if c.entries[i].Offset == e.Offset {
				c.entries[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			c.entries = append(c.entries, e)
		}
	}
	c.mu.Unlock()
	c.notifyEntries()
}

// Entries returns the strings extracted since the image was opened.
func (c *Controller) Entries() []binstr.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]binstr.Entry(nil), c.entries...)
}

func (c *Controller) ClearEntries() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
	c.notifyEntries()
}

func (c *Controller) notifyImage(info *disc.Info, err error) {
	if cb := c.OnImageChange; cb != nil {
		cb(info, err)
	}
}

func (c *Controller) notifyEntries() {
	if cb := c.OnEntriesUpdate; cb != nil {
		cb(c.Entries())
	}
}

func (c *Controller) GetApiBroadcastChan() chan buildlog.Item { return c.ApiBroadcastChan }

// SetApiStarter injects the API server start function to avoid import cycles.
func (c *Controller) SetApiStarter(starter ApiServerStarter) {
	c.apiStarter = starter
}

// ApiStatus describes the API server state for display.
func (c *Controller) ApiStatus() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiStatus
}

func (c *Controller) setApiStatus(s string) {
	c.mu.Lock()
	c.apiStatus = s
	c.mu.Unlock()
}

// UpdateApiServerState starts/stops the API server based on cfg.ApiEnabled.
// An enabled server is restarted so port changes take effect.
func (c *Controller) UpdateApiServerState(cfg *config.Config) {
	if cfg != nil {
		c.mu.Lock()
		c.cfg = cfg
		c.mu.Unlock()
	}

	c.apiMu.Lock()
	defer c.apiMu.Unlock()
	c.stopApiServer()
	if cfg == nil || !cfg.ApiEnabled {
		c.setApiStatus("API Disabled")
		return
	}
	if c.apiStarter == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.apiServerCtx = ctx
	c.apiServerCancel = cancel
	c.apiServer = c.apiStarter(ctx, c, c.setApiStatus, cfg)
}

// stopApiServer cancels the running server. apiMu must be held.
func (c *Controller) stopApiServer() {
	if c.apiServerCancel != nil {
		c.apiServerCancel()
	}
	c.apiServer = nil
	c.apiServerCtx = nil
	c.apiServerCancel = nil
}

// ApplySettings replaces the configuration and carries changed values
// over to the open image, the loaded template and the API server.
func (c *Controller) ApplySettings(cfg *config.Config) {
	if cfg == nil {
		return
	}
	c.mu.Lock()
	old := *c.cfg
	c.cfg = cfg
	img := c.image
	c.mu.Unlock()

	if img != nil && old.StringLimit() != cfg.StringLimit() {
		img.SetMaxStringLength(cfg.StringLimit())
	}

	path := strings.TrimSpace(cfg.TemplatePath)
	switch {
	case path == "":
		if old.TemplatePath != "" {
			c.LoadTemplate("")
		}
	case old.EnableTrCache != cfg.EnableTrCache || !util.SamePath(old.TemplatePath, path):
		if err := c.loadTemplate(path, true); err != nil {
			// keep pointing at the template still in use
			c.mu.Lock()
			c.cfg.TemplatePath = old.TemplatePath
			c.mu.Unlock()
		}
	}

	c.UpdateApiServerState(cfg)
}

// Shutdown stops the API server (if running) and closes the image.
func (c *Controller) Shutdown() {
	c.apiMu.Lock()
	c.stopApiServer()
	c.apiMu.Unlock()
	c.Close()
}
