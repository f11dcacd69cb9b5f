package controller_test

import (
	"context"
	"encoding/binary"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"wiivcinjector/internal/binstr"
	"wiivcinjector/internal/buildlog"
	"wiivcinjector/internal/config"
	"wiivcinjector/internal/controller"
	"wiivcinjector/internal/disc"
)

func writeImage(t *testing.T) string {
	t.Helper()
	data := make([]byte, 0x400)
	copy(data, "RMGE01")
	binary.BigEndian.PutUint32(data[0x18:], 0x5D1C9EA3)
	copy(data[0x20:], "SUPER MARIO GALAXY")
	binary.BigEndian.PutUint32(data[0x100:], 0x200)
	binary.BigEndian.PutUint32(data[0x104:], 0x210)
	copy(data[0x200:], "Mario")
	copy(data[0x210:], []byte{0xD6, 0xD0, 0xCE, 0xC4})
	path := filepath.Join(t.TempDir(), "game.iso")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func drain(c *controller.Controller) []string {
	var ret []string
	for {
		select {
		case msg := <-c.LogChan:
			ret = append(ret, msg)
		default:
			return ret
		}
	}
}

func TestOpenAndRead(t *testing.T) {
	c := controller.New(config.Default())
	var infos []*disc.Info
	c.OnImageChange = func(info *disc.Info, err error) { infos = append(infos, info) }

	_, err := c.Info()
	require.ErrorIs(t, err, controller.ErrNoImage)
	_, err = c.ReadString(0x20, true)
	require.ErrorIs(t, err, controller.ErrNoImage)
	require.Equal(t, []string{"[yellow]No image is open[-]"}, drain(c))

	path := writeImage(t)
	require.NoError(t, c.Open(path))
	require.Len(t, infos, 1)
	require.Equal(t, path, c.Config().ImagePath)

	info, err := c.Info()
	require.NoError(t, err)
	require.Equal(t, "RMGE01", info.GameID)
	require.Contains(t, info.Alternates, "RMGP01")

	logs := drain(c)
	require.NotEmpty(t, logs)
	require.True(t, strings.HasPrefix(logs[0], "[blue]Opening image"))
	require.Contains(t, strings.Join(logs, "\n"), "[green]Opened RMGE01: SUPER MARIO GALAXY")

	e, err := c.ReadString(0x200, false)
	require.NoError(t, err)
	require.Equal(t, "Mario", e.Text)

	entries, err := c.ReadTable(0x100, 2)
	require.NoError(t, err)
	require.Equal(t, "中文", entries[1].Text)
	// 0x200 was read twice and is recorded once
	require.Len(t, c.Entries(), 2)

	_, err = c.ReadString(0x1000, true)
	require.ErrorIs(t, err, binstr.ErrOutOfBounds)
	require.Contains(t, strings.Join(drain(c), "\n"), "[red]Failed to read string at 0x1000")

	c.ClearEntries()
	require.Empty(t, c.Entries())

	c.Close()
	_, err = c.Info()
	require.ErrorIs(t, err, controller.ErrNoImage)
	require.Len(t, infos, 2)
	require.Nil(t, infos[1])
}

func TestOpenFailure(t *testing.T) {
	c := controller.New(nil)
	err := c.Open(filepath.Join(t.TempDir(), "missing.iso"))
	require.Error(t, err)
	logs := drain(c)
	require.Len(t, logs, 2)
	require.True(t, strings.HasPrefix(logs[1], "[red]Failed to open image"))
}

func TestBroadcast(t *testing.T) {
	c := controller.New(config.Default())
	require.NoError(t, c.Open(writeImage(t)))
	item := <-c.GetApiBroadcastChan()
	require.Equal(t, buildlog.Step, item.Type)
	require.False(t, strings.HasSuffix(item.Output, "\n"))
}

func TestDisableLog(t *testing.T) {
	cfg := config.Default()
	cfg.DisableLog = true
	c := controller.New(cfg)
	require.True(t, c.IsLogDisabled())
	require.NoError(t, c.Open(writeImage(t)))
	require.Empty(t, drain(c))
}

func TestTemplate(t *testing.T) {
	c := controller.New(config.Default())
	path := filepath.Join(t.TempDir(), "zh.ini")

	_, err := c.CreateTemplate(path, "简体中文", "tester")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "OpenFailed")

	require.Error(t, c.LoadTemplate(filepath.Join(t.TempDir(), "none.ini")))
	require.Nil(t, c.Template())

	content := "[" + controller.AppName + "]\nlanguage = 简体中文\n\n[@Resource]\nOpening = 正在打开镜像 %s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, c.LoadTemplate(path))
	require.Equal(t, path, c.Config().TemplatePath)
	drain(c)

	require.NoError(t, c.Open(writeImage(t)))
	logs := drain(c)
	require.True(t, strings.HasPrefix(logs[0], "[blue]正在打开镜像 "))

	require.NoError(t, c.LoadTemplate(""))
	require.Nil(t, c.Template())
	require.Equal(t, "Image closed", c.Tr("Image closed"))
}

func TestOpenSameImage(t *testing.T) {
	c := controller.New(config.Default())
	var infos []*disc.Info
	c.OnImageChange = func(info *disc.Info, err error) { infos = append(infos, info) }

	path := writeImage(t)
	require.NoError(t, c.Open(path))
	_, err := c.ReadString(0x200, false)
	require.NoError(t, err)
	drain(c)

	sep := string(filepath.Separator)
	again := filepath.Dir(path) + sep + "." + sep + "game.iso"
	require.NoError(t, c.Open(again))
	require.Len(t, infos, 1)
	require.Len(t, c.Entries(), 1)
	require.Equal(t, []string{again + " is already open"}, drain(c))
}

func TestLoadTemplateAgain(t *testing.T) {
	c := controller.New(config.Default())
	path := filepath.Join(t.TempDir(), "zh.ini")
	write := func(content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	write("[@Resource]\nClosed = 已关闭\n")
	require.NoError(t, c.LoadTemplate(path))
	first := c.Template()
	require.Equal(t, "已关闭", c.Tr("Image closed"))
	require.Contains(t, strings.Join(drain(c), "\n"), "has no ["+controller.AppName+"] section")

	write("[" + controller.AppName + "]\nlanguage = 简体中文\n\n[@Resource]\nClosed = 镜像已关闭\n")
	require.NoError(t, c.LoadTemplate(path))
	require.Same(t, first, c.Template())
	require.Equal(t, "镜像已关闭", c.Tr("Image closed"))
	require.NotContains(t, strings.Join(drain(c), "\n"), "section")
}

func TestApplySettings(t *testing.T) {
	c := controller.New(config.Default())
	require.NoError(t, c.Open(writeImage(t)))
	_, err := c.ReadString(0x20, true)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "zh.ini")
	require.NoError(t, os.WriteFile(path, []byte("[@Resource]\nClosed = 已关闭\n"), 0644))

	cfg := *c.Config()
	cfg.MaxStringLength = 4
	cfg.TemplatePath = path
	c.ApplySettings(&cfg)
	_, err = c.ReadString(0x20, true)
	require.ErrorIs(t, err, binstr.ErrUnterminatedRun)
	first := c.Template()
	require.NotNil(t, first)
	require.Equal(t, "已关闭", c.Tr("Image closed"))

	// a cache toggle loads the template anew
	next := cfg
	next.EnableTrCache = !cfg.EnableTrCache
	c.ApplySettings(&next)
	require.NotSame(t, first, c.Template())
	require.Equal(t, path, c.Config().TemplatePath)

	bad := next
	bad.TemplatePath = filepath.Join(t.TempDir(), "none.ini")
	c.ApplySettings(&bad)
	require.Equal(t, path, c.Config().TemplatePath)
	require.NotNil(t, c.Template())

	off := bad
	off.TemplatePath = ""
	c.ApplySettings(&off)
	require.Nil(t, c.Template())
	require.Equal(t, "API Disabled", c.ApiStatus())
}

func TestApiServerState(t *testing.T) {
	c := controller.New(config.Default())
	started := 0
	var gotCtx context.Context
	c.SetApiStarter(func(ctx context.Context, mgr controller.ImageManager, setStatus func(string), cfg *config.Config) *http.Server {
		started++
		gotCtx = ctx
		setStatus("Running on :" + cfg.ApiPort)
		return &http.Server{}
	})

	cfg := config.Default()
	c.UpdateApiServerState(cfg)
	require.Equal(t, 0, started)
	require.Equal(t, "API Disabled", c.ApiStatus())

	cfg.ApiEnabled = true
	c.UpdateApiServerState(cfg)
	require.Equal(t, 1, started)
	require.Equal(t, "Running on :8080", c.ApiStatus())

	c.Shutdown()
	require.Error(t, gotCtx.Err())
}
