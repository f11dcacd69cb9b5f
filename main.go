package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"wiivcinjector/internal/api"
	"wiivcinjector/internal/config"
	"wiivcinjector/internal/controller"
	"wiivcinjector/internal/ui"
)

func init() {
	logrus.SetOutput(os.Stdout)
}

func main() {
	configPath, err := config.DefaultPath()
	if err != nil {
		logrus.WithError(err).Warn("config will not be saved")
	}
	cfg := config.Default()
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			logrus.WithError(err).Warn("using default config")
		}
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			if err := cfg.Save(configPath); err != nil {
				logrus.WithError(err).Warn("save default config")
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Warn("invalid config, using defaults")
		cfg = config.Default()
	}

	c := controller.New(cfg)

	// Inject the API server starter function into the controller
	// to break the import cycle.
	c.SetApiStarter(api.StartServer)

	w := ui.NewUI(c, configPath)
	c.UpdateApiServerState(w.GetConfig())

	w.Run()
}
