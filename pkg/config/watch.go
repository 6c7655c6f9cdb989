package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/fus-server/fus/internal/logger"
	"github.com/fus-server/fus/pkg/access"
)

// Watch reloads the engine's snapshot whenever the configuration file
// changes.
//
// Each change triggers a complete Load and BuildSnapshot; only a fully
// built and validated snapshot is swapped into the engine, so in-flight
// requests always observe a consistent rule set. A rebuild failure keeps
// the previous snapshot serving and logs the error, so a broken edit never
// degrades a running daemon.
//
// The watch runs on viper's internal goroutine for the lifetime of the
// process.
func Watch(configPath string, engine *access.Engine) error {
	v, err := newViper(configPath)
	if err != nil {
		return err
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for watching: %w", err)
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		logger.Debug("config change detected: %s", event.Name)

		cfg, err := Load(configPath)
		if err != nil {
			logger.Error("config reload failed, keeping previous snapshot: %v", err)
			return
		}
		snapshot, err := BuildSnapshot(cfg)
		if err != nil {
			logger.Error("config reload rejected, keeping previous snapshot: %v", err)
			return
		}

		engine.Swap(snapshot)
		logger.Info("access snapshot reloaded from %s (%d users, %d groups, %d dirs)",
			configPath, len(cfg.Users), len(cfg.Groups), len(cfg.Dirs))
	})
	v.WatchConfig()
	return nil
}
