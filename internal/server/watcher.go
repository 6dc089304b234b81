package server

import (
	"path/filepath"

	"lyrify/internal/config"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// startConfigWatcher watches the config file's directory so edits survive
// editors that replace the file instead of writing in place.
func (ls *LyricsServer) startConfigWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	ls.watcher = watcher

	go ls.watchConfig(watcher)

	if err := watcher.Add(filepath.Dir(ls.configPath)); err != nil {
		return err
	}

	ls.logger.WithField("config_path", ls.configPath).Info("Config watcher started")
	return nil
}

// watchConfig selects on watcher channels and dispatches events.
func (ls *LyricsServer) watchConfig(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			ls.handleConfigEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			ls.logger.WithError(err).Error("Config watcher error")
		}
	}
}

// handleConfigEvent reloads the config on writes to the watched file.
func (ls *LyricsServer) handleConfigEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(ls.configPath) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	ls.reloadLogging()
}

// reloadLogging applies the logging level from the file on disk. Other
// settings need a restart.
func (ls *LyricsServer) reloadLogging() {
	cfg, err := config.ReadFile(ls.configPath)
	if err != nil {
		ls.logger.WithError(err).Warn("Ignoring unreadable config change")
		return
	}

	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		ls.logger.WithError(err).Warn("Ignoring invalid log level")
		return
	}

	if level != ls.logger.GetLevel() {
		ls.logger.SetLevel(level)
		ls.logger.WithFields(logrus.Fields{
			"level": level.String(),
		}).Info("Log level reloaded")
	}
}

// stopConfigWatcher closes the watcher (idempotent).
func (ls *LyricsServer) stopConfigWatcher() {
	if ls.watcher != nil {
		ls.watcher.Close()
		ls.watcher = nil
	}
}
