package agent

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/domain/network/packet"

	"github.com/fsnotify/fsnotify"
)

// RuleUpdater receives filter changes. Implemented by the agent.
type RuleUpdater interface {
	SetRule(rule packet.Rule)
}

// Watcher applies filter edits in the agent configuration file without a
// restart. Other fields are read at start-up only; edits to them are logged.
//
// Uses fsnotify for instant updates, with polling as fallback.
type Watcher struct {
	manager  ConfigurationManager
	updater  RuleUpdater
	interval time.Duration
	logger   logging.Logger

	// applied is the configuration in force: the start-up file with later
	// filter edits. lastRead is the file as of the previous reload.
	applied  *Configuration
	lastRead *Configuration
	requests chan struct{}
}

func NewWatcher(
	manager ConfigurationManager,
	updater RuleUpdater,
	initial *Configuration,
	interval time.Duration,
	logger logging.Logger,
) *Watcher {
	w := &Watcher{
		manager:  manager,
		updater:  updater,
		interval: interval,
		logger:   logger,
		lastRead: initial,
		requests: make(chan struct{}, 1),
	}
	if initial != nil {
		applied := *initial
		w.applied = &applied
	}
	return w
}

// RequestReload asks a running Watch to re-read the file now. Requests
// made while one is pending are merged.
func (w *Watcher) RequestReload() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Watch blocks until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) {
	// watch the directory: atomic writes replace the inode
	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error
	path := w.manager.Path()
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer func() { _ = watcher.Close() }()
		if addErr := watcher.Add(dir); addErr == nil {
			fsEvents = watcher.Events
			fsErrors = watcher.Errors
		} else {
			w.logger.Printf("config watcher: fsnotify watch failed: %v (using polling)", addErr)
		}
	} else {
		w.logger.Printf("config watcher: fsnotify unavailable: %v (using polling)", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.Reload()
			}
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			w.logger.Printf("config watcher: fsnotify error: %v", err)
		case <-w.requests:
			w.Reload()
		case <-ticker.C:
			w.Reload()
		}
	}
}

// Reload re-reads the file and pushes a changed filter to the updater.
// An invalid file keeps the previous rule in force.
func (w *Watcher) Reload() {
	conf, err := w.manager.Configuration()
	if err != nil {
		w.logger.Printf("config watcher: keeping current settings: %v", err)
		return
	}
	prev := w.lastRead
	w.lastRead = conf
	if w.applied == nil {
		applied := *conf
		w.applied = &applied
		return
	}

	if conf.Filter != w.applied.Filter {
		// validated by Configuration
		rule, _ := conf.Filter.Rule()
		w.updater.SetRule(rule)
		w.applied.Filter = conf.Filter
		w.logger.Printf("config watcher: filter changed to %s", rule)
	}
	// report each new pending edit once
	if restartRequired(w.applied, conf) && (prev == nil || restartRequired(prev, conf)) {
		w.logger.Printf("config watcher: changes outside Filter take effect after restart")
	}
}

func restartRequired(a, b *Configuration) bool {
	return a.Relay != b.Relay ||
		a.Interface != b.Interface ||
		a.PassthroughMark != b.PassthroughMark ||
		a.ReconnectDelayMs != b.ReconnectDelayMs ||
		a.MaxFrameSize != b.MaxFrameSize ||
		a.StatsIntervalMs != b.StatsIntervalMs
}
