package inference

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the bundle when an artifact file in the model directory is
// created, written or renamed. Bursts of events are collapsed into one
// reload. It blocks until ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.cfg.Dir, err)
	}
	s.log.Info("Watching model directory", zap.String("dir", s.cfg.Dir))

	names := map[string]bool{
		s.cfg.TransformerFile: true,
		s.cfg.ClassifierFile:  true,
		s.cfg.DecoderFile:     true,
	}

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !names[filepath.Base(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s.log.Debug("Model artifact changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("Model watcher error", zap.Error(err))

		case <-timer.C:
			s.log.Info("Reloading models after file change")
			// Reload logs and publishes its own failures.
			_ = s.Reload()
		}
	}
}
