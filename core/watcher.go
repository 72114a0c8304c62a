package core

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchedOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

type TemplateWatcher struct {
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	done    chan struct{}
	once    sync.Once
}

// WatchTemplates calls onChange whenever a file in dir is written, created,
// removed or renamed. Subdirectories are not watched.
func WatchTemplates(dir string, logger zerolog.Logger, onChange func()) (*TemplateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	tw := &TemplateWatcher{
		watcher: w,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go tw.loop(onChange)
	return tw, nil
}

func (tw *TemplateWatcher) loop(onChange func()) {
	defer close(tw.done)
	for {
		select {
		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&watchedOps == 0 {
				continue
			}
			tw.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("template changed")
			onChange()
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn().Err(err).Msg("template watcher error")
		}
	}
}

func (tw *TemplateWatcher) Close() error {
	var err error
	tw.once.Do(func() {
		err = tw.watcher.Close()
		<-tw.done
	})
	return err
}
