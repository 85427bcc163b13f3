package ml

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ModelHandle shares one immutable DelayModel between concurrent readers.
// Readers never lock; retraining swaps the whole pointer.
type ModelHandle struct {
	current atomic.Pointer[DelayModel]

	mu     sync.Mutex
	onSwap []func()
}

// NewModelHandle wraps an already-loaded model.
func NewModelHandle(model *DelayModel) *ModelHandle {
	h := &ModelHandle{}
	if model != nil {
		h.current.Store(model)
	}
	return h
}

// Current returns the model serving right now, or nil before the first load.
func (h *ModelHandle) Current() *DelayModel {
	return h.current.Load()
}

// Swap atomically replaces the served model and runs swap hooks.
func (h *ModelHandle) Swap(model *DelayModel) {
	h.current.Store(model)
	h.mu.Lock()
	hooks := append([]func(){}, h.onSwap...)
	h.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

// OnSwap registers a callback run after every swap, e.g. cache purges.
func (h *ModelHandle) OnSwap(fn func()) {
	h.mu.Lock()
	h.onSwap = append(h.onSwap, fn)
	h.mu.Unlock()
}

// WatchArtifact reloads the artifact whenever it is rewritten and swaps it
// into the handle. The watch is on the directory because Save replaces the
// file by rename. A reload failure keeps the previous model serving.
func WatchArtifact(ctx context.Context, path string, handle *ModelHandle, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				model, err := LoadDelayModel(path)
				if err != nil {
					logger.Warn("artifact reload failed", zap.String("path", path), zap.Error(err))
					continue
				}
				handle.Swap(model)
				logger.Info("model artifact reloaded",
					zap.String("path", path),
					zap.String("algorithm", model.Algorithm()),
					zap.Int("vocabulary_size", len(model.Vocabulary())))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("artifact watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
