package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bresilla/muli/physics"
	"github.com/bresilla/muli/replay"
	"github.com/bresilla/muli/telemetry"
)

var (
	serveAddr  string
	serveWatch bool
	serveDB    string
)

var serveCmd = &cobra.Command{
	Use:   "serve <scene.yaml>",
	Short: "Step a scene continuously, streaming telemetry over a websocket",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8088", "address to serve the telemetry websocket on")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the scene file on change")
	serveCmd.Flags().StringVar(&serveDB, "replay-db", "", "optional sqlite file to record every step to")
}

// worldHolder lets the file-watch goroutine swap the live *physics.World out
// from under the step loop without the step loop needing to poll a channel
// every tick.
type worldHolder struct {
	mu sync.RWMutex
	w  *physics.World
}

func (h *worldHolder) get() *physics.World {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.w
}

func (h *worldHolder) set(w *physics.World) {
	h.mu.Lock()
	h.w = w
	h.mu.Unlock()
}

func runServe(cmd *cobra.Command, args []string) error {
	scenePath := args[0]
	w, err := loadScene(scenePath)
	if err != nil {
		return err
	}
	holder := &worldHolder{w: w}

	if serveWatch {
		stop, err := watchScene(scenePath, holder)
		if err != nil {
			return fmt.Errorf("serve: watch: %w", err)
		}
		defer stop()
	}

	var recorder *replay.Recorder
	if serveDB != "" {
		store, err := replay.Open(serveDB)
		if err != nil {
			return fmt.Errorf("serve: replay: %w", err)
		}
		defer store.Close()
		recorder, err = store.BeginRun(w.ID(), w)
		if err != nil {
			return fmt.Errorf("serve: replay: %w", err)
		}
	}

	hub := telemetry.NewHub(logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: serveAddr, Handler: mux}

	go func() {
		logger.Info("serve.listening", "addr", serveAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("serve.listen failed", "err", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	settings := w.Settings()
	ticker := time.NewTicker(time.Duration(settings.DT * float64(time.Second)))
	defer ticker.Stop()

	logger.Info("serve.start", "scene", scenePath, "world", w.ID())
	for range ticker.C {
		active := holder.get()
		active.Step()
		hub.Broadcast(active)
		if recorder != nil {
			if err := recorder.RecordStep(active); err != nil {
				logger.Error("serve.replay failed", "err", err)
			}
		}
	}
	return nil
}

// watchScene reloads scenePath's World whenever its containing directory
// reports a write or create event for that file — watching the directory
// rather than the file itself survives editors that replace-on-save
// (write to a temp file, then rename over the original, which the
// directory reports as a create of the original name), which a bare
// fsnotify.Add(file) would miss once the original inode is gone.
func watchScene(scenePath string, holder *worldHolder) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(scenePath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(scenePath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w, err := loadScene(scenePath)
				if err != nil {
					logger.Error("watch.reload failed", "err", err)
					continue
				}
				holder.set(w)
				logger.Info("watch.reloaded", "scene", scenePath, "world", w.ID())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watch.error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
