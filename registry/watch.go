package registry

import (
	"log"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/vfs"
)

// Starts watching the content directory. Any change marks the registry
// stale and the next query rescans.
func (r *Registry) Watch() error {
	if r.watcher != nil {
		return nil
	}
	if _, ok := r.root.(vfs.Pather); !ok {
		return errors.New("[registry] Content directory is not backed by filesystem")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "[registry] Cannot create watcher")
	}
	r.watcher = w

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0 {
					atomic.StoreInt32(&r.stale, 1)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("[registry] Watcher error: %v", err)
			}
		}
	}()

	r.watchDirectories()
	return nil
}

func (r *Registry) IsStale() bool { return atomic.LoadInt32(&r.stale) != 0 }

func (r *Registry) watchDirectories() {
	if r.watcher == nil {
		return
	}
	rootPath := r.root.(vfs.Pather).Path()
	dirs := map[string]bool{rootPath: true}
	for _, a := range r.assets {
		if rel, ok := RelativeDir(a.PackagePath); ok {
			dirs[filepath.Join(rootPath, filepath.FromSlash(rel))] = true
		}
	}
	for dir := range dirs {
		if err := r.watcher.Add(dir); err != nil {
			log.Printf("[registry] Cannot watch %q: %v", dir, err)
		}
	}
}

func (r *Registry) Close() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	r.watcher = nil
	return err
}
