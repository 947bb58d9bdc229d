package organize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch organizes files as they land in dir until ctx is done. notify,
// if non-nil, is called after each completed move. The watch is not
// recursive, so files already sorted into category folders never
// retrigger it.
func (o *Organizer) Watch(ctx context.Context, dir string, notify func(Move)) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("organize watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("organize watch %s: %w", dir, ErrNotDirectory)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("organize watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("organize watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if mv, moved := o.settleAndMove(dir, event.Name); moved && notify != nil {
				notify(mv)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("organize watch: %w", err)
		}
	}
}

// settleAndMove waits for the writer to finish, then files one path into
// its category folder. Directories, hidden files and paths that vanished
// while settling are skipped.
func (o *Organizer) settleAndMove(dir, path string) (Move, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return Move{}, false
	}

	time.Sleep(o.settle)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Move{}, false
	}

	category := o.rules.CategoryFor(filepath.Ext(name))
	dest := uniqueDest(filepath.Join(dir, category, name), nil)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Move{}, false
	}
	if err := os.Rename(path, dest); err != nil {
		return Move{}, false
	}
	return Move{Source: path, Dest: dest, Category: category}, true
}
