package project

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/maruel/natural"
)

const DefaultDebounce = 100 * time.Millisecond

// Watch rebuilds the units whose files are written or created until ctx is done. Events
// arriving within debounce of each other are coalesced into one build; onBuild receives the
// results of every build.
func (b *Builder) Watch(ctx context.Context, debounce time.Duration, onBuild func([]UnitResult, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root, single := b.config.Sources, ""
	if info, err := os.Stat(root); err != nil {
		return err
	} else if !info.IsDir() {
		root, single = filepath.Dir(root), filepath.Clean(root)
	}
	if err := watchTree(watcher, root, single == ""); err != nil {
		return err
	}
	b.logger.Info().Str("root", root).Msg("watching for changes")

	pending := map[string]struct{}{}
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && single == "" {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, event.Name, true); err != nil {
						b.logger.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch directory")
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !b.watches(root, single, event.Name) {
				continue
			}
			b.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change")
			pending[filepath.Clean(event.Name)] = struct{}{}
			fire = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn().Err(err).Msg("watch error")
		case <-fire:
			fire = nil
			files := make([]string, 0, len(pending))
			for file := range pending {
				files = append(files, file)
			}
			pending = map[string]struct{}{}
			sort.Slice(files, func(i, j int) bool {
				return natural.Less(files[i], files[j])
			})
			results, err := b.Build(ctx, files)
			onBuild(results, err)
		}
	}
}

// watches reports whether a change to name concerns a unit of the build.
func (b *Builder) watches(root, single, name string) bool {
	name = filepath.Clean(name)
	if single != "" {
		return name == single
	}
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	included := false
	for _, pattern := range b.config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	excluded, err := isExcluded(rel, b.config.Exclude)
	return err == nil && !excluded
}

// watchTree adds dir and, when recursive, every directory below it.
func watchTree(watcher *fsnotify.Watcher, dir string, recursive bool) error {
	if !recursive {
		return watcher.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
