package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"netxlate/internal/driver"
	"netxlate/internal/project/dag"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

type translateFunc func(ctx context.Context, files []string) ([]*driver.Result, error)

// watcher re-translates the netlists that read a changed file.
type watcher struct {
	cmd   *cobra.Command
	fsw   *fsnotify.Watcher
	run   translateFunc
	nodes map[string]dag.Node
	// tops maps the absolute path of each netlist to its argument form.
	tops map[string]string
	dirs map[string]struct{}

	idx   dag.Index
	graph dag.Graph
}

// watchAndTranslate runs once, then again for every netlist whose files
// change, until interrupted.
func watchAndTranslate(cmd *cobra.Command, files []string, run translateFunc) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fsw.Close()

	w := &watcher{
		cmd:   cmd,
		fsw:   fsw,
		run:   run,
		nodes: make(map[string]dag.Node, len(files)),
		tops:  make(map[string]string, len(files)),
		dirs:  make(map[string]struct{}),
	}
	if err := w.translate(ctx, files); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
		changed []string
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Clean(ev.Name)
			if _, known := w.idx.NameToID[name]; !known || slices.Contains(changed, name) {
				continue
			}
			changed = append(changed, name)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		case <-pending:
			pending = nil
			affected := dag.Affected(w.idx, w.graph, changed)
			changed = changed[:0]
			again := make([]string, 0, len(affected))
			for _, a := range affected {
				again = append(again, w.tops[a])
			}
			if len(again) == 0 {
				continue
			}
			if err := w.translate(ctx, again); err != nil {
				return err
			}
		}
	}
}

// translate runs files and refreshes the include graph and the watched
// directories from what they read.
func (w *watcher) translate(ctx context.Context, files []string) error {
	results, err := w.run(ctx, files)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(w.cmd.ErrOrStderr(), "error: %v\n", err)
	}
	for i, res := range results {
		if res == nil {
			continue
		}
		read := res.Files
		if len(read) == 0 {
			read = []string{res.Path}
		}
		w.nodes[res.Path] = dag.Node{Path: res.Path, Includes: read}
		w.tops[res.Path] = files[i]
		for _, f := range read {
			dir := filepath.Dir(f)
			if _, ok := w.dirs[dir]; ok {
				continue
			}
			// каталог, а не файл: редакторы заменяют файл при сохранении
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			w.dirs[dir] = struct{}{}
		}
	}
	nodes := make([]dag.Node, 0, len(w.nodes))
	for _, n := range w.nodes {
		nodes = append(nodes, n)
	}
	w.idx = dag.BuildIndex(nodes)
	w.graph = dag.BuildGraph(w.idx, nodes)
	fmt.Fprintf(w.cmd.ErrOrStderr(), "watching %d file(s), press Ctrl-C to stop\n", len(w.idx.IDToName))
	return nil
}
