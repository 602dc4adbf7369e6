package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/atom122158003/pandyle/internal/document"
	"github.com/atom122158003/pandyle/internal/engine"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	BindOptions
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <template>",
		Short: "Re-render a template whenever its data file changes",
		Long: `Bind a data file to a template, print the markup, then watch the data
file. Each save is diffed against the previous contents and applied as a
set of writes, so only the nodes bound to changed paths re-render. The
markup is printed again after every applied change.

Example:
  pandyle watch page.html --data data.yaml
  pandyle watch page.html -d data.json --format json --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runWatch(opts *WatchOptions, templatePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	// Watch the directory: editors often replace the file rather than
	// writing it in place.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return outputError(formatter, WrapExitError(ExitCommandError, "failed to start watcher", err))
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(opts.Data)); err != nil {
		return outputError(formatter, WrapExitError(ExitCommandError, "failed to watch data file", err))
	}

	data, err := opts.loadData()
	if err != nil {
		return outputError(formatter, err)
	}
	eng, err := bindTemplate(ctx, templatePath, &opts.BindOptions, data)
	if err != nil {
		return outputError(formatter, err)
	}
	w := &watchSession{
		engine:    eng,
		formatter: formatter,
		path:      opts.Data,
		previous:  data,
	}
	if err := w.print(0, nil); err != nil {
		return err
	}

	slog.Info("watching", "data", opts.Data, "template", templatePath)
	return w.loop(ctx, watcher.Events, watcher.Errors)
}

// watchSession applies data file changes to a bound engine.
type watchSession struct {
	engine    *engine.Engine
	formatter *OutputFormatter
	path      string
	previous  any
	updates   int
}

// loop handles file events until ctx is done or the event channel closes.
// Reload failures are reported and the session keeps the last good data.
func (w *watchSession) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped", "updates", w.updates)
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := w.reload(ctx); err != nil {
				slog.Error("reload failed", "path", w.path, "error", err)
				_ = w.formatter.Error(ErrCodeRender, err.Error(), nil)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
			_ = w.formatter.Error(ErrCodeWatch, err.Error(), nil)
		}
	}
}

// reload re-reads the data file and applies its differences.
func (w *watchSession) reload(ctx context.Context) error {
	next, err := document.Load(w.path)
	if err != nil {
		return err
	}
	changes, err := document.Diff(w.previous, next)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		slog.Debug("data file unchanged", "path", w.path)
		return nil
	}
	before := w.engine.Renders()
	if err := w.engine.Set(ctx, changes); err != nil {
		return err
	}
	w.previous = next
	w.updates++
	return w.print(w.engine.Renders()-before, changes)
}

// print writes the current markup; in JSON mode, with the applied writes
// and how many nodes they re-rendered.
func (w *watchSession) print(renders int64, changes map[string]any) error {
	markup, err := w.engine.HTML()
	if err != nil {
		return err
	}
	if w.formatter.Format == "json" {
		frame := map[string]any{
			"update":  w.updates,
			"html":    markup,
			"renders": renders,
		}
		if changes != nil {
			frame["set"] = changes
		}
		return w.formatter.Success(frame)
	}
	w.formatter.VerboseLog("Update %d: %d write(s), %d node(s) re-rendered", w.updates, len(changes), renders)
	_, err = fmt.Fprintln(w.formatter.Writer, markup)
	return err
}
