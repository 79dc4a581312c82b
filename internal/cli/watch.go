package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/soochak/internal/watcher"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Trigger events from stdin, reloading the manifest on change",
		Long: `Read events from standard input, one per line, and dispatch each one:

  user.created user=ana admin=true

The manifest and the Lua scripts it references are watched; when one
changes the listeners are rebuilt. An invalid manifest is reported and
the previous listeners stay in place. The command ends at end of input
or on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, rootOpts)
		},
	}
}

func runWatch(cmd *cobra.Command, opts *RootOptions) error {
	path, err := opts.manifestPath()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s, err := newSession(path, opts.Logger, out)
	if err != nil {
		return err
	}
	defer s.close()

	w, err := watcher.New(
		watcher.WithDebounce(opts.Config.DebounceDuration()),
		watcher.WithLogger(opts.Logger),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := watchFiles(w, s.files()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Run(ctx, func(ev watcher.Event) {
			opts.Logger.Info("file changed", "path", ev.Path, "op", ev.Op)
			if err := s.load(); err != nil {
				opts.Logger.Error("reload failed, keeping previous listeners", "error", err)
				return
			}
			if err := watchFiles(w, s.files()); err != nil {
				opts.Logger.Warn("watching scripts", "error", err)
			}
			opts.Logger.Info("manifest reloaded", "path", path)
		})
	}()

	lines := make(chan string)
	scanDone := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanDone <- nil
				return
			}
		}
		scanDone <- scanner.Err()
	}()

	for {
		select {
		case line := <-lines:
			fields := strings.Fields(line)
			if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			params, err := parseParams(fields[1:])
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				continue
			}
			ev, result, err := s.trigger(ctx, fields[0], params)
			writeResult(out, ev, result)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}

		case err := <-scanDone:
			cancel()
			<-watchDone
			return err

		case <-ctx.Done():
			<-watchDone
			return nil
		}
	}
}

// watchFiles adds every path to w; already watched paths are ignored.
func watchFiles(w *watcher.Watcher, paths []string) error {
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return err
		}
	}
	return nil
}
