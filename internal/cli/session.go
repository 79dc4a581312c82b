package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dshills/soochak/internal/event"
	"github.com/dshills/soochak/internal/event/dispatch"
	"github.com/dshills/soochak/internal/manifest"
)

// session owns a Manager populated from a manifest file.
type session struct {
	mu sync.Mutex

	path   string
	logger *slog.Logger
	output io.Writer

	manager  *event.Manager
	manifest *manifest.Manifest
	attached *manifest.Attachment
}

// newSession loads the manifest at path and attaches its listeners.
func newSession(path string, logger *slog.Logger, output io.Writer) (*session, error) {
	s := &session{
		path:    path,
		logger:  logger,
		output:  output,
		manager: event.NewManager(event.WithLogger(logger)),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load replaces the attached listeners with a fresh copy of the manifest.
// The previous listeners stay attached if the new ones cannot be built.
func (s *session) load() error {
	m, err := manifest.Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	att, err := m.Apply(s.manager, manifest.WithLogger(s.logger), manifest.WithOutput(s.output))
	if err != nil {
		return err
	}
	if s.attached != nil {
		s.attached.Detach()
	}

	s.manifest = m
	s.attached = att
	s.logger.Debug("manifest loaded", "path", s.path, "listeners", att.Len())
	return nil
}

// files returns the manifest path and every script it references.
func (s *session) files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := []string{s.path}
	if s.manifest != nil {
		files = append(files, s.manifest.Scripts()...)
	}
	return files
}

// trigger dispatches a new event named name.
func (s *session) trigger(ctx context.Context, name string, params event.Params) (*event.Event, dispatch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := event.NewEvent(name, params, event.WithSource("cli"))
	result, err := s.manager.DispatchResult(ctx, ev)
	return ev, result, err
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached != nil {
		s.attached.Detach()
		s.attached = nil
	}
}

// parseParams converts key=value pairs to event parameters. Values are
// read as YAML scalars, so "3" is an int and "true" a bool.
func parseParams(pairs []string) (event.Params, error) {
	params := make(event.Params, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q: want key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		params[key] = value
	}
	return params, nil
}

// writeResult prints the dispatch outcome and the final parameters.
func writeResult(w io.Writer, ev *event.Event, result dispatch.Result) {
	fmt.Fprintf(w, "%s: %s (%d listeners, %s)\n", ev.EventName(), result.State, result.Invoked, result.Duration)

	params := ev.Params()
	for _, key := range slices.Sorted(maps.Keys(params)) {
		fmt.Fprintf(w, "  %s = %v\n", key, params[key])
	}
}
