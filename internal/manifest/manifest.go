package manifest

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/dshills/soochak/internal/config/loader"
)

// Action names.
const (
	ActionLog   = "log"
	ActionPrint = "print"
	ActionSet   = "set"
	ActionStop  = "stop"
	ActionFail  = "fail"
	ActionLua   = "lua"
)

var actions = []string{ActionLog, ActionPrint, ActionSet, ActionStop, ActionFail, ActionLua}

// Manifest is a set of listener bindings.
type Manifest struct {
	Listeners []Binding `toml:"listener" yaml:"listener"`

	// dir resolves relative script paths.
	dir string
}

// Binding ties one event name to an action.
type Binding struct {
	Event    string         `toml:"event" yaml:"event"`
	Priority int            `toml:"priority" yaml:"priority"`
	Action   string         `toml:"action" yaml:"action"`
	Message  string         `toml:"message" yaml:"message"`
	Params   map[string]any `toml:"params" yaml:"params"`
	Script   string         `toml:"script" yaml:"script"`
	Code     string         `toml:"code" yaml:"code"`

	// Stop halts propagation after the action runs.
	Stop bool `toml:"stop" yaml:"stop"`
}

// Load reads and validates a manifest from the OS file system.
func Load(path string) (*Manifest, error) {
	return LoadFS(loader.DefaultFS(), path)
}

// LoadFS reads and validates a manifest through fsys.
func LoadFS(fsys loader.FileSystem, path string) (*Manifest, error) {
	var m Manifest
	if err := loader.DecodeFile(fsys, path, &m); err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	m.dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every binding.
func (m *Manifest) Validate() error {
	for i, b := range m.Listeners {
		if err := b.validate(); err != nil {
			return &BindingError{Index: i, Event: b.Event, Err: err}
		}
	}
	return nil
}

func (b Binding) validate() error {
	if b.Event == "" {
		return fmt.Errorf("%w: event is required", ErrInvalidBinding)
	}
	if !slices.Contains(actions, b.Action) {
		return fmt.Errorf("%w %q", ErrUnknownAction, b.Action)
	}
	switch b.Action {
	case ActionSet:
		if len(b.Params) == 0 {
			return fmt.Errorf("%w: set requires params", ErrInvalidBinding)
		}
	case ActionLua:
		if (b.Script == "") == (b.Code == "") {
			return fmt.Errorf("%w: lua requires exactly one of script or code", ErrInvalidBinding)
		}
	}
	return nil
}

// Events returns the distinct event names the manifest binds, sorted.
func (m *Manifest) Events() []string {
	names := make([]string, 0, len(m.Listeners))
	for _, b := range m.Listeners {
		names = append(names, b.Event)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// scriptPath resolves a binding's script against the manifest directory.
func (m *Manifest) scriptPath(script string) string {
	if filepath.IsAbs(script) || m.dir == "" {
		return script
	}
	return filepath.Join(m.dir, script)
}

// Scripts returns the resolved paths of every Lua script file the
// manifest references, sorted and without duplicates.
func (m *Manifest) Scripts() []string {
	var paths []string
	for _, b := range m.Listeners {
		if b.Action == ActionLua && b.Script != "" {
			paths = append(paths, m.scriptPath(b.Script))
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}
