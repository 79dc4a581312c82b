package manifest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dshills/soochak/internal/event"
	"github.com/dshills/soochak/internal/plugin/lua"
)

// Option configures Apply.
type Option func(*applyConfig)

type applyConfig struct {
	logger *slog.Logger
	output io.Writer
}

// WithLogger sets the logger used by the log action.
func WithLogger(logger *slog.Logger) Option {
	return func(c *applyConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOutput sets where the print action and Lua print write.
func WithOutput(w io.Writer) Option {
	return func(c *applyConfig) {
		if w != nil {
			c.output = w
		}
	}
}

// Attachment records the listeners one Apply attached.
type Attachment struct {
	manager *event.Manager
	ids     []attached
	scripts []*lua.Listener
}

type attached struct {
	event string
	id    event.ListenerID
}

// Len returns the number of attached listeners.
func (a *Attachment) Len() int {
	return len(a.ids)
}

// Detach removes every listener this attachment added and releases
// their Lua states.
func (a *Attachment) Detach() {
	for _, at := range a.ids {
		a.manager.DetachID(at.event, at.id)
	}
	a.ids = nil
	a.Close()
}

// Close releases Lua states without detaching.
func (a *Attachment) Close() {
	for _, s := range a.scripts {
		_ = s.Close()
	}
	a.scripts = nil
}

// Apply builds a listener for every binding and attaches it to mgr.
// On error nothing stays attached.
func (m *Manifest) Apply(mgr *event.Manager, opts ...Option) (*Attachment, error) {
	cfg := applyConfig{
		logger: slog.Default(),
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	att := &Attachment{manager: mgr}
	for i, b := range m.Listeners {
		l, err := m.build(b, cfg, att)
		if err == nil {
			var id event.ListenerID
			id, err = mgr.Attach(b.Event, l, event.WithPriority(b.Priority))
			if err == nil {
				att.ids = append(att.ids, attached{event: b.Event, id: id})
				continue
			}
		}
		att.Detach()
		return nil, &BindingError{Index: i, Event: b.Event, Err: err}
	}
	return att, nil
}

// build creates the listener for one binding.
func (m *Manifest) build(b Binding, cfg applyConfig, att *Attachment) (*listener, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	l := &listener{binding: b, logger: cfg.logger, output: cfg.output}
	if b.Action == ActionLua {
		var (
			script *lua.Listener
			err    error
		)
		if b.Script != "" {
			script, err = lua.LoadListener(m.scriptPath(b.Script), lua.WithOutput(cfg.output))
		} else {
			script, err = lua.NewListener("inline:"+b.Event, b.Code, lua.WithOutput(cfg.output))
		}
		if err != nil {
			return nil, err
		}
		att.scripts = append(att.scripts, script)
		l.script = script
	}
	return l, nil
}

// listener runs one binding's action.
type listener struct {
	binding Binding
	logger  *slog.Logger
	output  io.Writer
	script  *lua.Listener
}

// Capabilities an action may need from the event.
type (
	paramReader interface {
		Params() event.Params
	}
	paramWriter interface {
		SetParam(key string, value any)
	}
	propagationStopper interface {
		StopPropagation()
	}
)

func (l *listener) Handle(ctx context.Context, ev any) error {
	name, _ := event.NameOf(ev)
	var params event.Params
	if pr, ok := ev.(paramReader); ok {
		params = pr.Params()
	}

	switch l.binding.Action {
	case ActionLog:
		msg := l.binding.Message
		if msg == "" {
			msg = "event"
		}
		l.logger.InfoContext(ctx, expand(msg, name, params), "event", name, "params", map[string]any(params))

	case ActionPrint:
		if _, err := fmt.Fprintln(l.output, expand(l.binding.Message, name, params)); err != nil {
			return err
		}

	case ActionSet:
		pw, ok := ev.(paramWriter)
		if !ok {
			return fmt.Errorf("event %q does not accept parameters", name)
		}
		for k, v := range l.binding.Params {
			pw.SetParam(k, v)
		}

	case ActionStop:
		if err := stop(ev, name); err != nil {
			return err
		}

	case ActionFail:
		msg := l.binding.Message
		if msg == "" {
			return ErrActionFailed
		}
		return fmt.Errorf("%w: %s", ErrActionFailed, expand(msg, name, params))

	case ActionLua:
		if err := l.script.Handle(ctx, ev); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, l.binding.Action)
	}

	if l.binding.Stop {
		return stop(ev, name)
	}
	return nil
}

func stop(ev any, name string) error {
	s, ok := ev.(propagationStopper)
	if !ok {
		return fmt.Errorf("event %q cannot be stopped", name)
	}
	s.StopPropagation()
	return nil
}

// expand replaces $event with name and $key or ${key} with parameters.
func expand(msg, name string, params event.Params) string {
	return os.Expand(msg, func(key string) string {
		if key == "event" {
			return name
		}
		if v, ok := params[key]; ok {
			return fmt.Sprint(v)
		}
		return ""
	})
}

// String describes the binding, e.g. "print (priority 10, stop)".
func (l *listener) String() string {
	s := fmt.Sprintf("%s (priority %d", l.binding.Action, l.binding.Priority)
	if l.script != nil {
		s += ", " + l.script.Source()
	}
	if l.binding.Stop {
		s += ", stop"
	}
	return s + ")"
}
