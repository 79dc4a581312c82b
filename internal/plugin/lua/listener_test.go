package lua

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/soochak/internal/event"
)

const greeter = `
function handle(event)
    if event.params.user == nil then
        error("missing user")
    end
    print("hello " .. event.params.user .. " from " .. event.name)
    event.set("greeted", true)
    event.set("visits", (event.get("visits") or 0) + 1)
end
`

func TestListenerHandle(t *testing.T) {
	var out bytes.Buffer
	l, err := NewListener("greeter", greeter, WithOutput(&out))
	if err != nil {
		t.Fatalf("NewListener() error = %v", err)
	}
	defer l.Close()

	ev := event.NewEvent("user.created", event.Params{"user": "ana", "visits": 2})
	if err := l.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if got := out.String(); got != "hello ana from user.created\n" {
		t.Errorf("output = %q", got)
	}
	if ev.Param("greeted") != true {
		t.Errorf("greeted = %v, want true", ev.Param("greeted"))
	}
	if ev.Param("visits") != int64(3) {
		t.Errorf("visits = %v (%T), want 3", ev.Param("visits"), ev.Param("visits"))
	}
	if ev.IsPropagationStopped() {
		t.Error("event should not be stopped")
	}
}

func TestListenerError(t *testing.T) {
	l, err := NewListener("greeter", greeter)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	err = l.Handle(context.Background(), event.NewEvent("user.created", nil))
	if err == nil {
		t.Fatal("Handle() expected error")
	}
	if !strings.Contains(err.Error(), "missing user") {
		t.Errorf("error = %v, want it to mention the Lua error", err)
	}
	if !strings.Contains(err.Error(), "greeter") {
		t.Errorf("error = %v, want it to name the script", err)
	}
}

func TestListenerStop(t *testing.T) {
	l, err := NewListener("stopper", `function handle(event) event.stop() end`)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	ev := event.NewEvent("order.placed", nil)
	if err := l.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !ev.IsPropagationStopped() {
		t.Error("event should be stopped")
	}
}

type plainEvent struct{}

func TestListenerPlainEvent(t *testing.T) {
	l, err := NewListener("plain", `
function handle(event)
    seen = event.name
    event.stop()
end
`)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	err = l.Handle(context.Background(), plainEvent{})
	if err == nil || !strings.Contains(err.Error(), "cannot be stopped") {
		t.Errorf("Handle() error = %v, want stop rejection", err)
	}
	if got := l.state.GetGlobal("seen").String(); !strings.HasSuffix(got, ".plainEvent") {
		t.Errorf("event.name = %q, want the type name", got)
	}
}

func TestNewListenerErrors(t *testing.T) {
	if _, err := NewListener("empty", `x = 1`); !errors.Is(err, ErrNoHandler) {
		t.Errorf("NewListener(no handle) = %v, want ErrNoHandler", err)
	}
	if _, err := NewListener("broken", `function handle(`); err == nil {
		t.Error("NewListener(syntax error) expected error")
	}
}

func TestLoadListener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.lua")
	if err := os.WriteFile(path, []byte(`function handle(event) event.set("audited", event.name) end`), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadListener(path)
	if err != nil {
		t.Fatalf("LoadListener() error = %v", err)
	}
	defer l.Close()

	if l.Source() != path {
		t.Errorf("Source() = %q, want %q", l.Source(), path)
	}

	ev := event.NewEvent("file.saved", nil)
	if err := l.Handle(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if ev.Param("audited") != "file.saved" {
		t.Errorf("audited = %v", ev.Param("audited"))
	}

	if _, err := LoadListener(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("LoadListener(missing) expected error")
	}
}

func TestListenerWithManager(t *testing.T) {
	m := event.NewManager()

	gate, err := NewListener("gate", `
function handle(event)
    if event.params.blocked then
        event.stop()
    end
end
`)
	if err != nil {
		t.Fatal(err)
	}
	defer gate.Close()

	var reached []string
	if _, err := m.Attach("request", gate, event.WithPriority(event.PriorityHigh)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AttachFunc("request", func(_ context.Context, ev any) error {
		reached = append(reached, ev.(*event.Event).Param("path").(string))
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := m.Trigger(ctx, "request", event.Params{"path": "/open"}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Trigger(ctx, "request", event.Params{"path": "/admin", "blocked": true}); err != nil {
		t.Fatal(err)
	}

	if len(reached) != 1 || reached[0] != "/open" {
		t.Errorf("reached = %v, want [/open]", reached)
	}

	if !m.Detach("request", gate) {
		t.Error("Detach(lua listener) = false, want true")
	}
}
