package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
manifest = "listeners.toml"

[log]
level = "debug"
format = "json"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config["manifest"] != "listeners.toml" {
		t.Errorf("manifest = %v", config["manifest"])
	}
	if val, ok := getByPath(config, "log.level"); !ok || val != "debug" {
		t.Errorf("log.level = %v, want debug", val)
	}
}

func TestTOMLLoader_LoadMissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if config != nil {
		t.Errorf("expected nil config, got %v", config)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[log\nlevel = ")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q", perr.Path)
	}
	if perr.Line == 0 {
		t.Error("expected a line number")
	}
	if !strings.Contains(err.Error(), "/bad.toml") {
		t.Errorf("error should mention the file: %v", err)
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader(`[watch]
debounce = "100ms"`))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if val, _ := getByPath(config, "watch.debounce"); val != "100ms" {
		t.Errorf("watch.debounce = %v", val)
	}
}

func TestDecodeFile_TOML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/typed.toml", `
[[item]]
name = "a"
rank = 2

[[item]]
name = "b"
rank = -1
`)

	var doc struct {
		Item []struct {
			Name string `toml:"name"`
			Rank int    `toml:"rank"`
		} `toml:"item"`
	}
	if err := DecodeFile(memfs, "/typed.toml", &doc); err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if len(doc.Item) != 2 || doc.Item[1].Name != "b" || doc.Item[1].Rank != -1 {
		t.Errorf("unexpected decode result %+v", doc)
	}
}

func TestDecodeFile_Errors(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.json", "{}")

	var v map[string]any
	if err := DecodeFile(memfs, "/config.json", &v); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := DecodeFile(memfs, "/missing.toml", &v); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"dir/a.TOML", FormatTOML, false},
		{"a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.json", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatOf(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatOf(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestForPath(t *testing.T) {
	memfs := NewMemFS()

	if l, err := ForPath(memfs, "x.yml"); err != nil {
		t.Fatal(err)
	} else if _, ok := l.(*YAMLLoader); !ok {
		t.Errorf("ForPath(yml) = %T, want *YAMLLoader", l)
	}
	if l, err := ForPath(memfs, "x.toml"); err != nil {
		t.Fatal(err)
	} else if _, ok := l.(*TOMLLoader); !ok {
		t.Errorf("ForPath(toml) = %T, want *TOMLLoader", l)
	}
	if _, err := ForPath(memfs, "x.ini"); err == nil {
		t.Error("expected error for .ini")
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":      map[string]any{"level": "info", "format": "text"},
		"manifest": "a.toml",
	}
	src := map[string]any{
		"log":   map[string]any{"level": "debug"},
		"watch": map[string]any{"debounce": "1s"},
	}

	merged := DeepMerge(dst, src)

	checks := map[string]any{
		"log.level":      "debug",
		"log.format":     "text",
		"manifest":       "a.toml",
		"watch.debounce": "1s",
	}
	for path, want := range checks {
		if got, ok := getByPath(merged, path); !ok || got != want {
			t.Errorf("%s = %v, want %v", path, got, want)
		}
	}
}

func TestDeepMerge_Nil(t *testing.T) {
	if got := DeepMerge(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("DeepMerge(nil, nil) = %v, want empty map", got)
	}
	src := map[string]any{"a": 1}
	if got := DeepMerge(nil, src); got["a"] != 1 {
		t.Errorf("DeepMerge(nil, src) = %v", got)
	}
}
