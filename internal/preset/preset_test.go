package preset

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const presetsYAML = `presets:
  icon:
    description: "Profile icon"
    params:
      type: face
      width: "512"
      expression: smile
  sheet:
    params:
      type: all_body
      instanceCount: "8"
      instanceRotationMode: camera
`

func writePresets(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "presets.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write presets file: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writePresets(t, t.TempDir(), presetsYAML)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error loading presets: %v", err)
	}

	if got := s.Names(); !reflect.DeepEqual(got, []string{"icon", "sheet"}) {
		t.Errorf("Expected names [icon sheet], got %v", got)
	}

	icon, ok := s.Get("icon")
	if !ok {
		t.Fatal("Expected icon preset to exist")
	}
	if icon.Description != "Profile icon" {
		t.Errorf("Expected description 'Profile icon', got '%s'", icon.Description)
	}
	if icon.Params["width"] != "512" {
		t.Errorf("Expected width '512', got '%s'", icon.Params["width"])
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Expected missing preset to not exist")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	if _, err := Load("non_existent_presets.yaml"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writePresets(t, t.TempDir(), "presets:\n  icon: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoad_Nested(t *testing.T) {
	path := writePresets(t, t.TempDir(), "presets:\n  a:\n    params:\n      preset: b\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for nested preset")
	}
}

func TestNilSet(t *testing.T) {
	var s *Set
	if _, ok := s.Get("icon"); ok {
		t.Error("Expected nil set to be empty")
	}
	if len(s.Names()) != 0 {
		t.Error("Expected no names from nil set")
	}
}

func TestApply_RequestWins(t *testing.T) {
	p := &Preset{Params: map[string]string{"type": "face", "width": "512"}}
	q := url.Values{"width": {"128"}}

	p.Apply(q)

	if q.Get("type") != "face" {
		t.Errorf("Expected type 'face', got '%s'", q.Get("type"))
	}
	if q.Get("width") != "128" {
		t.Errorf("Expected width '128' to be kept, got '%s'", q.Get("width"))
	}
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writePresets(t, dir, presetsYAML)

	loaded := make(chan *Set, 16)
	w, err := NewWatcher(path, func(s *Set) { loaded <- s })
	if err != nil {
		t.Fatalf("Unexpected error creating watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writePresets(t, dir, "presets:\n  tiny:\n    params:\n      width: \"64\"\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-loaded:
			if _, ok := s.Get("tiny"); ok {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("Unexpected error from Run: %v", err)
				}
				return
			}
		case <-deadline:
			cancel()
			<-done
			t.Fatal("Timed out waiting for reload")
		}
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "presets.yaml"), func(*Set) {})
	if err == nil {
		t.Error("Expected error for missing directory")
	}
}
