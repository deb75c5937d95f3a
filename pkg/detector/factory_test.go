package detector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/titlemirror/titlemirror/pkg/window"
)

func TestNew(t *testing.T) {
	source, err := New(BackendXprop, time.Second)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer source.Close()

	if source.Name() != BackendXprop {
		t.Errorf("Name() = %s, want %s", source.Name(), BackendXprop)
	}
	t.Logf("xprop backend available: %v", source.IsAvailable())
}

func TestNewWithoutTools(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	source, err := New(BackendXprop, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v, want a source even without xdotool and xprop", err)
	}
	defer source.Close()

	if source.IsAvailable() {
		t.Error("IsAvailable() = true with an empty PATH")
	}

	lookup, err := source.Locate(context.Background(), "cloudmusic.exe")
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if lookup.Status != window.QueryError {
		t.Errorf("Status = %v, want query_error", lookup.Status)
	}
}

func TestNewDefaultsToXprop(t *testing.T) {
	source, err := New("", time.Second)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer source.Close()

	if source.Name() != BackendXprop {
		t.Errorf("Name() = %s, want %s", source.Name(), BackendXprop)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New("wmctrl", time.Second); err == nil {
		t.Error("New(wmctrl) error = nil, want error")
	}
}

func TestNewXgbWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")

	_, err := New(BackendXgb, time.Second)
	if !errors.Is(err, window.ErrNoDisplay) {
		t.Errorf("New(xgb) error = %v, want ErrNoDisplay", err)
	}
}

func TestIsValidBackend(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"xprop", true},
		{"xgb", true},
		{"", false},
		{"wayland", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidBackend(tt.name); got != tt.want {
				t.Errorf("IsValidBackend(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name             string
		sessionType      string
		waylandDisplay   string
		x11Display       string
		expectedContains string
	}{
		{
			name:             "Wayland session",
			sessionType:      "wayland",
			waylandDisplay:   "wayland-0",
			x11Display:       "",
			expectedContains: "wayland",
		},
		{
			name:             "X11 session",
			sessionType:      "x11",
			waylandDisplay:   "",
			x11Display:       ":0",
			expectedContains: "x11",
		},
		{
			name:             "Unknown session",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       "",
			expectedContains: "unknown",
		},
		{
			name:             "X11 display set",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       ":1",
			expectedContains: "x11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_SESSION_TYPE", tt.sessionType)
			t.Setenv("WAYLAND_DISPLAY", tt.waylandDisplay)
			t.Setenv("DISPLAY", tt.x11Display)

			result := DetectDisplayServer()
			if result != tt.expectedContains {
				t.Errorf("DetectDisplayServer() = %s, want %s", result, tt.expectedContains)
			}
		})
	}
}
