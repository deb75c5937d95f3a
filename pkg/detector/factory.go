package detector

import (
	"fmt"
	"os"
	"time"

	"github.com/titlemirror/titlemirror/pkg/integrations/x11"
	"github.com/titlemirror/titlemirror/pkg/integrations/xconn"
	"github.com/titlemirror/titlemirror/pkg/window"
)

const (
	BackendXprop = "xprop"
	BackendXgb   = "xgb"
)

// Backends lists the accepted backend names
var Backends = []string{BackendXprop, BackendXgb}

// New creates the window source for the named backend. queryTimeout bounds each
// external tool invocation of the xprop backend.
//
// The xprop backend is returned even when its tools are missing: lookups then report
// a query error each tick and recover once the tools appear. Callers may check
// IsAvailable to warn.
func New(backend string, queryTimeout time.Duration) (window.Source, error) {
	switch backend {
	case BackendXprop, "":
		return x11.NewDetector(x11.ExecRunner{Timeout: queryTimeout}), nil
	case BackendXgb:
		det, err := xconn.NewDetector()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize xgb backend: %w", err)
		}
		return det, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (valid: %s, %s)", backend, BackendXprop, BackendXgb)
	}
}

// IsValidBackend reports whether name is an accepted backend
func IsValidBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
