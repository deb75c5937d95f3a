// Package xconn locates windows and reads their titles by talking to the X server
// directly over the X11 wire protocol, without spawning xdotool or xprop.
package xconn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/titlemirror/titlemirror/pkg/window"
)

// maxPropertyLength is the property read size in 32-bit units
const maxPropertyLength = 1024

var atomNames = []string{
	"_NET_WM_NAME",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

var errClosed = errors.New("xgb detector is closed")

// Detector implements window.Source over a single X connection. A connection that
// stops answering is dropped and dialled again on the next lookup.
type Detector struct {
	dial   func() (*xgb.Conn, error)
	conn   *xgb.Conn
	root   xproto.Window
	atoms  map[string]xproto.Atom
	closed bool
}

// NewDetector connects to the display named by $DISPLAY and interns the atoms it needs
func NewDetector() (*Detector, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, window.ErrNoDisplay
	}

	d := &Detector{dial: xgb.NewConn}
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Detector) connect() error {
	conn, err := d.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}

	atoms := make(map[string]xproto.Atom, len(atomNames))
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		atoms[name] = reply.Atom
	}

	d.conn = conn
	d.root = xproto.Setup(conn).DefaultScreen(conn).Root
	d.atoms = atoms
	return nil
}

func (d *Detector) disconnect() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

// Name returns "xgb"
func (d *Detector) Name() string {
	return "xgb"
}

// IsAvailable reports whether the X connection is open
func (d *Detector) IsAvailable() bool {
	return d.conn != nil
}

// Locate walks the window tree depth-first from the root and returns the first window
// whose WM_CLASS instance name equals className. When the root cannot be queried the
// connection is re-established and the walk retried once.
func (d *Detector) Locate(ctx context.Context, className string) (window.Lookup, error) {
	if d.closed {
		return window.QueryFailed(errClosed), nil
	}

	if d.conn == nil {
		if err := d.connect(); err != nil {
			return window.QueryFailed(err), nil
		}
	}

	lookup, err := d.walk(ctx, className)
	if err != nil || lookup.Status != window.QueryError {
		return lookup, err
	}

	d.disconnect()
	if err := d.connect(); err != nil {
		return window.QueryFailed(fmt.Errorf("%v; reconnect failed: %w", lookup.Err, err)), nil
	}
	return d.walk(ctx, className)
}

// walk reports QueryError only when the root window itself cannot be queried
func (d *Detector) walk(ctx context.Context, className string) (window.Lookup, error) {
	stack := []xproto.Window{d.root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return window.Lookup{}, err
		}

		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if w != d.root {
			instance, _ := d.windowClass(w)
			if instance == className {
				return window.FoundWindow(FormatID(w)), nil
			}
		}

		tree, err := xproto.QueryTree(d.conn, w).Reply()
		if err != nil {
			if w == d.root {
				return window.QueryFailed(fmt.Errorf("failed to query root window tree: %w", err)), nil
			}
			// the window went away mid-walk
			continue
		}
		for i := len(tree.Children) - 1; i >= 0; i-- {
			stack = append(stack, tree.Children[i])
		}
	}

	return window.NoWindow(), nil
}

// ReadTitle returns _NET_WM_NAME, falling back to WM_NAME
func (d *Detector) ReadTitle(ctx context.Context, id window.ID) (string, error) {
	if d.conn == nil {
		return "", fmt.Errorf("failed to read title of window %s: not connected to X server", id)
	}

	w, err := ParseID(id)
	if err != nil {
		return "", err
	}

	data, err := d.property(w, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"])
	if err != nil {
		return "", fmt.Errorf("failed to read _NET_WM_NAME of window %s: %w", id, err)
	}
	if len(data) > 0 {
		return decodeProperty(data), nil
	}

	data, err = d.property(w, d.atoms["WM_NAME"], xproto.GetPropertyTypeAny)
	if err != nil {
		return "", fmt.Errorf("failed to read WM_NAME of window %s: %w", id, err)
	}
	return decodeProperty(data), nil
}

func (d *Detector) property(w xproto.Window, atom, atomType xproto.Atom) ([]byte, error) {
	reply, err := xproto.GetProperty(d.conn, false, w, atom, atomType, 0, maxPropertyLength).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (d *Detector) windowClass(w xproto.Window) (instance, class string) {
	data, err := d.property(w, d.atoms["WM_CLASS"], xproto.AtomString)
	if err != nil || len(data) == 0 {
		return "", ""
	}
	return SplitClass(data)
}

// SplitClass splits a raw WM_CLASS value ("instance\x00class\x00") into its two parts
func SplitClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// FormatID renders a window as the hex id format xprop accepts
func FormatID(w xproto.Window) window.ID {
	return window.ID(fmt.Sprintf("0x%x", uint32(w)))
}

// ParseID accepts hex ("0x3a00007") and decimal ("60817415") window ids
func ParseID(id window.ID) (xproto.Window, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(string(id)), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", id, err)
	}
	return xproto.Window(v), nil
}

func decodeProperty(data []byte) string {
	return strings.ToValidUTF8(strings.TrimRight(string(data), "\x00"), "\uFFFD")
}

// Close closes the X connection; the detector does not reconnect afterwards
func (d *Detector) Close() error {
	d.closed = true
	d.disconnect()
	return nil
}
