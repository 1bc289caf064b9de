// Package gdbus provides the production remote.Invoker: a payload-free
// org.gtk.Actions activation on the desktop session bus, addressed at the
// drawing application's extension.
package gdbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Well-known bus address of the extension.
const (
	DefaultDest       = "org.inkscape.Inkscape"
	DefaultObjectPath = "/org/inkscape/Inkscape"
	DefaultAction     = "org.mcp.inkscape.draw.modular"

	activateMethod = "org.gtk.Actions.Activate"
	listMethod     = "org.gtk.Actions.List"
)

// Config configures an Invoker.
type Config struct {
	// Dest is the bus name of the target application.
	// Default: org.inkscape.Inkscape
	Dest string

	// ObjectPath is the object path exposing org.gtk.Actions.
	// Default: /org/inkscape/Inkscape
	ObjectPath string

	// Action is the fixed action identifier the extension listens on.
	// Default: org.mcp.inkscape.draw.modular
	Action string
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Dest == "" {
		c.Dest = DefaultDest
	}
	if c.ObjectPath == "" {
		c.ObjectPath = DefaultObjectPath
	}
	if c.Action == "" {
		c.Action = DefaultAction
	}
}

// Invoker activates the extension's action over the session bus. The
// connection is established once by the caller and injected; there is no
// hidden global connection state.
type Invoker struct {
	conn *dbus.Conn
	cfg  Config
}

// New creates an invoker on the given session-bus connection.
func New(conn *dbus.Conn, cfg Config) *Invoker {
	cfg.applyDefaults()
	return &Invoker{conn: conn, cfg: cfg}
}

// Connect dials the session bus and returns an invoker bound to it.
// The caller owns the returned connection and closes it when done.
func Connect(cfg Config) (*Invoker, *dbus.Conn, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("connect session bus: %w", err)
	}
	return New(conn, cfg), conn, nil
}

// Activate fires the payload-free activation. The call confirms receipt
// only; all request payload travels via the parameter file.
func (i *Invoker) Activate(ctx context.Context) error {
	obj := i.conn.Object(i.cfg.Dest, dbus.ObjectPath(i.cfg.ObjectPath))
	call := obj.CallWithContext(ctx, activateMethod, 0,
		i.cfg.Action, []dbus.Variant{}, map[string]dbus.Variant{})
	if call.Err != nil {
		return fmt.Errorf("activate %s: %w", i.cfg.Action, call.Err)
	}
	return nil
}

// Available probes the extension by listing the target's registered actions
// and checking for the configured action name.
func (i *Invoker) Available(ctx context.Context) error {
	obj := i.conn.Object(i.cfg.Dest, dbus.ObjectPath(i.cfg.ObjectPath))
	call := obj.CallWithContext(ctx, listMethod, 0)
	if call.Err != nil {
		return fmt.Errorf("list actions on %s: %w", i.cfg.Dest, call.Err)
	}

	var actions []string
	if err := call.Store(&actions); err != nil {
		return fmt.Errorf("decode action list: %w", err)
	}
	for _, action := range actions {
		if action == i.cfg.Action {
			return nil
		}
	}
	return fmt.Errorf("action %s not registered on %s", i.cfg.Action, i.cfg.Dest)
}

// Endpoint returns the configured bus address for diagnostics.
func (i *Invoker) Endpoint() string {
	return i.cfg.Dest + i.cfg.ObjectPath
}
