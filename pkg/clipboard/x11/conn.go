package x11

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

// Conn is the part of the X protocol the clipboard watcher talks.
// Every method except WaitForEvent is a single request/reply round trip.
type Conn interface {
	InternAtom(name string) (xproto.Atom, error)
	AtomName(atom xproto.Atom) (string, error)

	QueryXFixesVersion(major, minor uint32) error
	SelectSelectionInput(win xproto.Window, selection xproto.Atom, mask uint32) error

	ConvertSelection(requestor xproto.Window, selection, target, property xproto.Atom, ts xproto.Timestamp) error
	GetProperty(del bool, win xproto.Window, property, typ xproto.Atom, offset, length uint32) (*xproto.GetPropertyReply, error)

	// WaitForEvent blocks until the server delivers an event or an
	// asynchronous error. It returns (nil, nil) once the connection is closed.
	WaitForEvent() (xgb.Event, error)
}

var _ Conn = (*Display)(nil)

// Display is a live connection to an X server together with the proxy window
// used as the requestor of every conversion.
type Display struct {
	conn  *xgb.Conn
	win   xproto.Window
	close sync.Once
}

// Dial connects to the named display ("" means $DISPLAY) and creates the
// proxy window.
func Dial(display string) (*Display, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("xgb connect: %w", err)
	}

	if err := xfixes.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: xfixes init: %w", ErrSetup, err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("allocate window id: %w", err)
	}

	// never mapped; 1x1 because the server rejects a zero size
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		win,
		screen.Root,
		0,
		0,
		1,
		1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		0,
		nil,
	).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &Display{conn: conn, win: win}, nil
}

// Window returns the proxy window.
func (d *Display) Window() xproto.Window { return d.win }

// Close drops the connection. A goroutine blocked in WaitForEvent wakes up
// and observes a closed connection.
func (d *Display) Close() {
	d.close.Do(d.conn.Close)
}

func (d *Display) InternAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(d.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone, err
	}
	return reply.Atom, nil
}

func (d *Display) AtomName(atom xproto.Atom) (string, error) {
	reply, err := xproto.GetAtomName(d.conn, atom).Reply()
	if err != nil {
		return "", err
	}
	return reply.Name, nil
}

func (d *Display) QueryXFixesVersion(major, minor uint32) error {
	_, err := xfixes.QueryVersion(d.conn, major, minor).Reply()
	return err
}

func (d *Display) SelectSelectionInput(win xproto.Window, selection xproto.Atom, mask uint32) error {
	return xfixes.SelectSelectionInputChecked(d.conn, win, selection, mask).Check()
}

func (d *Display) ConvertSelection(requestor xproto.Window, selection, target, property xproto.Atom, ts xproto.Timestamp) error {
	return xproto.ConvertSelectionChecked(d.conn, requestor, selection, target, property, ts).Check()
}

func (d *Display) GetProperty(del bool, win xproto.Window, property, typ xproto.Atom, offset, length uint32) (*xproto.GetPropertyReply, error) {
	return xproto.GetProperty(d.conn, del, win, property, typ, offset, length).Reply()
}

func (d *Display) WaitForEvent() (xgb.Event, error) {
	ev, xerr := d.conn.WaitForEvent()
	if xerr != nil {
		return nil, xerr
	}
	return ev, nil
}
