package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
)

// Well-known names interned at startup.
const (
	nameClipboard   = "CLIPBOARD"
	nameTargets     = "TARGETS"
	nameTimestamp   = "TIMESTAMP"
	nameSaveTargets = "SAVE_TARGETS"
	nameMultiple    = "MULTIPLE"
	nameIncr        = "INCR"

	// property on the proxy window where owners deposit conversions
	nameStaging = "_CLIPBOARD_DATA"
)

// Atoms resolves names to atoms and back. Atoms never change within a server
// session, so both directions are cached for the lifetime of the connection.
// Not safe for concurrent use; the watch loop owns it.
type Atoms struct {
	conn   Conn
	byName map[string]xproto.Atom
	byAtom map[xproto.Atom]string
}

func NewAtoms(conn Conn) *Atoms {
	return &Atoms{
		conn:   conn,
		byName: make(map[string]xproto.Atom),
		byAtom: make(map[xproto.Atom]string),
	}
}

// Resolve interns name on the server.
func (a *Atoms) Resolve(name string) (xproto.Atom, error) {
	if atom, ok := a.byName[name]; ok {
		return atom, nil
	}

	atom, err := a.conn.InternAtom(name)
	if err != nil {
		return xproto.AtomNone, fmt.Errorf("%w: intern atom %q: %w", ErrProtocol, name, err)
	}
	if atom == xproto.AtomNone {
		return xproto.AtomNone, fmt.Errorf("%w: intern atom %q: empty reply", ErrProtocol, name)
	}

	a.remember(name, atom)
	return atom, nil
}

// Name looks up the name of atom.
func (a *Atoms) Name(atom xproto.Atom) (string, error) {
	if name, ok := a.byAtom[atom]; ok {
		return name, nil
	}
	if atom == xproto.AtomNone {
		return "", fmt.Errorf("%w: atom name: none", ErrProtocol)
	}

	name, err := a.conn.AtomName(atom)
	if err != nil {
		return "", fmt.Errorf("%w: atom name %d: %w", ErrProtocol, atom, err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: atom name %d: empty reply", ErrProtocol, atom)
	}

	a.remember(name, atom)
	return name, nil
}

func (a *Atoms) remember(name string, atom xproto.Atom) {
	a.byName[name] = atom
	a.byAtom[atom] = name
}

// wellKnown holds the atoms the negotiation needs on every cycle.
type wellKnown struct {
	Clipboard xproto.Atom
	Targets   xproto.Atom
	Incr      xproto.Atom
	Staging   xproto.Atom
}

func loadWellKnown(a *Atoms) (wellKnown, error) {
	var (
		wk  wellKnown
		err error
	)

	for _, slot := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{nameClipboard, &wk.Clipboard},
		{nameTargets, &wk.Targets},
		{nameIncr, &wk.Incr},
		{nameStaging, &wk.Staging},
	} {
		if *slot.dst, err = a.Resolve(slot.name); err != nil {
			return wellKnown{}, err
		}
	}

	return wk, nil
}
