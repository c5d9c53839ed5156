package x11

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jezek/xgb/xproto"
	"github.com/labi-le/clipwatch/pkg/ctxlog"
	"github.com/rs/zerolog"
)

// DefaultMaxTargets bounds the TARGETS reply, in 32-bit items.
const DefaultMaxTargets = 1024

// Payload is the result of one successful negotiation.
type Payload struct {
	Data        []byte
	ContentType string
	// MimeTypes lists every resolvable target in the order the owner offered them.
	MimeTypes []string
}

// metaTargets describe the negotiation itself rather than content.
var metaTargets = map[string]struct{}{
	nameTargets:     {},
	nameTimestamp:   {},
	nameSaveTargets: {},
	nameMultiple:    {},
}

func isMeta(name string) bool {
	_, ok := metaTargets[name]
	return ok
}

// Negotiator runs the TARGETS/data handshake with the selection owner.
type Negotiator struct {
	logger     zerolog.Logger
	conn       Conn
	atoms      *Atoms
	wk         wellKnown
	win        xproto.Window
	maxTargets uint32
}

func NewNegotiator(logger zerolog.Logger, conn Conn, atoms *Atoms, win xproto.Window, maxTargets uint32) (*Negotiator, error) {
	wk, err := loadWellKnown(atoms)
	if err != nil {
		return nil, err
	}

	if maxTargets == 0 {
		maxTargets = DefaultMaxTargets
	}

	return &Negotiator{
		logger:     ctxlog.Component(logger, "negotiator"),
		conn:       conn,
		atoms:      atoms,
		wk:         wk,
		win:        win,
		maxTargets: maxTargets,
	}, nil
}

// Selection returns the atom of the negotiated selection.
func (n *Negotiator) Selection() xproto.Atom { return n.wk.Clipboard }

// Negotiate fetches the current selection content. ts must be the timestamp
// of the ownership change that triggered the call; it is sent unchanged in
// both conversion requests so the owner can reject stale requests.
//
// The content may already belong to a newer owner by the time it is read.
// The protocol offers no way to close that window.
func (n *Negotiator) Negotiate(ts xproto.Timestamp) (Payload, error) {
	log := ctxlog.Op(n.logger, "negotiator.Negotiate")

	targets, err := n.discover(ts)
	if err != nil {
		return Payload{}, err
	}

	names, chosen, ok := n.choose(targets)
	if !ok {
		return Payload{MimeTypes: names}, fmt.Errorf("%w: offered %v", ErrNoUsableTarget, names)
	}
	log.Trace().Strs("offered", names).Str("chosen", names[chosen.index]).Send()

	data, err := n.fetch(ts, chosen.atom)
	if err != nil {
		return Payload{MimeTypes: names}, err
	}

	return Payload{
		Data:        data,
		ContentType: names[chosen.index],
		MimeTypes:   names,
	}, nil
}

// discover asks the owner for its TARGETS list.
func (n *Negotiator) discover(ts xproto.Timestamp) ([]xproto.Atom, error) {
	prop, err := n.convert(ts, n.wk.Targets)
	if err != nil {
		return nil, err
	}
	if prop == xproto.AtomNone {
		// refused TARGETS: nothing offered
		return nil, nil
	}

	reply, err := n.conn.GetProperty(false, n.win, prop, xproto.AtomAtom, 0, n.maxTargets)
	if err != nil {
		return nil, fmt.Errorf("%w: read targets: %w", ErrProtocol, err)
	}
	if reply == nil || reply.Format != 32 {
		return nil, nil
	}

	return decodeAtoms(reply.Value, n.maxTargets), nil
}

type choice struct {
	atom  xproto.Atom
	index int
}

// choose resolves every target and picks the first non-meta one.
// Targets whose names cannot be resolved are dropped.
func (n *Negotiator) choose(targets []xproto.Atom) ([]string, choice, bool) {
	var (
		names  = make([]string, 0, len(targets))
		chosen choice
		found  bool
	)

	for _, target := range targets {
		name, err := n.atoms.Name(target)
		if err != nil {
			n.logger.Debug().Err(err).Uint32("atom", uint32(target)).Msg("drop unresolvable target")
			continue
		}

		names = append(names, name)
		if !found && !isMeta(name) {
			chosen = choice{atom: target, index: len(names) - 1}
			found = true
		}
	}

	return names, chosen, found
}

// fetch converts the selection to target and reads the whole property,
// deleting it on the server.
func (n *Negotiator) fetch(ts xproto.Timestamp, target xproto.Atom) ([]byte, error) {
	prop, err := n.convert(ts, target)
	if err != nil {
		return nil, err
	}
	if prop == xproto.AtomNone {
		return nil, fmt.Errorf("%w: owner refused conversion", ErrProtocol)
	}

	reply, err := n.conn.GetProperty(true, n.win, prop, xproto.GetPropertyTypeAny, 0, math.MaxUint32)
	if err != nil {
		return nil, fmt.Errorf("%w: read content: %w", ErrProtocol, err)
	}
	if reply == nil {
		return nil, fmt.Errorf("%w: read content: empty reply", ErrProtocol)
	}
	if reply.Type == n.wk.Incr {
		return nil, ErrIncrementalTransfer
	}

	return reply.Value, nil
}

// convert sends ConvertSelection and waits for the matching SelectionNotify.
// It returns the property holding the result, or None when the owner refused.
func (n *Negotiator) convert(ts xproto.Timestamp, target xproto.Atom) (xproto.Atom, error) {
	err := n.conn.ConvertSelection(n.win, n.wk.Clipboard, target, n.wk.Staging, ts)
	if err != nil {
		return xproto.AtomNone, fmt.Errorf("%w: convert selection: %w", ErrProtocol, err)
	}

	for {
		ev, err := n.conn.WaitForEvent()
		if err != nil {
			return xproto.AtomNone, fmt.Errorf("%w: waiting for selection notify: %w", ErrProtocol, err)
		}
		if ev == nil {
			return xproto.AtomNone, ErrTransport
		}

		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok || e.Requestor != n.win || e.Selection != n.wk.Clipboard || e.Target != target {
			n.logger.Trace().Str("event", ev.String()).Msg("discard stray event")
			continue
		}

		return e.Property, nil
	}
}

// decodeAtoms reads little-endian 32-bit atoms, at most limit of them.
func decodeAtoms(value []byte, limit uint32) []xproto.Atom {
	count := uint32(len(value) / 4)
	if count > limit {
		count = limit
	}

	atoms := make([]xproto.Atom, count)
	for i := range atoms {
		atoms[i] = xproto.Atom(binary.LittleEndian.Uint32(value[i*4:]))
	}
	return atoms
}
