package x11_test

import (
	"encoding/binary"
	"errors"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

const (
	proxyWindow xproto.Window = 0x200001
	ownerWindow xproto.Window = 0x400001
)

var errInjected = errors.New("injected failure")

type convertCall struct {
	target xproto.Atom
	ts     xproto.Timestamp
}

type property struct {
	typ    xproto.Atom
	format byte
	value  []byte
}

// fakeConn plays both the X server and the selection owner.
// The event queue holds xgb.Event, error or func() steps; a func runs when
// reached and is not returned. An empty queue reads as a closed connection.
type fakeConn struct {
	atoms    map[string]xproto.Atom
	names    map[xproto.Atom]string
	nextAtom xproto.Atom

	internCalls int
	nameCalls   int
	nameFail    map[string]bool

	xfixesErr error
	selectErr error
	selected  []xproto.Atom

	// owner state
	offers     []string
	content    map[string][]byte
	incr       bool
	refuseData bool
	fetchErr   error

	// stray events or errors delivered before the next SelectionNotify
	interleave []any
	// owner never answers
	silent bool

	converts []convertCall
	props    map[xproto.Atom]property
	deleted  []xproto.Atom
	events   []any
}

func newFakeConn() *fakeConn {
	c := &fakeConn{
		atoms:    map[string]xproto.Atom{"ATOM": xproto.AtomAtom},
		names:    map[xproto.Atom]string{xproto.AtomAtom: "ATOM"},
		nextAtom: 100,
		nameFail: map[string]bool{},
		content:  map[string][]byte{},
		props:    map[xproto.Atom]property{},
	}
	return c
}

// offer makes the owner advertise targets; data is served for the given target.
func (c *fakeConn) offer(targets []string, target string, data []byte) {
	c.offers = targets
	c.content = map[string][]byte{target: data}
}

func (c *fakeConn) atom(name string) xproto.Atom {
	a, _ := c.InternAtom(name)
	return a
}

func (c *fakeConn) ownerChanged(ts xproto.Timestamp) xfixes.SelectionNotifyEvent {
	return xfixes.SelectionNotifyEvent{
		Window:    proxyWindow,
		Owner:     ownerWindow,
		Selection: c.atom("CLIPBOARD"),
		Timestamp: ts,
	}
}

func (c *fakeConn) push(items ...any) { c.events = append(c.events, items...) }

func (c *fakeConn) InternAtom(name string) (xproto.Atom, error) {
	c.internCalls++
	if a, ok := c.atoms[name]; ok {
		return a, nil
	}
	a := c.nextAtom
	c.nextAtom++
	c.atoms[name] = a
	c.names[a] = name
	return a, nil
}

func (c *fakeConn) AtomName(atom xproto.Atom) (string, error) {
	c.nameCalls++
	name, ok := c.names[atom]
	if !ok || c.nameFail[name] {
		return "", errInjected
	}
	return name, nil
}

func (c *fakeConn) QueryXFixesVersion(uint32, uint32) error { return c.xfixesErr }

func (c *fakeConn) SelectSelectionInput(_ xproto.Window, selection xproto.Atom, _ uint32) error {
	if c.selectErr != nil {
		return c.selectErr
	}
	c.selected = append(c.selected, selection)
	return nil
}

func (c *fakeConn) ConvertSelection(requestor xproto.Window, selection, target, prop xproto.Atom, ts xproto.Timestamp) error {
	c.converts = append(c.converts, convertCall{target: target, ts: ts})

	notify := xproto.SelectionNotifyEvent{
		Time:      ts,
		Requestor: requestor,
		Selection: selection,
		Target:    target,
		Property:  prop,
	}

	name := c.names[target]
	switch {
	case name == "TARGETS":
		buf := make([]byte, 0, 4*len(c.offers))
		for _, offer := range c.offers {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(c.atom(offer)))
		}
		c.props[prop] = property{typ: xproto.AtomAtom, format: 32, value: buf}
	case c.incr:
		c.props[prop] = property{typ: c.atom("INCR"), format: 32, value: []byte{0, 0, 1, 0}}
	case c.refuseData:
		notify.Property = xproto.AtomNone
	default:
		data, ok := c.content[name]
		if !ok {
			notify.Property = xproto.AtomNone
			break
		}
		c.props[prop] = property{typ: target, format: 8, value: data}
	}

	head := append(c.interleave, notify)
	if c.silent {
		head = c.interleave
	}
	c.interleave = nil
	c.events = append(head, c.events...)
	return nil
}

func (c *fakeConn) GetProperty(del bool, _ xproto.Window, prop, typ xproto.Atom, _, length uint32) (*xproto.GetPropertyReply, error) {
	if del && c.fetchErr != nil {
		return nil, c.fetchErr
	}

	p, ok := c.props[prop]
	if !ok {
		return &xproto.GetPropertyReply{}, nil
	}
	if typ != xproto.GetPropertyTypeAny && typ != p.typ {
		return &xproto.GetPropertyReply{Type: p.typ, Format: p.format}, nil
	}

	value := p.value
	if p.format == 32 && uint64(len(value)) > uint64(length)*4 {
		value = value[:length*4]
	}
	if del {
		delete(c.props, prop)
		c.deleted = append(c.deleted, prop)
	}

	return &xproto.GetPropertyReply{
		Type:     p.typ,
		Format:   p.format,
		ValueLen: uint32(len(value)) / uint32(p.format/8),
		Value:    value,
	}, nil
}

func (c *fakeConn) WaitForEvent() (xgb.Event, error) {
	for len(c.events) > 0 {
		next := c.events[0]
		c.events = c.events[1:]

		switch v := next.(type) {
		case func():
			v()
		case error:
			return nil, v
		case xgb.Event:
			return v, nil
		}
	}
	return nil, nil
}
