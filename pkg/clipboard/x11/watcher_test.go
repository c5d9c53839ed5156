package x11_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
	"github.com/labi-le/clipwatch/pkg/clipboard/x11"
	"github.com/rs/zerolog"
)

func TestWatcher_Register(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *fakeConn)
	}{
		{"xfixes unavailable", func(c *fakeConn) { c.xfixesErr = errInjected }},
		{"selection input rejected", func(c *fakeConn) { c.selectErr = errInjected }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn()
			tt.setup(conn)

			err := x11.NewWatcher(zerolog.Nop(), conn, proxyWindow).Register(conn.atom("CLIPBOARD"))
			if !errors.Is(err, x11.ErrSetup) {
				t.Fatalf("want ErrSetup, got %v", err)
			}
			if !x11.Fatal(err) {
				t.Error("setup failure must be fatal")
			}
		})
	}
}

func TestWatcher_NextSkipsNoise(t *testing.T) {
	conn := newFakeConn()
	clipboard := conn.atom("CLIPBOARD")

	w := x11.NewWatcher(zerolog.Nop(), conn, proxyWindow)
	if err := w.Register(clipboard); err != nil {
		t.Fatalf("register: %v", err)
	}

	conn.push(
		xproto.PropertyNotifyEvent{Window: proxyWindow},
		errInjected,
		xfixes.SelectionNotifyEvent{Selection: conn.atom("PRIMARY"), Owner: ownerWindow, Timestamp: 1},
		xfixes.SelectionNotifyEvent{Selection: clipboard, Owner: xproto.WindowNone, Timestamp: 2},
		conn.ownerChanged(3),
	)

	got, err := w.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}

	want := x11.OwnershipEvent{Selection: clipboard, Owner: ownerWindow, Timestamp: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_ClosedConnection(t *testing.T) {
	conn := newFakeConn()
	w := x11.NewWatcher(zerolog.Nop(), conn, proxyWindow)
	if err := w.Register(conn.atom("CLIPBOARD")); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := w.Next()
	if !errors.Is(err, x11.ErrTransport) {
		t.Fatalf("want ErrTransport, got %v", err)
	}
}
