package x11

import (
	"fmt"

	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
	"github.com/labi-le/clipwatch/pkg/ctxlog"
	"github.com/rs/zerolog"
)

const (
	xFixesClientMajor = 5
	xFixesClientMinor = 0
)

// OwnershipEvent is a single change of the selection owner.
type OwnershipEvent struct {
	Selection xproto.Atom
	Owner     xproto.Window
	Timestamp xproto.Timestamp
}

// Watcher delivers ownership changes of one selection to the proxy window.
type Watcher struct {
	logger    zerolog.Logger
	conn      Conn
	win       xproto.Window
	selection xproto.Atom
}

func NewWatcher(logger zerolog.Logger, conn Conn, win xproto.Window) *Watcher {
	return &Watcher{
		logger: ctxlog.Component(logger, "watcher"),
		conn:   conn,
		win:    win,
	}
}

// Register negotiates the XFixes version and subscribes to owner changes of
// selection. It must succeed once before Next is called.
func (w *Watcher) Register(selection xproto.Atom) error {
	if err := w.conn.QueryXFixesVersion(xFixesClientMajor, xFixesClientMinor); err != nil {
		return fmt.Errorf("%w: xfixes query version: %w", ErrSetup, err)
	}

	err := w.conn.SelectSelectionInput(w.win, selection, uint32(xfixes.SelectionEventMaskSetSelectionOwner))
	if err != nil {
		return fmt.Errorf("%w: select selection input: %w", ErrSetup, err)
	}

	w.selection = selection
	return nil
}

// Next blocks until the owner of the registered selection changes.
// There is no timeout: the process is idle while nothing is copied.
func (w *Watcher) Next() (OwnershipEvent, error) {
	for {
		ev, err := w.conn.WaitForEvent()
		if err != nil {
			w.logger.Warn().Err(err).Msg("x error while waiting for owner change")
			continue
		}
		if ev == nil {
			return OwnershipEvent{}, ErrTransport
		}

		e, ok := ev.(xfixes.SelectionNotifyEvent)
		if !ok || e.Selection != w.selection {
			w.logger.Trace().Str("event", ev.String()).Msg("skip unrelated event")
			continue
		}

		if e.Owner == xproto.WindowNone {
			w.logger.Debug().Msg("selection cleared, nothing to fetch")
			continue
		}

		return OwnershipEvent{
			Selection: e.Selection,
			Owner:     e.Owner,
			Timestamp: e.Timestamp,
		}, nil
	}
}
