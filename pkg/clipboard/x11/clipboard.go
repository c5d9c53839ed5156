package x11

import (
	"context"
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/labi-le/clipwatch/pkg/clipboard/eventful"
	"github.com/labi-le/clipwatch/pkg/content"
	"github.com/labi-le/clipwatch/pkg/ctxlog"
	"github.com/rs/zerolog"
)

var _ eventful.Eventful = (*Clipboard)(nil)

type Options struct {
	// Display names the X server; empty means $DISPLAY.
	Display    string
	MaxTargets uint32
}

// Clipboard watches the CLIPBOARD selection and fetches its content after
// every owner change.
type Clipboard struct {
	logger     zerolog.Logger
	watcher    *Watcher
	negotiator *Negotiator
	closer     func()
}

// New connects to the X server and registers for owner changes.
func New(logger zerolog.Logger, opts Options) (*Clipboard, error) {
	d, err := Dial(opts.Display)
	if err != nil {
		return nil, err
	}

	c, err := NewWithConn(logger, d, d.Window(), opts)
	if err != nil {
		d.Close()
		return nil, err
	}
	c.closer = d.Close

	return c, nil
}

// NewWithConn builds a Clipboard on an existing connection; win is the
// window that receives every notification.
func NewWithConn(logger zerolog.Logger, conn Conn, win xproto.Window, opts Options) (*Clipboard, error) {
	atoms := NewAtoms(conn)

	neg, err := NewNegotiator(logger, conn, atoms, win, opts.MaxTargets)
	if err != nil {
		return nil, fmt.Errorf("%w: load atoms: %w", ErrSetup, err)
	}

	w := NewWatcher(logger, conn, win)
	if err := w.Register(neg.Selection()); err != nil {
		return nil, err
	}

	return &Clipboard{
		logger:     ctxlog.Component(logger, "x11"),
		watcher:    w,
		negotiator: neg,
	}, nil
}

// Watch handles ownership changes strictly one after another. A failed
// negotiation is logged and dropped; only a lost connection ends the loop.
// Cancelling ctx closes the connection, after which Watch returns nil.
func (c *Clipboard) Watch(ctx context.Context, h eventful.Handler) error {
	if c.closer != nil {
		stop := context.AfterFunc(ctx, c.closer)
		defer stop()
	}

	for {
		ev, err := c.watcher.Next()
		if err != nil {
			return c.stopped(ctx, err)
		}

		payload, err := c.negotiator.Negotiate(ev.Timestamp)
		if err != nil {
			if Fatal(err) {
				return c.stopped(ctx, err)
			}
			c.logger.Error().
				Err(err).
				Uint32("owner", uint32(ev.Owner)).
				Strs("offered", payload.MimeTypes).
				Msg("failed to get clipboard")
			continue
		}

		h(eventful.Update{
			Data:        payload.Data,
			ContentType: payload.ContentType,
			MimeTypes:   payload.MimeTypes,
			Hash:        content.Digest(payload.Data),
		})
	}
}

// Close releases the connection if Clipboard created it.
func (c *Clipboard) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Clipboard) stopped(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
