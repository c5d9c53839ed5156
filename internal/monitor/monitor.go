package monitor

import (
	"github.com/dustin/go-humanize"
	"github.com/labi-le/clipwatch/internal/notification"
	"github.com/labi-le/clipwatch/pkg/clipboard/eventful"
	"github.com/labi-le/clipwatch/pkg/ctxlog"
	"github.com/labi-le/clipwatch/pkg/id"
	"github.com/labi-le/clipwatch/pkg/mime"
	"github.com/rs/zerolog"
)

type Emitter interface {
	Emit(eventful.Update) error
}

type IDGenerator interface {
	Next() id.Unique
}

type Options struct {
	Logger   zerolog.Logger
	Emitter  Emitter
	Notifier notification.Notifier
	IDs      IDGenerator
	// Dedup drops a capture whose bytes equal the previous one.
	Dedup bool
}

// Monitor is the sink for clipboard updates: it numbers, filters, emits and
// announces them.
type Monitor struct {
	logger   zerolog.Logger
	emitter  Emitter
	notifier notification.Notifier
	ids      IDGenerator
	dedup    *eventful.Deduplicator
}

func New(opts Options) *Monitor {
	m := &Monitor{
		logger:   ctxlog.Component(opts.Logger, "monitor"),
		emitter:  opts.Emitter,
		notifier: opts.Notifier,
		ids:      opts.IDs,
	}
	if m.notifier == nil {
		m.notifier = notification.NullNotifier{}
	}
	if opts.Dedup {
		m.dedup = new(eventful.Deduplicator)
	}
	return m
}

// Handle is an eventful.Handler.
func (m *Monitor) Handle(u eventful.Update) {
	if m.ids != nil {
		u.ID = m.ids.Next()
	}

	if m.dedup != nil {
		if _, fresh := m.dedup.CheckHash(u.Hash); !fresh {
			m.logger.Debug().Object("update", u).Msg("skip duplicate")
			return
		}
	}

	if err := m.emitter.Emit(u); err != nil {
		m.logger.Error().Err(err).Object("update", u).Msg("failed to emit")
		return
	}
	m.logger.Debug().Object("update", u).Msg("captured")

	err := m.notifier.Notify("Copied %s (%s)", mime.AsType(u.ContentType), humanize.IBytes(uint64(len(u.Data))))
	if err != nil {
		m.logger.Warn().Err(err).Msg("notification failed")
	}
}
