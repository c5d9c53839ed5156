// Package emitter writes one JSON object per captured clipboard change.
package emitter

import (
	"io"
	"time"

	"github.com/labi-le/clipwatch/pkg/clipboard/eventful"
	"github.com/labi-le/clipwatch/pkg/content"
	"github.com/rs/zerolog"
)

// Emitter reuses zerolog's JSON encoder: a bare logger with no level, no
// message and no timestamp hook produces exactly the fields added to it.
// Not safe for concurrent use.
type Emitter struct {
	sink *sink
	out  zerolog.Logger
	now  func() time.Time
}

func New(w io.Writer, now func() time.Time) *Emitter {
	if now == nil {
		now = time.Now
	}
	s := &sink{w: w}
	return &Emitter{
		sink: s,
		out:  zerolog.New(s),
		now:  now,
	}
}

// Emit writes {"content","content_type","mime_types","timestamp"} for u.
// timestamp is the emission time in unix seconds.
func (e *Emitter) Emit(u eventful.Update) error {
	e.sink.err = nil

	e.out.Log().
		Str("content", content.Encode(u.Data)).
		Str("content_type", u.ContentType).
		Strs("mime_types", u.MimeTypes).
		Int64("timestamp", e.now().Unix()).
		Send()

	return e.sink.err
}

// sink keeps the error zerolog would otherwise only print.
type sink struct {
	w   io.Writer
	err error
}

func (s *sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}
