package eventful

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/labi-le/clipwatch/pkg/mime"
	"github.com/rs/zerolog"
)

type Eventful interface {
	// Watch reports every clipboard change to h, one at a time, until a
	// fatal error occurs or ctx is done. h runs on the watching goroutine.
	Watch(ctx context.Context, h Handler) error
}

type Handler func(Update)

type Update struct {
	ID          int64
	Data        []byte
	ContentType string
	MimeTypes   []string
	Hash        uint64
}

func (u Update) MarshalZerologObject(e *zerolog.Event) {
	if u.ID != 0 {
		e.Int64("id", u.ID)
	}
	e.Int("length", len(u.Data))
	e.Str("size", humanize.IBytes(uint64(len(u.Data))))
	e.Uint64("hash", u.Hash)
	e.Str("content_type", u.ContentType)
	e.Stringer("kind", mime.AsType(u.ContentType))
	e.Int("offered", len(u.MimeTypes))
}
