package metadata

import "github.com/rs/zerolog"

// Set at build time via -ldflags "-X github.com/labi-le/clipwatch/internal/metadata.Version=...".
var (
	Version    = "freshest"
	CommitHash = "n/a"
	BuildTime  = "n/a"
)

type Build struct{}

func (Build) MarshalZerologObject(e *zerolog.Event) {
	e.Str("v", Version).
		Str("commit_hash", CommitHash).
		Str("build_time", BuildTime)
}
