// Package mime sorts selection target names into coarse content kinds.
// Targets are either MIME types ("image/png") or legacy X11 names ("UTF8_STRING").
package mime

import (
	"strings"
)

type Type int32

const (
	TypeUnknown Type = iota - 1

	TypeText
	TypeImage
	TypePath

	TypeAudio
	TypeVideo
	TypeBinary
)

func (t Type) IsImage() bool { return t == TypeImage }
func (t Type) IsText() bool  { return t == TypeText }
func (t Type) IsPath() bool  { return t == TypePath }

func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeImage:
		return "image"
	case TypePath:
		return "path"
	case TypeAudio:
		return "audio"
	case TypeVideo:
		return "video"
	case TypeBinary:
		return "binary"
	default:
		return "unknown"
	}
}

var known = map[string]Type{
	// legacy X11 text targets
	"utf8_string":   TypeText,
	"string":        TypeText,
	"text":          TypeText,
	"compound_text": TypeText,

	"text/uri-list":                  TypePath,
	"x-special/gnome-copied-files":   TypePath,
	"application/x-kde-cutselection": TypePath,
}

func normalize(target string) string {
	target = strings.ToLower(strings.TrimSpace(target))
	if i := strings.IndexByte(target, ';'); i >= 0 {
		target = strings.TrimSpace(target[:i])
	}
	return target
}

// AsType classifies a target name.
func AsType(target string) Type {
	target = normalize(target)

	if v, ok := known[target]; ok {
		return v
	}

	switch {
	case target == "":
		return TypeUnknown
	case strings.HasPrefix(target, "image/"):
		return TypeImage
	case strings.HasPrefix(target, "text/"):
		return TypeText
	case strings.HasPrefix(target, "video/"):
		return TypeVideo
	case strings.HasPrefix(target, "audio/"):
		return TypeAudio
	case strings.Contains(target, "/"):
		return TypeBinary
	default:
		return TypeUnknown
	}
}
