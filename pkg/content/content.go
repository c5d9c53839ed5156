// Package content turns raw selection bytes into text that survives any
// line-oriented transport.
package content

import (
	"encoding/base64"

	"github.com/cespare/xxhash"
)

// Encode returns the padded standard base64 form of data. It never fails.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode.
func Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// Digest identifies a payload without keeping it around.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}
