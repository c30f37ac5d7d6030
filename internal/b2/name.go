package b2

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const keyTokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// UniqueKey derives a storage key from a human-supplied filename:
// <prefix?>/<base>_<epochMillis>_<6 base36 chars>.<ext>. The name splits at
// its last dot; a dotless name keeps the whole name as base and produces no
// trailing dot. Uniqueness is probabilistic: two keys collide only when
// drawn in the same millisecond with the same random token (~36^-6).
func UniqueKey(originalName, prefix string) string {
	base, ext := splitName(originalName)

	var b strings.Builder
	if prefix != "" {
		b.WriteString(strings.TrimRight(prefix, "/"))
		b.WriteByte('/')
	}
	b.WriteString(base)
	fmt.Fprintf(&b, "_%d_%s", time.Now().UnixMilli(), randomToken(6))
	if ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}

func splitName(name string) (base, ext string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func randomToken(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = keyTokenAlphabet[rand.IntN(len(keyTokenAlphabet))]
	}
	return string(buf)
}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"ico":  "image/x-icon",
}

// ContentTypeFor maps a file extension (with or without leading dot,
// case-insensitive) to a MIME type. Unknown extensions are opaque binary.
func ContentTypeFor(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return ct
	}
	return "application/octet-stream"
}
