package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugKey struct{}

// EnableDebugMode returns a context under which the C-prefixed log methods emit debug entries
// regardless of the logger level. The tag is attached to those entries; an empty tag is replaced
// with a random one.
func EnableDebugMode(ctx context.Context, tag string) context.Context {
	if tag == "" {
		tag = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugKey{}, tag)
}

// IsDebugMode reports whether ctx came from EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return DebugTag(ctx) != ""
}

// DebugTag returns the tag given to EnableDebugMode, or "".
func DebugTag(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tag, _ := ctx.Value(debugKey{}).(string)
	return tag
}
