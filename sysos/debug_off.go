//go:build !jydebug

package sysos

// DebugAsserts is false in release builds and true with -tags jydebug.
// No code in this module reads it: a stale Handle degrades to a
// zero value (handle.Pool.Data returns nil) in both builds.
const DebugAsserts = false
