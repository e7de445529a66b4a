// Package constants defines shared configuration constants and defaults.
package constants

// Output - Default rendering settings.
const (
	// DefaultFormat is the output format of the dump command.
	DefaultFormat = "json"

	// DefaultMaxDepth bounds struct and pointer nesting when serializing.
	DefaultMaxDepth = 64

	// MaxDepthLimit caps the configurable nesting depth.
	MaxDepthLimit = 4096
)

// Caching - Default cache sizes.
const (
	// DefaultCacheSize is the number of name lookups remembered per binary.
	DefaultCacheSize = 256

	// MaxCacheSize caps the configurable lookup cache.
	MaxCacheSize = 1 << 20
)

// Logging - Default logging settings.
const (
	// DefaultLogLevel keeps library chatter off the terminal unless asked for.
	DefaultLogLevel = "warn"

	// DefaultLogPretty enables colored console logs.
	DefaultLogPretty = true
)
