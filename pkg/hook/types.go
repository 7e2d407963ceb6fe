// Package hook runs operator-supplied Tengo scripts at points of a fetch run.
package hook

// HookType represents the point in a run at which a script fires.
type HookType string

// Supported hook types.
const (
	// PostFetch fires after a file has been downloaded and post-processed.
	PostFetch HookType = "post-fetch"
)

// HookContext contains information passed to hooks.
type HookContext struct {
	Station string
	Year    string
	DOY     string
	URL     string
	Path    string // final local file, after decompression and conversion
	Vars    map[string]interface{}
}
