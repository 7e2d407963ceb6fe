//go:generate mockgen -destination=./mocks/orchestrator.go . Fetcher,Decompressor,Converter,HookRunner

package orchestrator

import (
	"context"

	"github.com/glorpus-work/corsget/pkg/download"
	"github.com/glorpus-work/corsget/pkg/hook"
	"github.com/glorpus-work/corsget/pkg/layout"
)

// Fetcher downloads one archive file.
type Fetcher interface {
	Fetch(ctx context.Context, item download.Item, opts download.Options) (download.Result, error)
}

// Decompressor expands a downloaded payload and returns the expanded file.
type Decompressor interface {
	Decompress(ctx context.Context, path string) (string, error)
}

// Converter turns a compressed observation file into a plain one.
type Converter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}

// HookRunner executes operator scripts.
type HookRunner interface {
	Execute(ctx context.Context, hookType hook.HookType, hc hook.HookContext) error
}

// Orchestrator drives a full station x day run. Only DL is required.
type Orchestrator struct {
	DL           Fetcher
	Decompressor Decompressor // nil: keep the payload as downloaded
	Converter    Converter    // nil: no conversion
	Hook         HookRunner   // nil: no post-fetch script
	Builder      layout.Builder
	Hooks        Hooks // Hooks for progress and event notifications
}

// Event phases.
const (
	PhaseFetching   = "fetching"
	PhaseFetched    = "fetched"
	PhaseSkipped    = "skipped"
	PhaseNotFound   = "not-found"
	PhaseError      = "error"
	PhaseConverting = "converting"
	PhaseDone       = "done"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string
	ID    string // station/year/doy
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Options control orchestrator execution.
type Options struct {
	SkipExisting bool
}

// Summary is the final tally of a run.
type Summary struct {
	Planned          int `json:"planned" yaml:"planned"`
	Succeeded        int `json:"succeeded" yaml:"succeeded"`
	Skipped          int `json:"skipped" yaml:"skipped"`
	NotFound         int `json:"not_found" yaml:"not_found"`
	TransferErrors   int `json:"transfer_errors" yaml:"transfer_errors"`
	DecompressErrors int `json:"decompress_errors" yaml:"decompress_errors"`
	ConversionErrors int `json:"conversion_errors" yaml:"conversion_errors"`
	HookErrors       int `json:"hook_errors" yaml:"hook_errors"`
}

// Processed is the number of pairs that reached a fetch outcome.
func (s Summary) Processed() int {
	return s.Succeeded + s.Skipped + s.NotFound + s.TransferErrors
}

// Errors is the number of per-item failures of any kind other than not-found.
func (s Summary) Errors() int {
	return s.TransferErrors + s.DecompressErrors + s.ConversionErrors + s.HookErrors
}
