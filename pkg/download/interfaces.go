package download

import (
	"context"
	"net/url"
)

// Manager downloads one archive file per call.
type Manager interface {
	// Fetch issues a single GET for item.URL and writes the payload to item.Path.
	// The returned error is nil for Success and Skipped outcomes; otherwise it
	// wraps ErrNotFound or ErrTransfer and Result.Outcome says which.
	Fetch(ctx context.Context, item Item, opts Options) (Result, error)
}

// Item represents one remote file to download.
type Item struct {
	ID   string   // stable identifier for logs (station/year/doy)
	URL  *url.URL // source URL
	Path string   // destination file path; parent directories are created
}

// Options control a single fetch.
type Options struct {
	SkipExisting bool // leave a non-empty destination untouched and skip the request
}

// Outcome classifies how a fetch ended.
type Outcome int

// Fetch outcomes.
const (
	Success Outcome = iota
	NotFound
	TransferError
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NotFound:
		return "not-found"
	case TransferError:
		return "transfer-error"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result describes a finished fetch.
type Result struct {
	Outcome    Outcome
	Path       string
	Bytes      int64
	StatusCode int
}
