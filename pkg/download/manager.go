// Package download fetches daily observation files from the remote archive.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/corsget/pkg/auth"
	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
	"github.com/glorpus-work/corsget/pkg/fsutil"
)

// DefaultNotFoundStatuses are the archive responses treated as "file absent".
// The NOAA CORS bucket answers 404 NoSuchKey for missing objects.
var DefaultNotFoundStatuses = []int{http.StatusNotFound, http.StatusGone}

// TempPattern names in-flight downloads next to their destination.
const TempPattern = "dl-*.tmp"

// ManagerImpl is a sequential HTTP download manager. It never retries; the
// caller decides what to do with a failed item.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
	notFound  map[int]bool
	auth      auth.Authenticator
}

// NewManager creates a new download manager with the given per-request timeout
// and user agent. notFoundStatuses defaults to DefaultNotFoundStatuses.
func NewManager(timeout time.Duration, userAgent string, notFoundStatuses ...int) *ManagerImpl {
	if userAgent == "" {
		userAgent = "corsget/1.0"
	}
	if len(notFoundStatuses) == 0 {
		notFoundStatuses = DefaultNotFoundStatuses
	}
	nf := make(map[int]bool, len(notFoundStatuses))
	for _, code := range notFoundStatuses {
		nf[code] = true
	}
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		notFound:  nf,
	}
}

// WithAuth attaches archive credentials to every request. A nil authenticator
// leaves requests anonymous.
func (m *ManagerImpl) WithAuth(a auth.Authenticator) *ManagerImpl {
	m.auth = a
	return m
}

// Fetch downloads a single item. The destination is replaced atomically so an
// interrupted transfer never leaves a truncated file at item.Path.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (Result, error) {
	res := Result{Outcome: TransferError, Path: item.Path}
	if item.URL == nil {
		return res, fmt.Errorf("item %s has nil URL: %w", item.ID, pkgerrors.ErrTransfer)
	}
	if item.Path == "" {
		return res, fmt.Errorf("item %s has no destination: %w", item.ID, pkgerrors.ErrInvalidPath)
	}

	if opts.SkipExisting && fsutil.NonEmptyFile(item.Path) {
		res.Outcome = Skipped
		return res, nil
	}

	resp, err := m.doRequest(ctx, item)
	if err != nil {
		return res, err
	}
	defer func() { _ = resp.Body.Close() }()
	res.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode == http.StatusOK:
	case m.notFound[resp.StatusCode]:
		res.Outcome = NotFound
		return res, fmt.Errorf("%s: status %d: %w", item.URL, resp.StatusCode, pkgerrors.ErrNotFound)
	default:
		return res, fmt.Errorf("%s: unexpected status code: %d: %w", item.URL, resp.StatusCode, pkgerrors.ErrTransfer)
	}

	tmpPath, n, err := writeBodyToTemp(resp.Body, item.Path)
	if err != nil {
		return res, err
	}
	if err := finalizeFile(tmpPath, item.Path); err != nil {
		_ = os.Remove(tmpPath)
		return res, err
	}

	res.Outcome = Success
	res.Bytes = n
	return res, nil
}

func (m *ManagerImpl) doRequest(ctx context.Context, item Item) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v: %w", err, pkgerrors.ErrTransfer)
	}
	req.Header.Set("User-Agent", m.userAgent)
	if m.auth != nil {
		if err := m.auth.Apply(req); err != nil {
			return nil, fmt.Errorf("failed to apply %s credentials: %v: %w", m.auth.Type(), err, pkgerrors.ErrTransfer)
		}
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %v: %w", err, pkgerrors.ErrTransfer)
	}
	return resp, nil
}

func writeBodyToTemp(body io.Reader, absPath string) (string, int64, error) {
	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return "", 0, fmt.Errorf("could not create download dir: %v: %w", err, pkgerrors.ErrTransfer)
	}
	tmp, err := os.CreateTemp(filepath.Dir(absPath), TempPattern)
	if err != nil {
		return "", 0, fmt.Errorf("could not create temp file: %v: %w", err, pkgerrors.ErrTransfer)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("could not write file: %v: %w", err, pkgerrors.ErrTransfer)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("could not sync file: %v: %w", err, pkgerrors.ErrTransfer)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("could not close file: %v: %w", err, pkgerrors.ErrTransfer)
	}
	return tmpPath, n, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return fmt.Errorf("could not finalize file: %v: %w", err, pkgerrors.ErrTransfer)
	}
	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("could not set permissions: %v: %w", err, pkgerrors.ErrTransfer)
	}
	return nil
}
