// Package testutil provides a local stand-in for the remote observation
// archive and helpers to lay out run inputs on disk.
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mholt/archives"

	"github.com/glorpus-work/corsget/pkg/layout"
)

// ArchiveServer serves a directory laid out like the NOAA CORS bucket.
// Objects that were never added answer 404.
type ArchiveServer struct {
	*httptest.Server
	Root     string
	requests atomic.Int32
}

// NewArchiveServer starts an empty archive that is closed with the test.
func NewArchiveServer(t *testing.T) *ArchiveServer {
	t.Helper()
	s := &ArchiveServer{Root: t.TempDir()}
	files := http.FileServer(http.Dir(s.Root))
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		files.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// AddObservation stores body where the archive keeps station's file for date
// and returns the object URL.
func (s *ArchiveServer) AddObservation(t *testing.T, station string, date time.Time, ext string, body []byte) string {
	t.Helper()
	target := layout.Builder{BaseURL: s.URL, Extension: ext}.Build(station, date)
	rel := strings.TrimPrefix(target.URL, s.URL+"/")
	path := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create archive dir: %v", err)
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("Failed to write archive object: %v", err)
	}
	return target.URL
}

// Requests returns the number of requests served so far.
func (s *ArchiveServer) Requests() int {
	return int(s.requests.Load())
}

// Gzip compresses data the way the archive stores daily files.
func Gzip(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := archives.Gz{}.OpenWriter(&buf)
	if err != nil {
		t.Fatalf("Failed to open gzip writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// WriteStationFile writes a station CSV with a single id column and returns its path.
func WriteStationFile(t *testing.T, column string, ids ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(column + ",NAME\n")
	for _, id := range ids {
		b.WriteString(id + ",station " + id + "\n")
	}
	path := filepath.Join(t.TempDir(), "stations.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("Failed to write station file: %v", err)
	}
	return path
}

// SetupTestConfig writes a config file pointing at baseURL, followed by any
// extra YAML lines, and returns its path.
func SetupTestConfig(t *testing.T, baseURL string, extra ...string) string {
	t.Helper()
	lines := append([]string{
		`version: "1"`,
		"archive:",
		"  base_url: " + baseURL,
	}, extra...)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}
