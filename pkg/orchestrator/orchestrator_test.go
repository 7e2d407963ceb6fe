package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/corsget/internal/logger"
	"github.com/glorpus-work/corsget/pkg/daterange"
	"github.com/glorpus-work/corsget/pkg/download"
	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
	"github.com/glorpus-work/corsget/pkg/hook"
	"github.com/glorpus-work/corsget/pkg/layout"
	ocmocks "github.com/glorpus-work/corsget/pkg/orchestrator/mocks"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	logger.SetTestOutput(buf)
	logger.InitLogger("info", logger.FormatText)
	t.Cleanup(logger.UnsetTestOutput)
	return buf
}

func mustRange(t *testing.T, start, end string) daterange.Range {
	t.Helper()
	rng, err := daterange.ParseRange(start, end)
	require.NoError(t, err)
	return rng
}

func archiveServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_NotFoundIsLoggedAndSkipped(t *testing.T) {
	logs := captureLogs(t)
	srv := archiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/miss/") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("observations"))
	})

	root := t.TempDir()
	orch := New(download.NewManager(5*time.Second, ""), nil, nil, nil,
		layout.Builder{BaseURL: srv.URL, Root: root}, Hooks{})

	sum, err := orch.Run(context.Background(), []string{"miss", "corv"}, mustRange(t, "2025-04-11", "2025-04-11"), Options{})
	require.NoError(t, err)

	assert.Equal(t, Summary{Planned: 2, Succeeded: 1, NotFound: 1}, sum)
	assert.NoFileExists(t, filepath.Join(root, "2025", "101", "miss1010.25o.gz"))
	data, err := os.ReadFile(filepath.Join(root, "2025", "101", "corv1010.25o.gz"))
	require.NoError(t, err)
	assert.Equal(t, "observations", string(data))

	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, "level=WARN"))
	assert.Contains(t, out, "station=miss")
	assert.Contains(t, out, "doy=101")
}

func TestRun_RerunOverwrites(t *testing.T) {
	captureLogs(t)
	var calls atomic.Int32
	srv := archiveServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, "payload-%d", calls.Add(1))
	})

	root := t.TempDir()
	orch := New(download.NewManager(5*time.Second, ""), nil, nil, nil,
		layout.Builder{BaseURL: srv.URL, Root: root}, Hooks{})
	rng := mustRange(t, "2024-12-31", "2024-12-31")

	for i := 0; i < 2; i++ {
		sum, err := orch.Run(context.Background(), []string{"p041"}, rng, Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Succeeded)
	}

	data, err := os.ReadFile(filepath.Join(root, "2024", "366", "p0413660.24o.gz"))
	require.NoError(t, err)
	assert.Equal(t, "payload-2", string(data))
}

func TestRun_IterationOrder(t *testing.T) {
	captureLogs(t)
	ctrl := gomock.NewController(t)
	dl := ocmocks.NewMockFetcher(ctrl)

	var got []string
	dl.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, item download.Item, _ download.Options) (download.Result, error) {
			got = append(got, item.ID)
			return download.Result{Outcome: download.Success, Path: item.Path}, nil
		},
	).Times(4)

	orch := &Orchestrator{DL: dl, Builder: layout.Builder{Root: t.TempDir()}}
	sum, err := orch.Run(context.Background(), []string{"aaaa", "bbbb"}, mustRange(t, "2025-01-01", "2025-01-02"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"aaaa/2025/001", "bbbb/2025/001", "aaaa/2025/002", "bbbb/2025/002"}, got)
	assert.Equal(t, 4, sum.Planned)
	assert.Equal(t, 4, sum.Processed())
}

func TestRun_PostProcessingChain(t *testing.T) {
	captureLogs(t)
	ctrl := gomock.NewController(t)
	dl := ocmocks.NewMockFetcher(ctrl)
	dz := ocmocks.NewMockDecompressor(ctrl)
	conv := ocmocks.NewMockConverter(ctrl)
	hr := ocmocks.NewMockHookRunner(ctrl)

	dl.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, item download.Item, _ download.Options) (download.Result, error) {
			return download.Result{Outcome: download.Success, Path: item.Path}, nil
		},
	).Times(2)
	dz.EXPECT().Decompress(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, path string) (string, error) {
			return strings.TrimSuffix(path, ".gz"), nil
		},
	).Times(2)
	gomock.InOrder(
		conv.EXPECT().Convert(gomock.Any(), gomock.Any()).Return("", fmt.Errorf("crx2rnx exited 1: %w", pkgerrors.ErrConversion)),
		conv.EXPECT().Convert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, path string) (string, error) {
				return path + ".rnx", nil
			},
		),
	)
	hr.EXPECT().Execute(gomock.Any(), hook.PostFetch, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ hook.HookType, hc hook.HookContext) error {
			assert.Equal(t, "good", hc.Station)
			assert.Equal(t, "2025", hc.Year)
			assert.Equal(t, "101", hc.DOY)
			assert.True(t, strings.HasSuffix(hc.Path, "good1010.25d.rnx"), hc.Path)
			return nil
		},
	).Times(1)

	orch := New(dl, dz, conv, hr, layout.Builder{Extension: "d.gz", Root: t.TempDir()}, Hooks{})
	sum, err := orch.Run(context.Background(), []string{"bad0", "good"}, mustRange(t, "2025-04-11", "2025-04-11"), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.ConversionErrors)
	assert.Equal(t, 0, sum.HookErrors)
}

func TestRun_FailuresDoNotAbort(t *testing.T) {
	logs := captureLogs(t)
	ctrl := gomock.NewController(t)
	dl := ocmocks.NewMockFetcher(ctrl)
	hr := ocmocks.NewMockHookRunner(ctrl)

	gomock.InOrder(
		dl.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(download.Result{}, fmt.Errorf("connection reset: %w", pkgerrors.ErrTransfer)),
		dl.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(download.Result{Outcome: download.TransferError, StatusCode: 500}, fmt.Errorf("status 500: %w", pkgerrors.ErrTransfer)),
		dl.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(download.Result{Outcome: download.Success}, nil),
	)
	hr.EXPECT().Execute(gomock.Any(), hook.PostFetch, gomock.Any()).
		Return(fmt.Errorf("script failed: %w", pkgerrors.ErrHook))

	orch := &Orchestrator{DL: dl, Hook: hr, Builder: layout.Builder{Root: t.TempDir()}}
	sum, err := orch.Run(context.Background(), []string{"a001", "a002", "a003"}, mustRange(t, "2025-02-01", "2025-02-01"), Options{})
	require.NoError(t, err)

	assert.Equal(t, Summary{Planned: 3, Succeeded: 1, TransferErrors: 2, HookErrors: 1}, sum)
	assert.Equal(t, 3, sum.Errors())
	assert.Equal(t, 3, strings.Count(logs.String(), "level=WARN"))
}

func TestRun_SkipExistingChecksDerivedProducts(t *testing.T) {
	captureLogs(t)
	ctrl := gomock.NewController(t)
	dl := ocmocks.NewMockFetcher(ctrl)
	dz := ocmocks.NewMockDecompressor(ctrl)
	conv := ocmocks.NewMockConverter(ctrl)

	root := t.TempDir()
	builder := layout.Builder{Extension: "d.gz", Root: root}
	target := builder.Build("corv", time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC))
	converted := strings.TrimSuffix(target.LocalPath, "d.gz") + "o"
	require.NoError(t, os.MkdirAll(filepath.Dir(converted), 0o755))
	require.NoError(t, os.WriteFile(converted, []byte("rinex"), 0o644))

	var events []Event
	orch := New(dl, dz, conv, nil, builder, Hooks{OnEvent: func(e Event) { events = append(events, e) }})
	sum, err := orch.Run(context.Background(), []string{"corv"}, mustRange(t, "2025-04-11", "2025-04-11"), Options{SkipExisting: true})
	require.NoError(t, err)

	assert.Equal(t, Summary{Planned: 1, Skipped: 1}, sum)
	require.Len(t, events, 2)
	assert.Equal(t, PhaseSkipped, events[0].Phase)
	assert.Equal(t, converted, events[0].Msg)
	assert.Equal(t, PhaseDone, events[1].Phase)
}

func TestRun_SkipExistingPassedToFetcher(t *testing.T) {
	captureLogs(t)
	ctrl := gomock.NewController(t)
	dl := ocmocks.NewMockFetcher(ctrl)
	dl.EXPECT().Fetch(gomock.Any(), gomock.Any(), download.Options{SkipExisting: true}).
		Return(download.Result{Outcome: download.Skipped}, nil)

	orch := &Orchestrator{DL: dl, Builder: layout.Builder{Root: t.TempDir()}}
	sum, err := orch.Run(context.Background(), []string{"corv"}, mustRange(t, "2025-04-11", "2025-04-11"), Options{SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
}

func TestRun_Cancelled(t *testing.T) {
	captureLogs(t)
	ctrl := gomock.NewController(t)
	dl := ocmocks.NewMockFetcher(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dl.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, item download.Item, _ download.Options) (download.Result, error) {
			cancel()
			return download.Result{Outcome: download.Success, Path: item.Path}, nil
		},
	).Times(1)

	orch := &Orchestrator{DL: dl, Builder: layout.Builder{Root: t.TempDir()}}
	sum, err := orch.Run(ctx, []string{"a001", "a002"}, mustRange(t, "2025-01-01", "2025-01-03"), Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 6, sum.Planned)
	assert.Equal(t, 1, sum.Succeeded)
}

func TestRun_Misconfigured(t *testing.T) {
	rng := mustRange(t, "2025-01-01", "2025-01-01")

	_, err := (&Orchestrator{}).Run(context.Background(), []string{"corv"}, rng, Options{})
	assert.True(t, errors.Is(err, pkgerrors.ErrConfiguration))

	ctrl := gomock.NewController(t)
	orch := &Orchestrator{DL: ocmocks.NewMockFetcher(ctrl)}
	_, err = orch.Run(context.Background(), nil, rng, Options{})
	assert.True(t, errors.Is(err, pkgerrors.ErrConfiguration))
}

func TestPlan(t *testing.T) {
	orch := &Orchestrator{Builder: layout.Builder{Root: "daily"}}
	targets := orch.Plan([]string{"corv", "p041"}, mustRange(t, "2025-12-31", "2026-01-01"))

	require.Len(t, targets, 4)
	assert.Equal(t, "corv/2025/365", targets[0].Key())
	assert.Equal(t, "p041/2025/365", targets[1].Key())
	assert.Equal(t, "corv/2026/001", targets[2].Key())
	assert.Equal(t, filepath.Join("daily", "2026", "001", "p0410010.26o.gz"), targets[3].LocalPath)
}
