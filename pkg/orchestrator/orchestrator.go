// Package orchestrator runs the station x day download loop.
package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/glorpus-work/corsget/internal/logger"
	"github.com/glorpus-work/corsget/pkg/convert"
	"github.com/glorpus-work/corsget/pkg/daterange"
	"github.com/glorpus-work/corsget/pkg/download"
	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
	"github.com/glorpus-work/corsget/pkg/fsutil"
	"github.com/glorpus-work/corsget/pkg/hook"
	"github.com/glorpus-work/corsget/pkg/layout"
)

// New constructs an Orchestrator. Helper for wiring; optional stages may be nil.
func New(dl Fetcher, dz Decompressor, conv Converter, hr HookRunner, builder layout.Builder, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		DL:           dl,
		Decompressor: dz,
		Converter:    conv,
		Hook:         hr,
		Builder:      builder,
		Hooks:        hooks,
	}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Plan returns every target of the run in iteration order: days outer, stations inner.
func (o *Orchestrator) Plan(stations []string, rng daterange.Range) []layout.Target {
	targets := make([]layout.Target, 0, len(stations)*rng.Len())
	for day := range rng.Days() {
		for _, st := range stations {
			targets = append(targets, o.Builder.Build(st, day))
		}
	}
	return targets
}

// Run fetches every station for every day of rng. Per-item failures are logged,
// counted and never abort the run. The returned error is non-nil only for a
// misconfigured orchestrator or a cancelled context; the summary is valid in
// both cases.
func (o *Orchestrator) Run(ctx context.Context, stations []string, rng daterange.Range, opts Options) (Summary, error) {
	var sum Summary
	if o.DL == nil {
		return sum, pkgerrors.Configurationf("download manager is not configured")
	}
	if len(stations) == 0 {
		return sum, pkgerrors.Configurationf("no stations to fetch")
	}
	sum.Planned = len(stations) * rng.Len()

	for day := range rng.Days() {
		for _, st := range stations {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			o.runOne(ctx, o.Builder.Build(st, day), opts, &sum)
		}
	}

	emit(o.Hooks, Event{Phase: PhaseDone})
	return sum, nil
}

func (o *Orchestrator) runOne(ctx context.Context, t layout.Target, opts Options, sum *Summary) {
	fields := logger.Fields{
		"station": t.Station,
		"date":    t.Date.Format(time.DateOnly),
		"doy":     t.DOY,
		"url":     t.URL,
	}

	if opts.SkipExisting {
		if existing, ok := o.existingProduct(t); ok {
			sum.Skipped++
			emit(o.Hooks, Event{Phase: PhaseSkipped, ID: t.Key(), Msg: existing})
			logger.Debug("Already downloaded, skipping", fields, logger.Fields{"path": existing})
			return
		}
	}

	u, err := url.Parse(t.URL)
	if err != nil {
		sum.TransferErrors++
		emit(o.Hooks, Event{Phase: PhaseError, ID: t.Key(), Msg: err.Error()})
		logger.Warn("Invalid archive URL", fields, logger.Fields{"error": err.Error()})
		return
	}

	emit(o.Hooks, Event{Phase: PhaseFetching, ID: t.Key(), Msg: t.URL})
	res, err := o.DL.Fetch(ctx, download.Item{ID: t.Key(), URL: u, Path: t.LocalPath}, download.Options{SkipExisting: opts.SkipExisting})

	outcome := res.Outcome
	if err != nil && (outcome == download.Success || outcome == download.Skipped) {
		outcome = download.TransferError
	}

	switch outcome {
	case download.Success:
		sum.Succeeded++
		emit(o.Hooks, Event{Phase: PhaseFetched, ID: t.Key(), Msg: t.LocalPath})
		logger.Info("Download complete", fields, logger.Fields{"path": t.LocalPath, "bytes": res.Bytes})
		o.postProcess(ctx, t, res.Path, fields, sum)
	case download.Skipped:
		sum.Skipped++
		emit(o.Hooks, Event{Phase: PhaseSkipped, ID: t.Key(), Msg: t.LocalPath})
	case download.NotFound:
		sum.NotFound++
		emit(o.Hooks, Event{Phase: PhaseNotFound, ID: t.Key(), Msg: t.URL})
		logger.Warn("File not found on archive", fields, logger.Fields{"status": res.StatusCode})
	default:
		sum.TransferErrors++
		msg := "transfer failed"
		if err != nil {
			msg = err.Error()
		}
		emit(o.Hooks, Event{Phase: PhaseError, ID: t.Key(), Msg: msg})
		logger.Warn("File download failed", fields, logger.Fields{"error": msg})
	}
}

// postProcess runs the optional decompress, convert and hook stages on a fresh
// download. A failing stage stops the chain for this item only.
func (o *Orchestrator) postProcess(ctx context.Context, t layout.Target, path string, fields logger.Fields, sum *Summary) {
	if path == "" {
		path = t.LocalPath
	}

	if o.Decompressor != nil {
		out, err := o.Decompressor.Decompress(ctx, path)
		if err != nil {
			sum.DecompressErrors++
			o.reportStageError(t, "Decompression failed", err, fields)
			return
		}
		path = out
	}

	if o.Converter != nil {
		emit(o.Hooks, Event{Phase: PhaseConverting, ID: t.Key(), Msg: path})
		out, err := o.Converter.Convert(ctx, path)
		if err != nil {
			sum.ConversionErrors++
			o.reportStageError(t, "Conversion failed", err, fields)
			return
		}
		logger.DebugfWithFields(fields, "Converted to %s", out)
		path = out
	}

	if o.Hook != nil {
		err := o.Hook.Execute(ctx, hook.PostFetch, hook.HookContext{
			Station: t.Station,
			Year:    t.Year,
			DOY:     t.DOY,
			URL:     t.URL,
			Path:    path,
		})
		if err != nil {
			sum.HookErrors++
			o.reportStageError(t, "Post-fetch hook failed", err, fields)
		}
	}
}

func (o *Orchestrator) reportStageError(t layout.Target, msg string, err error, fields logger.Fields) {
	emit(o.Hooks, Event{Phase: PhaseError, ID: t.Key(), Msg: err.Error()})
	if errors.Is(err, context.Canceled) {
		logger.Debug(msg, fields, logger.Fields{"error": err.Error()})
		return
	}
	logger.Warn(msg, fields, logger.Fields{"error": err.Error()})
}

// existingProduct looks for the downloaded file or anything the configured
// post-processing stages derive from it.
func (o *Orchestrator) existingProduct(t layout.Target) (string, bool) {
	candidates := []string{t.LocalPath}
	if o.Decompressor != nil {
		if trimmed := strings.TrimSuffix(t.LocalPath, ".gz"); trimmed != t.LocalPath {
			candidates = append(candidates, trimmed)
		}
	}
	if o.Converter != nil {
		last := candidates[len(candidates)-1]
		if converted := convert.ConvertedName(last); converted != last {
			candidates = append(candidates, converted)
		}
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if fsutil.NonEmptyFile(candidates[i]) {
			return candidates[i], true
		}
	}
	return "", false
}
