package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/corsget/pkg/layout"
	"github.com/glorpus-work/corsget/pkg/orchestrator"
)

// planEntry is the serialized form of one planned file.
type planEntry struct {
	Station string `json:"station" yaml:"station"`
	Date    string `json:"date" yaml:"date"`
	DOY     string `json:"doy" yaml:"doy"`
	URL     string `json:"url" yaml:"url"`
	Path    string `json:"path" yaml:"path"`
}

func printSummary(w io.Writer, sum orchestrator.Summary, format string) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, sum)
	case OutputYAML:
		return writeYAML(w, sum)
	}

	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	rows := []struct {
		label string
		value int
	}{
		{"planned", sum.Planned},
		{"succeeded", sum.Succeeded},
		{"skipped", sum.Skipped},
		{"not found", sum.NotFound},
		{"transfer errors", sum.TransferErrors},
		{"decompress errors", sum.DecompressErrors},
		{"conversion errors", sum.ConversionErrors},
		{"hook errors", sum.HookErrors},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", r.label, r.value)
	}
	return tw.Flush()
}

func printPlan(w io.Writer, targets []layout.Target, format string) error {
	entries := make([]planEntry, len(targets))
	for i, t := range targets {
		entries[i] = planEntry{
			Station: t.Station,
			Date:    t.Date.Format(time.DateOnly),
			DOY:     t.DOY,
			URL:     t.URL,
			Path:    t.LocalPath,
		}
	}

	switch format {
	case OutputJSON:
		return writeJSON(w, entries)
	case OutputYAML:
		return writeYAML(w, entries)
	}

	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STATION\tDATE\tDOY\tURL\tPATH")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Station, e.Date, e.DOY, e.URL, e.Path)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(TabWidth)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
