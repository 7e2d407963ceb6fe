package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript installs a shell script standing in for CRX2RNX.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("converter stubs are shell scripts")
	}
	path := filepath.Join(dir, "CRX2RNX")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	in := filepath.Join(dir, "daily", "2025", "101", "corv1010.25d")
	require.NoError(t, os.MkdirAll(filepath.Dir(in), 0o755))
	require.NoError(t, os.WriteFile(in, []byte("1.0                 COMPACT RINEX FORMAT\n"), 0o644))
	return in
}

func TestExecConvert(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		keepInput bool
		wantErr   bool
		wantOut   string
	}{
		{
			name:    "writes observation file alongside",
			script:  `f="$1"; cp "$f" "${f%d}o"`,
			wantOut: "corv1010.25o",
		},
		{
			name:      "keeps intermediate when asked",
			script:    `f="$1"; cp "$f" "${f%d}o"`,
			keepInput: true,
			wantOut:   "corv1010.25o",
		},
		{
			name:    "non-zero exit",
			script:  `echo "bad header" >&2; exit 2`,
			wantErr: true,
		},
		{
			name:    "exit zero without output",
			script:  `exit 0`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			exe := writeScript(t, dir, tt.script)
			in := writeInput(t, dir)

			out, err := NewExec(exe, nil, tt.keepInput).Convert(context.Background(), in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, pkgerrors.ErrConversion))
				assert.FileExists(t, in)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(filepath.Dir(in), tt.wantOut), out)
			assert.FileExists(t, out)
			if tt.keepInput {
				assert.FileExists(t, in)
			} else {
				assert.NoFileExists(t, in)
			}
		})
	}
}

func TestExecConvert_ErrorIncludesOutput(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, `echo "not a CRINEX file" >&2; exit 1`)
	in := writeInput(t, dir)

	_, err := NewExec(exe, nil, false).Convert(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a CRINEX file")
}

func TestExecConvert_PassesArgs(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, `[ "$1" = "-f" ] || exit 3; cp "$2" "${2%d}o"`)
	in := writeInput(t, dir)

	out, err := NewExec(exe, []string{"-f"}, false).Convert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, ConvertedName(in), out)
}

func TestExecConvert_MissingExecutable(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	_, err := NewExec(filepath.Join(dir, "no-such-converter"), nil, false).Convert(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrConversion))

	_, err = NewExec("", nil, false).Convert(context.Background(), in)
	assert.True(t, errors.Is(err, pkgerrors.ErrConversion))
}

func TestExecConvert_MissingInput(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, `exit 0`)

	_, err := NewExec(exe, nil, false).Convert(context.Background(), filepath.Join(dir, "missing.25d"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrConversion))
}

func TestExecConvert_CustomOutputName(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, `cp "$1" "$1.rnx"`)
	in := writeInput(t, dir)

	conv := NewExec(exe, nil, true)
	conv.OutputName = func(p string) string { return p + ".rnx" }

	out, err := conv.Convert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in+".rnx", out)
}

func TestNop(t *testing.T) {
	out, err := Nop{}.Convert(context.Background(), "daily/2025/101/corv1010.25o")
	require.NoError(t, err)
	assert.Equal(t, "daily/2025/101/corv1010.25o", out)
}

func TestConvertedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{filepath.Join("daily", "2025", "101", "corv1010.25d"), filepath.Join("daily", "2025", "101", "corv1010.25o")},
		{"CORV1010.25D", "CORV1010.25O"},
		{"CORV00USA_R_20251010000_01D_30S_MO.crx", "CORV00USA_R_20251010000_01D_30S_MO.rnx"},
		{"CORV00USA_R_20251010000_01D_30S_MO.CRX", "CORV00USA_R_20251010000_01D_30S_MO.RNX"},
		{"corv1010.25o", "corv1010.25o"},
		{"corv1010.25d.gz", "corv1010.25d.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertedName(tt.in))
		})
	}
}
