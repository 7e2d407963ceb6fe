package station

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		column  string
		want    []string
		wantErr bool
	}{
		{
			name:   "lowercases identifiers",
			input:  "SITEID,NAME\nCORV,Corvallis\nP123,Somewhere\n",
			column: "SITEID",
			want:   []string{"corv", "p123"},
		},
		{
			name:   "default column",
			input:  "NAME,SITEID\nCorvallis,CoRv\n",
			column: "",
			want:   []string{"corv"},
		},
		{
			name:   "keeps order and duplicates",
			input:  "SITEID\nzzz1\naaa1\nZZZ1\n",
			column: "SITEID",
			want:   []string{"zzz1", "aaa1", "zzz1"},
		},
		{
			name:   "skips blanks and trims",
			input:  "SITEID\n  corv \n\n,\nab12\n",
			column: "SITEID",
			want:   []string{"corv", "ab12"},
		},
		{
			name:   "header with BOM and spaces",
			input:  "\ufeff SITEID , NAME\nCORV,x\n",
			column: "SITEID",
			want:   []string{"corv"},
		},
		{
			name:   "custom column",
			input:  "id,code\n1,MKEA\n",
			column: "code",
			want:   []string{"mkea"},
		},
		{
			name:    "missing column",
			input:   "NAME\nCorvallis\n",
			column:  "SITEID",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			column:  "SITEID",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(strings.NewReader(tt.input), tt.column)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, pkgerrors.ErrConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "station_ids.csv")
	require.NoError(t, os.WriteFile(path, []byte("SITEID\nCORV\nLOY2\n"), 0o644))

	ids, err := LoadFile(path, DefaultColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"corv", "loy2"}, ids)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"), DefaultColumn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrConfiguration))

	_, err = LoadFile(path, "STATION")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrConfiguration))
	assert.Contains(t, err.Error(), path)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"corv", "p123"}, Normalize([]string{"CORV", " P123 ", ""}))
	assert.Empty(t, Normalize(nil))
}
