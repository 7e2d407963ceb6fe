// Package station loads GNSS station identifiers from a CSV station list.
package station

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
)

// DefaultColumn is the header naming the station identifier column in NOAA CORS site lists.
const DefaultColumn = "SITEID"

const utf8BOM = "\ufeff"

// LoadFile reads station identifiers from the CSV file at path.
func LoadFile(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pkgerrors.Configurationf("station file not found: %s", path)
		}
		return nil, pkgerrors.Configurationf("open station file %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	ids, err := Load(f, column)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "station file %s", path)
	}
	return ids, nil
}

// Load reads a CSV document with a header row and returns the values of column,
// lowercased, in file order. Blank cells are skipped; duplicates are kept.
func Load(r io.Reader, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, pkgerrors.Configurationf("station list is empty")
		}
		return nil, pkgerrors.Configurationf("read station list header: %v", err)
	}

	idx := columnIndex(header, column)
	if idx < 0 {
		return nil, pkgerrors.Configurationf("specified station id column name %q not present in dataset", column)
	}

	var ids []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, pkgerrors.Configurationf("read station list: %v", err)
		}
		if idx >= len(record) {
			continue
		}
		if id := normalize(record[idx]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Normalize lowercases and trims an explicit list of identifiers, dropping blanks.
func Normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := normalize(id); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func columnIndex(header []string, column string) int {
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if strings.TrimSpace(name) == column {
			return i
		}
	}
	return -1
}
