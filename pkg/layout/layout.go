// Package layout maps a station and a calendar day onto the archive URL and the
// local file path of the daily observation file.
//
// The archive stores one file per station and day:
//
//	{base}/{yyyy}/{doy}/{station}/{station}{doy}0.{yy}{ext}
//
// and the local tree mirrors the dated part of it:
//
//	{root}/{yyyy}/{doy}/{station}{doy}0.{yy}{ext}
package layout

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Defaults for the NOAA CORS archive on S3.
const (
	DefaultBaseURL   = "https://noaa-cors-pds.s3.amazonaws.com/rinex"
	DefaultExtension = "o.gz"
	DefaultRoot      = "daily"
)

// Builder computes Targets. The zero value uses the package defaults.
type Builder struct {
	BaseURL   string
	Extension string
	Root      string
}

// Target is the fully resolved location of one station/day observation file.
type Target struct {
	Station   string
	Date      time.Time
	Year      string // four digits
	DOY       string // three digits, zero padded
	YY        string // two digits, zero padded
	Filename  string
	URL       string
	LocalPath string
}

// Key identifies the target in logs and events.
func (t Target) Key() string {
	return t.Station + "/" + t.Year + "/" + t.DOY
}

// Build resolves station and date. It performs no I/O.
func (b Builder) Build(station string, date time.Time) Target {
	year := fmt.Sprintf("%04d", date.Year())
	doy := DayOfYear(date)
	yy := fmt.Sprintf("%02d", date.Year()%100)
	name := Filename(station, date, b.extension())

	return Target{
		Station:   station,
		Date:      date,
		Year:      year,
		DOY:       doy,
		YY:        yy,
		Filename:  name,
		URL:       strings.Join([]string{b.baseURL(), year, doy, station, name}, "/"),
		LocalPath: filepath.Join(b.root(), year, doy, name),
	}
}

// DayOfYear renders the ordinal day of date as exactly three digits.
func DayOfYear(date time.Time) string {
	return fmt.Sprintf("%03d", date.YearDay())
}

// Filename renders the daily observation filename {station}{doy}0.{yy}{ext}.
// The 0 is the session indicator for a full-day file.
func Filename(station string, date time.Time, ext string) string {
	return fmt.Sprintf("%s%s0.%02d%s", station, DayOfYear(date), date.Year()%100, ext)
}

func (b Builder) baseURL() string {
	if b.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(b.BaseURL, "/")
}

func (b Builder) extension() string {
	if b.Extension == "" {
		return DefaultExtension
	}
	return b.Extension
}

func (b Builder) root() string {
	if b.Root == "" {
		return DefaultRoot
	}
	return b.Root
}
