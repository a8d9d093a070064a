package shotdir

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// videoPrefix is the fixed prefix of every video artifact filename.
const videoPrefix = "ompd-"

// Date identifies one calendar day of capture. It is a plain value; every
// operation that needs "the directory being worked on" receives a Date (or a
// path derived from one) rather than reading shared mutable state.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a wall-clock time to its calendar date in local time.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight local time on the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// VideoName returns the deterministic video filename for the date,
// e.g. "ompd-2024-03-15.mp4".
func (d Date) VideoName(videoExt string) string {
	return videoPrefix + d.String() + "." + videoExt
}

// ParseVideoName recovers the date from a video filename produced by
// Date.VideoName. It returns false for anything it cannot parse.
func ParseVideoName(name, videoExt string) (Date, bool) {
	base := filepath.Base(name)
	suffix := "." + videoExt
	if !strings.HasPrefix(base, videoPrefix) || !strings.HasSuffix(base, suffix) {
		return Date{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, videoPrefix), suffix)
	t, err := time.ParseInLocation("2006-01-02", stamp, time.Local)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}

// DirForDate builds the shot directory path for a date: <root>/YYYY/MM/DD.
func DirForDate(root string, d Date) string {
	return filepath.Join(
		root,
		strconv.Itoa(d.Year),
		fmt.Sprintf("%02d", int(d.Month)),
		fmt.Sprintf("%02d", d.Day),
	)
}

// ParseDateFromDir reads the last three path components of a shot directory
// as day, month and year. Returns false if they are not a valid date.
func ParseDateFromDir(path string) (Date, bool) {
	rest, dayStr := filepath.Split(filepath.Clean(path))
	rest, monthStr := filepath.Split(filepath.Clean(rest))
	_, yearStr := filepath.Split(filepath.Clean(rest))

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return Date{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return Date{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Date{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}
