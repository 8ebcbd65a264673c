// Package format holds the display formatting shared by the renderers and the exporter.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"
	_ "time/tzdata"
)

// DateTimeLayout matches the Belgian Dutch short date and time.
const DateTimeLayout = "02/01/2006 15:04"

// DefaultZone is the zone certificates are dated in.
const DefaultZone = "Europe/Brussels"

// LoadZone returns the named location, falling back to UTC when the zone is unknown.
func LoadZone(name string) *time.Location {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateTime formats t in loc.
func DateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = LoadZone(DefaultZone)
	}
	return t.In(loc).Format(DateTimeLayout)
}

// Duration formats seconds as H:MM:SS from one hour on and as M:SS below.
func Duration(seconds int) string {
	s := max(0, seconds)
	h, m, ss := s/3600, (s%3600)/60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, ss)
	}
	return fmt.Sprintf("%d:%02d", m, ss)
}

// Stamp is the YYYYMMDD-HHmm timestamp used in filenames.
func Stamp(t time.Time) string {
	return t.Format("20060102-1504")
}

// Number prints a float the way a browser would: no trailing zeros, no exponent for
// everyday magnitudes.
func Number(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Score prints "score/total".
func Score(score, total float64) string {
	return Number(score) + "/" + Number(total)
}
