package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Recipe durations travel as ISO-8601 duration strings ("PT1H30M"). Only
// the day/time designators appear in the dataset, so that is the grammar
// accepted here: P[nD][T[nH][nM][n[.fraction]S]], with days counted as 24
// hours.

var isoDurationRe = regexp.MustCompile(
	`^([-+]?)P(?:([0-9]+)D)?(?:T(?:([0-9]+)H)?(?:([0-9]+)M)?(?:([0-9]+)(?:\.([0-9]{1,9}))?S)?)?$`)

// ParseISODuration parses an ISO-8601 duration string. The letters are
// matched case-insensitively. At least one component must be present.
func ParseISODuration(s string) (time.Duration, error) {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("malformed ISO-8601 duration %q", s)
	}
	if m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "" {
		return 0, fmt.Errorf("empty ISO-8601 duration %q", s)
	}

	var d time.Duration
	add := func(field string, unit time.Duration) error {
		if field == "" {
			return nil
		}
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return fmt.Errorf("ISO-8601 duration %q: %w", s, err)
		}
		d += time.Duration(n) * unit
		return nil
	}
	if err := add(m[2], 24*time.Hour); err != nil {
		return 0, err
	}
	if err := add(m[3], time.Hour); err != nil {
		return 0, err
	}
	if err := add(m[4], time.Minute); err != nil {
		return 0, err
	}
	if err := add(m[5], time.Second); err != nil {
		return 0, err
	}
	if frac := m[6]; frac != "" {
		// pad to nanoseconds
		n, err := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("ISO-8601 duration %q: %w", s, err)
		}
		d += time.Duration(n)
	}
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}

// FormatISODuration renders a duration the way java.time.Duration does:
// hours (days folded in), minutes and seconds, "PT0S" for zero.
func FormatISODuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteString("PT")
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	nanos := d - seconds*time.Second

	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 || nanos > 0 || (hours == 0 && minutes == 0) {
		if nanos > 0 {
			frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
			fmt.Fprintf(&b, "%d.%sS", seconds, frac)
		} else {
			fmt.Fprintf(&b, "%dS", seconds)
		}
	}
	return b.String()
}
