package deadline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Bucket is the urgency class of a filing deadline.
type Bucket string

const (
	BucketCritical Bucket = "critical" // due within 7 days or already overdue
	BucketWarning  Bucket = "warning"  // due within 8..30 days
	BucketSafe     Bucket = "safe"     // more than 30 days away
)

// ParseLocalDate parses "YYYY-MM-DD" as a local calendar date.
// It splits on "-" and builds the date from components instead of using
// time.Parse with a UTC location, so the displayed day never shifts with
// the local timezone. Returns ok=false for empty or malformed input.
func ParseLocalDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// DaysRemaining returns the number of whole days from today until the due
// date, negative if overdue. 0 for empty or unparseable input.
func DaysRemaining(s string) int {
	return DaysRemainingAt(s, time.Now())
}

// DaysRemainingAt is DaysRemaining evaluated against the given clock.
func DaysRemainingAt(s string, now time.Time) int {
	due, ok := ParseLocalDate(s)
	if !ok {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	// ceil, чтобы частичный день (переход на летнее время) не съедал сутки
	return int(math.Ceil(due.Sub(today).Hours() / 24))
}

// BucketFor maps a days-remaining count to its urgency bucket.
// Overdue (negative) counts as critical.
func BucketFor(days int) Bucket {
	switch {
	case days <= 7:
		return BucketCritical
	case days <= 30:
		return BucketWarning
	default:
		return BucketSafe
	}
}

// FormatDisplay renders "YYYY-MM-DD" as "DD/MM/YYYY". "N/A" for empty input.
func FormatDisplay(s string) string {
	if s == "" {
		return "N/A"
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	return fmt.Sprintf("%s/%s/%s", parts[2], parts[1], parts[0])
}
