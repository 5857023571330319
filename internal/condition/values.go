package condition

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseValue interprets a terminal's literal by its type tag. The clock is
// injected so relative tags are deterministic under test.
//
// Recognized forms:
//
//	true / false            boolean
//	month_ago               now - 30 days
//	days_ago.N              today - N days
//	timedelta.N             N-day duration
//	datetime.Y-M-D H:M      timestamp
//	integer or decimal      number
//	anything else           string
func ParseValue(literal string, now time.Time) interface{} {
	switch literal {
	case "true":
		return true
	case "false":
		return false
	case "month_ago":
		return now.AddDate(0, 0, -30)
	}

	if n, ok := strings.CutPrefix(literal, "days_ago."); ok {
		if days, err := strconv.Atoi(n); err == nil {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			return today.AddDate(0, 0, -days)
		}
	}
	if n, ok := strings.CutPrefix(literal, "timedelta."); ok {
		if days, err := strconv.Atoi(n); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	if ts, ok := strings.CutPrefix(literal, "datetime."); ok {
		if t, err := time.Parse("2006-01-02 15:04", ts); err == nil {
			return t
		}
	}

	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return i
	}
	if d, err := decimal.NewFromString(literal); err == nil {
		return d
	}

	return literal
}
