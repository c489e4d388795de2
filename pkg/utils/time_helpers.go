package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates such as buy_date.
const DateLayout = "2006-01-02"

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not in %s format: %w", s, DateLayout, err)
	}
	return t, nil
}

// FormatTimestamp renders created_at style values; nil gives "".
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
