package gateway

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const wireDateLayout = "2006-01-02"

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseDate turns an upstream date into a calendar date in c.loc.
// Date-only values and UTC midnights are calendar dates and keep their day.
// Anything unparsable becomes the zero time and is logged.
func (c *Client) parseDate(raw, kind, id string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		log.Warn().Str("kind", kind).Str("id", id).Msg("Upstream record has no date")
		return time.Time{}
	}
	if t, err := time.ParseInLocation(wireDateLayout, s, c.loc); err == nil {
		return t
	}
	for _, layout := range wireTimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if isUTCMidnight(t) {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
		}
		return t.In(c.loc)
	}
	log.Warn().Str("kind", kind).Str("id", id).Str("value", raw).Msg("Unparsable upstream date")
	return time.Time{}
}

func isUTCMidnight(t time.Time) bool {
	_, offset := t.Zone()
	return offset == 0 && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(wireDateLayout)
}

// amount is a decimal that travels as a bare JSON number
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}
