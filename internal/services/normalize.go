package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

var digitsRe = regexp.MustCompile(`\d+`)

// CoerceJobID accepts the identifier shapes the LLM actually produces: an int,
// a numeric string like "716", or a decorated one like "job_716". Anything
// without digits is rejected.
func CoerceJobID(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		m := digitsRe.FindString(strings.TrimSpace(v))
		if m == "" {
			return 0, false
		}
		id, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// ClampScore maps whatever scale the model used onto [0, 1]. Scores above 1
// are treated as percentages.
func ClampScore(score float64) float64 {
	if score > 1.0 {
		score = score / 100.0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// CoerceStringList turns a decoded JSON value into a string slice. Anything
// that is not a list becomes an empty list, never a parse error.
func CoerceStringList(value interface{}) []string {
	list, ok := value.([]interface{})
	if !ok {
		if typed, ok := value.([]string); ok {
			return typed
		}
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeDate canonicalizes resume dates to YYYY-MM-DD. Empty input and the
// "present" sentinel both mean an ongoing entry; unparseable input becomes ""
// so it never poisons the stored profile.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "present") {
		return "Present"
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return ""
	}
	return parsed.Format("2006-01-02")
}

// NormalizeDeadline canonicalizes posting deadlines, which arrive day-first
// (dd/mm/yyyy) from the scraper. Unparseable or placeholder values become "".
func NormalizeDeadline(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	switch strings.ToLower(raw) {
	case "n/a", "none", "null":
		return ""
	}
	parsed, err := dateparse.ParseAny(raw, dateparse.PreferMonthFirst(false))
	if err != nil {
		return ""
	}
	return parsed.Format("2006-01-02")
}
