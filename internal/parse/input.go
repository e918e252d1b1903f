package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"equipment-tracker-backend/internal/model"
)

var (
	separatorRe = regexp.MustCompile(`[\s_\-]+`)
	slashDateRe = regexp.MustCompile(`^(\d{4})[/.](\d{1,2})[/.](\d{1,2})$`)
)

// fold lowercases s and collapses spaces, underscores and dashes into one dash.
func fold(s string) string {
	return separatorRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}

// Status normalises free-form status input such as "Needs Attention",
// "needs_attention" or "OUT OF SERVICE" into a model.Status.
func Status(raw string) (model.Status, error) {
	s := fold(raw)
	for _, st := range model.Statuses() {
		if s == string(st) || s == fold(st.Label()) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", model.ErrInvalid, raw)
}

// Category matches raw against the fixed categories, ignoring case and separators.
func Category(raw string) (model.Category, error) {
	s := fold(raw)
	for _, c := range model.Categories() {
		if s == fold(string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", model.ErrInvalid, raw)
}

// Date accepts YYYY-MM-DD, YYYY/MM/DD and YYYY.MM.DD, with or without zero padding.
func Date(raw string) (model.Date, error) {
	s := strings.TrimSpace(raw)
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		s = m[1] + "-" + m[2] + "-" + m[3]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return model.Date{}, fmt.Errorf("%w: unable to parse date %q", model.ErrInvalid, raw)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return model.Date{}, fmt.Errorf("%w: unable to parse date %q", model.ErrInvalid, raw)
		}
		nums[i] = n
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC)
	// time.Date normalises out-of-range values; reject them instead.
	if t.Year() != nums[0] || int(t.Month()) != nums[1] || t.Day() != nums[2] {
		return model.Date{}, fmt.Errorf("%w: date out of range %q", model.ErrInvalid, raw)
	}
	return model.DateOf(t), nil
}

// ID parses an equipment id from a path segment.
func ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid equipment id %q", model.ErrInvalid, raw)
	}
	return id, nil
}
