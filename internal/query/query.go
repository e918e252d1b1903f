// Package query derives filtered and aggregated views of equipment lists.
// Every function is pure: results depend only on the arguments.
package query

import (
	"strings"

	"equipment-tracker-backend/internal/model"
)

// All matches any category or status.
const All = "all"

// Criteria selects equipment. Empty fields and All match everything.
type Criteria struct {
	Location string `form:"location" json:"location"`
	Search   string `form:"search" json:"search"`
	Category string `form:"category" json:"category"`
	Status   string `form:"status" json:"status"`
}

// Matches reports whether e satisfies every criterion.
func (c Criteria) Matches(e model.Equipment) bool {
	return c.matchesLocation(e) && MatchesSearch(e, c.Search) && c.matchesCategory(e) && c.matchesStatus(e)
}

func (c Criteria) matchesLocation(e model.Equipment) bool {
	return c.Location == "" || c.Location == All || e.Location == c.Location
}

func (c Criteria) matchesCategory(e model.Equipment) bool {
	return c.Category == "" || c.Category == All || string(e.Category) == c.Category
}

func (c Criteria) matchesStatus(e model.Equipment) bool {
	return c.Status == "" || c.Status == All || string(e.Status) == c.Status
}

// MatchesSearch reports whether term is a case-insensitive substring of the
// name, serial number or model.
func MatchesSearch(e model.Equipment, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), term) ||
		strings.Contains(strings.ToLower(e.SerialNumber), term) ||
		strings.Contains(strings.ToLower(e.Model), term)
}

// Filter returns the records matching c, preserving order.
func Filter(list []model.Equipment, c Criteria) []model.Equipment {
	out := make([]model.Equipment, 0, len(list))
	for _, e := range list {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// ForLocation returns the records at location, preserving order.
func ForLocation(list []model.Equipment, location string) []model.Equipment {
	return Filter(list, Criteria{Location: location})
}

// Counts aggregates equipment by status.
type Counts struct {
	Working        int `json:"working"`
	NeedsAttention int `json:"needsAttention"`
	OutOfService   int `json:"outOfService"`
	Total          int `json:"total"`
}

// Of returns the count for status s.
func (c Counts) Of(s model.Status) int {
	switch s {
	case model.StatusWorking:
		return c.Working
	case model.StatusNeedsAttention:
		return c.NeedsAttention
	case model.StatusOutOfService:
		return c.OutOfService
	}
	return 0
}

// NonWorking is the number of records needing attention or out of service.
func (c Counts) NonWorking() int {
	return c.NeedsAttention + c.OutOfService
}

// CountsByStatus tallies list. Total always equals len(list).
func CountsByStatus(list []model.Equipment) Counts {
	var c Counts
	for _, e := range list {
		switch e.Status {
		case model.StatusNeedsAttention:
			c.NeedsAttention++
		case model.StatusOutOfService:
			c.OutOfService++
		default:
			c.Working++
		}
	}
	c.Total = len(list)
	return c
}

// CountsByCategory tallies list per category.
func CountsByCategory(list []model.Equipment) map[model.Category]int {
	out := make(map[model.Category]int)
	for _, e := range list {
		out[e.Category]++
	}
	return out
}

// WithStatus returns the records in status s, preserving order.
func WithStatus(list []model.Equipment, s model.Status) []model.Equipment {
	return Filter(list, Criteria{Status: string(s)})
}

// Locations returns the distinct locations of list in first-seen order.
func Locations(list []model.Equipment) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range list {
		if !seen[e.Location] {
			seen[e.Location] = true
			out = append(out, e.Location)
		}
	}
	return out
}
