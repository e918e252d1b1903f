package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalid is returned when input fails validation before any state is changed.
var ErrInvalid = errors.New("invalid input")

// Status is the operating condition of a piece of equipment.
type Status string

const (
	StatusWorking        Status = "working"
	StatusNeedsAttention Status = "needs-attention"
	StatusOutOfService   Status = "out-of-service"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusWorking, StatusNeedsAttention, StatusOutOfService}
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses(), s)
}

// Label returns the human readable form used in reports.
func (s Status) Label() string {
	switch s {
	case StatusWorking:
		return "Working"
	case StatusNeedsAttention:
		return "Needs Attention"
	case StatusOutOfService:
		return "Out of Service"
	}
	return string(s)
}

// Category groups equipment by training type.
type Category string

const (
	CategoryCardio      Category = "Cardio"
	CategoryStrength    Category = "Strength"
	CategoryFreeWeights Category = "Free Weights"
	CategoryAccessories Category = "Accessories"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{CategoryCardio, CategoryStrength, CategoryFreeWeights, CategoryAccessories}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories(), c)
}

// Equipment is a single tracked machine or accessory.
type Equipment struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	SerialNumber string   `json:"serialNumber"`
	Category     Category `json:"category"`
	Status       Status   `json:"status"`
	LastChecked  Date     `json:"lastChecked"`
	Location     string   `json:"location"`
	Notes        string   `json:"notes"`
}

// Draft carries the fields supplied by the add and edit forms.
// ID, Status and LastChecked are always computed by the core.
type Draft struct {
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	SerialNumber string   `json:"serialNumber"`
	Category     Category `json:"category"`
	Location     string   `json:"location"`
	Notes        string   `json:"notes"`
}

// Validate checks required fields and the category/location enumerations.
// A nil or empty locations slice accepts any non-empty location.
func (d Draft) Validate(locations []string) error {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(d.Model) == "" {
		problems = append(problems, "model is required")
	}
	if strings.TrimSpace(d.SerialNumber) == "" {
		problems = append(problems, "serial number is required")
	}
	if !d.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", d.Category))
	}
	if err := validateLocation(d.Location, locations); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Draft returns the form-editable fields of e.
func (e Equipment) Draft() Draft {
	return Draft{
		Name:         e.Name,
		Model:        e.Model,
		SerialNumber: e.SerialNumber,
		Category:     e.Category,
		Location:     e.Location,
		Notes:        e.Notes,
	}
}

// WithDraft returns a copy of e with every draft field applied.
func (e Equipment) WithDraft(d Draft) Equipment {
	e.Name = d.Name
	e.Model = d.Model
	e.SerialNumber = d.SerialNumber
	e.Category = d.Category
	e.Location = d.Location
	e.Notes = d.Notes
	return e
}

// Validate checks a complete record, including status and lastChecked.
func (e Equipment) Validate(locations []string) error {
	if err := e.Draft().Validate(locations); err != nil {
		return err
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, e.Status)
	}
	if e.LastChecked.IsZero() {
		return fmt.Errorf("%w: last checked date is required", ErrInvalid)
	}
	return nil
}

func validateLocation(location string, locations []string) error {
	if strings.TrimSpace(location) == "" {
		return errors.New("location is required")
	}
	if len(locations) > 0 && !slices.Contains(locations, location) {
		return fmt.Errorf("unknown location %q", location)
	}
	return nil
}
