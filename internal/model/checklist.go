package model

import "time"

// ChecklistItem is one maintenance task for a location.
type ChecklistItem struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// MaintenanceRecord is the persisted checklist state of a single location.
// LastUpdated is nil for a record that has never been saved.
type MaintenanceRecord struct {
	Location       string          `json:"location"`
	ChecklistItems []ChecklistItem `json:"checklistItems"`
	Notes          string          `json:"notes"`
	LastUpdated    *time.Time      `json:"lastUpdated,omitempty"`
}

// DefaultChecklistItems returns the fixed housekeeping tasks, none completed.
func DefaultChecklistItems() []ChecklistItem {
	return []ChecklistItem{
		{ID: "vacuumAirVent", Label: "Vacuum Air Vent"},
		{ID: "mopFloor", Label: "Mop Floor"},
		{ID: "bathroom", Label: "Bathroom"},
		{ID: "paintingBordersFloorPanels", Label: "Painting Borders and Floor Panels"},
		{ID: "vacuumFitnessEquipment", Label: "Vacuum Fitness Equipment"},
	}
}
