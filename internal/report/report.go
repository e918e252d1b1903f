// Package report builds the plain-text equipment and maintenance report.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/query"
)

const (
	DefaultTitle         = "FITNESS EQUIPMENT WEEKLY REPORT"
	DefaultSubjectPrefix = "Weekly Equipment Report"

	actionNeedsAttention = "Schedule maintenance inspection"
	actionOutOfService   = "Immediate repair or replacement required"

	rule = "=================================================="
)

// Label is the tri-state checklist progress.
type Label string

const (
	LabelCompleted  Label = "COMPLETED"
	LabelInProgress Label = "IN PROGRESS"
	LabelNotStarted Label = "NOT STARTED"
)

// Progress summarises a checklist.
type Progress struct {
	Completed int   `json:"completed"`
	Total     int   `json:"total"`
	Label     Label `json:"label"`
}

// Completion computes the progress of items.
func Completion(items []model.ChecklistItem) Progress {
	p := Progress{Total: len(items)}
	for _, it := range items {
		if it.Completed {
			p.Completed++
		}
	}
	switch {
	case p.Total > 0 && p.Completed == p.Total:
		p.Label = LabelCompleted
	case p.Completed == 0:
		p.Label = LabelNotStarted
	default:
		p.Label = LabelInProgress
	}
	return p
}

// Pending is the number of incomplete items.
func (p Progress) Pending() int {
	return p.Total - p.Completed
}

// ChecklistSource provides the maintenance record for a location.
type ChecklistSource interface {
	GetOrDefault(ctx context.Context, location string) model.MaintenanceRecord
}

// Message is the outbound report handed to the mail composer.
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generator renders reports. Output is deterministic for fixed inputs and Now.
type Generator struct {
	Checklists    ChecklistSource
	Now           func() time.Time
	Title         string
	SubjectPrefix string
}

// NewGenerator returns a Generator with the default wording.
func NewGenerator(checklists ChecklistSource, now func() time.Time) *Generator {
	return &Generator{
		Checklists:    checklists,
		Now:           now,
		Title:         DefaultTitle,
		SubjectPrefix: DefaultSubjectPrefix,
	}
}

// Compose returns the subject line and report body.
func (g *Generator) Compose(ctx context.Context, equipment []model.Equipment, locations []string) Message {
	return Message{
		Subject: g.Subject(),
		Body:    g.Generate(ctx, equipment, locations),
	}
}

// Subject returns the subject line for a report generated now.
func (g *Generator) Subject() string {
	return fmt.Sprintf("%s - %s", g.subjectPrefix(), g.now().Format(model.DateLayout))
}

// locationSummary is the per-location state feeding the facility summary.
type locationSummary struct {
	name     string
	counts   query.Counts
	progress Progress
}

// Generate renders the report for locations, in the given order. A location
// listed more than once is reported once, at its first position.
func (g *Generator) Generate(ctx context.Context, equipment []model.Equipment, locations []string) string {
	locations = uniqueLocations(locations)
	var b strings.Builder
	now := g.now()

	fmt.Fprintf(&b, "%s\n", g.title())
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Locations: %d\n", len(locations))
	b.WriteString(rule + "\n\n")

	summaries := make([]locationSummary, 0, len(locations))
	for _, loc := range locations {
		record := g.Checklists.GetOrDefault(ctx, loc)
		items := query.ForLocation(equipment, loc)
		summaries = append(summaries, writeLocation(&b, loc, record, items))
	}

	writeFacilitySummary(&b, equipment, locations, summaries)
	return b.String()
}

func uniqueLocations(locations []string) []string {
	seen := make(map[string]struct{}, len(locations))
	out := make([]string, 0, len(locations))
	for _, loc := range locations {
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out
}

func writeLocation(b *strings.Builder, location string, record model.MaintenanceRecord, items []model.Equipment) locationSummary {
	fmt.Fprintf(b, "=== %s ===\n\n", strings.ToUpper(location))

	progress := Completion(record.ChecklistItems)
	fmt.Fprintf(b, "Maintenance Checklist: %s (%d/%d completed)\n", progress.Label, progress.Completed, progress.Total)
	for _, it := range record.ChecklistItems {
		marker := "[ ]"
		if it.Completed {
			marker = "[x]"
		}
		fmt.Fprintf(b, "  %s %s\n", marker, it.Label)
	}
	if record.LastUpdated != nil {
		fmt.Fprintf(b, "Checklist Last Updated: %s\n", record.LastUpdated.Format("2006-01-02 15:04"))
	} else {
		b.WriteString("Checklist Last Updated: never\n")
	}

	notes := strings.TrimSpace(record.Notes)
	if notes == "" {
		notes = "No maintenance notes recorded."
	}
	fmt.Fprintf(b, "Maintenance Notes: %s\n\n", notes)

	counts := query.CountsByStatus(items)
	b.WriteString("Equipment Summary:\n")
	fmt.Fprintf(b, "  Total Equipment: %d\n", counts.Total)
	fmt.Fprintf(b, "  Working: %d\n", counts.Working)
	fmt.Fprintf(b, "  Needs Attention: %d\n", counts.NeedsAttention)
	fmt.Fprintf(b, "  Out of Service: %d\n\n", counts.OutOfService)

	writeFlagged(b, "Equipment Requiring Attention:", query.WithStatus(items, model.StatusNeedsAttention), actionNeedsAttention)
	writeFlagged(b, "Out of Service Equipment:", query.WithStatus(items, model.StatusOutOfService), actionOutOfService)

	working := query.CountsByCategory(query.WithStatus(items, model.StatusWorking))
	other := 0
	for cat, n := range working {
		if cat != model.CategoryCardio && cat != model.CategoryStrength {
			other += n
		}
	}
	b.WriteString("Working Equipment by Category:\n")
	fmt.Fprintf(b, "  Cardio: %d\n", working[model.CategoryCardio])
	fmt.Fprintf(b, "  Strength: %d\n", working[model.CategoryStrength])
	fmt.Fprintf(b, "  Other: %d\n\n", other)

	return locationSummary{name: location, counts: counts, progress: progress}
}

func writeFlagged(b *strings.Builder, heading string, items []model.Equipment, action string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading + "\n")
	for _, e := range items {
		notes := e.Notes
		if strings.TrimSpace(notes) == "" {
			notes = "None"
		}
		fmt.Fprintf(b, "  - %s\n", e.Name)
		fmt.Fprintf(b, "    Model: %s\n", e.Model)
		fmt.Fprintf(b, "    Serial: %s\n", e.SerialNumber)
		fmt.Fprintf(b, "    Category: %s\n", e.Category)
		fmt.Fprintf(b, "    Last Checked: %s\n", e.LastChecked)
		fmt.Fprintf(b, "    Notes: %s\n", notes)
		fmt.Fprintf(b, "    Action Required: %s\n", action)
	}
	b.WriteString("\n")
}

func writeFacilitySummary(b *strings.Builder, equipment []model.Equipment, locations []string, summaries []locationSummary) {
	var inScope []model.Equipment
	for _, loc := range locations {
		inScope = append(inScope, query.ForLocation(equipment, loc)...)
	}
	total := query.CountsByStatus(inScope)

	b.WriteString(rule + "\n")
	b.WriteString("FACILITY-WIDE SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(b, "Total Equipment: %d\n", total.Total)
	fmt.Fprintf(b, "Working: %d (%s)\n", total.Working, percent(total.Working, total.Total))
	fmt.Fprintf(b, "Needs Attention: %d (%s)\n", total.NeedsAttention, percent(total.NeedsAttention, total.Total))
	fmt.Fprintf(b, "Out of Service: %d (%s)\n", total.OutOfService, percent(total.OutOfService, total.Total))

	actions := priorityActions(summaries)
	if len(actions) == 0 {
		b.WriteString("\nAll equipment working and all checklists complete.\n")
		return
	}
	b.WriteString("\nPRIORITY ACTIONS:\n")
	for i, a := range actions {
		fmt.Fprintf(b, "%d. %s\n", i+1, a)
	}
}

// priorityActions lists out-of-service, then needs-attention, then checklist
// work, each in location order.
func priorityActions(summaries []locationSummary) []string {
	var actions []string
	for _, s := range summaries {
		if s.counts.OutOfService > 0 {
			actions = append(actions, fmt.Sprintf("%s: %d equipment out of service - %s", s.name, s.counts.OutOfService, actionOutOfService))
		}
	}
	for _, s := range summaries {
		if s.counts.NeedsAttention > 0 {
			actions = append(actions, fmt.Sprintf("%s: %d equipment needing attention - %s", s.name, s.counts.NeedsAttention, actionNeedsAttention))
		}
	}
	for _, s := range summaries {
		if s.progress.Pending() > 0 {
			actions = append(actions, fmt.Sprintf("%s: %d of %d checklist items incomplete", s.name, s.progress.Pending(), s.progress.Total))
		}
	}
	return actions
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Generator) title() string {
	if g.Title == "" {
		return DefaultTitle
	}
	return g.Title
}

func (g *Generator) subjectPrefix() string {
	if g.SubjectPrefix == "" {
		return DefaultSubjectPrefix
	}
	return g.SubjectPrefix
}
