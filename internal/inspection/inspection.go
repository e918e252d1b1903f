// Package inspection encodes how inspections and replacements change equipment state.
package inspection

import (
	"fmt"
	"log"
	"time"

	"equipment-tracker-backend/internal/model"
)

// ApplyInspection records an inspection result. Every status may follow every
// other status. Empty notes keep the existing notes.
func ApplyInspection(e model.Equipment, status model.Status, notes string, today model.Date) (model.Equipment, error) {
	if !status.Valid() {
		return model.Equipment{}, fmt.Errorf("%w: unknown status %q", model.ErrInvalid, status)
	}
	e.Status = status
	e.LastChecked = today
	if notes != "" {
		e.Notes = notes
	}
	return e, nil
}

// ApplyReplace models a physical swap for a new unit: the edited fields are
// applied, then status is forced to working and lastChecked to today.
func ApplyReplace(e model.Equipment, edited model.Draft, locations []string, today model.Date) (model.Equipment, error) {
	if err := edited.Validate(locations); err != nil {
		return model.Equipment{}, err
	}
	e = e.WithDraft(edited)
	e.Status = model.StatusWorking
	e.LastChecked = today
	return e, nil
}

// Transition describes a status change produced by an inspection or replacement.
type Transition struct {
	From model.Status
	To   model.Status
}

// Allowed reports whether the transition is permitted. There is no terminal state.
func (t Transition) Allowed() bool {
	return t.From.Valid() && t.To.Valid()
}

// Degraded reports whether equipment left the working state.
func (t Transition) Degraded() bool {
	return t.From == model.StatusWorking && t.To != model.StatusWorking
}

// Repository is the subset of the equipment repository the engine needs.
type Repository interface {
	Modify(id int64, fn func(model.Equipment) (model.Equipment, error)) (before, after model.Equipment, err error)
	Locations() []string
}

// AlertDispatcher is notified when equipment stops working.
type AlertDispatcher interface {
	Dispatch(e model.Equipment)
}

// Engine applies inspections and replacements to stored equipment.
type Engine struct {
	repo   Repository
	now    func() time.Time
	alerts AlertDispatcher
}

// NewEngine creates an engine. alerts may be nil.
func NewEngine(repo Repository, now func() time.Time, alerts AlertDispatcher) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{repo: repo, now: now, alerts: alerts}
}

// Inspect applies an inspection to the stored record with the given id.
func (en *Engine) Inspect(id int64, status model.Status, notes string) (model.Equipment, error) {
	today := model.DateOf(en.now())
	before, after, err := en.repo.Modify(id, func(current model.Equipment) (model.Equipment, error) {
		if err := checkTransition(Transition{From: current.Status, To: status}); err != nil {
			return model.Equipment{}, err
		}
		return ApplyInspection(current, status, notes, today)
	})
	if err != nil {
		return model.Equipment{}, err
	}
	en.notify(Transition{From: before.Status, To: after.Status}, after)
	return after, nil
}

// Replace commits a confirmed replacement of the stored record with the given id.
// Callers must obtain explicit confirmation first; the reset cannot be undone.
func (en *Engine) Replace(id int64, edited model.Draft) (model.Equipment, error) {
	today := model.DateOf(en.now())
	locations := en.repo.Locations()
	before, after, err := en.repo.Modify(id, func(current model.Equipment) (model.Equipment, error) {
		if err := checkTransition(Transition{From: current.Status, To: model.StatusWorking}); err != nil {
			return model.Equipment{}, err
		}
		return ApplyReplace(current, edited, locations, today)
	})
	if err != nil {
		return model.Equipment{}, err
	}
	log.Printf("equipment %d (%s) replaced at %s; status reset from %s", after.ID, after.SerialNumber, after.Location, before.Status)
	return after, nil
}

func checkTransition(t Transition) error {
	if !t.Allowed() {
		return fmt.Errorf("%w: status change %q -> %q", model.ErrInvalid, t.From, t.To)
	}
	return nil
}

func (en *Engine) notify(t Transition, e model.Equipment) {
	if en.alerts == nil || !t.Degraded() {
		return
	}
	en.alerts.Dispatch(e)
}
