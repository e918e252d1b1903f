// Package equipment owns the in-memory collection of equipment records.
package equipment

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"equipment-tracker-backend/internal/model"
)

// ErrNotFound is returned when an operation references an unknown equipment id.
var ErrNotFound = errors.New("equipment not found")

// Repository holds equipment records in insertion order.
// Ids are assigned from a strictly increasing counter and never reused.
type Repository struct {
	mu        sync.RWMutex
	items     []model.Equipment
	nextID    int64
	locations []string
	now       func() time.Time
}

// NewRepository creates an empty repository that accepts the given locations.
// now supplies the current time; "today" is its calendar date.
func NewRepository(locations []string, now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{
		nextID:    1,
		locations: slices.Clone(locations),
		now:       now,
	}
}

// Locations returns the configured locations.
func (r *Repository) Locations() []string {
	return slices.Clone(r.locations)
}

// Add validates draft and inserts a new record that is working and checked today.
func (r *Repository) Add(draft model.Draft) (model.Equipment, error) {
	if err := draft.Validate(r.locations); err != nil {
		return model.Equipment{}, err
	}
	e := model.Equipment{
		Status:      model.StatusWorking,
		LastChecked: model.DateOf(r.now()),
	}.WithDraft(draft)

	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.allocateID()
	r.items = append(r.items, e)
	return e, nil
}

// Seed inserts a fully formed record keeping its status and lastChecked.
// The id on e is ignored and a fresh one is assigned.
func (r *Repository) Seed(e model.Equipment) (model.Equipment, error) {
	if err := e.Validate(r.locations); err != nil {
		return model.Equipment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.allocateID()
	r.items = append(r.items, e)
	return e, nil
}

// Get returns the record with the given id.
func (r *Repository) Get(id int64) (model.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return model.Equipment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return r.items[i], nil
}

// Update replaces the record matching e.ID wholesale.
func (r *Repository) Update(e model.Equipment) error {
	_, _, err := r.Modify(e.ID, func(model.Equipment) (model.Equipment, error) { return e, nil })
	return err
}

// Modify replaces the record with the given id by fn's result, holding the
// write lock from read to write. The result must keep the id and pass
// validation; otherwise the record is left unchanged. fn must not call back
// into the repository.
func (r *Repository) Modify(id int64, fn func(model.Equipment) (model.Equipment, error)) (before, after model.Equipment, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return model.Equipment{}, model.Equipment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	before = r.items[i]
	after, err = fn(before)
	if err != nil {
		return model.Equipment{}, model.Equipment{}, err
	}
	if after.ID != id {
		return model.Equipment{}, model.Equipment{}, fmt.Errorf("%w: id cannot change from %d to %d", model.ErrInvalid, id, after.ID)
	}
	if err := after.Validate(r.locations); err != nil {
		return model.Equipment{}, model.Equipment{}, err
	}
	r.items[i] = after
	return before, after, nil
}

// Edit applies the edit form to the record with the given id.
// Status and lastChecked are left untouched.
func (r *Repository) Edit(id int64, draft model.Draft) (model.Equipment, error) {
	if err := draft.Validate(r.locations); err != nil {
		return model.Equipment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return model.Equipment{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	r.items[i] = r.items[i].WithDraft(draft)
	return r.items[i], nil
}

// Delete removes the record with the given id.
func (r *Repository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	r.items = slices.Delete(r.items, i, i+1)
	return nil
}

// All returns a copy of every record in insertion order.
func (r *Repository) All() []model.Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items)
}

// ListByLocation returns the records at location in insertion order.
func (r *Repository) ListByLocation(location string) []model.Equipment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Equipment
	for _, e := range r.items {
		if e.Location == location {
			out = append(out, e)
		}
	}
	return out
}

func (r *Repository) allocateID() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *Repository) indexOf(id int64) int {
	return slices.IndexFunc(r.items, func(e model.Equipment) bool { return e.ID == id })
}
