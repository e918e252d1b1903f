// Package checklist persists per-location maintenance checklists.
//
// All records live under a single key as a JSON array and every save rewrites
// the whole array. Two writers editing the same location do not see each
// other: the last save wins and earlier edits are lost. Storage failures are
// logged and absorbed so equipment tracking keeps working without them.
package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"equipment-tracker-backend/internal/kv"
	"equipment-tracker-backend/internal/model"
)

// DefaultKey is the storage key holding every maintenance record.
const DefaultKey = "maintenance_records"

// ErrItemNotFound is returned when an item helper references an unknown item id.
var ErrItemNotFound = errors.New("checklist item not found")

var errCorrupt = errors.New("corrupt maintenance records")

// SaveObserver is told about the outcome of every save attempt.
type SaveObserver interface {
	ObserveChecklistSave(err error)
}

// Store reads and writes maintenance records through a kv.Store.
type Store struct {
	kv       kv.Store
	key      string
	now      func() time.Time
	newID    func() string
	observer SaveObserver
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the source of lastUpdated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how new item ids are produced.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithObserver registers a save observer.
func WithObserver(o SaveObserver) Option {
	return func(s *Store) { s.observer = o }
}

// NewStore creates a checklist store on top of backend.
func NewStore(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    backend,
		key:   DefaultKey,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultItems returns the fixed default checklist, all pending.
func DefaultItems() []model.ChecklistItem {
	return model.DefaultChecklistItems()
}

// GetAllRecords returns every stored record. Missing or corrupt storage reads as empty.
func (s *Store) GetAllRecords(ctx context.Context) []model.MaintenanceRecord {
	records, err := s.load(ctx)
	if err != nil {
		log.Printf("Warning: failed to read maintenance records: %v", err)
		return nil
	}
	return records
}

// GetRecord returns the stored record for location, if any.
func (s *Store) GetRecord(ctx context.Context, location string) (model.MaintenanceRecord, bool) {
	for _, r := range s.GetAllRecords(ctx) {
		if r.Location == location {
			return r, true
		}
	}
	return model.MaintenanceRecord{}, false
}

// GetOrDefault returns the stored record for location, or a fresh record with
// the default items, empty notes and no lastUpdated stamp.
func (s *Store) GetOrDefault(ctx context.Context, location string) model.MaintenanceRecord {
	if r, ok := s.GetRecord(ctx, location); ok {
		return r
	}
	return model.MaintenanceRecord{
		Location:       location,
		ChecklistItems: DefaultItems(),
	}
}

// Save overwrites the record for location with items and notes and a fresh
// lastUpdated stamp. Items must carry unique non-empty ids and non-empty
// labels; anything else fails with model.ErrInvalid. A failed write is
// logged and skipped.
func (s *Store) Save(ctx context.Context, location string, items []model.ChecklistItem, notes string) (model.MaintenanceRecord, error) {
	if err := ValidateItems(items); err != nil {
		return model.MaintenanceRecord{}, err
	}
	return s.write(ctx, location, items, notes), nil
}

// ValidateItems checks a checklist item list before it is stored.
func ValidateItems(items []model.ChecklistItem) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("%w: checklist item %d has no id", model.ErrInvalid, i)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate checklist item id %q", model.ErrInvalid, item.ID)
		}
		seen[item.ID] = struct{}{}
		if strings.TrimSpace(item.Label) == "" {
			return fmt.Errorf("%w: checklist item %q has no label", model.ErrInvalid, item.ID)
		}
	}
	return nil
}

func (s *Store) write(ctx context.Context, location string, items []model.ChecklistItem, notes string) model.MaintenanceRecord {
	stamp := s.now().UTC()
	record := model.MaintenanceRecord{
		Location:       location,
		ChecklistItems: slices.Clone(items),
		Notes:          notes,
		LastUpdated:    &stamp,
	}
	if record.ChecklistItems == nil {
		record.ChecklistItems = []model.ChecklistItem{}
	}

	err := s.persist(ctx, record)
	if s.observer != nil {
		s.observer.ObserveChecklistSave(err)
	}
	if err != nil {
		log.Printf("Failed to save maintenance record for %q: %v", location, err)
	}
	return record
}

func (s *Store) persist(ctx context.Context, record model.MaintenanceRecord) error {
	records, err := s.load(ctx)
	switch {
	case errors.Is(err, errCorrupt):
		log.Printf("Warning: overwriting corrupt maintenance records: %v", err)
		records = nil
	case err != nil:
		return err
	}
	i := slices.IndexFunc(records, func(r model.MaintenanceRecord) bool { return r.Location == record.Location })
	if i >= 0 {
		records[i] = record
	} else {
		records = append(records, record)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode maintenance records: %w", err)
	}
	return s.kv.Set(ctx, s.key, data)
}

func (s *Store) load(ctx context.Context) ([]model.MaintenanceRecord, error) {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var records []model.MaintenanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	return records, nil
}

// ToggleItem flips the completion flag of one item.
func (s *Store) ToggleItem(ctx context.Context, location, itemID string) (model.MaintenanceRecord, error) {
	return s.mutateItem(ctx, location, itemID, func(item *model.ChecklistItem) error {
		item.Completed = !item.Completed
		return nil
	})
}

// SetItemCompleted sets the completion flag of one item.
func (s *Store) SetItemCompleted(ctx context.Context, location, itemID string, completed bool) (model.MaintenanceRecord, error) {
	return s.mutateItem(ctx, location, itemID, func(item *model.ChecklistItem) error {
		item.Completed = completed
		return nil
	})
}

// RenameItem changes the label of one item.
func (s *Store) RenameItem(ctx context.Context, location, itemID, label string) (model.MaintenanceRecord, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return model.MaintenanceRecord{}, fmt.Errorf("%w: checklist label is required", model.ErrInvalid)
	}
	return s.mutateItem(ctx, location, itemID, func(item *model.ChecklistItem) error {
		item.Label = label
		return nil
	})
}

// DeleteItem removes one item from the location's checklist.
func (s *Store) DeleteItem(ctx context.Context, location, itemID string) (model.MaintenanceRecord, error) {
	record := s.GetOrDefault(ctx, location)
	i := indexOfItem(record.ChecklistItems, itemID)
	if i < 0 {
		return model.MaintenanceRecord{}, fmt.Errorf("%w: %q at %s", ErrItemNotFound, itemID, location)
	}
	items := slices.Delete(slices.Clone(record.ChecklistItems), i, i+1)
	return s.write(ctx, location, items, record.Notes), nil
}

// AddItem appends a pending item with a freshly generated id.
func (s *Store) AddItem(ctx context.Context, location, label string) (model.MaintenanceRecord, model.ChecklistItem, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return model.MaintenanceRecord{}, model.ChecklistItem{}, fmt.Errorf("%w: checklist label is required", model.ErrInvalid)
	}
	record := s.GetOrDefault(ctx, location)
	item := model.ChecklistItem{ID: s.newID(), Label: label}
	items := append(slices.Clone(record.ChecklistItems), item)
	return s.write(ctx, location, items, record.Notes), item, nil
}

// Reset restores the default items for location and keeps its notes.
func (s *Store) Reset(ctx context.Context, location string) model.MaintenanceRecord {
	record := s.GetOrDefault(ctx, location)
	return s.write(ctx, location, DefaultItems(), record.Notes)
}

func (s *Store) mutateItem(ctx context.Context, location, itemID string, fn func(*model.ChecklistItem) error) (model.MaintenanceRecord, error) {
	record := s.GetOrDefault(ctx, location)
	items := slices.Clone(record.ChecklistItems)
	i := indexOfItem(items, itemID)
	if i < 0 {
		return model.MaintenanceRecord{}, fmt.Errorf("%w: %q at %s", ErrItemNotFound, itemID, location)
	}
	if err := fn(&items[i]); err != nil {
		return model.MaintenanceRecord{}, err
	}
	return s.write(ctx, location, items, record.Notes), nil
}

func indexOfItem(items []model.ChecklistItem, id string) int {
	return slices.IndexFunc(items, func(it model.ChecklistItem) bool { return it.ID == id })
}
