package equipment

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-tracker-backend/internal/model"
)

var testLocations = []string{"Hawthorn Park", "The Encore", "The Regent"}

func fixedClock() time.Time {
	return time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)
}

func treadmill() model.Draft {
	return model.Draft{
		Name:         "Treadmill Pro X1",
		Model:        "TP-X1-2023",
		SerialNumber: "TP123456789",
		Category:     model.CategoryCardio,
		Location:     "Hawthorn Park",
		Notes:        "All functions working properly",
	}
}

func TestRepository_Add(t *testing.T) {
	repo := NewRepository(testLocations, fixedClock)

	e, err := repo.Add(treadmill())
	require.NoError(t, err)
	assert.Equal(t, model.StatusWorking, e.Status)
	assert.Equal(t, "2026-10-15", e.LastChecked.String())
	assert.Equal(t, "Treadmill Pro X1", e.Name)

	stored, err := repo.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, stored)
}

func TestRepository_AddAssignsUniqueIncreasingIDs(t *testing.T) {
	repo := NewRepository(testLocations, fixedClock)

	var last int64
	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		e, err := repo.Add(treadmill())
		require.NoError(t, err)
		assert.False(t, seen[e.ID], "id %d reused", e.ID)
		assert.Greater(t, e.ID, last)
		seen[e.ID] = true
		last = e.ID
	}

	// Deleting the newest record must not free its id.
	require.NoError(t, repo.Delete(last))
	e, err := repo.Add(treadmill())
	require.NoError(t, err)
	assert.Greater(t, e.ID, last)
}

func TestRepository_AddValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(d *model.Draft)
	}{
		{name: "empty name", mutate: func(d *model.Draft) { d.Name = "  " }},
		{name: "empty model", mutate: func(d *model.Draft) { d.Model = "" }},
		{name: "empty serial", mutate: func(d *model.Draft) { d.SerialNumber = "" }},
		{name: "unknown category", mutate: func(d *model.Draft) { d.Category = "Yoga" }},
		{name: "unknown location", mutate: func(d *model.Draft) { d.Location = "Downtown" }},
		{name: "empty location", mutate: func(d *model.Draft) { d.Location = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewRepository(testLocations, fixedClock)
			d := treadmill()
			tc.mutate(&d)

			_, err := repo.Add(d)
			assert.ErrorIs(t, err, model.ErrInvalid)
			assert.Empty(t, repo.All())
		})
	}
}

func TestRepository_UpdateAndEdit(t *testing.T) {
	repo := NewRepository(testLocations, fixedClock)
	e, err := repo.Add(treadmill())
	require.NoError(t, err)

	before, after, err := repo.Modify(e.ID, func(cur model.Equipment) (model.Equipment, error) {
		cur.Status = model.StatusOutOfService
		cur.Notes = "Belt torn"
		return cur, nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusWorking, before.Status)
	assert.Equal(t, model.StatusOutOfService, after.Status)
	got, err := repo.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOutOfService, got.Status)

	got.Notes = "Belt replaced"
	require.NoError(t, repo.Update(got))
	bad := got
	bad.Status = "broken"
	assert.ErrorIs(t, repo.Update(bad), model.ErrInvalid)

	d := treadmill()
	d.Location = "The Regent"
	d.Name = "Treadmill Pro X2"
	edited, err := repo.Edit(e.ID, d)
	require.NoError(t, err)
	assert.Equal(t, "Treadmill Pro X2", edited.Name)
	assert.Equal(t, "The Regent", edited.Location)
	assert.Equal(t, model.StatusOutOfService, edited.Status, "edit keeps status")
	assert.Equal(t, e.ID, edited.ID)

}

func TestRepository_ModifyRejectionsLeaveRecordUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(model.Equipment) (model.Equipment, error)
		wantErr error
	}{
		{"invalid status", func(e model.Equipment) (model.Equipment, error) {
			e.Status = "broken"
			return e, nil
		}, model.ErrInvalid},
		{"unknown location", func(e model.Equipment) (model.Equipment, error) {
			e.Location = "Downtown"
			return e, nil
		}, model.ErrInvalid},
		{"changed id", func(e model.Equipment) (model.Equipment, error) {
			e.ID++
			return e, nil
		}, model.ErrInvalid},
		{"fn error", func(e model.Equipment) (model.Equipment, error) {
			e.Notes = "half applied"
			return e, errStop
		}, errStop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRepository(testLocations, fixedClock)
			e, err := repo.Add(treadmill())
			require.NoError(t, err)

			_, _, err = repo.Modify(e.ID, tt.fn)
			assert.ErrorIs(t, err, tt.wantErr)

			got, err := repo.Get(e.ID)
			require.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}
}

var errStop = errors.New("stop")

func TestRepository_ConcurrentModifyLosesNothing(t *testing.T) {
	repo := NewRepository(testLocations, fixedClock)
	e, err := repo.Add(treadmill())
	require.NoError(t, err)

	const writers = 50
	var wg sync.WaitGroup
	for n := 0; n < writers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.Modify(e.ID, func(cur model.Equipment) (model.Equipment, error) {
				cur.Notes += "x"
				return cur, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Notes, len(e.Notes)+writers)
}

func TestRepository_DeleteThenReferenceIsNotFound(t *testing.T) {
	repo := NewRepository(testLocations, fixedClock)
	e, err := repo.Add(treadmill())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(e.ID))

	assert.ErrorIs(t, repo.Update(e), ErrNotFound)
	_, _, err = repo.Modify(e.ID, func(cur model.Equipment) (model.Equipment, error) { return cur, nil })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(e.ID), ErrNotFound)
	_, err = repo.Get(e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Edit(e.ID, treadmill())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, repo.All(), "update must not recreate a deleted record")
}

func TestRepository_ListByLocationKeepsInsertionOrder(t *testing.T) {
	repo := NewRepository(testLocations, fixedClock)
	names := []string{"Zeta Rower", "Alpha Bike", "Mid Press"}
	for _, n := range names {
		d := treadmill()
		d.Name = n
		d.Location = "The Encore"
		_, err := repo.Add(d)
		require.NoError(t, err)
	}
	_, err := repo.Add(treadmill())
	require.NoError(t, err)

	got := repo.ListByLocation("The Encore")
	require.Len(t, got, 3)
	for i, n := range names {
		assert.Equal(t, n, got[i].Name)
	}
	assert.Empty(t, repo.ListByLocation("Nowhere"))
}

func TestRepository_Seed(t *testing.T) {
	repo := NewRepository(testLocations, fixedClock)
	last, err := model.ParseDate("2024-06-14")
	require.NoError(t, err)

	seeded, err := repo.Seed(model.Equipment{
		ID:           999,
		Name:         "Elliptical Elite",
		Model:        "EE-450",
		SerialNumber: "EE987654321",
		Category:     model.CategoryCardio,
		Status:       model.StatusNeedsAttention,
		LastChecked:  last,
		Location:     "The Encore",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seeded.ID)
	assert.Equal(t, model.StatusNeedsAttention, seeded.Status)
	assert.Equal(t, "2024-06-14", seeded.LastChecked.String())
}
