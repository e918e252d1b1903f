package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var locations = []string{"Hawthorn Park", "The Encore", "The Regent"}

func TestDate_JSON(t *testing.T) {
	d := Date{Year: 2024, Month: time.June, Day: 5}
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-05"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())
	assert.Equal(t, "", empty.String())

	assert.Error(t, json.Unmarshal([]byte(`"06/05/2024"`), &back))
}

func TestDateOf_UsesLocation(t *testing.T) {
	chicago := time.FixedZone("CDT", -5*60*60)
	// 02:30 UTC on the 16th is still the evening of the 15th in Chicago.
	instant := time.Date(2026, time.October, 16, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-16", DateOf(instant).String())
	assert.Equal(t, "2026-10-15", DateOf(instant.In(chicago)).String())
}

func TestDraft_Validate(t *testing.T) {
	valid := Draft{Name: "Leg Press Machine", Model: "LP-800", SerialNumber: "LP555666777", Category: CategoryStrength, Location: "The Regent"}
	require.NoError(t, valid.Validate(locations))

	testCases := []struct {
		name     string
		mutate   func(*Draft)
		expected string
	}{
		{name: "blank name", mutate: func(d *Draft) { d.Name = "  " }, expected: "name is required"},
		{name: "blank model", mutate: func(d *Draft) { d.Model = "" }, expected: "model is required"},
		{name: "blank serial", mutate: func(d *Draft) { d.SerialNumber = "" }, expected: "serial number is required"},
		{name: "category", mutate: func(d *Draft) { d.Category = "Yoga" }, expected: `unknown category "Yoga"`},
		{name: "location", mutate: func(d *Draft) { d.Location = "Downtown" }, expected: `unknown location "Downtown"`},
		{name: "missing location", mutate: func(d *Draft) { d.Location = "" }, expected: "location is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			err := d.Validate(locations)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tc.expected)
		})
	}

	t.Run("every problem is reported", func(t *testing.T) {
		err := Draft{}.Validate(locations)
		assert.ErrorContains(t, err, "name is required; model is required; serial number is required")
	})

	t.Run("no configured locations accepts any site", func(t *testing.T) {
		d := valid
		d.Location = "Downtown"
		assert.NoError(t, d.Validate(nil))
	})
}

func TestEquipment_Validate(t *testing.T) {
	e := Equipment{ID: 1, Name: "Rowing Machine", Model: "RM-Concept2", SerialNumber: "RM444555666", Category: CategoryCardio, Status: StatusWorking, LastChecked: Date{Year: 2024, Month: time.June, Day: 16}, Location: "The Encore"}
	require.NoError(t, e.Validate(locations))

	bad := e
	bad.Status = "broken"
	assert.ErrorIs(t, bad.Validate(locations), ErrInvalid)

	bad = e
	bad.LastChecked = Date{}
	assert.ErrorIs(t, bad.Validate(locations), ErrInvalid)
}

func TestEquipment_DraftRoundTrip(t *testing.T) {
	e := Equipment{ID: 7, Status: StatusOutOfService, LastChecked: Date{Year: 2024, Month: time.June, Day: 13}}
	d := Draft{Name: "Cable Crossover", Model: "CC-Dual-Pro", SerialNumber: "CC111222333", Category: CategoryStrength, Location: "The Encore", Notes: "n"}

	applied := e.WithDraft(d)
	assert.Equal(t, d, applied.Draft())
	assert.Equal(t, int64(7), applied.ID)
	assert.Equal(t, StatusOutOfService, applied.Status)
	assert.Equal(t, e.LastChecked, applied.LastChecked)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Working", StatusWorking.Label())
	assert.Equal(t, "Needs Attention", StatusNeedsAttention.Label())
	assert.Equal(t, "Out of Service", StatusOutOfService.Label())
	assert.False(t, Status("retired").Valid())
}

func TestDefaultChecklistItems(t *testing.T) {
	items := DefaultChecklistItems()
	require.Len(t, items, 5)
	for _, it := range items {
		assert.False(t, it.Completed)
	}
	items[0].Completed = true
	assert.False(t, DefaultChecklistItems()[0].Completed, "each call returns a fresh slice")
}

func TestPushSubscription_Covers(t *testing.T) {
	all := PushSubscription{}
	assert.True(t, all.Covers("The Regent"))

	encore := PushSubscription{Locations: []string{"The Encore"}}
	assert.True(t, encore.Covers("The Encore"))
	assert.False(t, encore.Covers("The Regent"))
}
