package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"equipment-tracker-backend/config"
	"equipment-tracker-backend/internal/api"
	"equipment-tracker-backend/internal/checklist"
	"equipment-tracker-backend/internal/db"
	"equipment-tracker-backend/internal/equipment"
	"equipment-tracker-backend/internal/inspection"
	"equipment-tracker-backend/internal/kv"
	"equipment-tracker-backend/internal/metrics"
	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/report"
)

// alertChannel forwards dispatched alerts to a channel, like the worker pool queue.
type alertChannel chan model.Equipment

func (a alertChannel) Dispatch(e model.Equipment) {
	select {
	case a <- e:
	default:
	}
}

func fixedNow() time.Time {
	return time.Date(2026, time.October, 15, 17, 5, 0, 0, time.UTC)
}

type stack struct {
	server *httptest.Server
	db     *gorm.DB
	repo   *equipment.Repository
}

// newStack wires the full service against the sqlite database at dsn.
func newStack(t *testing.T, dsn string, alerts inspection.AlertDispatcher) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := db.Init(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1})
	require.NoError(t, err)

	repo := equipment.NewRepository(config.DefaultLocations, fixedNow)
	m := metrics.New()
	store := checklist.NewStore(kv.NewGormStore(gormDB), checklist.WithClock(fixedNow), checklist.WithObserver(m))
	handler := api.NewHandler(api.Services{
		Repository: repo,
		Engine:     inspection.NewEngine(repo, fixedNow, alerts),
		Checklists: store,
		Reports:    report.NewGenerator(store, fixedNow),
		Metrics:    m,
		DB:         gormDB,
	})
	server := httptest.NewServer(api.NewRouter(handler, config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60}))

	t.Cleanup(func() {
		server.Close()
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &stack{server: server, db: gormDB, repo: repo}
}

func (s *stack) call(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, s.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestMaintenanceLifecycle walks a piece of equipment from purchase through failure
// and replacement while the location checklist is worked through, then checks the
// report and that checklists survive a restart.
func TestMaintenanceLifecycle(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "equipment.db")
	alerts := make(alertChannel, 4)
	s := newStack(t, dsn, alerts)

	draft := map[string]any{
		"name":         "Cable Crossover",
		"model":        "CC-Dual-Pro",
		"serialNumber": "CC111222333",
		"category":     "Strength",
		"location":     "The Encore",
	}

	var created model.Equipment
	require.Equal(t, http.StatusCreated, s.call(t, http.MethodPost, "/api/equipment", draft, &created))
	assert.Equal(t, model.StatusWorking, created.Status)

	t.Run("Inspection takes the machine out of service", func(t *testing.T) {
		var inspected model.Equipment
		status := s.call(t, http.MethodPost, "/api/equipment/1/inspection",
			map[string]any{"status": "out-of-service", "notes": "Left cable needs replacement"}, &inspected)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, model.StatusOutOfService, inspected.Status)

		select {
		case e := <-alerts:
			assert.Equal(t, created.ID, e.ID)
			assert.Equal(t, model.StatusOutOfService, e.Status)
		case <-time.After(time.Second):
			t.Fatal("expected an alert for equipment leaving the working state")
		}
	})

	t.Run("Checklist progress is persisted", func(t *testing.T) {
		base := "/api/locations/The%20Encore/checklist"
		require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, base+"/items/vacuumAirVent/toggle", nil, nil))
		require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, base+"/items/mopFloor/toggle", nil, nil))

		var saved model.MaintenanceRecord
		body := map[string]any{
			"checklistItems": s.repoChecklist(t, base),
			"notes":          "Crossover cable ordered",
		}
		require.Equal(t, http.StatusOK, s.call(t, http.MethodPut, base, body, &saved))
		assert.Equal(t, "Crossover cable ordered", saved.Notes)

		var row model.KVEntry
		require.NoError(t, s.db.Where(&model.KVEntry{Key: checklist.DefaultKey}).First(&row).Error)
		assert.Contains(t, string(row.Value), `"location":"The Encore"`)
	})

	t.Run("Report reflects equipment and checklist state", func(t *testing.T) {
		var msg report.Message
		require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, "/api/report?location=The%20Encore", nil, &msg))
		assert.Equal(t, "Weekly Equipment Report - 2026-10-15", msg.Subject)
		assert.Contains(t, msg.Body, "Maintenance Checklist: IN PROGRESS (2/5 completed)")
		assert.Contains(t, msg.Body, "Maintenance Notes: Crossover cable ordered")
		assert.Contains(t, msg.Body, "Out of Service Equipment:\n  - Cable Crossover")
		assert.Contains(t, msg.Body, "1. The Encore: 1 equipment out of service")
		assert.Contains(t, msg.Body, "2. The Encore: 3 of 5 checklist items incomplete")
	})

	t.Run("Confirmed replacement returns the machine to service", func(t *testing.T) {
		replace := map[string]any{}
		for k, v := range draft {
			replace[k] = v
		}
		replace["serialNumber"] = "CC999000111"
		replace["notes"] = "New unit installed"
		replace["confirm"] = true

		var replaced model.Equipment
		require.Equal(t, http.StatusOK, s.call(t, http.MethodPost, "/api/equipment/1/replace", replace, &replaced))
		assert.Equal(t, model.StatusWorking, replaced.Status)
		assert.Equal(t, "2026-10-15", replaced.LastChecked.String())
		assert.Equal(t, "New unit installed", replaced.Notes)
	})

	t.Run("Checklists survive a restart", func(t *testing.T) {
		s.server.Close()
		sqlDB, err := s.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		restarted := newStack(t, dsn, nil)
		var record struct {
			model.MaintenanceRecord
			Progress report.Progress `json:"progress"`
		}
		require.Equal(t, http.StatusOK, restarted.call(t, http.MethodGet, "/api/locations/The%20Encore/checklist", nil, &record))
		assert.Equal(t, "Crossover cable ordered", record.Notes)
		assert.Equal(t, 2, record.Progress.Completed)
		require.NotNil(t, record.LastUpdated)
		assert.True(t, fixedNow().Equal(*record.LastUpdated))

		assert.Empty(t, restarted.repo.All(), "equipment is held in memory only")
	})
}

func (s *stack) repoChecklist(t *testing.T, base string) []model.ChecklistItem {
	var record model.MaintenanceRecord
	require.Equal(t, http.StatusOK, s.call(t, http.MethodGet, base, nil, &record))
	return record.ChecklistItems
}
