package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
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
	"equipment-tracker-backend/internal/notification"
	"equipment-tracker-backend/internal/parse"
	"equipment-tracker-backend/internal/report"
)

func main() {
	logger := log.New(os.Stdout, "equipment-tracker ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	repo := equipment.NewRepository(cfg.Facility.Locations, cfg.Now)
	seeded, err := seedRepository(repo, cfg.Facility.Seed, model.DateOf(cfg.Now()))
	if err != nil {
		logger.Fatalf("failed to seed equipment: %v", err)
	}
	logger.Printf("equipment repository ready with %d records", seeded)

	backend, err := newKVStore(cfg.Storage, gormDB)
	if err != nil {
		logger.Fatalf("failed to initialize checklist storage: %v", err)
	}
	checklists := checklist.NewStore(backend,
		checklist.WithKey(cfg.Storage.ChecklistKey),
		checklist.WithObserver(m),
	)
	logger.Printf("checklist store using %s backend", cfg.Storage.Backend)

	var webpushOptions *webpush.Options
	var alerts inspection.AlertDispatcher
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		alerts = pool
	} else {
		logger.Println("VAPID keys are not configured; push alerts are disabled")
	}

	generator := report.NewGenerator(checklists, cfg.Now)
	generator.Title = cfg.Report.Title
	generator.SubjectPrefix = cfg.Report.SubjectPrefix

	handler := api.NewHandler(api.Services{
		Repository: repo,
		Engine:     inspection.NewEngine(repo, cfg.Now, alerts),
		Checklists: checklists,
		Reports:    generator,
		Metrics:    m,
		DB:         gormDB,
		Webpush:    webpushOptions,
	})
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// newKVStore builds the key-value backend selected by the storage config.
func newKVStore(cfg config.StorageConfig, gormDB *gorm.DB) (kv.Store, error) {
	switch cfg.Backend {
	case "database":
		return kv.NewGormStore(gormDB), nil
	case "file":
		return kv.NewFileStore(cfg.FilePath), nil
	case "memory":
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// seedRepository loads the configured sample equipment and returns how many were added.
// Seeds without a last_checked date are stamped with today.
func seedRepository(repo *equipment.Repository, seeds []config.SeedEquipment, today model.Date) (int, error) {
	for i, s := range seeds {
		e, err := seedEquipment(s, today)
		if err != nil {
			return i, fmt.Errorf("seed %d (%s): %w", i, s.Name, err)
		}
		if _, err := repo.Seed(e); err != nil {
			return i, fmt.Errorf("seed %d (%s): %w", i, s.Name, err)
		}
	}
	return len(seeds), nil
}

func seedEquipment(s config.SeedEquipment, today model.Date) (model.Equipment, error) {
	category, err := parse.Category(s.Category)
	if err != nil {
		return model.Equipment{}, err
	}
	status := model.StatusWorking
	if s.Status != "" {
		if status, err = parse.Status(s.Status); err != nil {
			return model.Equipment{}, err
		}
	}
	lastChecked := today
	if s.LastChecked != "" {
		if lastChecked, err = parse.Date(s.LastChecked); err != nil {
			return model.Equipment{}, err
		}
	}
	return model.Equipment{
		Name:         s.Name,
		Model:        s.Model,
		SerialNumber: s.SerialNumber,
		Category:     category,
		Status:       status,
		LastChecked:  lastChecked,
		Location:     s.Location,
		Notes:        s.Notes,
	}, nil
}
