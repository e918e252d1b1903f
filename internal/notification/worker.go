package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"equipment-tracker-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Alert is the push payload delivered to browsers.
type Alert struct {
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	EquipmentID int64        `json:"equipmentId"`
	Location    string       `json:"location"`
	Status      model.Status `json:"status"`
}

// NewAlert builds the payload announcing that e is no longer working.
func NewAlert(e model.Equipment) Alert {
	body := fmt.Sprintf("%s (%s) at %s is now %s", e.Name, e.SerialNumber, e.Location, e.Status.Label())
	if e.Notes != "" {
		body += ": " + e.Notes
	}
	return Alert{
		Title:       fmt.Sprintf("%s: %s", e.Location, e.Status.Label()),
		Body:        body,
		EquipmentID: e.ID,
		Location:    e.Location,
		Status:      e.Status,
	}
}

// WorkerPool manages a pool of workers for sending equipment alerts.
type WorkerPool struct {
	size    int
	jobs    chan model.Equipment
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.Equipment, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case e := <-wp.jobs:
			log.Printf("Worker %d processing alert for equipment %d", id, e.ID)
			wp.sendAlerts(ctx, e)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert for e. When the queue is full the alert is dropped.
func (wp *WorkerPool) Dispatch(e model.Equipment) {
	select {
	case wp.jobs <- e:
	default:
		log.Printf("Alert queue full, dropping alert for equipment %d", e.ID)
	}
}

// sendAlerts pushes the alert for e to every subscription covering its location.
func (wp *WorkerPool) sendAlerts(ctx context.Context, e model.Equipment) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for equipment %d: %v", e.ID, err)
		return
	}

	payload, err := json.Marshal(NewAlert(e))
	if err != nil {
		log.Printf("Error encoding alert for equipment %d: %v", e.ID, err)
		return
	}

	sent := 0
	for _, sub := range subscriptions {
		if !sub.Covers(e.Location) {
			continue
		}
		wp.sendNotification(ctx, sub, payload)
		sent++
	}
	if sent > 0 {
		log.Printf("Sent %d notifications for equipment %d", sent, e.ID)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: sub.Endpoint}).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
