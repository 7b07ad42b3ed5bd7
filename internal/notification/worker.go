package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"jabber-dashboard/internal/model"
	"jabber-dashboard/internal/store"
)

// RoomFreed is a notification job: a classroom transitioned into the
// available state.
type RoomFreed struct {
	ClassroomID int64  `json:"classroom_id"`
	RoomNumber  string `json:"room_number"`
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers that push availability alerts to
// subscribers watching the freed classroom.
type WorkerPool struct {
	size    int
	jobs    chan RoomFreed
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, st store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan RoomFreed, size), // Buffered channel
		store:   st,
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
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.Printf("Worker %d processing classroom %d", id, job.ClassroomID)
			wp.notifyWatchers(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(job RoomFreed) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan RoomFreed {
	return wp.jobs
}

// notifyWatchers fetches the subscriptions watching the freed classroom and
// pushes an alert to each of them.
func (wp *WorkerPool) notifyWatchers(ctx context.Context, job RoomFreed) {
	subscriptions, err := wp.store.SubscribersForClassroom(ctx, job.ClassroomID)
	if err != nil {
		log.Printf("Error fetching subscribers for classroom %d: %v", job.ClassroomID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for classroom %d", len(subscriptions), job.ClassroomID)

	payload, err := json.Marshal(map[string]any{
		"type":         "classroom_available",
		"classroom_id": job.ClassroomID,
		"room_number":  job.RoomNumber,
		"message":      "Classroom " + job.RoomNumber + " is now available",
	})
	if err != nil {
		log.Printf("Error encoding notification payload: %v", err)
		return
	}

	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
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
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
