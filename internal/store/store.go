package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jabber-dashboard/internal/model"
)

// Store defines the persistence operations for push subscriptions.
type Store interface {
	UpsertSubscription(ctx context.Context, sub model.PushSubscription, classroomIDs []int64) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, []int64, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscribersForClassroom(ctx context.Context, classroomID int64) ([]model.PushSubscription, error)
}

// ErrNotFound is returned when no subscription exists for an endpoint.
var ErrNotFound = gorm.ErrRecordNotFound

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// UpsertSubscription creates or refreshes a subscription and replaces its
// watch list transactionally.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, classroomIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("upsert subscription failed: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.RoomWatch{}).Error; err != nil {
			return fmt.Errorf("failed to clear watches for %s: %w", sub.Endpoint, err)
		}

		if len(classroomIDs) == 0 {
			return nil
		}
		watches := make([]model.RoomWatch, 0, len(classroomIDs))
		for _, id := range classroomIDs {
			watches = append(watches, model.RoomWatch{Endpoint: sub.Endpoint, ClassroomID: id})
		}
		if err := tx.Create(&watches).Error; err != nil {
			return fmt.Errorf("failed to save watches for %s: %w", sub.Endpoint, err)
		}
		return nil
	})
}

// GetSubscription returns a subscription and the classroom IDs it watches.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, []int64, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Watches").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return model.PushSubscription{}, nil, err
	}
	ids := make([]int64, len(sub.Watches))
	for i, w := range sub.Watches {
		ids[i] = w.ClassroomID
	}
	return sub, ids, nil
}

// DeleteSubscription removes a subscription and its watches.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.RoomWatch{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error
	})
}

// SubscribersForClassroom returns every subscription watching a classroom.
func (s *gormStore) SubscribersForClassroom(ctx context.Context, classroomID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN room_watches ON room_watches.endpoint = push_subscriptions.endpoint").
		Where("room_watches.classroom_id = ?", classroomID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscribers for classroom %d: %w", classroomID, err)
	}
	return subs, nil
}
