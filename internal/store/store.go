package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store defines the interface for all database operations.
type Store interface {
	SaveSubscription(ctx context.Context, sub PushSubscription, codes []string) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionCodes(ctx context.Context, endpoint string) ([]string, error)
	SubscriptionsForCode(ctx context.Context, code string) ([]PushSubscription, error)
	RecordTicketEvents(ctx context.Context, events []TicketEvent) error
	RecentTicketEvents(ctx context.Context, limit int) ([]TicketEvent, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// SaveSubscription upserts the subscription and replaces its watched codes.
func (s *gormStore) SaveSubscription(ctx context.Context, sub PushSubscription, codes []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&SubscriptionCode{}).Error; err != nil {
			return fmt.Errorf("failed to clear subscription codes: %w", err)
		}
		if len(codes) == 0 {
			return nil
		}

		rows := make([]SubscriptionCode, 0, len(codes))
		for _, code := range codes {
			rows = append(rows, SubscriptionCode{Endpoint: sub.Endpoint, Code: code})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save subscription codes: %w", err)
		}
		return nil
	})
}

// DeleteSubscription removes the subscription and its code mappings.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&SubscriptionCode{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription codes: %w", err)
		}
		if err := tx.Delete(&PushSubscription{Endpoint: endpoint}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// SubscriptionCodes returns the codes the subscription watches.
func (s *gormStore) SubscriptionCodes(ctx context.Context, endpoint string) ([]string, error) {
	var sub PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	var rows []SubscriptionCode
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscription codes: %w", err)
	}
	codes := make([]string, len(rows))
	for i, row := range rows {
		codes[i] = row.Code
	}
	return codes, nil
}

// SubscriptionsForCode returns every subscription watching the given code.
func (s *gormStore) SubscriptionsForCode(ctx context.Context, code string) ([]PushSubscription, error) {
	var subs []PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_codes sc ON sc.endpoint = push_subscriptions.endpoint").
		Where("sc.code = ?", code).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions for code %q: %w", code, err)
	}
	return subs, nil
}

// RecordTicketEvents archives live-view transitions.
func (s *gormStore) RecordTicketEvents(ctx context.Context, events []TicketEvent) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range events {
		if events[i].ObservedAt.IsZero() {
			events[i].ObservedAt = now
		}
	}
	if err := s.db.WithContext(ctx).Create(&events).Error; err != nil {
		return fmt.Errorf("failed to record ticket events: %w", err)
	}
	return nil
}

// RecentTicketEvents returns the most recently observed transitions.
func (s *gormStore) RecentTicketEvents(ctx context.Context, limit int) ([]TicketEvent, error) {
	var events []TicketEvent
	err := s.db.WithContext(ctx).
		Order("observed_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent ticket events: %w", err)
	}
	return events, nil
}
