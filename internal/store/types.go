package store

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey;size:512"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// SubscriptionCode maps a push subscription to one ticket code it watches.
type SubscriptionCode struct {
	Endpoint string `gorm:"primaryKey;size:512"`
	Code     string `gorm:"primaryKey;size:32;index"`
}

// Ticket transition kinds recorded by the display poller.
const (
	EventCalled = "called" // the code newly entered the live view
	EventLeft   = "left"   // the code dropped out of the live view
)

// TicketEvent is one archived live-view transition.
type TicketEvent struct {
	ID          int64     `gorm:"autoIncrement;primaryKey"`
	Code        string    `gorm:"size:32;not null;index"`
	Room        string    `gorm:"size:64"`
	Kind        string    `gorm:"size:64"`
	Status      string    `gorm:"size:32"`
	Event       string    `gorm:"size:16;not null"`
	ScheduledAt time.Time `gorm:"not null"`
	ObservedAt  time.Time `gorm:"not null;index"`
}
