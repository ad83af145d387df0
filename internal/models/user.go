package models

import "time"

// User is the authenticated principal as seen by the auth service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a live auth session. The token is the bearer credential.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is the user_profiles row, one-to-one with the auth user.
type UserProfile struct {
	ID         string     `json:"id"` // auth user id
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Street     string     `json:"street,omitempty"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	PostalCode string     `json:"postal_code,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	// domain subtypes emitted by order lifecycle events
	NotificationOrderCreated   NotificationType = "order_created"
	NotificationOrderShipped   NotificationType = "order_shipped"
	NotificationOrderCompleted NotificationType = "order_completed"
)

// Notification is written by external processes (order lifecycle) and
// read/marked by the client.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
