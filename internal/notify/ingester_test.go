package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bellamaterna/storefront/internal/models"
)

func TestNotificationFor_KnownStatuses(t *testing.T) {
	tests := []struct {
		status   string
		wantType models.NotificationType
	}{
		{"created", models.NotificationOrderCreated},
		{"shipped", models.NotificationOrderShipped},
		{"completed", models.NotificationOrderCompleted},
		{"refunded", models.NotificationInfo},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			n := notificationFor(OrderEvent{OrderID: "ord-1", UserID: "u1", Status: tt.status})
			assert.Equal(t, tt.wantType, n.Type)
			assert.Equal(t, "u1", n.UserID)
			assert.Contains(t, n.Message, "ord-1")
			assert.NotEmpty(t, n.Title)
		})
	}
}
