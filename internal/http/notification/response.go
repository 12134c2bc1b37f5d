package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

type notificationResponse struct {
	ID        uuid.UUID             `json:"id"`
	Type      notification.Type     `json:"type"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Read      bool                  `json:"read"`
	Metadata  notification.Metadata `json:"metadata"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type listResponse struct {
	Notifications []notificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

type markAllReadResponse struct {
	UpdatedCount int64 `json:"updatedCount"`
}

func toResponse(n *notification.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toResponseList(items []*notification.Notification) []notificationResponse {
	resp := make([]notificationResponse, len(items))
	for i, n := range items {
		resp[i] = toResponse(n)
	}

	return resp
}
