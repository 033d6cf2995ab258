package notifications

import "github.com/moodlens/aura-tracker/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendDigest(digest *models.AlertDigest) error
}
