package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeChequeBounced  NotificationType = "cheque_bounced"
	NotificationTypeChequeDue      NotificationType = "cheque_due"
	NotificationTypeChequeCleared  NotificationType = "cheque_cleared"
	NotificationTypeChequeReplaced NotificationType = "cheque_replaced"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeChequeBounced,
	NotificationTypeChequeDue,
	NotificationTypeChequeCleared,
	NotificationTypeChequeReplaced,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationAudience identifies who a notification row targets.
type NotificationAudience string

const (
	AudienceTenant          NotificationAudience = "tenant"
	AudiencePropertyManager NotificationAudience = "property_manager"
)
