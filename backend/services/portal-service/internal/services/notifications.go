package services

import (
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/google/uuid"
)

type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a transient message the page shows as a toast.
type Notification struct {
	ID      uuid.UUID         `json:"id"`
	Level   NotificationLevel `json:"level"`
	Field   forms.Field       `json:"field,omitempty"`
	Message string            `json:"message"`
}

func newNotification(level NotificationLevel, field forms.Field, message string) Notification {
	return Notification{ID: uuid.New(), Level: level, Field: field, Message: message}
}

// fieldErrorNotifications returns one error notification per invalid field,
// in scope order.
func fieldErrorNotifications(errs forms.Errors, scope []forms.Field) []Notification {
	ordered := errs.Ordered(scope)
	out := make([]Notification, 0, len(ordered))
	for _, fe := range ordered {
		out = append(out, newNotification(NotificationError, fe.Field, fe.Message))
	}
	return out
}

// failureMessage is err's message, or fallback when it has none.
func failureMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
