package app

import (
	"time"

	"github.com/j-veylop/gradebook-tui/internal/gradebook"
	"github.com/j-veylop/gradebook-tui/internal/models"
	"github.com/j-veylop/gradebook-tui/internal/services"
	"github.com/j-veylop/gradebook-tui/internal/validate"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// BookLoadedMsg carries a fresh snapshot of the book. It is delivered to
// every tab, not only the active one.
type BookLoadedMsg struct {
	Snapshot services.Snapshot
	Cause    models.Action
}

// AddGradeMsg requests adding a grade from the raw form values.
type AddGradeMsg struct {
	Form validate.GradeForm
}

// AddGradeResultMsg contains the result of an add. Error is a
// *validate.Error when the form was rejected.
type AddGradeResultMsg struct {
	Entry gradebook.Entry
	Error error
}

// DeleteGradeMsg requests deletion of an entry.
type DeleteGradeMsg struct {
	ID int
}

// DeleteGradeResultMsg contains the result of a delete.
type DeleteGradeResultMsg struct {
	ID    int
	Error error
}

// SubmitContactMsg requests validation of the contact form.
type SubmitContactMsg struct {
	Form validate.ContactForm
}

// ContactResultMsg contains the result of a contact submission.
type ContactResultMsg struct {
	Form  validate.ContactForm
	Error error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "book", "history"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg requests removal of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// SubscriptionEventMsg delivers the service event channel once subscribed.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab. The newly active tab
// receives it too and may refresh itself.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
