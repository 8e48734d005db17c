package notification

import (
	"context"
	"fmt"
)

// NotificationManager pairs registered templates with the notifier that
// delivers them.
type NotificationManager struct {
	notifier  Notifier
	templates map[NoticeType]NoticeTemplate
}

func NewNotificationManager(notifier Notifier) *NotificationManager {
	return &NotificationManager{
		notifier:  notifier,
		templates: make(map[NoticeType]NoticeTemplate),
	}
}

// RegisterNotification adds or replaces the template for a notice type.
func (nm *NotificationManager) RegisterNotification(noticeType NoticeType, tmpl NoticeTemplate) error {
	if noticeType == "" {
		return fmt.Errorf("invalid input: notice type cannot be empty")
	}
	if tmpl.Text == "" && tmpl.Html == "" {
		return fmt.Errorf("invalid input: template for %s has no body", noticeType)
	}
	nm.templates[noticeType] = tmpl
	return nil
}

// Send renders the registered template for noticeType and delivers it.
func (nm *NotificationManager) Send(ctx context.Context, noticeType NoticeType, notification NotificationData) error {
	tmpl, ok := nm.templates[noticeType]
	if !ok {
		return fmt.Errorf("no template registered for notice type: %s", noticeType)
	}
	if nm.notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	return nm.notifier.Send(ctx, noticeType, notification, tmpl)
}
