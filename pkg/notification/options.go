package notification

import (
	"embed"
	"log/slog"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NotificationManagerOption is a function that configures a NotificationManager
type NotificationManagerOption func(*NotificationManager) error

// WithSMTP delivers notices by email with the provided SMTP configuration
func WithSMTP(config SMTPConfig) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		emailNotifier, err := NewEmailNotifier(config)
		if err != nil {
			return err
		}
		nm.notifier = emailNotifier
		return nil
	}
}

// WithNotifier delivers notices through n
func WithNotifier(n Notifier) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		nm.notifier = n
		return nil
	}
}

// WithWelcomeTemplates registers the welcome email for both account types
func WithWelcomeTemplates() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		if err := nm.RegisterNotification(WelcomeFreelancer, NoticeTemplate{
			Subject: "Welcome! Let's find your first project",
			Text:    "Hi {{.FirstName}},\n\nYour freelancer account is ready. Skills on your profile: {{.Skills}}.\n",
			Html:    loadTemplate("templates/email/welcome_freelancer.html"),
		}); err != nil {
			return err
		}
		return nm.RegisterNotification(WelcomeClient, NoticeTemplate{
			Subject: "Welcome! Start hiring today",
			Text:    "Hi {{.FirstName}},\n\nThe account for {{.CompanyName}} is ready. Post your first job to meet freelancers.\n",
			Html:    loadTemplate("templates/email/welcome_client.html"),
		})
	}
}

// NewNotificationManagerWithOptions creates a new notification manager with the provided options
func NewNotificationManagerWithOptions(opts ...NotificationManagerOption) (*NotificationManager, error) {
	nm := NewNotificationManager(nil)
	for _, opt := range opts {
		if err := opt(nm); err != nil {
			return nil, err
		}
	}
	return nm, nil
}
