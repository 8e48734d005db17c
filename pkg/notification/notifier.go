package notification

import "context"

// NoticeType identifies a kind of notice, e.g. the freelancer welcome email.
type NoticeType string

const (
	WelcomeFreelancer NoticeType = "welcome_freelancer"
	WelcomeClient     NoticeType = "welcome_client"
)

// NoticeTemplate holds the subject and the text and/or HTML bodies. Bodies
// are html/template sources executed against NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type NotificationData struct {
	To      string            // Recipient address
	Subject string            // Overrides the template subject when set
	Data    map[string]string // Template values
}

type Notifier interface {
	Send(ctx context.Context, noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
