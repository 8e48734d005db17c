package notification

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailNotifier_BuildMessage(t *testing.T) {
	notifier, err := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@example.com"})
	require.NoError(t, err)

	msg, err := notifier.BuildMessage(NotificationData{
		To:   "ana@example.com",
		Data: map[string]string{"FirstName": "Ana", "CompanyName": "Acme"},
	}, NoticeTemplate{
		Subject: "Welcome",
		Text:    "Hi {{.FirstName}} from {{.CompanyName}}",
		Html:    "<p>Hi {{.FirstName}}</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Welcome")
	assert.Contains(t, raw, "Hi Ana from Acme")
	assert.Contains(t, raw, "<p>Hi Ana</p>")
}

func TestEmailNotifier_SubjectOverride(t *testing.T) {
	notifier, err := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@example.com"})
	require.NoError(t, err)

	msg, err := notifier.BuildMessage(NotificationData{To: "ana@example.com", Subject: "Custom"},
		NoticeTemplate{Subject: "Default", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Custom"}, msg.GetGenHeader("Subject"))
}

func TestEmailNotifier_RequiresRecipient(t *testing.T) {
	notifier, err := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@example.com"})
	require.NoError(t, err)

	_, err = notifier.BuildMessage(NotificationData{}, NoticeTemplate{Text: "body"})
	assert.Error(t, err)
}
