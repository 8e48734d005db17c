// Package notification sends templated notices, currently the welcome email
// that follows a completed signup.
//
// A NotificationManager owns the templates and hands rendered notices to a
// Notifier. EmailNotifier delivers over SMTP; MockNotifier records notices
// for tests.
//
//	nm, err := notification.NewNotificationManagerWithOptions(
//	    notification.WithSMTP(smtpConfig),
//	    notification.WithWelcomeTemplates(),
//	)
//	err = nm.Send(ctx, notification.WelcomeClient, notification.NotificationData{
//	    To:   "ana@example.com",
//	    Data: map[string]string{"FirstName": "Ana", "CompanyName": "Acme"},
//	})
package notification
