package notice

import (
	"embed"
	"log/slog"

	"github.com/spendwise/spendwise/pkg/notification"
)

const (
	// TwofaCodeNotice delivers a one-time verification code for login or setup.
	TwofaCodeNotice notification.NoticeType = "twofa_code"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile("templates/" + filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager creates a notification manager with the email
// notifier and all notice templates registered.
func NewNotificationManager(smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}

	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	err = notificationManager.RegisterNotification(TwofaCodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your 2FA Verification Code",
		Html:    loadTemplate("email/twofa_code.tmpl"),
	})
	if err != nil {
		slog.Error("failed to register 2FA code notification", "error", err)
		return nil, err
	}

	return notificationManager, nil
}
