package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"yatube-api/config"
)

// SendMail delivers a plain text email using SMTP settings from config.
func SendMail(to, subject, body string) error {
	cfg := config.Get()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}

	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = "Yatube"
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.SMTPFrom, fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return d.DialAndSend(m)
}

// SendPasswordResetMail mails the reset link for a previously issued token.
func SendPasswordResetMail(to, token string) error {
	cfg := config.Get()
	link := fmt.Sprintf("%s/auth/reset/confirm/?token=%s", cfg.SiteBaseURL, token)
	body := fmt.Sprintf(
		"You requested a password reset.\n\nFollow the link to choose a new password:\n%s\n\nThe link expires in %d minutes. If you did not request this, ignore the mail.",
		link, int(ResetTokenTTL.Minutes()),
	)
	return SendMail(to, "Password reset", body)
}
