package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"kanbanly/config"
)

// Embedded email templates
var inviteTemplate = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Board Invitation</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .board-name { font-size: 20px; font-weight: bold; color: #3498db; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You have been invited to a board</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>{{.InviterName}} added you to the board <span class="board-name">{{.BoardName}}</span>.</p>
        <p>Log in to see its columns and tasks.</p>
    </div>

    <div class="footer">
        <p>© {{.Year}} Kanbanly. All rights reserved.</p>
    </div>
</body>
</html>`))

// SendBoardInviteEmail sends the invitation email for a board membership.
// It is a no-op when SMTP is not configured; callers treat it as
// best-effort and must not tie request success to it.
func SendBoardInviteEmail(toEmail, inviterName, boardName string) error {
	smtp := config.AppConfig.SMTP
	if smtp.Host == "" {
		return nil
	}

	var body bytes.Buffer
	err := inviteTemplate.Execute(&body, map[string]interface{}{
		"InviterName": inviterName,
		"BoardName":   boardName,
		"Year":        time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("failed to render invite email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtp.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("You were invited to \"%s\"", boardName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	return nil
}
