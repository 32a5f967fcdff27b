package mail

import (
	"bytes"
	"html/template"
	"time"
)

var (
	invitationTmpl = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h2>You have been invited to EcoFit</h2>
  <p>{{if .InviterName}}{{.InviterName}} invited you{{else}}You were invited{{end}} to join as a <strong>{{.Role}}</strong>.</p>
  <p><a href="{{.AcceptURL}}">Create your account</a></p>
  <p>This link expires on {{.ExpiresAt.Format "2 January 2006 15:04 MST"}}.</p>
</body>
</html>`))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h2>Reset your password</h2>
  <p>Hi {{.Name}}, we received a request to reset your EcoFit password.</p>
  <p><a href="{{.ResetURL}}">Choose a new password</a></p>
  <p>The link is valid for {{.ValidFor}}. If you did not ask for this, ignore this email.</p>
</body>
</html>`))
)

// InvitationEmail holds the values rendered into an invitation.
type InvitationEmail struct {
	To          string
	InviterName string
	Role        string
	AcceptURL   string
	ExpiresAt   time.Time
}

// PasswordResetEmail holds the values rendered into a reset email.
type PasswordResetEmail struct {
	To       string
	Name     string
	ResetURL string
	ValidFor time.Duration
}

func RenderInvitation(data InvitationEmail) (Message, error) {
	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{To: data.To, Subject: "You're invited to EcoFit", HTML: buf.String()}, nil
}

func RenderPasswordReset(data PasswordResetEmail) (Message, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{To: data.To, Subject: "Reset your EcoFit password", HTML: buf.String()}, nil
}
