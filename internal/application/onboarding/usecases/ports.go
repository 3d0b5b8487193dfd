package usecases

import "time"

// TokenIssuer signs and verifies the registration links embedded in
// invite emails.
type TokenIssuer interface {
	Generate(rid, nonce string) (string, error)
	Verify(token string) (rid string, nonce string, err error)
}

// Mailer sends the onboarding emails. All sends are best-effort.
type Mailer interface {
	SendInviteEmail(to, name, roleName, token string, expiresAt time.Time) error
	SendSendBackEmail(to, name, reason, token string) error
	SendWelcomeEmail(to, name, displayID, tempPassword string) error
}
