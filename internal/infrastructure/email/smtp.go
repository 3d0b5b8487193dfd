package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"instra/internal/shared/config"
)

// SMTPEmailService sends the onboarding mails. All sends are best-effort;
// callers log failures and move on, they never roll back business state.
type SMTPEmailService struct {
	cfg      *config.EmailConfig
	dialer   *gomail.Dialer
	renderer *renderer
}

func NewSMTPEmailService(cfg *config.EmailConfig) *SMTPEmailService {
	return &SMTPEmailService{
		cfg:      cfg,
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		renderer: newRenderer(),
	}
}

// SendInviteEmail delivers the registration link to an invited person.
func (s *SMTPEmailService) SendInviteEmail(to, name, roleName, token string, expiresAt time.Time) error {
	link := fmt.Sprintf("%s/onboarding/register?token=%s", s.cfg.FrontendBaseURL, token)

	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}

	body := fmt.Sprintf(`## You're invited

%s,

You have been invited to join as **%s**. Complete your registration using the link below:

[Complete registration](%s)

Or copy this URL into your browser:

%s

The link expires on %s. If you weren't expecting this invitation, you can ignore this email.`,
		greeting, roleName, link, link, expiresAt.Format("Jan 2, 2006 15:04 MST"))

	return s.send(to, "Complete your registration", body)
}

// SendSendBackEmail tells the invitee their submission needs correction and
// carries a fresh registration link.
func (s *SMTPEmailService) SendSendBackEmail(to, name, reason, token string) error {
	link := fmt.Sprintf("%s/onboarding/register?token=%s", s.cfg.FrontendBaseURL, token)

	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}

	body := fmt.Sprintf(`## Your registration needs changes

%s,

Your registration was reviewed and sent back for correction:

> %s

Please update your details using the link below:

[Update registration](%s)`,
		greeting, reason, link)

	return s.send(to, "Your registration needs changes", body)
}

// SendWelcomeEmail delivers the initial credentials after provisioning.
func (s *SMTPEmailService) SendWelcomeEmail(to, name, displayID, tempPassword string) error {
	greeting := "Welcome"
	if name != "" {
		greeting = "Welcome " + name
	}

	body := fmt.Sprintf(`## Your account is ready

%s,

Your account has been created.

- **Login email**: %s
- **ID**: %s
- **Temporary password**: %s

You will be asked to change the password on first login.`,
		greeting, to, displayID, tempPassword)

	return s.send(to, "Your account is ready", body)
}

func (s *SMTPEmailService) send(to, subject, markdown string) error {
	htmlBody, err := s.renderer.Render(markdown)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.FromAddress, s.cfg.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", markdown)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
