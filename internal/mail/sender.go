package mail

import (
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/config"
)

// Sender delivers account emails. The HTTP layer never sees a delivery
// failure; callers decide whether to surface or swallow it.
type Sender interface {
	SendPasswordReset(to, link string) error
}

type SMTPSender struct {
	cfg *config.Config
}

func NewSender(cfg *config.Config) Sender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendPasswordReset(to, link string) error {
	msg := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: Password reset\r\n\r\nUse the link below to reset your password:\r\n%s\r\n",
		to, s.cfg.SMTPFrom, link))

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	if err := smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, msg); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}
