package email

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender delivers one-time passwords. Actual mail transport is an
// external collaborator; the core only depends on this interface.
type Sender interface {
	SendOTP(ctx context.Context, tenantID, recipient, code string) error
}

// LogSender writes the OTP to the log instead of sending mail. Default
// for development deployments.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendOTP(_ context.Context, tenantID, recipient, code string) error {
	s.log.Info().
		Str("tenant_id", tenantID).
		Str("recipient", recipient).
		Str("code", code).
		Msg("OTP email (log sender)")
	return nil
}
