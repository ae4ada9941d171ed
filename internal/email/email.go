package email

import (
	"context"

	"github.com/rimjeddah/consulate-api/internal/kafka"
	"github.com/rs/zerolog"
)

// Sender turns notification events into applicant emails. Delivery is
// logged only until an SMTP relay is provisioned for the consulate.
type Sender struct {
	log zerolog.Logger
}

func NewSender(log zerolog.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.AppointmentEvent) error {
	switch event.Type {
	case kafka.EventAppointmentCreated:
		s.log.Info().
			Str("to", event.Email).
			Str("ref", event.Ref).
			Str("date", event.Date).
			Str("time", event.Time).
			Msg("send booking confirmation email")
	case kafka.EventStatusChanged:
		s.log.Info().
			Str("to", event.Email).
			Str("ref", event.Ref).
			Str("status", event.Status).
			Msg("send status update email")
	default:
		s.log.Warn().Str("type", event.Type).Msg("unknown notification event")
	}
	return nil
}
