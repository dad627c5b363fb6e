package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/glowdesk/salon-api/internal/email"
	"github.com/glowdesk/salon-api/internal/model"
	"github.com/glowdesk/salon-api/internal/repository"
	"github.com/glowdesk/salon-api/internal/timeslot"
)

// Service sends booking lifecycle emails to customers. Delivery is
// best-effort: a failed send is logged and reported but never blocks the
// booking path.
type Service struct {
	emailSvc  email.Service
	providers repository.ProviderRepository
}

func NewService(emailSvc email.Service, providers repository.ProviderRepository) *Service {
	return &Service{
		emailSvc:  emailSvc,
		providers: providers,
	}
}

func (s *Service) BookingCreated(ctx context.Context, booking *model.Booking) error {
	if booking.CustomerEmail == "" {
		return nil
	}
	providerName := s.providerName(ctx, booking)
	subject := "Your booking is confirmed pending approval"
	body := fmt.Sprintf(
		"Your appointment with %s on %s at %s has been received.\nServices: %s",
		providerName,
		booking.Date.Format(timeslot.DateLayout),
		timeslot.FormatClock(booking.StartMinute),
		strings.Join(booking.Services, ", "),
	)
	return s.emailSvc.Send(ctx, booking.CustomerEmail, subject, body)
}

func (s *Service) BookingCancelled(ctx context.Context, booking *model.Booking) error {
	if booking.CustomerEmail == "" {
		return nil
	}
	providerName := s.providerName(ctx, booking)
	subject := "Your booking was cancelled"
	body := fmt.Sprintf(
		"Your appointment with %s on %s at %s has been cancelled.",
		providerName,
		booking.Date.Format(timeslot.DateLayout),
		timeslot.FormatClock(booking.StartMinute),
	)
	if booking.CancelReason != nil && *booking.CancelReason != "" {
		body += "\nReason: " + *booking.CancelReason
	}
	return s.emailSvc.Send(ctx, booking.CustomerEmail, subject, body)
}

func (s *Service) providerName(ctx context.Context, booking *model.Booking) string {
	provider, err := s.providers.Get(ctx, booking.ProviderID)
	if err != nil {
		log.Debug().Err(err).Str("provider_id", booking.ProviderID.String()).Msg("provider lookup for notification failed")
		return "your salonist"
	}
	return provider.Name
}
