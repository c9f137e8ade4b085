package registration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rollcall/internal/notify"
	"rollcall/internal/otp"
	"rollcall/internal/participant"
	"rollcall/internal/platform/logger"
	"rollcall/internal/platform/metrics"
	"rollcall/pkg/platform/sentinel"
)

// Service composes the participant store, code store, verifier, and
// notifiers into the registration flow. It is the only caller of the
// verification engine and the single place confirmation state is written
// back to storage.
type Service struct {
	participants participant.Store
	codes        otp.CodeStore
	verifier     *otp.Verifier
	email        notify.EmailSender
	sms          notify.SMSSender // nil when SMS is not configured
	welcome      chan<- Event

	codeLength   int
	resendWindow time.Duration

	log     *slog.Logger
	metrics *metrics.Metrics
}

// Options tunes code issuance; zero values fall back to defaults.
type Options struct {
	CodeLength   int
	ResendWindow time.Duration
}

func NewService(
	participants participant.Store,
	codes otp.CodeStore,
	verifier *otp.Verifier,
	email notify.EmailSender,
	sms notify.SMSSender,
	welcome chan<- Event,
	opts Options,
	log *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if opts.CodeLength < 1 {
		opts.CodeLength = otp.DefaultCodeLength
	}
	if opts.ResendWindow <= 0 {
		opts.ResendWindow = 60 * time.Second
	}
	return &Service{
		participants: participants,
		codes:        codes,
		verifier:     verifier,
		email:        email,
		sms:          sms,
		welcome:      welcome,
		codeLength:   opts.CodeLength,
		resendWindow: opts.ResendWindow,
		log:          log,
		metrics:      m,
	}
}

// Register creates the participant record, issues a one-time code, and sends
// it by email (and SMS when configured and a phone is present). The record is
// durable even when dispatch fails; the caller still gets the stored record
// and the participant can ask for a resend.
func (s *Service) Register(ctx context.Context, p participant.Participant) (participant.Participant, error) {
	created, err := s.participants.Create(ctx, p)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	s.metrics.ParticipantsCreated.Inc()
	s.log.Info("participant registered",
		slog.Int64("id", created.ID), slog.String("email", created.Email))

	s.issueCode(ctx, created)
	return created, nil
}

// Confirm verifies the submitted code. On success the participant record is
// durably marked confirmed and a welcome notification is queued for the
// background worker; neither step blocks or fails the positive result.
func (s *Service) Confirm(ctx context.Context, email, code string) (bool, error) {
	if !s.verifier.Verify(ctx, email, code) {
		s.metrics.VerifyTotal.WithLabelValues("fail").Inc()
		return false, nil
	}
	s.metrics.VerifyTotal.WithLabelValues("ok").Inc()

	p, err := s.participants.GetByEmail(ctx, email)
	if err != nil {
		s.log.Error("confirmed participant not found in store",
			slog.String("email", email), logger.Err(err))
		return true, nil
	}
	if err := s.participants.SetConfirmed(ctx, p.ID); err != nil {
		s.log.Error("persist confirmation failed",
			slog.Int64("id", p.ID), logger.Err(err))
		return true, nil
	}
	p.Confirmed = true

	select {
	case s.welcome <- Event{Participant: p}:
	default:
		s.log.Warn("welcome queue full, dropping notification", slog.Int64("id", p.ID))
		s.metrics.NotifyFailures.WithLabelValues("email").Inc()
	}

	s.log.Info("participant confirmed", slog.Int64("id", p.ID), slog.String("email", email))
	return true, nil
}

// Resend issues a fresh code for an existing unconfirmed participant,
// replacing (and thereby invalidating) the previous one. Repeat requests
// inside the resend window return sentinel.ErrThrottled.
func (s *Service) Resend(ctx context.Context, email string) error {
	p, err := s.participants.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("resend lookup: %w", err)
	}
	if p.Confirmed {
		return fmt.Errorf("participant %d already confirmed: %w", p.ID, sentinel.ErrInvalidState)
	}

	ok, err := s.codes.ReserveResend(ctx, email, s.resendWindow)
	if err != nil {
		return fmt.Errorf("resend reservation: %w", err)
	}
	if !ok {
		return fmt.Errorf("code recently sent to %q: %w", email, sentinel.ErrThrottled)
	}

	s.issueCode(ctx, p)
	return nil
}

// List returns all participants in backend enumeration order.
func (s *Service) List(ctx context.Context) ([]participant.Participant, error) {
	return s.participants.GetAll(ctx)
}

// Get returns a single participant by id.
func (s *Service) Get(ctx context.Context, id int64) (participant.Participant, error) {
	return s.participants.GetByID(ctx, id)
}

// Delete removes a participant, reporting whether a record existed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.participants.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("participant deleted", slog.Int64("id", id))
	}
	return deleted, nil
}

// issueCode generates, stores, and dispatches a fresh code. Dispatch failures
// are logged and counted, never propagated: the record already exists and the
// code can be re-sent.
func (s *Service) issueCode(ctx context.Context, p participant.Participant) {
	code, err := otp.Generate(s.codeLength)
	if err != nil {
		s.log.Error("code generation failed", slog.Int64("id", p.ID), logger.Err(err))
		return
	}
	if err := s.codes.Put(ctx, p.Email, code); err != nil {
		s.log.Error("code storage failed", slog.Int64("id", p.ID), logger.Err(err))
		return
	}
	s.metrics.CodesIssued.Inc()

	subject := "Your verification code"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour verification code is %s. It expires in 5 minutes.\n",
		p.FirstName, code)
	if err := s.email.Send(ctx, p.Email, subject, body); err != nil {
		s.log.Warn("verification email failed",
			slog.String("email", p.Email), logger.Err(err))
		s.metrics.NotifyFailures.WithLabelValues("email").Inc()
	}

	if s.sms != nil && p.Phone != "" {
		if err := s.sms.Send(ctx, p.Phone, "Your verification code: "+code); err != nil {
			s.log.Warn("verification sms failed",
				slog.String("phone", p.Phone), logger.Err(err))
			s.metrics.NotifyFailures.WithLabelValues("sms").Inc()
		}
	}
}
