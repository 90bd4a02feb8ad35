// Package service orchestrates payments and refunds against the QOS gateway:
// it resolves the carrier, builds the wire request, classifies the response
// and, for the asynchronous carrier, drives the confirmation poll.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"qosic/internal/carrier"
	"qosic/internal/gateway"
	"qosic/internal/payment/metrics"
	"qosic/internal/payment/models"
	"qosic/internal/payment/tracer"
	dErrors "qosic/pkg/domain-errors"
	"qosic/pkg/platform/clock"
)

// Service coordinates one payment or refund per call. It holds no per-call
// state, so a single instance serves concurrent callers; the profiles are
// immutable and shared read-only.
type Service struct {
	transport  gateway.Transport
	profiles   []*carrier.Profile
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	batchLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the default discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock swaps the time source, making poller timing deterministic in tests.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithMetrics installs Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer installs a tracer; the default records nothing.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithBatchLimit caps the concurrency of PayBatch. Default is 8.
func WithBatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

// New builds a payment service over the given transport and carrier profiles.
func New(transport gateway.Transport, profiles []*carrier.Profile, opts ...Option) (*Service, error) {
	if transport == nil {
		return nil, fmt.Errorf("gateway transport is required")
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("at least one carrier profile is required")
	}

	svc := &Service{
		transport:  transport,
		profiles:   profiles,
		clock:      clock.System{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     tracer.Noop{},
		batchLimit: 8,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Pay charges the payer's mobile-money account. The carrier is resolved from
// the phone prefix; for the asynchronous carrier a PENDING acceptance is
// followed by the bounded confirmation poll. Ambiguous gateway responses
// yield a FAILED Result, while credential, carrier-id, account and transport
// failures return typed errors: callers can always distinguish "payment
// failed" from "we could not even ask".
func (s *Service) Pay(ctx context.Context, payer models.Payer) (result *models.Result, err error) {
	profile, err := carrier.Resolve(payer.Phone, s.profiles)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "payment.pay",
		tracer.String("carrier", profile.Name()),
		tracer.String("amount", fmt.Sprintf("%d", payer.Amount)),
	)
	defer func() { span.End(err) }()

	reference := profile.NewReference()
	body := models.NewPaymentRequest(profile.ClientID(), reference, payer)

	resp, err := s.transport.Post(ctx, profile.PaymentPath(), body)
	if err != nil {
		return nil, err
	}
	verdict, err := gateway.Classify(profile, resp)
	if err != nil {
		return nil, err
	}

	status := models.StatusFailed
	httpStatus := resp.StatusCode
	switch verdict {
	case gateway.VerdictConfirmed:
		status = models.StatusConfirmed
	case gateway.VerdictPending:
		if profile.Async() {
			status, httpStatus, err = s.poll(ctx, profile, reference)
			if err != nil {
				return nil, err
			}
		}
	}

	result = &models.Result{
		Status:     status,
		Reference:  reference,
		Carrier:    profile.Name(),
		HTTPStatus: httpStatus,
	}
	if s.metrics != nil {
		s.metrics.RecordPayment(profile.Name(), string(status))
	}
	s.logger.InfoContext(ctx, "payment resolved",
		"carrier", profile.Name(),
		"reference", reference,
		"status", string(status),
		"http_status", httpStatus,
	)
	return result, nil
}

// Refund reverses an earlier payment on the named carrier. Only carriers
// exposing a refund endpoint accept the call; the outcome is resolved by a
// single classification, never by polling.
func (s *Service) Refund(ctx context.Context, reference, carrierName string) (result *models.Result, err error) {
	profile, err := carrier.ByName(carrierName, s.profiles)
	if err != nil {
		return nil, err
	}
	if !profile.SupportsRefund() {
		return nil, dErrors.New(dErrors.CodeOperationNotSupported,
			fmt.Sprintf("%s does not support refunds", profile.Name()))
	}
	if err := carrier.ValidateReference(reference); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid transaction reference")
	}

	ctx, span := s.tracer.Start(ctx, "payment.refund",
		tracer.String("carrier", profile.Name()),
	)
	defer func() { span.End(err) }()

	body := models.StatusRequest{ClientID: profile.ClientID(), Reference: reference}
	resp, err := s.transport.Post(ctx, profile.RefundPath(), body)
	if err != nil {
		return nil, err
	}
	verdict, err := gateway.Classify(profile, resp)
	if err != nil {
		return nil, err
	}

	status := models.StatusFailed
	if verdict == gateway.VerdictConfirmed {
		status = models.StatusConfirmed
	}
	result = &models.Result{
		Status:     status,
		Reference:  reference,
		Carrier:    profile.Name(),
		HTTPStatus: resp.StatusCode,
	}
	if s.metrics != nil {
		s.metrics.RecordRefund(profile.Name(), string(status))
	}
	s.logger.InfoContext(ctx, "refund resolved",
		"carrier", profile.Name(),
		"reference", reference,
		"status", string(status),
	)
	return result, nil
}
