package service

import (
	"context"

	"qosic/internal/carrier"
	"qosic/internal/gateway"
	"qosic/internal/payment/models"
	"qosic/internal/payment/tracer"
	dErrors "qosic/pkg/domain-errors"
)

// poll drives the confirmation state machine for an accepted-but-unresolved
// payment: PENDING until the gateway confirms, an error surfaces, or a bound
// is hit. The loop always issues at least one status query, cancellation is
// observed at the top of every iteration and during the sleep, and a
// transport or credential failure discovered mid-poll propagates immediately
// instead of being retried against a broken connection.
func (s *Service) poll(ctx context.Context, profile *carrier.Profile, reference string) (status models.Status, httpStatus int, err error) {
	policy := profile.Poll()

	ctx, span := s.tracer.Start(ctx, "payment.poll",
		tracer.String("carrier", profile.Name()),
	)
	defer func() { span.End(err) }()

	body := models.StatusRequest{ClientID: profile.ClientID(), Reference: reference}
	start := s.clock.Now()
	deadline := start.Add(policy.Timeout)
	attempts := 0
	defer func() {
		if s.metrics != nil {
			s.metrics.ObservePollAttempts(profile.Name(), attempts)
		}
	}()

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", 0, dErrors.Wrap(ctxErr, dErrors.CodeCancelled, "confirmation poll cancelled")
		}

		resp, postErr := s.transport.Post(ctx, profile.StatusPath(), body)
		if postErr != nil {
			return "", 0, postErr
		}
		attempts++

		verdict, classifyErr := gateway.Classify(profile, resp)
		if classifyErr != nil {
			// Credential and server errors are not swallowed mid-poll.
			return "", 0, classifyErr
		}
		if verdict == gateway.VerdictConfirmed {
			s.logger.DebugContext(ctx, "payment confirmed",
				"carrier", profile.Name(), "reference", reference, "attempts", attempts)
			return models.StatusConfirmed, resp.StatusCode, nil
		}
		httpStatus = resp.StatusCode

		// Hard attempt cap, independent of wall clock.
		if policy.MaxAttempts > 0 && attempts >= policy.MaxAttempts {
			s.logger.DebugContext(ctx, "poll attempt limit reached",
				"carrier", profile.Name(), "reference", reference, "attempts", attempts)
			return models.StatusFailed, httpStatus, nil
		}

		if sleepErr := s.clock.Sleep(ctx, policy.Step); sleepErr != nil {
			return "", 0, dErrors.Wrap(sleepErr, dErrors.CodeCancelled, "confirmation poll cancelled")
		}

		if !s.clock.Now().Before(deadline) {
			s.logger.DebugContext(ctx, "poll timeout reached",
				"carrier", profile.Name(), "reference", reference, "attempts", attempts)
			return models.StatusFailed, httpStatus, nil
		}
	}
}
