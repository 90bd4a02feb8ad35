package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"qosic/internal/carrier"
	"qosic/internal/gateway"
	"qosic/internal/gateway/mocks"
	"qosic/internal/payment/models"
	dErrors "qosic/pkg/domain-errors"
	"qosic/pkg/platform/clock"
)

type pollFixture struct {
	transport *mocks.MockTransport
	clock     *clock.Manual
	profile   *carrier.Profile
	svc       *Service
}

func newPollFixture(t *testing.T, policy carrier.PollPolicy) *pollFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	manual := clock.NewManual(time.Unix(1756400000, 0))

	profile, err := carrier.MTN("mtn-client-id", carrier.WithPollPolicy(policy))
	require.NoError(t, err)

	svc, err := New(transport, []*carrier.Profile{profile}, WithClock(manual))
	require.NoError(t, err)

	return &pollFixture{transport: transport, clock: manual, profile: profile, svc: svc}
}

func pending() *gateway.Response {
	return &gateway.Response{StatusCode: 200, Body: []byte(`{"responsecode":"01"}`)}
}

func confirmed() *gateway.Response {
	return &gateway.Response{StatusCode: 200, Body: []byte(`{"responsecode":"00"}`)}
}

func TestPollConfirmsOnFirstQuery(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{Step: 10 * time.Second, Timeout: time.Minute})

	f.transport.EXPECT().
		Post(gomock.Any(), carrier.MTNStatusPath,
			models.StatusRequest{ClientID: "mtn-client-id", Reference: "testref01"}).
		Return(confirmed(), nil)

	status, httpStatus, err := f.svc.poll(context.Background(), f.profile, "testref01")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, status)
	assert.Equal(t, 200, httpStatus)
	assert.Zero(t, f.clock.Sleeps())
}

func TestPollAlwaysPendingFailsAtTimeout(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{Step: 10 * time.Second, Timeout: time.Minute})

	// 60s of budget at a 10s step: six queries, then the deadline.
	f.transport.EXPECT().
		Post(gomock.Any(), carrier.MTNStatusPath, gomock.Any()).
		Return(pending(), nil).
		Times(6)

	status, httpStatus, err := f.svc.poll(context.Background(), f.profile, "testref01")
	require.NoError(t, err, "exhausting the poll budget is an outcome, not an error")
	assert.Equal(t, models.StatusFailed, status)
	assert.Equal(t, 200, httpStatus)
	assert.Equal(t, 6, f.clock.Sleeps())
}

func TestPollAttemptCapBeatsTimeout(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{
		Step: 10 * time.Second, Timeout: time.Minute, MaxAttempts: 3,
	})

	f.transport.EXPECT().
		Post(gomock.Any(), carrier.MTNStatusPath, gomock.Any()).
		Return(pending(), nil).
		Times(3)

	status, _, err := f.svc.poll(context.Background(), f.profile, "testref01")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status)
	assert.Equal(t, 2, f.clock.Sleeps(), "the cap is checked before sleeping, not after")
}

func TestPollIssuesAtLeastOneQuery(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{
		Step: 10 * time.Second, Timeout: time.Minute, MaxAttempts: 1,
	})

	f.transport.EXPECT().
		Post(gomock.Any(), carrier.MTNStatusPath, gomock.Any()).
		Return(pending(), nil)

	status, _, err := f.svc.poll(context.Background(), f.profile, "testref01")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status)
	assert.Zero(t, f.clock.Sleeps())
}

func TestPollCredentialErrorPropagates(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{Step: 10 * time.Second, Timeout: time.Minute})

	f.transport.EXPECT().
		Post(gomock.Any(), carrier.MTNStatusPath, gomock.Any()).
		Return(&gateway.Response{StatusCode: 401}, nil)

	_, _, err := f.svc.poll(context.Background(), f.profile, "testref01")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials),
		"a credential failure mid-poll must not be retried")
}

func TestPollTransportErrorPropagates(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{Step: 10 * time.Second, Timeout: time.Minute})

	gomock.InOrder(
		f.transport.EXPECT().
			Post(gomock.Any(), carrier.MTNStatusPath, gomock.Any()).
			Return(pending(), nil),
		f.transport.EXPECT().
			Post(gomock.Any(), carrier.MTNStatusPath, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeRequestFailed, "connection reset")),
	)

	_, _, err := f.svc.poll(context.Background(), f.profile, "testref01")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRequestFailed))
}

func TestPollCancelledBeforeFirstQuery(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{Step: 10 * time.Second, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := f.svc.poll(ctx, f.profile, "testref01")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCancelled))
}

func TestPollCancelledDuringWait(t *testing.T) {
	f := newPollFixture(t, carrier.PollPolicy{Step: 10 * time.Second, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	f.transport.EXPECT().
		Post(gomock.Any(), carrier.MTNStatusPath, gomock.Any()).
		DoAndReturn(func(context.Context, string, any) (*gateway.Response, error) {
			cancel()
			return pending(), nil
		})

	_, _, err := f.svc.poll(ctx, f.profile, "testref01")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCancelled),
		"cancellation is reported as cancelled, never as a poll timeout")
}
