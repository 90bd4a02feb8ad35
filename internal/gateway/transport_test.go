package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"qosic/internal/gateway"
	"qosic/internal/payment/models"
	dErrors "qosic/pkg/domain-errors"
)

type recordingObserver struct {
	mu        sync.Mutex
	sent      []string
	received  []string
	lastCode  int
	lastTaken time.Duration
}

func (o *recordingObserver) RequestSent(_ context.Context, method, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, method+" "+path)
}

func (o *recordingObserver) ResponseReceived(_ context.Context, method, path string, status int, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.received = append(o.received, method+" "+path)
	o.lastCode = status
	o.lastTaken = elapsed
}

type ClientSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) TestPostCarriesAuthAndWireBody() {
	var gotAuthUser, gotAuthPass, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		s.Require().NoError(json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"responsecode":"0"}`))
	}))
	defer srv.Close()

	client, err := gateway.NewClient(srv.URL, "server-login", "server-pass")
	s.Require().NoError(err)

	payer, err := models.NewPayer("22963588213", 150, "User", "")
	s.Require().NoError(err)

	resp, err := client.Post(context.Background(), "/QosicBridge/user/requestpaymentmv",
		models.NewPaymentRequest("moov-client-id", "ref1234", payer))
	s.Require().NoError(err)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"responsecode":"0"}`, string(resp.Body))

	s.Equal("server-login", gotAuthUser)
	s.Equal("server-pass", gotAuthPass)
	s.Equal("application/json", gotContentType)
	s.Equal(map[string]any{
		"clientid":  "moov-client-id",
		"msisdn":    "22963588213",
		"amount":    "150",
		"transref":  "ref1234",
		"firstname": "User",
	}, gotBody)
}

func (s *ClientSuite) TestPostNotifiesObserver() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client, err := gateway.NewClient(srv.URL, "l", "p", gateway.WithObserver(obs))
	s.Require().NoError(err)

	_, err = client.Post(context.Background(), "/QosicBridge/user/requestpayment", map[string]string{})
	s.Require().NoError(err)

	s.Equal([]string{"POST /QosicBridge/user/requestpayment"}, obs.sent)
	s.Equal([]string{"POST /QosicBridge/user/requestpayment"}, obs.received)
	s.Equal(http.StatusAccepted, obs.lastCode)
}

func (s *ClientSuite) TestHTTPErrorStatusesAreNotTransportErrors() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := gateway.NewClient(srv.URL, "l", "p")
	s.Require().NoError(err)

	resp, err := client.Post(context.Background(), "/x", map[string]string{})
	s.Require().NoError(err, "a delivered response is a successful Post, whatever its status")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *ClientSuite) TestNetworkFailureIsRequestFailed() {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := gateway.NewClient(url, "l", "p")
	s.Require().NoError(err)

	_, err = client.Post(context.Background(), "/x", map[string]string{})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRequestFailed))
}

func (s *ClientSuite) TestBreakerOpensAfterConsecutiveFailures() {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := gateway.NewClient(url, "l", "p")
	s.Require().NoError(err)

	// gobreaker trips after more than five consecutive failures.
	for i := 0; i < 6; i++ {
		_, err = client.Post(context.Background(), "/x", map[string]string{})
		s.Require().Error(err)
	}

	_, err = client.Post(context.Background(), "/x", map[string]string{})
	s.True(dErrors.HasCode(err, dErrors.CodeRequestFailed))
	s.ErrorContains(err, "circuit open")
}

func (s *ClientSuite) TestMissingBaseURL() {
	_, err := gateway.NewClient("", "l", "p")
	s.Error(err)
}
