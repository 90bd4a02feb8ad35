package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"qosic/internal/carrier"
	dErrors "qosic/pkg/domain-errors"
)

// Verdict is the business reading of a gateway response once the fixed HTTP
// status taxonomy has been ruled out.
type Verdict int

const (
	VerdictFailed Verdict = iota
	VerdictConfirmed
	VerdictPending
)

func (v Verdict) String() string {
	switch v {
	case VerdictConfirmed:
		return "confirmed"
	case VerdictPending:
		return "pending"
	default:
		return "failed"
	}
}

// envelope is the only part of the gateway body the classifier reads.
type envelope struct {
	ResponseCode *string `json:"responsecode"`
}

// responseCode extracts the gateway success code. A body that is not a JSON
// object degrades to a nil code: the HTTP exchange already succeeded, only
// the business outcome is indeterminate, so parsing never raises.
func responseCode(body []byte) *string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return env.ResponseCode
}

// Classify maps a gateway response to a verdict or a typed error, checked in
// this priority order: per-carrier invalid-id statuses (404 plus any alias
// such as MTN's 504), server errors, 401, 417, then the carrier-specific
// response code embedded in the body.
func Classify(p *carrier.Profile, resp *Response) (Verdict, error) {
	status := resp.StatusCode
	switch {
	case p.SignalsInvalidID(status):
		return VerdictFailed, dErrors.New(dErrors.CodeInvalidCarrierID,
			fmt.Sprintf("the %s client id was rejected by the gateway", p.Name()))
	case status >= http.StatusInternalServerError:
		return VerdictFailed, dErrors.New(dErrors.CodeGatewayUnavailable,
			fmt.Sprintf("the gateway answered %d", status))
	case status == http.StatusUnauthorized:
		return VerdictFailed, dErrors.New(dErrors.CodeInvalidCredentials,
			"the gateway rejected the server credentials")
	case status == http.StatusExpectationFailed:
		return VerdictFailed, dErrors.New(dErrors.CodeAccountNotFound,
			"no mobile-money account exists for this phone number")
	}

	code := responseCode(resp.Body)
	switch {
	case status == http.StatusAccepted && p.Async():
		return VerdictPending, nil
	case code != nil && p.PendingCode() != "" && *code == p.PendingCode():
		return VerdictPending, nil
	case status == http.StatusOK && code != nil && *code == p.SuccessCode():
		return VerdictConfirmed, nil
	}
	return VerdictFailed, nil
}
