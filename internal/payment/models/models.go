// Package models holds the value objects exchanged with callers and the wire
// DTOs sent to the QOS gateway.
package models

import (
	"fmt"
	"regexp"
	"strconv"

	dErrors "qosic/pkg/domain-errors"
)

// Status is the terminal outcome of a payment or refund.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
)

// phoneFormat is the Benin numbering plan: country code 229 followed by an
// eight digit national number.
var phoneFormat = regexp.MustCompile(`^229\d{8}$`)

// Payer is a validated payment source. Constructing an invalid Payer fails
// immediately and never reaches the network.
type Payer struct {
	Phone     string
	Amount    int64 // minor currency units
	FirstName string
	LastName  string
}

// NewPayer validates the phone format and amount. Names are optional.
func NewPayer(phone string, amount int64, firstName, lastName string) (Payer, error) {
	if !phoneFormat.MatchString(phone) {
		return Payer{}, dErrors.New(dErrors.CodeInvalidPhone,
			fmt.Sprintf("phone %q does not match the 229XXXXXXXX format", phone))
	}
	if amount <= 0 {
		return Payer{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("amount must be positive, got %d", amount))
	}
	return Payer{Phone: phone, Amount: amount, FirstName: firstName, LastName: lastName}, nil
}

// PaymentRequest is the exact gateway wire body. Amount is always a decimal
// string, never a JSON number; empty names are omitted.
type PaymentRequest struct {
	ClientID  string `json:"clientid"`
	MSISDN    string `json:"msisdn"`
	Amount    string `json:"amount"`
	Reference string `json:"transref"`
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
}

// NewPaymentRequest assembles the wire body for one payment attempt with a
// freshly minted reference.
func NewPaymentRequest(clientID, reference string, payer Payer) PaymentRequest {
	return PaymentRequest{
		ClientID:  clientID,
		MSISDN:    payer.Phone,
		Amount:    strconv.FormatInt(payer.Amount, 10),
		Reference: reference,
		FirstName: payer.FirstName,
		LastName:  payer.LastName,
	}
}

// StatusRequest queries the state of an earlier payment, and doubles as the
// refund body: both reuse clientid plus transref.
type StatusRequest struct {
	ClientID  string `json:"clientid"`
	Reference string `json:"transref"`
}

// Result is the terminal outcome returned to the caller. HTTPStatus carries
// the last gateway status code for diagnostics, never the response body.
type Result struct {
	Status     Status
	Reference  string
	Carrier    string
	HTTPStatus int
}

// Confirmed reports whether the operation succeeded.
func (r Result) Confirmed() bool { return r.Status == StatusConfirmed }
