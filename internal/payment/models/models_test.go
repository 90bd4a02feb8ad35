package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "qosic/pkg/domain-errors"
)

func TestNewPayer(t *testing.T) {
	p, err := NewPayer("22991617451", 2000, "User", "TEST")
	require.NoError(t, err)
	assert.Equal(t, "22991617451", p.Phone)
	assert.Equal(t, int64(2000), p.Amount)
}

func TestNewPayerNamesOptional(t *testing.T) {
	_, err := NewPayer("22963588213", 500, "", "")
	assert.NoError(t, err)
}

func TestNewPayerRejectsBadPhones(t *testing.T) {
	cases := []string{
		"",
		"91617451",            // missing country code
		"22891617451",         // wrong country code
		"2299161745",          // national number too short
		"229916174512",        // national number too long
		"+22991617451",        // not normalized
		"22991617 51",         // non-digit
	}
	for _, phone := range cases {
		t.Run(phone, func(t *testing.T) {
			_, err := NewPayer(phone, 1000, "", "")
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidPhone), "phone %q must be rejected", phone)
		})
	}
}

func TestNewPayerRejectsNonPositiveAmount(t *testing.T) {
	_, err := NewPayer("22991617451", 0, "", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = NewPayer("22991617451", -500, "", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// The gateway wire contract: lowercase keys, amount as a decimal string,
// names omitted when empty.
func TestPaymentRequestWireFormat(t *testing.T) {
	payer, err := NewPayer("22991617451", 2000, "User", "TEST")
	require.NoError(t, err)

	raw, err := json.Marshal(NewPaymentRequest("cid1", "ref1234", payer))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"clientid":"cid1","msisdn":"22991617451","amount":"2000","transref":"ref1234","firstname":"User","lastname":"TEST"}`,
		string(raw))
}

func TestPaymentRequestOmitsEmptyNames(t *testing.T) {
	payer, err := NewPayer("22963588213", 150, "", "")
	require.NoError(t, err)

	raw, err := json.Marshal(NewPaymentRequest("cid1", "ref1234", payer))
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.NotContains(t, keys, "firstname")
	assert.NotContains(t, keys, "lastname")
	assert.Equal(t, "150", keys["amount"], "amount must be serialized as a string")
}

func TestStatusRequestWireFormat(t *testing.T) {
	raw, err := json.Marshal(StatusRequest{ClientID: "cid1", Reference: "ref1234"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientid":"cid1","transref":"ref1234"}`, string(raw))
}

func TestResultConfirmed(t *testing.T) {
	assert.True(t, Result{Status: StatusConfirmed}.Confirmed())
	assert.False(t, Result{Status: StatusFailed}.Confirmed())
}
