// Package carrier models the two mobile-money carriers aggregated by the QOS
// gateway. The behavioral differences between them (sync vs async
// confirmation, refund support, success codes) are plain data on the Profile,
// not distinct code paths.
package carrier

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	dErrors "qosic/pkg/domain-errors"
)

// Gateway paths published by QOS for each carrier.
const (
	MTNPaymentPath  = "/QosicBridge/user/requestpayment"
	MTNStatusPath   = "/QosicBridge/user/gettransactionstatus"
	MTNRefundPath   = "/QosicBridge/user/refund"
	MoovPaymentPath = "/QosicBridge/user/requestpaymentmv"
)

var (
	mtnPrefixes  = []string{"51", "52", "53", "61", "62", "66", "67", "69", "90", "91", "96", "97"}
	moovPrefixes = []string{"55", "60", "63", "64", "65", "68", "94", "95", "98", "99"}
)

// ReferenceFactory mints opaque transaction references. Output must be a
// 7-16 character alphanumeric string; anything else is rejected when the
// profile is built, so a bad factory can never corrupt live traffic.
type ReferenceFactory func() string

// DefaultReferenceFactory derives a 12-character alphanumeric reference from
// a random UUID.
func DefaultReferenceFactory() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:12]
}

// PollPolicy bounds the confirmation polling loop of an asynchronous carrier.
// MaxAttempts of zero means attempts are bounded by Timeout alone.
type PollPolicy struct {
	Step        time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

func (p PollPolicy) validate() error {
	if p.Step <= 0 {
		return fmt.Errorf("poll step must be positive, got %s", p.Step)
	}
	if p.Step >= p.Timeout {
		return fmt.Errorf("poll step must be inferior to timeout: %s >= %s", p.Step, p.Timeout)
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative, got %d", p.MaxAttempts)
	}
	if p.MaxAttempts > 0 && time.Duration(p.MaxAttempts)*p.Step > p.Timeout {
		return fmt.Errorf("max attempts exceed timeout: %d * %s > %s", p.MaxAttempts, p.Step, p.Timeout)
	}
	return nil
}

// Config describes a carrier profile before validation.
type Config struct {
	Name        string
	ClientID    string
	Prefixes    []string
	PaymentPath string
	StatusPath  string
	RefundPath  string

	// SuccessCode is the gateway response code meaning "confirmed" for this
	// carrier ("00" for MTN status queries, "0" for Moov payments).
	SuccessCode string
	// PendingCode marks an accepted-but-unresolved payment ("01" for MTN).
	PendingCode string

	// InvalidIDStatuses are HTTP statuses the gateway uses to signal a bad
	// client id for this carrier. Defaults to {404}; MTN also answers 504.
	InvalidIDStatuses []int

	// Poll is set only for the carrier whose payment acceptance is
	// asynchronous; it requires a StatusPath.
	Poll *PollPolicy

	ReferenceFactory ReferenceFactory
}

// Profile is an immutable, validated carrier identity. Profiles are
// shared-read across concurrent payments and are never mutated after New.
type Profile struct {
	name              string
	clientID          string
	prefixes          []string
	paymentPath       string
	statusPath        string
	refundPath        string
	successCode       string
	pendingCode       string
	invalidIDStatuses []int
	poll              *PollPolicy
	refFactory        ReferenceFactory
}

// New validates cfg and builds an immutable Profile. All configuration
// mistakes fail here, before any request is issued.
func New(cfg Config) (*Profile, error) {
	if cfg.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "carrier name is required")
	}
	if cfg.ClientID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "carrier client id is required")
	}
	if len(cfg.Prefixes) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "carrier needs at least one phone prefix")
	}
	for _, p := range cfg.Prefixes {
		if len(p) != 2 {
			return nil, dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("carrier prefixes must be two digits, got %q", p))
		}
	}
	if cfg.PaymentPath == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "carrier payment path is required")
	}
	if cfg.SuccessCode == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "carrier success code is required")
	}
	if cfg.Poll != nil {
		if err := cfg.Poll.validate(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid poll policy")
		}
		if cfg.StatusPath == "" {
			return nil, dErrors.New(dErrors.CodeInvalidInput,
				"a polled carrier needs a payment status path")
		}
	}

	factory := cfg.ReferenceFactory
	if factory == nil {
		factory = DefaultReferenceFactory
	}
	// Probe the factory once up front instead of per request.
	if err := ValidateReference(factory()); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidReferenceFactory,
			"reference factory produces invalid references")
	}

	invalidID := cfg.InvalidIDStatuses
	if len(invalidID) == 0 {
		invalidID = []int{http.StatusNotFound}
	}

	var poll *PollPolicy
	if cfg.Poll != nil {
		p := *cfg.Poll
		poll = &p
	}

	return &Profile{
		name:              cfg.Name,
		clientID:          cfg.ClientID,
		prefixes:          append([]string(nil), cfg.Prefixes...),
		paymentPath:       cfg.PaymentPath,
		statusPath:        cfg.StatusPath,
		refundPath:        cfg.RefundPath,
		successCode:       cfg.SuccessCode,
		pendingCode:       cfg.PendingCode,
		invalidIDStatuses: invalidID,
		poll:              poll,
		refFactory:        factory,
	}, nil
}

// Option tweaks a preset carrier configuration before validation.
type Option func(*Config)

// WithPollPolicy overrides the preset polling bounds.
func WithPollPolicy(p PollPolicy) Option {
	return func(c *Config) { c.Poll = &p }
}

// WithReferenceFactory swaps the transaction reference supplier.
func WithReferenceFactory(f ReferenceFactory) Option {
	return func(c *Config) { c.ReferenceFactory = f }
}

// WithPrefixes overrides the owned phone prefixes.
func WithPrefixes(prefixes ...string) Option {
	return func(c *Config) { c.Prefixes = prefixes }
}

// MTN builds the MTN Benin profile. MTN accepts payments asynchronously, so
// the profile carries a poll policy, a status path and refund support. The
// gateway has been observed answering 504 for a bad MTN client id.
func MTN(clientID string, opts ...Option) (*Profile, error) {
	cfg := Config{
		Name:              "MTN",
		ClientID:          clientID,
		Prefixes:          mtnPrefixes,
		PaymentPath:       MTNPaymentPath,
		StatusPath:        MTNStatusPath,
		RefundPath:        MTNRefundPath,
		SuccessCode:       "00",
		PendingCode:       "01",
		InvalidIDStatuses: []int{http.StatusNotFound, http.StatusGatewayTimeout},
		Poll: &PollPolicy{
			Step:    10 * time.Second,
			Timeout: 2 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

// Moov builds the Moov Benin profile. Moov confirms payments in the initial
// response and offers no refund endpoint.
func Moov(clientID string, opts ...Option) (*Profile, error) {
	cfg := Config{
		Name:        "MOOV",
		ClientID:    clientID,
		Prefixes:    moovPrefixes,
		PaymentPath: MoovPaymentPath,
		SuccessCode: "0",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

func (p *Profile) Name() string        { return p.name }
func (p *Profile) ClientID() string    { return p.clientID }
func (p *Profile) PaymentPath() string { return p.paymentPath }
func (p *Profile) StatusPath() string  { return p.statusPath }
func (p *Profile) RefundPath() string  { return p.refundPath }
func (p *Profile) SuccessCode() string { return p.successCode }
func (p *Profile) PendingCode() string { return p.pendingCode }

// Async reports whether payment acceptance only signals "accepted" and the
// real outcome must be polled.
func (p *Profile) Async() bool { return p.poll != nil }

// Poll returns a copy of the poll policy; nil for synchronous carriers.
func (p *Profile) Poll() *PollPolicy {
	if p.poll == nil {
		return nil
	}
	policy := *p.poll
	return &policy
}

// SupportsRefund reports whether the carrier exposes a refund endpoint.
func (p *Profile) SupportsRefund() bool { return p.refundPath != "" }

// OwnsPrefix reports whether the two-digit national prefix belongs to this carrier.
func (p *Profile) OwnsPrefix(prefix string) bool {
	for _, own := range p.prefixes {
		if own == prefix {
			return true
		}
	}
	return false
}

// SignalsInvalidID reports whether the HTTP status is this carrier's way of
// saying the client id is wrong.
func (p *Profile) SignalsInvalidID(status int) bool {
	for _, s := range p.invalidIDStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// NewReference mints a fresh transaction reference for one payment or refund
// attempt. References are never reused.
func (p *Profile) NewReference() string { return p.refFactory() }

// ValidateReference checks the 7-16 character alphanumeric contract for
// transaction references.
func ValidateReference(ref string) error {
	if len(ref) <= 6 {
		return fmt.Errorf("reference %q is too short", ref)
	}
	if len(ref) > 16 {
		return fmt.Errorf("reference %q is too long", ref)
	}
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return fmt.Errorf("reference %q contains disallowed character %q", ref, r)
		}
	}
	return nil
}
