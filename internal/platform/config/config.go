package config

import (
	"os"
	"strconv"
	"time"
)

// Gateway captures everything the process needs to talk to the QOS bridge.
type Gateway struct {
	Addr         string
	BaseURL      string
	Login        string
	Password     string
	MTNClientID  string
	MoovClientID string

	PollStep        time.Duration
	PollTimeout     time.Duration
	PollMaxAttempts int
}

// Defaults mirror the gateway's published polling guidance.
var (
	DefaultPollStep    = 10 * time.Second
	DefaultPollTimeout = 2 * time.Minute
)

// FromEnv builds a Gateway config from environment variables so main stays lean.
func FromEnv() Gateway {
	addr := os.Getenv("QOSIC_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	baseURL := os.Getenv("QOSIC_BASE_URL")
	if baseURL == "" {
		baseURL = "https://qosic.net:8443"
	}

	step := DefaultPollStep
	if v := os.Getenv("QOSIC_POLL_STEP"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			step = d
		}
	}
	timeout := DefaultPollTimeout
	if v := os.Getenv("QOSIC_POLL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}
	maxAttempts := 0
	if v := os.Getenv("QOSIC_POLL_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxAttempts = n
		}
	}

	return Gateway{
		Addr:            addr,
		BaseURL:         baseURL,
		Login:           os.Getenv("QOSIC_LOGIN"),
		Password:        os.Getenv("QOSIC_PASSWORD"),
		MTNClientID:     os.Getenv("QOSIC_MTN_CLIENT_ID"),
		MoovClientID:    os.Getenv("QOSIC_MOOV_CLIENT_ID"),
		PollStep:        step,
		PollTimeout:     timeout,
		PollMaxAttempts: maxAttempts,
	}
}
