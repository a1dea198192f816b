// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package captcha verifies the optional captcha token accepted by
// POST /session. The default build wires NoopVerifier so the ambient
// stack stands up without reaching any external service; operators who
// configure CAPTCHA_SECRET get RecaptchaVerifier instead.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Verifier checks a captcha response token submitted alongside a
// /session request. An empty token is passed through when no provider
// is configured.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// NoopVerifier always succeeds; used when CAPTCHA_SECRET is unset.
type NoopVerifier struct{}

func (NoopVerifier) Verify(ctx context.Context, token string) (bool, error) { return true, nil }

// RecaptchaVerifier checks a token against Google's siteverify endpoint,
// the de-facto shape shared by every "secret + token -> bool" captcha
// provider (hCaptcha and Turnstile use the same request/response shape).
type RecaptchaVerifier struct {
	Secret     string
	Endpoint   string
	HTTPClient *http.Client
}

// NewRecaptchaVerifier builds a verifier against the standard
// siteverify endpoint with a 5s HTTP timeout.
func NewRecaptchaVerifier(secret string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		Secret:     secret,
		Endpoint:   "https://www.google.com/recaptcha/api/siteverify",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type siteverifyResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"error-codes"`
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	form := url.Values{"secret": {v.Secret}, "response": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build captcha request: %w", err)
	}
	req.URL.RawQuery = form.Encode()

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha request: %w", err)
	}
	defer resp.Body.Close()

	var parsed siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode captcha response: %w", err)
	}
	return parsed.Success, nil
}
