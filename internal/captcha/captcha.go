// Package captcha verifies client captcha tokens against a
// reCAPTCHA-compatible verification endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bizportal/internal/domain"
)

// Verifier posts tokens to the configured verify endpoint. An empty secret
// disables verification, which keeps local development and demo deployments
// working without captcha credentials.
type Verifier struct {
	Secret    string
	VerifyURL string
	Client    *http.Client
}

func New(secret, verifyURL string) *Verifier {
	return &Verifier{
		Secret:    secret,
		VerifyURL: verifyURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether verification is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && v.Secret != ""
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks the token. Returns domain.ErrUnauthorized when the provider
// rejects it; transport failures are returned as-is (no retries).
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return domain.ErrUnauthorized
	}

	form := url.Values{}
	form.Set("secret", v.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.Client.Do(req)
	if err != nil {
		return fmt.Errorf("captcha verify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("captcha verify: provider returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("captcha verify response: %w", err)
	}
	if !body.Success {
		return domain.ErrUnauthorized
	}
	return nil
}
