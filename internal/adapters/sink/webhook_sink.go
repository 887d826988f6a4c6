package sink

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookSink posts validated submissions to the registry's intake endpoint.
// Each request is signed with HMAC-SHA256 so the receiver can verify
// authenticity. Non-2xx responses are treated as errors, letting the
// dispatcher apply its retry policy.
type WebhookSink struct {
	url    string
	secret []byte
	client *http.Client
	newID  func() string
}

// NewWebhookSink returns a WebhookSink that POSTs submissions to url and
// signs them with secret. A zero or negative timeout falls back to
// defaultWebhookTimeout (10 s).
func NewWebhookSink(url, secret string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookSink{
		url:    url,
		secret: []byte(secret),
		client: &http.Client{Timeout: timeout},
		newID:  uuid.NewString,
	}
}

// Deliver marshals the submission to canonical JSON, signs the body, and
// POSTs it. The following headers are set on every request:
//
//	Content-Type:            application/json
//	X-Guitarreg-Delivery:    <uuid v4>
//	X-Guitarreg-Source:      <delivery.Source>
//	X-Guitarreg-Index:       <delivery.Index>
//	X-Guitarreg-Kind:        referenced | fallback
//	X-Hub-Signature-256:     sha256=<hex-encoded HMAC-SHA256>
func (s *WebhookSink) Deliver(ctx context.Context, delivery domain.Delivery) error {
	payload, err := json.Marshal(delivery.Submission)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guitarreg-Delivery", s.newID())
	req.Header.Set("X-Guitarreg-Source", delivery.Source)
	req.Header.Set("X-Guitarreg-Index", strconv.Itoa(delivery.Index))
	req.Header.Set("X-Guitarreg-Kind", identificationKind(delivery.Submission.IndividualGuitar))
	req.Header.Set("X-Hub-Signature-256", "sha256="+s.sign(payload))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// sign returns the lowercase hex-encoded HMAC-SHA256 of payload using s.secret.
func (s *WebhookSink) sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
