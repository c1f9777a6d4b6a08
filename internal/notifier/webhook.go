package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/httpclient"
	"github.com/superapp/marketplace-approvals/internal/metrics"
	"github.com/superapp/marketplace-approvals/internal/secrets"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// Credentials is the per-partner webhook signing material resolved from
// AWS Secrets Manager.
type Credentials struct {
	SigningKey string
}

// ParseCredentials extracts Credentials from a raw secret map.
func ParseCredentials(m map[string]string) (Credentials, error) {
	key := m["signing_key"]
	if key == "" {
		return Credentials{}, fmt.Errorf("signing_key missing")
	}
	return Credentials{SigningKey: key}, nil
}

// WebhookNotifier delivers decision notifications to partner webhook
// endpoints. Deliveries are signed with the partner's HMAC key, rate limited
// per partner, and best-effort: a failed delivery never fails the decision.
type WebhookNotifier struct {
	logger    *zap.Logger
	exec      *httpclient.Executor
	resolver  *secrets.AWSResolver[Credentials]
	sigHeader string
}

// New creates a WebhookNotifier. resolver may be nil, in which case
// deliveries go out unsigned.
func New(logger *zap.Logger, exec *httpclient.Executor, resolver *secrets.AWSResolver[Credentials], sigHeader string) *WebhookNotifier {
	if sigHeader == "" {
		sigHeader = "X-Marketplace-Signature"
	}
	return &WebhookNotifier{
		logger:    logger,
		exec:      exec,
		resolver:  resolver,
		sigHeader: sigHeader,
	}
}

// NotifyPartner posts the decision payload to the partner's webhook URL.
// Partners without a configured URL are skipped.
func (n *WebhookNotifier) NotifyPartner(ctx context.Context, partner *model.Partner, payload model.DecisionPayload) {
	if partner == nil || partner.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("notifier.marshal_failed",
			zap.String("partner_id", partner.ID),
			zap.Error(err))
		metrics.IncWebhookNotification("error")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, partner.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("notifier.request_build_failed",
			zap.String("partner_id", partner.ID),
			zap.String("url", partner.WebhookURL),
			zap.Error(err))
		metrics.IncWebhookNotification("error")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	if sig := n.sign(ctx, partner, body); sig != "" {
		req.Header.Set(n.sigHeader, sig)
	}

	if err := n.exec.DoJSON(ctx, req, partner.ID, nil); err != nil {
		n.logger.Warn("notifier.delivery_failed",
			zap.String("partner_id", partner.ID),
			zap.String("url", partner.WebhookURL),
			zap.Error(err))
		metrics.IncWebhookNotification("error")
		return
	}

	n.logger.Info("notifier.delivered",
		zap.String("partner_id", partner.ID),
		zap.String("entity_id", payload.EntityID),
		zap.String("decision", payload.Decision))
	metrics.IncWebhookNotification("ok")
}

// sign computes the hex HMAC-SHA256 of body with the partner's signing key.
// Returns "" when no key is configured, which sends the delivery unsigned.
func (n *WebhookNotifier) sign(ctx context.Context, partner *model.Partner, body []byte) string {
	if n.resolver == nil {
		return ""
	}
	creds, err := n.resolver.Resolve(ctx, partner.ID, ParseCredentials)
	if err != nil {
		n.logger.Warn("notifier.signing_key_unavailable",
			zap.String("partner_id", partner.ID),
			zap.Error(err))
		return ""
	}
	mac := hmac.New(sha256.New, []byte(creds.SigningKey))
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
