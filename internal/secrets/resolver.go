package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgsecrets "github.com/superapp/marketplace-approvals/pkg/secrets"
)

// AWSResolver resolves per-partner configuration from AWS Secrets Manager,
// caching results locally to reduce API calls. It is generic over the
// resolved config type T.
//
// Secret naming convention: {env}/{partnerID}/{scope}
type AWSResolver[T any] struct {
	logger   *zap.Logger
	env      string
	scope    string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[T]
}

// NewAWSResolver constructs a generic per-partner config resolver.
func NewAWSResolver[T any](
	logger *zap.Logger,
	env string,
	scope string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[T],
) *AWSResolver[T] {
	return &AWSResolver[T]{
		logger:   logger,
		env:      env,
		scope:    scope,
		provider: provider,
		cache:    cache,
	}
}

// cacheKey builds the in-memory cache key for a partner.
func (r *AWSResolver[T]) cacheKey(partnerID string) string {
	return strings.ToLower(fmt.Sprintf("%s|%s", partnerID, r.scope))
}

// secretName builds the AWS Secrets Manager key for a partner.
// Pattern: {env}/{partnerID}/{scope}
func (r *AWSResolver[T]) secretName(partnerID string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, partnerID, r.scope))
}

// Resolve fetches or caches config T for a given partner ID.
// parse extracts T from the raw secret map; it should validate required fields.
func (r *AWSResolver[T]) Resolve(ctx context.Context, partnerID string, parse func(map[string]string) (T, error)) (T, error) {
	key := r.cacheKey(partnerID)

	// --- check in-memory cache first ---
	if cfg, ok := r.cache.Get(key); ok {
		return cfg, nil
	}

	// --- fetch from AWS Secrets Manager ---
	secretName := r.secretName(partnerID)
	secretMap, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", secretName),
			zap.Error(err))
		var zero T
		return zero, fmt.Errorf("resolve partner config for %q: %w", partnerID, err)
	}

	cfg, err := parse(secretMap)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("parse secret %q: %w", secretName, err)
	}

	// --- cache locally for next time ---
	r.cache.Put(key, cfg)

	r.logger.Info("aws.partner_config_resolved",
		zap.String("partner", partnerID),
		zap.String("scope", r.scope),
	)
	return cfg, nil
}

// DiscoverPartners lists all partner IDs that have secrets configured in AWS
// Secrets Manager. It searches for secrets matching the prefix "{env}/" and
// ending with "/{scope}", then extracts partner IDs from the middle segment.
func (r *AWSResolver[T]) DiscoverPartners(ctx context.Context) ([]string, error) {
	prefix := strings.ToLower(fmt.Sprintf("%s/", r.env))
	suffix := "/" + r.scope

	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover partners: %w", err)
	}

	var partners []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		trimmed := strings.TrimPrefix(lower, prefix)
		trimmed = strings.TrimSuffix(trimmed, suffix)
		if trimmed != "" && !strings.Contains(trimmed, "/") {
			partners = append(partners, trimmed)
		}
	}

	r.logger.Info("aws.partners_discovered",
		zap.Int("count", len(partners)),
		zap.Strings("partners", partners),
	)
	return partners, nil
}
