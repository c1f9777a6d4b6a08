package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/pkg/model"
)

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// PGPoolConfig tunes the Postgres connection pool.
type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// HybridStore is a Redis-first, Postgres-backed entity store. Postgres is
// the system of record; Redis holds short-lived entity projections so the
// admin portal's 5-second polling does not hammer the database. Guarded
// saves use a conditional UPDATE on the stored status, which is what gives
// concurrent decisions their first-writer-wins semantics.
type HybridStore struct {
	redis     *redis.Client
	PG        *pgxpool.Pool
	entityTTL time.Duration
	logger    *zap.Logger
}

// NewHybrid creates a Redis-first, Postgres-backed store.
func NewHybrid(redisAddr string, redisDB int, redisPass, pgURL string, pgPoolConfig PGPoolConfig, entityTTL time.Duration, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       redisDB,
		Password: redisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	if entityTTL <= 0 {
		entityTTL = 5 * time.Minute
	}

	return &HybridStore{redis: rdb, PG: pgPool, entityTTL: entityTTL, logger: logger}, nil
}

func entityKey(kind, id string) string {
	return fmt.Sprintf("entity:%s:%s", kind, id)
}

// cacheGet fills dest from Redis; a miss or decode failure is reported as
// false, never as an error, so reads always fall through to Postgres.
func (s *HybridStore) cacheGet(ctx context.Context, key string, dest any) bool {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// cachePut refreshes a projection; failures only cost a later cache miss.
func (s *HybridStore) cachePut(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.entityTTL).Err(); err != nil {
		s.logger.Warn("store.cache_put_failed", zap.String("key", key), zap.Error(err))
	}
}

// --- products ---

const productColumns = `
	id, code, name, product_type, status, partners,
	maintenance_mode, whitelist_mode, assets_count, created_at,
	COALESCE(reviewed_by, ''), reviewed_at, COALESCE(rejection_reason, '')`

func scanProduct(row interface{ Scan(dest ...any) error }) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.ProductType, &p.Status, &p.Partners,
		&p.MaintenanceMode, &p.WhitelistMode, &p.AssetsCount, &p.CreatedAt,
		&p.ReviewedBy, &p.ReviewedAt, &p.RejectionReason,
	); err != nil {
		return nil, err
	}
	if p.Partners == nil {
		p.Partners = []model.PartnerRef{}
	}
	return &p, nil
}

func (s *HybridStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var cached model.Product
	if s.cacheGet(ctx, entityKey("product", id), &cached) {
		return &cached, nil
	}
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}

	row := s.PG.QueryRow(ctx, `SELECT `+productColumns+` FROM marketplace.product WHERE id = $1;`, id)
	p, err := scanProduct(row)
	if err != nil {
		if noRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	s.cachePut(ctx, entityKey("product", id), p)
	return p, nil
}

func (s *HybridStore) InsertProduct(ctx context.Context, p *model.Product) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO marketplace.product (
			id, code, name, product_type, status, partners,
			maintenance_mode, whitelist_mode, assets_count, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Code, p.Name, p.ProductType, p.Status, p.Partners,
		p.MaintenanceMode, p.WhitelistMode, p.AssetsCount, p.CreatedAt)
	if err != nil {
		s.logger.Error("store.pg.insert_product_failed", zap.Error(err))
		return err
	}
	s.cachePut(ctx, entityKey("product", p.ID), p)
	return nil
}

func (s *HybridStore) SaveProduct(ctx context.Context, p *model.Product, expected model.ProductStatus) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	tag, err := s.PG.Exec(ctx, `
		UPDATE marketplace.product SET
			name = $2, product_type = $3, status = $4, partners = $5,
			maintenance_mode = $6, whitelist_mode = $7, assets_count = $8,
			reviewed_by = NULLIF($9, ''), reviewed_at = $10, rejection_reason = NULLIF($11, '')
		WHERE id = $1 AND status = $12;
	`, p.ID, p.Name, p.ProductType, p.Status, p.Partners,
		p.MaintenanceMode, p.WhitelistMode, p.AssetsCount,
		p.ReviewedBy, p.ReviewedAt, p.RejectionReason, expected)
	if err != nil {
		s.logger.Error("store.pg.save_product_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.conflictOrMissing(ctx, "marketplace.product", p.ID)
	}
	s.cachePut(ctx, entityKey("product", p.ID), p)
	return nil
}

func (s *HybridStore) ListProducts(ctx context.Context, status string) ([]model.Product, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT `+productColumns+`
		FROM marketplace.product
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC;
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// --- partners ---

const partnerColumns = `
	id, code, name, partner_type, status, products,
	contact_email, COALESCE(contact_phone, ''), COALESCE(webhook_url, ''), created_at,
	COALESCE(reviewed_by, ''), reviewed_at, COALESCE(rejection_reason, '')`

func scanPartner(row interface{ Scan(dest ...any) error }) (*model.Partner, error) {
	var p model.Partner
	if err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Type, &p.Status, &p.Products,
		&p.ContactEmail, &p.ContactPhone, &p.WebhookURL, &p.CreatedAt,
		&p.ReviewedBy, &p.ReviewedAt, &p.RejectionReason,
	); err != nil {
		return nil, err
	}
	if p.Products == nil {
		p.Products = []model.ProductRef{}
	}
	return &p, nil
}

func (s *HybridStore) GetPartner(ctx context.Context, id string) (*model.Partner, error) {
	var cached model.Partner
	if s.cacheGet(ctx, entityKey("partner", id), &cached) {
		return &cached, nil
	}
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}

	row := s.PG.QueryRow(ctx, `SELECT `+partnerColumns+` FROM marketplace.partner WHERE id = $1;`, id)
	p, err := scanPartner(row)
	if err != nil {
		if noRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get partner %s: %w", id, err)
	}
	s.cachePut(ctx, entityKey("partner", id), p)
	return p, nil
}

func (s *HybridStore) InsertPartner(ctx context.Context, p *model.Partner) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO marketplace.partner (
			id, code, name, partner_type, status, products,
			contact_email, contact_phone, webhook_url, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
	`, p.ID, p.Code, p.Name, p.Type, p.Status, p.Products,
		p.ContactEmail, p.ContactPhone, p.WebhookURL, p.CreatedAt)
	if err != nil {
		s.logger.Error("store.pg.insert_partner_failed", zap.Error(err))
		return err
	}
	s.cachePut(ctx, entityKey("partner", p.ID), p)
	return nil
}

func (s *HybridStore) SavePartner(ctx context.Context, p *model.Partner, expected model.PartnerStatus) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	tag, err := s.PG.Exec(ctx, `
		UPDATE marketplace.partner SET
			name = $2, partner_type = $3, status = $4, products = $5,
			contact_email = $6, contact_phone = NULLIF($7, ''), webhook_url = NULLIF($8, ''),
			reviewed_by = NULLIF($9, ''), reviewed_at = $10, rejection_reason = NULLIF($11, '')
		WHERE id = $1 AND status = $12;
	`, p.ID, p.Name, p.Type, p.Status, p.Products,
		p.ContactEmail, p.ContactPhone, p.WebhookURL,
		p.ReviewedBy, p.ReviewedAt, p.RejectionReason, expected)
	if err != nil {
		s.logger.Error("store.pg.save_partner_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.conflictOrMissing(ctx, "marketplace.partner", p.ID)
	}
	s.cachePut(ctx, entityKey("partner", p.ID), p)
	return nil
}

func (s *HybridStore) ListPartners(ctx context.Context, status string) ([]model.Partner, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT `+partnerColumns+`
		FROM marketplace.partner
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC;
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []model.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

// --- assets ---

const assetColumns = `
	id, code, name, asset_type, status, product_id, partner_id,
	current_price, min_investment, currency, created_at,
	COALESCE(reviewed_by, ''), reviewed_at, COALESCE(rejection_reason, '')`

func scanAsset(row interface{ Scan(dest ...any) error }) (*model.Asset, error) {
	var a model.Asset
	if err := row.Scan(
		&a.ID, &a.Code, &a.Name, &a.AssetType, &a.Status, &a.ProductID, &a.PartnerID,
		&a.CurrentPrice, &a.MinInvestment, &a.Currency, &a.CreatedAt,
		&a.ReviewedBy, &a.ReviewedAt, &a.RejectionReason,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *HybridStore) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var cached model.Asset
	if s.cacheGet(ctx, entityKey("asset", id), &cached) {
		return &cached, nil
	}
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}

	row := s.PG.QueryRow(ctx, `SELECT `+assetColumns+` FROM marketplace.asset WHERE id = $1;`, id)
	a, err := scanAsset(row)
	if err != nil {
		if noRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get asset %s: %w", id, err)
	}
	s.cachePut(ctx, entityKey("asset", id), a)
	return a, nil
}

func (s *HybridStore) InsertAsset(ctx context.Context, a *model.Asset) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO marketplace.asset (
			id, code, name, asset_type, status, product_id, partner_id,
			current_price, min_investment, currency, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.Code, a.Name, a.AssetType, a.Status, a.ProductID, a.PartnerID,
		a.CurrentPrice, a.MinInvestment, a.Currency, a.CreatedAt)
	if err != nil {
		s.logger.Error("store.pg.insert_asset_failed", zap.Error(err))
		return err
	}
	s.cachePut(ctx, entityKey("asset", a.ID), a)
	return nil
}

func (s *HybridStore) SaveAsset(ctx context.Context, a *model.Asset, expected model.AssetStatus) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	tag, err := s.PG.Exec(ctx, `
		UPDATE marketplace.asset SET
			name = $2, asset_type = $3, status = $4,
			current_price = $5, min_investment = $6, currency = $7,
			reviewed_by = NULLIF($8, ''), reviewed_at = $9, rejection_reason = NULLIF($10, '')
		WHERE id = $1 AND status = $11;
	`, a.ID, a.Name, a.AssetType, a.Status,
		a.CurrentPrice, a.MinInvestment, a.Currency,
		a.ReviewedBy, a.ReviewedAt, a.RejectionReason, expected)
	if err != nil {
		s.logger.Error("store.pg.save_asset_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.conflictOrMissing(ctx, "marketplace.asset", a.ID)
	}
	s.cachePut(ctx, entityKey("asset", a.ID), a)
	return nil
}

func (s *HybridStore) ListAssets(ctx context.Context, status string) ([]model.Asset, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT `+assetColumns+`
		FROM marketplace.asset
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC;
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// --- change requests ---

const changeRequestColumns = `
	id, product_id, COALESCE(product_code, ''), COALESCE(product_name, ''),
	action, current_value, proposed_value, status, requested_by, requested_at,
	COALESCE(reviewed_by, ''), reviewed_at, COALESCE(rejection_reason, '')`

func scanChangeRequest(row interface{ Scan(dest ...any) error }) (*model.ChangeRequest, error) {
	var cr model.ChangeRequest
	if err := row.Scan(
		&cr.ID, &cr.ProductID, &cr.ProductCode, &cr.ProductName,
		&cr.Action, &cr.CurrentValue, &cr.ProposedValue, &cr.Status, &cr.RequestedBy, &cr.RequestedAt,
		&cr.ReviewedBy, &cr.ReviewedAt, &cr.RejectionReason,
	); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (s *HybridStore) GetChangeRequest(ctx context.Context, id string) (*model.ChangeRequest, error) {
	var cached model.ChangeRequest
	if s.cacheGet(ctx, entityKey("change_request", id), &cached) {
		return &cached, nil
	}
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}

	row := s.PG.QueryRow(ctx, `SELECT `+changeRequestColumns+` FROM marketplace.change_request WHERE id = $1;`, id)
	cr, err := scanChangeRequest(row)
	if err != nil {
		if noRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get change request %s: %w", id, err)
	}
	s.cachePut(ctx, entityKey("change_request", id), cr)
	return cr, nil
}

func (s *HybridStore) InsertChangeRequest(ctx context.Context, cr *model.ChangeRequest) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO marketplace.change_request (
			id, product_id, product_code, product_name,
			action, current_value, proposed_value, status, requested_by, requested_at
		)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
	`, cr.ID, cr.ProductID, cr.ProductCode, cr.ProductName,
		cr.Action, cr.CurrentValue, cr.ProposedValue, cr.Status, cr.RequestedBy, cr.RequestedAt)
	if err != nil {
		s.logger.Error("store.pg.insert_change_request_failed", zap.Error(err))
		return err
	}
	s.cachePut(ctx, entityKey("change_request", cr.ID), cr)
	return nil
}

func (s *HybridStore) SaveChangeRequest(ctx context.Context, cr *model.ChangeRequest, expected model.ChangeRequestStatus) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	tag, err := s.PG.Exec(ctx, `
		UPDATE marketplace.change_request SET
			status = $2,
			reviewed_by = NULLIF($3, ''), reviewed_at = $4, rejection_reason = NULLIF($5, '')
		WHERE id = $1 AND status = $6;
	`, cr.ID, cr.Status, cr.ReviewedBy, cr.ReviewedAt, cr.RejectionReason, expected)
	if err != nil {
		s.logger.Error("store.pg.save_change_request_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.conflictOrMissing(ctx, "marketplace.change_request", cr.ID)
	}
	s.cachePut(ctx, entityKey("change_request", cr.ID), cr)
	return nil
}

func (s *HybridStore) ListChangeRequests(ctx context.Context, status string) ([]model.ChangeRequest, error) {
	return s.queryChangeRequests(ctx, `
		SELECT `+changeRequestColumns+`
		FROM marketplace.change_request
		WHERE ($1 = '' OR status = $1)
		ORDER BY requested_at DESC;
	`, status)
}

func (s *HybridStore) ListChangeRequestsByProduct(ctx context.Context, productID string) ([]model.ChangeRequest, error) {
	return s.queryChangeRequests(ctx, `
		SELECT `+changeRequestColumns+`
		FROM marketplace.change_request
		WHERE product_id = $1
		ORDER BY requested_at DESC;
	`, productID)
}

func (s *HybridStore) queryChangeRequests(ctx context.Context, sql string, arg any) ([]model.ChangeRequest, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *cr)
	}
	return requests, rows.Err()
}

// --- pending counts + audit ---

func (s *HybridStore) CountPending(ctx context.Context) (map[model.EntityType]int, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT 'product' AS entity, COUNT(*) FROM marketplace.product WHERE status = 'PENDING_APPROVAL'
		UNION ALL
		SELECT 'partner', COUNT(*) FROM marketplace.partner WHERE status = 'PENDING'
		UNION ALL
		SELECT 'asset', COUNT(*) FROM marketplace.asset WHERE status = 'PENDING_APPROVAL'
		UNION ALL
		SELECT 'change_request', COUNT(*) FROM marketplace.change_request WHERE status = 'PENDING';
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.EntityType]int, 4)
	for rows.Next() {
		var entity string
		var count int
		if err := rows.Scan(&entity, &count); err != nil {
			return nil, err
		}
		counts[model.EntityType(entity)] = count
	}
	return counts, rows.Err()
}

// RecordApprovalEvent inserts an immutable decision row into marketplace.approval_event.
func (s *HybridStore) RecordApprovalEvent(ctx context.Context, ev model.ApprovalEvent) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO marketplace.approval_event (
			id, entity_type, entity_id, decision,
			from_status, to_status, actor, reason, decided_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	`, ev.ID, ev.EntityType, ev.EntityID, ev.Decision,
		ev.FromStatus, ev.ToStatus, ev.Actor, ev.Reason, ev.DecidedAt)
	if err != nil {
		s.logger.Error("store.pg.insert_approval_event_failed", zap.Error(err))
	}
	return err
}

// conflictOrMissing distinguishes a lost status race from a missing row
// after a guarded UPDATE touched nothing.
func (s *HybridStore) conflictOrMissing(ctx context.Context, table, id string) error {
	var exists bool
	err := s.PG.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1);`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("verify %s %s: %w", table, id, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

// --- generic JSON cache helpers ---

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
