package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"save_lead": `INSERT INTO leads (id, company, analysis, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
		  company = EXCLUDED.company,
		  analysis = EXCLUDED.analysis,
		  status = EXCLUDED.status,
		  metadata = EXCLUDED.metadata`,
	"get_lead":           `SELECT id, company, analysis, status, metadata, created_at FROM leads WHERE id = $1`,
	"update_lead_status": `UPDATE leads SET status = $1 WHERE id = $2`,
	"delete_lead":        `DELETE FROM leads WHERE id = $1`,
	"get_active_config":  `SELECT value FROM settings WHERE key = $1`,
	"set_active_config": `INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
	"list_custom_configs": `SELECT id, config FROM custom_configs`,
	"save_custom_config": `INSERT INTO custom_configs (id, config, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`,
	"delete_custom_config": `DELETE FROM custom_configs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	company    JSONB NOT NULL,
	analysis   JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'prospected',
	metadata   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS custom_configs (
	id         TEXT PRIMARY KEY,
	config     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(((analysis->>'opportunity_score')::numeric));
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	companyJSON, err := json.Marshal(lead.Company)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company")
	}
	analysisJSON, err := json.Marshal(lead.Analysis)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal analysis")
	}
	metadataJSON, err := json.Marshal(lead.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metadata")
	}

	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, company, analysis, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
		  company = EXCLUDED.company,
		  analysis = EXCLUDED.analysis,
		  status = EXCLUDED.status,
		  metadata = EXCLUDED.metadata`,
		lead.ID, companyJSON, analysisJSON, string(lead.Status), metadataJSON, createdAt,
	)
	return eris.Wrapf(err, "postgres: save lead %s", lead.ID)
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var l model.Lead
	var companyJSON, analysisJSON []byte
	var metadataJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, company, analysis, status, metadata, created_at FROM leads WHERE id = $1`,
		id,
	).Scan(&l.ID, &companyJSON, &analysisJSON, &l.Status, &metadataJSON, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrLeadNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}

	if err := json.Unmarshal(companyJSON, &l.Company); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal company")
	}
	if err := json.Unmarshal(analysisJSON, &l.Analysis); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal analysis")
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &l.Metadata); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal metadata")
		}
	}
	return &l, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, company, analysis, status, metadata, created_at FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.MinScore > 0 {
		args = append(args, filter.MinScore)
		query += ` AND (analysis->>'opportunity_score')::numeric >= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var companyJSON, analysisJSON, metadataJSON []byte
		if err := rows.Scan(&l.ID, &companyJSON, &analysisJSON, &l.Status, &metadataJSON, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		if err := json.Unmarshal(companyJSON, &l.Company); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal company")
		}
		if err := json.Unmarshal(analysisJSON, &l.Analysis); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal analysis")
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &l.Metadata); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal metadata")
			}
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error {
	if !status.Valid() {
		return eris.Errorf("postgres: invalid lead status %q", status)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1 WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrLeadNotFound, "id %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrLeadNotFound, "id %s", id)
	}
	return nil
}

// persona.Repository

func (s *PostgresStore) ActiveID(ctx context.Context) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, activeConfigKey,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "postgres: get active config id")
	}
	return id, nil
}

func (s *PostgresStore) SetActiveID(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		activeConfigKey, id,
	)
	return eris.Wrap(err, "postgres: set active config id")
}

func (s *PostgresStore) Custom(ctx context.Context) (map[string]persona.IndustryConfig, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, config FROM custom_configs`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list custom configs")
	}
	defer rows.Close()

	configs := make(map[string]persona.IndustryConfig)
	for rows.Next() {
		var id string
		var configJSON []byte
		if err := rows.Scan(&id, &configJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan custom config")
		}
		var cfg persona.IndustryConfig
		if err := json.Unmarshal(configJSON, &cfg); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal custom config %s", id)
		}
		configs[id] = cfg
	}
	return configs, eris.Wrap(rows.Err(), "postgres: custom configs iterate")
}

func (s *PostgresStore) SaveCustom(ctx context.Context, cfg persona.IndustryConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal custom config")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO custom_configs (id, config, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`,
		cfg.ID, configJSON, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save custom config %s", cfg.ID)
}

func (s *PostgresStore) DeleteCustom(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM custom_configs WHERE id = $1`, id)
	return eris.Wrapf(err, "postgres: delete custom config %s", id)
}
