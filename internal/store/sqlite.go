package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

// activeConfigKey is the settings row holding the active persona id.
const activeConfigKey = "active_config_id"

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	company    TEXT NOT NULL,
	analysis   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'prospected',
	metadata   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS custom_configs (
	id         TEXT PRIMARY KEY,
	config     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	companyJSON, analysisJSON, metadataJSON, err := marshalLead(lead)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, company, analysis, status, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   company = excluded.company,
		   analysis = excluded.analysis,
		   status = excluded.status,
		   metadata = excluded.metadata`,
		lead.ID, companyJSON, analysisJSON, string(lead.Status), metadataJSON, createdAt,
	)
	return eris.Wrapf(err, "sqlite: save lead %s", lead.ID)
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, analysis, status, metadata, created_at FROM leads WHERE id = ?`,
		id,
	)
	return scanLead(row, id)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, company, analysis, status, metadata, created_at FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.MinScore > 0 {
		query += ` AND json_extract(analysis, '$.opportunity_score') >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows, "")
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error {
	if !status.Valid() {
		return eris.Errorf("sqlite: invalid lead status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %s", id)
	}
	return checkRowsAffected(res, id)
}

// persona.Repository

func (s *SQLiteStore) ActiveID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, activeConfigKey,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "sqlite: get active config id")
	}
	return id, nil
}

func (s *SQLiteStore) SetActiveID(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		activeConfigKey, id,
	)
	return eris.Wrap(err, "sqlite: set active config id")
}

func (s *SQLiteStore) Custom(ctx context.Context) (map[string]persona.IndustryConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, config FROM custom_configs`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list custom configs")
	}
	defer rows.Close()

	configs := make(map[string]persona.IndustryConfig)
	for rows.Next() {
		var id, configJSON string
		if err := rows.Scan(&id, &configJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan custom config")
		}
		var cfg persona.IndustryConfig
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal custom config %s", id)
		}
		configs[id] = cfg
	}
	return configs, eris.Wrap(rows.Err(), "sqlite: custom configs iterate")
}

func (s *SQLiteStore) SaveCustom(ctx context.Context, cfg persona.IndustryConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal custom config")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO custom_configs (id, config, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`,
		cfg.ID, string(configJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save custom config %s", cfg.ID)
}

func (s *SQLiteStore) DeleteCustom(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM custom_configs WHERE id = ?`, id)
	return eris.Wrapf(err, "sqlite: delete custom config %s", id)
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrLeadNotFound, "id %s", id)
	}
	return nil
}

func marshalLead(lead *model.Lead) (company, analysis, metadata string, err error) {
	companyJSON, err := json.Marshal(lead.Company)
	if err != nil {
		return "", "", "", err
	}
	analysisJSON, err := json.Marshal(lead.Analysis)
	if err != nil {
		return "", "", "", err
	}
	metadataJSON, err := json.Marshal(lead.Metadata)
	if err != nil {
		return "", "", "", err
	}
	return string(companyJSON), string(analysisJSON), string(metadataJSON), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable, id string) (*model.Lead, error) {
	var l model.Lead
	var companyJSON, analysisJSON string
	var metadataJSON sql.NullString

	err := row.Scan(&l.ID, &companyJSON, &analysisJSON, &l.Status, &metadataJSON, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrLeadNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}

	if err := json.Unmarshal([]byte(companyJSON), &l.Company); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company")
	}
	if err := json.Unmarshal([]byte(analysisJSON), &l.Analysis); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
	}
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &l.Metadata); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal metadata")
		}
	}
	return &l, nil
}
