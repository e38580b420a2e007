package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/model"
)

// Pool abstracts the pgx pool operations the store needs, so tests can
// substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_advisor_by_slug": `SELECT id, slug, name, firm_name, designation, city, state, zip_code, website, linkedin, bio, specialties, verified, created_at, updated_at FROM advisors WHERE slug = $1`,
	"advisor_exists":      `SELECT COUNT(*) FROM advisors WHERE slug = $1 OR (website <> '' AND website = $2)`,
	"insert_lead":         `INSERT INTO leads (id, advisor_id, name, email, message, revenue_bracket, captive_interest, has_cpa, source_page, source_type, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
	"get_blog_by_slug":    `SELECT id, title, slug, excerpt, content, category, read_time, published, created_at, updated_at FROM blog_posts WHERE slug = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
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
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS advisors (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	slug        TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	firm_name   TEXT NOT NULL DEFAULT '',
	designation TEXT NOT NULL,
	city        TEXT NOT NULL,
	state       TEXT NOT NULL,
	zip_code    TEXT NOT NULL,
	website     TEXT NOT NULL DEFAULT '',
	linkedin    TEXT NOT NULL DEFAULT '',
	bio         TEXT NOT NULL DEFAULT '',
	specialties JSONB NOT NULL DEFAULT '[]',
	verified    BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	advisor_id       TEXT NOT NULL REFERENCES advisors(id),
	name             TEXT NOT NULL,
	email            TEXT NOT NULL,
	message          TEXT NOT NULL DEFAULT '',
	revenue_bracket  TEXT NOT NULL DEFAULT '',
	captive_interest BOOLEAN NOT NULL DEFAULT false,
	has_cpa          BOOLEAN NOT NULL DEFAULT false,
	source_page      TEXT NOT NULL DEFAULT '',
	source_type      TEXT NOT NULL,
	synced_at        TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS blog_posts (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	title      TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	excerpt    TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	category   TEXT NOT NULL,
	read_time  TEXT NOT NULL DEFAULT '',
	published  BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS dealers (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	phone      TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL,
	state      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vehicles (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	dealer_id  TEXT NOT NULL REFERENCES dealers(id),
	vin        TEXT NOT NULL UNIQUE,
	make       TEXT NOT NULL,
	model      TEXT NOT NULL,
	year       INTEGER NOT NULL,
	price      BIGINT NOT NULL,
	mileage    INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS buy_codes (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	vehicle_id TEXT NOT NULL REFERENCES vehicles(id),
	code       TEXT NOT NULL UNIQUE,
	redeemed   BOOLEAN NOT NULL DEFAULT false,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	vehicle_id  TEXT NOT NULL REFERENCES vehicles(id),
	buy_code_id TEXT NOT NULL REFERENCES buy_codes(id),
	buyer_name  TEXT NOT NULL,
	buyer_email TEXT NOT NULL,
	amount      BIGINT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'open',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS offers (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	vehicle_id TEXT NOT NULL REFERENCES vehicles(id),
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	amount     BIGINT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS offer_activity (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	offer_id   TEXT NOT NULL REFERENCES offers(id),
	action     TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_advisors_state_city ON advisors(state, city);
CREATE INDEX IF NOT EXISTS idx_advisors_website ON advisors(website);
CREATE INDEX IF NOT EXISTS idx_advisors_specialties ON advisors USING gin(specialties);
CREATE INDEX IF NOT EXISTS idx_leads_advisor_id ON leads(advisor_id);
CREATE INDEX IF NOT EXISTS idx_leads_synced_at ON leads(synced_at);
CREATE INDEX IF NOT EXISTS idx_blog_posts_category ON blog_posts(category);
CREATE INDEX IF NOT EXISTS idx_vehicles_dealer_id ON vehicles(dealer_id);
CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles(status);
CREATE INDEX IF NOT EXISTS idx_transactions_vehicle_id ON transactions(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_offers_vehicle_id ON offers(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_offer_activity_offer_id ON offer_activity(offer_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func isPostgresUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Advisors

func (s *PostgresStore) CreateAdvisor(ctx context.Context, a *model.Advisor) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	specialtiesJSON, err := json.Marshal(a.Specialties)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal specialties")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO advisors (id, slug, name, firm_name, designation, city, state, zip_code, website, linkedin, bio, specialties, verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.Slug, a.Name, a.FirmName, a.Designation, a.City, a.State, a.ZipCode,
		a.Website, a.LinkedIn, a.Bio, specialtiesJSON, a.Verified, now, now,
	)
	if isPostgresUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "postgres: insert advisor")
}

const pgAdvisorColumns = `id, slug, name, firm_name, designation, city, state, zip_code, website, linkedin, bio, specialties, verified, created_at, updated_at`

func (s *PostgresStore) GetAdvisor(ctx context.Context, id string) (*model.Advisor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgAdvisorColumns+` FROM advisors WHERE id = $1`, id)
	return scanPGAdvisor(row)
}

func (s *PostgresStore) GetAdvisorBySlug(ctx context.Context, slug string) (*model.Advisor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgAdvisorColumns+` FROM advisors WHERE slug = $1`, slug)
	return scanPGAdvisor(row)
}

func (s *PostgresStore) ListAdvisors(ctx context.Context, filter AdvisorFilter) ([]model.Advisor, error) {
	query := `SELECT ` + pgAdvisorColumns + ` FROM advisors WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Query != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR firm_name ILIKE $%d)`, argIdx, argIdx)
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	if filter.State != "" {
		query += fmt.Sprintf(` AND state = $%d`, argIdx)
		args = append(args, filter.State)
		argIdx++
	}
	if filter.City != "" {
		query += fmt.Sprintf(` AND city = $%d`, argIdx)
		args = append(args, filter.City)
		argIdx++
	}
	if filter.Designation != "" {
		query += fmt.Sprintf(` AND designation = $%d`, argIdx)
		args = append(args, filter.Designation)
		argIdx++
	}
	if filter.Specialty != "" {
		query += fmt.Sprintf(` AND specialties ? $%d`, argIdx)
		args = append(args, filter.Specialty)
		argIdx++
	}
	if filter.Verified != nil {
		query += fmt.Sprintf(` AND verified = $%d`, argIdx)
		args = append(args, *filter.Verified)
		argIdx++
	}
	query += ` ORDER BY name ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list advisors")
	}
	defer rows.Close()

	var advisors []model.Advisor
	for rows.Next() {
		a, err := scanPGAdvisor(rows)
		if err != nil {
			return nil, err
		}
		advisors = append(advisors, *a)
	}
	return advisors, eris.Wrap(rows.Err(), "postgres: list advisors iterate")
}

func (s *PostgresStore) UpdateAdvisor(ctx context.Context, a *model.Advisor) error {
	a.UpdatedAt = time.Now().UTC()

	specialtiesJSON, err := json.Marshal(a.Specialties)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal specialties")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE advisors SET name = $1, firm_name = $2, designation = $3, city = $4, state = $5, zip_code = $6,
		 website = $7, linkedin = $8, bio = $9, specialties = $10, verified = $11, updated_at = $12 WHERE id = $13`,
		a.Name, a.FirmName, a.Designation, a.City, a.State, a.ZipCode,
		a.Website, a.LinkedIn, a.Bio, specialtiesJSON, a.Verified, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update advisor %s", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAdvisor(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM advisors WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete advisor %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AdvisorExists(ctx context.Context, slug, website string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM advisors WHERE slug = $1 OR (website <> '' AND website = $2)`,
		slug, website,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrap(err, "postgres: advisor exists")
	}
	return count > 0, nil
}

// Leads

func (s *PostgresStore) CreateLead(ctx context.Context, l *model.Lead) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, advisor_id, name, email, message, revenue_bracket, captive_interest, has_cpa, source_page, source_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.AdvisorID, l.Name, l.Email, l.Message, l.RevenueBracket,
		l.CaptiveInterest, l.HasCPA, l.SourcePage, string(l.SourceType), l.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert lead")
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, advisor_id, name, email, message, revenue_bracket, captive_interest, has_cpa, source_page, source_type, synced_at, created_at
	          FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.SourceType != "" {
		query += fmt.Sprintf(` AND source_type = $%d`, argIdx)
		args = append(args, string(filter.SourceType))
		argIdx++
	}
	if filter.Unsynced {
		query += ` AND synced_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.AdvisorID, &l.Name, &l.Email, &l.Message,
			&l.RevenueBracket, &l.CaptiveInterest, &l.HasCPA, &l.SourcePage,
			&l.SourceType, &l.SyncedAt, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) MarkLeadSynced(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET synced_at = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark lead synced %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Blog

func (s *PostgresStore) CreateBlogPost(ctx context.Context, p *model.BlogPost) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO blog_posts (id, title, slug, excerpt, content, category, read_time, published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, string(p.Category),
		p.ReadTime, p.Published, now, now,
	)
	if isPostgresUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "postgres: insert blog post")
}

func (s *PostgresStore) GetBlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	var p model.BlogPost
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, slug, excerpt, content, category, read_time, published, created_at, updated_at
		 FROM blog_posts WHERE slug = $1`, slug,
	).Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category,
		&p.ReadTime, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get blog post")
	}
	return &p, nil
}

func (s *PostgresStore) ListBlogPosts(ctx context.Context, filter BlogFilter) ([]model.BlogPost, error) {
	query := `SELECT id, title, slug, excerpt, content, category, read_time, published, created_at, updated_at
	          FROM blog_posts WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, string(filter.Category))
		argIdx++
	}
	if filter.PublishedOnly {
		query += ` AND published = true`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list blog posts")
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		var p model.BlogPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
			&p.Category, &p.ReadTime, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan blog post")
		}
		posts = append(posts, p)
	}
	return posts, eris.Wrap(rows.Err(), "postgres: list blog posts iterate")
}

func (s *PostgresStore) UpdateBlogPost(ctx context.Context, p *model.BlogPost) error {
	p.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE blog_posts SET title = $1, excerpt = $2, content = $3, category = $4, read_time = $5, published = $6, updated_at = $7
		 WHERE id = $8`,
		p.Title, p.Excerpt, p.Content, string(p.Category), p.ReadTime, p.Published, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update blog post %s", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteBlogPost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete blog post %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPGAdvisor(row pgx.Row) (*model.Advisor, error) {
	var a model.Advisor
	var specialtiesJSON []byte

	err := row.Scan(&a.ID, &a.Slug, &a.Name, &a.FirmName, &a.Designation,
		&a.City, &a.State, &a.ZipCode, &a.Website, &a.LinkedIn, &a.Bio,
		&specialtiesJSON, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan advisor")
	}

	if err := json.Unmarshal(specialtiesJSON, &a.Specialties); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal specialties")
	}
	return &a, nil
}
