package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/captiveadvisors/directory/internal/model"
)

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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS advisors (
	id          TEXT PRIMARY KEY,
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
	specialties TEXT NOT NULL DEFAULT '[]',
	verified    INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id               TEXT PRIMARY KEY,
	advisor_id       TEXT NOT NULL REFERENCES advisors(id),
	name             TEXT NOT NULL,
	email            TEXT NOT NULL,
	message          TEXT NOT NULL DEFAULT '',
	revenue_bracket  TEXT NOT NULL DEFAULT '',
	captive_interest INTEGER NOT NULL DEFAULT 0,
	has_cpa          INTEGER NOT NULL DEFAULT 0,
	source_page      TEXT NOT NULL DEFAULT '',
	source_type      TEXT NOT NULL,
	synced_at        DATETIME,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS blog_posts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	excerpt    TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	category   TEXT NOT NULL,
	read_time  TEXT NOT NULL DEFAULT '',
	published  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS dealers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	phone      TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL,
	state      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS vehicles (
	id         TEXT PRIMARY KEY,
	dealer_id  TEXT NOT NULL REFERENCES dealers(id),
	vin        TEXT NOT NULL UNIQUE,
	make       TEXT NOT NULL,
	model      TEXT NOT NULL,
	year       INTEGER NOT NULL,
	price      INTEGER NOT NULL,
	mileage    INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS buy_codes (
	id         TEXT PRIMARY KEY,
	vehicle_id TEXT NOT NULL REFERENCES vehicles(id),
	code       TEXT NOT NULL UNIQUE,
	redeemed   INTEGER NOT NULL DEFAULT 0,
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	vehicle_id  TEXT NOT NULL REFERENCES vehicles(id),
	buy_code_id TEXT NOT NULL REFERENCES buy_codes(id),
	buyer_name  TEXT NOT NULL,
	buyer_email TEXT NOT NULL,
	amount      INTEGER NOT NULL,
	status      TEXT NOT NULL DEFAULT 'open',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS offers (
	id         TEXT PRIMARY KEY,
	vehicle_id TEXT NOT NULL REFERENCES vehicles(id),
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	amount     INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS offer_activity (
	id         TEXT PRIMARY KEY,
	offer_id   TEXT NOT NULL REFERENCES offers(id),
	action     TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_advisors_state_city ON advisors(state, city);
CREATE INDEX IF NOT EXISTS idx_advisors_website ON advisors(website);
CREATE INDEX IF NOT EXISTS idx_leads_advisor_id ON leads(advisor_id);
CREATE INDEX IF NOT EXISTS idx_leads_synced_at ON leads(synced_at);
CREATE INDEX IF NOT EXISTS idx_blog_posts_category ON blog_posts(category);
CREATE INDEX IF NOT EXISTS idx_vehicles_dealer_id ON vehicles(dealer_id);
CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles(status);
CREATE INDEX IF NOT EXISTS idx_transactions_vehicle_id ON transactions(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_offers_vehicle_id ON offers(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_offer_activity_offer_id ON offer_activity(offer_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isSQLiteUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Advisors

func (s *SQLiteStore) CreateAdvisor(ctx context.Context, a *model.Advisor) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	specialtiesJSON, err := json.Marshal(a.Specialties)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal specialties")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO advisors (id, slug, name, firm_name, designation, city, state, zip_code, website, linkedin, bio, specialties, verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Slug, a.Name, a.FirmName, a.Designation, a.City, a.State, a.ZipCode,
		a.Website, a.LinkedIn, a.Bio, string(specialtiesJSON), a.Verified, now, now,
	)
	if isSQLiteUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "sqlite: insert advisor")
}

const advisorColumns = `id, slug, name, firm_name, designation, city, state, zip_code, website, linkedin, bio, specialties, verified, created_at, updated_at`

func (s *SQLiteStore) GetAdvisor(ctx context.Context, id string) (*model.Advisor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+advisorColumns+` FROM advisors WHERE id = ?`, id)
	return scanAdvisor(row)
}

func (s *SQLiteStore) GetAdvisorBySlug(ctx context.Context, slug string) (*model.Advisor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+advisorColumns+` FROM advisors WHERE slug = ?`, slug)
	return scanAdvisor(row)
}

func (s *SQLiteStore) ListAdvisors(ctx context.Context, filter AdvisorFilter) ([]model.Advisor, error) {
	query := `SELECT ` + advisorColumns + ` FROM advisors WHERE 1=1`
	var args []any

	if filter.Query != "" {
		query += ` AND (name LIKE ? OR firm_name LIKE ?)`
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}
	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, filter.State)
	}
	if filter.City != "" {
		query += ` AND city = ?`
		args = append(args, filter.City)
	}
	if filter.Designation != "" {
		query += ` AND designation = ?`
		args = append(args, filter.Designation)
	}
	if filter.Specialty != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(advisors.specialties) WHERE json_each.value = ?)`
		args = append(args, filter.Specialty)
	}
	if filter.Verified != nil {
		query += ` AND verified = ?`
		args = append(args, *filter.Verified)
	}
	query += ` ORDER BY name ASC`

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
		return nil, eris.Wrap(err, "sqlite: list advisors")
	}
	defer rows.Close()

	var advisors []model.Advisor
	for rows.Next() {
		a, err := scanAdvisor(rows)
		if err != nil {
			return nil, err
		}
		advisors = append(advisors, *a)
	}
	return advisors, eris.Wrap(rows.Err(), "sqlite: list advisors iterate")
}

func (s *SQLiteStore) UpdateAdvisor(ctx context.Context, a *model.Advisor) error {
	a.UpdatedAt = time.Now().UTC()

	specialtiesJSON, err := json.Marshal(a.Specialties)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal specialties")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE advisors SET name = ?, firm_name = ?, designation = ?, city = ?, state = ?, zip_code = ?,
		 website = ?, linkedin = ?, bio = ?, specialties = ?, verified = ?, updated_at = ? WHERE id = ?`,
		a.Name, a.FirmName, a.Designation, a.City, a.State, a.ZipCode,
		a.Website, a.LinkedIn, a.Bio, string(specialtiesJSON), a.Verified, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update advisor %s", a.ID)
	}
	return checkRowsAffected(res, "advisor", a.ID)
}

func (s *SQLiteStore) DeleteAdvisor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM advisors WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete advisor %s", id)
	}
	return checkRowsAffected(res, "advisor", id)
}

func (s *SQLiteStore) AdvisorExists(ctx context.Context, slug, website string) (bool, error) {
	query := `SELECT COUNT(*) FROM advisors WHERE slug = ?`
	args := []any{slug}
	if website != "" {
		query = `SELECT COUNT(*) FROM advisors WHERE slug = ? OR website = ?`
		args = append(args, website)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, eris.Wrap(err, "sqlite: advisor exists")
	}
	return count > 0, nil
}

// Leads

func (s *SQLiteStore) CreateLead(ctx context.Context, l *model.Lead) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, advisor_id, name, email, message, revenue_bracket, captive_interest, has_cpa, source_page, source_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.AdvisorID, l.Name, l.Email, l.Message, l.RevenueBracket,
		l.CaptiveInterest, l.HasCPA, l.SourcePage, string(l.SourceType), l.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert lead")
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, advisor_id, name, email, message, revenue_bracket, captive_interest, has_cpa, source_page, source_type, synced_at, created_at
	          FROM leads WHERE 1=1`
	var args []any

	if filter.SourceType != "" {
		query += ` AND source_type = ?`
		args = append(args, string(filter.SourceType))
	}
	if filter.Unsynced {
		query += ` AND synced_at IS NULL`
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
		var l model.Lead
		var syncedAt sql.NullTime
		if err := rows.Scan(&l.ID, &l.AdvisorID, &l.Name, &l.Email, &l.Message,
			&l.RevenueBracket, &l.CaptiveInterest, &l.HasCPA, &l.SourcePage,
			&l.SourceType, &syncedAt, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		if syncedAt.Valid {
			l.SyncedAt = &syncedAt.Time
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) MarkLeadSynced(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET synced_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark lead synced %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

// Blog

func (s *SQLiteStore) CreateBlogPost(ctx context.Context, p *model.BlogPost) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blog_posts (id, title, slug, excerpt, content, category, read_time, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, string(p.Category),
		p.ReadTime, p.Published, now, now,
	)
	if isSQLiteUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "sqlite: insert blog post")
}

func (s *SQLiteStore) GetBlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, slug, excerpt, content, category, read_time, published, created_at, updated_at
		 FROM blog_posts WHERE slug = ?`, slug)

	var p model.BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category,
		&p.ReadTime, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get blog post")
	}
	return &p, nil
}

func (s *SQLiteStore) ListBlogPosts(ctx context.Context, filter BlogFilter) ([]model.BlogPost, error) {
	query := `SELECT id, title, slug, excerpt, content, category, read_time, published, created_at, updated_at
	          FROM blog_posts WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.PublishedOnly {
		query += ` AND published = 1`
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
		return nil, eris.Wrap(err, "sqlite: list blog posts")
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		var p model.BlogPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
			&p.Category, &p.ReadTime, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan blog post")
		}
		posts = append(posts, p)
	}
	return posts, eris.Wrap(rows.Err(), "sqlite: list blog posts iterate")
}

func (s *SQLiteStore) UpdateBlogPost(ctx context.Context, p *model.BlogPost) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE blog_posts SET title = ?, excerpt = ?, content = ?, category = ?, read_time = ?, published = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Excerpt, p.Content, string(p.Category), p.ReadTime, p.Published, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update blog post %s", p.ID)
	}
	return checkRowsAffected(res, "blog post", p.ID)
}

func (s *SQLiteStore) DeleteBlogPost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete blog post %s", id)
	}
	return checkRowsAffected(res, "blog post", id)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAdvisor(row scannable) (*model.Advisor, error) {
	var a model.Advisor
	var specialtiesJSON string

	err := row.Scan(&a.ID, &a.Slug, &a.Name, &a.FirmName, &a.Designation,
		&a.City, &a.State, &a.ZipCode, &a.Website, &a.LinkedIn, &a.Bio,
		&specialtiesJSON, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan advisor")
	}

	if err := json.Unmarshal([]byte(specialtiesJSON), &a.Specialties); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal specialties")
	}
	return &a, nil
}
