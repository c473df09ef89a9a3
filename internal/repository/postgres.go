package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avolkhin/shortener/internal/models"
)

const linksTable = "links"

type PostgresStore struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, link *models.Link) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}

	query, args, err := p.sb.
		Insert(linksTable).
		Columns("id", "code", "original_url", "owner_client_id", "created_by_user_id",
			"source_type", "expires_at", "is_active", "extras").
		Values(link.ID, link.Code, link.OriginalURL, link.OwnerClientID,
			nullString(link.CreatedByUserID), link.SourceType,
			link.ExpiresAt, link.IsActive, link.Extras).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = p.pool.QueryRow(ctx, query, args...).Scan(&link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrCodeTaken
		}
		return fmt.Errorf("execute insert: %w", err)
	}

	return nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	query, args, err := p.linkSelect().
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := p.pool.QueryRow(ctx, query, args...)
	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query row: %w", err)
	}

	return link, nil
}

func (p *PostgresStore) CodeExists(ctx context.Context, code string) (bool, error) {
	query, args, err := p.sb.
		Select("1").
		From(linksTable).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = p.pool.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query row: %w", err)
	}

	return true, nil
}

// IncrementClicks bumps the counter only when the record is live. The
// liveness predicate and the increment run in one UPDATE, so concurrent
// redirects never lose updates or observe half-applied state.
func (p *PostgresStore) IncrementClicks(ctx context.Context, code string, now time.Time) (string, error) {
	query, args, err := p.sb.
		Update(linksTable).
		Set("clicks", squirrel.Expr("clicks + 1")).
		Where(squirrel.Eq{"code": code, "is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"expires_at": nil},
			squirrel.Gt{"expires_at": now},
		}).
		Suffix("RETURNING original_url").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var originalURL string
	err = p.pool.QueryRow(ctx, query, args...).Scan(&originalURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query row: %w", err)
	}

	return originalURL, nil
}

func (p *PostgresStore) Update(ctx context.Context, code string, upd models.LinkUpdate) (*models.Link, error) {
	builder := p.sb.Update(linksTable).Where(squirrel.Eq{"code": code})

	changed := false
	if upd.IsActive != nil {
		builder = builder.Set("is_active", *upd.IsActive)
		changed = true
	}
	if upd.ExpiresAt != nil {
		builder = builder.Set("expires_at", *upd.ExpiresAt)
		changed = true
	}
	if !changed {
		return p.FindByCode(ctx, code)
	}

	query, args, err := builder.
		Suffix("RETURNING " + linkColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := p.pool.QueryRow(ctx, query, args...)
	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query row: %w", err)
	}

	return link, nil
}

func (p *PostgresStore) ListByOwner(ctx context.Context, userID string, offset, limit int) ([]models.Link, int, error) {
	countQuery, countArgs, err := p.sb.
		Select("COUNT(*)").
		From(linksTable).
		Where(squirrel.Eq{"created_by_user_id": userID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := p.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rows: %w", err)
	}

	query, args, err := p.linkSelect().
		Where(squirrel.Eq{"created_by_user_id": userID}).
		OrderBy("created_at DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan row: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return links, total, nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

const linkColumns = "id, code, original_url, owner_client_id, created_by_user_id, " +
	"source_type, created_at, expires_at, is_active, clicks, extras"

func (p *PostgresStore) linkSelect() squirrel.SelectBuilder {
	return p.sb.Select(linkColumns).From(linksTable)
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var link models.Link
	var createdBy *string

	err := row.Scan(&link.ID, &link.Code, &link.OriginalURL, &link.OwnerClientID,
		&createdBy, &link.SourceType, &link.CreatedAt, &link.ExpiresAt,
		&link.IsActive, &link.Clicks, &link.Extras)
	if err != nil {
		return nil, err
	}

	if createdBy != nil {
		link.CreatedByUserID = *createdBy
	}

	return &link, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
