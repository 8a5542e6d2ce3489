package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/devfolio/portfolio-api/app/observability/metrics"
	"github.com/devfolio/portfolio-api/internal/api"
	"github.com/devfolio/portfolio-api/internal/types"
)

func observeQuery(ctx context.Context, start time.Time) {
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
}

// ProjectRecord is the storage shape of a project; technologies are held as
// serialized JSON text and only become a list at the service boundary.
type ProjectRecord struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Image            *string
	TechnologiesJSON string
	Category         string
	Status           string
	DemoURL          *string
	GithubURL        *string
	ShowGithub       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateProjectRecord carries the columns of a new project row.
type CreateProjectRecord struct {
	Title            string
	Description      string
	Image            *string
	TechnologiesJSON string
	Category         string
	Status           string
	DemoURL          *string
	GithubURL        *string
	ShowGithub       bool
}

var _ ProjectRepo = (*PostgresProjectRepo)(nil)

// ProjectRepo defines the contract for project persistence.
type ProjectRepo interface {
	List(ctx context.Context) ([]ProjectRecord, error)
	ListByCategory(ctx context.Context, category string) ([]ProjectRecord, error)
	ListByStatus(ctx context.Context, status string) ([]ProjectRecord, error)

	// Get returns types.ErrNotFound when no such project exists.
	Get(ctx context.Context, id uuid.UUID) (*ProjectRecord, error)

	Create(ctx context.Context, rec CreateProjectRecord) (*ProjectRecord, error)

	// Update changes only the columns marked in params.
	// Returns types.ErrNotFound when no such project exists.
	Update(ctx context.Context, id uuid.UUID, params types.UpdateProjectParams) (*ProjectRecord, error)

	// Delete returns types.ErrNotFound when no such project exists.
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresProjectRepo struct {
	logger *slog.Logger
	db     api.DB
}

func NewPostgresProjectRepo(db api.DB, logger *slog.Logger) *PostgresProjectRepo {
	return &PostgresProjectRepo{
		logger: logger,
		db:     db,
	}
}

const projectColumns = `id, title, description, image, technologies, category, status, demo_url, github_url, show_github, created_at, updated_at`

func scanProject(row pgx.Row) (*ProjectRecord, error) {
	var rec ProjectRecord
	err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Image, &rec.TechnologiesJSON,
		&rec.Category, &rec.Status, &rec.DemoURL, &rec.GithubURL, &rec.ShowGithub,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresProjectRepo) collect(rows pgx.Rows) ([]ProjectRecord, error) {
	defer rows.Close()

	records := make([]ProjectRecord, 0)
	for rows.Next() {
		rec, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project rows iteration failed: %w", err)
	}
	return records, nil
}

func (r *PostgresProjectRepo) List(ctx context.Context) ([]ProjectRecord, error) {
	defer observeQuery(ctx, time.Now())
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: query failed: %w", err)
	}
	return r.collect(rows)
}

func (r *PostgresProjectRepo) ListByCategory(ctx context.Context, category string) ([]ProjectRecord, error) {
	defer observeQuery(ctx, time.Now())
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE category = $1 ORDER BY created_at DESC`,
		category)
	if err != nil {
		return nil, fmt.Errorf("list projects by category: query failed: %w", err)
	}
	return r.collect(rows)
}

func (r *PostgresProjectRepo) ListByStatus(ctx context.Context, status string) ([]ProjectRecord, error) {
	defer observeQuery(ctx, time.Now())
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE status = $1 ORDER BY created_at DESC`,
		status)
	if err != nil {
		return nil, fmt.Errorf("list projects by status: query failed: %w", err)
	}
	return r.collect(rows)
}

func (r *PostgresProjectRepo) Get(ctx context.Context, id uuid.UUID) (*ProjectRecord, error) {
	defer observeQuery(ctx, time.Now())
	rec, err := scanProject(r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: query failed: %w", err)
	}
	return rec, nil
}

func (r *PostgresProjectRepo) Create(ctx context.Context, rec CreateProjectRecord) (*ProjectRecord, error) {
	defer observeQuery(ctx, time.Now())
	created, err := scanProject(r.db.QueryRow(ctx,
		`INSERT INTO projects (title, description, image, technologies, category, status, demo_url, github_url, show_github)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING `+projectColumns,
		rec.Title, rec.Description, rec.Image, rec.TechnologiesJSON,
		rec.Category, rec.Status, rec.DemoURL, rec.GithubURL, rec.ShowGithub))
	if err != nil {
		return nil, fmt.Errorf("create project: db insert failed: %w", err)
	}
	return created, nil
}

func (r *PostgresProjectRepo) Update(ctx context.Context, id uuid.UUID, params types.UpdateProjectParams) (*ProjectRecord, error) {
	ctx, span := otel.Tracer("ProjectRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "projects"),
		attribute.String("db.project.id", id.String()),
	))
	defer span.End()
	defer observeQuery(ctx, time.Now())

	l := r.logger.With(slog.String("method", "Update"), slog.String("projectID", id.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *params.Title)
		argID++
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *params.Description)
		argID++
	}
	if params.SetImage {
		setClauses = append(setClauses, fmt.Sprintf("image = $%d", argID))
		args = append(args, params.ImageURL)
		argID++
	}
	if params.TechnologiesJSON != nil {
		setClauses = append(setClauses, fmt.Sprintf("technologies = $%d", argID))
		args = append(args, *params.TechnologiesJSON)
		argID++
	}
	if params.Category != nil {
		setClauses = append(setClauses, fmt.Sprintf("category = $%d", argID))
		args = append(args, *params.Category)
		argID++
	}
	if params.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argID))
		args = append(args, *params.Status)
		argID++
	}
	if params.SetDemoURL {
		setClauses = append(setClauses, fmt.Sprintf("demo_url = $%d", argID))
		args = append(args, params.DemoURL)
		argID++
	}
	if params.SetGithubURL {
		setClauses = append(setClauses, fmt.Sprintf("github_url = $%d", argID))
		args = append(args, params.GithubURL)
		argID++
	}
	if params.ShowGithub != nil {
		setClauses = append(setClauses, fmt.Sprintf("show_github = $%d", argID))
		args = append(args, *params.ShowGithub)
		argID++
	}

	if len(setClauses) == 0 {
		l.DebugContext(ctx, "No fields supplied, returning current row")
		return r.Get(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	query := fmt.Sprintf(`UPDATE projects SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, projectColumns)
	args = append(args, id)

	rec, err := scanProject(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("update project: db update failed: %w", err)
	}
	return rec, nil
}

func (r *PostgresProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer observeQuery(ctx, time.Now())
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project not found: %w", types.ErrNotFound)
	}
	return nil
}
