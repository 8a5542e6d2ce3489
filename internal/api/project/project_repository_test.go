package project

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-api/internal/types"
)

func newRepoWithMock(t *testing.T) (*PostgresProjectRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresProjectRepo(mockPool, slog.Default()), mockPool
}

func projectRows(rec ProjectRecord) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "description", "image", "technologies", "category",
		"status", "demo_url", "github_url", "show_github", "created_at", "updated_at",
	}).AddRow(rec.ID, rec.Title, rec.Description, rec.Image, rec.TechnologiesJSON,
		rec.Category, rec.Status, rec.DemoURL, rec.GithubURL, rec.ShowGithub,
		rec.CreatedAt, rec.UpdatedAt)
}

func sampleRecord() ProjectRecord {
	return ProjectRecord{
		ID:               uuid.New(),
		Title:            "My Project",
		Description:      "A portfolio piece",
		TechnologiesJSON: `["Go"]`,
		Category:         "web",
		Status:           "completed",
		ShowGithub:       true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

func TestRepoGet(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		rec := sampleRecord()

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+projectColumns+` FROM projects WHERE id = $1`)).
			WithArgs(rec.ID).
			WillReturnRows(projectRows(rec))

		got, err := repo.Get(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Title, got.Title)
		assert.Equal(t, rec.TechnologiesJSON, got.TechnologiesJSON)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		id := uuid.New()

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+projectColumns+` FROM projects WHERE id = $1`)).
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(context.Background(), id)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepoList(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)
	rec := sampleRecord()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)).
		WillReturnRows(projectRows(rec))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepoListByCategory(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)
	rec := sampleRecord()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+projectColumns+` FROM projects WHERE category = $1 ORDER BY created_at DESC`)).
		WithArgs("web").
		WillReturnRows(projectRows(rec))

	records, err := repo.ListByCategory(context.Background(), "web")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepoCreate(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)
	rec := sampleRecord()

	mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO projects`)).
		WithArgs(rec.Title, rec.Description, (*string)(nil), rec.TechnologiesJSON,
			rec.Category, rec.Status, (*string)(nil), (*string)(nil), rec.ShowGithub).
		WillReturnRows(projectRows(rec))

	created, err := repo.Create(context.Background(), CreateProjectRecord{
		Title:            rec.Title,
		Description:      rec.Description,
		TechnologiesJSON: rec.TechnologiesJSON,
		Category:         rec.Category,
		Status:           rec.Status,
		ShowGithub:       rec.ShowGithub,
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, created.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepoUpdate(t *testing.T) {
	t.Run("OnlySuppliedColumns", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		rec := sampleRecord()
		title := "Renamed"

		mockPool.ExpectQuery(regexp.QuoteMeta(`UPDATE projects SET title = $1, updated_at = now() WHERE id = $2 RETURNING `+projectColumns)).
			WithArgs(title, rec.ID).
			WillReturnRows(projectRows(rec))

		_, err := repo.Update(context.Background(), rec.ID, types.UpdateProjectParams{Title: &title})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("ImageClearedWithNil", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		rec := sampleRecord()

		mockPool.ExpectQuery(regexp.QuoteMeta(`UPDATE projects SET image = $1, updated_at = now() WHERE id = $2 RETURNING `+projectColumns)).
			WithArgs((*string)(nil), rec.ID).
			WillReturnRows(projectRows(rec))

		_, err := repo.Update(context.Background(), rec.ID, types.UpdateProjectParams{SetImage: true})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DemoURLClearedWithNil", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		rec := sampleRecord()

		mockPool.ExpectQuery(regexp.QuoteMeta(`UPDATE projects SET demo_url = $1, updated_at = now() WHERE id = $2 RETURNING `+projectColumns)).
			WithArgs((*string)(nil), rec.ID).
			WillReturnRows(projectRows(rec))

		_, err := repo.Update(context.Background(), rec.ID, types.UpdateProjectParams{SetDemoURL: true})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NoFieldsFallsBackToGet", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		rec := sampleRecord()

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT `+projectColumns+` FROM projects WHERE id = $1`)).
			WithArgs(rec.ID).
			WillReturnRows(projectRows(rec))

		got, err := repo.Update(context.Background(), rec.ID, types.UpdateProjectParams{})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		id := uuid.New()
		title := "Renamed"

		mockPool.ExpectQuery(regexp.QuoteMeta(`UPDATE projects SET`)).
			WithArgs(title, id).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Update(context.Background(), id, types.UpdateProjectParams{Title: &title})
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepoDelete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		id := uuid.New()

		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM projects WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newRepoWithMock(t)
		id := uuid.New()

		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM projects WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(context.Background(), id)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
