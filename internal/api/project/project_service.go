package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/devfolio/portfolio-api/app/observability/metrics"
	"github.com/devfolio/portfolio-api/internal/media"
	"github.com/devfolio/portfolio-api/internal/types"
)

// ErrBadImagePayload marks a malformed inline image so the handler can
// answer with a field-level validation failure instead of a 500.
var ErrBadImagePayload = errors.New("invalid image payload")

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	List(ctx context.Context) ([]types.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Project, error)
	GetByCategory(ctx context.Context, category string) ([]types.Project, error)
	GetByStatus(ctx context.Context, status string) ([]types.Project, error)
	Create(ctx context.Context, req types.CreateProjectRequest) (*types.Project, error)
	Update(ctx context.Context, id uuid.UUID, req types.UpdateProjectRequest) (*types.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	repo   ProjectRepo
	files  media.Store
	namer  *media.Namer
	logger *slog.Logger
}

func NewService(repo ProjectRepo, files media.Store, namer *media.Namer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		files:  files,
		namer:  namer,
		logger: logger,
	}
}

// toProject deserializes the stored technologies JSON into the wire shape.
func toProject(rec *ProjectRecord) (*types.Project, error) {
	p := &types.Project{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Image:       rec.Image,
		Category:    rec.Category,
		Status:      rec.Status,
		DemoURL:     rec.DemoURL,
		GithubURL:   rec.GithubURL,
		ShowGithub:  rec.ShowGithub,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}

	p.Technologies = []string{}
	if rec.TechnologiesJSON != "" {
		if err := json.Unmarshal([]byte(rec.TechnologiesJSON), &p.Technologies); err != nil {
			return nil, fmt.Errorf("failed to decode stored technologies for project %s: %w", rec.ID, err)
		}
	}
	return p, nil
}

func (s *ServiceImpl) toProjects(records []ProjectRecord) ([]types.Project, error) {
	projects := make([]types.Project, 0, len(records))
	for i := range records {
		p, err := toProject(&records[i])
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]types.Project, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toProjects(records)
}

func (s *ServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProject(rec)
}

func (s *ServiceImpl) GetByCategory(ctx context.Context, category string) ([]types.Project, error) {
	records, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return s.toProjects(records)
}

func (s *ServiceImpl) GetByStatus(ctx context.Context, status string) ([]types.Project, error) {
	records, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return s.toProjects(records)
}

func (s *ServiceImpl) Create(ctx context.Context, req types.CreateProjectRequest) (*types.Project, error) {
	metrics.Get().ProjectWritesTotal.Add(ctx, 1)

	techJSON, err := json.Marshal(req.Technologies)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize technologies: %w", err)
	}

	rec := CreateProjectRecord{
		Title:            req.Title,
		Description:      req.Description,
		TechnologiesJSON: string(techJSON),
		Category:         req.Category,
		Status:           req.Status,
		DemoURL:          req.DemoURL,
		GithubURL:        req.GithubURL,
	}
	if req.ShowGithub != nil {
		rec.ShowGithub = *req.ShowGithub
	}

	// The image is written to the file store before the row insert; a failed
	// insert may orphan the file, which is accepted.
	if req.Image != nil && *req.Image != "" {
		url, err := s.resolveImage(ctx, *req.Image)
		if err != nil {
			return nil, err
		}
		rec.Image = url
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toProject(created)
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, req types.UpdateProjectRequest) (*types.Project, error) {
	metrics.Get().ProjectWritesTotal.Add(ctx, 1)

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	params := types.UpdateProjectParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		ShowGithub:  req.ShowGithub,
	}

	// Nullable link columns: absent leaves the column untouched; explicit
	// null (or empty string) clears it.
	if req.DemoURL.Present {
		params.SetDemoURL = true
		if req.DemoURL.Valid && req.DemoURL.Value != "" {
			v := req.DemoURL.Value
			params.DemoURL = &v
		}
	}
	if req.GithubURL.Present {
		params.SetGithubURL = true
		if req.GithubURL.Valid && req.GithubURL.Value != "" {
			v := req.GithubURL.Value
			params.GithubURL = &v
		}
	}

	if req.Technologies != nil {
		techJSON, err := json.Marshal(*req.Technologies)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize technologies: %w", err)
		}
		j := string(techJSON)
		params.TechnologiesJSON = &j
	}

	// Image tri-state: absent leaves the column untouched; explicit null (or
	// empty string) clears it and removes the stored file; a new payload
	// replaces both file and URL.
	if req.Image.Present {
		if err := s.deleteStoredImage(ctx, existing.Image); err != nil {
			return nil, err
		}
		params.SetImage = true
		if req.Image.Valid && req.Image.Value != "" {
			url, err := s.resolveImage(ctx, req.Image.Value)
			if err != nil {
				return nil, err
			}
			params.ImageURL = url
		}
	}

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	return toProject(updated)
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	metrics.Get().ProjectWritesTotal.Add(ctx, 1)

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	// File first, row second, matching the original ordering; an orphaned
	// file on a failed row delete is accepted.
	if err := s.deleteStoredImage(ctx, existing.Image); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// resolveImage turns an image field value into the URL to persist. Inline
// data URIs are decoded and written to the file store; anything else is
// already a final URL and is stored verbatim.
func (s *ServiceImpl) resolveImage(ctx context.Context, value string) (*string, error) {
	payload, err := media.ParsePayload(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadImagePayload, err)
	}

	switch p := payload.(type) {
	case media.DataURI:
		name := s.namer.FileName(p.Subtype)
		url, err := s.files.Save(ctx, name, p.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		metrics.Get().ImageUploadsTotal.Add(ctx, 1)
		return &url, nil
	case media.RemoteURL:
		return &p.URL, nil
	default:
		return nil, fmt.Errorf("%w: unknown payload form", ErrBadImagePayload)
	}
}

func (s *ServiceImpl) deleteStoredImage(ctx context.Context, imageURL *string) error {
	if imageURL == nil || *imageURL == "" {
		return nil
	}
	if err := s.files.Delete(ctx, *imageURL); err != nil {
		return fmt.Errorf("failed to delete stored image: %w", err)
	}
	return nil
}
