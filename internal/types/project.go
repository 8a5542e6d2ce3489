package types

import (
	"time"

	"github.com/google/uuid"
)

// Project is a portfolio entry. Technologies are persisted as serialized JSON
// text but always cross the wire as a list of strings.
type Project struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Image        *string   `json:"image"`
	Technologies []string  `json:"technologies"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	DemoURL      *string   `json:"demo_url"`
	GithubURL    *string   `json:"github_url"`
	ShowGithub   bool      `json:"show_github"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateProjectRequest represents the create request body.
type CreateProjectRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Image        *string  `json:"image"`
	Technologies []string `json:"technologies"`
	Category     string   `json:"category"`
	Status       string   `json:"status"`
	DemoURL      *string  `json:"demo_url"`
	GithubURL    *string  `json:"github_url"`
	ShowGithub   *bool    `json:"show_github"`
}

// UpdateProjectRequest represents the partial-update request body. Pointer
// fields distinguish "absent" from "supplied"; the nullable columns (image,
// demo_url, github_url) additionally need the explicit-null state, so they
// use OptionalString.
type UpdateProjectRequest struct {
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	Image        OptionalString `json:"image"`
	Technologies *[]string      `json:"technologies"`
	Category     *string        `json:"category"`
	Status       *string        `json:"status"`
	DemoURL      OptionalString `json:"demo_url"`
	GithubURL    OptionalString `json:"github_url"`
	ShowGithub   *bool          `json:"show_github"`
}

// UpdateProjectParams carries the resolved column changes to the repository.
// The Set* flags mark that a nullable column should be written; its companion
// pointer may be nil to clear it.
type UpdateProjectParams struct {
	Title            *string
	Description      *string
	SetImage         bool
	ImageURL         *string
	TechnologiesJSON *string
	Category         *string
	Status           *string
	SetDemoURL       bool
	DemoURL          *string
	SetGithubURL     bool
	GithubURL        *string
	ShowGithub       *bool
}
