package engine

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
	"foreman/internal/repo"
)

func cleanRepoPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// CreateProject registers a project. A repo path already in use is a conflict.
func (e Engine) CreateProject(ctx context.Context, name, repoPath string) (p domain.Project, err error) {
	ctx, done := e.observe(ctx, "create_project")
	defer func() { done(err) }()

	repoPath = cleanRepoPath(repoPath)
	if err := required("name", name); err != nil {
		return p, err
	}
	if err := required("repo path", repoPath); err != nil {
		return p, err
	}
	p = domain.Project{ID: uuid.New().String(), Name: name, RepoPath: repoPath, CreatedAt: e.stamp()}
	if err := e.Repo.InsertProject(ctx, nil, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return domain.Project{}, errors.Join(ErrConflict, err)
		}
		return domain.Project{}, err
	}
	e.log().Info("project created", "project", p.ID, "repo_path", p.RepoPath)
	return p, nil
}

// FindOrCreateByRepoPath returns the project for repoPath, creating it if
// needed. Concurrent callers with the same path observe the same row.
func (e Engine) FindOrCreateByRepoPath(ctx context.Context, name, repoPath string) (p domain.Project, err error) {
	ctx, done := e.observe(ctx, "find_or_create_project", attribute.String("repo_path", repoPath))
	defer func() { done(err) }()

	repoPath = cleanRepoPath(repoPath)
	if err := required("repo path", repoPath); err != nil {
		return p, err
	}
	if name == "" {
		name = filepath.Base(repoPath)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return p, err
	}
	defer tx.Rollback()

	candidate := domain.Project{ID: uuid.New().String(), Name: name, RepoPath: repoPath, CreatedAt: e.stamp()}
	if err := e.Repo.InsertProjectIfAbsent(ctx, tx, candidate); err != nil {
		return p, err
	}
	p, err = e.Repo.GetProjectByRepoPath(ctx, tx, repoPath)
	if err != nil {
		return p, err
	}
	return p, tx.Commit()
}

func (e Engine) GetProject(ctx context.Context, id string) (domain.Project, error) {
	p, err := e.Repo.GetProject(ctx, nil, id)
	return p, wrapNotFound(err, "project", id)
}

func (e Engine) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return e.Repo.ListProjects(ctx)
}
