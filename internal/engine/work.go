package engine

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/domain"
)

const ticketCounter = "ticket"

func (e Engine) projectTx(ctx context.Context, tx *sql.Tx, projectID string) error {
	_, err := e.Repo.GetProject(ctx, tx, projectID)
	return wrapNotFound(err, "project", projectID)
}

func (e Engine) CreateDesign(ctx context.Context, projectID, title, body string) (d domain.Design, err error) {
	ctx, done := e.observe(ctx, "create_design")
	defer func() { done(err) }()

	if err := required("title", title); err != nil {
		return d, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return d, err
	}
	defer tx.Rollback()
	if err := e.projectTx(ctx, tx, projectID); err != nil {
		return d, err
	}
	d = domain.Design{ID: uuid.New().String(), ProjectID: projectID, Title: title, Body: body, CreatedAt: e.stamp()}
	if err := e.Repo.InsertDesign(ctx, tx, d); err != nil {
		return domain.Design{}, err
	}
	return d, tx.Commit()
}

// CreateTicket files a ticket numbered from the project's ticket counter.
func (e Engine) CreateTicket(ctx context.Context, projectID, title, description string) (t domain.Ticket, err error) {
	ctx, done := e.observe(ctx, "create_ticket")
	defer func() { done(err) }()

	if err := required("title", title); err != nil {
		return t, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()
	if err := e.projectTx(ctx, tx, projectID); err != nil {
		return t, err
	}
	n, err := e.Repo.NextCounter(ctx, tx, projectID, ticketCounter)
	if err != nil {
		return t, err
	}
	t = domain.Ticket{ID: uuid.New().String(), ProjectID: projectID, Number: n, Title: title, Description: description, CreatedAt: e.stamp()}
	if err := e.Repo.InsertTicket(ctx, tx, t); err != nil {
		return domain.Ticket{}, err
	}
	return t, tx.Commit()
}

func (e Engine) CreateSpec(ctx context.Context, projectID, title string) (s domain.Spec, err error) {
	ctx, done := e.observe(ctx, "create_spec")
	defer func() { done(err) }()

	if err := required("title", title); err != nil {
		return s, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return s, err
	}
	defer tx.Rollback()
	if err := e.projectTx(ctx, tx, projectID); err != nil {
		return s, err
	}
	s = domain.Spec{ID: uuid.New().String(), ProjectID: projectID, Title: title, CreatedAt: e.stamp()}
	if err := e.Repo.InsertSpec(ctx, tx, s); err != nil {
		return domain.Spec{}, err
	}
	return s, tx.Commit()
}

// LinkSpecDesign links a spec to a design. Linking an existing pair is a
// no-op; the return value reports whether a new link was written.
func (e Engine) LinkSpecDesign(ctx context.Context, specID, designID string) (created bool, err error) {
	ctx, done := e.observe(ctx, "link_spec_design")
	defer func() { done(err) }()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	spec, err := e.Repo.GetSpec(ctx, tx, specID)
	if err != nil {
		return false, wrapNotFound(err, "spec", specID)
	}
	d, err := e.Repo.GetDesign(ctx, tx, designID)
	if err != nil {
		return false, wrapNotFound(err, "design", designID)
	}
	if spec.ProjectID != d.ProjectID {
		return false, invalid("spec and design belong to different projects")
	}
	created, err = e.Repo.LinkSpecDesign(ctx, tx, domain.SpecDesign{SpecID: specID, DesignID: designID, CreatedAt: e.stamp()})
	if err != nil {
		return false, err
	}
	return created, tx.Commit()
}

func (e Engine) ListSpecDesigns(ctx context.Context, specID string) ([]domain.SpecDesign, error) {
	return e.Repo.ListSpecDesigns(ctx, specID)
}

func (e Engine) NextCounter(ctx context.Context, projectID, name string) (int64, error) {
	if err := required("counter name", name); err != nil {
		return 0, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	if err := e.projectTx(ctx, tx, projectID); err != nil {
		return 0, err
	}
	v, err := e.Repo.NextCounter(ctx, tx, projectID, name)
	if err != nil {
		return 0, err
	}
	return v, tx.Commit()
}

// commentTargets resolves a comment target to the project that owns it.
var commentTargets = map[domain.TargetKind]func(e Engine, ctx context.Context, tx *sql.Tx, id string) (string, error){
	domain.TargetDesign: func(e Engine, ctx context.Context, tx *sql.Tx, id string) (string, error) {
		d, err := e.Repo.GetDesign(ctx, tx, id)
		return d.ProjectID, wrapNotFound(err, "design", id)
	},
	domain.TargetTicket: func(e Engine, ctx context.Context, tx *sql.Tx, id string) (string, error) {
		t, err := e.Repo.GetTicket(ctx, tx, id)
		return t.ProjectID, wrapNotFound(err, "ticket", id)
	},
}

type CommentInput struct {
	TargetType domain.TargetKind
	TargetID   string
	AuthorType domain.AuthorType
	AuthorName string
	Body       string
}

// AddComment attaches a comment to an existing design or ticket of the project.
func (e Engine) AddComment(ctx context.Context, projectID string, in CommentInput) (c domain.WorkComment, err error) {
	ctx, done := e.observe(ctx, "add_comment", attribute.String("target_type", string(in.TargetType)))
	defer func() { done(err) }()

	lookup, ok := commentTargets[in.TargetType]
	if !ok {
		return c, invalid("unknown comment target type %q", in.TargetType)
	}
	if !in.AuthorType.Valid() {
		return c, invalid("unknown author type %q", in.AuthorType)
	}
	if err := required("author name", in.AuthorName); err != nil {
		return c, err
	}
	if err := required("body", in.Body); err != nil {
		return c, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return c, err
	}
	defer tx.Rollback()
	owner, err := lookup(e, ctx, tx, in.TargetID)
	if err != nil {
		return c, err
	}
	if owner != projectID {
		return c, wrapNotFound(ErrNotFound, string(in.TargetType), in.TargetID)
	}
	c = domain.WorkComment{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		AuthorType: in.AuthorType,
		AuthorName: in.AuthorName,
		Body:       in.Body,
		CreatedAt:  e.stamp(),
	}
	if err := e.Repo.InsertComment(ctx, tx, c); err != nil {
		return domain.WorkComment{}, err
	}
	return c, tx.Commit()
}

// ListComments returns a target's comments oldest first.
func (e Engine) ListComments(ctx context.Context, targetType domain.TargetKind, targetID string) ([]domain.WorkComment, error) {
	if _, ok := commentTargets[targetType]; !ok {
		return nil, invalid("unknown comment target type %q", targetType)
	}
	return e.Repo.ListComments(ctx, targetType, targetID)
}
