// Package projects persists platform projects in the studio database.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phantom-spire/core-studio/src/database"
	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// Valid project statuses.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

var validStatuses = map[string]bool{
	StatusDraft:    true,
	StatusActive:   true,
	StatusArchived: true,
}

// Project is one platform project record.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Owner       string    `json:"owner"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListFilter narrows a List call.
type ListFilter struct {
	Page   int
	Limit  int
	Status string
	Search string // substring match on name and description
}

// Store provides project CRUD over the platform database.
type Store struct {
	db *database.DB
}

// NewStore creates a project store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

func validate(p *Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is a required field: %w", model.ErrValidation)
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("project name exceeds 200 characters: %w", model.ErrValidation)
	}
	if p.Status != "" && !validStatuses[p.Status] {
		return fmt.Errorf("project status %q is invalid: %w", p.Status, model.ErrValidation)
	}
	return nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

// Create inserts a new project and returns it with generated fields.
func (s *Store) Create(ctx context.Context, p *Project) (*Project, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.ID = synth.ULID()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Tags == nil {
		p.Tags = []string{}
	}

	_, err := s.db.Handle().ExecContext(ctx, s.db.Rebind(
		`INSERT INTO projects (id, name, description, status, owner, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Description, p.Status, p.Owner, joinTags(p.Tags), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", errors.Join(err, model.ErrDatabase))
	}
	return p, nil
}

// Get loads one project by id.
func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.Handle().QueryRowContext(ctx, s.db.Rebind(
		`SELECT id, name, description, status, owner, tags, created_at, updated_at
		 FROM projects WHERE id = ?`), id)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var tags string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Owner, &tags,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project: %w", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", errors.Join(err, model.ErrDatabase))
	}
	p.Tags = splitTags(tags)
	return &p, nil
}

// List returns a page of projects with optional status filter and
// substring search, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]*Project, model.PageInfo, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if f.Status != "" {
		if !validStatuses[f.Status] {
			return nil, model.PageInfo{}, fmt.Errorf("status filter %q is invalid: %w", f.Status, model.ErrValidation)
		}
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	err := s.db.Handle().QueryRowContext(ctx,
		s.db.Rebind(`SELECT COUNT(*) FROM projects`+clause), args...).Scan(&total)
	if err != nil {
		return nil, model.PageInfo{}, fmt.Errorf("counting projects: %w", errors.Join(err, model.ErrDatabase))
	}

	query := `SELECT id, name, description, status, owner, tags, created_at, updated_at
		 FROM projects` + clause + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := s.db.Handle().QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, model.PageInfo{}, fmt.Errorf("listing projects: %w", errors.Join(err, model.ErrDatabase))
	}
	defer rows.Close()

	list := make([]*Project, 0, f.Limit)
	for rows.Next() {
		var p Project
		var tags string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Owner, &tags,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, model.PageInfo{}, fmt.Errorf("scanning project row: %w", errors.Join(err, model.ErrDatabase))
		}
		p.Tags = splitTags(tags)
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, model.PageInfo{}, fmt.Errorf("iterating projects: %w", errors.Join(err, model.ErrDatabase))
	}

	return list, model.NewPageInfo(f.Page, f.Limit, total), nil
}

// Update modifies name, description, status, owner and tags of an
// existing project.
func (s *Store) Update(ctx context.Context, id string, p *Project) (*Project, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = p.Name
	existing.Description = p.Description
	if p.Status != "" {
		existing.Status = p.Status
	}
	existing.Owner = p.Owner
	if p.Tags != nil {
		existing.Tags = p.Tags
	}
	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.Handle().ExecContext(ctx, s.db.Rebind(
		`UPDATE projects SET name = ?, description = ?, status = ?, owner = ?, tags = ?, updated_at = ?
		 WHERE id = ?`),
		existing.Name, existing.Description, existing.Status, existing.Owner,
		joinTags(existing.Tags), existing.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", errors.Join(err, model.ErrDatabase))
	}
	return existing, nil
}

// Delete removes a project by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.Handle().ExecContext(ctx,
		s.db.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", errors.Join(err, model.ErrDatabase))
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	return nil
}
