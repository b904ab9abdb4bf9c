package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/dbx"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

const projectColumns = `id, name, owner_id, link_id, public_access, public_permission, created_at`

// PostgresRepository implements project storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	var (
		p      models.Project
		linkID sql.NullString
		perm   string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.OwnerID, &linkID, &p.PublicAccess, &perm, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.LinkID = linkID.String
	p.PublicPermission = models.PermissionLevel(perm)
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, owner_id, public_access, public_permission)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	perm := p.PublicPermission
	if perm == "" {
		perm = models.PermissionRead
	}
	err := r.db.QueryRowContext(ctx, query, p.Name, p.OwnerID, p.PublicAccess, string(perm)).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.PublicPermission = perm
	return p, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, args ...any) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + where
	p, err := scanProject(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetByNameAndOwner(ctx context.Context, name, ownerID string) (*models.Project, error) {
	return r.getOne(ctx, `name = $1 AND owner_id = $2`, name, ownerID)
}

func (r *PostgresRepository) GetByLinkID(ctx context.Context, linkID string) (*models.Project, error) {
	return r.getOne(ctx, `link_id = $1`, linkID)
}

func (r *PostgresRepository) list(ctx context.Context, where string, args ...any) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + where + ` ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListByName(ctx context.Context, name string) ([]*models.Project, error) {
	return r.list(ctx, `name = $1`, name)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	return r.list(ctx, `owner_id = $1`, ownerID)
}

func (r *PostgresRepository) SetLinkID(ctx context.Context, id, linkID string) (string, error) {
	query := `
		UPDATE projects SET link_id = COALESCE(link_id, $2)
		WHERE id = $1
		RETURNING link_id
	`
	var current string
	if err := r.db.QueryRowContext(ctx, query, id, linkID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return current, nil
}

func (r *PostgresRepository) SetPublicAccess(ctx context.Context, id string, enabled bool, permission models.PermissionLevel) error {
	query := `UPDATE projects SET public_access = $2, public_permission = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, enabled, string(permission))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
