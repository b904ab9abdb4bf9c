package grants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/dbx"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, g *models.Grant) error {
	query := `
		INSERT INTO permission_grants (project_id, user_id, permission)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id)
		DO UPDATE SET permission = EXCLUDED.permission
	`
	if _, err := r.db.ExecContext(ctx, query, g.ProjectID, g.UserID, string(g.Permission)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, projectID, userID string) (*models.Grant, error) {
	query := `
		SELECT g.project_id, g.user_id, u.email, g.permission
		FROM permission_grants g JOIN users u ON u.id = g.user_id
		WHERE g.project_id = $1 AND g.user_id = $2
	`
	g, err := scanGrant(r.db.QueryRowContext(ctx, query, projectID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, projectID, userID string) error {
	query := `DELETE FROM permission_grants WHERE project_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, projectID, userID)
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

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Grant, error) {
	return r.list(ctx, `g.project_id = $1`, projectID)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Grant, error) {
	return r.list(ctx, `g.user_id = $1`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, where string, arg string) ([]*models.Grant, error) {
	query := `
		SELECT g.project_id, g.user_id, u.email, g.permission
		FROM permission_grants g JOIN users u ON u.id = g.user_id
		WHERE ` + where + `
		ORDER BY g.created_at`
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to select grants: %w", err)
	}
	defer rows.Close()

	var result []*models.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGrant(s scanner) (*models.Grant, error) {
	var (
		g    models.Grant
		perm string
	)
	if err := s.Scan(&g.ProjectID, &g.UserID, &g.Email, &perm); err != nil {
		return nil, err
	}
	g.Permission = models.PermissionLevel(perm)
	return &g, nil
}
