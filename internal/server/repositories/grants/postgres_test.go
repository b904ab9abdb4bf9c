package grants

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)INSERT\s+INTO\s+permission_grants\s*\(project_id,\s*user_id,\s*permission\).*ON\s+CONFLICT\s*\(project_id,\s*user_id\)\s*DO\s+UPDATE\s+SET\s+permission\s*=\s*EXCLUDED\.permission`
	mock.ExpectExec(q).
		WithArgs("p-1", "u-2", "write").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("p-1", "u-3", "read").
		WillReturnError(errors.New("fk violation"))

	require.NoError(t, repo.Upsert(context.Background(), &models.Grant{ProjectID: "p-1", UserID: "u-2", Permission: models.PermissionWrite}))

	err := repo.Upsert(context.Background(), &models.Grant{ProjectID: "p-1", UserID: "u-3", Permission: models.PermissionRead})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+g\.project_id,\s*g\.user_id,\s*u\.email,\s*g\.permission\s+FROM\s+permission_grants\s+g\s+JOIN\s+users\s+u.*WHERE\s+g\.project_id\s*=\s*\$1\s+AND\s+g\.user_id\s*=\s*\$2`
	mock.ExpectQuery(q).
		WithArgs("p-1", "u-2").
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "user_id", "email", "permission"}).
			AddRow("p-1", "u-2", "bob@example.com", "read-write"))
	mock.ExpectQuery(q).
		WithArgs("p-1", "u-9").
		WillReturnError(sql.ErrNoRows)

	g, err := repo.Get(context.Background(), "p-1", "u-2")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", g.Email)
	assert.Equal(t, models.PermissionReadWrite, g.Permission)

	_, err = repo.Get(context.Background(), "p-1", "u-9")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `DELETE\s+FROM\s+permission_grants\s+WHERE\s+project_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("p-1", "u-2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("p-1", "u-2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "p-1", "u-2"))
	require.ErrorIs(t, repo.Delete(context.Background(), "p-1", "u-2"), common.ErrorNotFound)
}

func TestListByProject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"project_id", "user_id", "email", "permission"}).
		AddRow("p-1", "u-2", "bob@example.com", "read").
		AddRow("p-1", "u-3", "carol@example.com", "write")
	mock.ExpectQuery(`(?s)WHERE\s+g\.project_id\s*=\s*\$1\s+ORDER\s+BY\s+g\.created_at`).
		WithArgs("p-1").
		WillReturnRows(rows)

	list, err := repo.ListByProject(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "carol@example.com", list[1].Email)
	assert.Equal(t, models.PermissionWrite, list[1].Permission)
}

func TestListByUser_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE\s+g\.user_id\s*=\s*\$1`).
		WithArgs("u-2").
		WillReturnError(errors.New("boom"))

	_, err := repo.ListByUser(context.Background(), "u-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select grants")
}
