package projects

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var projectCols = []string{"id", "name", "owner_id", "link_id", "public_access", "public_permission", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+projects\s*\(name,\s*owner_id,\s*public_access,\s*public_permission\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	mock.ExpectQuery(q).
		WithArgs("demo", "u-1", false, "read").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p-1", time.Now()))

	p, err := repo.Create(context.Background(), &models.Project{Name: "demo", OwnerID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, models.PermissionRead, p.PublicPermission)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+projects`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Project{Name: "demo", OwnerID: "u-1"})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestGetByNameAndOwner_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*name,\s*owner_id,\s*link_id,\s*public_access,\s*public_permission,\s*created_at\s+FROM\s+projects\s+WHERE\s+name\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2$`
	mock.ExpectQuery(q).
		WithArgs("demo", "u-1").
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow("p-1", "demo", "u-1", nil, true, "read-write", time.Now()))

	p, err := repo.GetByNameAndOwner(context.Background(), "demo", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.False(t, p.HasLink())
	assert.True(t, p.PublicAccess)
	assert.Equal(t, models.PermissionReadWrite, p.PublicPermission)
}

func TestGetByLinkID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+projects\s+WHERE\s+link_id\s*=\s*\$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLinkID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+projects\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("p-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByID(context.Background(), "p-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestListByName_OrderedRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(projectCols).
		AddRow("p-1", "demo", "u-1", "link-1", false, "read", now).
		AddRow("p-2", "demo", "u-2", nil, true, "read", now.Add(time.Second))
	mock.ExpectQuery(`FROM\s+projects\s+WHERE\s+name\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id`).
		WithArgs("demo").
		WillReturnRows(rows)

	list, err := repo.ListByName(context.Background(), "demo")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "link-1", list[0].LinkID)
	assert.Equal(t, "u-2", list[1].OwnerID)
}

func TestListByOwner_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+projects\s+WHERE\s+owner_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("boom"))

	_, err := repo.ListByOwner(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select projects")
}

func TestSetLinkID_KeepsExisting(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+projects\s+SET\s+link_id\s*=\s*COALESCE\(link_id,\s*\$2\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+link_id`
	mock.ExpectQuery(q).
		WithArgs("p-1", "fresh").
		WillReturnRows(sqlmock.NewRows([]string{"link_id"}).AddRow("existing"))

	got, err := repo.SetLinkID(context.Background(), "p-1", "fresh")
	require.NoError(t, err)
	assert.Equal(t, "existing", got)
}

func TestSetLinkID_MissingProject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+projects\s+SET\s+link_id`).
		WithArgs("p-x", "fresh").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.SetLinkID(context.Background(), "p-x", "fresh")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetPublicAccess(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE\s+projects\s+SET\s+public_access\s*=\s*\$2,\s*public_permission\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1`
	mock.ExpectExec(q).
		WithArgs("p-1", true, "read").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("p-2", false, "read").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetPublicAccess(context.Background(), "p-1", true, models.PermissionRead))
	require.ErrorIs(t, repo.SetPublicAccess(context.Background(), "p-2", false, models.PermissionRead), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
