package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend/internal/model"
	"backend/internal/repository"
)

// newMockDB mounts gorm's postgres driver on a sqlmock connection so
// repository queries can be asserted without a live database.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestProfileRepository_GetByAccountID_NotFoundIsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewProfileRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "user_profiles" WHERE account_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "role"}))

	profile, err := repo.GetByAccountID(context.Background(), "acc-missing")
	require.NoError(t, err, "a missing record is not an error")
	assert.Nil(t, profile, "callers synthesize a guest profile from nil")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetByAccountID_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewProfileRepository(db)

	rows := sqlmock.NewRows([]string{"account_id", "email", "role", "province_id"}).
		AddRow("acc-1", "ha@example.com", "branch-manager", "NMA")
	mock.ExpectQuery(`SELECT \* FROM "user_profiles" WHERE account_id = \$1`).
		WillReturnRows(rows)

	profile, err := repo.GetByAccountID(context.Background(), "acc-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "branch-manager", profile.Role)
	assert.Equal(t, "NMA", profile.ProvinceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrgRepository_ProvincesKeyedByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewOrgRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "region", "active"}).
		AddRow("NMA", "North Mara", "north", true).
		AddRow("SKA", "South Kivara", "south", false)
	mock.ExpectQuery(`SELECT \* FROM "provinces"`).WillReturnRows(rows)

	provinces, err := repo.Provinces(context.Background())
	require.NoError(t, err)
	assert.Len(t, provinces, 2)
	assert.Equal(t, "North Mara", provinces["NMA"].Name)
	// Inactive rows are returned too; visibility filtering happens upstream.
	assert.False(t, provinces["SKA"].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrgRepository_BranchesKeyedByCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewOrgRepository(db)

	rows := sqlmock.NewRows([]string{"code", "name", "province_id", "active"}).
		AddRow("NMA-01", "Mara Central", "NMA", true)
	mock.ExpectQuery(`SELECT \* FROM "branches"`).WillReturnRows(rows)

	branches, err := repo.Branches(context.Background())
	require.NoError(t, err)
	require.Contains(t, branches, "NMA-01")
	assert.Equal(t, "NMA", branches["NMA-01"].ProvinceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewRefreshTokenRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "refresh_tokens" WHERE token = \$1`).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "tok-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_Log(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAuditRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3f2b8f66-5d24-4c4a-9f70-2f6a1c3a9b01"))
	mock.ExpectCommit()

	entry := &model.AuditLog{Action: model.ActionChangeRole, EntityID: "acc-1", Details: "{}"}
	require.NoError(t, repo.Log(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}
