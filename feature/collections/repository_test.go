package collections

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mod-manager/core/collection"
	"mod-manager/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newSQLiteRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: filepath.Join(t.TempDir(), "collections.db")})
	require.NoError(t, err)
	repo := NewRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	rec := collection.Record{Name: "X", Settings: map[string]collection.Settings{
		"RedHair": {Enabled: true, Priority: 10, Options: map[string][]int{"Color": {1}}},
		"NoHair":  {Enabled: true, Priority: 1},
	}}
	require.NoError(t, repo.SaveCollection(ctx, rec))
	require.NoError(t, repo.SaveCollection(ctx, collection.Record{Name: "Default", Settings: map[string]collection.Settings{}}))

	// saving again replaces the settings
	rec.Settings = map[string]collection.Settings{"RedHair": {Enabled: false, Priority: 2}}
	require.NoError(t, repo.SaveCollection(ctx, rec))

	records, err := repo.LoadCollections(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Default", records[0].Name)
	assert.Empty(t, records[0].Settings)
	assert.Equal(t, "X", records[1].Name)
	assert.Equal(t, map[string]collection.Settings{"RedHair": {Priority: 2}}, records[1].Settings)

	require.NoError(t, repo.DeleteCollection(ctx, "X"))
	records, err = repo.LoadCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRepository_Options(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	want := map[string][]int{"Color": {1}, "Extras": {0, 2}}
	require.NoError(t, repo.SaveCollection(ctx, collection.Record{Name: "X", Settings: map[string]collection.Settings{
		"A": {Enabled: true, Options: want},
	}}))
	records, err := repo.LoadCollections(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, want, records[0].Settings["A"].Options)
}

func TestRepository_Assignments(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()

	a, err := repo.LoadAssignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, collection.DefaultName, a.Default)
	assert.Equal(t, collection.EmptyName, a.Forced)

	want := collection.Assignments{Default: "X", Forced: "Default", Actors: map[string]string{"Alice": "X"}}
	require.NoError(t, repo.SaveAssignments(ctx, want))
	require.NoError(t, repo.SaveAssignments(ctx, want))

	a, err = repo.LoadAssignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, a)
}

func TestRepository_QueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `collections`").WillReturnError(errors.New("connection reset"))

	_, err = NewRepository(db).LoadCollections(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveRollsBack(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `collections`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `collection_settings`").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err = NewRepository(db).SaveCollection(context.Background(), collection.Record{Name: "X"})
	assert.ErrorContains(t, err, "lock wait timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
