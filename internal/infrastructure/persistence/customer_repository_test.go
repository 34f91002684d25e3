package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, func()) {
	db, mock, mockDB := newMockDB(t)
	return NewGormCustomerRepository(db), mock, func() { _ = mockDB.Close() }
}

func TestGormCustomerRepository_FindByID(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		repo, mock, done := newMockCustomerRepository(t)
		defer done()

		customerID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name", "email", "status", "version"}).
			AddRow(customerID, "Acme Ltd", "billing@acme.test", "active", 3)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnRows(rows)

		c, err := repo.FindByID(context.Background(), customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, c.ID)
		assert.Equal(t, "Acme Ltd", c.Name)
		assert.Equal(t, customer.StatusActive, c.Status)
		assert.Equal(t, 3, c.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found", func(t *testing.T) {
		repo, mock, done := newMockCustomerRepository(t)
		defer done()

		customerID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		c, err := repo.FindByID(context.Background(), customerID)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Count_Search(t *testing.T) {
	repo, mock, done := newMockCustomerRepository(t)
	defer done()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE \(name ILIKE \$1 ESCAPE '\\' OR email ILIKE \$2 ESCAPE '\\' OR phone ILIKE \$3 ESCAPE '\\'\) AND status = \$4`).
		WithArgs("%50\\%%", "%50\\%%", "%50\\%%", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	filter := shared.DefaultFilter()
	filter.Search = "50%"
	filter.Filters["status"] = "active"

	count, err := repo.Count(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_SaveWithLock(t *testing.T) {
	t.Run("stale version is rejected", func(t *testing.T) {
		repo, mock, done := newMockCustomerRepository(t)
		defer done()

		c, err := customer.NewCustomer("Acme Ltd")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "customers" SET .* WHERE .*id = .* AND version = .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), c)

		assert.ErrorIs(t, err, ErrOptimisticLock)
		assert.Equal(t, 1, c.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("successful update advances the version", func(t *testing.T) {
		repo, mock, done := newMockCustomerRepository(t)
		defer done()

		c, err := customer.NewCustomer("Acme Ltd")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "customers" SET .* WHERE .*id = .* AND version = .*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), c))
		assert.Equal(t, 2, c.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	t.Run("missing row is not found", func(t *testing.T) {
		repo, mock, done := newMockCustomerRepository(t)
		defer done()

		id := uuid.New()
		mock.ExpectExec(`DELETE FROM "customers" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(newSQLiteDB(t))

	acme, err := customer.NewCustomer("Acme Ltd")
	require.NoError(t, err)
	require.NoError(t, acme.SetContact("Billing@Acme.test", ""))
	require.NoError(t, repo.Save(ctx, acme))

	globex, err := customer.NewCustomer("Globex 100%")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, globex))

	t.Run("email lookup ignores the excluded id", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "billing@acme.test", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "billing@acme.test", acme.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "100%"
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, globex.ID, found[0].ID)

		filter.Search = "%"
		found, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("second writer with the same version loses", func(t *testing.T) {
		first, err := repo.FindByID(ctx, acme.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, acme.ID)
		require.NoError(t, err)

		require.NoError(t, first.Update("Acme Holdings", ""))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Update("Acme Group", ""))
		assert.ErrorIs(t, repo.SaveWithLock(ctx, second), ErrOptimisticLock)

		stored, err := repo.FindByID(ctx, acme.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Holdings", stored.Name)
		assert.Equal(t, 2, stored.Version)
	})

	t.Run("FindByIDs skips unknown ids", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, []uuid.UUID{acme.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}
