package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/testutil"
)

func TestCustomerRepository_GetByOrgNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Borealis Trading AS")

	found, err := repo.GetByOrgNumber(ctx, customer.OrgNumber)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)

	_, err = repo.GetByOrgNumber(ctx, "000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCustomerRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	ctx := context.Background()

	borealis := testutil.CreateTestCustomer(t, db, "Borealis Trading AS")
	testutil.CreateTestCustomer(t, db, "Fjord Logistics AS")
	testutil.CreateTestCustomer(t, db, "Hanseatic Freight GmbH")

	t.Run("all customers", func(t *testing.T) {
		customers, total, err := repo.List(ctx, 1, 20, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, customers, 3)
	})

	t.Run("search by name", func(t *testing.T) {
		customers, total, err := repo.List(ctx, 1, 20, "BOREALIS")
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, customers, 1)
		assert.Equal(t, borealis.ID, customers[0].ID)
	})

	t.Run("search by org number", func(t *testing.T) {
		customers, total, err := repo.List(ctx, 1, 20, borealis.OrgNumber)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, customers, 1)
		assert.Equal(t, borealis.ID, customers[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		customers, total, err := repo.List(ctx, 2, 2, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, customers, 1)
	})
}

func TestCustomerRepository_GetQuotationsCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Borealis Trading AS")
	other := testutil.CreateTestCustomer(t, db, "Fjord Logistics AS")

	testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusDraft)
	testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusSent)

	count, err := repo.GetQuotationsCount(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.GetQuotationsCount(ctx, other.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
