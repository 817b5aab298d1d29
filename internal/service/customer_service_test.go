package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"github.com/nordcargo/forwarding-api/internal/testutil"
)

func newCustomerService(db *gorm.DB) *service.CustomerService {
	return service.NewCustomerService(
		repository.NewCustomerRepository(db),
		repository.NewActivityRepository(db),
		zap.NewNop(),
	)
}

func TestCustomerService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCustomerService(db)
	ctx := testutil.TestUserContext()

	t.Run("creates customer defaulting to active", func(t *testing.T) {
		dto, err := svc.Create(ctx, &domain.CreateCustomerRequest{
			Name:      "Acme Logistics",
			OrgNumber: "987654321",
			Email:     "post@acme.example",
			Country:   "Norway",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CustomerStatusActive, dto.Status)
		assert.Equal(t, "Acme Logistics", dto.Name)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateCustomerRequest{
			Name:      "Bad Status AS",
			OrgNumber: "111222333",
			Email:     "post@bad.example",
			Country:   "Norway",
			Status:    "dormant",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestCustomerService_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCustomerService(db)
	ctx := testutil.TestUserContext()
	customer := testutil.CreateTestCustomer(t, db, "Acme Logistics")

	dto, err := svc.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, dto.ID)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestCustomerService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCustomerService(db)
	ctx := testutil.TestUserContext()
	customer := testutil.CreateTestCustomer(t, db, "Acme Logistics")

	dto, err := svc.Update(ctx, customer.ID, &domain.UpdateCustomerRequest{
		Name:      "Acme Logistics AS",
		OrgNumber: customer.OrgNumber,
		Email:     customer.Email,
		Country:   "Norway",
		Status:    domain.CustomerStatusLead,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Logistics AS", dto.Name)
	assert.Equal(t, domain.CustomerStatusLead, dto.Status)

	_, err = svc.Update(ctx, uuid.New(), &domain.UpdateCustomerRequest{
		Name:      "Ghost",
		OrgNumber: "000000001",
		Email:     "ghost@example.com",
		Country:   "Norway",
	})
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestCustomerService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCustomerService(db)
	ctx := testutil.TestUserContext()

	t.Run("customer without quotations is deleted", func(t *testing.T) {
		customer := testutil.CreateTestCustomer(t, db, "Fresh Customer")

		require.NoError(t, svc.Delete(ctx, customer.ID))
		_, err := svc.GetByID(ctx, customer.ID)
		assert.ErrorIs(t, err, service.ErrCustomerNotFound)
	})

	t.Run("customer with quotations is deactivated", func(t *testing.T) {
		customer := testutil.CreateTestCustomer(t, db, "Busy Customer")
		testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusSent)

		require.NoError(t, svc.Delete(ctx, customer.ID))

		dto, err := svc.GetByID(ctx, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CustomerStatusInactive, dto.Status)
	})
}

func TestCustomerService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newCustomerService(db)
	ctx := testutil.TestUserContext()

	testutil.CreateTestCustomer(t, db, "Acme Logistics")
	testutil.CreateTestCustomer(t, db, "Borealis Freight")
	testutil.CreateTestCustomer(t, db, "Cargo Express")

	resp, err := svc.List(ctx, 1, 20, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)

	resp, err = svc.List(ctx, 1, 20, "borealis")
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total)

	resp, err = svc.List(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalPages)
}
