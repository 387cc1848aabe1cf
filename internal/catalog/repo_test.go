package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.HSNCode{},
		&models.MasterProduct{},
		&models.Product{},
	))
	return conn
}

func seedHSN(t *testing.T, db *gorm.DB, code string, rate string, active bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.HSNCode{
		Code:    code,
		GSTRate: decimal.RequireFromString(rate),
		Active:  active,
	}).Error)
}

func seedProduct(t *testing.T, db *gorm.DB, orgID uuid.UUID, master *models.MasterProduct) *models.Product {
	t.Helper()
	product := &models.Product{
		OrgID:        orgID,
		SKU:          "SKU-" + uuid.NewString()[:8],
		Name:         "Widget",
		SellingPrice: decimal.NewFromInt(100),
		IsActive:     true,
	}
	if master != nil {
		require.NoError(t, db.Create(master).Error)
		product.MasterProductID = &master.ID
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryFindProductPreloadsMaster(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	orgID := uuid.New()

	hsn := "8471"
	master := &models.MasterProduct{
		Name:    "Widget Master",
		Status:  enums.MasterProductStatusApproved,
		HSNCode: &hsn,
	}
	product := seedProduct(t, db, orgID, master)

	got, err := repo.FindProduct(context.Background(), orgID, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Master)
	require.Equal(t, master.ID, got.Master.ID)
	require.True(t, got.GovernanceApproved())

	_, err = repo.FindProduct(context.Background(), uuid.New(), product.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "other orgs must not see the product")
}

func TestRepositoryFindProductsReturnsMap(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	orgID := uuid.New()

	p1 := seedProduct(t, db, orgID, nil)
	p2 := seedProduct(t, db, orgID, nil)
	other := seedProduct(t, db, uuid.New(), nil)

	got, err := repo.FindProducts(context.Background(), orgID, []uuid.UUID{p1.ID, p2.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Contains(t, got, p1.ID)
	require.Contains(t, got, p2.ID)
	require.NotContains(t, got, other.ID)
}

func TestServiceGovernanceIssues(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	orgID := uuid.New()
	ctx := context.Background()

	seedHSN(t, db, "8471", "18.00", true)
	seedHSN(t, db, "9999", "28.00", false)

	t.Run("not linked", func(t *testing.T) {
		product := seedProduct(t, db, orgID, nil)
		loaded, err := svc.GetProduct(ctx, orgID, product.ID)
		require.NoError(t, err)
		issues, err := svc.GovernanceIssues(ctx, loaded)
		require.NoError(t, err)
		require.Equal(t, []enums.ItemIssueKind{enums.ItemIssueMasterProductNotLinked}, issues)
	})

	t.Run("pending review", func(t *testing.T) {
		hsn := "8471"
		product := seedProduct(t, db, orgID, &models.MasterProduct{
			Name: "Pending", Status: enums.MasterProductStatusPending, HSNCode: &hsn,
		})
		loaded, err := svc.GetProduct(ctx, orgID, product.ID)
		require.NoError(t, err)
		issues, err := svc.GovernanceIssues(ctx, loaded)
		require.NoError(t, err)
		require.Contains(t, issues, enums.ItemIssueMasterProductNotApproved)
	})

	t.Run("missing hsn", func(t *testing.T) {
		product := seedProduct(t, db, orgID, &models.MasterProduct{
			Name: "NoHSN", Status: enums.MasterProductStatusApproved,
		})
		loaded, err := svc.GetProduct(ctx, orgID, product.ID)
		require.NoError(t, err)
		issues, err := svc.GovernanceIssues(ctx, loaded)
		require.NoError(t, err)
		require.Equal(t, []enums.ItemIssueKind{enums.ItemIssueMasterProductMissingHSN}, issues)
	})

	t.Run("inactive hsn", func(t *testing.T) {
		hsn := "9999"
		product := seedProduct(t, db, orgID, &models.MasterProduct{
			Name: "Inactive", Status: enums.MasterProductStatusApproved, HSNCode: &hsn,
		})
		loaded, err := svc.GetProduct(ctx, orgID, product.ID)
		require.NoError(t, err)
		issues, err := svc.GovernanceIssues(ctx, loaded)
		require.NoError(t, err)
		require.Equal(t, []enums.ItemIssueKind{enums.ItemIssueMasterProductInvalidHSN}, issues)
	})

	t.Run("clean", func(t *testing.T) {
		hsn := "8471"
		product := seedProduct(t, db, orgID, &models.MasterProduct{
			Name: "Clean", Status: enums.MasterProductStatusApproved, HSNCode: &hsn,
		})
		loaded, err := svc.GetProduct(ctx, orgID, product.ID)
		require.NoError(t, err)
		issues, err := svc.GovernanceIssues(ctx, loaded)
		require.NoError(t, err)
		require.Empty(t, issues)
	})
}

func TestServiceValidateHSN(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	seedHSN(t, db, "8471", "18.00", true)
	seedHSN(t, db, "9999", "28.00", false)

	require.NoError(t, svc.ValidateHSN(ctx, "8471", decimal.RequireFromString("18.00")))
	require.NoError(t, svc.ValidateHSN(ctx, "8471", decimal.RequireFromString("18")),
		"rate comparison must be numeric, not textual")

	err = svc.ValidateHSN(ctx, "8471", decimal.RequireFromString("12.00"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = svc.ValidateHSN(ctx, "0000", decimal.RequireFromString("18.00"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = svc.ValidateHSN(ctx, "9999", decimal.RequireFromString("28.00"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
