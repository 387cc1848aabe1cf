package serials

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:serials_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.ProductSerial{}, &models.InvoiceItemSerial{}))
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestRegisterSerialsRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()

	_, err := svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-1", "SN-2"},
	})
	require.NoError(t, err)

	// same number for another product is fine
	_, err = svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: uuid.New(), Numbers: []string{"SN-1"},
	})
	require.NoError(t, err)

	_, err = svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-2"},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSerialConflict), "got %v", err)

	_, err = svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-9", "SN-9"},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "in-batch duplicates are a validation error, got %v", err)
}

func TestReserveHappyPath(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()
	itemID := uuid.New()

	_, err := svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-1", "SN-2", "SN-3"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: itemID, Numbers: []string{"SN-1", "SN-3"},
	}))

	available, err := svc.AvailableCount(ctx, orgID, productID)
	require.NoError(t, err)
	require.EqualValues(t, 1, available)

	var links []models.InvoiceItemSerial
	require.NoError(t, db.Where("invoice_item_id = ?", itemID).Find(&links).Error)
	require.Len(t, links, 2)
	for _, link := range links {
		require.Equal(t, enums.LinkSerialStatusReserved, link.Status)
	}
}

func TestReserveRefusesDoubleReservation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()

	_, err := svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-1", "SN-2"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: uuid.New(), Numbers: []string{"SN-1"},
	}))

	err = svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: uuid.New(), Numbers: []string{"SN-1", "SN-2"},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSerialConflict), "got %v", err)

	err = svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: uuid.New(), Numbers: []string{"SN-404"},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSerialConflict), "unknown serials are a conflict, got %v", err)
}

func TestReleaseReturnsSerialsToAvailable(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()
	itemID := uuid.New()

	_, err := svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-1", "SN-2"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: itemID, Numbers: []string{"SN-1", "SN-2"},
	}))

	require.NoError(t, svc.ReleaseByInvoiceItems(ctx, []uuid.UUID{itemID}))

	available, err := svc.AvailableCount(ctx, orgID, productID)
	require.NoError(t, err)
	require.EqualValues(t, 2, available)

	var linkCount int64
	require.NoError(t, db.Model(&models.InvoiceItemSerial{}).Count(&linkCount).Error)
	require.Zero(t, linkCount, "release removes link rows, it never tombstones")

	// released serials can be reserved again by a different invoice
	require.NoError(t, svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: uuid.New(), Numbers: []string{"SN-1"},
	}))
}

func TestConsumeIsTerminal(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()
	itemID := uuid.New()

	_, err := svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-1", "SN-2"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: itemID, Numbers: []string{"SN-1", "SN-2"},
	}))

	usedAt := time.Now().UTC()
	consumed, err := svc.ConsumeByInvoiceItems(ctx, []uuid.UUID{itemID}, usedAt)
	require.NoError(t, err)
	require.Equal(t, 2, consumed)

	var serials []models.ProductSerial
	require.NoError(t, db.Where("org_id = ?", orgID).Find(&serials).Error)
	for _, serial := range serials {
		require.Equal(t, enums.SerialStatusUsed, serial.Status)
	}

	var links []models.InvoiceItemSerial
	require.NoError(t, db.Where("invoice_item_id = ?", itemID).Find(&links).Error)
	require.Len(t, links, 2)
	for _, link := range links {
		require.Equal(t, enums.LinkSerialStatusUsed, link.Status)
		require.NotNil(t, link.UsedAt)
	}

	// used serials can never be released or re-consumed
	err = svc.ReleaseByInvoiceItems(ctx, []uuid.UUID{itemID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	_, err = svc.ConsumeByInvoiceItems(ctx, []uuid.UUID{itemID}, usedAt)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestConsumeCountMismatchSurfacesConflict(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()
	itemID := uuid.New()

	_, err := svc.RegisterSerials(ctx, RegisterInput{
		OrgID: orgID, ProductID: productID, Numbers: []string{"SN-1"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Reserve(ctx, ReserveInput{
		OrgID: orgID, ProductID: productID, InvoiceItemID: itemID, Numbers: []string{"SN-1"},
	}))

	// simulate an out-of-band status change between lookup and flip
	require.NoError(t, db.Model(&models.ProductSerial{}).
		Where("org_id = ?", orgID).
		Update("status", enums.SerialStatusAvailable).Error)

	_, err = svc.ConsumeByInvoiceItems(ctx, []uuid.UUID{itemID}, time.Now())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSerialConflict), "got %v", err)
}
