package stockledger

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	"github.com/angelmondragon/stockbill-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:stockledger_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.StockLedgerEntry{}))
	return conn
}

func TestSumByOrgProductFoldsSignedEntries(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()

	entries := []*models.StockLedgerEntry{
		{OrgID: orgID, ProductID: productID, Type: enums.StockMovementTypeIn, Quantity: 10, Direction: 1},
		{OrgID: orgID, ProductID: productID, Type: enums.StockMovementTypeOut, Quantity: 3, Direction: 1},
		{OrgID: orgID, ProductID: productID, Type: enums.StockMovementTypeAdjustment, Quantity: 2, Direction: -1},
		{OrgID: orgID, ProductID: productID, Type: enums.StockMovementTypeAdjustment, Quantity: 1, Direction: 1},
		// other product must not leak into the sum
		{OrgID: orgID, ProductID: uuid.New(), Type: enums.StockMovementTypeIn, Quantity: 99, Direction: 1},
	}
	require.NoError(t, repo.CreateBatch(ctx, entries))

	total, err := repo.SumByOrgProduct(ctx, orgID, productID)
	require.NoError(t, err)
	require.Equal(t, 10-3-2+1, total)
}

func TestSumByOrgProductEmptyJournalIsZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	total, err := repo.SumByOrgProduct(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestSumMatchesReplayedJournal(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()
	rng := rand.New(rand.NewSource(42))

	expected := 0
	for i := 0; i < 200; i++ {
		entry := &models.StockLedgerEntry{
			OrgID:     orgID,
			ProductID: productID,
			Quantity:  rng.Intn(50) + 1,
			Direction: 1,
		}
		switch rng.Intn(3) {
		case 0:
			entry.Type = enums.StockMovementTypeIn
		case 1:
			entry.Type = enums.StockMovementTypeOut
		default:
			entry.Type = enums.StockMovementTypeAdjustment
			if rng.Intn(2) == 0 {
				entry.Direction = -1
			}
		}
		require.NoError(t, repo.Create(ctx, entry))
		expected += entry.SignedQuantity()
	}

	total, err := repo.SumByOrgProduct(ctx, orgID, productID)
	require.NoError(t, err)
	require.Equal(t, expected, total)
}

func TestListByProductPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	productID := uuid.New()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Create(ctx, &models.StockLedgerEntry{
			OrgID:     orgID,
			ProductID: productID,
			Type:      enums.StockMovementTypeIn,
			Quantity:  i + 1,
			Direction: 1,
		}))
	}

	seen := map[uuid.UUID]bool{}
	cursor := ""
	pages := 0
	for {
		entries, next, err := repo.ListByProduct(ctx, orgID, productID, pagination.Params{Limit: 3, Cursor: cursor})
		require.NoError(t, err)
		for _, e := range entries {
			require.False(t, seen[e.ID], "entry repeated across pages")
			seen[e.ID] = true
		}
		pages++
		if next == "" {
			break
		}
		cursor = next
		require.LessOrEqual(t, pages, 10, "cursor loop did not terminate")
	}
	require.Len(t, seen, 7)
	require.Equal(t, 3, pages)
}
