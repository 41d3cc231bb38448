package database

import (
	"errors"
	"testing"

	"alphasignal-dashboard-go/internal/models"
	"github.com/stretchr/testify/assert"
)

// setupDB creates a fresh in-memory database for each test.
func setupDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase("file::memory:")
	assert.NoError(t, err)
	return db
}

func snapshotProfiles() []models.Profile {
	return []models.Profile{
		{
			ID:            "p1",
			Platform:      models.PlatformTwitter,
			Username:      "alpha",
			BuyType:       models.BuyTypeSOL,
			BuyAmountType: models.AmountTypePercent,
			BuyAmount:     10,
			BuySlippage:   150,
			SellMode:      models.SellModeStopLoss,
			SellType:      models.SellTypeUSDC,
			SellValue:     20,
			SellSlippage:  200,
		},
		{ID: "p2", Platform: models.PlatformTwitter, Username: "beta"},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := setupDB(t)

	assert.NoError(t, db.SaveSnapshot(snapshotProfiles()))

	loaded, err := db.LoadLastSnapshot()
	assert.NoError(t, err)
	assert.Equal(t, snapshotProfiles(), loaded)
}

func TestSaveSnapshotReplacesPreviousBatch(t *testing.T) {
	db := setupDB(t)
	assert.NoError(t, db.SaveSnapshot(snapshotProfiles()))

	// The server dropped p2.
	assert.NoError(t, db.SaveSnapshot(snapshotProfiles()[:1]))

	loaded, err := db.LoadLastSnapshot()
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, "p1", loaded[0].ID)
}

func TestEmptyCacheLoadsEmptyList(t *testing.T) {
	db := setupDB(t)

	loaded, err := db.LoadLastSnapshot()

	assert.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMutationAuditLog(t *testing.T) {
	db := setupDB(t)

	amount := 5.0
	patch := models.ProfilePatch{BuyAmount: &amount}
	assert.NoError(t, db.RecordMutation("update", "p1", patch, nil))
	assert.NoError(t, db.RecordMutation("delete", "p2", models.ProfilePatch{}, errors.New("backend down")))

	records, err := db.RecentMutations(10)
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "delete", records[0].Operation)
	assert.False(t, records[0].Succeeded)
	assert.Equal(t, "backend down", records[0].Error)

	assert.Equal(t, "update", records[1].Operation)
	assert.True(t, records[1].Succeeded)
	assert.Contains(t, records[1].Patch, `"buy_amount":5`)
}
