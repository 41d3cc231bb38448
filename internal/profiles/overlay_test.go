package profiles

import (
	"testing"

	"alphasignal-dashboard-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func sampleProfile(id string) models.Profile {
	return models.Profile{
		ID:            id,
		Platform:      models.PlatformTwitter,
		Username:      "alpha",
		IsActive:      false,
		BuyType:       models.BuyTypeSOL,
		BuyAmountType: models.AmountTypeAmount,
		BuyAmount:     2.5,
		BuySlippage:   100,
		SellMode:      models.SellModeTimeBased,
		SellType:      models.SellTypeUSDC,
		SellValue:     10,
		SellSlippage:  200,
	}
}

func TestEnsureSeededDoesNotClobberPendingEdits(t *testing.T) {
	// Arrange
	o := NewOverlay()
	o.EnsureSeeded("p1", sampleProfile("p1"))
	assert.NoError(t, o.SetField("p1", FieldSellValue, 15.0))

	// Act: a background refresh re-seeds the same id with fresh data.
	refreshed := sampleProfile("p1")
	refreshed.SellValue = 99
	o.EnsureSeeded("p1", refreshed)

	// Assert: the staged edit is untouched.
	patch, ok := o.Pending("p1")
	assert.True(t, ok)
	assert.NotNil(t, patch.SellValue)
	assert.Equal(t, 15.0, *patch.SellValue)
}

func TestEffectiveMergesOverlayOverCanonical(t *testing.T) {
	o := NewOverlay()
	canonical := sampleProfile("p1")
	canonical.SellMode = models.SellModeTimeBased
	canonical.SellValue = 10

	o.EnsureSeeded("p1", canonical)
	assert.NoError(t, o.SetField("p1", FieldSellValue, 15.0))

	effective := o.Effective("p1", canonical)

	assert.Equal(t, models.SellModeTimeBased, effective.SellMode)
	assert.Equal(t, 15.0, effective.SellValue)
	// Untouched fields read through from canonical.
	assert.Equal(t, 2.5, effective.BuyAmount)
}

func TestEffectiveWithoutEntryReturnsCanonical(t *testing.T) {
	o := NewOverlay()
	canonical := sampleProfile("p1")

	assert.Equal(t, canonical, o.Effective("p1", canonical))
}

func TestSetFieldRequiresSeededEntry(t *testing.T) {
	o := NewOverlay()

	// An entry's baseline must come from a canonical record; an unseeded id
	// is rejected rather than staged against a zero baseline.
	err := o.SetField("p1", FieldBuyAmount, 7.0)

	assert.ErrorIs(t, err, ErrUnknownProfile)
	_, ok := o.Pending("p1")
	assert.False(t, ok)

	o.EnsureSeeded("p1", sampleProfile("p1"))
	assert.NoError(t, o.SetField("p1", FieldBuyAmount, 7.0))

	patch, ok := o.Pending("p1")
	assert.True(t, ok)
	assert.Equal(t, []string{"buy_amount"}, patch.Fields())
}

func TestSetFieldRejectsUnknownField(t *testing.T) {
	o := NewOverlay()

	err := o.SetField("p1", Field("username"), "bob")

	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSetFieldRejectsInvalidEnumValue(t *testing.T) {
	o := NewOverlay()
	o.EnsureSeeded("p1", sampleProfile("p1"))

	assert.ErrorIs(t, o.SetField("p1", FieldSellMode, "market_close"), ErrInvalidValue)
	assert.ErrorIs(t, o.SetField("p1", FieldBuyType, "BTC"), ErrInvalidValue)
	assert.ErrorIs(t, o.SetField("p1", FieldBuyAmount, "not-a-number"), ErrInvalidValue)

	// Nothing staged after rejected edits.
	_, ok := o.Pending("p1")
	assert.False(t, ok)
}

func TestSetFieldAcceptsEnumStringsFromTheWire(t *testing.T) {
	o := NewOverlay()
	o.EnsureSeeded("p1", sampleProfile("p1"))

	assert.NoError(t, o.SetField("p1", FieldSellMode, "stop_loss"))
	assert.NoError(t, o.SetField("p1", FieldBuyAmountType, "percent"))

	patch, ok := o.Pending("p1")
	assert.True(t, ok)
	assert.Equal(t, models.SellModeStopLoss, *patch.SellMode)
	assert.Equal(t, models.AmountTypePercent, *patch.BuyAmountType)
}

func TestSlippageEditsConvertPercentToBasisPoints(t *testing.T) {
	o := NewOverlay()
	o.EnsureSeeded("p1", sampleProfile("p1"))

	assert.NoError(t, o.SetField("p1", FieldBuySlippage, 1.5))
	assert.NoError(t, o.SetField("p1", FieldSellSlippage, 0.0))

	patch, ok := o.Pending("p1")
	assert.True(t, ok)
	assert.Equal(t, 150.0, *patch.BuySlippage)
	assert.Equal(t, 0.0, *patch.SellSlippage)
}

func TestClearCommittedKeepsMidFlightReEdits(t *testing.T) {
	o := NewOverlay()
	o.EnsureSeeded("p1", sampleProfile("p1"))
	assert.NoError(t, o.SetField("p1", FieldSellValue, 15.0))
	assert.NoError(t, o.SetField("p1", FieldBuyAmount, 3.0))

	sent, ok := o.Pending("p1")
	assert.True(t, ok)

	// The operator edits sell_value again while the commit is in flight.
	assert.NoError(t, o.SetField("p1", FieldSellValue, 20.0))

	o.ClearCommitted("p1", sent)

	patch, ok := o.Pending("p1")
	assert.True(t, ok)
	assert.Nil(t, patch.BuyAmount, "committed, unchanged field is cleared")
	assert.NotNil(t, patch.SellValue, "re-edited field survives the clear")
	assert.Equal(t, 20.0, *patch.SellValue)
}

func TestPruneKeepsDirtyEntries(t *testing.T) {
	o := NewOverlay()
	o.EnsureSeeded("clean", sampleProfile("clean"))
	o.EnsureSeeded("dirty", sampleProfile("dirty"))
	assert.NoError(t, o.SetField("dirty", FieldBuyAmount, 1.0))

	o.Prune(map[string]bool{})

	_, cleanSeeded := o.Baseline("clean")
	_, dirtySeeded := o.Baseline("dirty")
	assert.False(t, cleanSeeded, "clean entry for a gone id is dropped")
	assert.True(t, dirtySeeded, "dirty entry is retained")
}
