package models

import "fmt"

// Profile binds one tracked signal source to its trading configuration.
// The id is assigned by the backend and is stable for the record's lifetime;
// platform and username are immutable after creation. Slippage fields are
// stored in basis points.
type Profile struct {
	ID            string     `json:"id"`
	Platform      Platform   `json:"platform"`
	Username      string     `json:"username"`
	IsActive      bool       `json:"is_active"`
	BuyType       BuyType    `json:"buy_type"`
	BuyAmountType AmountType `json:"buy_amount_type"`
	BuyAmount     float64    `json:"buy_amount"`
	BuySlippage   float64    `json:"buy_slippage"`
	SellMode      SellMode   `json:"sell_mode"`
	SellType      SellType   `json:"sell_type"`
	SellValue     float64    `json:"sell_value"`
	SellSlippage  float64    `json:"sell_slippage"`
}

// BuySlippagePercent returns the buy slippage in display units.
func (p Profile) BuySlippagePercent() float64 {
	return ToPercent(p.BuySlippage)
}

// SellSlippagePercent returns the sell slippage in display units.
func (p Profile) SellSlippagePercent() float64 {
	return ToPercent(p.SellSlippage)
}

// BuyAmountLabel describes what the buy-amount field means for the current
// amount type. Display rule only: switching the amount type never alters the
// stored amount.
func (p Profile) BuyAmountLabel() string {
	if p.BuyAmountType == AmountTypePercent {
		return fmt.Sprintf("Total %% of %s Spent per Buy", p.BuyType)
	}
	return fmt.Sprintf("Total %s Spent per Buy", p.BuyType)
}

// BuyAmountPlaceholder is the input hint matching BuyAmountLabel.
func (p Profile) BuyAmountPlaceholder() string {
	if p.BuyAmountType == AmountTypePercent {
		return "% (percentage)"
	}
	return fmt.Sprintf("Units (%s)", p.BuyType)
}

// SellValueLabel describes what the sell-value field means for the current
// sell mode.
func (p Profile) SellValueLabel() string {
	if p.SellMode == SellModeTimeBased {
		return "Total Minutes Until Sell"
	}
	return "Rolling Stop Loss % to Sell"
}

// SellValuePlaceholder is the input hint matching SellValueLabel.
func (p Profile) SellValuePlaceholder() string {
	if p.SellMode == SellModeTimeBased {
		return "Minutes"
	}
	return "Percentage"
}

// SellValueHelp is the operator-facing explanation of the stop-loss mode.
// The trigger itself is computed server-side; this only surfaces the
// semantics of the ratcheting reference high.
func (p Profile) SellValueHelp() string {
	if p.SellMode != SellModeStopLoss {
		return ""
	}
	return "Percentage drop from the highest price observed after purchase " +
		"that triggers a sell. The reference high only moves up, so the stop " +
		"protects the downside while locking in the upside."
}
