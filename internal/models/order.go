package models

import "time"

// Order is one tracked position as reported by the backend. LastPriceMax is
// the running high used by the rolling stop loss.
type Order struct {
	ID           string      `json:"id"`
	MintAddress  string      `json:"mint_address"`
	LastPriceMax float64     `json:"last_price_max"`
	SellMode     SellMode    `json:"sell_mode"`
	SellValue    float64     `json:"sell_value"`
	SellType     SellType    `json:"sell_type"`
	TimeAdded    time.Time   `json:"time_added"`
	Balance      float64     `json:"balance"`
	Status       OrderStatus `json:"status"`
	Profit       *string     `json:"profit"`
	Slippage     float64     `json:"slippage"`
}
