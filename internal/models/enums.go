package models

// AmountType selects how a profile's buy amount is interpreted: a percent
// of the available balance, or an absolute quantity of the buy asset.
type AmountType string

const (
	AmountTypePercent AmountType = "percent"
	AmountTypeAmount  AmountType = "amount"
)

// Valid reports whether the value is one of the two closed enum members.
func (a AmountType) Valid() bool {
	return a == AmountTypePercent || a == AmountTypeAmount
}

// BuyType is the asset spent when buying.
type BuyType string

const (
	BuyTypeUSDC BuyType = "USDC"
	BuyTypeSOL  BuyType = "SOL"
)

func (b BuyType) Valid() bool {
	return b == BuyTypeUSDC || b == BuyTypeSOL
}

// SellType is the asset received when selling.
type SellType string

const (
	SellTypeUSDC SellType = "USDC"
	SellTypeSOL  SellType = "SOL"
)

func (s SellType) Valid() bool {
	return s == SellTypeUSDC || s == SellTypeSOL
}

// SellMode determines the meaning of a profile's sell value: minutes held
// for time_based, percent drop from the running price high for stop_loss.
type SellMode string

const (
	SellModeTimeBased SellMode = "time_based"
	SellModeStopLoss  SellMode = "stop_loss"
)

func (s SellMode) Valid() bool {
	return s == SellModeTimeBased || s == SellModeStopLoss
}

// Platform identifies where a signal source posts.
type Platform string

const (
	PlatformTwitter Platform = "twitter"
)

func (p Platform) Valid() bool {
	return p == PlatformTwitter
}

// OrderStatus is the backend's integer order state.
type OrderStatus int

const (
	OrderStatusActive     OrderStatus = 0
	OrderStatusProcessing OrderStatus = 1
	OrderStatusComplete   OrderStatus = 2
	OrderStatusCanceled   OrderStatus = 3
)

func (s OrderStatus) Valid() bool {
	return s >= OrderStatusActive && s <= OrderStatusCanceled
}
