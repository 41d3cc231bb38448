package models

// ProfilePatch is a partial update over a profile's trading fields. Only
// non-nil fields are staged, applied, or serialized; identity fields and
// is_active are never part of a patch (activation is its own operation).
type ProfilePatch struct {
	BuyType       *BuyType    `json:"buy_type,omitempty"`
	BuyAmountType *AmountType `json:"buy_amount_type,omitempty"`
	BuyAmount     *float64    `json:"buy_amount,omitempty"`
	BuySlippage   *float64    `json:"buy_slippage,omitempty"` // basis points
	SellMode      *SellMode   `json:"sell_mode,omitempty"`
	SellType      *SellType   `json:"sell_type,omitempty"`
	SellValue     *float64    `json:"sell_value,omitempty"`
	SellSlippage  *float64    `json:"sell_slippage,omitempty"` // basis points
}

// Empty reports whether the patch stages no fields.
func (p ProfilePatch) Empty() bool {
	return p.BuyType == nil && p.BuyAmountType == nil && p.BuyAmount == nil &&
		p.BuySlippage == nil && p.SellMode == nil && p.SellType == nil &&
		p.SellValue == nil && p.SellSlippage == nil
}

// Fields returns the wire names of the staged fields.
func (p ProfilePatch) Fields() []string {
	var fields []string
	if p.BuyType != nil {
		fields = append(fields, "buy_type")
	}
	if p.BuyAmountType != nil {
		fields = append(fields, "buy_amount_type")
	}
	if p.BuyAmount != nil {
		fields = append(fields, "buy_amount")
	}
	if p.BuySlippage != nil {
		fields = append(fields, "buy_slippage")
	}
	if p.SellMode != nil {
		fields = append(fields, "sell_mode")
	}
	if p.SellType != nil {
		fields = append(fields, "sell_type")
	}
	if p.SellValue != nil {
		fields = append(fields, "sell_value")
	}
	if p.SellSlippage != nil {
		fields = append(fields, "sell_slippage")
	}
	return fields
}

// Apply returns the profile with the staged fields overriding the canonical
// values. The input is not mutated.
func (p ProfilePatch) Apply(profile Profile) Profile {
	if p.BuyType != nil {
		profile.BuyType = *p.BuyType
	}
	if p.BuyAmountType != nil {
		profile.BuyAmountType = *p.BuyAmountType
	}
	if p.BuyAmount != nil {
		profile.BuyAmount = *p.BuyAmount
	}
	if p.BuySlippage != nil {
		profile.BuySlippage = *p.BuySlippage
	}
	if p.SellMode != nil {
		profile.SellMode = *p.SellMode
	}
	if p.SellType != nil {
		profile.SellType = *p.SellType
	}
	if p.SellValue != nil {
		profile.SellValue = *p.SellValue
	}
	if p.SellSlippage != nil {
		profile.SellSlippage = *p.SellSlippage
	}
	return profile
}
