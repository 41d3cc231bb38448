package profiles

import (
	"errors"
	"fmt"
	"sync"

	"alphasignal-dashboard-go/internal/models"
)

// Field names the editable trading fields by their wire name.
type Field string

const (
	FieldBuyType       Field = "buy_type"
	FieldBuyAmountType Field = "buy_amount_type"
	FieldBuyAmount     Field = "buy_amount"
	FieldBuySlippage   Field = "buy_slippage"
	FieldSellMode      Field = "sell_mode"
	FieldSellType      Field = "sell_type"
	FieldSellValue     Field = "sell_value"
	FieldSellSlippage  Field = "sell_slippage"
)

var (
	// ErrUnknownField is returned for a field outside the closed editable set.
	ErrUnknownField = errors.New("unknown profile field")
	// ErrInvalidValue is returned when a value does not fit the field's type
	// or enum.
	ErrInvalidValue = errors.New("invalid field value")
)

// entry holds the per-id overlay state: the canonical record observed at
// seed time and the fields the operator has edited since.
type entry struct {
	baseline models.Profile
	patch    models.ProfilePatch
}

// Overlay is the keyed store of staged, uncommitted edits. Every displayed
// value is read through Effective; every edit goes through SetField. The
// presentational layer never mutates this state directly.
type Overlay struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[string]*entry)}
}

// EnsureSeeded initializes the entry for id to the canonical record if none
// exists. It never overwrites an existing entry: a background refresh must
// not clobber in-progress, uncommitted operator edits.
func (o *Overlay) EnsureSeeded(id string, canonical models.Profile) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.entries[id]; ok {
		return
	}
	o.entries[id] = &entry{baseline: canonical}
}

// SetField stages a single edit for an id that EnsureSeeded has initialized.
// Editing an unseeded id is an error: an entry's baseline must come from a
// canonical record, never from a zero value. Slippage fields take their value
// in percent and are stored in basis points; everything else is stored as
// given.
func (o *Overlay) SetField(id string, field Field, value any) error {
	// Validate before touching the entry so a rejected edit stages nothing.
	var stage func(*models.ProfilePatch)

	switch field {
	case FieldBuyType:
		v, err := asBuyType(value)
		if err != nil {
			return err
		}
		stage = func(p *models.ProfilePatch) { p.BuyType = &v }
	case FieldBuyAmountType:
		v, err := asAmountType(value)
		if err != nil {
			return err
		}
		stage = func(p *models.ProfilePatch) { p.BuyAmountType = &v }
	case FieldBuyAmount:
		v, err := asNumber(value)
		if err != nil {
			return err
		}
		stage = func(p *models.ProfilePatch) { p.BuyAmount = &v }
	case FieldBuySlippage:
		v, err := asNumber(value)
		if err != nil {
			return err
		}
		bps := models.ToBasisPoints(v)
		stage = func(p *models.ProfilePatch) { p.BuySlippage = &bps }
	case FieldSellMode:
		v, err := asSellMode(value)
		if err != nil {
			return err
		}
		stage = func(p *models.ProfilePatch) { p.SellMode = &v }
	case FieldSellType:
		v, err := asSellType(value)
		if err != nil {
			return err
		}
		stage = func(p *models.ProfilePatch) { p.SellType = &v }
	case FieldSellValue:
		v, err := asNumber(value)
		if err != nil {
			return err
		}
		stage = func(p *models.ProfilePatch) { p.SellValue = &v }
	case FieldSellSlippage:
		v, err := asNumber(value)
		if err != nil {
			return err
		}
		bps := models.ToBasisPoints(v)
		stage = func(p *models.ProfilePatch) { p.SellSlippage = &bps }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, id)
	}
	stage(&e.patch)
	return nil
}

// Effective returns the canonical record with any staged edits applied
// field by field.
func (o *Overlay) Effective(id string, canonical models.Profile) models.Profile {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return canonical
	}
	return e.patch.Apply(canonical)
}

// Pending returns a copy of the staged patch for id. The second return is
// false when nothing is staged.
func (o *Overlay) Pending(id string) (models.ProfilePatch, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok || e.patch.Empty() {
		return models.ProfilePatch{}, false
	}
	return e.patch, true
}

// ClearCommitted drops the staged fields that the given committed patch
// carried, but only where the staged value still matches what was sent. A
// field re-edited while the commit was in flight keeps its newer value.
func (o *Overlay) ClearCommitted(id string, sent models.ProfilePatch) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return
	}

	p := &e.patch
	if sent.BuyType != nil && p.BuyType != nil && *p.BuyType == *sent.BuyType {
		p.BuyType = nil
	}
	if sent.BuyAmountType != nil && p.BuyAmountType != nil && *p.BuyAmountType == *sent.BuyAmountType {
		p.BuyAmountType = nil
	}
	if sent.BuyAmount != nil && p.BuyAmount != nil && *p.BuyAmount == *sent.BuyAmount {
		p.BuyAmount = nil
	}
	if sent.BuySlippage != nil && p.BuySlippage != nil && *p.BuySlippage == *sent.BuySlippage {
		p.BuySlippage = nil
	}
	if sent.SellMode != nil && p.SellMode != nil && *p.SellMode == *sent.SellMode {
		p.SellMode = nil
	}
	if sent.SellType != nil && p.SellType != nil && *p.SellType == *sent.SellType {
		p.SellType = nil
	}
	if sent.SellValue != nil && p.SellValue != nil && *p.SellValue == *sent.SellValue {
		p.SellValue = nil
	}
	if sent.SellSlippage != nil && p.SellSlippage != nil && *p.SellSlippage == *sent.SellSlippage {
		p.SellSlippage = nil
	}
}

// Baseline returns the canonical record the entry was seeded from. Used to
// keep rendering a dirty record whose id has dropped out of the canonical
// list between polls.
func (o *Overlay) Baseline(id string) (models.Profile, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return models.Profile{}, false
	}
	return e.baseline, true
}

// Dirty returns the seed-time baseline of every entry holding staged edits,
// keyed by id.
func (o *Overlay) Dirty() map[string]models.Profile {
	o.mu.Lock()
	defer o.mu.Unlock()

	dirty := make(map[string]models.Profile)
	for id, e := range o.entries {
		if !e.patch.Empty() {
			dirty[id] = e.baseline
		}
	}
	return dirty
}

// Forget removes the entry for id, staged edits included. Used after a
// delete; a plain refresh never calls this for ids it still sees.
func (o *Overlay) Forget(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, id)
}

// Prune drops entries whose id the server no longer returns, unless they
// still hold staged edits the operator could want to re-apply elsewhere.
func (o *Overlay) Prune(known map[string]bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, e := range o.entries {
		if !known[id] && e.patch.Empty() {
			delete(o.entries, id)
		}
	}
}

func asNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return models.NumberOrZero(v), nil
	case int:
		return float64(v), nil
	case nil:
		// Absent input counts as zero, never as an error.
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: expected number, got %T", ErrInvalidValue, value)
	}
}

func asBuyType(value any) (models.BuyType, error) {
	var v models.BuyType
	switch t := value.(type) {
	case models.BuyType:
		v = t
	case string:
		v = models.BuyType(t)
	default:
		return "", fmt.Errorf("%w: expected buy type, got %T", ErrInvalidValue, value)
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: buy type %q", ErrInvalidValue, v)
	}
	return v, nil
}

func asSellType(value any) (models.SellType, error) {
	var v models.SellType
	switch t := value.(type) {
	case models.SellType:
		v = t
	case string:
		v = models.SellType(t)
	default:
		return "", fmt.Errorf("%w: expected sell type, got %T", ErrInvalidValue, value)
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: sell type %q", ErrInvalidValue, v)
	}
	return v, nil
}

func asAmountType(value any) (models.AmountType, error) {
	var v models.AmountType
	switch t := value.(type) {
	case models.AmountType:
		v = t
	case string:
		v = models.AmountType(t)
	default:
		return "", fmt.Errorf("%w: expected amount type, got %T", ErrInvalidValue, value)
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: amount type %q", ErrInvalidValue, v)
	}
	return v, nil
}

func asSellMode(value any) (models.SellMode, error) {
	var v models.SellMode
	switch t := value.(type) {
	case models.SellMode:
		v = t
	case string:
		v = models.SellMode(t)
	default:
		return "", fmt.Errorf("%w: expected sell mode, got %T", ErrInvalidValue, value)
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: sell mode %q", ErrInvalidValue, v)
	}
	return v, nil
}
