package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"alphasignal-dashboard-go/internal/backend"
	"alphasignal-dashboard-go/internal/models"
	"go.uber.org/zap"
)

// dustValue is the row value in USD under which a holding counts as dust
// for the hide filter.
const dustValue = 0.01

// TokenRow is one wallet holding joined with its transient view state.
type TokenRow struct {
	models.WalletToken
	SellInProgress bool `json:"sell_in_progress"`
}

// Snapshot is the render-ready wallet view. Err carries the last fetch
// failure and is surfaced in place of data; the previous rows stay available
// until the next successful poll.
type Snapshot struct {
	Rows             []TokenRow     `json:"rows"`
	TotalValue       float64        `json:"total_value"`
	PercentChange24h float64        `json:"percent_change_value_24h"`
	OpenOrders       []models.Order `json:"open_orders"`
	HideDust         bool           `json:"hide_dust"`
	Err              string         `json:"error,omitempty"`
}

// Poller owns the periodic wallet and open-order fetches. Transient per-row
// state (the sell-in-progress flag) is keyed by mint address, never by row
// position: the backend is free to reorder or regrow the token list between
// polls without detaching flags from their tokens.
type Poller struct {
	client   backend.ClientInterface
	logger   *zap.Logger
	interval time.Duration
	stop     context.CancelFunc

	// OnRefresh, when set, is invoked after every successful poll so the
	// bridge can push a change notice to the page.
	OnRefresh func()

	mu             sync.Mutex
	value          *models.WalletValue
	openOrders     []models.Order
	sellInProgress map[string]bool
	hideDust       bool
	lastErr        error
}

// NewPoller creates a poller that refreshes every interval once Run is
// called.
func NewPoller(client backend.ClientInterface, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		client:         client,
		logger:         logger,
		interval:       interval,
		sellInProgress: make(map[string]bool),
	}
}

// Run performs an initial fetch and then re-polls on the configured
// interval until the context is cancelled or Stop is called.
func (p *Poller) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.stop = cancel
	p.mu.Unlock()

	if err := p.Refresh(ctx); err != nil {
		p.logger.Error("Initial wallet fetch failed", zap.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Starting wallet poll loop", zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopping wallet poll loop")
			return
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				p.logger.Error("Wallet poll failed", zap.Error(err))
			}
		}
	}
}

// Stop cancels a running poll loop. Safe to call when Run was never started.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop := p.stop
	p.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Refresh fetches the wallet value and open orders once. A failed fetch
// records the error for the snapshot and leaves the previous data in place.
func (p *Poller) Refresh(ctx context.Context) error {
	value, err := p.client.WalletValue(ctx)
	if err != nil {
		p.setErr(err)
		return fmt.Errorf("refresh wallet: %w", err)
	}

	orders, err := p.client.ListOrders(ctx, models.OrderStatusActive)
	if err != nil {
		p.setErr(err)
		return fmt.Errorf("refresh open orders: %w", err)
	}

	p.mu.Lock()
	p.value = value
	p.openOrders = orders
	p.lastErr = nil

	// Drop flags for tokens that left the wallet; flags for present mints
	// survive reorders because they are keyed by mint, not index.
	present := make(map[string]bool, len(value.WalletTokens))
	for _, token := range value.WalletTokens {
		present[token.MintAddress] = true
	}
	for mint := range p.sellInProgress {
		if !present[mint] {
			delete(p.sellInProgress, mint)
		}
	}
	onRefresh := p.OnRefresh
	p.mu.Unlock()

	if onRefresh != nil {
		onRefresh()
	}
	return nil
}

func (p *Poller) setErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// Snapshot returns the current wallet view with the dust filter applied and
// per-mint flags attached.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{HideDust: p.hideDust}
	if p.lastErr != nil {
		snap.Err = p.lastErr.Error()
	}
	if p.value == nil {
		return snap
	}

	snap.TotalValue = p.value.TotalValue
	snap.PercentChange24h = p.value.PercentChangeValue24
	snap.OpenOrders = append([]models.Order(nil), p.openOrders...)

	for _, token := range p.value.WalletTokens {
		if p.hideDust && token.Value < dustValue {
			continue
		}
		snap.Rows = append(snap.Rows, TokenRow{
			WalletToken:    token,
			SellInProgress: p.sellInProgress[token.MintAddress],
		})
	}
	return snap
}

// MarkSellInProgress sets or clears the per-token sell flag.
func (p *Poller) MarkSellInProgress(mint string, inProgress bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if inProgress {
		p.sellInProgress[mint] = true
	} else {
		delete(p.sellInProgress, mint)
	}
}

// SellInProgress reports the flag for a mint.
func (p *Poller) SellInProgress(mint string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sellInProgress[mint]
}

// SetHideDust toggles the near-zero-balance filter. View state only; it
// never changes what the poller fetches or stores.
func (p *Poller) SetHideDust(hide bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hideDust = hide
}

// Orders fetches completed or cancelled orders one-shot; those views are
// not polled.
func (p *Poller) Orders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid order status %d", status)
	}
	orders, err := p.client.ListOrders(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list orders %d: %w", status, err)
	}
	return orders, nil
}

// CancelOrder cancels an open order and re-fetches so the view reflects it.
func (p *Poller) CancelOrder(ctx context.Context, id string) error {
	if err := p.client.CancelOrder(ctx, id); err != nil {
		return fmt.Errorf("cancel order %s: %w", id, err)
	}
	return p.Refresh(ctx)
}
