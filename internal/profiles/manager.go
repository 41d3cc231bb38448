package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"alphasignal-dashboard-go/internal/backend"
	"alphasignal-dashboard-go/internal/models"
	"go.uber.org/zap"
)

// ErrDeleteNotConfirmed is returned when a delete is attempted without the
// operator's explicit confirmation. Deletes are irreversible.
var ErrDeleteNotConfirmed = errors.New("delete requires explicit confirmation")

// ErrUnknownProfile is returned for an id absent from the canonical list.
var ErrUnknownProfile = errors.New("unknown profile id")

// Notice is a user-facing event: a toast on success or failure, and a
// refresh signal the page can react to.
type Notice struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// Notifier receives notices. The dashboard bridge fans them out to the
// browser; tests use a recording implementation.
type Notifier interface {
	Notify(Notice)
}

// NopNotifier discards all notices.
type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}

// Store persists canonical snapshots and a mutation audit trail. May be nil
// when the local cache is disabled.
type Store interface {
	SaveSnapshot(profiles []models.Profile) error
	RecordMutation(op, profileID string, patch models.ProfilePatch, outcome error) error
}

// ProfileView is one profile as the dashboard renders it: the effective
// (canonical + staged edits) record, the percent-facing slippage values, the
// display rules derived from the effective enums, and the staged field names.
type ProfileView struct {
	models.Profile
	BuySlippagePct       float64  `json:"buy_slippage_percent"`
	SellSlippagePct      float64  `json:"sell_slippage_percent"`
	BuyAmountLabel       string   `json:"buy_amount_label"`
	BuyAmountPlaceholder string   `json:"buy_amount_placeholder"`
	SellValueLabel       string   `json:"sell_value_label"`
	SellValuePlaceholder string   `json:"sell_value_placeholder"`
	SellValueHelp        string   `json:"sell_value_help,omitempty"`
	PendingFields        []string `json:"pending_fields,omitempty"`
}

// Manager owns the canonical profile list and the edit overlay, and turns
// staged edits and lifecycle actions into backend requests. All state
// reaches the presentational layer through it.
type Manager struct {
	client   backend.ClientInterface
	overlay  *Overlay
	store    Store
	notifier Notifier
	logger   *zap.Logger

	mu        sync.Mutex
	canonical []models.Profile
	byID      map[string]models.Profile
}

// NewManager creates a manager around the given backend client. store may be
// nil; notifier may be nil for a silent manager.
func NewManager(client backend.ClientInterface, store Store, notifier Notifier, logger *zap.Logger) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		client:   client,
		overlay:  NewOverlay(),
		store:    store,
		notifier: notifier,
		logger:   logger,
		byID:     make(map[string]models.Profile),
	}
}

// Seed pre-populates the canonical list without a fetch, e.g. from the local
// snapshot store at startup. Seeded records go through the same overlay
// seeding as fetched ones.
func (m *Manager) Seed(profiles []models.Profile) {
	m.applyCanonical(profiles)
}

// Refresh fetches the canonical list. Every returned record is seeded into
// the overlay before any caller can read it; staged edits survive untouched.
// On failure the previous state stays visible and the error is returned.
func (m *Manager) Refresh(ctx context.Context) error {
	fetched, err := m.client.ListProfiles(ctx)
	if err != nil {
		m.logger.Error("Failed to refresh profiles", zap.Error(err))
		m.notifier.Notify(Notice{Kind: "error", Title: "Profile Load Failed", Detail: err.Error()})
		return fmt.Errorf("refresh profiles: %w", err)
	}

	m.applyCanonical(fetched)

	if m.store != nil {
		if err := m.store.SaveSnapshot(fetched); err != nil {
			m.logger.Warn("Failed to snapshot profiles", zap.Error(err))
		}
	}

	m.notifier.Notify(Notice{Kind: "profiles_refreshed", Title: "Profiles Refreshed"})
	return nil
}

func (m *Manager) applyCanonical(fetched []models.Profile) {
	known := make(map[string]bool, len(fetched))
	for _, p := range fetched {
		m.overlay.EnsureSeeded(p.ID, p)
		known[p.ID] = true
	}
	m.overlay.Prune(known)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.canonical = fetched
	m.byID = make(map[string]models.Profile, len(fetched))
	for _, p := range fetched {
		m.byID[p.ID] = p
	}
}

// SetField stages one edit for id. The entry is created from the current
// canonical record when absent. Slippage fields take percent values. A dirty
// record whose id has left the canonical list stays editable until it is
// committed or forgotten.
func (m *Manager) SetField(id string, field Field, value any) error {
	m.mu.Lock()
	canonical, ok := m.byID[id]
	m.mu.Unlock()
	if ok {
		m.overlay.EnsureSeeded(id, canonical)
	}
	return m.overlay.SetField(id, field, value)
}

// Effective returns the merged view for id: the canonical record with staged
// edits applied.
func (m *Manager) Effective(id string) (models.Profile, error) {
	m.mu.Lock()
	canonical, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		// A dirty record can outlive its canonical row between polls.
		if baseline, seeded := m.overlay.Baseline(id); seeded {
			return m.overlay.Effective(id, baseline), nil
		}
		return models.Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, id)
	}
	return m.overlay.Effective(id, canonical), nil
}

// Profiles returns the render-ready view of every canonical profile in
// fetch order, followed by dirty records whose id has left the canonical
// list. Those keep rendering from their seed-time baseline so typed-in work
// stays visible until the operator commits or forgets it.
func (m *Manager) Profiles() []ProfileView {
	m.mu.Lock()
	canonical := make([]models.Profile, len(m.canonical))
	copy(canonical, m.canonical)
	m.mu.Unlock()

	views := make([]ProfileView, 0, len(canonical))
	seen := make(map[string]bool, len(canonical))
	for _, p := range canonical {
		views = append(views, m.view(p))
		seen[p.ID] = true
	}

	dirty := m.overlay.Dirty()
	departed := make([]string, 0, len(dirty))
	for id := range dirty {
		if !seen[id] {
			departed = append(departed, id)
		}
	}
	sort.Strings(departed)
	for _, id := range departed {
		views = append(views, m.view(dirty[id]))
	}
	return views
}

func (m *Manager) view(canonical models.Profile) ProfileView {
	effective := m.overlay.Effective(canonical.ID, canonical)

	var pending []string
	if patch, ok := m.overlay.Pending(canonical.ID); ok {
		pending = patch.Fields()
	}

	return ProfileView{
		Profile:              effective,
		BuySlippagePct:       effective.BuySlippagePercent(),
		SellSlippagePct:      effective.SellSlippagePercent(),
		BuyAmountLabel:       effective.BuyAmountLabel(),
		BuyAmountPlaceholder: effective.BuyAmountPlaceholder(),
		SellValueLabel:       effective.SellValueLabel(),
		SellValuePlaceholder: effective.SellValuePlaceholder(),
		SellValueHelp:        effective.SellValueHelp(),
		PendingFields:        pending,
	}
}

// Commit flushes the staged patch for id. With nothing staged it is a
// no-op: nothing is sent. On success only the fields this commit carried
// are cleared (a value re-edited mid-flight survives), then the canonical
// list is refreshed. On failure the patch is retained so the operator can
// retry without re-entering values.
func (m *Manager) Commit(ctx context.Context, id string) error {
	patch, ok := m.overlay.Pending(id)
	if !ok {
		m.logger.Debug("Commit with no pending edits", zap.String("profile_id", id))
		return nil
	}

	err := m.client.UpdateProfile(ctx, id, patch)
	m.record("update", id, patch, err)
	if err != nil {
		m.logger.Error("Failed to update profile", zap.String("profile_id", id), zap.Error(err))
		m.notifier.Notify(Notice{Kind: "error", Title: "Update Failed", Detail: err.Error()})
		return fmt.Errorf("commit profile %s: %w", id, err)
	}

	// Clear exactly what this commit sent; the refresh below re-seeds the
	// id from the server's new canonical value.
	m.overlay.ClearCommitted(id, patch)
	m.notifier.Notify(Notice{
		Kind:   "profile_updated",
		Title:  "Profile Updated",
		Detail: "The profile settings have been successfully updated.",
	})

	return m.Refresh(ctx)
}

// Create registers a new signal source. Trading fields are defaulted by the
// backend; existing overlay entries are never touched.
func (m *Manager) Create(ctx context.Context, platform models.Platform, username string) (string, error) {
	if !platform.Valid() {
		return "", fmt.Errorf("%w: platform %q", ErrInvalidValue, platform)
	}

	id, err := m.client.CreateProfile(ctx, platform, username)
	m.record("create", id, models.ProfilePatch{}, err)
	if err != nil {
		m.notifier.Notify(Notice{Kind: "error", Title: "Create Failed", Detail: err.Error()})
		return "", fmt.Errorf("create profile for %s: %w", username, err)
	}

	m.notifier.Notify(Notice{
		Kind:   "profile_created",
		Title:  "Profile Created",
		Detail: "The profile has been successfully created.",
	})

	if err := m.Refresh(ctx); err != nil {
		// The create itself succeeded; the next poll picks the record up.
		m.logger.Warn("Refresh after create failed", zap.Error(err))
	}
	return id, nil
}

// Activate enables the bot for this profile. Independent of staged edits.
func (m *Manager) Activate(ctx context.Context, id string) error {
	err := m.client.ActivateProfile(ctx, id)
	m.record("activate", id, models.ProfilePatch{}, err)
	if err != nil {
		m.notifier.Notify(Notice{Kind: "error", Title: "Activate Failed", Detail: err.Error()})
		return fmt.Errorf("activate profile %s: %w", id, err)
	}
	return m.Refresh(ctx)
}

// Deactivate disables the bot for this profile. Independent of staged edits.
func (m *Manager) Deactivate(ctx context.Context, id string) error {
	err := m.client.DeactivateProfile(ctx, id)
	m.record("deactivate", id, models.ProfilePatch{}, err)
	if err != nil {
		m.notifier.Notify(Notice{Kind: "error", Title: "Deactivate Failed", Detail: err.Error()})
		return fmt.Errorf("deactivate profile %s: %w", id, err)
	}
	return m.Refresh(ctx)
}

// Delete removes the profile server-side and locally. It refuses to run
// without confirmed set; on failure the record stays listed.
func (m *Manager) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}

	err := m.client.DeleteProfile(ctx, id)
	m.record("delete", id, models.ProfilePatch{}, err)
	if err != nil {
		m.notifier.Notify(Notice{Kind: "error", Title: "Delete Failed", Detail: err.Error()})
		return fmt.Errorf("delete profile %s: %w", id, err)
	}

	m.overlay.Forget(id)
	m.mu.Lock()
	delete(m.byID, id)
	remaining := m.canonical[:0:0]
	for _, p := range m.canonical {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	m.canonical = remaining
	m.mu.Unlock()

	m.notifier.Notify(Notice{Kind: "profile_deleted", Title: "Profile Deleted"})
	return m.Refresh(ctx)
}

func (m *Manager) record(op, id string, patch models.ProfilePatch, outcome error) {
	if m.store == nil {
		return
	}
	if err := m.store.RecordMutation(op, id, patch, outcome); err != nil {
		m.logger.Warn("Failed to record mutation",
			zap.String("op", op),
			zap.String("profile_id", id),
			zap.Error(err),
		)
	}
}
