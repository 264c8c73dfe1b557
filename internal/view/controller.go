// Package view holds the per-session dashboard state: filter selections,
// the two detail-panel slots, and the login state machine. The dataset
// itself is read-only; the controller owns only selection state.
package view

import (
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/market-dashboard/internal/derive"
	"github.com/sells-group/market-dashboard/internal/model"
)

// ErrUnknownCounty is returned when a selection names a rank not in the dataset.
var ErrUnknownCounty = eris.New("view: unknown county rank")

// ErrUnknownStatCard is returned when a selection names an unrecognized card.
var ErrUnknownStatCard = eris.New("view: unknown stat card")

// Controller owns the mutable view state for one session. All mutations are
// atomic with respect to each other; HTTP handlers call in from request
// goroutines, hence the mutex.
type Controller struct {
	mu sync.Mutex

	counties []model.County

	filters model.FilterState

	// Independent single-slot selections. Either may be open at any time.
	selectedRank *int
	selectedCard *model.StatCard

	auth model.AuthState
}

// NewController creates a controller over the given dataset in the Unknown
// auth state. The slice is shared, never copied or written.
func NewController(counties []model.County) *Controller {
	return &Controller{counties: counties, auth: model.AuthUnknown}
}

// SetTier replaces only the tier constraint.
func (c *Controller) SetTier(t model.Tier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Tier = t
}

// SetUnmetNeed replaces only the unmet-need constraint.
func (c *Controller) SetUnmetNeed(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.UnmetNeed = v
}

// SetCompetition replaces only the competition constraint.
func (c *Controller) SetCompetition(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Competition = v
}

// SetMarketEntry replaces only the market-entry constraint.
func (c *Controller) SetMarketEntry(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.MarketEntry = v
}

// SetSearch replaces only the search term.
func (c *Controller) SetSearch(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Search = v
}

// ApplyFilters replaces the given fields in one transition. Empty fields in
// patch are left untouched; this is the bulk form of the single setters for
// the PATCH endpoint.
func (c *Controller) ApplyFilters(patch model.FilterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if patch.Tier != "" {
		c.filters.Tier = patch.Tier
	}
	if patch.UnmetNeed != "" {
		c.filters.UnmetNeed = patch.UnmetNeed
	}
	if patch.Competition != "" {
		c.filters.Competition = patch.Competition
	}
	if patch.MarketEntry != "" {
		c.filters.MarketEntry = patch.MarketEntry
	}
	if patch.Search != "" {
		c.filters.Search = patch.Search
	}
}

// ClearFilters resets all five constraints in a single transition.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = model.FilterState{}
}

// SelectCounty opens the detail panel for the county with the given rank.
// It overwrites only the county slot; an open stat card stays open.
func (c *Controller) SelectCounty(rank int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := derive.ByRank(c.counties, rank); !ok {
		return ErrUnknownCounty
	}
	c.selectedRank = &rank
	return nil
}

// SelectStatCard opens the explainer panel for a summary card. It overwrites
// only the card slot.
func (c *Controller) SelectStatCard(card model.StatCard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !model.ValidStatCard(card) {
		return ErrUnknownStatCard
	}
	c.selectedCard = &card
	return nil
}

// ClearCountySelection closes the county detail panel.
func (c *Controller) ClearCountySelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedRank = nil
}

// ClearStatCardSelection closes the stat-card explainer.
func (c *Controller) ClearStatCardSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedCard = nil
}

// AuthState returns the current gate state.
func (c *Controller) AuthState() model.AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// ResolveSession performs the one-time Unknown transition from the persisted
// marker check. Subsequent calls are no-ops; later transitions go through
// MarkLoggedIn/MarkLoggedOut.
func (c *Controller) ResolveSession(loggedIn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auth != model.AuthUnknown {
		return
	}
	if loggedIn {
		c.auth = model.AuthLoggedIn
	} else {
		c.auth = model.AuthLoggedOut
	}
}

// MarkLoggedIn records a successful credential submission.
func (c *Controller) MarkLoggedIn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = model.AuthLoggedIn
}

// MarkLoggedOut records an explicit logout.
func (c *Controller) MarkLoggedOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = model.AuthLoggedOut
}

// Snapshot is the derived view handed to the presentation layer.
type Snapshot struct {
	Auth           model.AuthState   `json:"auth"`
	Filters        model.FilterState `json:"filters"`
	Counties       []model.County    `json:"counties"`
	ShownCount     int               `json:"shown_count"`
	TotalCount     int               `json:"total_count"`
	SelectedRank   *int              `json:"selected_rank,omitempty"`
	SelectedCard   *model.StatCard   `json:"selected_card,omitempty"`
	SelectedCounty *model.County     `json:"selected_county,omitempty"`
}

// Snapshot recomputes the filtered view under the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := derive.Filter(c.counties, c.filters)
	snap := Snapshot{
		Auth:       c.auth,
		Filters:    c.filters,
		Counties:   filtered,
		ShownCount: len(filtered),
		TotalCount: len(c.counties),
	}

	if c.selectedRank != nil {
		rank := *c.selectedRank
		snap.SelectedRank = &rank
		if county, ok := derive.ByRank(c.counties, rank); ok {
			snap.SelectedCounty = &county
		}
	}
	if c.selectedCard != nil {
		card := *c.selectedCard
		snap.SelectedCard = &card
	}
	return snap
}
