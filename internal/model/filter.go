package model

// FilterState holds the five independent dashboard filter constraints.
// The zero value means "no constraint" for every field.
type FilterState struct {
	Tier        Tier   `json:"tier,omitempty"`
	UnmetNeed   string `json:"unmet_need,omitempty"`
	Competition string `json:"competition,omitempty"`
	MarketEntry string `json:"market_entry,omitempty"`
	Search      string `json:"search,omitempty"`
}

// IsZero reports whether no constraint is active.
func (f FilterState) IsZero() bool {
	return f == FilterState{}
}

// StatCard identifies a summary card whose explainer panel can be opened.
type StatCard string

const (
	CardTotalCounties   StatCard = "total_counties"
	CardTotalPopulation StatCard = "total_population"
	CardAvgOpportunity  StatCard = "avg_opportunity"
	CardHighPriority    StatCard = "high_priority"
)

// ValidStatCard reports whether s names a known summary card.
func ValidStatCard(s StatCard) bool {
	switch s {
	case CardTotalCounties, CardTotalPopulation, CardAvgOpportunity, CardHighPriority:
		return true
	}
	return false
}

// AuthState is the gate portion of the composite view state machine.
type AuthState string

const (
	AuthUnknown   AuthState = "unknown"    // persisted marker not yet checked
	AuthLoggedOut AuthState = "logged_out"
	AuthLoggedIn  AuthState = "logged_in"
)
