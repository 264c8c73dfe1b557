// Package model defines the county market records and the view-state types
// shared across the dashboard service.
package model

// Tier is the priority category assigned to a county market.
type Tier string

const (
	Tier1 Tier = "TIER 1" // primary anchors
	Tier2 Tier = "TIER 2" // secondary markets
	Tier3 Tier = "TIER 3" // satellite markets
	Tier4 Tier = "TIER 4" // metro limited
)

// Tiers lists all tiers in priority order. Aggregations iterate this so
// charts always show every tier, including empty ones.
var Tiers = []Tier{Tier1, Tier2, Tier3, Tier4}

// TopPriorityTier is the tier counted by the high-priority summary card.
const TopPriorityTier = Tier1

// Fixed filter vocabularies. Values match the source dataset verbatim.
var (
	UnmetNeedLevels   = []string{"HIGH", "MEDIUM-HIGH", "MEDIUM", "MEDIUM-LOW", "LOW"}
	CompetitionLevels = []string{"VERY LOW", "LOW", "LOW-MOD", "MODERATE", "HIGH", "VERY HIGH"}
	MarketEntryLevels = []string{"EASY", "EASY-MOD", "MODERATE", "HARD", "VERY HARD"}
)

// County is one pre-computed market record. The dataset is assumed
// pre-sorted by Rank ascending; nothing re-sorts it.
type County struct {
	Rank             int     `json:"rank" yaml:"rank"`
	Name             string  `json:"name" yaml:"name"`
	Tier             Tier    `json:"tier" yaml:"tier"`
	Population       int     `json:"population" yaml:"population"`
	GrowthRatePct    float64 `json:"growth_rate_pct" yaml:"growth_rate_pct"`
	EstDDPopulation  string  `json:"est_dd_population" yaml:"est_dd_population"`
	CDDPProvider     string  `json:"cddp_provider" yaml:"cddp_provider"`
	ProviderFullName string  `json:"provider_full_name" yaml:"provider_full_name"`
	ProviderPhone    string  `json:"provider_phone" yaml:"provider_phone"`
	CompetitionLevel string  `json:"competition_level" yaml:"competition_level"`
	OpportunityScore float64 `json:"opportunity_score" yaml:"opportunity_score"`
	ServiceGapScore  float64 `json:"service_gap_score" yaml:"service_gap_score"`
	UnmetNeed        string  `json:"unmet_need" yaml:"unmet_need"`
	WaitListStatus   string  `json:"wait_list_status" yaml:"wait_list_status"`
	MarketEntryEase  string  `json:"market_entry_ease" yaml:"market_entry_ease"`
	Licensing        string  `json:"licensing_complexity" yaml:"licensing_complexity"`
	InvestmentLevel  string  `json:"investment_level" yaml:"investment_level"`
	ROITimeline      string  `json:"roi_timeline" yaml:"roi_timeline"`
	RecommendedPhase string  `json:"recommended_phase" yaml:"recommended_phase"`
	ServiceModel     string  `json:"recommended_service_model" yaml:"recommended_service_model"`
	ProfitMargin     string  `json:"profit_margin_potential" yaml:"profit_margin_potential"`
	Notes            string  `json:"notes" yaml:"notes"`
}
