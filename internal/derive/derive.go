// Package derive computes the filtered views and chart aggregates the
// dashboard presents. Every function is pure: input slices are never
// mutated or re-sorted, and all operations are total over an empty dataset.
package derive

import (
	"math"
	"strings"

	"github.com/sells-group/market-dashboard/internal/model"
)

// Filter returns the counties matching every active constraint in f,
// preserving dataset order. An unset field passes all records. The search
// term matches case-insensitively against the county name or the provider
// full name.
func Filter(counties []model.County, f model.FilterState) []model.County {
	out := make([]model.County, 0, len(counties))
	search := strings.ToLower(f.Search)

	for _, c := range counties {
		if f.Tier != "" && c.Tier != f.Tier {
			continue
		}
		if f.UnmetNeed != "" && c.UnmetNeed != f.UnmetNeed {
			continue
		}
		if f.Competition != "" && c.CompetitionLevel != f.Competition {
			continue
		}
		if f.MarketEntry != "" && c.MarketEntryEase != f.MarketEntry {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.ProviderFullName), search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TierCount is one slice of the tier distribution chart.
type TierCount struct {
	Tier  model.Tier `json:"tier"`
	Count int        `json:"count"`
}

// TierDistribution counts counties per tier over the full fixed tier set,
// in priority order. Tiers absent from the data report zero.
func TierDistribution(counties []model.County) []TierCount {
	counts := make(map[model.Tier]int, len(model.Tiers))
	for _, c := range counties {
		counts[c.Tier]++
	}

	out := make([]TierCount, 0, len(model.Tiers))
	for _, t := range model.Tiers {
		out = append(out, TierCount{Tier: t, Count: counts[t]})
	}
	return out
}

// TierPopulation is the population subtotal for one tier.
type TierPopulation struct {
	Tier       model.Tier `json:"tier"`
	Population int        `json:"population"`
}

// TierPopulations sums population per tier over the fixed tier set, feeding
// the population-breakdown panel.
func TierPopulations(counties []model.County) []TierPopulation {
	sums := make(map[model.Tier]int, len(model.Tiers))
	for _, c := range counties {
		sums[c.Tier] += c.Population
	}

	out := make([]TierPopulation, 0, len(model.Tiers))
	for _, t := range model.Tiers {
		out = append(out, TierPopulation{Tier: t, Population: sums[t]})
	}
	return out
}

// ScoreEntry is one bar of the opportunity-score chart.
type ScoreEntry struct {
	County string     `json:"county"`
	Score  float64    `json:"score"`
	Tier   model.Tier `json:"tier"`
}

// TopOpportunity returns the first min(n, len) records in stored order.
// The dataset ships pre-sorted by rank, so on canonical data this is the
// top-n by score; the function itself never re-sorts.
func TopOpportunity(counties []model.County, n int) []ScoreEntry {
	if n > len(counties) {
		n = len(counties)
	}
	if n < 0 {
		n = 0
	}

	out := make([]ScoreEntry, 0, n)
	for _, c := range counties[:n] {
		out = append(out, ScoreEntry{County: c.Name, Score: c.OpportunityScore, Tier: c.Tier})
	}
	return out
}

// InvestmentGroup is one investment-level bucket with its member counties
// for drill-down display.
type InvestmentGroup struct {
	Level    string   `json:"level"`
	Count    int      `json:"count"`
	Counties []string `json:"counties"`
}

// InvestmentBreakdown partitions counties by investment level. Groups appear
// in order of first appearance in the dataset.
func InvestmentBreakdown(counties []model.County) []InvestmentGroup {
	index := make(map[string]int)
	var out []InvestmentGroup

	for _, c := range counties {
		i, ok := index[c.InvestmentLevel]
		if !ok {
			i = len(out)
			index[c.InvestmentLevel] = i
			out = append(out, InvestmentGroup{Level: c.InvestmentLevel})
		}
		out[i].Count++
		out[i].Counties = append(out[i].Counties, c.Name)
	}
	return out
}

// Summary holds the scalar stat-card values.
type Summary struct {
	TotalCounties       int     `json:"total_counties"`
	TotalPopulation     int     `json:"total_population"`
	AvgOpportunityScore float64 `json:"avg_opportunity_score"`
	HighPriorityCount   int     `json:"high_priority_count"`
}

// Summarize computes the stat-card scalars. The mean opportunity score is
// rounded to one decimal place and defined as 0 for an empty dataset.
func Summarize(counties []model.County) Summary {
	s := Summary{TotalCounties: len(counties)}

	var scoreSum float64
	for _, c := range counties {
		s.TotalPopulation += c.Population
		scoreSum += c.OpportunityScore
		if c.Tier == model.TopPriorityTier {
			s.HighPriorityCount++
		}
	}

	if len(counties) > 0 {
		s.AvgOpportunityScore = math.Round(scoreSum/float64(len(counties))*10) / 10
	}
	return s
}

// ByRank returns the county with the given rank, or false if absent.
func ByRank(counties []model.County, rank int) (model.County, bool) {
	for _, c := range counties {
		if c.Rank == rank {
			return c, true
		}
	}
	return model.County{}, false
}
