package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiers_PriorityOrder(t *testing.T) {
	require.Len(t, Tiers, 4)
	assert.Equal(t, Tier1, Tiers[0])
	assert.Equal(t, Tier4, Tiers[3])
	assert.Equal(t, Tier1, TopPriorityTier)
}

func TestFilterState_IsZero(t *testing.T) {
	assert.True(t, FilterState{}.IsZero())
	assert.False(t, FilterState{Tier: Tier1}.IsZero())
	assert.False(t, FilterState{Search: "x"}.IsZero())
}

func TestValidStatCard(t *testing.T) {
	for _, card := range []StatCard{CardTotalCounties, CardTotalPopulation, CardAvgOpportunity, CardHighPriority} {
		assert.True(t, ValidStatCard(card))
	}
	assert.False(t, ValidStatCard("bogus"))
	assert.False(t, ValidStatCard(""))
}

func TestCounty_JSONFieldNames(t *testing.T) {
	c := County{Rank: 1, Name: "Deschutes", Tier: Tier1, OpportunityScore: 9.2}

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "TIER 1", m["tier"])
	assert.Equal(t, 9.2, m["opportunity_score"])
	assert.Contains(t, m, "provider_full_name")
}
