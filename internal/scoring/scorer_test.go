package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const etsBody = "The EU ETS now covers shipping emissions. Carriers report CO2 under MRV and IMO rules, and every fleet pays for carbon."

func TestTable_ScoreEmissions(t *testing.T) {
	assert.Equal(t, 85, Emissions.Score("EU ETS fines rise", etsBody))
}

func TestTable_ScoreHydrogen(t *testing.T) {
	assert.Equal(t, 89, Hydrogen.Score("Hydrogen ferry launched", "A hydrogen fuel cell vessel for Norled."))
}

func TestTable_ScoreZeroWhenNothingMatches(t *testing.T) {
	assert.Equal(t, 0, Emissions.Score("Weather report", "sunny day"))
	assert.Equal(t, 0, Hydrogen.Score("", ""))
}

func TestTable_OccurrencesAreCapped(t *testing.T) {
	table := Table{Weights: []Weight{{"methanol", 12}}}

	ten := table.Score("Port news", strings.Repeat("methanol ", 10))
	three := table.Score("Port news", strings.Repeat("methanol ", 3))
	assert.Equal(t, 36, three)
	assert.Equal(t, three, ten)

	assert.Equal(t, Emissions.Score("Port news", strings.Repeat("methanol ", 3)),
		Emissions.Score("Port news", strings.Repeat("methanol ", 10)))
}

func TestTable_TitleBonusIsFlat(t *testing.T) {
	table := Table{Weights: []Weight{{"ETS", 10}}}

	// one occurrence plus the flat bonus
	assert.Equal(t, 30, table.Score("ETS fines", "nothing else"))
	// capped occurrences plus a single bonus, not one per title match
	assert.Equal(t, 50, table.Score("ETS ETS ETS", "ETS ETS"))
	// body-only match earns no bonus
	assert.Equal(t, 10, table.Score("Fines", "ets"))
}

func TestTable_CaseInsensitive(t *testing.T) {
	table := Table{Weights: []Weight{{"FuelEU", 15}}}
	assert.Equal(t, table.Score("", "FUELEU fueleu"), table.Score("", "fueleu FuelEU"))
	assert.Equal(t, 30, table.Score("", "FUELEU fueleu"))
}

func TestTable_DeterministicAndNonNegative(t *testing.T) {
	inputs := [][2]string{
		{"EU ETS fines rise", etsBody},
		{"", ""},
		{"LH2 carrier", strings.Repeat("liquid hydrogen ", 20)},
		{"Nothing", "at all"},
	}
	for _, table := range []Table{Emissions, Hydrogen} {
		for _, in := range inputs {
			first := table.Score(in[0], in[1])
			assert.GreaterOrEqual(t, first, 0)
			assert.Equal(t, first, table.Score(in[0], in[1]))
		}
	}
}

func TestTable_MatchesTitle(t *testing.T) {
	assert.True(t, Emissions.MatchesTitle("New CO2 rules for ferries"))
	assert.True(t, Emissions.MatchesTitle("fuelEU Maritime penalties"))
	assert.False(t, Emissions.MatchesTitle("Container rates fall"))
	assert.True(t, Hydrogen.MatchesTitle("Fuel Cell tug ordered"))
	assert.True(t, Table{}.MatchesTitle("anything"))
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry()

	table, err := reg.Resolve("hydrogen")
	require.NoError(t, err)
	assert.Equal(t, "hydrogen", table.Name)

	_, err = reg.Resolve("bunker-prices")
	assert.Error(t, err)

	reg.Register(Table{Name: "custom", Weights: []Weight{{"scrubber", 4}}})
	custom, err := reg.Resolve("custom")
	require.NoError(t, err)
	assert.Equal(t, 4, custom.Score("", "scrubber"))
}
