package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envTableFor(group string, n int) EnvTable {
	t := EnvTable{
		Columns: []string{ColTime, ColTemperature, ColGroup, ColTargetEC},
		Rows:    []EnvRecord{},
	}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, EnvRecord{Group: group, Temperature: float64(i)})
	}
	return t
}

func TestAggregateEnv_ConcatenationOrder(t *testing.T) {
	unified := AggregateEnv([]EnvTable{
		envTableFor("A", 3),
		envTableFor("B", 0),
		envTableFor("C", 5),
	})

	require.Len(t, unified.Rows, 8)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "A", unified.Rows[i].Group)
	}
	for i := 3; i < 8; i++ {
		assert.Equal(t, "C", unified.Rows[i].Group)
	}
	assert.Equal(t, map[string]int{"A": 3, "C": 5}, CountByGroup(unified.Rows))
}

func TestAggregateEnv_ColumnOuterUnion(t *testing.T) {
	a := envTableFor("A", 1)
	b := envTableFor("B", 1)
	b.Columns = append(b.Columns, "co2")
	b.Rows[0].Extra = map[string]string{"co2": "400"}

	unified := AggregateEnv([]EnvTable{a, b})

	assert.Equal(t, []string{ColTime, ColTemperature, ColGroup, ColTargetEC, "co2"}, unified.Columns)
	// The column missing from A's rows stays absent there, not sentinel-filled.
	assert.NotContains(t, unified.Rows[0].Extra, "co2")
	assert.Equal(t, "400", unified.Rows[1].Extra["co2"])
}

func TestAggregateEnv_ZeroInputs(t *testing.T) {
	unified := AggregateEnv(nil)

	assert.True(t, unified.Empty())
	// Explicitly empty, distinguishable from the zero value.
	assert.NotNil(t, unified.Rows)
}

func TestAggregateGrowth_ZeroInputs(t *testing.T) {
	unified := AggregateGrowth([]GrowthTable{})

	assert.True(t, unified.Empty())
	assert.NotNil(t, unified.Rows)
}

func TestAggregateGrowth_Concatenation(t *testing.T) {
	a := GrowthTable{
		Columns: []string{ColFreshWeight, ColGroup, ColTargetEC},
		Rows:    []GrowthRecord{{Group: "A", FreshWeight: 10}, {Group: "A", FreshWeight: 12}},
	}
	b := GrowthTable{
		Columns: []string{ColFreshWeight, ColLeafCount, ColGroup, ColTargetEC},
		Rows:    []GrowthRecord{{Group: "B", FreshWeight: 9, LeafCount: 5}},
	}

	unified := AggregateGrowth([]GrowthTable{a, b})

	require.Len(t, unified.Rows, 3)
	assert.Equal(t, []string{ColFreshWeight, ColGroup, ColTargetEC, ColLeafCount}, unified.Columns)
	assert.Equal(t, "A", unified.Rows[0].Group)
	assert.Equal(t, "B", unified.Rows[2].Group)
}
