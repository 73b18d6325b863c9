package cpsat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveExactlyOne(t *testing.T) {
	m := NewModel()
	a := m.NewBool()
	b := m.NewBool()
	c := m.NewBool()
	m.AddExactlyOne([]Lit{a, b, c})
	m.Forbid(a)
	m.Forbid(c)

	sol := m.Solve(Options{Budget: 5 * time.Second})
	require.Equal(t, StatusOptimal, sol.Status)
	assert.False(t, sol.Value(a))
	assert.True(t, sol.Value(b))
	assert.False(t, sol.Value(c))
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBool()
	b := m.NewBool()
	m.AddExactlyOne([]Lit{a, b})
	m.Forbid(a)
	m.Forbid(b)

	sol := m.Solve(Options{Budget: 5 * time.Second})
	assert.Equal(t, StatusInfeasible, sol.Status)
}

func TestSolveSumBounds(t *testing.T) {
	m := NewModel()
	lits := make([]Lit, 5)
	for i := range lits {
		lits[i] = m.NewBool()
	}
	m.AddSumGE(lits, 2)
	m.AddSumLE(lits, 3)

	sol := m.Solve(Options{Budget: 5 * time.Second})
	require.Equal(t, StatusOptimal, sol.Status)

	count := 0
	for _, l := range lits {
		if sol.Value(l) {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 2)
	assert.LessOrEqual(t, count, 3)
}

func TestSolveWeightedGE(t *testing.T) {
	// sum(x) + 3·(¬w) ≥ 3 with w forced true requires all three x.
	m := NewModel()
	w := m.NewBool()
	xs := []Lit{m.NewBool(), m.NewBool(), m.NewBool()}
	m.AddClause(w)

	lits := append(append([]Lit{}, xs...), w.Neg())
	weights := []int{1, 1, 1, 3}
	m.AddWeightedGE(lits, weights, 3)

	sol := m.Solve(Options{Budget: 5 * time.Second})
	require.Equal(t, StatusOptimal, sol.Status)
	for _, x := range xs {
		assert.True(t, sol.Value(x))
	}
}

func TestSolveMinimizesCost(t *testing.T) {
	// One of three penalized literals must hold; descent should land on
	// exactly one.
	m := NewModel()
	a := m.NewBool()
	b := m.NewBool()
	c := m.NewBool()
	m.AddClause(a, b, c)
	m.AddCostTerm(a, 1)
	m.AddCostTerm(b, 1)
	m.AddCostTerm(c, 1)

	sol := m.Solve(Options{Budget: 5 * time.Second})
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, 1, sol.Cost)
}

func TestSolveCostFreeWhenAvoidable(t *testing.T) {
	m := NewModel()
	a := m.NewBool()
	b := m.NewBool()
	m.AddClause(a, b)
	m.AddCostTerm(a, 5)

	sol := m.Solve(Options{Budget: 5 * time.Second})
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, 0, sol.Cost)
	assert.False(t, sol.Value(a))
	assert.True(t, sol.Value(b))
}

func TestSolveStopReturnsEarly(t *testing.T) {
	m := NewModel()
	a := m.NewBool()
	m.AddClause(a)

	stop := make(chan struct{})
	close(stop)
	sol := m.Solve(Options{Budget: 5 * time.Second, Stop: stop})
	// A pre-closed stop may still allow the trivial model through; either a
	// model or unknown is acceptable, never a crash or infeasible claim.
	assert.NotEqual(t, StatusInfeasible, sol.Status)
}

func TestSolveDeterministic(t *testing.T) {
	build := func() (*Model, []Lit) {
		m := NewModel()
		lits := make([]Lit, 8)
		for i := range lits {
			lits[i] = m.NewBool()
		}
		m.AddSumGE(lits, 3)
		m.AddSumLE(lits, 3)
		for i := 0; i < 4; i++ {
			m.AddCostTerm(lits[i], 1)
		}
		return m, lits
	}

	m1, lits1 := build()
	m2, lits2 := build()
	sol1 := m1.Solve(Options{Budget: 5 * time.Second})
	sol2 := m2.Solve(Options{Budget: 5 * time.Second})
	require.Equal(t, sol1.Status, sol2.Status)
	require.Equal(t, sol1.Cost, sol2.Cost)
	for i := range lits1 {
		assert.Equal(t, sol1.Value(lits1[i]), sol2.Value(lits2[i]))
	}
}
