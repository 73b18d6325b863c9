// Package cpsat provides a small CP-SAT style modelling layer on top of the
// gophersat pseudo-boolean solver: boolean decision variables, linear
// cardinality constraints, and a linear cost function minimized by iterative
// bounding. Variable identifiers are dense positive integers so models built
// in the same order are bit-identical across runs.
package cpsat

import (
	solver "github.com/crillab/gophersat/solver"
)

// Lit is a literal: a positive variable identifier, or its negation.
type Lit int

// Neg returns the negated literal.
func (l Lit) Neg() Lit { return -l }

// Model accumulates variables, pseudo-boolean constraints and an optional
// linear cost function.
type Model struct {
	nbVars      int
	constrs     []solver.PBConstr
	costLits    []Lit
	costWeights []int
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBool allocates a fresh boolean variable and returns its positive literal.
func (m *Model) NewBool() Lit {
	m.nbVars++
	return Lit(m.nbVars)
}

// NumVars returns the number of allocated variables.
func (m *Model) NumVars() int { return m.nbVars }

// NumConstraints returns the number of accumulated constraints.
func (m *Model) NumConstraints() int { return len(m.constrs) }

func ints(lits []Lit) []int {
	out := make([]int, len(lits))
	for i, l := range lits {
		out[i] = int(l)
	}
	return out
}

// ones returns a weights slice of n ones, for call sites where the solver
// requires an explicit per-literal weight even for an unweighted constraint.
func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// AddClause adds a disjunction over the given literals.
func (m *Model) AddClause(lits ...Lit) {
	m.constrs = append(m.constrs, solver.PropClause(ints(lits)...))
}

// AddImplication adds a → b.
func (m *Model) AddImplication(a, b Lit) {
	m.AddClause(a.Neg(), b)
}

// Forbid fixes the literal to false.
func (m *Model) Forbid(l Lit) {
	m.AddClause(l.Neg())
}

// AddExactlyOne constrains exactly one of the literals to be true.
func (m *Model) AddExactlyOne(lits []Lit) {
	m.constrs = append(m.constrs, solver.Eq(ints(lits), ones(len(lits)), 1)...)
}

// AddAtMostOne constrains at most one of the literals to be true.
func (m *Model) AddAtMostOne(lits []Lit) {
	m.constrs = append(m.constrs, solver.LtEq(ints(lits), ones(len(lits)), 1))
}

// AddSumLE constrains the number of true literals to be at most k.
func (m *Model) AddSumLE(lits []Lit, k int) {
	if k >= len(lits) {
		return
	}
	m.constrs = append(m.constrs, solver.LtEq(ints(lits), ones(len(lits)), k))
}

// AddSumGE constrains the number of true literals to be at least k.
func (m *Model) AddSumGE(lits []Lit, k int) {
	if k <= 0 {
		return
	}
	m.constrs = append(m.constrs, solver.GtEq(ints(lits), nil, k))
}

// AddWeightedGE constrains sum(weights[i]·lits[i]) ≥ k. Weights must be
// positive; encode negative coefficients by negating the literal beforehand.
func (m *Model) AddWeightedGE(lits []Lit, weights []int, k int) {
	if k <= 0 {
		return
	}
	m.constrs = append(m.constrs, solver.GtEq(ints(lits), weights, k))
}

// AddCostTerm appends a literal to the cost function with the given weight.
// The solver minimizes the total weight of true cost literals.
func (m *Model) AddCostTerm(l Lit, weight int) {
	if weight <= 0 {
		return
	}
	m.costLits = append(m.costLits, l)
	m.costWeights = append(m.costWeights, weight)
}

// HasCost reports whether any cost terms were registered.
func (m *Model) HasCost() bool { return len(m.costLits) > 0 }
