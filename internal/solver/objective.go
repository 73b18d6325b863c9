package solver

import "github.com/okulsoft/dersplan/pkg/cpsat"

// addObjective wires the two soft goals: teacher idle-hour shaping and
// class room-change minimization. Both are linear over the decision
// variables plus O(teachers·D·H + classes·D·H·rooms) auxiliary booleans.
func (m *model) addObjective() {
	if m.cat.Settings.IdlePreference == "maximize" {
		m.addIdleTerms(false)
	} else {
		m.addIdleTerms(true)
	}
	if m.cat.Settings.MinimizeRoomMoves {
		m.addRoomChangeTerms()
	}
}

// addIdleTerms marks, per (teacher, day, period), whether the period falls
// strictly inside the teacher's teaching span without a lesson. started[p]
// holds once any earlier-or-equal period is busy, notended[p] symmetrically
// from the right, and idle ⇔ started ∧ notended ∧ ¬busy. Summing idle over a
// day equals last − first + 1 − count on working days and zero otherwise.
func (m *model) addIdleTerms(minimize bool) {
	s := m.cat.Settings
	for _, teacherID := range m.teacherID {
		busyRow := m.busy[teacherID]
		for d := 0; d < s.Days; d++ {
			started := make([]cpsat.Lit, s.Periods)
			for p := 0; p < s.Periods; p++ {
				started[p] = m.sat.NewBool()
				m.sat.AddImplication(busyRow[d][p], started[p])
				if p == 0 {
					m.sat.AddClause(started[p].Neg(), busyRow[d][p])
					continue
				}
				m.sat.AddImplication(started[p-1], started[p])
				m.sat.AddClause(started[p].Neg(), busyRow[d][p], started[p-1])
			}

			notended := make([]cpsat.Lit, s.Periods)
			for p := s.Periods - 1; p >= 0; p-- {
				notended[p] = m.sat.NewBool()
				m.sat.AddImplication(busyRow[d][p], notended[p])
				if p == s.Periods-1 {
					m.sat.AddClause(notended[p].Neg(), busyRow[d][p])
					continue
				}
				m.sat.AddImplication(notended[p+1], notended[p])
				m.sat.AddClause(notended[p].Neg(), busyRow[d][p], notended[p+1])
			}

			for p := 0; p < s.Periods; p++ {
				idle := m.sat.NewBool()
				m.sat.AddClause(started[p].Neg(), notended[p].Neg(), busyRow[d][p], idle)
				m.sat.AddImplication(idle, started[p])
				m.sat.AddImplication(idle, notended[p])
				m.sat.AddClause(idle.Neg(), busyRow[d][p].Neg())

				if minimize {
					m.sat.AddCostTerm(idle, 1)
				} else {
					m.sat.AddCostTerm(idle.Neg(), 1)
				}
			}
		}
	}
}

// addRoomChangeTerms counts, per class and day, transitions between two
// consecutive occupied periods held in different rooms. One room indicator
// per (class, day, period, room) and one changed boolean per (class, day,
// period) keep the encoding linear in the room count.
func (m *model) addRoomChangeTerms() {
	s := m.cat.Settings
	for _, class := range m.cat.Classes {
		if len(m.cat.AssignmentsByClass[class.ID]) == 0 {
			continue
		}
		inRoom := make([][]cpsat.Lit, s.Days*s.Periods)
		occupied := make([]cpsat.Lit, s.Days*s.Periods)

		for d := 0; d < s.Days; d++ {
			for p := 0; p < s.Periods; p++ {
				slot := d*s.Periods + p
				inRoom[slot] = make([]cpsat.Lit, len(m.cat.Rooms))
				for r := range m.cat.Rooms {
					ind := m.sat.NewBool()
					inRoom[slot][r] = ind

					var lits []cpsat.Lit
					for _, a := range m.cat.AssignmentsByClass[class.ID] {
						for k := range m.x[a] {
							lits = append(lits, m.x[a][k][d][p][r])
						}
					}
					if len(lits) == 0 {
						m.sat.Forbid(ind)
						continue
					}
					down := make([]cpsat.Lit, 0, len(lits)+1)
					down = append(down, ind.Neg())
					for _, l := range lits {
						m.sat.AddImplication(l, ind)
						down = append(down, l)
					}
					m.sat.AddClause(down...)
				}

				occ := m.sat.NewBool()
				occupied[slot] = occ
				down := make([]cpsat.Lit, 0, len(m.cat.Rooms)+1)
				down = append(down, occ.Neg())
				for r := range m.cat.Rooms {
					m.sat.AddImplication(inRoom[slot][r], occ)
					down = append(down, inRoom[slot][r])
				}
				m.sat.AddClause(down...)
			}
		}

		for d := 0; d < s.Days; d++ {
			for p := 1; p < s.Periods; p++ {
				slot := d*s.Periods + p
				prev := slot - 1
				changed := m.sat.NewBool()
				for r := range m.cat.Rooms {
					// In room r now, previous period occupied elsewhere.
					m.sat.AddClause(inRoom[slot][r].Neg(), inRoom[prev][r], occupied[prev].Neg(), changed)
				}
				m.sat.AddCostTerm(changed, 1)
			}
		}
	}
}
