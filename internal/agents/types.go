// Package agents provides the citizen data model and population construction.
package agents

// CitizenID is a unique identifier for a citizen within one population.
// IDs are issued sequentially from 0 and never reassigned.
type CitizenID uint64

// Citizen is one simulated economic individual.
type Citizen struct {
	ID CitizenID `json:"id" db:"id"`

	// Mutable state, updated in place every round.
	CurrentIncome  float64 `json:"current_income" db:"current_income"`   // Currency units
	CurrentSavings float64 `json:"current_savings" db:"current_savings"` // Currency units

	// Income growth distribution (fractions, 0.01 = 1%).
	ExpectedRiseMean float64 `json:"expected_rise_mean" db:"expected_rise_mean"`
	ExpectedRiseSD   float64 `json:"expected_rise_sd" db:"expected_rise_sd"`

	SavingRate   float64 `json:"saving_rate" db:"saving_rate"`     // Fraction of next income saved
	InterestRate float64 `json:"interest_rate" db:"interest_rate"` // Fraction of savings earned per round
}

// Population is the ordered set of citizens in a simulation. Order matches ID
// order and is preserved across rounds.
type Population []*Citizen

// Len returns the number of citizens.
func (p Population) Len() int {
	return len(p)
}

// ByID returns the citizen with the given ID, or nil if none exists.
func (p Population) ByID(id CitizenID) *Citizen {
	// Fast path: freshly created populations are indexed by ID.
	if int(id) < len(p) && p[id] != nil && p[id].ID == id {
		return p[id]
	}
	for _, c := range p {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Values copies every citizen by value, in population order.
func (p Population) Values() []Citizen {
	out := make([]Citizen, len(p))
	for i, c := range p {
		out[i] = *c
	}
	return out
}

// Clone returns a deep copy that shares no citizen records with p.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, c := range p {
		cp := *c
		out[i] = &cp
	}
	return out
}
