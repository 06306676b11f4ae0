package inventory

import "encoding/json"

// Inventory maps tile ids to owned counts. Absent ids own zero.
// Values are immutable; every mutation returns a new Inventory.
type Inventory struct {
	counts map[string]int
}

func New() Inventory {
	return Inventory{counts: map[string]int{}}
}

// FromMap copies m, clamping negative counts to zero.
func FromMap(m map[string]int) Inventory {
	inv := Inventory{counts: make(map[string]int, len(m))}
	for id, n := range m {
		inv.counts[id] = clamp(n)
	}
	return inv
}

// Get never reports absence: unknown ids return 0.
func (inv Inventory) Get(tileID string) int {
	return inv.counts[tileID]
}

// Set replaces the count for tileID; negative counts become 0.
func (inv Inventory) Set(tileID string, count int) Inventory {
	next := inv.clone()
	next.counts[tileID] = clamp(count)
	return next
}

func (inv Inventory) Increment(tileID string) Inventory {
	return inv.Set(tileID, inv.Get(tileID)+1)
}

// Decrement stops at zero.
func (inv Inventory) Decrement(tileID string) Inventory {
	return inv.Set(tileID, inv.Get(tileID)-1)
}

// Map returns a copy of the stored counts, including explicit zeros.
func (inv Inventory) Map() map[string]int {
	out := make(map[string]int, len(inv.counts))
	for id, n := range inv.counts {
		out[id] = n
	}
	return out
}

func (inv Inventory) Len() int { return len(inv.counts) }

// Total sums every owned count.
func (inv Inventory) Total() int {
	total := 0
	for _, n := range inv.counts {
		total += n
	}
	return total
}

func (inv Inventory) Equal(o Inventory) bool {
	if len(inv.counts) != len(o.counts) {
		return false
	}
	for id, n := range inv.counts {
		m, ok := o.counts[id]
		if !ok || m != n {
			return false
		}
	}
	return true
}

func (inv Inventory) MarshalJSON() ([]byte, error) {
	if inv.counts == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(inv.counts)
}

func (inv *Inventory) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*inv = FromMap(m)
	return nil
}

func (inv Inventory) clone() Inventory {
	return Inventory{counts: inv.Map()}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
