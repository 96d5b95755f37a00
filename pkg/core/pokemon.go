// pkg/core/pokemon.go
package core

// EmptyID is the hex id of an empty species, item or move slot.
const EmptyID = "00"

// StatBlock holds the seven 16-bit stats stored in a 14-byte big-endian region.
type StatBlock struct {
	CurrentHP      uint16 `json:"currentHp"`
	TotalHP        uint16 `json:"totalHp"`
	Attack         uint16 `json:"attack"`
	Defense        uint16 `json:"defense"`
	Speed          uint16 `json:"speed"`
	SpecialAttack  uint16 `json:"specialAttack"`
	SpecialDefense uint16 `json:"specialDefense"`
}

// DVs are the nibble-packed determinant values. HP is derived from the low bit of the others.
type DVs struct {
	HP      uint8 `json:"hp"`
	Attack  uint8 `json:"atk"`
	Defense uint8 `json:"def"`
	Speed   uint8 `json:"spd"`
	Special uint8 `json:"spc"`
}

// PartyRoster lists the species ids of a party in slot order.
type PartyRoster struct {
	Species []string `json:"species"`
}

// Len returns the number of slots in the roster.
func (r *PartyRoster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Species)
}

// Combatant is a single pokemon as read from the overworld party or a battle block.
// Happiness and Experience are only present for the layouts that store them.
type Combatant struct {
	Species    string    `json:"species"`
	Item       string    `json:"item"`
	Moves      [4]string `json:"moves"`
	PP         [4]uint8  `json:"pp"`
	Level      uint8     `json:"level"`
	Status     uint8     `json:"status"`
	Happiness  *uint8    `json:"happiness,omitempty"`
	Experience *uint32   `json:"experience,omitempty"`
	Stats      StatBlock `json:"stats"`
	DVs        DVs       `json:"dvs"`
}

// IsEmpty reports whether the slot holds no pokemon.
func (c *Combatant) IsEmpty() bool {
	return c == nil || c.Species == EmptyID
}
