// Package layout is the byte-offset map of the WRAM snapshot. It holds data only;
// assemblers read through it and Validate checks it once at startup.
package layout

import (
	"errors"
	"fmt"
)

// Region is a named span of the snapshot.
type Region struct {
	Name   string
	Offset int
	Length int
}

// End returns the offset one past the last byte of the region.
func (r Region) End() int {
	return r.Offset + r.Length
}

var (
	GameState     = Region{Name: "game_state", Offset: 0x1108, Length: 1}
	TrainerID     = Region{Name: "trainer_id", Offset: 0x11B3, Length: 2}
	Player        = Region{Name: "player", Offset: 0x1566, Length: 0x45}
	MapLocation   = Region{Name: "map_location", Offset: 0x19C6, Length: 2}
	Party         = Region{Name: "party", Offset: 0x19E8, Length: 7}
	OverworldLead = Region{Name: "overworld_lead", Offset: 0x19F0, Length: 0x30}
	BattleLead    = Region{Name: "battle_lead", Offset: 0x0B02, Length: 0x1E}
	BattleEnemy   = Region{Name: "battle_enemy", Offset: 0x10DF, Length: 0x20}
	EnemyParty    = Region{Name: "enemy_party", Offset: 0x1CC6, Length: 7}
)

// Regions lists every region in the map.
var Regions = []Region{
	GameState,
	TrainerID,
	Player,
	MapLocation,
	Party,
	OverworldLead,
	BattleLead,
	BattleEnemy,
	EnemyParty,
}

// MaxPartySize bounds a roster; larger counts are treated as corrupt.
const MaxPartySize = 6

// Absent marks a combatant field the layout does not store.
const Absent = -1

// CombatantFields are offsets relative to a combatant region.
type CombatantFields struct {
	Species    int
	Item       int
	Moves      int
	Experience int
	DVs        int
	PP         int
	Happiness  int
	Level      int
	Status     int
	Stats      int
}

var (
	// OverworldLeadFields is the party-struct layout of the first party slot.
	OverworldLeadFields = CombatantFields{
		Species:    0x00,
		Item:       0x01,
		Moves:      0x02,
		Experience: 0x08,
		DVs:        0x15,
		PP:         0x17,
		Happiness:  0x1B,
		Level:      0x1F,
		Status:     0x20,
		Stats:      0x22,
	}

	BattleLeadFields = CombatantFields{
		Species:    0x00,
		Item:       0x01,
		Moves:      0x02,
		Experience: Absent,
		DVs:        0x06,
		PP:         0x08,
		Happiness:  0x0C,
		Level:      0x0D,
		Status:     0x0E,
		Stats:      0x10,
	}

	BattleEnemyFields = CombatantFields{
		Species:    0x00,
		Item:       0x03,
		Moves:      0x04,
		Experience: Absent,
		DVs:        0x08,
		PP:         0x0A,
		Happiness:  Absent,
		Level:      0x0F,
		Status:     0x10,
		Stats:      0x12,
	}
)

// Field widths in bytes.
const (
	MovesWidth      = 4
	PPWidth         = 4
	DVsWidth        = 2
	StatsWidth      = 14
	ExperienceWidth = 3
)

// PlayerFields are offsets relative to the Player region.
var PlayerFields = struct {
	Money       int
	MumMoney    int
	Coins       int
	JohtoBadges int
	KantoBadges int
	ItemCount   int
}{
	Money:       0x00,
	MumMoney:    0x03,
	Coins:       0x07,
	JohtoBadges: 0x09,
	KantoBadges: 0x0A,
	ItemCount:   0x44,
}

var (
	JohtoBadgeLabels = [8]string{"Zephyr", "Hive", "Plain", "Fog", "Mineral", "Storm", "Glacier", "Rising"}
	KantoBadgeLabels = [8]string{"Boulder", "Cascade", "Thunder", "Rainbow", "Soul", "Marsh", "Volcano", "Earth"}
)

// spans maps each stored field to its offset and width.
func (f CombatantFields) spans() map[string][2]int {
	s := map[string][2]int{
		"species": {f.Species, 1},
		"item":    {f.Item, 1},
		"moves":   {f.Moves, MovesWidth},
		"dvs":     {f.DVs, DVsWidth},
		"pp":      {f.PP, PPWidth},
		"level":   {f.Level, 1},
		"status":  {f.Status, 1},
		"stats":   {f.Stats, StatsWidth},
	}
	if f.Experience != Absent {
		s["experience"] = [2]int{f.Experience, ExperienceWidth}
	}
	if f.Happiness != Absent {
		s["happiness"] = [2]int{f.Happiness, 1}
	}
	return s
}

// Validate checks every region against a snapshot of the given size and every
// field layout against its region.
func Validate(size int) error {
	var errs []error
	seen := make(map[string]bool, len(Regions))

	for _, r := range Regions {
		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("region %q defined twice", r.Name))
		}
		seen[r.Name] = true
		if r.Length <= 0 {
			errs = append(errs, fmt.Errorf("region %q has length %d", r.Name, r.Length))
		}
		if r.Offset < 0 || r.End() > size {
			errs = append(errs, fmt.Errorf("region %q [0x%X,0x%X) outside snapshot of 0x%X bytes", r.Name, r.Offset, r.End(), size))
		}
	}

	checkFields := func(r Region, f CombatantFields) {
		for name, span := range f.spans() {
			if span[0] < 0 || span[0]+span[1] > r.Length {
				errs = append(errs, fmt.Errorf("field %s.%s at +0x%X overflows region length 0x%X", r.Name, name, span[0], r.Length))
			}
		}
	}
	checkFields(OverworldLead, OverworldLeadFields)
	checkFields(BattleLead, BattleLeadFields)
	checkFields(BattleEnemy, BattleEnemyFields)

	if PlayerFields.Money+3 > Player.Length || PlayerFields.MumMoney+3 > Player.Length ||
		PlayerFields.Coins+2 > Player.Length || PlayerFields.ItemCount >= Player.Length {
		errs = append(errs, fmt.Errorf("player fields overflow region length 0x%X", Player.Length))
	}
	if Party.Length < 1+MaxPartySize || EnemyParty.Length < 1+MaxPartySize {
		errs = append(errs, errors.New("party regions must hold a count byte and six species"))
	}

	return errors.Join(errs...)
}
