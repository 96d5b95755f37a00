// pkg/core/state.go
package core

import "fmt"

// GameStateMode is the discriminant byte that selects which records a snapshot holds.
type GameStateMode uint8

const (
	Overworld     GameStateMode = 0
	WildBattle    GameStateMode = 1
	TrainerBattle GameStateMode = 2
)

func (m GameStateMode) String() string {
	switch m {
	case Overworld:
		return "overworld"
	case WildBattle:
		return "wild_battle"
	case TrainerBattle:
		return "trainer_battle"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}
