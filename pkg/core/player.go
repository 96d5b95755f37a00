// pkg/core/player.go
package core

// MapLocation is the current map as raw group / in-group ids.
type MapLocation struct {
	Group string `json:"group"`
	ID    string `json:"id"`
}

// IsZero reports whether no map is loaded (group 00).
func (l MapLocation) IsZero() bool {
	return l.Group == "" || l.Group == EmptyID
}

// Key returns the composite "GG/II" key used by the map lookup table.
func (l MapLocation) Key() string {
	return l.Group + "/" + l.ID
}

// PlayerProfile holds the trainer's own state.
type PlayerProfile struct {
	TrainerID   uint16      `json:"trainerId"`
	Money       uint32      `json:"money"`
	MumMoney    uint32      `json:"mumMoney"`
	Coins       uint16      `json:"coins"`
	ItemCount   uint8       `json:"itemCount"`
	JohtoBadges []string    `json:"johtoBadges"`
	KantoBadges []string    `json:"kantoBadges"`
	Location    MapLocation `json:"location"`
}
