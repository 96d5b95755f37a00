package streaming

import (
	"encoding/json"
	"fmt"
)

// Message type constants.
const (
	TypeUpdate = "update_data"
	TypeFrame  = "frame"
)

// Region ids of the overlay.
const (
	RegionLeadSprite     = "lead-poke-sprite"
	RegionLeadLevel      = "lead-lvl-happiness"
	RegionLeadItem       = "lead-held-item"
	RegionLeadMoves      = "lead-moves"
	RegionLeadStats      = "lead-stats"
	RegionLeadDVs        = "lead-dvs"
	RegionPartySprites   = "party-poke-sprites"
	RegionPlayerInfo     = "player-info"
	RegionBadges         = "badge-space"
	RegionEnemySprite    = "enemy-pokemon-sprite"
	RegionEnemyLevel     = "enemy-level"
	RegionEnemyItem      = "enemy-held-item"
	RegionEnemyMoves     = "enemy-moves"
	RegionEnemyStats     = "enemy-stats"
	RegionEnemyDVsOrTeam = "enemy-dvs-or-team"
)

// Update replaces the content of one overlay region.
type Update struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Envelope wraps every message written by a sink.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload under the given type.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s payload: %w", msgType, err)
	}
	return Envelope{Type: msgType, Payload: raw}, nil
}

// DecodeUpdate unmarshals an update envelope.
func (e Envelope) DecodeUpdate() (Update, error) {
	if e.Type != TypeUpdate {
		return Update{}, fmt.Errorf("envelope type %q is not %q", e.Type, TypeUpdate)
	}
	var u Update
	if err := json.Unmarshal(e.Payload, &u); err != nil {
		return Update{}, fmt.Errorf("decoding update: %w", err)
	}
	return u, nil
}
