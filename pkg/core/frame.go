// pkg/core/frame.go
package core

import "time"

// Issue records an entity that could not be decoded from a snapshot.
type Issue struct {
	Entity  string `json:"entity"`
	Message string `json:"message"`
}

// Frame is the decoded view of one snapshot. Entities that do not apply to the
// mode, or that failed to decode, are nil.
type Frame struct {
	SnapshotID string         `json:"snapshotId"`
	CapturedAt time.Time      `json:"capturedAt"`
	Mode       GameStateMode  `json:"mode"`
	Party      *PartyRoster   `json:"party,omitempty"`
	EnemyParty *PartyRoster   `json:"enemyParty,omitempty"`
	Player     *PlayerProfile `json:"player,omitempty"`
	Lead       *Combatant     `json:"lead,omitempty"`
	Enemy      *Combatant     `json:"enemy,omitempty"`
	Issues     []Issue        `json:"issues,omitempty"`
}

// AddIssue appends a decode issue for the named entity.
func (f *Frame) AddIssue(entity string, err error) {
	f.Issues = append(f.Issues, Issue{Entity: entity, Message: err.Error()})
}
