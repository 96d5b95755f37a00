// Package assembler builds game-state entities from a snapshot through the
// layout map and groups them into one pipeline per game mode.
package assembler

import (
	"fmt"

	"github.com/wramwatch/wramwatch/internal/decode"
	"github.com/wramwatch/wramwatch/internal/layout"
	"github.com/wramwatch/wramwatch/internal/wram"
	"github.com/wramwatch/wramwatch/pkg/core"
)

// ReadMode reads the game state discriminant.
func ReadMode(s *wram.Snapshot) (core.GameStateMode, error) {
	b, err := decode.U8(s.Bytes(), layout.GameState.Offset)
	if err != nil {
		return 0, fmt.Errorf("reading game state: %w", err)
	}
	return core.GameStateMode(b), nil
}

// Party reads a count byte followed by species ids. A count of zero or above
// six yields an empty roster.
func Party(buf []byte, region layout.Region) (*core.PartyRoster, error) {
	r := newFieldReader(buf, region)
	count := int(r.u8(0))
	if r.err != nil {
		return nil, fmt.Errorf("reading %s count: %w", region.Name, r.err)
	}

	roster := &core.PartyRoster{Species: []string{}}
	if count == 0 || count > layout.MaxPartySize {
		return roster, nil
	}
	for i := 1; i <= count; i++ {
		roster.Species = append(roster.Species, r.id(i))
	}
	if r.err != nil {
		return nil, fmt.Errorf("reading %s: %w", region.Name, r.err)
	}
	return roster, nil
}

// Combatant reads one pokemon through the given field layout. Fields marked
// layout.Absent are left nil.
func Combatant(buf []byte, region layout.Region, f layout.CombatantFields) (*core.Combatant, error) {
	r := newFieldReader(buf, region)
	c := &core.Combatant{
		Species: r.id(f.Species),
		Item:    r.id(f.Item),
		Moves:   r.moves(f.Moves),
		PP:      r.pp(f.PP),
		Level:   r.u8(f.Level),
		Status:  r.u8(f.Status),
		Stats:   r.stats(f.Stats),
		DVs:     r.dvs(f.DVs),
	}
	if f.Happiness != layout.Absent {
		h := r.u8(f.Happiness)
		c.Happiness = &h
	}
	if f.Experience != layout.Absent {
		exp := r.u24(f.Experience)
		c.Experience = &exp
	}
	if r.err != nil {
		return nil, fmt.Errorf("reading %s: %w", region.Name, r.err)
	}
	return c, nil
}

// MapLocation reads the current map group and id. Group 00 yields a zero location.
func MapLocation(buf []byte) (core.MapLocation, error) {
	r := newFieldReader(buf, layout.MapLocation)
	group := r.id(0)
	id := r.id(1)
	if r.err != nil {
		return core.MapLocation{}, fmt.Errorf("reading %s: %w", layout.MapLocation.Name, r.err)
	}
	if group == core.EmptyID {
		return core.MapLocation{}, nil
	}
	return core.MapLocation{Group: group, ID: id}, nil
}

// Player reads the trainer's profile and current location.
func Player(buf []byte) (*core.PlayerProfile, error) {
	tid := newFieldReader(buf, layout.TrainerID)
	id := tid.u16(0)
	if tid.err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.TrainerID.Name, tid.err)
	}

	pf := layout.PlayerFields
	r := newFieldReader(buf, layout.Player)
	p := &core.PlayerProfile{
		TrainerID:   id,
		Money:       r.u24(pf.Money),
		MumMoney:    r.u24(pf.MumMoney),
		Coins:       r.u16(pf.Coins),
		ItemCount:   r.u8(pf.ItemCount),
		JohtoBadges: decode.BadgeFlags(r.u8(pf.JohtoBadges), layout.JohtoBadgeLabels),
		KantoBadges: decode.BadgeFlags(r.u8(pf.KantoBadges), layout.KantoBadgeLabels),
	}
	if r.err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.Player.Name, r.err)
	}

	loc, err := MapLocation(buf)
	if err != nil {
		return nil, err
	}
	p.Location = loc
	return p, nil
}
