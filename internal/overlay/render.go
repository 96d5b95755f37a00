package overlay

import (
	"fmt"
	"strings"

	"github.com/wramwatch/wramwatch/internal/lookup"
	"github.com/wramwatch/wramwatch/pkg/core"
)

// Placeholder fills a region with nothing to show.
const Placeholder = "-"

const (
	fallbackItem  = "None"
	fallbackBadge = "Unknown"
)

type renderer struct {
	lookup lookup.Service
}

func (r renderer) field(table, key, name, fallback string) string {
	return r.lookup.Resolve(table, key).Field(name, fallback)
}

func (r renderer) sprite(species string) string {
	return r.field(lookup.TableSpecies, species, "sprite", Placeholder)
}

func (r renderer) heldItem(item string) string {
	return "Held item: " + r.field(lookup.TableItems, item, "name", fallbackItem)
}

func level(c *core.Combatant) string {
	return fmt.Sprintf("Level: %d", c.Level)
}

func levelHappiness(c *core.Combatant) string {
	if c.Happiness == nil {
		return level(c)
	}
	return fmt.Sprintf("Level: %d Happiness: %d", c.Level, *c.Happiness)
}

// moves renders one line per slot: name, type, power, accuracy, PP.
func (r renderer) moves(c *core.Combatant) string {
	lines := make([]string, 0, len(c.Moves))
	for i, id := range c.Moves {
		if id == core.EmptyID {
			lines = append(lines, "- | - | - | - | -")
			continue
		}
		rec := r.lookup.Resolve(lookup.TableMoves, id)
		lines = append(lines, fmt.Sprintf("%s | %s | %s | %s | %d",
			rec.Field("name", id),
			rec.Field("type", Placeholder),
			rec.Field("power", Placeholder),
			rec.Field("accuracy", Placeholder),
			c.PP[i]))
	}
	return strings.Join(lines, "\n")
}

func stats(s core.StatBlock) string {
	return fmt.Sprintf("HP %d/%d ATK %d DEF %d SPA %d SPD %d SPE %d",
		s.CurrentHP, s.TotalHP, s.Attack, s.Defense, s.SpecialAttack, s.SpecialDefense, s.Speed)
}

func dvs(d core.DVs) string {
	return fmt.Sprintf("HP %d ATK %d DEF %d SPC %d SPE %d", d.HP, d.Attack, d.Defense, d.Special, d.Speed)
}

// party lists the party sprites, skipping empty slots.
func (r renderer) party(p *core.PartyRoster) string {
	if p.Len() == 0 {
		return Placeholder
	}
	var sprites []string
	for _, species := range p.Species {
		if species == core.EmptyID {
			continue
		}
		sprites = append(sprites, r.field(lookup.TableSpecies, species, "party_sprite", Placeholder))
	}
	if len(sprites) == 0 {
		return Placeholder
	}
	return strings.Join(sprites, " ")
}

func playerInfo(p *core.PlayerProfile) string {
	return fmt.Sprintf("ID: %d Money: %d", p.TrainerID, p.Money)
}

// badges lists badge icons, one line per region. Nothing is shown until the
// first Johto badge is earned.
func (r renderer) badges(p *core.PlayerProfile) string {
	if len(p.JohtoBadges) == 0 {
		return Placeholder
	}
	icons := func(names []string) string {
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = r.field(lookup.TableBadges, name, "icon", fallbackBadge)
		}
		return strings.Join(out, " ")
	}
	lines := []string{icons(p.JohtoBadges)}
	if len(p.KantoBadges) > 0 {
		lines = append(lines, icons(p.KantoBadges))
	}
	return strings.Join(lines, "\n")
}

// route returns the map group and map names for the current location.
func (r renderer) route(loc core.MapLocation) (group, name string) {
	if loc.IsZero() {
		return Placeholder, Placeholder
	}
	return r.field(lookup.TableMapGroups, loc.Group, "name", Placeholder),
		r.field(lookup.TableMaps, loc.Key(), "name", Placeholder)
}
