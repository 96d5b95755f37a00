package assembler

import (
	"github.com/wramwatch/wramwatch/internal/dispatcher"
	"github.com/wramwatch/wramwatch/internal/layout"
	"github.com/wramwatch/wramwatch/pkg/core"
)

// Entity names recorded in frame issues.
const (
	EntityParty      = "party"
	EntityEnemyParty = "enemy_party"
	EntityPlayer     = "player"
	EntityLead       = "lead"
	EntityEnemy      = "enemy"
)

func newFrame(e dispatcher.Event) *core.Frame {
	f := &core.Frame{Mode: e.Mode, CapturedAt: e.Timestamp}
	if e.Snapshot != nil {
		f.SnapshotID = e.Snapshot.ID.String()
		if f.CapturedAt.IsZero() {
			f.CapturedAt = e.Snapshot.CapturedAt
		}
	}
	return f
}

func snapshotBytes(e dispatcher.Event) []byte {
	if e.Snapshot == nil {
		return nil
	}
	return e.Snapshot.Bytes()
}

func readParty(f *core.Frame, buf []byte, region layout.Region, entity string) *core.PartyRoster {
	p, err := Party(buf, region)
	if err != nil {
		f.AddIssue(entity, err)
		return nil
	}
	return p
}

func readCombatant(f *core.Frame, buf []byte, region layout.Region, fields layout.CombatantFields, entity string) *core.Combatant {
	c, err := Combatant(buf, region, fields)
	if err != nil {
		f.AddIssue(entity, err)
		return nil
	}
	return c
}

// Overworld decodes the party, the player and the lead party member.
func Overworld(e dispatcher.Event) (*core.Frame, error) {
	f := newFrame(e)
	buf := snapshotBytes(e)

	f.Party = readParty(f, buf, layout.Party, EntityParty)
	if p, err := Player(buf); err != nil {
		f.AddIssue(EntityPlayer, err)
	} else {
		f.Player = p
	}
	f.Lead = readCombatant(f, buf, layout.OverworldLead, layout.OverworldLeadFields, EntityLead)
	return f, nil
}

// WildBattle decodes the party, the battle lead and the wild opponent.
func WildBattle(e dispatcher.Event) (*core.Frame, error) {
	f := newFrame(e)
	buf := snapshotBytes(e)

	f.Party = readParty(f, buf, layout.Party, EntityParty)
	f.Lead = readCombatant(f, buf, layout.BattleLead, layout.BattleLeadFields, EntityLead)
	f.Enemy = readCombatant(f, buf, layout.BattleEnemy, layout.BattleEnemyFields, EntityEnemy)
	return f, nil
}

// TrainerBattle decodes both parties, the battle lead and the active opponent.
func TrainerBattle(e dispatcher.Event) (*core.Frame, error) {
	f := newFrame(e)
	buf := snapshotBytes(e)

	f.Party = readParty(f, buf, layout.Party, EntityParty)
	f.Lead = readCombatant(f, buf, layout.BattleLead, layout.BattleLeadFields, EntityLead)
	f.EnemyParty = readParty(f, buf, layout.EnemyParty, EntityEnemyParty)
	f.Enemy = readCombatant(f, buf, layout.BattleEnemy, layout.BattleEnemyFields, EntityEnemy)
	return f, nil
}

// RegisterPipelines registers the three mode pipelines.
func RegisterPipelines(d *dispatcher.Dispatcher, opts ...dispatcher.Option) {
	d.Register(core.Overworld, Overworld, opts...)
	d.Register(core.WildBattle, WildBattle, opts...)
	d.Register(core.TrainerBattle, TrainerBattle, opts...)
}
