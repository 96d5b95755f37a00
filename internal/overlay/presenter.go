// Package overlay turns decoded frames into region updates for a display and
// delivers them to a sink. Content is plain text or URLs.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wramwatch/wramwatch/internal/lookup"
	"github.com/wramwatch/wramwatch/internal/queue"
	"github.com/wramwatch/wramwatch/pkg/core"
	"github.com/wramwatch/wramwatch/pkg/streaming"
)

// maxPending bounds the updates held for one frame.
const maxPending = 64

// Dependencies holds all dependencies for the presenter.
type Dependencies struct {
	Lookup lookup.Service
	Sink   Sink
	Logger *slog.Logger
}

// Presenter renders frames and flushes their updates to the sink.
type Presenter struct {
	deps    Dependencies
	render  renderer
	pending *queue.Queue[streaming.Update]
	evicted int
}

// NewPresenter creates a presenter.
func NewPresenter(deps Dependencies) *Presenter {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Presenter{
		deps:    deps,
		render:  renderer{lookup: deps.Lookup},
		pending: queue.New[streaming.Update](maxPending),
	}
}

// HandleFrame renders f and publishes every resulting update.
func (p *Presenter) HandleFrame(ctx context.Context, f *core.Frame) error {
	p.pending.Push(p.Updates(f)...)
	return p.flush(ctx)
}

// Updates returns the region updates for one frame in display order.
func (p *Presenter) Updates(f *core.Frame) []streaming.Update {
	var b updateBuilder
	switch f.Mode {
	case core.Overworld:
		if f.Player != nil {
			b.set(streaming.RegionBadges, p.render.badges(f.Player))
		} else {
			b.set(streaming.RegionBadges, Placeholder)
		}
		p.lead(&b, f.Lead)
		b.set(streaming.RegionPartySprites, p.render.party(f.Party))
		if f.Player != nil {
			b.set(streaming.RegionPlayerInfo, playerInfo(f.Player))
			p.routeInfo(&b, f.Player.Location)
		} else {
			b.set(streaming.RegionPlayerInfo, Placeholder)
			p.routeInfo(&b, core.MapLocation{})
		}
	case core.WildBattle:
		p.lead(&b, f.Lead)
		p.enemy(&b, f.Enemy, true)
	case core.TrainerBattle:
		p.lead(&b, f.Lead)
		p.enemy(&b, f.Enemy, false)
		b.set(streaming.RegionPartySprites, p.render.party(f.Party))
		b.set(streaming.RegionEnemyDVsOrTeam, p.render.party(f.EnemyParty))
	}
	return b.updates
}

func (p *Presenter) lead(b *updateBuilder, c *core.Combatant) {
	if c.IsEmpty() {
		b.clear(streaming.RegionLeadSprite, streaming.RegionLeadLevel, streaming.RegionLeadItem,
			streaming.RegionLeadMoves, streaming.RegionLeadStats, streaming.RegionLeadDVs)
		return
	}
	b.set(streaming.RegionLeadSprite, p.render.sprite(c.Species))
	b.set(streaming.RegionLeadLevel, levelHappiness(c))
	b.set(streaming.RegionLeadItem, p.render.heldItem(c.Item))
	b.set(streaming.RegionLeadMoves, p.render.moves(c))
	b.set(streaming.RegionLeadStats, stats(c.Stats))
	b.set(streaming.RegionLeadDVs, dvs(c.DVs))
}

// enemy fills the opponent panel. Wild opponents show their DVs; in trainer
// battles that region holds the enemy team instead.
func (p *Presenter) enemy(b *updateBuilder, c *core.Combatant, withDVs bool) {
	if c.IsEmpty() {
		b.clear(streaming.RegionEnemySprite, streaming.RegionEnemyLevel, streaming.RegionEnemyItem,
			streaming.RegionEnemyMoves, streaming.RegionEnemyStats)
		if withDVs {
			b.clear(streaming.RegionEnemyDVsOrTeam)
		}
		return
	}
	b.set(streaming.RegionEnemySprite, p.render.sprite(c.Species))
	b.set(streaming.RegionEnemyLevel, level(c))
	b.set(streaming.RegionEnemyItem, p.render.heldItem(c.Item))
	b.set(streaming.RegionEnemyMoves, p.render.moves(c))
	b.set(streaming.RegionEnemyStats, stats(c.Stats))
	if withDVs {
		b.set(streaming.RegionEnemyDVsOrTeam, dvs(c.DVs))
	}
}

// routeInfo reuses the opponent panel for the current map while in the overworld.
func (p *Presenter) routeInfo(b *updateBuilder, loc core.MapLocation) {
	group, name := p.render.route(loc)
	b.set(streaming.RegionEnemySprite, Placeholder)
	b.set(streaming.RegionEnemyLevel, group)
	b.set(streaming.RegionEnemyItem, name)
	b.clear(streaming.RegionEnemyMoves, streaming.RegionEnemyStats, streaming.RegionEnemyDVsOrTeam)
}

func (p *Presenter) flush(ctx context.Context) error {
	if dropped := p.pending.Dropped(); dropped > p.evicted {
		p.deps.Logger.Warn("Overlay updates evicted before flush", "dropped", dropped-p.evicted)
		p.evicted = dropped
	}

	var errs []error
	for _, u := range p.pending.Drain() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.deps.Sink.Publish(u); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("publishing overlay updates: %w", errors.Join(errs...))
	}
	return nil
}

type updateBuilder struct {
	updates []streaming.Update
}

func (b *updateBuilder) set(id, content string) {
	b.updates = append(b.updates, streaming.Update{ID: id, Content: content})
}

func (b *updateBuilder) clear(ids ...string) {
	for _, id := range ids {
		b.set(id, Placeholder)
	}
}
