package magic

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/catalog"
)

// ActiveEffect is a lasting roll modifier registered by a spell. Effects
// last until the beginning of the caster's next turn.
type ActiveEffect struct {
	ID           string
	SpellName    string
	Caster       string
	TargetPlayer string
	TargetArmy   string
	Location     string
	Amount       int
}

func (r *Resolver) addEffect(casterName string, spell catalog.Spell, req SpellRequest) {
	r.nextID++
	effect := ActiveEffect{
		ID:           fmt.Sprintf("effect-%d", r.nextID),
		SpellName:    spell.Name,
		Caster:       casterName,
		TargetPlayer: req.TargetPlayer,
		TargetArmy:   req.TargetArmy,
		Amount:       spell.Amount * req.Count,
	}
	r.effects = append(r.effects, effect)
	r.logger.Debug("effect registered",
		zap.String("effect", effect.ID),
		zap.String("spell", effect.SpellName),
		zap.String("caster", effect.Caster))
}

// ActiveEffects returns a snapshot of the registered lasting effects.
func (r *Resolver) ActiveEffects() []ActiveEffect {
	out := make([]ActiveEffect, len(r.effects))
	copy(out, r.effects)
	return out
}

// ExpireEffects removes every effect cast by the given player and returns
// the removed set. Called at the start of that player's turn.
func (r *Resolver) ExpireEffects(casterName string) []ActiveEffect {
	var expired []ActiveEffect
	var kept []ActiveEffect
	for _, e := range r.effects {
		if e.Caster == casterName {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	r.effects = kept
	if len(expired) > 0 {
		r.logger.Info("effects expired",
			zap.String("caster", casterName),
			zap.Int("count", len(expired)))
	}
	return expired
}

// ModifierFor sums the active modifiers applying to the given player's
// rolls.
func (r *Resolver) ModifierFor(playerName string) int {
	total := 0
	for _, e := range r.effects {
		if e.TargetPlayer == playerName {
			total += e.Amount
		}
	}
	return total
}
