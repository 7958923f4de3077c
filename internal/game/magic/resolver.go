// Package magic computes magic point generation and resolves spell casting.
package magic

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/catalog"
	"github.com/dragondice/dragondice-go/internal/game/rules"
	"github.com/dragondice/dragondice-go/internal/game/state"
)

// FortitudeFunc reports how many extra save dice the target army is granted
// against incoming magic damage.
type FortitudeFunc func(playerName, armyID string, magicDamage int) int

// Resolver computes available magic points from roll results and applies
// spell effects through the state manager.
type Resolver struct {
	state     *state.Manager
	logger    *zap.Logger
	fortitude FortitudeFunc
	effects   []ActiveEffect
	nextID    int
}

// SetFortitude installs the species-ability hook consulted when damage
// spells resolve.
func (r *Resolver) SetFortitude(f FortitudeFunc) { r.fortitude = f }

// NewResolver constructs a spell resolver bound to the given state manager.
func NewResolver(st *state.Manager, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{state: st, logger: logger}
}

// UnitRollResult is one unit's contribution to a magic roll, in the same
// shorthand notation the action resolver parses.
type UnitRollResult struct {
	UnitID  string
	Results string
}

// UnitPointDetail explains one unit's contribution to the point total.
type UnitPointDetail struct {
	UnitID       string
	UnitName     string
	MagicResults int
	IDResults    int
	IDValue      int // health-worth per ID result, after any doubling
	Total        int
	Elements     []catalog.Element
}

// PointCalculation is the full outcome of a magic roll evaluation.
type PointCalculation struct {
	Points  map[catalog.Element]int
	Details []UnitPointDetail
}

// CalculateMagicPoints evaluates per-unit roll results into per-element
// spell points. Plain magic results are worth one point each; ID results
// are worth the rolling unit's health, doubled when the player controls the
// terrain's eighth face. Points split evenly across the unit's elements,
// remainder to the earlier elements. Amazons generate the elements of the
// terrain they occupy, or ivory from the Reserve Area.
func (r *Resolver) CalculateMagicPoints(playerName, armyID string, unitRolls []UnitRollResult, location string) (PointCalculation, error) {
	army, err := r.state.GetArmy(playerName, armyID)
	if err != nil {
		return PointCalculation{}, err
	}

	calc := PointCalculation{Points: make(map[catalog.Element]int)}
	doubled := r.state.ControlsEighthFace(playerName, location)

	for _, roll := range unitRolls {
		var unit *state.Unit
		for _, u := range army.Units {
			if u.InstanceID == roll.UnitID {
				unit = u
				break
			}
		}
		if unit == nil {
			return PointCalculation{}, fmt.Errorf("%w: %q in army %q", state.ErrUnitNotFound, roll.UnitID, armyID)
		}
		parsed, err := rules.ParseDiceString(roll.Results)
		if err != nil {
			return PointCalculation{}, err
		}

		detail := UnitPointDetail{
			UnitID:       unit.InstanceID,
			UnitName:     unit.Name,
			MagicResults: rules.TotalResults(parsed, rules.ResultMagic),
			IDResults:    rules.TotalResults(parsed, rules.ResultID),
			IDValue:      unit.Health,
		}
		if doubled {
			detail.IDValue *= 2
		}
		detail.Total = detail.MagicResults + detail.IDResults*detail.IDValue

		elements, err := unitMagicElements(unit, location)
		if err != nil {
			return PointCalculation{}, err
		}
		detail.Elements = elements

		distributePoints(calc.Points, elements, detail.Total)
		calc.Details = append(calc.Details, detail)
	}

	r.logger.Debug("magic points calculated",
		zap.String("player", playerName),
		zap.String("army", armyID),
		zap.Bool("eighth_face_doubling", doubled))
	return calc, nil
}

// unitMagicElements returns the elements a unit's magic points convert to
// at the given location.
func unitMagicElements(unit *state.Unit, location string) ([]catalog.Element, error) {
	if unit.Species == "Amazons" {
		if catalog.IsSpecialLocation(location) {
			return []catalog.Element{catalog.ElementIvory}, nil
		}
		return catalog.TerrainElements(location)
	}
	return catalog.SpeciesElements(unit.Species)
}

// distributePoints splits points across elements evenly, remainder going to
// the earlier elements in order.
func distributePoints(points map[catalog.Element]int, elements []catalog.Element, total int) {
	if total <= 0 || len(elements) == 0 {
		return
	}
	share := total / len(elements)
	remainder := total % len(elements)
	for i, e := range elements {
		pts := share
		if i < remainder {
			pts++
		}
		points[e] += pts
	}
}

// SpellAvailability filters the catalog to spells the army can cast with
// the given points at the given location.
func (r *Resolver) SpellAvailability(points map[catalog.Element]int, armySpecies []string, location string) []catalog.Spell {
	return catalog.AvailableSpells(points, armySpecies, catalog.IsSpecialLocation(location))
}

// SpellRequest is one requested casting.
type SpellRequest struct {
	SpellName      string
	Element        catalog.Element // element paying the cost; ignored for elemental spells
	Count          int
	TargetPlayer   string
	TargetArmy     string
	TargetUnit     string // display name, for resurrection targets
	FortitudeSaves int    // save results the target rolled on Winter's Fortitude dice
}

// CastResult describes the outcome of a spell-casting request batch.
type CastResult struct {
	Success   bool
	Error     string
	Cast      []string
	Remaining map[catalog.Element]int
}

// ValidateSpellCasting is the read-only precondition check for CastSpells,
// usable by clients before committing.
func (r *Resolver) ValidateSpellCasting(requests []SpellRequest, points map[catalog.Element]int, armySpecies []string, location string) (bool, []string) {
	var errs []string
	remaining := clonePoints(points)
	for _, req := range requests {
		if err := r.checkRequest(req, remaining, armySpecies, location); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		deductCost(remaining, req)
	}
	return len(errs) == 0, errs
}

func (r *Resolver) checkRequest(req SpellRequest, remaining map[catalog.Element]int, armySpecies []string, location string) error {
	spell, err := catalog.GetSpell(req.SpellName)
	if err != nil {
		return err
	}
	if req.Count < 1 {
		return fmt.Errorf("spell %q: count must be at least 1", req.SpellName)
	}
	if !spell.AvailableToSpecies(armySpecies) {
		return fmt.Errorf("spell %q is restricted to %s", spell.Name, spell.Species)
	}
	fromReserves := catalog.IsSpecialLocation(location)
	if spell.Reserves != fromReserves {
		if spell.Reserves {
			return fmt.Errorf("spell %q may only be cast from the Reserve Area", spell.Name)
		}
		return fmt.Errorf("spell %q may not be cast from the Reserve Area", spell.Name)
	}
	cost := spell.Cost * req.Count
	if spell.IsElemental() {
		if totalPoints(remaining) < cost {
			return fmt.Errorf("spell %q needs %d points, %d available", spell.Name, cost, totalPoints(remaining))
		}
		return nil
	}
	available := remaining[spell.Element] + remaining[catalog.ElementIvory]
	if available < cost {
		return fmt.Errorf("spell %q needs %d %s points, %d available", spell.Name, cost, spell.Element, available)
	}
	return nil
}

// checkEffectTargets verifies the batch's effect targets against current
// state before any mutation, counting how many units the batch as a whole
// pulls from each pool so duplicate requests cannot pass one by one.
func (r *Resolver) checkEffectTargets(casterName string, requests []SpellRequest) error {
	type poolKey struct{ player, name string }
	buried := make(map[poolKey]int)
	raised := make(map[poolKey]int)
	for _, req := range requests {
		spell, err := catalog.GetSpell(req.SpellName)
		if err != nil {
			return err
		}
		switch spell.Kind {
		case catalog.EffectDamage:
			if req.TargetPlayer == "" {
				return fmt.Errorf("spell %q requires a target player", spell.Name)
			}
			if _, err := r.state.GetArmy(req.TargetPlayer, req.TargetArmy); err != nil {
				return err
			}
			if req.FortitudeSaves > 0 {
				granted := 0
				if r.fortitude != nil {
					granted = r.fortitude(req.TargetPlayer, req.TargetArmy, spell.Amount*req.Count)
				}
				if req.FortitudeSaves > granted {
					return fmt.Errorf("spell %q: %d fortitude saves claimed, %d granted",
						spell.Name, req.FortitudeSaves, granted)
				}
			}
		case catalog.EffectBury:
			p, err := r.state.GetPlayer(req.TargetPlayer)
			if err != nil {
				return err
			}
			key := poolKey{req.TargetPlayer, req.TargetUnit}
			buried[key] += req.Count
			have := 0
			for _, u := range p.DUA {
				if u.Species == req.TargetUnit {
					have++
				}
			}
			if buried[key] > have {
				return fmt.Errorf("spell %q targets %d %s units, DUA of %q holds %d",
					spell.Name, buried[key], req.TargetUnit, req.TargetPlayer, have)
			}
		case catalog.EffectResurrect:
			p, err := r.state.GetPlayer(casterName)
			if err != nil {
				return err
			}
			maxHealth := 0
			if spell.Name == "Esfah's Gift" {
				maxHealth = 1
			}
			key := poolKey{casterName, req.TargetUnit}
			raised[key] += req.Count
			have := 0
			for _, u := range p.DUA {
				if u.Name != req.TargetUnit {
					continue
				}
				if maxHealth > 0 && u.MaxHealth > maxHealth {
					continue
				}
				have++
			}
			if raised[key] > have {
				return fmt.Errorf("spell %q targets %d units named %q, DUA of %q holds %d eligible",
					spell.Name, raised[key], req.TargetUnit, casterName, have)
			}
		}
	}
	return nil
}

// CastSpells resolves a batch of casting requests all-or-nothing: every
// request is validated against the point pool before any effect applies.
func (r *Resolver) CastSpells(casterName, armyID, location string, requests []SpellRequest, points map[catalog.Element]int) (CastResult, error) {
	army, err := r.state.GetArmy(casterName, armyID)
	if err != nil {
		return CastResult{}, err
	}

	ok, errs := r.ValidateSpellCasting(requests, points, army.Species(), location)
	if !ok {
		return CastResult{Success: false, Error: errs[0], Remaining: clonePoints(points)}, nil
	}
	if err := r.checkEffectTargets(casterName, requests); err != nil {
		return CastResult{Success: false, Error: err.Error(), Remaining: clonePoints(points)}, nil
	}

	remaining := clonePoints(points)
	result := CastResult{Success: true}
	for _, req := range requests {
		spell, _ := catalog.GetSpell(req.SpellName)
		deductCost(remaining, req)
		if err := r.applyEffect(casterName, armyID, spell, req); err != nil {
			return CastResult{}, err
		}
		result.Cast = append(result.Cast, spell.Name)
		r.logger.Info("spell cast",
			zap.String("caster", casterName),
			zap.String("spell", spell.Name),
			zap.Int("count", req.Count))
	}
	result.Remaining = remaining
	return result, nil
}

func (r *Resolver) applyEffect(casterName, armyID string, spell catalog.Spell, req SpellRequest) error {
	switch spell.Kind {
	case catalog.EffectDamage:
		target := req.TargetPlayer
		if target == "" {
			return fmt.Errorf("spell %q requires a target player", spell.Name)
		}
		damage := spell.Amount * req.Count
		if r.fortitude != nil && req.FortitudeSaves > 0 {
			granted := r.fortitude(target, req.TargetArmy, damage)
			saves := req.FortitudeSaves
			if saves > granted {
				saves = granted
			}
			damage -= saves
		}
		if damage <= 0 {
			return nil
		}
		_, err := r.state.ApplyDamage(target, req.TargetArmy, damage)
		return err
	case catalog.EffectResurrect:
		maxHealth := 0
		if spell.Name == "Esfah's Gift" {
			maxHealth = 1
		}
		for i := 0; i < req.Count; i++ {
			if err := r.state.ResurrectUnitFromDUA(casterName, armyID, req.TargetUnit, maxHealth); err != nil {
				return err
			}
		}
		return nil
	case catalog.EffectBury:
		for i := 0; i < req.Count; i++ {
			if err := r.state.BuryUnitFromDUA(req.TargetPlayer, req.TargetUnit); err != nil {
				return err
			}
		}
		return nil
	case catalog.EffectModifier:
		r.addEffect(casterName, spell, req)
		return nil
	}
	return fmt.Errorf("spell %q has no effect handler", spell.Name)
}

func clonePoints(points map[catalog.Element]int) map[catalog.Element]int {
	out := make(map[catalog.Element]int, len(points))
	for k, v := range points {
		out[k] = v
	}
	return out
}

func totalPoints(points map[catalog.Element]int) int {
	total := 0
	for _, v := range points {
		total += v
	}
	return total
}

// deductCost removes a request's cost from the pool. Named-element spells
// spend their element first, then ivory; elemental spells drain the base
// elements in catalog order, then ivory.
func deductCost(points map[catalog.Element]int, req SpellRequest) {
	spell, err := catalog.GetSpell(req.SpellName)
	if err != nil {
		return
	}
	cost := spell.Cost * req.Count
	if !spell.IsElemental() {
		cost = drainElement(points, spell.Element, cost)
		drainElement(points, catalog.ElementIvory, cost)
		return
	}
	for _, e := range catalog.BaseElements {
		cost = drainElement(points, e, cost)
		if cost == 0 {
			return
		}
	}
	drainElement(points, catalog.ElementIvory, cost)
}

func drainElement(points map[catalog.Element]int, e catalog.Element, cost int) int {
	if cost <= 0 {
		return 0
	}
	spent := cost
	if spent > points[e] {
		spent = points[e]
	}
	points[e] -= spent
	return cost - spent
}
