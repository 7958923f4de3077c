// Package abilities resolves species ability eligibility and activation.
package abilities

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/catalog"
	"github.com/dragondice/dragondice-go/internal/game/state"
)

const (
	speciesSwampStalkers = "Swamp Stalkers"
	speciesFeral         = "Feral"
	speciesFrostwings    = "Frostwings"
)

// ActivationResult is the structured outcome of an ability activation.
// Eligibility failures are reported here, not raised.
type ActivationResult struct {
	Success bool
	Error   string
	Applied int
}

// Resolver checks ability eligibility against game state and applies
// ability effects through the state manager. Every activation re-checks
// eligibility rather than trusting an earlier query.
type Resolver struct {
	state  *state.Manager
	logger *zap.Logger
}

// NewResolver constructs an ability resolver bound to the state manager.
func NewResolver(st *state.Manager, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{state: st, logger: logger}
}

// CheckMutateEligibility reports whether the player may activate Mutate:
// a Swamp Stalker army at a terrain, a dead Swamp Stalker in the DUA, and
// at least one opponent with units in their Reserve Area.
func (r *Resolver) CheckMutateEligibility(playerName string) (bool, string) {
	p, err := r.state.GetPlayer(playerName)
	if err != nil {
		return false, err.Error()
	}

	atTerrain := false
	for _, a := range p.Armies {
		if catalog.IsSpecialLocation(a.Location) {
			continue
		}
		if a.ContainsSpecies(speciesSwampStalkers) {
			atTerrain = true
			break
		}
	}
	if !atTerrain {
		return false, "no Swamp Stalker army at a terrain"
	}
	if p.CountSpeciesInDUA(speciesSwampStalkers) == 0 {
		return false, "no dead Swamp Stalkers in the DUA"
	}
	if len(r.state.OpponentsWithReserves(playerName)) == 0 {
		return false, "no opposing player has units in their Reserve Area"
	}
	return true, ""
}

// MaxMutateTargets returns how many units a Mutate activation may pull,
// the smaller of the dead Swamp Stalker count and one per 24 points of the
// total game force, minimum one.
func (r *Resolver) MaxMutateTargets(playerName string) int {
	p, err := r.state.GetPlayer(playerName)
	if err != nil {
		return 0
	}
	dead := p.CountSpeciesInDUA(speciesSwampStalkers)
	byPoints := r.state.TotalGamePoints() / catalog.PointsPerDragon
	if byPoints < 1 {
		byPoints = 1
	}
	if dead < byPoints {
		return dead
	}
	return byPoints
}

// MutateTarget names one unit to pull from an opponent's Reserve Area.
type MutateTarget struct {
	Opponent string
	UnitName string
}

// ActivateMutate pulls the targeted units from opposing Reserve Areas into
// their owners' DUAs, then buries one Swamp Stalker from the caller's DUA.
func (r *Resolver) ActivateMutate(playerName string, targets []MutateTarget) ActivationResult {
	if ok, reason := r.CheckMutateEligibility(playerName); !ok {
		return ActivationResult{Success: false, Error: reason}
	}
	if len(targets) == 0 {
		return ActivationResult{Success: false, Error: "no targets selected"}
	}
	if max := r.MaxMutateTargets(playerName); len(targets) > max {
		return ActivationResult{Success: false,
			Error: fmt.Sprintf("Cannot target more units (%d) than allowed (%d)", len(targets), max)}
	}
	demanded := make(map[MutateTarget]int)
	for _, target := range targets {
		if target.Opponent == playerName {
			return ActivationResult{Success: false, Error: "cannot target your own reserves"}
		}
		opp, err := r.state.GetPlayer(target.Opponent)
		if err != nil {
			return ActivationResult{Success: false, Error: err.Error()}
		}
		demanded[target]++
		available := 0
		for _, u := range opp.Reserves {
			if u.Name == target.UnitName {
				available++
			}
		}
		if demanded[target] > available {
			return ActivationResult{Success: false,
				Error: fmt.Sprintf("%d units named %q targeted, reserves of %q hold %d",
					demanded[target], target.UnitName, target.Opponent, available)}
		}
	}

	for _, target := range targets {
		if err := r.state.MoveReserveUnitToDUA(target.Opponent, target.UnitName); err != nil {
			return ActivationResult{Success: false, Error: err.Error()}
		}
	}
	if err := r.state.BuryUnitFromDUA(playerName, speciesSwampStalkers); err != nil {
		return ActivationResult{Success: false, Error: err.Error()}
	}

	r.logger.Info("mutate activated",
		zap.String("player", playerName), zap.Int("targets", len(targets)))
	return ActivationResult{Success: true, Applied: len(targets)}
}

// CheckFeralizationEligibility reports whether the player has a Feral army
// at a terrain containing earth or air.
func (r *Resolver) CheckFeralizationEligibility(playerName string) (bool, string) {
	p, err := r.state.GetPlayer(playerName)
	if err != nil {
		return false, err.Error()
	}
	for _, a := range p.Armies {
		if catalog.IsSpecialLocation(a.Location) || !a.ContainsSpecies(speciesFeral) {
			continue
		}
		elements, err := catalog.TerrainElements(a.Location)
		if err != nil {
			continue
		}
		for _, e := range elements {
			if e == catalog.ElementEarth || e == catalog.ElementAir {
				return true, ""
			}
		}
	}
	return false, "no Feral army at a terrain containing earth or air"
}

// ActivateFeralization promotes the selected Feral units, one promotion per
// ID result consumed. Requesting more promotions than ID results fails
// without touching any unit.
func (r *Resolver) ActivateFeralization(playerName, armyID string, unitIDs []string, idResults int) ActivationResult {
	if ok, reason := r.CheckFeralizationEligibility(playerName); !ok {
		return ActivationResult{Success: false, Error: reason}
	}
	if len(unitIDs) > idResults {
		return ActivationResult{Success: false,
			Error: fmt.Sprintf("Cannot promote more units (%d) than ID results available (%d)",
				len(unitIDs), idResults)}
	}

	army, err := r.state.GetArmy(playerName, armyID)
	if err != nil {
		return ActivationResult{Success: false, Error: err.Error()}
	}
	for _, unitID := range unitIDs {
		found := false
		for _, u := range army.Units {
			if u.InstanceID == unitID {
				if u.Species != speciesFeral {
					return ActivationResult{Success: false,
						Error: fmt.Sprintf("unit %q is not a Feral unit", unitID)}
				}
				found = true
				break
			}
		}
		if !found {
			return ActivationResult{Success: false,
				Error: fmt.Sprintf("unit %q not in army %q", unitID, armyID)}
		}
	}

	promoted := 0
	for _, unitID := range unitIDs {
		if _, err := r.state.PromoteUnit(playerName, armyID, unitID); err != nil {
			return ActivationResult{Success: false, Error: err.Error(), Applied: promoted}
		}
		promoted++
	}

	r.logger.Info("feralization activated",
		zap.String("player", playerName), zap.Int("promotions", promoted))
	return ActivationResult{Success: true, Applied: promoted}
}

// CheckWintersFortitude reports whether the player fields any Frostwing
// unit. The ability is passive and always eligible while one is in play.
func (r *Resolver) CheckWintersFortitude(playerName string) bool {
	p, err := r.state.GetPlayer(playerName)
	if err != nil {
		return false
	}
	for _, a := range p.Armies {
		if a.ContainsSpecies(speciesFrostwings) {
			return true
		}
	}
	return false
}

// WintersFortitudeSaves returns the extra saves granted against incoming
// magic damage to the army: one per point of damage when the army contains
// a Frostwing unit, zero otherwise.
func (r *Resolver) WintersFortitudeSaves(playerName, armyID string, magicDamage int) int {
	army, err := r.state.GetArmy(playerName, armyID)
	if err != nil || magicDamage <= 0 {
		return 0
	}
	if !army.ContainsSpecies(speciesFrostwings) {
		return 0
	}
	return magicDamage
}
