// Package action resolves melee, missile and maneuver exchanges, including
// the ordered sub-steps within a chosen action.
package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/game/rules"
	"github.com/dragondice/dragondice-go/internal/game/state"
)

// Participant identifies one side of an action.
type Participant struct {
	Player string
	ArmyID string
}

// actionContext is the transient record of the action in progress.
type actionContext struct {
	actionType rules.ActionType
	step       rules.ActionStep
	attacker   Participant
	defender   Participant
	location   string

	// Carried between the attacker roll and the save roll.
	savableDamage   int
	unsavableDamage int
}

// Resolver drives the sub-state machine of a chosen action. A failed
// submission leaves the step pointer unchanged so the same step can be
// retried with corrected input.
type Resolver struct {
	state  *state.Manager
	logger *zap.Logger
	ctx    *actionContext
}

// NewResolver constructs an action resolver bound to the state manager.
func NewResolver(st *state.Manager, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{state: st, logger: logger}
}

// CurrentStep returns the substep awaiting input, ActionStepNone when no
// action is in progress.
func (r *Resolver) CurrentStep() rules.ActionStep {
	if r.ctx == nil {
		return rules.ActionStepNone
	}
	return r.ctx.step
}

// InProgress reports whether an action is underway.
func (r *Resolver) InProgress() bool { return r.ctx != nil }

// Reset abandons any action in progress.
func (r *Resolver) Reset() { r.ctx = nil }

// BeginAction starts a melee or missile exchange between the two
// participants. Magic actions are resolved by the spell resolver and do not
// pass through here.
func (r *Resolver) BeginAction(actionType rules.ActionType, attacker, defender Participant, location string) error {
	if r.ctx != nil {
		return &state.StateMismatchError{
			Operation: "begin action",
			Expected:  "no action in progress",
			Actual:    r.ctx.step.String(),
		}
	}
	if actionType == rules.ActionMagic {
		return fmt.Errorf("magic actions resolve through the spell resolver")
	}
	if _, err := r.state.GetArmy(attacker.Player, attacker.ArmyID); err != nil {
		return err
	}
	if _, err := r.state.GetArmy(defender.Player, defender.ArmyID); err != nil {
		return err
	}
	r.ctx = &actionContext{
		actionType: actionType,
		step:       actionType.FirstStep(),
		attacker:   attacker,
		defender:   defender,
		location:   location,
	}
	r.logger.Debug("action started",
		zap.String("type", actionType.String()),
		zap.String("attacker", attacker.Player),
		zap.String("defender", defender.Player))
	return nil
}

// AttackResult reports the attacker roll evaluation.
type AttackResult struct {
	Hits            int
	SavableDamage   int
	UnsavableDamage int
	TotalDamage     int
	NextStep        rules.ActionStep
}

func (r *Resolver) requireStep(operation string, valid ...rules.ActionStep) error {
	current := r.CurrentStep()
	for _, s := range valid {
		if current == s {
			return nil
		}
	}
	expected := ""
	for i, s := range valid {
		if i > 0 {
			expected += " or "
		}
		expected += s.String()
	}
	return &state.StateMismatchError{Operation: operation, Expected: expected, Actual: current.String()}
}

// SubmitAttackerResults evaluates the attacking army's roll. Plain melee or
// missile results deal savable damage; Bullseye and Smite icons deal damage
// that bypasses saves. Advances to the defender's save step.
func (r *Resolver) SubmitAttackerResults(diceString string) (AttackResult, error) {
	if err := r.requireStep("submit attacker results",
		rules.ActionStepAwaitingAttackerMeleeRoll,
		rules.ActionStepAwaitingAttackerMissileRoll); err != nil {
		return AttackResult{}, err
	}
	parsed, err := rules.ParseDiceString(diceString)
	if err != nil {
		return AttackResult{}, err
	}

	hitType := rules.ResultMelee
	if r.ctx.actionType == rules.ActionMissile {
		hitType = rules.ResultMissile
	}
	result := AttackResult{
		Hits:            rules.TotalResults(parsed, hitType),
		UnsavableDamage: rules.TotalSAI(parsed, rules.SAIBullseye) + rules.TotalSAI(parsed, rules.SAISmite),
	}
	result.SavableDamage = result.Hits
	result.TotalDamage = result.SavableDamage + result.UnsavableDamage

	r.ctx.savableDamage = result.SavableDamage
	r.ctx.unsavableDamage = result.UnsavableDamage
	r.ctx.step = rules.ActionStepAwaitingDefenderSaves
	result.NextStep = r.ctx.step

	r.logger.Debug("attacker roll resolved",
		zap.Int("hits", result.Hits),
		zap.Int("unsavable", result.UnsavableDamage))
	return result, nil
}

// SaveResult reports the defender save evaluation and its effects.
type SaveResult struct {
	Saves             int
	DamageTaken       int
	Killed            []state.UnitSummary
	CounterToAttacker int
	CounterKilled     []state.UnitSummary
	Resolved          bool
	NextStep          rules.ActionStep
}

// SubmitDefenderSaves evaluates the defender's save roll and applies the
// surviving damage to the defending army, lowest-health units first. ID
// faces are not saves. A Counter icon in a save roll against melee inflicts
// one reciprocal damage on the attacker. A melee defender that rolled melee
// results may counter-attack; otherwise the action resolves.
func (r *Resolver) SubmitDefenderSaves(diceString string) (SaveResult, error) {
	if err := r.requireStep("submit defender saves",
		rules.ActionStepAwaitingDefenderSaves); err != nil {
		return SaveResult{}, err
	}
	parsed, err := rules.ParseDiceString(diceString)
	if err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{Saves: rules.TotalResults(parsed, rules.ResultSave)}

	damage := r.ctx.savableDamage - result.Saves
	if damage < 0 {
		damage = 0
	}
	damage += r.ctx.unsavableDamage
	result.DamageTaken = damage

	if damage > 0 {
		applied, err := r.state.ApplyDamage(r.ctx.defender.Player, r.ctx.defender.ArmyID, damage)
		if err != nil {
			return SaveResult{}, err
		}
		result.Killed = applied.Killed
	}

	if r.ctx.actionType == rules.ActionMelee {
		if counter := rules.TotalSAI(parsed, rules.SAICounter); counter > 0 {
			result.CounterToAttacker = counter
			applied, err := r.state.ApplyDamage(r.ctx.attacker.Player, r.ctx.attacker.ArmyID, counter)
			if err != nil {
				return SaveResult{}, err
			}
			result.CounterKilled = applied.Killed
		}
		if rules.TotalResults(parsed, rules.ResultMelee) > 0 {
			r.ctx.step = rules.ActionStepAwaitingMeleeCounterAttackRoll
			result.NextStep = r.ctx.step
			return result, nil
		}
	}

	r.ctx = nil
	result.Resolved = true
	result.NextStep = rules.ActionStepNone
	return result, nil
}

// CounterAttackResult reports the reverse melee exchange.
type CounterAttackResult struct {
	Damage   int
	Killed   []state.UnitSummary
	Resolved bool
}

// SubmitCounterAttackResults resolves the defender's counter-attack as a
// melee exchange in the reverse direction and completes the action.
func (r *Resolver) SubmitCounterAttackResults(diceString string) (CounterAttackResult, error) {
	if err := r.requireStep("submit counter-attack results",
		rules.ActionStepAwaitingMeleeCounterAttackRoll); err != nil {
		return CounterAttackResult{}, err
	}
	parsed, err := rules.ParseDiceString(diceString)
	if err != nil {
		return CounterAttackResult{}, err
	}

	damage := rules.TotalResults(parsed, rules.ResultMelee) +
		rules.TotalSAI(parsed, rules.SAIBullseye) +
		rules.TotalSAI(parsed, rules.SAISmite)

	result := CounterAttackResult{Damage: damage}
	if damage > 0 {
		applied, err := r.state.ApplyDamage(r.ctx.attacker.Player, r.ctx.attacker.ArmyID, damage)
		if err != nil {
			return CounterAttackResult{}, err
		}
		result.Killed = applied.Killed
	}

	r.logger.Debug("counter-attack resolved", zap.Int("damage", damage))
	r.ctx = nil
	result.Resolved = true
	return result, nil
}

// ManeuverResult reports a contested maneuver.
type ManeuverResult struct {
	Success       bool
	AttackerValue int
	DefenderValue int
}

// ResolveManeuver compares the maneuvering army's roll against the
// counter-maneuvering defenders' combined roll. The maneuver succeeds only
// when the attacker's value strictly exceeds the defenders' value.
func ResolveManeuver(attackerValue, defenderValue int) ManeuverResult {
	return ManeuverResult{
		Success:       attackerValue > defenderValue,
		AttackerValue: attackerValue,
		DefenderValue: defenderValue,
	}
}
