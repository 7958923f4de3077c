package rules

import (
	"fmt"
	"strings"
)

// Phase represents the broad phases of a Dragon Dice player turn.
type Phase int

const (
	PhaseExpireEffects Phase = iota
	PhaseEighthFace
	PhaseDragonAttack
	PhaseSpeciesAbilities
	PhaseFirstMarch
	PhaseSecondMarch
	PhaseReserves
)

var phaseNames = map[Phase]string{
	PhaseExpireEffects:    "EXPIRE_EFFECTS",
	PhaseEighthFace:       "EIGHTH_FACE",
	PhaseDragonAttack:     "DRAGON_ATTACK",
	PhaseSpeciesAbilities: "SPECIES_ABILITIES",
	PhaseFirstMarch:       "FIRST_MARCH",
	PhaseSecondMarch:      "SECOND_MARCH",
	PhaseReserves:         "RESERVES",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// IsMarch reports whether the phase carries the march sub-state machine.
func (p Phase) IsMarch() bool {
	return p == PhaseFirstMarch || p == PhaseSecondMarch
}

// turnSequence is the fixed phase order of every player turn.
var turnSequence = []Phase{
	PhaseExpireEffects,
	PhaseEighthFace,
	PhaseDragonAttack,
	PhaseSpeciesAbilities,
	PhaseFirstMarch,
	PhaseSecondMarch,
	PhaseReserves,
}

// MarchStep represents the inner sequence of a march phase.
type MarchStep int

const (
	MarchStepNone MarchStep = iota
	MarchStepChooseActingArmy
	MarchStepDecideManeuver
	MarchStepAwaitingManeuverInput
	MarchStepDecideAction
	MarchStepSelectAction
)

var marchStepNames = map[MarchStep]string{
	MarchStepNone:                  "NONE",
	MarchStepChooseActingArmy:      "CHOOSE_ACTING_ARMY",
	MarchStepDecideManeuver:        "DECIDE_MANEUVER",
	MarchStepAwaitingManeuverInput: "AWAITING_MANEUVER_INPUT",
	MarchStepDecideAction:          "DECIDE_ACTION",
	MarchStepSelectAction:          "SELECT_ACTION",
}

func (s MarchStep) String() string {
	if name, ok := marchStepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("MARCH_STEP_%d", int(s))
}

// ActionStep represents the sub-steps of an action being resolved.
type ActionStep int

const (
	ActionStepNone ActionStep = iota
	ActionStepAwaitingAttackerMeleeRoll
	ActionStepAwaitingDefenderSaves
	ActionStepAwaitingMeleeCounterAttackRoll
	ActionStepAwaitingAttackerMissileRoll
	ActionStepAwaitingMagicRoll
	ActionStepAwaitingManeuverRoll
)

var actionStepNames = map[ActionStep]string{
	ActionStepNone:                           "NONE",
	ActionStepAwaitingAttackerMeleeRoll:      "AWAITING_ATTACKER_MELEE_ROLL",
	ActionStepAwaitingDefenderSaves:          "AWAITING_DEFENDER_SAVES",
	ActionStepAwaitingMeleeCounterAttackRoll: "AWAITING_MELEE_COUNTER_ATTACK_ROLL",
	ActionStepAwaitingAttackerMissileRoll:    "AWAITING_ATTACKER_MISSILE_ROLL",
	ActionStepAwaitingMagicRoll:              "AWAITING_MAGIC_ROLL",
	ActionStepAwaitingManeuverRoll:           "AWAITING_MANEUVER_ROLL",
}

func (s ActionStep) String() string {
	if name, ok := actionStepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_STEP_%d", int(s))
}

// ActionType identifies which action substep machine to enter from
// SELECT_ACTION.
type ActionType int

const (
	ActionMelee ActionType = iota
	ActionMissile
	ActionMagic
)

var actionTypeNames = map[ActionType]string{
	ActionMelee:   "MELEE",
	ActionMissile: "MISSILE",
	ActionMagic:   "MAGIC",
}

func (a ActionType) String() string {
	if name, ok := actionTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(a))
}

// ParseActionType converts an action name from client input into an ActionType.
func ParseActionType(name string) (ActionType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "MELEE":
		return ActionMelee, nil
	case "MISSILE":
		return ActionMissile, nil
	case "MAGIC":
		return ActionMagic, nil
	}
	return 0, fmt.Errorf("unknown action type: %q", name)
}

// FirstStep returns the entry substep for the action.
func (a ActionType) FirstStep() ActionStep {
	switch a {
	case ActionMelee:
		return ActionStepAwaitingAttackerMeleeRoll
	case ActionMissile:
		return ActionStepAwaitingAttackerMissileRoll
	case ActionMagic:
		return ActionStepAwaitingMagicRoll
	}
	return ActionStepNone
}

// TurnManager tracks the (player, phase, march step, action step) tuple and
// turn progression.
type TurnManager struct {
	playerNames []string
	playerIdx   int
	phaseIdx    int
	marchStep   MarchStep
	actionStep  ActionStep
	turnNumber  int
}

// NewTurnManager creates a turn manager starting at the first phase of turn 1
// with firstPlayer active. An unknown firstPlayer falls back to the first
// listed player.
func NewTurnManager(playerNames []string, firstPlayer string) *TurnManager {
	names := make([]string, len(playerNames))
	copy(names, playerNames)
	idx := 0
	for i, name := range names {
		if name == strings.TrimSpace(firstPlayer) {
			idx = i
			break
		}
	}
	return &TurnManager{
		playerNames: names,
		playerIdx:   idx,
		turnNumber:  1,
	}
}

// CurrentPlayer returns the player whose turn is in progress.
func (tm *TurnManager) CurrentPlayer() string {
	return tm.playerNames[tm.playerIdx]
}

// PlayerNames returns all players in seating order.
func (tm *TurnManager) PlayerNames() []string {
	names := make([]string, len(tm.playerNames))
	copy(names, tm.playerNames)
	return names
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.phaseIdx]
}

// MarchStep returns the march step in progress, MarchStepNone outside a
// march phase.
func (tm *TurnManager) MarchStep() MarchStep {
	return tm.marchStep
}

// ActionStep returns the action substep in progress, ActionStepNone when no
// action is underway.
func (tm *TurnManager) ActionStep() ActionStep {
	return tm.actionStep
}

// TurnNumber returns the current turn number (1-based, incremented after a
// full player rotation).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// SetMarchStep moves the march sub-state machine.
func (tm *TurnManager) SetMarchStep(step MarchStep) {
	tm.marchStep = step
}

// SetActionStep moves the action sub-state machine.
func (tm *TurnManager) SetActionStep(step ActionStep) {
	tm.actionStep = step
}

// AdvancePhase moves to the next phase, rotating to the next player after
// Reserves completes. Sub-steps reset on every phase boundary; entering a
// march phase starts at CHOOSE_ACTING_ARMY.
func (tm *TurnManager) AdvancePhase() Phase {
	tm.marchStep = MarchStepNone
	tm.actionStep = ActionStepNone

	tm.phaseIdx++
	if tm.phaseIdx >= len(turnSequence) {
		tm.advancePlayer()
	}

	if tm.CurrentPhase().IsMarch() {
		tm.marchStep = MarchStepChooseActingArmy
	}
	return tm.CurrentPhase()
}

// SkipMarchPhases jumps past the remaining march phases, used when the
// player forgoes a march entirely.
func (tm *TurnManager) SkipMarchPhases() Phase {
	for tm.CurrentPhase().IsMarch() {
		tm.AdvancePhase()
	}
	return tm.CurrentPhase()
}

func (tm *TurnManager) advancePlayer() {
	tm.playerIdx = (tm.playerIdx + 1) % len(tm.playerNames)
	tm.phaseIdx = 0
	if tm.playerIdx == 0 {
		tm.turnNumber++
	}
}

// DisplayString formats the current phase and steps for client display,
// e.g. "First March - Decide Maneuver".
func (tm *TurnManager) DisplayString() string {
	parts := []string{titleCase(tm.CurrentPhase().String())}
	if tm.marchStep != MarchStepNone {
		parts = append(parts, titleCase(tm.marchStep.String()))
	}
	if tm.actionStep != ActionStepNone {
		parts = append(parts, titleCase(tm.actionStep.String()))
	}
	return strings.Join(parts, " - ")
}

func titleCase(s string) string {
	words := strings.Split(strings.ToLower(strings.ReplaceAll(s, "_", " ")), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
