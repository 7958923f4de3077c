// Package game wires the turn state machine to the resolvers that carry
// out march, magic and species ability decisions.
package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/catalog"
	"github.com/dragondice/dragondice-go/internal/game/abilities"
	"github.com/dragondice/dragondice-go/internal/game/action"
	"github.com/dragondice/dragondice-go/internal/game/magic"
	"github.com/dragondice/dragondice-go/internal/game/rules"
	"github.com/dragondice/dragondice-go/internal/game/state"
)

// PendingManeuver records a maneuver awaiting the opposing roll-off. It is
// created by DecideManeuver(true) and destroyed when the roll resolves.
type PendingManeuver struct {
	Player   string
	ArmyID   string
	Location string
}

// Orchestrator drives phase and step sequencing and dispatches decisions to
// the resolvers. Every transition method validates the current (player,
// phase, step) tuple before mutating anything; each successful mutation
// publishes exactly one event.
type Orchestrator struct {
	logger *zap.Logger

	state     *state.Manager
	turns     *rules.TurnManager
	bus       *rules.EventBus
	magic     *magic.Resolver
	abilities *abilities.Resolver
	action    *action.Resolver

	pendingManeuver *PendingManeuver

	// Magic points computed by the most recent magic roll, spent by the
	// following casting request.
	pendingMagicPoints map[catalog.Element]int
	pendingMagicArmy   string
}

// NewOrchestrator validates the setup, builds the initial game state and
// positions the first player at the start of their turn.
func NewOrchestrator(setup state.GameSetup, logger *zap.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	st, err := state.NewManager(setup, logger)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		logger:    logger,
		state:     st,
		turns:     rules.NewTurnManager(st.PlayerNames(), st.FirstPlayerName()),
		bus:       rules.NewEventBus(),
		magic:     magic.NewResolver(st, logger),
		abilities: abilities.NewResolver(st, logger),
		action:    action.NewResolver(st, logger),
	}
	// Damage spells consult Winter's Fortitude when resolving against a
	// Frostwing army.
	o.magic.SetFortitude(o.abilities.WintersFortitudeSaves)
	// The opening Expire Effects phase has nothing to expire and no player
	// interaction; settle on the first interactive phase.
	o.settleExpireEffects()
	return o, nil
}

// Events returns the bus UIs subscribe to for state-change notifications.
func (o *Orchestrator) Events() *rules.EventBus { return o.bus }

// State exposes read access to the game state for queries.
func (o *Orchestrator) State() *state.Manager { return o.state }

// CurrentPlayerName returns the player whose turn is in progress.
func (o *Orchestrator) CurrentPlayerName() string { return o.turns.CurrentPlayer() }

// CurrentPhase returns the phase in progress.
func (o *Orchestrator) CurrentPhase() rules.Phase { return o.turns.CurrentPhase() }

// CurrentMarchStep returns the march step in progress.
func (o *Orchestrator) CurrentMarchStep() rules.MarchStep { return o.turns.MarchStep() }

// CurrentActionStep returns the action substep in progress.
func (o *Orchestrator) CurrentActionStep() rules.ActionStep { return o.turns.ActionStep() }

// TurnNumber returns the current turn number.
func (o *Orchestrator) TurnNumber() int { return o.turns.TurnNumber() }

// PhaseDisplay formats the current phase and steps for display.
func (o *Orchestrator) PhaseDisplay() string { return o.turns.DisplayString() }

// PendingManeuverRecord returns the maneuver awaiting resolution, nil when
// none is pending.
func (o *Orchestrator) PendingManeuverRecord() *PendingManeuver {
	if o.pendingManeuver == nil {
		return nil
	}
	record := *o.pendingManeuver
	return &record
}

// GetAllPlayersData returns army snapshots for every player.
func (o *Orchestrator) GetAllPlayersData() map[string][]state.ArmySummary {
	return o.state.AllPlayersSummary()
}

// GetAvailableActingArmies returns the current player's armies that may act
// this march.
func (o *Orchestrator) GetAvailableActingArmies() ([]state.ArmySummary, error) {
	return o.state.AvailableActingArmies(o.turns.CurrentPlayer())
}

func (o *Orchestrator) mismatch(operation, expected string) error {
	return &state.StateMismatchError{
		Operation: operation,
		Expected:  expected,
		Actual: fmt.Sprintf("player %s, %s", o.turns.CurrentPlayer(),
			o.turns.DisplayString()),
	}
}

func (o *Orchestrator) requireMarchStep(operation string, step rules.MarchStep) error {
	if !o.turns.CurrentPhase().IsMarch() || o.turns.MarchStep() != step {
		return o.mismatch(operation, fmt.Sprintf("march step %s", step))
	}
	return nil
}

// settleExpireEffects processes Expire Effects phases without waiting for
// input: the current player's lasting effects expire and the phase advances
// until an interactive phase is reached.
func (o *Orchestrator) settleExpireEffects() {
	for o.turns.CurrentPhase() == rules.PhaseExpireEffects {
		player := o.turns.CurrentPlayer()
		expired := o.magic.ExpireEffects(player)
		o.logger.Debug("expire effects settled",
			zap.String("player", player), zap.Int("expired", len(expired)))
		o.turns.AdvancePhase()
	}
}

// AdvancePhase completes the current non-march phase. March phases complete
// through their own decision methods, not here.
func (o *Orchestrator) AdvancePhase() error {
	phase := o.turns.CurrentPhase()
	if phase.IsMarch() {
		return o.mismatch("advance phase", "a non-march phase")
	}
	o.advanceAndPublish()
	return nil
}

func (o *Orchestrator) advanceAndPublish() {
	o.turns.AdvancePhase()
	o.settleExpireEffects()
	evt := rules.NewEvent(rules.EventPhaseAdvanced, o.turns.CurrentPlayer(), "")
	evt.Data = o.turns.CurrentPhase().String()
	o.bus.Publish(evt)
}

// ChooseActingArmy records the army acting for this march and moves to the
// maneuver decision. Valid only in the Choose Acting Army step.
func (o *Orchestrator) ChooseActingArmy(armyID string) error {
	if err := o.requireMarchStep("choose acting army", rules.MarchStepChooseActingArmy); err != nil {
		return err
	}
	player := o.turns.CurrentPlayer()
	army, err := o.state.GetArmy(player, armyID)
	if err != nil {
		return err
	}
	if catalog.IsSpecialLocation(army.Location) {
		return fmt.Errorf("army %q is not at a terrain", armyID)
	}
	if err := o.state.SetActiveArmy(player, armyID); err != nil {
		return err
	}
	o.turns.SetMarchStep(rules.MarchStepDecideManeuver)

	evt := rules.NewEvent(rules.EventActingArmyChosen, player, armyID)
	evt.Location = army.Location
	o.bus.Publish(evt)
	return nil
}

// DecideManeuver either opens a maneuver roll-off or skips straight to the
// action decision. Valid only in the Decide Maneuver step.
func (o *Orchestrator) DecideManeuver(willManeuver bool) error {
	if err := o.requireMarchStep("decide maneuver", rules.MarchStepDecideManeuver); err != nil {
		return err
	}
	player := o.turns.CurrentPlayer()
	army, err := o.state.GetActiveArmy(player)
	if err != nil {
		return err
	}

	if !willManeuver {
		o.turns.SetMarchStep(rules.MarchStepDecideAction)
		o.bus.Publish(rules.NewEvent(rules.EventManeuverDeclined, player, army.UniqueID))
		return nil
	}

	// Counter-maneuvers need an opposing army at the terrain. Without one
	// the maneuver succeeds outright, no roll-off.
	if !o.hasOpposingArmy(player, army.Location) {
		o.turnTerrainForManeuver(player, army.Location)
		o.turns.SetMarchStep(rules.MarchStepDecideAction)
		evt := rules.NewEvent(rules.EventManeuverResolved, player, army.UniqueID)
		evt.Location = army.Location
		evt.Data = "success"
		o.bus.Publish(evt)
		return nil
	}

	o.pendingManeuver = &PendingManeuver{
		Player:   player,
		ArmyID:   army.UniqueID,
		Location: army.Location,
	}
	o.turns.SetMarchStep(rules.MarchStepAwaitingManeuverInput)

	evt := rules.NewEvent(rules.EventManeuverRequested, player, army.UniqueID)
	evt.Location = army.Location
	o.bus.Publish(evt)
	return nil
}

// SubmitManeuverRollResults resolves the pending maneuver roll-off. The
// maneuvering army succeeds only when its value strictly exceeds the
// counter-maneuvering defenders'. Success turns the terrain die up one
// face; reaching the eighth face grants the maneuvering player control.
func (o *Orchestrator) SubmitManeuverRollResults(attackerValue, defenderValue int) (action.ManeuverResult, error) {
	if err := o.requireMarchStep("submit maneuver roll", rules.MarchStepAwaitingManeuverInput); err != nil {
		return action.ManeuverResult{}, err
	}
	if o.pendingManeuver == nil {
		return action.ManeuverResult{}, o.mismatch("submit maneuver roll", "a pending maneuver")
	}

	result := action.ResolveManeuver(attackerValue, defenderValue)
	pending := o.pendingManeuver
	o.pendingManeuver = nil

	if result.Success {
		o.turnTerrainForManeuver(pending.Player, pending.Location)
	}
	o.turns.SetMarchStep(rules.MarchStepDecideAction)

	evt := rules.NewEventWithAmount(rules.EventManeuverResolved, pending.Player, pending.ArmyID, attackerValue)
	evt.Location = pending.Location
	if result.Success {
		evt.Data = "success"
	} else {
		evt.Data = "failed"
	}
	o.bus.Publish(evt)
	return result, nil
}

// DecideAction either opens the action selection or completes the march.
// Valid only in the Decide Action step.
func (o *Orchestrator) DecideAction(willAct bool) error {
	if err := o.requireMarchStep("decide action", rules.MarchStepDecideAction); err != nil {
		return err
	}
	player := o.turns.CurrentPlayer()
	if !willAct {
		o.completeMarch(rules.NewEvent(rules.EventActionDeclined, player, ""))
		return nil
	}
	o.turns.SetMarchStep(rules.MarchStepSelectAction)
	o.bus.Publish(rules.NewEvent(rules.EventActionSelected, player, ""))
	return nil
}

// SelectAction enters the chosen action's substep machine. Melee and
// missile need an opposing army at the acting army's terrain; magic rolls
// resolve through the spell resolver.
func (o *Orchestrator) SelectAction(actionName string) error {
	if err := o.requireMarchStep("select action", rules.MarchStepSelectAction); err != nil {
		return err
	}
	actionType, err := rules.ParseActionType(actionName)
	if err != nil {
		return err
	}
	player := o.turns.CurrentPlayer()
	army, err := o.state.GetActiveArmy(player)
	if err != nil {
		return err
	}

	if actionType == rules.ActionMagic {
		o.turns.SetActionStep(rules.ActionStepAwaitingMagicRoll)
		evt := rules.NewEvent(rules.EventActionStep, player, army.UniqueID)
		evt.Data = actionType.String()
		o.bus.Publish(evt)
		return nil
	}

	defender, err := o.findDefendingArmy(player, army.Location)
	if err != nil {
		return err
	}
	if err := o.action.BeginAction(actionType,
		action.Participant{Player: player, ArmyID: army.UniqueID},
		action.Participant{Player: defender.Owner, ArmyID: defender.UniqueID},
		army.Location); err != nil {
		return err
	}
	o.turns.SetActionStep(actionType.FirstStep())

	evt := rules.NewEvent(rules.EventActionStep, player, defender.UniqueID)
	evt.Data = actionType.String()
	evt.Location = army.Location
	o.bus.Publish(evt)
	return nil
}

// hasOpposingArmy reports whether any other player has a non-empty army at
// the location.
func (o *Orchestrator) hasOpposingArmy(player, location string) bool {
	for _, army := range o.state.ArmiesAtLocation(location) {
		if army.Owner != player && len(army.Units) > 0 {
			return true
		}
	}
	return false
}

// turnTerrainForManeuver turns the terrain die up one face after a
// successful maneuver; reaching the eighth face grants the maneuvering
// player control.
func (o *Orchestrator) turnTerrainForManeuver(player, location string) {
	ts, err := o.state.GetTerrainState(location)
	if err != nil || ts.Face >= 8 {
		return
	}
	newFace := ts.Face + 1
	_ = o.state.SetTerrainFace(location, newFace)
	if newFace == 8 {
		_ = o.state.SetTerrainController(location, player)
	}
}

// findDefendingArmy returns the first opposing army at the location.
func (o *Orchestrator) findDefendingArmy(player, location string) (*state.Army, error) {
	for _, army := range o.state.ArmiesAtLocation(location) {
		if army.Owner != player && len(army.Units) > 0 {
			return army, nil
		}
	}
	return nil, fmt.Errorf("%w: no opposing army at %q", state.ErrArmyNotFound, location)
}

// SubmitAttackerMeleeResults consumes the attacking army's melee roll.
func (o *Orchestrator) SubmitAttackerMeleeResults(diceString string) (action.AttackResult, error) {
	if o.turns.ActionStep() != rules.ActionStepAwaitingAttackerMeleeRoll {
		return action.AttackResult{}, o.mismatch("submit attacker melee results",
			rules.ActionStepAwaitingAttackerMeleeRoll.String())
	}
	return o.submitAttackerResults(diceString, rules.EventAttackerRollSubmitted)
}

// SubmitAttackerMissileResults consumes the attacking army's missile roll.
func (o *Orchestrator) SubmitAttackerMissileResults(diceString string) (action.AttackResult, error) {
	if o.turns.ActionStep() != rules.ActionStepAwaitingAttackerMissileRoll {
		return action.AttackResult{}, o.mismatch("submit attacker missile results",
			rules.ActionStepAwaitingAttackerMissileRoll.String())
	}
	return o.submitAttackerResults(diceString, rules.EventAttackerRollSubmitted)
}

func (o *Orchestrator) submitAttackerResults(diceString string, eventType rules.EventType) (action.AttackResult, error) {
	result, err := o.action.SubmitAttackerResults(diceString)
	if err != nil {
		return action.AttackResult{}, err
	}
	o.turns.SetActionStep(result.NextStep)
	evt := rules.NewEventWithAmount(eventType, o.turns.CurrentPlayer(), "", result.TotalDamage)
	o.bus.Publish(evt)
	return result, nil
}

// SubmitDefenderSaveResults consumes the defending army's save roll and
// applies surviving damage. Resolution either completes the march or opens
// the counter-attack step.
func (o *Orchestrator) SubmitDefenderSaveResults(diceString string) (action.SaveResult, error) {
	if o.turns.ActionStep() != rules.ActionStepAwaitingDefenderSaves {
		return action.SaveResult{}, o.mismatch("submit defender save results",
			rules.ActionStepAwaitingDefenderSaves.String())
	}
	result, err := o.action.SubmitDefenderSaves(diceString)
	if err != nil {
		return action.SaveResult{}, err
	}
	if result.Resolved {
		evt := rules.NewEventWithAmount(rules.EventSaveRollSubmitted, o.turns.CurrentPlayer(), "", result.DamageTaken)
		o.completeMarch(evt)
		return result, nil
	}
	o.turns.SetActionStep(result.NextStep)
	o.bus.Publish(rules.NewEventWithAmount(rules.EventSaveRollSubmitted, o.turns.CurrentPlayer(), "", result.DamageTaken))
	return result, nil
}

// SubmitMeleeCounterAttackResults consumes the defender's counter-attack
// roll and completes the march.
func (o *Orchestrator) SubmitMeleeCounterAttackResults(diceString string) (action.CounterAttackResult, error) {
	if o.turns.ActionStep() != rules.ActionStepAwaitingMeleeCounterAttackRoll {
		return action.CounterAttackResult{}, o.mismatch("submit counter-attack results",
			rules.ActionStepAwaitingMeleeCounterAttackRoll.String())
	}
	result, err := o.action.SubmitCounterAttackResults(diceString)
	if err != nil {
		return action.CounterAttackResult{}, err
	}
	evt := rules.NewEventWithAmount(rules.EventCounterRollSubmitted, o.turns.CurrentPlayer(), "", result.Damage)
	o.completeMarch(evt)
	return result, nil
}

// SubmitMagicRollResults evaluates a magic roll into per-element points
// and holds them for the casting request that follows.
func (o *Orchestrator) SubmitMagicRollResults(armyID string, unitRolls []magic.UnitRollResult, location string) (magic.PointCalculation, error) {
	if o.turns.ActionStep() != rules.ActionStepAwaitingMagicRoll {
		return magic.PointCalculation{}, o.mismatch("submit magic roll",
			rules.ActionStepAwaitingMagicRoll.String())
	}
	player := o.turns.CurrentPlayer()
	calc, err := o.magic.CalculateMagicPoints(player, armyID, unitRolls, location)
	if err != nil {
		return magic.PointCalculation{}, err
	}
	o.pendingMagicPoints = calc.Points
	o.pendingMagicArmy = armyID

	evt := rules.NewEvent(rules.EventActionStep, player, armyID)
	evt.Data = "magic points calculated"
	o.bus.Publish(evt)
	return calc, nil
}

// GetMagicPointCalculationDetails re-evaluates a magic roll without holding
// the points, for display before submission.
func (o *Orchestrator) GetMagicPointCalculationDetails(armyID string, unitRolls []magic.UnitRollResult, location string) (magic.PointCalculation, error) {
	return o.magic.CalculateMagicPoints(o.turns.CurrentPlayer(), armyID, unitRolls, location)
}

// CastSpells spends the pending magic points on the
// requested spells all-or-nothing and completes the march.
func (o *Orchestrator) CastSpells(requests []magic.SpellRequest) (magic.CastResult, error) {
	if o.turns.ActionStep() != rules.ActionStepAwaitingMagicRoll {
		return magic.CastResult{}, o.mismatch("cast spells",
			rules.ActionStepAwaitingMagicRoll.String())
	}
	if o.pendingMagicPoints == nil {
		return magic.CastResult{}, o.mismatch("cast spells", "a submitted magic roll")
	}
	player := o.turns.CurrentPlayer()
	army, err := o.state.GetArmy(player, o.pendingMagicArmy)
	if err != nil {
		return magic.CastResult{}, err
	}

	result, err := o.magic.CastSpells(player, army.UniqueID, army.Location, requests, o.pendingMagicPoints)
	if err != nil {
		return magic.CastResult{}, err
	}
	if !result.Success {
		// Points stay available for a corrected request.
		return result, nil
	}
	o.pendingMagicPoints = nil
	o.pendingMagicArmy = ""

	evt := rules.NewEventWithAmount(rules.EventSpellCast, player, army.UniqueID, len(result.Cast))
	o.completeMarch(evt)
	return result, nil
}

// completeMarch ends the action and march for the current player and
// advances the phase, publishing the given event exactly once.
func (o *Orchestrator) completeMarch(evt rules.Event) {
	player := o.turns.CurrentPlayer()
	o.state.ClearActiveArmy(player)
	o.action.Reset()
	o.pendingManeuver = nil
	o.pendingMagicPoints = nil
	o.pendingMagicArmy = ""
	o.turns.AdvancePhase()
	o.settleExpireEffects()
	o.bus.Publish(evt)
}

// ActivateMutate applies the Swamp Stalker ability during the current
// player's Species Abilities phase.
func (o *Orchestrator) ActivateMutate(targets []abilities.MutateTarget) (abilities.ActivationResult, error) {
	if o.turns.CurrentPhase() != rules.PhaseSpeciesAbilities {
		return abilities.ActivationResult{}, o.mismatch("activate mutate",
			rules.PhaseSpeciesAbilities.String())
	}
	result := o.abilities.ActivateMutate(o.turns.CurrentPlayer(), targets)
	if result.Success {
		evt := rules.NewEventWithAmount(rules.EventAbilityApplied, o.turns.CurrentPlayer(), "", result.Applied)
		evt.Data = "Mutate"
		o.bus.Publish(evt)
	}
	return result, nil
}

// ActivateFeralization applies the Feral promotion ability during the
// current player's Species Abilities phase.
func (o *Orchestrator) ActivateFeralization(armyID string, unitIDs []string, idResults int) (abilities.ActivationResult, error) {
	if o.turns.CurrentPhase() != rules.PhaseSpeciesAbilities {
		return abilities.ActivationResult{}, o.mismatch("activate feralization",
			rules.PhaseSpeciesAbilities.String())
	}
	result := o.abilities.ActivateFeralization(o.turns.CurrentPlayer(), armyID, unitIDs, idResults)
	if result.Success {
		evt := rules.NewEventWithAmount(rules.EventAbilityApplied, o.turns.CurrentPlayer(), armyID, result.Applied)
		evt.Data = "Feralization"
		o.bus.Publish(evt)
	}
	return result, nil
}

// Abilities exposes read-only eligibility checks.
func (o *Orchestrator) Abilities() *abilities.Resolver { return o.abilities }

// Magic exposes the spell resolver for availability queries.
func (o *Orchestrator) Magic() *magic.Resolver { return o.magic }
