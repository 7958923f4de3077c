package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/game/rules"
	"github.com/dragondice/dragondice-go/internal/game/state"
)

func setupGame(t *testing.T) (*state.Manager, *Resolver) {
	t.Helper()
	setup := state.GameSetup{
		Players: []state.PlayerSetup{
			{
				Name:        "Alice",
				HomeTerrain: "Highland Temple",
				ForceSize:   24,
				Armies: map[string]state.ArmySetup{
					"home": {
						Name:     "Raiders",
						Location: "Coastland City",
						UniqueID: "alice-home",
						Units: []state.UnitSetup{
							{TypeID: "amazon_soldier"},
							{TypeID: "amazon_warrior"},
						},
					},
				},
			},
			{
				Name:        "Bob",
				HomeTerrain: "Coastland City",
				ForceSize:   24,
				Armies: map[string]state.ArmySetup{
					"home": {
						Name:     "Defenders",
						Location: "Coastland City",
						UniqueID: "bob-home",
						Units: []state.UnitSetup{
							{TypeID: "coralelf_fighter"},
							{TypeID: "coralelf_guard"},
						},
					},
				},
			},
		},
		FirstPlayerName: "Alice",
		FrontierTerrain: "Flatland City",
	}
	m, err := state.NewManager(setup, zap.NewNop())
	require.NoError(t, err)
	return m, NewResolver(m, zap.NewNop())
}

func beginMelee(t *testing.T, r *Resolver) {
	t.Helper()
	err := r.BeginAction(rules.ActionMelee,
		Participant{Player: "Alice", ArmyID: "alice-home"},
		Participant{Player: "Bob", ArmyID: "bob-home"},
		"Coastland City")
	require.NoError(t, err)
}

func TestMeleeScenarioWithBullseye(t *testing.T) {
	m, r := setupGame(t)
	beginMelee(t, r)
	require.Equal(t, rules.ActionStepAwaitingAttackerMeleeRoll, r.CurrentStep())

	attack, err := r.SubmitAttackerResults("2 melee, 1 sai:bullseye")
	require.NoError(t, err)
	assert.Equal(t, 2, attack.Hits)
	assert.Equal(t, 1, attack.UnsavableDamage)
	assert.Equal(t, 3, attack.TotalDamage)
	require.Equal(t, rules.ActionStepAwaitingDefenderSaves, r.CurrentStep())

	// One save cancels one of the two savable hits; the bullseye point
	// bypasses saves. Two damage kill the 1-health fighter and wound the
	// 2-health guard.
	save, err := r.SubmitDefenderSaves("1 save, 1 id")
	require.NoError(t, err)
	assert.Equal(t, 1, save.Saves)
	assert.Equal(t, 2, save.DamageTaken)
	require.Len(t, save.Killed, 1)
	assert.Equal(t, "coralelf_fighter", save.Killed[0].TypeID)
	assert.True(t, save.Resolved)
	assert.Equal(t, rules.ActionStepNone, r.CurrentStep())

	army, err := m.GetArmy("Bob", "bob-home")
	require.NoError(t, err)
	require.Len(t, army.Units, 1)
	assert.Equal(t, 1, army.Units[0].Health)
}

func TestDefenderMeleeResultsTriggerCounterAttack(t *testing.T) {
	m, r := setupGame(t)
	beginMelee(t, r)

	_, err := r.SubmitAttackerResults("1 melee")
	require.NoError(t, err)

	save, err := r.SubmitDefenderSaves("2 save, 1 melee")
	require.NoError(t, err)
	assert.Equal(t, 0, save.DamageTaken)
	assert.False(t, save.Resolved)
	require.Equal(t, rules.ActionStepAwaitingMeleeCounterAttackRoll, r.CurrentStep())

	counter, err := r.SubmitCounterAttackResults("2 melee")
	require.NoError(t, err)
	assert.Equal(t, 2, counter.Damage)
	assert.True(t, counter.Resolved)
	assert.Equal(t, rules.ActionStepNone, r.CurrentStep())

	// The counter-attack killed Alice's 1-health soldier and wounded the
	// warrior.
	army, err := m.GetArmy("Alice", "alice-home")
	require.NoError(t, err)
	require.Len(t, army.Units, 1)
	assert.Equal(t, "amazon_warrior", army.Units[0].TypeID)
	assert.Equal(t, 1, army.Units[0].Health)
}

func TestCounterSAIReflectsDamage(t *testing.T) {
	m, r := setupGame(t)
	beginMelee(t, r)

	_, err := r.SubmitAttackerResults("1 melee")
	require.NoError(t, err)

	save, err := r.SubmitDefenderSaves("1 save, 1 sai:counter")
	require.NoError(t, err)
	assert.Equal(t, 1, save.CounterToAttacker)
	require.Len(t, save.CounterKilled, 1)
	assert.True(t, save.Resolved)

	alice, err := m.GetPlayer("Alice")
	require.NoError(t, err)
	assert.Len(t, alice.DUA, 1)
}

func TestSmiteIgnoresSaves(t *testing.T) {
	_, r := setupGame(t)
	beginMelee(t, r)

	attack, err := r.SubmitAttackerResults("1 sai:smite")
	require.NoError(t, err)
	assert.Equal(t, 1, attack.UnsavableDamage)

	save, err := r.SubmitDefenderSaves("5 save")
	require.NoError(t, err)
	assert.Equal(t, 1, save.DamageTaken)
}

func TestMissileActionHasNoCounterAttack(t *testing.T) {
	_, r := setupGame(t)
	err := r.BeginAction(rules.ActionMissile,
		Participant{Player: "Alice", ArmyID: "alice-home"},
		Participant{Player: "Bob", ArmyID: "bob-home"},
		"Coastland City")
	require.NoError(t, err)
	require.Equal(t, rules.ActionStepAwaitingAttackerMissileRoll, r.CurrentStep())

	attack, err := r.SubmitAttackerResults("2 missile, 1 melee")
	require.NoError(t, err)
	// Melee results do not count in a missile action.
	assert.Equal(t, 2, attack.Hits)

	save, err := r.SubmitDefenderSaves("1 save, 2 melee")
	require.NoError(t, err)
	assert.True(t, save.Resolved, "missile defenders never counter-attack")
}

func TestParseFailureLeavesStepUnchanged(t *testing.T) {
	_, r := setupGame(t)
	beginMelee(t, r)

	_, err := r.SubmitAttackerResults("2 gibberish")
	require.Error(t, err)
	assert.Equal(t, rules.ActionStepAwaitingAttackerMeleeRoll, r.CurrentStep())

	// The same step accepts a corrected submission.
	_, err = r.SubmitAttackerResults("2 melee")
	require.NoError(t, err)
	assert.Equal(t, rules.ActionStepAwaitingDefenderSaves, r.CurrentStep())
}

func TestWrongStepSubmissionRejected(t *testing.T) {
	_, r := setupGame(t)
	beginMelee(t, r)

	_, err := r.SubmitDefenderSaves("1 save")
	var mismatch *state.StateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, rules.ActionStepAwaitingAttackerMeleeRoll, r.CurrentStep())

	_, err = r.SubmitCounterAttackResults("1 melee")
	require.ErrorAs(t, err, &mismatch)
}

func TestBeginActionRejectsMagicAndOverlap(t *testing.T) {
	_, r := setupGame(t)

	err := r.BeginAction(rules.ActionMagic,
		Participant{Player: "Alice", ArmyID: "alice-home"},
		Participant{Player: "Bob", ArmyID: "bob-home"},
		"Coastland City")
	assert.Error(t, err)

	beginMelee(t, r)
	err = r.BeginAction(rules.ActionMelee,
		Participant{Player: "Alice", ArmyID: "alice-home"},
		Participant{Player: "Bob", ArmyID: "bob-home"},
		"Coastland City")
	var mismatch *state.StateMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestBeginActionUnknownArmy(t *testing.T) {
	_, r := setupGame(t)
	err := r.BeginAction(rules.ActionMelee,
		Participant{Player: "Alice", ArmyID: "ghost"},
		Participant{Player: "Bob", ArmyID: "bob-home"},
		"Coastland City")
	assert.ErrorIs(t, err, state.ErrArmyNotFound)
}

func TestResolveManeuver(t *testing.T) {
	assert.True(t, ResolveManeuver(4, 3).Success)
	assert.False(t, ResolveManeuver(3, 3).Success, "ties favor the defender")
	assert.False(t, ResolveManeuver(2, 3).Success)
}
