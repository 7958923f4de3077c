package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func twoPlayerSetup() GameSetup {
	return GameSetup{
		Players: []PlayerSetup{
			{
				Name:        "Alice",
				HomeTerrain: "Highland Temple",
				ForceSize:   24,
				Armies: map[string]ArmySetup{
					"home": {
						Name:     "Home Guard",
						Location: "Highland Temple",
						UniqueID: "alice-home",
						Units: []UnitSetup{
							{TypeID: "amazon_soldier"},
							{TypeID: "amazon_warrior"},
							{TypeID: "amazon_archer"},
						},
					},
					"campaign": {
						Name:     "Expedition",
						Location: "Coastland City",
						UniqueID: "alice-campaign",
						Units: []UnitSetup{
							{TypeID: "amazon_seer"},
							{TypeID: "amazon_elite"},
						},
					},
				},
			},
			{
				Name:        "Bob",
				HomeTerrain: "Coastland City",
				ForceSize:   24,
				Armies: map[string]ArmySetup{
					"home": {
						Name:     "Defenders",
						Location: "Coastland City",
						UniqueID: "bob-home",
						Units: []UnitSetup{
							{TypeID: "coralelf_fighter"},
							{TypeID: "coralelf_guard"},
						},
					},
				},
			},
		},
		FirstPlayerName: "Alice",
		FrontierTerrain: "Flatland City",
		DistanceRolls: []DistanceRoll{
			{Entity: "Highland Temple", Value: 3},
			{Entity: "Coastland City", Value: 5},
		},
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(twoPlayerSetup(), zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestNewManagerValidatesSetup(t *testing.T) {
	setup := twoPlayerSetup()
	setup.FirstPlayerName = ""

	_, err := NewManager(setup, zap.NewNop())
	require.Error(t, err)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "first_player_name", missing.Field)
}

func TestNewManagerMissingArmyLocation(t *testing.T) {
	setup := twoPlayerSetup()
	army := setup.Players[0].Armies["home"]
	army.Location = ""
	setup.Players[0].Armies["home"] = army

	_, err := NewManager(setup, zap.NewNop())
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "location", missing.Field)
}

func TestNewManagerSetsDistanceRollFaces(t *testing.T) {
	m := newTestManager(t)

	ts, err := m.GetTerrainState("Highland Temple")
	require.NoError(t, err)
	assert.Equal(t, 3, ts.Face)

	// No roll for the frontier terrain, so it starts at face 1.
	ts, err = m.GetTerrainState("Flatland City")
	require.NoError(t, err)
	assert.Equal(t, 1, ts.Face)
}

func TestGetArmyNotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GetArmy("Alice", "nonexistent")
	assert.ErrorIs(t, err, ErrArmyNotFound)

	_, err = m.GetArmy("Carol", "alice-home")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestActiveArmyLifecycle(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GetActiveArmyUnits("Alice")
	assert.ErrorIs(t, err, ErrNoActiveArmy)

	require.NoError(t, m.SetActiveArmy("Alice", "alice-home"))
	units, err := m.GetActiveArmyUnits("Alice")
	require.NoError(t, err)
	assert.Len(t, units, 3)

	m.ClearActiveArmy("Alice")
	_, err = m.GetActiveArmy("Alice")
	assert.ErrorIs(t, err, ErrNoActiveArmy)
}

func TestPromoteUnit(t *testing.T) {
	m := newTestManager(t)
	army, err := m.GetArmy("Alice", "alice-home")
	require.NoError(t, err)

	var soldierID string
	for _, u := range army.Units {
		if u.TypeID == "amazon_soldier" {
			soldierID = u.InstanceID
		}
	}
	require.NotEmpty(t, soldierID)

	result, err := m.PromoteUnit("Alice", "alice-home", soldierID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OldHealth)
	assert.Equal(t, 2, result.NewHealth)
	assert.Equal(t, "amazon_warrior", result.NewTypeID)
}

func TestPromoteUnitAtTopTierIsNoOp(t *testing.T) {
	m := newTestManager(t)

	army, err := m.GetArmy("Alice", "alice-campaign")
	require.NoError(t, err)
	var eliteID string
	for _, u := range army.Units {
		if u.TypeID == "amazon_elite" {
			eliteID = u.InstanceID
		}
	}
	require.NotEmpty(t, eliteID)

	// Promote twice: elite -> champion, then champion has no higher tier.
	_, err = m.PromoteUnit("Alice", "alice-campaign", eliteID)
	require.NoError(t, err)
	result, err := m.PromoteUnit("Alice", "alice-campaign", eliteID)
	require.NoError(t, err)
	assert.Equal(t, result.OldHealth, result.NewHealth)
	assert.Equal(t, "amazon_champion", result.NewTypeID)
}

func TestApplyDamageWeakestFirst(t *testing.T) {
	m := newTestManager(t)
	army, err := m.GetArmy("Alice", "alice-home")
	require.NoError(t, err)
	require.Equal(t, 3, len(army.Units))

	// Army holds a 1hp soldier, a 2hp warrior and a 1hp archer.
	result, err := m.ApplyDamage("Alice", "alice-home", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Applied)
	// The two 1-health units die first, the third point wounds the warrior.
	require.Len(t, result.Killed, 2)
	for _, k := range result.Killed {
		assert.Equal(t, 1, k.MaxHealth)
	}
	require.Len(t, army.Units, 1)
	assert.Equal(t, "amazon_warrior", army.Units[0].TypeID)
	assert.Equal(t, 1, army.Units[0].Health)

	alice, err := m.GetPlayer("Alice")
	require.NoError(t, err)
	assert.Len(t, alice.DUA, 2)
}

func TestApplyDamageOverkillDiscardsExcess(t *testing.T) {
	m := newTestManager(t)

	result, err := m.ApplyDamage("Bob", "bob-home", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Applied)
	assert.Len(t, result.Killed, 2)

	army, err := m.GetArmy("Bob", "bob-home")
	require.NoError(t, err)
	assert.Empty(t, army.Units)
}

func TestContainerInvariantAcrossTransfers(t *testing.T) {
	m := newTestManager(t)
	army, err := m.GetArmy("Alice", "alice-home")
	require.NoError(t, err)
	unitID := army.Units[0].InstanceID

	require.NoError(t, m.MoveUnitToReserves("Alice", "alice-home", unitID))
	assert.Equal(t, -1, army.findUnit(unitID))

	alice, err := m.GetPlayer("Alice")
	require.NoError(t, err)
	require.Len(t, alice.Reserves, 1)
	unitName := alice.Reserves[0].Name

	require.NoError(t, m.MoveReserveUnitToDUA("Alice", unitName))
	assert.Empty(t, alice.Reserves)
	require.Len(t, alice.DUA, 1)
	assert.Equal(t, 0, alice.DUA[0].Health)
}

func TestBuryUnitFromDUA(t *testing.T) {
	m := newTestManager(t)
	army, err := m.GetArmy("Alice", "alice-home")
	require.NoError(t, err)
	require.NoError(t, m.MoveUnitToDUA("Alice", "alice-home", army.Units[0].InstanceID))

	require.NoError(t, m.BuryUnitFromDUA("Alice", "Amazons"))
	alice, _ := m.GetPlayer("Alice")
	assert.Empty(t, alice.DUA)
	assert.Len(t, alice.BUA, 1)

	err = m.BuryUnitFromDUA("Alice", "Amazons")
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestResurrectUnitFromDUA(t *testing.T) {
	m := newTestManager(t)
	army, err := m.GetArmy("Alice", "alice-home")
	require.NoError(t, err)

	var warriorID string
	for _, u := range army.Units {
		if u.TypeID == "amazon_warrior" {
			warriorID = u.InstanceID
		}
	}
	require.NoError(t, m.MoveUnitToDUA("Alice", "alice-home", warriorID))

	// A 1-health restriction must not match the 2-health warrior.
	err = m.ResurrectUnitFromDUA("Alice", "alice-home", "Warrior", 1)
	assert.ErrorIs(t, err, ErrUnitNotFound)

	require.NoError(t, m.ResurrectUnitFromDUA("Alice", "alice-home", "Warrior", 0))
	assert.GreaterOrEqual(t, army.findUnit(warriorID), 0)
}

func TestTerrainControl(t *testing.T) {
	m := newTestManager(t)

	controller, err := m.TerrainController("Highland Temple")
	require.NoError(t, err)
	assert.Empty(t, controller)

	require.NoError(t, m.SetTerrainFace("Highland Temple", 8))
	require.NoError(t, m.SetTerrainController("Highland Temple", "Alice"))
	assert.True(t, m.ControlsEighthFace("Alice", "Highland Temple"))
	assert.False(t, m.ControlsEighthFace("Bob", "Highland Temple"))

	// Turning the die off the eighth face drops control.
	require.NoError(t, m.SetTerrainFace("Highland Temple", 4))
	assert.False(t, m.ControlsEighthFace("Alice", "Highland Temple"))
	controller, err = m.TerrainController("Highland Temple")
	require.NoError(t, err)
	assert.Empty(t, controller)
}

func TestTerrainLookupStripsOwnershipSuffix(t *testing.T) {
	m := newTestManager(t)

	ts, err := m.GetTerrainState("Highland Temple (Alice)")
	require.NoError(t, err)
	assert.Equal(t, "Highland Temple", ts.Name)
}

func TestTotalGamePoints(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, 48, m.TotalGamePoints())
}

func TestAvailableActingArmies(t *testing.T) {
	m := newTestManager(t)

	armies, err := m.AvailableActingArmies("Alice")
	require.NoError(t, err)
	assert.Len(t, armies, 2)

	// Moving every unit of the campaign army to reserves empties it.
	army, err := m.GetArmy("Alice", "alice-campaign")
	require.NoError(t, err)
	for len(army.Units) > 0 {
		require.NoError(t, m.MoveUnitToReserves("Alice", "alice-campaign", army.Units[0].InstanceID))
	}
	armies, err = m.AvailableActingArmies("Alice")
	require.NoError(t, err)
	require.Len(t, armies, 1)
	assert.Equal(t, "alice-home", armies[0].UniqueID)
}

func TestOpponentsWithReserves(t *testing.T) {
	m := newTestManager(t)
	assert.Empty(t, m.OpponentsWithReserves("Alice"))

	army, err := m.GetArmy("Bob", "bob-home")
	require.NoError(t, err)
	require.NoError(t, m.MoveUnitToReserves("Bob", "bob-home", army.Units[0].InstanceID))

	assert.Equal(t, []string{"Bob"}, m.OpponentsWithReserves("Alice"))
	assert.Empty(t, m.OpponentsWithReserves("Bob"))
}

func TestArmiesAtLocation(t *testing.T) {
	m := newTestManager(t)

	armies := m.ArmiesAtLocation("Coastland City")
	require.Len(t, armies, 2)
	assert.Equal(t, "Alice", armies[0].Owner)
	assert.Equal(t, "Bob", armies[1].Owner)
}
