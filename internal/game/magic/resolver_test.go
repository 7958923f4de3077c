package magic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/catalog"
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
						Name:     "Casters",
						Location: "Highland Temple",
						UniqueID: "alice-home",
						Units: []state.UnitSetup{
							{TypeID: "dwarf_theurgist"},
							{TypeID: "dwarf_theurgist"},
							{TypeID: "amazon_seer"},
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

func armyUnitIDs(t *testing.T, m *state.Manager, player, armyID string) map[string]string {
	t.Helper()
	army, err := m.GetArmy(player, armyID)
	require.NoError(t, err)
	out := map[string]string{}
	for _, u := range army.Units {
		out[u.TypeID] = u.InstanceID
	}
	return out
}

func TestCalculateMagicPointsSplitsSpeciesElements(t *testing.T) {
	m, r := setupGame(t)
	ids := armyUnitIDs(t, m, "Alice", "alice-home")

	// Dwarves carry fire and earth; 3 magic results split 2/1.
	calc, err := r.CalculateMagicPoints("Alice", "alice-home", []UnitRollResult{
		{UnitID: ids["dwarf_theurgist"], Results: "3 magic"},
	}, "Highland Temple")
	require.NoError(t, err)

	assert.Equal(t, 2, calc.Points[catalog.ElementFire])
	assert.Equal(t, 1, calc.Points[catalog.ElementEarth])
}

func TestCalculateMagicPointsIDWorthHealth(t *testing.T) {
	m, r := setupGame(t)
	ids := armyUnitIDs(t, m, "Alice", "alice-home")

	// A 1-health theurgist's ID face is worth 1 point.
	calc, err := r.CalculateMagicPoints("Alice", "alice-home", []UnitRollResult{
		{UnitID: ids["dwarf_theurgist"], Results: "1 id, 1 magic"},
	}, "Highland Temple")
	require.NoError(t, err)

	require.Len(t, calc.Details, 1)
	assert.Equal(t, 1, calc.Details[0].IDResults)
	assert.Equal(t, 1, calc.Details[0].IDValue)
	assert.Equal(t, 2, calc.Details[0].Total)
}

func TestEighthFaceControlDoublesIDOnly(t *testing.T) {
	m, r := setupGame(t)
	ids := armyUnitIDs(t, m, "Alice", "alice-home")

	require.NoError(t, m.SetTerrainFace("Highland Temple", 8))
	require.NoError(t, m.SetTerrainController("Highland Temple", "Alice"))

	calc, err := r.CalculateMagicPoints("Alice", "alice-home", []UnitRollResult{
		{UnitID: ids["dwarf_theurgist"], Results: "2 magic, 1 id"},
	}, "Highland Temple")
	require.NoError(t, err)

	require.Len(t, calc.Details, 1)
	// Plain magic stays at 2; the ID point doubles to 2.
	assert.Equal(t, 2, calc.Details[0].IDValue)
	assert.Equal(t, 4, calc.Details[0].Total)
}

func TestAmazonTerrainHarmony(t *testing.T) {
	m, r := setupGame(t)
	ids := armyUnitIDs(t, m, "Alice", "alice-home")

	// Highland carries fire and earth, which the Amazon seer's magic adopts.
	calc, err := r.CalculateMagicPoints("Alice", "alice-home", []UnitRollResult{
		{UnitID: ids["amazon_seer"], Results: "2 magic"},
	}, "Highland Temple")
	require.NoError(t, err)

	assert.Equal(t, 1, calc.Points[catalog.ElementFire])
	assert.Equal(t, 1, calc.Points[catalog.ElementEarth])
	assert.Equal(t, 0, calc.Points[catalog.ElementIvory])
}

func TestAmazonIvoryMagicInReserves(t *testing.T) {
	m, r := setupGame(t)
	ids := armyUnitIDs(t, m, "Alice", "alice-home")

	army, err := m.GetArmy("Alice", "alice-home")
	require.NoError(t, err)
	army.Location = catalog.LocationReserves

	calc, err := r.CalculateMagicPoints("Alice", "alice-home", []UnitRollResult{
		{UnitID: ids["amazon_seer"], Results: "3 magic"},
	}, catalog.LocationReserves)
	require.NoError(t, err)

	assert.Equal(t, 3, calc.Points[catalog.ElementIvory])
}

func TestCalculateMagicPointsUnknownUnit(t *testing.T) {
	_, r := setupGame(t)
	_, err := r.CalculateMagicPoints("Alice", "alice-home", []UnitRollResult{
		{UnitID: "ghost", Results: "1 magic"},
	}, "Highland Temple")
	assert.ErrorIs(t, err, state.ErrUnitNotFound)
}

func TestSpellAvailabilityRespectsLocation(t *testing.T) {
	_, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementEarth: 6}

	atTerrain := r.SpellAvailability(points, []string{"Dwarves"}, "Highland Temple")
	for _, s := range atTerrain {
		assert.False(t, s.Reserves, "reserves-only spell %q offered at a terrain", s.Name)
	}

	inReserves := r.SpellAvailability(points, []string{"Dwarves"}, catalog.LocationReserves)
	for _, s := range inReserves {
		assert.True(t, s.Reserves)
	}
}

func TestCastSpellsAllOrNothing(t *testing.T) {
	m, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementFire: 4}

	bobArmy, err := m.GetArmy("Bob", "bob-home")
	require.NoError(t, err)
	before := bobArmy.Points()

	// Firebolt costs 4: the first request is payable, the pair is not.
	result, err := r.CastSpells("Alice", "alice-home", "Highland Temple", []SpellRequest{
		{SpellName: "Firebolt", Element: catalog.ElementFire, Count: 1, TargetPlayer: "Bob", TargetArmy: "bob-home"},
		{SpellName: "Firebolt", Element: catalog.ElementFire, Count: 1, TargetPlayer: "Bob", TargetArmy: "bob-home"},
	}, points)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, before, bobArmy.Points(), "failed batch must not mutate state")
}

func TestCastSpellsRejectsBadEffectTargetBeforeMutating(t *testing.T) {
	m, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementAir: 2, catalog.ElementDeath: 4}

	bobArmy, err := m.GetArmy("Bob", "bob-home")
	require.NoError(t, err)
	before := bobArmy.Points()

	// The Hailstorm is payable and well targeted, but Bob's DUA holds no
	// unit for Soiled Ground to bury. Nothing in the batch may apply.
	result, err := r.CastSpells("Alice", "alice-home", "Highland Temple", []SpellRequest{
		{SpellName: "Hailstorm", Element: catalog.ElementAir, Count: 1, TargetPlayer: "Bob", TargetArmy: "bob-home"},
		{SpellName: "Soiled Ground", Element: catalog.ElementDeath, Count: 1, TargetPlayer: "Bob", TargetUnit: "Coral Elves"},
	}, points)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "DUA")
	assert.Equal(t, before, bobArmy.Points(), "failed batch must not mutate state")

	bob, err := m.GetPlayer("Bob")
	require.NoError(t, err)
	assert.Empty(t, bob.DUA)
	assert.Empty(t, bob.BUA)
}

func TestCastSpellsCountsBatchAgainstDUAPool(t *testing.T) {
	m, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementDeath: 8}

	bobArmy, err := m.GetArmy("Bob", "bob-home")
	require.NoError(t, err)
	require.NoError(t, m.MoveUnitToDUA("Bob", "bob-home", bobArmy.Units[0].InstanceID))

	// Two buries against a single dead unit must fail as a pair.
	result, err := r.CastSpells("Alice", "alice-home", "Highland Temple", []SpellRequest{
		{SpellName: "Soiled Ground", Element: catalog.ElementDeath, Count: 1, TargetPlayer: "Bob", TargetUnit: "Coral Elves"},
		{SpellName: "Soiled Ground", Element: catalog.ElementDeath, Count: 1, TargetPlayer: "Bob", TargetUnit: "Coral Elves"},
	}, points)
	require.NoError(t, err)

	assert.False(t, result.Success)
	bob, err := m.GetPlayer("Bob")
	require.NoError(t, err)
	assert.Len(t, bob.DUA, 1)
	assert.Empty(t, bob.BUA)
}

func TestDamageSpellsConsultFortitudeSaves(t *testing.T) {
	m, r := setupGame(t)
	r.SetFortitude(func(playerName, armyID string, magicDamage int) int {
		if playerName == "Bob" && armyID == "bob-home" {
			return magicDamage
		}
		return 0
	})
	points := map[catalog.Element]int{catalog.ElementFire: 8}

	bobArmy, err := m.GetArmy("Bob", "bob-home")
	require.NoError(t, err)
	before := bobArmy.Points()

	// Claiming more saves than the granted dice is rejected outright.
	result, err := r.CastSpells("Alice", "alice-home", "Highland Temple", []SpellRequest{
		{SpellName: "Firebolt", Element: catalog.ElementFire, Count: 1,
			TargetPlayer: "Bob", TargetArmy: "bob-home", FortitudeSaves: 3},
	}, points)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "granted")
	assert.Equal(t, before, bobArmy.Points())

	// Saves within the grant absorb the damage point for point.
	result, err = r.CastSpells("Alice", "alice-home", "Highland Temple", []SpellRequest{
		{SpellName: "Firebolt", Element: catalog.ElementFire, Count: 1,
			TargetPlayer: "Bob", TargetArmy: "bob-home", FortitudeSaves: 2},
	}, points)
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, before, bobArmy.Points())

	bob, err := m.GetPlayer("Bob")
	require.NoError(t, err)
	assert.Empty(t, bob.DUA)
}

func TestCastSpellsAppliesDamageAndDeductsPoints(t *testing.T) {
	m, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementFire: 5}

	result, err := r.CastSpells("Alice", "alice-home", "Highland Temple", []SpellRequest{
		{SpellName: "Firebolt", Element: catalog.ElementFire, Count: 1, TargetPlayer: "Bob", TargetArmy: "bob-home"},
	}, points)
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, []string{"Firebolt"}, result.Cast)
	assert.Equal(t, 1, result.Remaining[catalog.ElementFire])

	bob, err := m.GetPlayer("Bob")
	require.NoError(t, err)
	// Two points of damage kill the 1-health fighter and wound the guard.
	assert.Len(t, bob.DUA, 1)
}

func TestCastSpellSpeciesRestriction(t *testing.T) {
	_, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementFire: 10}

	// Fearful Flames is Lava Elves only.
	ok, errs := r.ValidateSpellCasting([]SpellRequest{
		{SpellName: "Fearful Flames", Element: catalog.ElementFire, Count: 1, TargetPlayer: "Bob"},
	}, points, []string{"Dwarves"}, "Highland Temple")

	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "restricted to Lava Elves")
}

func TestIvoryCountsTowardAnyElement(t *testing.T) {
	_, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementFire: 2, catalog.ElementIvory: 2}

	ok, errs := r.ValidateSpellCasting([]SpellRequest{
		{SpellName: "Firebolt", Element: catalog.ElementFire, Count: 1, TargetPlayer: "Bob"},
	}, points, []string{"Dwarves"}, "Highland Temple")

	assert.True(t, ok, "errors: %v", errs)
}

func TestModifierEffectLifecycle(t *testing.T) {
	_, r := setupGame(t)
	points := map[catalog.Element]int{catalog.ElementFire: 2}

	result, err := r.CastSpells("Alice", "alice-home", "Highland Temple", []SpellRequest{
		{SpellName: "Ash Storm", Element: catalog.ElementFire, Count: 1, TargetPlayer: "Bob"},
	}, points)
	require.NoError(t, err)
	require.True(t, result.Success)

	require.Len(t, r.ActiveEffects(), 1)
	assert.Equal(t, -1, r.ModifierFor("Bob"))

	// Expiry at the start of another player's turn leaves it in place.
	assert.Empty(t, r.ExpireEffects("Bob"))
	require.Len(t, r.ActiveEffects(), 1)

	expired := r.ExpireEffects("Alice")
	require.Len(t, expired, 1)
	assert.Equal(t, "Ash Storm", expired[0].SpellName)
	assert.Empty(t, r.ActiveEffects())
	assert.Equal(t, 0, r.ModifierFor("Bob"))
}
