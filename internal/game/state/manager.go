package state

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/catalog"
)

// Manager is the single source of truth for mutable game state. All
// resolvers and the orchestrator read and write exclusively through it.
type Manager struct {
	logger *zap.Logger

	players     map[string]*Player
	playerOrder []string
	terrains    map[string]*TerrainState

	firstPlayer     string
	frontierTerrain string
	distanceRolls   []DistanceRoll

	// activeArmies maps player name to the army id chosen for the
	// current march. Persists across the maneuver and action steps.
	activeArmies map[string]string
}

// NewManager validates the setup input and materializes initial game state.
func NewManager(setup GameSetup, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		logger:          logger,
		players:         make(map[string]*Player),
		terrains:        make(map[string]*TerrainState),
		firstPlayer:     setup.FirstPlayerName,
		frontierTerrain: setup.FrontierTerrain,
		distanceRolls:   append([]DistanceRoll(nil), setup.DistanceRolls...),
		activeArmies:    make(map[string]string),
	}

	for _, ps := range setup.Players {
		if _, dup := m.players[ps.Name]; dup {
			return nil, fmt.Errorf("duplicate player name %q", ps.Name)
		}
		player, err := buildPlayer(ps)
		if err != nil {
			return nil, err
		}
		m.players[ps.Name] = player
		m.playerOrder = append(m.playerOrder, ps.Name)
	}

	if _, ok := m.players[setup.FirstPlayerName]; !ok {
		return nil, fmt.Errorf("%w: first player %q", ErrPlayerNotFound, setup.FirstPlayerName)
	}

	startFaces := map[string]int{}
	for _, roll := range setup.DistanceRolls {
		startFaces[roll.Entity] = roll.Value
	}
	for _, name := range terrainsInPlay(setup) {
		if _, err := catalog.GetTerrain(name); err != nil {
			return nil, err
		}
		face := startFaces[name]
		if face < 1 || face > 8 {
			face = 1
		}
		m.terrains[name] = &TerrainState{Name: name, Face: face}
	}

	m.logger.Info("game state initialized",
		zap.Int("players", len(m.playerOrder)),
		zap.Int("terrains", len(m.terrains)),
		zap.String("first_player", m.firstPlayer))
	return m, nil
}

// PlayerNames returns player names in setup order.
func (m *Manager) PlayerNames() []string {
	names := make([]string, len(m.playerOrder))
	copy(names, m.playerOrder)
	return names
}

// FirstPlayerName returns the player who takes the first turn.
func (m *Manager) FirstPlayerName() string { return m.firstPlayer }

// FrontierTerrain returns the frontier terrain chosen at setup.
func (m *Manager) FrontierTerrain() string { return m.frontierTerrain }

// GetPlayer returns the named player.
func (m *Manager) GetPlayer(name string) (*Player, error) {
	p, ok := m.players[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	return p, nil
}

// GetArmy returns the army with the given unique id owned by the player.
func (m *Manager) GetArmy(playerName, armyID string) (*Army, error) {
	p, err := m.GetPlayer(playerName)
	if err != nil {
		return nil, err
	}
	if a := p.ArmyByID(armyID); a != nil {
		return a, nil
	}
	return nil, fmt.Errorf("%w: player %q army %q", ErrArmyNotFound, playerName, armyID)
}

// SetActiveArmy records the army acting for the player's current march.
func (m *Manager) SetActiveArmy(playerName, armyID string) error {
	if _, err := m.GetArmy(playerName, armyID); err != nil {
		return err
	}
	m.activeArmies[playerName] = armyID
	m.logger.Debug("active army set",
		zap.String("player", playerName), zap.String("army", armyID))
	return nil
}

// ClearActiveArmy forgets the player's acting army at the end of a march.
func (m *Manager) ClearActiveArmy(playerName string) {
	delete(m.activeArmies, playerName)
}

// GetActiveArmy returns the player's acting army.
func (m *Manager) GetActiveArmy(playerName string) (*Army, error) {
	armyID, ok := m.activeArmies[playerName]
	if !ok {
		return nil, fmt.Errorf("%w: player %q", ErrNoActiveArmy, playerName)
	}
	return m.GetArmy(playerName, armyID)
}

// GetActiveArmyUnits returns the units of the player's acting army.
func (m *Manager) GetActiveArmyUnits(playerName string) ([]*Unit, error) {
	army, err := m.GetActiveArmy(playerName)
	if err != nil {
		return nil, err
	}
	units := make([]*Unit, len(army.Units))
	copy(units, army.Units)
	return units, nil
}

// PromotionResult reports the health change of a promoted unit.
type PromotionResult struct {
	UnitID    string
	OldHealth int
	NewHealth int
	NewTypeID string
}

// PromoteUnit raises the unit to the next tier of its species and class if
// the catalog has one. Already at the top tier is a no-op success.
func (m *Manager) PromoteUnit(playerName, armyID, unitID string) (PromotionResult, error) {
	army, err := m.GetArmy(playerName, armyID)
	if err != nil {
		return PromotionResult{}, err
	}
	idx := army.findUnit(unitID)
	if idx < 0 {
		return PromotionResult{}, fmt.Errorf("%w: %q in army %q", ErrUnitNotFound, unitID, armyID)
	}
	unit := army.Units[idx]

	def, err := unit.Def()
	if err != nil {
		return PromotionResult{}, err
	}
	result := PromotionResult{UnitID: unitID, OldHealth: unit.Health, NewHealth: unit.Health, NewTypeID: unit.TypeID}

	next, ok := catalog.PromotionTarget(def)
	if !ok {
		return result, nil
	}

	unit.TypeID = next.TypeID
	unit.Name = next.Name
	unit.MaxHealth = next.MaxHealth
	unit.Health = next.MaxHealth
	result.NewHealth = unit.Health
	result.NewTypeID = unit.TypeID

	m.logger.Info("unit promoted",
		zap.String("player", playerName),
		zap.String("unit", unitID),
		zap.String("to", next.TypeID))
	return result, nil
}

// removeUnitFromArmy detaches the unit from its army, keeping order.
func removeUnitFromArmy(army *Army, idx int) *Unit {
	unit := army.Units[idx]
	army.Units = append(army.Units[:idx], army.Units[idx+1:]...)
	return unit
}

// MoveUnitToDUA transfers a unit from an army to its owner's DUA.
func (m *Manager) MoveUnitToDUA(playerName, armyID, unitID string) error {
	army, err := m.GetArmy(playerName, armyID)
	if err != nil {
		return err
	}
	idx := army.findUnit(unitID)
	if idx < 0 {
		return fmt.Errorf("%w: %q in army %q", ErrUnitNotFound, unitID, armyID)
	}
	unit := removeUnitFromArmy(army, idx)
	p := m.players[playerName]
	p.DUA = append(p.DUA, unit)
	m.logger.Debug("unit moved to DUA",
		zap.String("player", playerName), zap.String("unit", unitID))
	return nil
}

// MoveUnitToReserves transfers a unit from an army to its owner's Reserve
// Area at full health.
func (m *Manager) MoveUnitToReserves(playerName, armyID, unitID string) error {
	army, err := m.GetArmy(playerName, armyID)
	if err != nil {
		return err
	}
	idx := army.findUnit(unitID)
	if idx < 0 {
		return fmt.Errorf("%w: %q in army %q", ErrUnitNotFound, unitID, armyID)
	}
	unit := removeUnitFromArmy(army, idx)
	p := m.players[playerName]
	p.Reserves = append(p.Reserves, unit)
	return nil
}

// MoveReserveUnitToDUA pulls a unit out of the player's Reserve Area into
// their DUA, matched by display name.
func (m *Manager) MoveReserveUnitToDUA(playerName, unitName string) error {
	p, err := m.GetPlayer(playerName)
	if err != nil {
		return err
	}
	for i, u := range p.Reserves {
		if u.Name == unitName {
			unit := u
			p.Reserves = append(p.Reserves[:i], p.Reserves[i+1:]...)
			unit.Health = 0
			p.DUA = append(p.DUA, unit)
			m.logger.Debug("reserve unit moved to DUA",
				zap.String("player", playerName), zap.String("unit", unitName))
			return nil
		}
	}
	return fmt.Errorf("%w: %q in reserves of %q", ErrUnitNotFound, unitName, playerName)
}

// BuryUnitFromDUA moves a dead unit of the given species from the player's
// DUA to their BUA, removing it from play.
func (m *Manager) BuryUnitFromDUA(playerName, species string) error {
	p, err := m.GetPlayer(playerName)
	if err != nil {
		return err
	}
	for i, u := range p.DUA {
		if u.Species == species {
			unit := u
			p.DUA = append(p.DUA[:i], p.DUA[i+1:]...)
			p.BUA = append(p.BUA, unit)
			m.logger.Debug("unit buried",
				zap.String("player", playerName), zap.String("unit", unit.InstanceID))
			return nil
		}
	}
	return fmt.Errorf("%w: species %q in DUA of %q", ErrUnitNotFound, species, playerName)
}

// ResurrectUnitFromDUA returns a dead unit from the player's DUA to the
// given army at full health, matched by display name. maxHealth of 0 means
// any unit; a positive value restricts eligibility by unit size.
func (m *Manager) ResurrectUnitFromDUA(playerName, armyID, unitName string, maxHealth int) error {
	p, err := m.GetPlayer(playerName)
	if err != nil {
		return err
	}
	army, err := m.GetArmy(playerName, armyID)
	if err != nil {
		return err
	}
	for i, u := range p.DUA {
		if u.Name != unitName {
			continue
		}
		if maxHealth > 0 && u.MaxHealth > maxHealth {
			continue
		}
		unit := u
		p.DUA = append(p.DUA[:i], p.DUA[i+1:]...)
		unit.Health = unit.MaxHealth
		army.Units = append(army.Units, unit)
		m.logger.Info("unit resurrected",
			zap.String("player", playerName), zap.String("unit", unitName))
		return nil
	}
	return fmt.Errorf("%w: %q in DUA of %q", ErrUnitNotFound, unitName, playerName)
}

// DamageResult reports the effect of applying damage to an army.
type DamageResult struct {
	Requested int
	Applied   int
	Killed    []UnitSummary
}

// ApplyDamage inflicts damage points on the army, lowest-health units
// absorbing first. Units reduced to zero health move to their owner's DUA.
// Damage beyond the army's total health is discarded.
func (m *Manager) ApplyDamage(playerName, armyID string, damage int) (DamageResult, error) {
	army, err := m.GetArmy(playerName, armyID)
	if err != nil {
		return DamageResult{}, err
	}
	result := DamageResult{Requested: damage}
	p := m.players[playerName]

	for damage > 0 && len(army.Units) > 0 {
		idx := 0
		for i, u := range army.Units {
			if u.Health < army.Units[idx].Health {
				idx = i
			}
		}
		unit := army.Units[idx]
		hit := damage
		if hit > unit.Health {
			hit = unit.Health
		}
		unit.Health -= hit
		damage -= hit
		result.Applied += hit
		if unit.Health <= 0 {
			removeUnitFromArmy(army, idx)
			p.DUA = append(p.DUA, unit)
			result.Killed = append(result.Killed, UnitSummary{
				InstanceID: unit.InstanceID,
				TypeID:     unit.TypeID,
				Name:       unit.Name,
				Species:    unit.Species,
				Health:     0,
				MaxHealth:  unit.MaxHealth,
			})
		}
	}

	m.logger.Info("damage applied",
		zap.String("player", playerName),
		zap.String("army", armyID),
		zap.Int("requested", result.Requested),
		zap.Int("applied", result.Applied),
		zap.Int("killed", len(result.Killed)))
	return result, nil
}

// GetTerrainState returns the dynamic state of a terrain in play.
func (m *Manager) GetTerrainState(location string) (*TerrainState, error) {
	base := catalog.BaseTerrainName(location)
	if t, ok := m.terrains[location]; ok {
		return t, nil
	}
	if t, ok := m.terrains[base]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTerrainNotFound, location)
}

// TerrainNames returns the terrains in play, sorted by name.
func (m *Manager) TerrainNames() []string {
	names := make([]string, 0, len(m.terrains))
	for name := range m.terrains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TerrainController returns the player controlling the terrain, empty when
// uncontrolled.
func (m *Manager) TerrainController(location string) (string, error) {
	t, err := m.GetTerrainState(location)
	if err != nil {
		return "", err
	}
	return t.Controller, nil
}

// SetTerrainFace turns the terrain die to the given face (1-8). Leaving
// the eighth face clears the controller.
func (m *Manager) SetTerrainFace(location string, face int) error {
	if face < 1 || face > 8 {
		return fmt.Errorf("terrain face out of range: %d", face)
	}
	t, err := m.GetTerrainState(location)
	if err != nil {
		return err
	}
	t.Face = face
	if face != 8 {
		t.Controller = ""
	}
	return nil
}

// SetTerrainController records eighth-face control of the terrain.
func (m *Manager) SetTerrainController(location, playerName string) error {
	t, err := m.GetTerrainState(location)
	if err != nil {
		return err
	}
	if playerName != "" {
		if _, err := m.GetPlayer(playerName); err != nil {
			return err
		}
	}
	t.Controller = playerName
	m.logger.Info("terrain control changed",
		zap.String("terrain", t.Name), zap.String("controller", playerName))
	return nil
}

// ControlsEighthFace reports whether the player controls the terrain at its
// eighth face.
func (m *Manager) ControlsEighthFace(playerName, location string) bool {
	t, err := m.GetTerrainState(location)
	if err != nil {
		return false
	}
	return t.AtEighthFace() && t.Controller == playerName
}

// TotalGamePoints sums every player's force size.
func (m *Manager) TotalGamePoints() int {
	total := 0
	for _, p := range m.players {
		total += p.ForceSize
	}
	return total
}

// ArmySummaries returns read-only snapshots of the player's armies, ordered
// home, campaign, horde.
func (m *Manager) ArmySummaries(playerName string) ([]ArmySummary, error) {
	p, err := m.GetPlayer(playerName)
	if err != nil {
		return nil, err
	}
	var out []ArmySummary
	for _, t := range []ArmyType{ArmyHome, ArmyCampaign, ArmyHorde} {
		if a, ok := p.Armies[t]; ok {
			out = append(out, summarizeArmy(a))
		}
	}
	return out, nil
}

// AvailableActingArmies returns the player's armies positioned at terrains,
// the only armies that may act during a march.
func (m *Manager) AvailableActingArmies(playerName string) ([]ArmySummary, error) {
	summaries, err := m.ArmySummaries(playerName)
	if err != nil {
		return nil, err
	}
	var out []ArmySummary
	for _, s := range summaries {
		if s.UnitCount == 0 || catalog.IsSpecialLocation(s.Location) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// AllPlayersSummary returns army snapshots for every player in seating
// order, keyed by player name.
func (m *Manager) AllPlayersSummary() map[string][]ArmySummary {
	out := make(map[string][]ArmySummary, len(m.playerOrder))
	for _, name := range m.playerOrder {
		summaries, _ := m.ArmySummaries(name)
		out[name] = summaries
	}
	return out
}

// ArmiesAtLocation returns every army positioned at the location across all
// players, in seating order.
func (m *Manager) ArmiesAtLocation(location string) []*Army {
	base := catalog.BaseTerrainName(location)
	var out []*Army
	for _, name := range m.playerOrder {
		for _, t := range []ArmyType{ArmyHome, ArmyCampaign, ArmyHorde} {
			a, ok := m.players[name].Armies[t]
			if !ok {
				continue
			}
			if a.Location == location || catalog.BaseTerrainName(a.Location) == base {
				out = append(out, a)
			}
		}
	}
	return out
}

// OpponentsWithReserves returns opposing players whose Reserve Area is
// non-empty, in seating order.
func (m *Manager) OpponentsWithReserves(playerName string) []string {
	var out []string
	for _, name := range m.playerOrder {
		if name == playerName {
			continue
		}
		if len(m.players[name].Reserves) > 0 {
			out = append(out, name)
		}
	}
	return out
}
