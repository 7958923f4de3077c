package state

import (
	"github.com/google/uuid"

	"github.com/dragondice/dragondice-go/internal/catalog"
)

// ArmyType distinguishes the three armies every player fields.
type ArmyType string

const (
	ArmyHome     ArmyType = "home"
	ArmyCampaign ArmyType = "campaign"
	ArmyHorde    ArmyType = "horde"
)

// Unit joins a type-level catalog definition with per-instance mutable state.
// Health never exceeds the definition's MaxHealth; a unit at zero health is
// moved out of its army by the manager.
type Unit struct {
	InstanceID string
	TypeID     string
	Name       string
	Species    string
	MaxHealth  int
	Health     int
}

// NewUnit instantiates a unit of the given catalog type at full health.
func NewUnit(typeID string) (*Unit, error) {
	def, err := catalog.GetUnitDef(typeID)
	if err != nil {
		return nil, err
	}
	return &Unit{
		InstanceID: uuid.NewString(),
		TypeID:     def.TypeID,
		Name:       def.Name,
		Species:    def.Species,
		MaxHealth:  def.MaxHealth,
		Health:     def.MaxHealth,
	}, nil
}

// Def returns the unit's catalog definition.
func (u *Unit) Def() (catalog.UnitDef, error) {
	return catalog.GetUnitDef(u.TypeID)
}

// Army is one player-owned unit container positioned at a location. A unit
// belongs to exactly one container at a time.
type Army struct {
	UniqueID string
	Name     string
	Type     ArmyType
	Owner    string
	Location string
	Units    []*Unit
}

// Points returns the army's point total, the sum of unit max health.
func (a *Army) Points() int {
	total := 0
	for _, u := range a.Units {
		total += u.MaxHealth
	}
	return total
}

// Species returns the distinct species present in the army.
func (a *Army) Species() []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range a.Units {
		if !seen[u.Species] {
			seen[u.Species] = true
			out = append(out, u.Species)
		}
	}
	return out
}

// ContainsSpecies reports whether any unit of the given species is present.
func (a *Army) ContainsSpecies(species string) bool {
	for _, u := range a.Units {
		if u.Species == species {
			return true
		}
	}
	return false
}

// findUnit returns the index of the unit with the given instance id, -1 if
// absent.
func (a *Army) findUnit(unitID string) int {
	for i, u := range a.Units {
		if u.InstanceID == unitID {
			return i
		}
	}
	return -1
}

// Player holds one player's identity and every unit container they own.
// Name is the immutable unique key.
type Player struct {
	Name             string
	HomeTerrain      string
	FrontierProposal string
	ForceSize        int
	SelectedDragons  []string
	Armies           map[ArmyType]*Army
	DUA              []*Unit
	BUA              []*Unit
	Reserves         []*Unit
	SummoningPool    []*Unit
}

// ArmyByID returns the player's army with the given unique id.
func (p *Player) ArmyByID(armyID string) *Army {
	for _, a := range p.Armies {
		if a.UniqueID == armyID {
			return a
		}
	}
	return nil
}

// CountSpeciesInDUA returns how many dead units of the species the player has.
func (p *Player) CountSpeciesInDUA(species string) int {
	count := 0
	for _, u := range p.DUA {
		if u.Species == species {
			count++
		}
	}
	return count
}

// TerrainState is the dynamic state of one terrain in play: which face is
// up and who controls it, if anyone.
type TerrainState struct {
	Name       string
	Face       int // 1-based face index, 8 is the eighth face
	Controller string
}

// AtEighthFace reports whether the terrain die shows its eighth face.
func (t *TerrainState) AtEighthFace() bool {
	return t.Face == 8
}

// ArmySummary is a read-only snapshot of an army for display and queries.
type ArmySummary struct {
	UniqueID  string
	Name      string
	Type      ArmyType
	Owner     string
	Location  string
	Points    int
	UnitCount int
	Units     []UnitSummary
}

// UnitSummary is a read-only snapshot of a unit.
type UnitSummary struct {
	InstanceID string
	TypeID     string
	Name       string
	Species    string
	Health     int
	MaxHealth  int
}

func summarizeArmy(a *Army) ArmySummary {
	s := ArmySummary{
		UniqueID:  a.UniqueID,
		Name:      a.Name,
		Type:      a.Type,
		Owner:     a.Owner,
		Location:  a.Location,
		Points:    a.Points(),
		UnitCount: len(a.Units),
	}
	for _, u := range a.Units {
		s.Units = append(s.Units, UnitSummary{
			InstanceID: u.InstanceID,
			TypeID:     u.TypeID,
			Name:       u.Name,
			Species:    u.Species,
			Health:     u.Health,
			MaxHealth:  u.MaxHealth,
		})
	}
	return s
}
