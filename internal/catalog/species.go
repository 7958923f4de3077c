package catalog

import "fmt"

// ErrUnknownSpecies is wrapped by lookups that receive a species name not
// present in the catalog.
var ErrUnknownSpecies = fmt.Errorf("unknown species")

// SpeciesAbility names a species-specific rule together with its rulebook
// description. The engine dispatches on Name; Description is display data.
type SpeciesAbility struct {
	Name        string
	Description string
}

// Species is the static definition of a Dragon Dice species.
type Species struct {
	Name        string
	DisplayName string
	Elements    []Element
	Abilities   []SpeciesAbility
}

// HasElement reports whether the species carries the given element.
func (s Species) HasElement(e Element) bool {
	for _, have := range s.Elements {
		if have == e {
			return true
		}
	}
	return false
}

// HasAbility reports whether the species has an ability with the given name.
func (s Species) HasAbility(name string) bool {
	for _, a := range s.Abilities {
		if a.Name == name {
			return true
		}
	}
	return false
}

// speciesData is keyed by display name, which is how player setup data and
// unit definitions refer to species.
var speciesData = map[string]Species{
	"Amazons": {
		Name:        "Amazon",
		DisplayName: "Amazons",
		Elements:    []Element{ElementIvory},
		Abilities: []SpeciesAbility{
			{Name: "Javelin Charge", Description: "Count maneuver results as if they were missile results during a march."},
			{Name: "Kukri Charge", Description: "Count maneuver results as if they were melee results during a march."},
			{Name: "Terrain Harmony", Description: "Amazon units generate magic matching the elements of the terrain they occupy."},
		},
	},
	"Coral Elves": {
		Name:        "Coral Elf",
		DisplayName: "Coral Elves",
		Elements:    []Element{ElementAir, ElementWater},
		Abilities: []SpeciesAbility{
			{Name: "Coastal Dodge", Description: "Count maneuver results as if they were save results at terrains containing water."},
			{Name: "Defensive Volley", Description: "May counter-attack against missile actions at terrains containing air."},
		},
	},
	"Dwarves": {
		Name:        "Dwarf",
		DisplayName: "Dwarves",
		Elements:    []Element{ElementFire, ElementEarth},
		Abilities: []SpeciesAbility{
			{Name: "Mountain Mastery", Description: "Count melee results as if they were maneuver results at terrains containing earth."},
			{Name: "Dwarven Might", Description: "Count save results as if they were melee results when counter-attacking at terrains containing fire."},
		},
	},
	"Feral": {
		Name:        "Feral",
		DisplayName: "Feral",
		Elements:    []Element{ElementAir, ElementEarth},
		Abilities: []SpeciesAbility{
			{Name: "Feralization", Description: "During the Species Abilities Phase, promote one Feral unit per ID result rolled at a terrain containing earth or air."},
			{Name: "Stampede", Description: "Count maneuver results as if they were melee results when counter-attacking at terrains containing both earth and air."},
		},
	},
	"Firewalkers": {
		Name:        "Firewalker",
		DisplayName: "Firewalkers",
		Elements:    []Element{ElementAir, ElementFire},
		Abilities: []SpeciesAbility{
			{Name: "Air Flight", Description: "During the Retreat Step, Firewalker units may move to any terrain containing air occupied by another Firewalker unit."},
			{Name: "Flaming Shields", Description: "Count save results as if they were melee results at terrains containing fire, except when counter-attacking."},
		},
	},
	"Frostwings": {
		Name:        "Frostwing",
		DisplayName: "Frostwings",
		Elements:    []Element{ElementDeath, ElementAir},
		Abilities: []SpeciesAbility{
			{Name: "Winter's Fortitude", Description: "Armies containing a Frostwing unit roll one extra save per point of incoming magic damage."},
			{Name: "Magic Negation", Description: "Dead Frostwings may negate opposing magic results targeting an army at their terrain."},
		},
	},
	"Goblins": {
		Name:        "Goblin",
		DisplayName: "Goblins",
		Elements:    []Element{ElementDeath, ElementEarth},
		Abilities: []SpeciesAbility{
			{Name: "Swamp Mastery", Description: "Count melee results as if they were maneuver results at terrains containing earth."},
			{Name: "Foul Stench", Description: "Opposing units equal to the number of dead Goblins may not counter-attack in melee."},
		},
	},
	"Lava Elves": {
		Name:        "Lava Elf",
		DisplayName: "Lava Elves",
		Elements:    []Element{ElementDeath, ElementFire},
		Abilities: []SpeciesAbility{
			{Name: "Volcanic Adaptation", Description: "Count maneuver results as if they were save results at terrains containing fire."},
			{Name: "Cursed Bullets", Description: "Missile damage from Lava Elves may only be reduced by save results generated by spells."},
		},
	},
	"Scalders": {
		Name:        "Scalder",
		DisplayName: "Scalders",
		Elements:    []Element{ElementWater, ElementFire},
		Abilities: []SpeciesAbility{
			{Name: "Scorching Touch", Description: "Units that inflict melee damage on Scalders at a terrain containing fire take one point of damage per save they rolled."},
			{Name: "Intangibility", Description: "Count maneuver results as if they were save results against missile damage at terrains containing water."},
		},
	},
	"Swamp Stalkers": {
		Name:        "Swamp Stalker",
		DisplayName: "Swamp Stalkers",
		Elements:    []Element{ElementDeath, ElementWater},
		Abilities: []SpeciesAbility{
			{Name: "Born of the Swamp", Description: "Count maneuver results as if they were save results at terrains containing water."},
			{Name: "Mutate", Description: "During the Species Abilities Phase, bury a dead Swamp Stalker to pull opposing units from their Reserve Area into their DUA."},
		},
	},
	"Treefolk": {
		Name:        "Treefolk",
		DisplayName: "Treefolk",
		Elements:    []Element{ElementWater, ElementEarth},
		Abilities: []SpeciesAbility{
			{Name: "Rapid Growth", Description: "During the Species Abilities Phase, Treefolk units may be promoted at terrains containing water."},
			{Name: "Replanting", Description: "When a Treefolk unit is killed, it may be moved to the Reserve Area instead of the DUA."},
		},
	},
	"Undead": {
		Name:        "Undead",
		DisplayName: "Undead",
		Elements:    []Element{ElementDeath},
		Abilities: []SpeciesAbility{
			{Name: "Stepped Damage", Description: "Undead units reduce in health from damage rather than dying outright."},
			{Name: "Bone Magic", Description: "Each dead Undead adds one magic result to Undead magic rolls."},
		},
	},
	"Dragonkin": {
		Name:        "Dragonkin",
		DisplayName: "Dragonkin",
		// Dragonkin carry all five elements, rendered as white.
		Elements: []Element{ElementAir, ElementDeath, ElementEarth, ElementFire, ElementWater},
	},
}

// GetSpecies looks up a species by display name.
func GetSpecies(name string) (Species, error) {
	sp, ok := speciesData[name]
	if !ok {
		return Species{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	return sp, nil
}

// SpeciesElements returns the elements of the named species.
func SpeciesElements(name string) ([]Element, error) {
	sp, err := GetSpecies(name)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, len(sp.Elements))
	copy(elems, sp.Elements)
	return elems, nil
}

// AllSpeciesNames returns the display names of every species in the catalog.
func AllSpeciesNames() []string {
	names := make([]string, 0, len(speciesData))
	for name := range speciesData {
		names = append(names, name)
	}
	return names
}
