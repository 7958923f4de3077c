package catalog

import (
	"fmt"
	"sort"
)

// ErrUnknownSpell is wrapped by lookups that receive an unknown spell name.
var ErrUnknownSpell = fmt.Errorf("unknown spell")

// SpellEffectKind tells the spell resolver how to apply a cast spell.
type SpellEffectKind string

const (
	// EffectDamage inflicts Amount points of magic damage on the target army.
	EffectDamage SpellEffectKind = "DAMAGE"
	// EffectModifier registers a lasting roll modifier on the target.
	EffectModifier SpellEffectKind = "MODIFIER"
	// EffectResurrect returns a dead unit from the caster's DUA to the
	// target army.
	EffectResurrect SpellEffectKind = "RESURRECT"
	// EffectBury moves a unit from the target player's DUA to their BUA.
	EffectBury SpellEffectKind = "BURY"
)

// AnySpecies marks a spell castable by every species.
const AnySpecies = "Any"

// Spell is the static definition of a Dragon Dice spell.
type Spell struct {
	Name    string
	Species string  // AnySpecies or a species display name
	Element Element // empty means Elemental: payable with any mix of elements
	Cost    int
	// Reserves: castable only from the Reserve Area when true; never from
	// the Reserve Area when false.
	Reserves bool
	Cantrip  bool
	Kind     SpellEffectKind
	Amount   int
	Effect   string
}

// IsElemental reports whether the spell is payable with any element mix.
func (s Spell) IsElemental() bool { return s.Element == "" }

// AvailableToSpecies reports whether an army containing the given species
// may cast this spell.
func (s Spell) AvailableToSpecies(species []string) bool {
	if s.Species == AnySpecies {
		return true
	}
	for _, sp := range species {
		if sp == s.Species {
			return true
		}
	}
	return false
}

var spellData = map[string]Spell{
	// Air
	"Hailstorm": {
		Name: "Hailstorm", Species: AnySpecies, Element: ElementAir, Cost: 2, Cantrip: true,
		Kind: EffectDamage, Amount: 1,
		Effect: "Target any opposing army. Inflict one point of damage on the target.",
	},
	"Blizzard": {
		Name: "Blizzard", Species: "Coral Elves", Element: ElementAir, Cost: 3,
		Kind: EffectModifier, Amount: -3,
		Effect: "Target any terrain. Subtract three melee results from all army rolls at that terrain until the beginning of your next turn.",
	},
	"Wind Walk": {
		Name: "Wind Walk", Species: AnySpecies, Element: ElementAir, Cost: 4, Reserves: true,
		Kind: EffectModifier, Amount: 4,
		Effect: "Target any army. Add four maneuver results to the target's rolls until the beginning of your next turn.",
	},
	"Fields of Ice": {
		Name: "Fields of Ice", Species: "Frostwings", Element: ElementAir, Cost: 5,
		Kind: EffectModifier, Amount: -4,
		Effect: "Target any terrain. Subtract four maneuver results from all army rolls at that terrain until the beginning of your next turn.",
	},

	// Death
	"Palsy": {
		Name: "Palsy", Species: AnySpecies, Element: ElementDeath, Cost: 2, Cantrip: true,
		Kind: EffectModifier, Amount: -1,
		Effect: "Target any opposing army. Subtract one result from the target's non-maneuver rolls until the beginning of your next turn.",
	},
	"Restless Dead": {
		Name: "Restless Dead", Species: AnySpecies, Element: ElementDeath, Cost: 3, Reserves: true,
		Kind: EffectModifier, Amount: 3,
		Effect: "Target any army. Add three maneuver results to the target's rolls until the beginning of your next turn.",
	},
	"Finger of Death": {
		Name: "Finger of Death", Species: AnySpecies, Element: ElementDeath, Cost: 5,
		Kind: EffectDamage, Amount: 1,
		Effect: "Target any opposing unit. Inflict one point of damage on the target with no save possible.",
	},
	"Open Grave": {
		Name: "Open Grave", Species: "Undead", Element: ElementDeath, Cost: 6, Reserves: true,
		Kind: EffectResurrect, Amount: 1,
		Effect: "Target your DUA. Return one dead unit to the casting army.",
	},
	"Soiled Ground": {
		Name: "Soiled Ground", Species: AnySpecies, Element: ElementDeath, Cost: 4,
		Kind: EffectBury, Amount: 1,
		Effect: "Target any terrain. Units killed at that terrain must be buried until the beginning of your next turn.",
	},

	// Earth
	"Stone Skin": {
		Name: "Stone Skin", Species: AnySpecies, Element: ElementEarth, Cost: 2, Cantrip: true,
		Kind: EffectModifier, Amount: 1,
		Effect: "Target any army. Add one save result to the target's rolls until the beginning of your next turn.",
	},
	"Path": {
		Name: "Path", Species: AnySpecies, Element: ElementEarth, Cost: 4, Reserves: true,
		Kind: EffectModifier, Amount: 0,
		Effect: "Target one of your units at a terrain. Move that unit to any other terrain where you have an army.",
	},
	"Transmute Rock to Mud": {
		Name: "Transmute Rock to Mud", Species: AnySpecies, Element: ElementEarth, Cost: 5,
		Kind: EffectModifier, Amount: -3,
		Effect: "Target any opposing army. Subtract three maneuver results from the target's rolls until the beginning of your next turn.",
	},

	// Fire
	"Ash Storm": {
		Name: "Ash Storm", Species: AnySpecies, Element: ElementFire, Cost: 2, Cantrip: true,
		Kind: EffectModifier, Amount: -1,
		Effect: "Target any terrain. Subtract one result from all army rolls at that terrain until the beginning of your next turn.",
	},
	"Fearful Flames": {
		Name: "Fearful Flames", Species: "Lava Elves", Element: ElementFire, Cost: 3,
		Kind: EffectDamage, Amount: 1,
		Effect: "Target any opposing unit. Inflict one point of damage on the target.",
	},
	"Firebolt": {
		Name: "Firebolt", Species: "Dwarves", Element: ElementFire, Cost: 4,
		Kind: EffectDamage, Amount: 2,
		Effect: "Target any opposing army. Inflict two points of damage on the target.",
	},

	// Water
	"Watery Double": {
		Name: "Watery Double", Species: AnySpecies, Element: ElementWater, Cost: 2, Cantrip: true,
		Kind: EffectModifier, Amount: 1,
		Effect: "Target any army. Add one save result to the target's rolls until the beginning of your next turn.",
	},
	"Flash Flood": {
		Name: "Flash Flood", Species: AnySpecies, Element: ElementWater, Cost: 4,
		Kind: EffectDamage, Amount: 1,
		Effect: "Target any terrain. Each opposing army at that terrain takes one point of damage unless it maneuvers down one face.",
	},
	"Deluge": {
		Name: "Deluge", Species: "Coral Elves", Element: ElementWater, Cost: 5,
		Kind: EffectModifier, Amount: -3,
		Effect: "Target any terrain. Subtract three maneuver and three missile results from all army rolls at that terrain until the beginning of your next turn.",
	},

	// Elemental
	"Resurrect Dead": {
		Name: "Resurrect Dead", Species: AnySpecies, Cost: 6, Reserves: true,
		Kind: EffectResurrect, Amount: 1,
		Effect: "Target your DUA. Return one dead unit to the casting army.",
	},
	"Esfah's Gift": {
		Name: "Esfah's Gift", Species: "Amazons", Cost: 3, Reserves: true,
		Kind: EffectResurrect, Amount: 1,
		Effect: "Target your DUA. Return one dead 1-health unit to the casting army.",
	},
}

// GetSpell looks up a spell by name.
func GetSpell(name string) (Spell, error) {
	s, ok := spellData[name]
	if !ok {
		return Spell{}, fmt.Errorf("%w: %q", ErrUnknownSpell, name)
	}
	return s, nil
}

// AvailableSpells filters the spell list to those castable with the given
// per-element magic points by an army of the given species composition.
// fromReserves selects between reserves-only and terrain-only spells.
// Ivory points count toward any element; elemental spells may pool every
// element together.
func AvailableSpells(points map[Element]int, armySpecies []string, fromReserves bool) []Spell {
	ivory := points[ElementIvory]
	total := 0
	for _, e := range BaseElements {
		total += points[e]
	}
	total += ivory

	var out []Spell
	for _, s := range spellData {
		if s.Reserves != fromReserves {
			continue
		}
		if !s.AvailableToSpecies(armySpecies) {
			continue
		}
		if s.IsElemental() {
			if total < s.Cost {
				continue
			}
		} else if points[s.Element]+ivory < s.Cost {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
