package catalog

import "fmt"

// ErrUnknownUnit is wrapped by lookups that receive an unknown unit type ID.
var ErrUnknownUnit = fmt.Errorf("unknown unit type")

// UnitClass categorizes a unit die. The Magic class is load-bearing for army
// validation: magic-unit points are capped at half the force size.
type UnitClass string

const (
	ClassHeavyMelee UnitClass = "Heavy Melee"
	ClassLightMelee UnitClass = "Light Melee"
	ClassCavalry    UnitClass = "Cavalry"
	ClassMissile    UnitClass = "Missile"
	ClassMagic      UnitClass = "Magic"
	ClassMonster    UnitClass = "Monster"
)

// DieFaces holds the face layout of a unit die: six standard faces plus the
// two faces only reachable on ten-sided monster dice.
type DieFaces struct {
	Standard [6]FaceType
	Eighth   [2]FaceType
}

// FaceType names what a die face produces when rolled.
type FaceType string

const (
	FaceMelee    FaceType = "Melee"
	FaceMissile  FaceType = "Missile"
	FaceMagic    FaceType = "Magic"
	FaceSave     FaceType = "Save"
	FaceManeuver FaceType = "Maneuver"
	FaceID       FaceType = "ID"
	FaceSAI      FaceType = "SAI"
)

// UnitDef is the immutable type-level definition of a unit.
type UnitDef struct {
	TypeID    string
	Name      string
	Species   string
	Class     UnitClass
	MaxHealth int
	Faces     DieFaces
}

func unitDef(typeID, name, species string, class UnitClass, health int, faces ...FaceType) UnitDef {
	d := UnitDef{TypeID: typeID, Name: name, Species: species, Class: class, MaxHealth: health}
	for i := 0; i < 6 && i < len(faces); i++ {
		d.Faces.Standard[i] = faces[i]
	}
	for i := 0; i+6 < len(faces) && i < 2; i++ {
		d.Faces.Eighth[i] = faces[i+6]
	}
	return d
}

// unitData is the engine's unit roster. Four-tier ladders per species give
// the promotion rules something to climb; tier N+1 of the same species and
// class is the promotion target of tier N.
var unitData = map[string]UnitDef{
	// Amazons
	"amazon_soldier": unitDef("amazon_soldier", "Soldier", "Amazons", ClassHeavyMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceManeuver, FaceMelee, FaceSave, FaceMelee),
	"amazon_warrior": unitDef("amazon_warrior", "Warrior", "Amazons", ClassHeavyMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceSave, FaceManeuver, FaceMelee, FaceMelee),
	"amazon_elite": unitDef("amazon_elite", "Harbinger", "Amazons", ClassHeavyMelee, 3,
		FaceID, FaceMelee, FaceMelee, FaceMelee, FaceSave, FaceSAI, FaceMelee, FaceSave),
	"amazon_champion": unitDef("amazon_champion", "War Chief", "Amazons", ClassHeavyMelee, 4,
		FaceID, FaceMelee, FaceMelee, FaceMelee, FaceSave, FaceSAI, FaceSAI, FaceMelee),
	"amazon_archer": unitDef("amazon_archer", "Javelineer", "Amazons", ClassMissile, 1,
		FaceID, FaceMissile, FaceMissile, FaceSave, FaceManeuver, FaceMissile, FaceMissile, FaceSave),
	"amazon_seer": unitDef("amazon_seer", "Seer", "Amazons", ClassMagic, 1,
		FaceID, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceMagic, FaceSave),
	"amazon_oracle": unitDef("amazon_oracle", "Oracle", "Amazons", ClassMagic, 2,
		FaceID, FaceMagic, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceSave),

	// Coral Elves
	"coralelf_fighter": unitDef("coralelf_fighter", "Fighter", "Coral Elves", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceManeuver, FaceManeuver, FaceMelee, FaceSave),
	"coralelf_guard": unitDef("coralelf_guard", "Tidal Guard", "Coral Elves", ClassLightMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceSave, FaceManeuver, FaceMelee, FaceSave),
	"coralelf_knight": unitDef("coralelf_knight", "Wave Knight", "Coral Elves", ClassLightMelee, 3,
		FaceID, FaceMelee, FaceMelee, FaceMelee, FaceSave, FaceSAI, FaceMelee, FaceSave),
	"coralelf_bowman": unitDef("coralelf_bowman", "Bowman", "Coral Elves", ClassMissile, 1,
		FaceID, FaceMissile, FaceMissile, FaceSave, FaceManeuver, FaceMissile, FaceMissile, FaceSave),
	"coralelf_evoker": unitDef("coralelf_evoker", "Evoker", "Coral Elves", ClassMagic, 1,
		FaceID, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceMagic, FaceSave),

	// Dwarves
	"dwarf_thug": unitDef("dwarf_thug", "Thug", "Dwarves", ClassHeavyMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceSave, FaceManeuver, FaceMelee, FaceSave),
	"dwarf_sergeant": unitDef("dwarf_sergeant", "Sergeant", "Dwarves", ClassHeavyMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceSave, FaceSAI, FaceMelee, FaceSave),
	"dwarf_crossbowman": unitDef("dwarf_crossbowman", "Crossbowman", "Dwarves", ClassMissile, 1,
		FaceID, FaceMissile, FaceMissile, FaceSave, FaceSave, FaceManeuver, FaceMissile, FaceSave),
	"dwarf_theurgist": unitDef("dwarf_theurgist", "Theurgist", "Dwarves", ClassMagic, 1,
		FaceID, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceMagic, FaceSave),

	// Feral
	"feral_cub": unitDef("feral_cub", "Wolf Cub", "Feral", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceManeuver, FaceManeuver, FaceSave, FaceMelee, FaceSave),
	"feral_hunter": unitDef("feral_hunter", "Pack Hunter", "Feral", ClassLightMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceManeuver, FaceSave, FaceSAI, FaceMelee, FaceSave),
	"feral_alpha": unitDef("feral_alpha", "Pack Alpha", "Feral", ClassLightMelee, 3,
		FaceID, FaceMelee, FaceMelee, FaceMelee, FaceManeuver, FaceSAI, FaceMelee, FaceSave),
	"feral_shaman": unitDef("feral_shaman", "Wind Shaman", "Feral", ClassMagic, 1,
		FaceID, FaceMagic, FaceMagic, FaceManeuver, FaceSave, FaceMagic, FaceMagic, FaceSave),

	// Firewalkers
	"firewalker_scout": unitDef("firewalker_scout", "Ash Scout", "Firewalkers", ClassCavalry, 1,
		FaceID, FaceManeuver, FaceManeuver, FaceMelee, FaceSave, FaceMissile, FaceManeuver, FaceSave),
	"firewalker_lancer": unitDef("firewalker_lancer", "Flame Lancer", "Firewalkers", ClassCavalry, 2,
		FaceID, FaceManeuver, FaceMelee, FaceMelee, FaceSave, FaceSAI, FaceManeuver, FaceSave),

	// Frostwings
	"frostwing_hatchling": unitDef("frostwing_hatchling", "Hatchling", "Frostwings", ClassMagic, 1,
		FaceID, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceMagic, FaceSave),
	"frostwing_adept": unitDef("frostwing_adept", "Frost Adept", "Frostwings", ClassMagic, 2,
		FaceID, FaceMagic, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceSave),
	"frostwing_raider": unitDef("frostwing_raider", "Wing Raider", "Frostwings", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceManeuver, FaceSave, FaceMelee, FaceSave),

	// Goblins
	"goblin_cutthroat": unitDef("goblin_cutthroat", "Cutthroat", "Goblins", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceManeuver, FaceSave, FaceMelee, FaceMelee, FaceSave),
	"goblin_marauder": unitDef("goblin_marauder", "Marauder", "Goblins", ClassLightMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceManeuver, FaceSave, FaceSAI, FaceMelee, FaceSave),
	"goblin_pelter": unitDef("goblin_pelter", "Pelter", "Goblins", ClassMissile, 1,
		FaceID, FaceMissile, FaceMissile, FaceManeuver, FaceSave, FaceMissile, FaceMissile, FaceSave),

	// Lava Elves
	"lavaelf_blade": unitDef("lavaelf_blade", "Obsidian Blade", "Lava Elves", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceManeuver, FaceMelee, FaceMelee, FaceSave),
	"lavaelf_sniper": unitDef("lavaelf_sniper", "Cinder Sniper", "Lava Elves", ClassMissile, 2,
		FaceID, FaceMissile, FaceMissile, FaceMissile, FaceSave, FaceSAI, FaceMissile, FaceSave),

	// Scalders
	"scalder_stinger": unitDef("scalder_stinger", "Stinger", "Scalders", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceManeuver, FaceSave, FaceMelee, FaceSave),
	"scalder_searer": unitDef("scalder_searer", "Searer", "Scalders", ClassMagic, 2,
		FaceID, FaceMagic, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceSave),

	// Swamp Stalkers
	"swampstalker_hatcher": unitDef("swampstalker_hatcher", "Bog Hatcher", "Swamp Stalkers", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceManeuver, FaceSave, FaceMelee, FaceMelee, FaceSave),
	"swampstalker_lurker": unitDef("swampstalker_lurker", "Mire Lurker", "Swamp Stalkers", ClassLightMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceSave, FaceSAI, FaceMelee, FaceSave),
	"swampstalker_horror": unitDef("swampstalker_horror", "Fen Horror", "Swamp Stalkers", ClassLightMelee, 3,
		FaceID, FaceMelee, FaceMelee, FaceMelee, FaceSave, FaceSAI, FaceMelee, FaceSave),

	// Treefolk
	"treefolk_sapling": unitDef("treefolk_sapling", "Sapling", "Treefolk", ClassHeavyMelee, 1,
		FaceID, FaceMelee, FaceSave, FaceSave, FaceManeuver, FaceMelee, FaceMelee, FaceSave),
	"treefolk_warden": unitDef("treefolk_warden", "Grove Warden", "Treefolk", ClassHeavyMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceSave, FaceSAI, FaceMelee, FaceSave),

	// Undead
	"undead_skeleton": unitDef("undead_skeleton", "Skeleton", "Undead", ClassLightMelee, 1,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceManeuver, FaceMelee, FaceMelee, FaceSave),
	"undead_revenant": unitDef("undead_revenant", "Revenant", "Undead", ClassLightMelee, 2,
		FaceID, FaceMelee, FaceMelee, FaceSave, FaceSave, FaceSAI, FaceMelee, FaceSave),
	"undead_necromancer": unitDef("undead_necromancer", "Necromancer", "Undead", ClassMagic, 2,
		FaceID, FaceMagic, FaceMagic, FaceMagic, FaceSave, FaceManeuver, FaceMagic, FaceSave),
}

// GetUnitDef looks up a unit definition by its type ID.
func GetUnitDef(typeID string) (UnitDef, error) {
	d, ok := unitData[typeID]
	if !ok {
		return UnitDef{}, fmt.Errorf("%w: %q", ErrUnknownUnit, typeID)
	}
	return d, nil
}

// UnitsBySpecies returns every unit definition for the named species.
func UnitsBySpecies(species string) []UnitDef {
	var defs []UnitDef
	for _, d := range unitData {
		if d.Species == species {
			defs = append(defs, d)
		}
	}
	return defs
}

// PromotionTarget finds the definition one health tier above def within the
// same species and class. The second return value is false when def is
// already at the top of its ladder.
func PromotionTarget(def UnitDef) (UnitDef, bool) {
	for _, d := range unitData {
		if d.Species == def.Species && d.Class == def.Class && d.MaxHealth == def.MaxHealth+1 {
			return d, true
		}
	}
	return UnitDef{}, false
}

// AllFaces returns the unit's eight faces in order: the six standard faces
// followed by the two eighth faces.
func (d UnitDef) AllFaces() []FaceType {
	faces := make([]FaceType, 0, 8)
	faces = append(faces, d.Faces.Standard[:]...)
	faces = append(faces, d.Faces.Eighth[:]...)
	return faces
}
