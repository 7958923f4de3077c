package catalog

import (
	"fmt"
	"strings"
)

// ErrUnknownTerrain is wrapped by lookups that receive a terrain name not in
// the catalog.
var ErrUnknownTerrain = fmt.Errorf("unknown terrain")

// TerrainAction names the action a terrain face permits while the terrain
// die shows it.
type TerrainAction string

const (
	TerrainMagic   TerrainAction = "Magic"
	TerrainMissile TerrainAction = "Missile"
	TerrainMelee   TerrainAction = "Melee"
	TerrainEighth  TerrainAction = "Eighth"
)

// TerrainFace is one of a terrain die's eight faces.
type TerrainFace struct {
	Action      TerrainAction
	Name        string
	Description string
}

// Terrain is the static definition of a major terrain die.
type Terrain struct {
	Name       string
	Elements   []Element
	EighthFace string
	Faces      [8]TerrainFace
}

// HasElement reports whether the terrain carries the given element.
func (t Terrain) HasElement(e Element) bool {
	for _, have := range t.Elements {
		if have == e {
			return true
		}
	}
	return false
}

func terrainFaces(eighthName, eighthDesc string, actions ...TerrainAction) [8]TerrainFace {
	var faces [8]TerrainFace
	for i := 0; i < 7 && i < len(actions); i++ {
		faces[i] = TerrainFace{
			Action: actions[i],
			Name:   fmt.Sprintf("%s Terrain", actions[i]),
		}
	}
	faces[7] = TerrainFace{Action: TerrainEighth, Name: eighthName, Description: eighthDesc}
	return faces
}

const (
	cityDesc   = "During the Eighth Face Phase you may recruit a 1-health unit or promote one unit in the controlling army."
	towerDesc  = "The controlling army may use a missile action to attack any opposing army, including armies in the Reserve Area."
	templeDesc = "The controlling army and units in it cannot be affected by opposing death magic; during the Eighth Face Phase you may force one opposing player to bury a dead unit."
	stonesDesc = "Units in the controlling army may convert their magic results to an element this terrain contains."
)

var terrainData = map[string]Terrain{
	"Coastland City": {
		Name:       "Coastland City",
		Elements:   []Element{ElementAir, ElementWater},
		EighthFace: "City",
		Faces: terrainFaces("City", cityDesc,
			TerrainMagic, TerrainMissile, TerrainMissile, TerrainMissile, TerrainMissile, TerrainMelee, TerrainMelee),
	},
	"Coastland Tower": {
		Name:       "Coastland Tower",
		Elements:   []Element{ElementAir, ElementWater},
		EighthFace: "Tower",
		Faces: terrainFaces("Tower", towerDesc,
			TerrainMagic, TerrainMagic, TerrainMissile, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Flatland City": {
		Name:       "Flatland City",
		Elements:   []Element{ElementAir, ElementEarth},
		EighthFace: "City",
		Faces: terrainFaces("City", cityDesc,
			TerrainMagic, TerrainMissile, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Flatland Standing Stones": {
		Name:       "Flatland Standing Stones",
		Elements:   []Element{ElementAir, ElementEarth},
		EighthFace: "Standing Stones",
		Faces: terrainFaces("Standing Stones", stonesDesc,
			TerrainMagic, TerrainMagic, TerrainMagic, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Highland Temple": {
		Name:       "Highland Temple",
		Elements:   []Element{ElementFire, ElementEarth},
		EighthFace: "Temple",
		Faces: terrainFaces("Temple", templeDesc,
			TerrainMagic, TerrainMagic, TerrainMagic, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Highland Tower": {
		Name:       "Highland Tower",
		Elements:   []Element{ElementFire, ElementEarth},
		EighthFace: "Tower",
		Faces: terrainFaces("Tower", towerDesc,
			TerrainMagic, TerrainMagic, TerrainMissile, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Frozen Wastes Tower": {
		Name:       "Frozen Wastes Tower",
		Elements:   []Element{ElementAir, ElementDeath},
		EighthFace: "Tower",
		Faces: terrainFaces("Tower", towerDesc,
			TerrainMagic, TerrainMagic, TerrainMissile, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Badlands Standing Stones": {
		Name:       "Badlands Standing Stones",
		Elements:   []Element{ElementDeath, ElementEarth},
		EighthFace: "Standing Stones",
		Faces: terrainFaces("Standing Stones", stonesDesc,
			TerrainMagic, TerrainMagic, TerrainMagic, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Swampland Temple": {
		Name:       "Swampland Temple",
		Elements:   []Element{ElementDeath, ElementWater},
		EighthFace: "Temple",
		Faces: terrainFaces("Temple", templeDesc,
			TerrainMagic, TerrainMagic, TerrainMagic, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Swampland City": {
		Name:       "Swampland City",
		Elements:   []Element{ElementDeath, ElementWater},
		EighthFace: "City",
		Faces: terrainFaces("City", cityDesc,
			TerrainMagic, TerrainMissile, TerrainMissile, TerrainMissile, TerrainMelee, TerrainMelee, TerrainMelee),
	},
	"Deadland Vortex": {
		Name:       "Deadland Vortex",
		Elements:   []Element{ElementDeath},
		EighthFace: "Vortex",
		Faces: terrainFaces("Vortex", "During the Eighth Face Phase you may reroll one unit in the controlling army, ignoring the previous result.",
			TerrainMagic, TerrainMagic, TerrainMagic, TerrainMelee, TerrainMelee, TerrainMelee, TerrainMelee),
	},
}

// GetTerrain looks up a terrain by name. Location strings that carry a
// parenthesized suffix, e.g. "Highland Temple (Alice)", resolve to their
// base terrain.
func GetTerrain(name string) (Terrain, error) {
	if t, ok := terrainData[name]; ok {
		return t, nil
	}
	base := BaseTerrainName(name)
	if t, ok := terrainData[base]; ok {
		return t, nil
	}
	return Terrain{}, fmt.Errorf("%w: %q", ErrUnknownTerrain, name)
}

// TerrainElements returns the elements of the named terrain. Special
// locations (Reserve Area, DUA, BUA, Summoning Pool) have no elements.
func TerrainElements(name string) ([]Element, error) {
	if IsSpecialLocation(name) {
		return nil, nil
	}
	t, err := GetTerrain(name)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, len(t.Elements))
	copy(elems, t.Elements)
	return elems, nil
}

// BaseTerrainName strips a parenthesized ownership suffix from a location.
func BaseTerrainName(location string) string {
	if idx := strings.Index(location, "("); idx > 0 {
		return strings.TrimSpace(location[:idx])
	}
	return strings.TrimSpace(location)
}

// Special locations units can occupy besides terrains.
const (
	LocationReserves      = "Reserve Area"
	LocationDUA           = "DUA"
	LocationBUA           = "BUA"
	LocationSummoningPool = "Summoning Pool"
)

// IsSpecialLocation reports whether the location is not a terrain.
func IsSpecialLocation(location string) bool {
	switch location {
	case LocationReserves, LocationDUA, LocationBUA, LocationSummoningPool:
		return true
	}
	// Accept the shorthand the UI historically used for reserves.
	return strings.EqualFold(location, "reserves")
}

// AllTerrainNames returns the names of every terrain in the catalog.
func AllTerrainNames() []string {
	names := make([]string, 0, len(terrainData))
	for name := range terrainData {
		names = append(names, name)
	}
	return names
}
