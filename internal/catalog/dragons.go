package catalog

import "fmt"

// ErrUnknownDragon is wrapped by lookups that receive an unknown dragon type.
var ErrUnknownDragon = fmt.Errorf("unknown dragon")

// DragonForm distinguishes the two physical dragon die forms.
type DragonForm string

const (
	FormDrake DragonForm = "Drake"
	FormWyrm  DragonForm = "Wyrm"
)

// Dragon is the static definition of a dragon die. Every dragon has five
// health and is worth no army points; hybrid dragons carry two elements.
type Dragon struct {
	Name     string
	Elements []Element
	Form     DragonForm
	Health   int
}

var dragonData = map[string]Dragon{
	"Air Dragon":   {Name: "Air Dragon", Elements: []Element{ElementAir}, Form: FormDrake, Health: 5},
	"Death Dragon": {Name: "Death Dragon", Elements: []Element{ElementDeath}, Form: FormDrake, Health: 5},
	"Earth Dragon": {Name: "Earth Dragon", Elements: []Element{ElementEarth}, Form: FormDrake, Health: 5},
	"Fire Dragon":  {Name: "Fire Dragon", Elements: []Element{ElementFire}, Form: FormDrake, Health: 5},
	"Water Dragon": {Name: "Water Dragon", Elements: []Element{ElementWater}, Form: FormDrake, Health: 5},
	"Ivory Dragon": {Name: "Ivory Dragon", Elements: []Element{ElementIvory}, Form: FormDrake, Health: 5},
	"White Dragon": {Name: "White Dragon", Elements: []Element{ElementWhite}, Form: FormWyrm, Health: 10},
}

// GetDragon looks up a dragon definition by name.
func GetDragon(name string) (Dragon, error) {
	d, ok := dragonData[name]
	if !ok {
		return Dragon{}, fmt.Errorf("%w: %q", ErrUnknownDragon, name)
	}
	return d, nil
}

// PointsPerDragon is the force-size interval that entitles (and obliges)
// a player to bring one dragon.
const PointsPerDragon = 24

// RequiredDragons returns how many dragons a force of the given size must
// bring: one per 24 points or part thereof.
func RequiredDragons(forceSize int) int {
	if forceSize <= 0 {
		return 0
	}
	return (forceSize + PointsPerDragon - 1) / PointsPerDragon
}
