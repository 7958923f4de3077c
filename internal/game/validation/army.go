// Package validation enforces army composition rules. All functions are
// pure: they read the content catalog and their arguments, nothing else.
package validation

import (
	"fmt"

	"github.com/dragondice/dragondice-go/internal/catalog"
)

// ArmyComposition is one army's proposed contents for validation.
type ArmyComposition struct {
	Name      string   // display name used in error messages, e.g. "Home"
	Type      string   // home, campaign or horde
	UnitTypes []string // catalog unit type ids
}

// Points sums the max health of the army's units. Unknown unit types count
// as zero.
func (a ArmyComposition) Points() int {
	total := 0
	for _, typeID := range a.UnitTypes {
		if def, err := catalog.GetUnitDef(typeID); err == nil {
			total += def.MaxHealth
		}
	}
	return total
}

// magicPoints sums the points of units whose catalog class is Magic.
func (a ArmyComposition) magicPoints() int {
	total := 0
	for _, typeID := range a.UnitTypes {
		if def, err := catalog.GetUnitDef(typeID); err == nil && def.Class == catalog.ClassMagic {
			total += def.MaxHealth
		}
	}
	return total
}

// Result carries the outcome of a composition check. All rule violations
// are collected rather than stopping at the first.
type Result struct {
	IsValid     bool
	Errors      []string
	ArmyPoints  map[string]int
	MagicPoints int
	TotalPoints int
}

// ValidateArmyComposition checks the full composition rules in fixed order:
// every army fields at least one unit, no army exceeds half the force size,
// magic units combined stay within half the force size, and the grand total
// equals the force size exactly. The horde army is skipped entirely in
// single-player games.
func ValidateArmyComposition(armies []ArmyComposition, forceSize, numPlayers int) Result {
	result := Result{
		IsValid:    true,
		ArmyPoints: make(map[string]int),
	}
	maxArmy := forceSize / 2

	var checked []ArmyComposition
	for _, army := range armies {
		if army.Type == "horde" && numPlayers <= 1 {
			continue
		}
		checked = append(checked, army)
	}

	for _, army := range checked {
		if len(army.UnitTypes) == 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s Army must have at least 1 unit", army.Name))
		}
	}

	for _, army := range checked {
		pts := army.Points()
		result.ArmyPoints[army.Name] = pts
		result.TotalPoints += pts
		result.MagicPoints += army.magicPoints()
		if pts > maxArmy {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s Army (%d pts) exceeds maximum %d pts (50%% of %d pts)",
					army.Name, pts, maxArmy, forceSize))
		}
	}

	if result.MagicPoints > maxArmy {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Magic units (%d pts) exceed maximum %d pts (50%% of %d pts)",
				result.MagicPoints, maxArmy, forceSize))
	}

	if result.TotalPoints != forceSize {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Total army points (%d pts) must equal selected force size (%d pts)",
				result.TotalPoints, forceSize))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateSingleArmy checks the unit-count and point-cap rules for one army
// in isolation, for incremental feedback while a force is being assembled.
func ValidateSingleArmy(army ArmyComposition, maxPoints int) (bool, []string) {
	var errs []string
	if len(army.UnitTypes) == 0 {
		errs = append(errs, fmt.Sprintf("%s Army must have at least 1 unit", army.Name))
	}
	if pts := army.Points(); pts > maxPoints {
		errs = append(errs,
			fmt.Sprintf("%s Army (%d pts) exceeds maximum %d pts (50%% of %d pts)",
				army.Name, pts, maxPoints, maxPoints*2))
	}
	return len(errs) == 0, errs
}
