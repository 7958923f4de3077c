package catalog

// Element represents one of the five Dragon Dice elements plus the two
// special colors used by Amazons (Ivory) and Dragonkin (White).
type Element string

const (
	ElementAir   Element = "AIR"
	ElementDeath Element = "DEATH"
	ElementEarth Element = "EARTH"
	ElementFire  Element = "FIRE"
	ElementWater Element = "WATER"

	// ElementIvory is generated by Amazons while in the Reserve Area.
	ElementIvory Element = "IVORY"
	// ElementWhite renders the all-five-elements combination of Dragonkin.
	ElementWhite Element = "WHITE"
)

// BaseElements lists the five castable elements in display order.
var BaseElements = []Element{ElementAir, ElementDeath, ElementEarth, ElementFire, ElementWater}

// elementInfo carries display metadata for an element.
type elementInfo struct {
	Icon  string
	Color string
}

var elementData = map[Element]elementInfo{
	ElementAir:   {Icon: "🟦", Color: "blue"},
	ElementDeath: {Icon: "⬛", Color: "black"},
	ElementEarth: {Icon: "🟨", Color: "yellow"},
	ElementFire:  {Icon: "🟥", Color: "red"},
	ElementWater: {Icon: "🟩", Color: "green"},
	ElementIvory: {Icon: "🟫", Color: "ivory"},
	ElementWhite: {Icon: "⬜", Color: "white"},
}

// ElementIcon returns the display icon for an element, or "?" for an
// unknown element.
func ElementIcon(e Element) string {
	if info, ok := elementData[e]; ok {
		return info.Icon
	}
	return "?"
}

// ElementColor returns the color name associated with an element.
func ElementColor(e Element) string {
	if info, ok := elementData[e]; ok {
		return info.Color
	}
	return "unknown"
}

// IsBaseElement reports whether e is one of the five castable elements.
func IsBaseElement(e Element) bool {
	switch e {
	case ElementAir, ElementDeath, ElementEarth, ElementFire, ElementWater:
		return true
	}
	return false
}
