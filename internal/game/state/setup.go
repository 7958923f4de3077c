package state

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dragondice/dragondice-go/internal/catalog"
)

// UnitSetup names one unit instance in a player's starting army.
type UnitSetup struct {
	TypeID string `json:"type_id" mapstructure:"type_id"`
}

// ArmySetup describes one starting army.
type ArmySetup struct {
	Name     string      `json:"name" mapstructure:"name"`
	Location string      `json:"location" mapstructure:"location"`
	Units    []UnitSetup `json:"units" mapstructure:"units"`
	UniqueID string      `json:"unique_id" mapstructure:"unique_id"`
}

// PlayerSetup is one player record of the setup input.
type PlayerSetup struct {
	Name            string               `json:"name" mapstructure:"name"`
	HomeTerrain     string               `json:"home_terrain" mapstructure:"home_terrain"`
	ForceSize       int                  `json:"force_size" mapstructure:"force_size"`
	SelectedDragons []string             `json:"selected_dragons" mapstructure:"selected_dragons"`
	Armies          map[string]ArmySetup `json:"armies" mapstructure:"armies"`
}

// DistanceRoll is one (entity, value) pair from the starting distance rolls.
type DistanceRoll struct {
	Entity string `json:"entity" mapstructure:"entity"`
	Value  int    `json:"value" mapstructure:"value"`
}

// GameSetup is the complete setup input consumed to start a game.
type GameSetup struct {
	Players         []PlayerSetup  `json:"players" mapstructure:"players"`
	FirstPlayerName string         `json:"first_player_name" mapstructure:"first_player_name"`
	FrontierTerrain string         `json:"frontier_terrain" mapstructure:"frontier_terrain"`
	DistanceRolls   []DistanceRoll `json:"distance_rolls" mapstructure:"distance_rolls"`
}

// Validate fails fast on the first missing required field.
func (gs GameSetup) Validate() error {
	if len(gs.Players) == 0 {
		return &MissingFieldError{Context: "game setup", Field: "players"}
	}
	if gs.FirstPlayerName == "" {
		return &MissingFieldError{Context: "game setup", Field: "first_player_name"}
	}
	if gs.FrontierTerrain == "" {
		return &MissingFieldError{Context: "game setup", Field: "frontier_terrain"}
	}
	for _, p := range gs.Players {
		ctx := fmt.Sprintf("player %q", p.Name)
		if p.Name == "" {
			return &MissingFieldError{Context: "player setup", Field: "name"}
		}
		if p.HomeTerrain == "" {
			return &MissingFieldError{Context: ctx, Field: "home_terrain"}
		}
		if p.ForceSize <= 0 {
			return &MissingFieldError{Context: ctx, Field: "force_size"}
		}
		if len(p.Armies) == 0 {
			return &MissingFieldError{Context: ctx, Field: "armies"}
		}
		for key, a := range p.Armies {
			armyCtx := fmt.Sprintf("%s army %q", ctx, key)
			if a.Name == "" {
				return &MissingFieldError{Context: armyCtx, Field: "name"}
			}
			if a.Location == "" {
				return &MissingFieldError{Context: armyCtx, Field: "location"}
			}
		}
	}
	return nil
}

// buildPlayer materializes one player from validated setup data.
func buildPlayer(ps PlayerSetup) (*Player, error) {
	player := &Player{
		Name:            ps.Name,
		HomeTerrain:     ps.HomeTerrain,
		ForceSize:       ps.ForceSize,
		SelectedDragons: append([]string(nil), ps.SelectedDragons...),
		Armies:          make(map[ArmyType]*Army),
	}
	for key, as := range ps.Armies {
		armyType := ArmyType(key)
		switch armyType {
		case ArmyHome, ArmyCampaign, ArmyHorde:
		default:
			return nil, fmt.Errorf("player %q: unknown army type %q", ps.Name, key)
		}
		army := &Army{
			UniqueID: as.UniqueID,
			Name:     as.Name,
			Type:     armyType,
			Owner:    ps.Name,
			Location: as.Location,
		}
		if army.UniqueID == "" {
			army.UniqueID = uuid.NewString()
		}
		for _, us := range as.Units {
			unit, err := NewUnit(us.TypeID)
			if err != nil {
				return nil, fmt.Errorf("player %q army %q: %w", ps.Name, key, err)
			}
			army.Units = append(army.Units, unit)
		}
		player.Armies[armyType] = army
	}
	return player, nil
}

// terrainsInPlay collects the distinct terrains named by the setup: each
// player's home terrain plus the frontier. Special locations are skipped.
func terrainsInPlay(gs GameSetup) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name == "" || catalog.IsSpecialLocation(name) || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, p := range gs.Players {
		add(p.HomeTerrain)
	}
	add(gs.FrontierTerrain)
	return out
}
