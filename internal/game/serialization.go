package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/dragondice/dragondice-go/internal/game/state"
)

// checksumVersion guards the canonical layout; bump when the representation
// changes so stale hashes never compare equal.
const checksumVersion = 1

// StateChecksum is a deterministic digest of the full game state, used to
// detect divergence between clients sharing a game.
type StateChecksum struct {
	Hash    string
	Version int
}

// ComputeChecksum hashes a canonical representation of the game state.
// Instance IDs are excluded so two games built from the same setup and the
// same moves produce the same hash.
func (o *Orchestrator) ComputeChecksum() StateChecksum {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%d|%s|%s|%s|%s\n",
		o.TurnNumber(),
		o.CurrentPlayerName(),
		o.CurrentPhase(),
		o.CurrentMarchStep(),
		o.CurrentActionStep(),
	)

	names := o.state.PlayerNames()
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	for _, name := range sorted {
		p, err := o.state.GetPlayer(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d\n", p.Name, p.HomeTerrain, p.ForceSize)
		for _, armyType := range []state.ArmyType{state.ArmyHome, state.ArmyCampaign, state.ArmyHorde} {
			army, ok := p.Armies[armyType]
			if !ok {
				continue
			}
			fmt.Fprintf(&buf, "ARMY:%s|%s|%s\n", armyType, army.Name, army.Location)
			writeUnits(&buf, "UNIT", army.Units)
		}
		writeUnits(&buf, "DUA", p.DUA)
		writeUnits(&buf, "BUA", p.BUA)
		writeUnits(&buf, "RESERVE", p.Reserves)
		writeUnits(&buf, "POOL", p.SummoningPool)
	}

	for _, terrain := range o.state.TerrainNames() {
		t, err := o.state.GetTerrainState(terrain)
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, "TERRAIN:%s|%d|%s\n", t.Name, t.Face, t.Controller)
	}

	sum := sha256.Sum256(buf.Bytes())
	return StateChecksum{Hash: hex.EncodeToString(sum[:]), Version: checksumVersion}
}

// writeUnits appends units in a stable order independent of slice order and
// instance IDs.
func writeUnits(buf *bytes.Buffer, label string, units []*state.Unit) {
	lines := make([]string, 0, len(units))
	for _, u := range units {
		lines = append(lines, fmt.Sprintf("%s:%s|%d/%d", label, u.TypeID, u.Health, u.MaxHealth))
	}
	sort.Strings(lines)
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}
