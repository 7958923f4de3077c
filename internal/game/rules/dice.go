package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dragondice/dragondice-go/internal/catalog"
)

// ResultType classifies a parsed die result.
type ResultType string

const (
	ResultMelee    ResultType = "MELEE"
	ResultMissile  ResultType = "MISSILE"
	ResultMagic    ResultType = "MAGIC"
	ResultSave     ResultType = "SAVE"
	ResultManeuver ResultType = "MANEUVER"
	ResultID       ResultType = "ID"
	ResultSAI      ResultType = "SAI"
)

// SAIName identifies a Special Action Icon result.
type SAIName string

const (
	SAIBullseye SAIName = "BULLSEYE"
	SAISmite    SAIName = "SMITE"
	SAICounter  SAIName = "COUNTER"
)

// DieResult is one aggregated line of a submitted roll.
type DieResult struct {
	Type  ResultType
	Count int
	SAI   SAIName // set only when Type is ResultSAI
}

var resultAliases = map[string]ResultType{
	"melee":    ResultMelee,
	"m":        ResultMelee,
	"missile":  ResultMissile,
	"mi":       ResultMissile,
	"magic":    ResultMagic,
	"mg":       ResultMagic,
	"save":     ResultSave,
	"s":        ResultSave,
	"maneuver": ResultManeuver,
	"mv":       ResultManeuver,
	"id":       ResultID,
}

var saiNames = map[string]SAIName{
	"bullseye": SAIBullseye,
	"smite":    SAISmite,
	"counter":  SAICounter,
}

// ParseDiceString parses a comma-separated roll such as
// "3 melee, 1 sai:bullseye, 2 id" into aggregated die results. Whitespace
// and case are forgiven; an empty string yields an empty roll.
func ParseDiceString(s string) ([]DieResult, error) {
	var out []DieResult
	merged := map[string]int{}
	order := []string{}

	for _, raw := range strings.Split(s, ",") {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		count := 1
		name := part
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[0]); err == nil {
				count = n
				name = strings.Join(fields[1:], " ")
			}
		}
		if count < 0 {
			return nil, fmt.Errorf("negative die count in %q", part)
		}
		name = strings.ToLower(strings.TrimSpace(name))

		key := ""
		if strings.HasPrefix(name, "sai:") || strings.HasPrefix(name, "sai ") {
			saiPart := strings.TrimSpace(name[4:])
			if _, ok := saiNames[saiPart]; !ok {
				return nil, fmt.Errorf("unknown special action icon: %q", saiPart)
			}
			key = "sai:" + saiPart
		} else if _, ok := resultAliases[name]; ok {
			key = name
		} else {
			return nil, fmt.Errorf("unknown die result: %q", part)
		}

		if _, seen := merged[key]; !seen {
			order = append(order, key)
		}
		merged[key] += count
	}

	for _, key := range order {
		count := merged[key]
		if strings.HasPrefix(key, "sai:") {
			out = append(out, DieResult{Type: ResultSAI, Count: count, SAI: saiNames[key[4:]]})
			continue
		}
		out = append(out, DieResult{Type: resultAliases[key], Count: count})
	}
	return out, nil
}

// TotalResults sums the counts of the given result type across a roll.
func TotalResults(roll []DieResult, t ResultType) int {
	total := 0
	for _, r := range roll {
		if r.Type == t {
			total += r.Count
		}
	}
	return total
}

// TotalSAI sums the counts of a specific special action icon across a roll.
func TotalSAI(roll []DieResult, name SAIName) int {
	total := 0
	for _, r := range roll {
		if r.Type == ResultSAI && r.SAI == name {
			total += r.Count
		}
	}
	return total
}

// FaceCount is one line of a die-face breakdown for an army.
type FaceCount struct {
	Face  catalog.FaceType
	Count int
}

// facePriority orders face breakdown output.
var facePriority = map[catalog.FaceType]int{
	catalog.FaceMelee:    0,
	catalog.FaceMissile:  1,
	catalog.FaceMagic:    2,
	catalog.FaceSave:     3,
	catalog.FaceManeuver: 4,
	catalog.FaceSAI:      5,
}

// CountDieFaces tallies the non-ID faces across the given unit types,
// sorted melee, missile, magic, save, maneuver, then SAI. Unknown unit
// types are skipped.
func CountDieFaces(unitTypes []string) []FaceCount {
	tally := map[catalog.FaceType]int{}
	for _, typeID := range unitTypes {
		def, err := catalog.GetUnitDef(typeID)
		if err != nil {
			continue
		}
		for _, face := range def.AllFaces() {
			if face == catalog.FaceID {
				continue
			}
			tally[face]++
		}
	}

	out := make([]FaceCount, 0, len(tally))
	for face, count := range tally {
		out = append(out, FaceCount{Face: face, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return facePriority[out[i].Face] < facePriority[out[j].Face]
	})
	return out
}
