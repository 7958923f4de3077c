package server

import (
	"encoding/json"

	"github.com/dragondice/dragondice-go/internal/game/state"
)

// clientMessage is the envelope for every request from a client.
type clientMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// serverMessage is the envelope for responses and pushed events.
type serverMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

func okResponse(requestID string, payload any) serverMessage {
	return serverMessage{Type: "response", RequestID: requestID, OK: true, Payload: payload}
}

func errResponse(requestID string, err error) serverMessage {
	return serverMessage{Type: "response", RequestID: requestID, OK: false, Error: err.Error()}
}

// Request payloads.

type createGamePayload struct {
	Player string          `json:"player"`
	Setup  state.GameSetup `json:"setup"`
}

type joinGamePayload struct {
	Player string `json:"player"`
	GameID string `json:"game_id"`
}

type chooseArmyPayload struct {
	ArmyID string `json:"army_id"`
}

type decisionPayload struct {
	Decision bool `json:"decision"`
}

type maneuverRollPayload struct {
	AttackerValue int `json:"attacker_value"`
	DefenderValue int `json:"defender_value"`
}

type selectActionPayload struct {
	Action string `json:"action"`
}

type dicePayload struct {
	Dice string `json:"dice"`
}

type unitRollPayload struct {
	UnitID  string `json:"unit_id"`
	Results string `json:"results"`
}

type magicRollPayload struct {
	ArmyID   string            `json:"army_id"`
	Location string            `json:"location"`
	Rolls    []unitRollPayload `json:"rolls"`
}

type spellRequestPayload struct {
	SpellName      string `json:"spell_name"`
	Element        string `json:"element,omitempty"`
	Count          int    `json:"count"`
	TargetPlayer   string `json:"target_player,omitempty"`
	TargetArmy     string `json:"target_army,omitempty"`
	TargetUnit     string `json:"target_unit,omitempty"`
	FortitudeSaves int    `json:"fortitude_saves,omitempty"`
}

type castSpellsPayload struct {
	Requests []spellRequestPayload `json:"requests"`
}

type mutatePayload struct {
	Targets []mutateTargetPayload `json:"targets"`
}

type mutateTargetPayload struct {
	Opponent string `json:"opponent"`
	UnitName string `json:"unit_name"`
}

type feralizationPayload struct {
	ArmyID    string   `json:"army_id"`
	UnitIDs   []string `json:"unit_ids"`
	IDResults int      `json:"id_results"`
}

// Response payloads.

type gameStatePayload struct {
	GameID        string                         `json:"game_id"`
	TurnNumber    int                            `json:"turn_number"`
	CurrentPlayer string                         `json:"current_player"`
	Phase         string                         `json:"phase"`
	MarchStep     string                         `json:"march_step,omitempty"`
	ActionStep    string                         `json:"action_step,omitempty"`
	Display       string                         `json:"display"`
	Checksum      string                         `json:"checksum"`
	Players       map[string][]state.ArmySummary `json:"players"`
}

type eventPayload struct {
	GameID    string            `json:"game_id"`
	Event     string            `json:"event"`
	Player    string            `json:"player,omitempty"`
	Target    string            `json:"target,omitempty"`
	Location  string            `json:"location,omitempty"`
	Amount    int               `json:"amount,omitempty"`
	Data      string            `json:"data,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp int64             `json:"timestamp"`
}
