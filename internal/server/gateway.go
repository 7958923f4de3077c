// Package server exposes the game engine over a WebSocket gateway. Clients
// exchange JSON envelopes; engine events are pushed to every session
// attached to the game.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dragondice/dragondice-go/internal/catalog"
	"github.com/dragondice/dragondice-go/internal/config"
	"github.com/dragondice/dragondice-go/internal/game"
	"github.com/dragondice/dragondice-go/internal/game/abilities"
	"github.com/dragondice/dragondice-go/internal/game/magic"
	"github.com/dragondice/dragondice-go/internal/game/rules"
)

var errNoGame = errors.New("session is not attached to a game")

// gameRoom couples one orchestrator with the mutex serializing access to it.
// The engine itself is single-threaded; the room lock is the concurrency
// boundary between connections.
type gameRoom struct {
	id     string
	orch   *game.Orchestrator
	replay *game.Replay
	mu     sync.Mutex
}

// Gateway owns the HTTP listener, the sessions and the active games.
type Gateway struct {
	cfg      config.ServerConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
	sessions *sessionManager
	httpSrv  *http.Server

	mu    sync.RWMutex
	games map[string]*gameRoom
}

// NewGateway constructs the WebSocket gateway.
func NewGateway(cfg config.ServerConfig, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: newSessionManager(cfg.MaxSessions),
		games:    make(map[string]*gameRoom),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.WebSocket.Path, g.handleWebSocket)
	g.httpSrv = &http.Server{Addr: cfg.WebSocket.Address, Handler: mux}
	return g
}

// Run serves until the listener closes. It returns nil after a clean
// Shutdown.
func (g *Gateway) Run() error {
	g.logger.Info("websocket gateway listening",
		zap.String("address", g.cfg.WebSocket.Address),
		zap.String("path", g.cfg.WebSocket.Path))
	err := g.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener and closes every session.
func (g *Gateway) Shutdown(ctx context.Context) error {
	err := g.httpSrv.Shutdown(ctx)
	g.sessions.mu.Lock()
	for _, s := range g.sessions.sessions {
		s.close()
	}
	g.sessions.sessions = make(map[string]*Session)
	g.sessions.mu.Unlock()
	return err
}

// SessionCount reports the number of connected clients.
func (g *Gateway) SessionCount() int { return g.sessions.count() }

func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	sess := newSession(conn, g.cfg.WriteTimeout)
	if !g.sessions.add(sess) {
		_ = sess.send(errResponse("", fmt.Errorf("server is full")))
		sess.close()
		return
	}
	g.logger.Info("client connected",
		zap.String("session_id", sess.ID),
		zap.String("remote", r.RemoteAddr))

	defer func() {
		g.sessions.remove(sess.ID)
		sess.close()
		g.logger.Info("client disconnected", zap.String("session_id", sess.ID))
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Warn("read failed", zap.String("session_id", sess.ID), zap.Error(err))
			}
			return
		}
		resp := g.dispatch(sess, msg)
		if err := sess.send(resp); err != nil {
			g.logger.Warn("write failed", zap.String("session_id", sess.ID), zap.Error(err))
			return
		}
	}
}

func (g *Gateway) dispatch(sess *Session, msg clientMessage) serverMessage {
	handler, ok := handlers[msg.Type]
	if !ok {
		return errResponse(msg.RequestID, fmt.Errorf("unknown message type %q", msg.Type))
	}
	payload, err := handler(g, sess, msg.Payload)
	if err != nil {
		return errResponse(msg.RequestID, err)
	}
	return okResponse(msg.RequestID, payload)
}

type handlerFunc func(g *Gateway, sess *Session, raw json.RawMessage) (any, error)

var handlers = map[string]handlerFunc{
	"create_game":           (*Gateway).handleCreateGame,
	"join_game":             (*Gateway).handleJoinGame,
	"get_state":             (*Gateway).handleGetState,
	"get_log":               (*Gateway).handleGetLog,
	"get_acting_armies":     (*Gateway).handleGetActingArmies,
	"advance_phase":         (*Gateway).handleAdvancePhase,
	"choose_acting_army":    (*Gateway).handleChooseActingArmy,
	"decide_maneuver":       (*Gateway).handleDecideManeuver,
	"submit_maneuver_roll":  (*Gateway).handleManeuverRoll,
	"decide_action":         (*Gateway).handleDecideAction,
	"select_action":         (*Gateway).handleSelectAction,
	"submit_melee_roll":     (*Gateway).handleMeleeRoll,
	"submit_missile_roll":   (*Gateway).handleMissileRoll,
	"submit_save_roll":      (*Gateway).handleSaveRoll,
	"submit_counter_roll":   (*Gateway).handleCounterRoll,
	"submit_magic_roll":     (*Gateway).handleMagicRoll,
	"cast_spells":           (*Gateway).handleCastSpells,
	"activate_mutate":       (*Gateway).handleMutate,
	"activate_feralization": (*Gateway).handleFeralization,
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}

// room returns the game the session is attached to.
func (g *Gateway) room(sess *Session) (*gameRoom, error) {
	if sess.GameID == "" {
		return nil, errNoGame
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.games[sess.GameID]
	if !ok {
		return nil, fmt.Errorf("game %q no longer exists", sess.GameID)
	}
	return room, nil
}

// withRoom runs fn under the room lock and answers with the refreshed game
// state on success.
func (g *Gateway) withRoom(sess *Session, fn func(*gameRoom) error) (any, error) {
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if err := fn(room); err != nil {
		return nil, err
	}
	return snapshotState(room), nil
}

func snapshotState(room *gameRoom) gameStatePayload {
	o := room.orch
	p := gameStatePayload{
		GameID:        room.id,
		TurnNumber:    o.TurnNumber(),
		CurrentPlayer: o.CurrentPlayerName(),
		Phase:         o.CurrentPhase().String(),
		Display:       o.PhaseDisplay(),
		Players:       o.GetAllPlayersData(),
	}
	if step := o.CurrentMarchStep(); step != rules.MarchStepNone {
		p.MarchStep = step.String()
	}
	if step := o.CurrentActionStep(); step != rules.ActionStepNone {
		p.ActionStep = step.String()
	}
	p.Checksum = o.ComputeChecksum().Hash
	return p
}

func (g *Gateway) handleCreateGame(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[createGamePayload](raw)
	if err != nil {
		return nil, err
	}
	orch, err := game.NewOrchestrator(req.Setup, g.logger)
	if err != nil {
		return nil, err
	}
	gameID := uuid.NewString()
	room := &gameRoom{id: gameID, orch: orch, replay: game.NewReplay(gameID)}
	room.replay.Attach(orch.Events())
	orch.Events().Subscribe(func(evt rules.Event) {
		g.broadcastEvent(room.id, evt)
	})

	g.mu.Lock()
	g.games[room.id] = room
	g.mu.Unlock()

	sess.GameID = room.id
	sess.Player = req.Player
	g.logger.Info("game created",
		zap.String("game_id", room.id),
		zap.String("session_id", sess.ID),
		zap.Int("players", len(req.Setup.Players)))

	room.mu.Lock()
	defer room.mu.Unlock()
	return snapshotState(room), nil
}

func (g *Gateway) handleJoinGame(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[joinGamePayload](raw)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	room, ok := g.games[req.GameID]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("game %q not found", req.GameID)
	}
	sess.GameID = room.id
	sess.Player = req.Player
	g.logger.Info("client joined game",
		zap.String("game_id", room.id),
		zap.String("session_id", sess.ID),
		zap.String("player", req.Player))

	room.mu.Lock()
	defer room.mu.Unlock()
	return snapshotState(room), nil
}

func (g *Gateway) handleGetState(sess *Session, _ json.RawMessage) (any, error) {
	return g.withRoom(sess, func(*gameRoom) error { return nil })
}

func (g *Gateway) handleGetLog(sess *Session, _ json.RawMessage) (any, error) {
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	events := room.replay.Snapshot()
	payload := make([]eventPayload, len(events))
	for i, evt := range events {
		payload[i] = eventPayload{
			GameID:    room.id,
			Event:     string(evt.Type),
			Player:    evt.Player,
			Target:    evt.Target,
			Location:  evt.Location,
			Amount:    evt.Amount,
			Data:      evt.Data,
			Metadata:  evt.Metadata,
			Timestamp: evt.Timestamp.UnixMilli(),
		}
	}
	return payload, nil
}

func (g *Gateway) handleGetActingArmies(sess *Session, _ json.RawMessage) (any, error) {
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.orch.GetAvailableActingArmies()
}

func (g *Gateway) handleAdvancePhase(sess *Session, _ json.RawMessage) (any, error) {
	return g.withRoom(sess, func(r *gameRoom) error { return r.orch.AdvancePhase() })
}

func (g *Gateway) handleChooseActingArmy(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[chooseArmyPayload](raw)
	if err != nil {
		return nil, err
	}
	return g.withRoom(sess, func(r *gameRoom) error { return r.orch.ChooseActingArmy(req.ArmyID) })
}

func (g *Gateway) handleDecideManeuver(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[decisionPayload](raw)
	if err != nil {
		return nil, err
	}
	return g.withRoom(sess, func(r *gameRoom) error { return r.orch.DecideManeuver(req.Decision) })
}

func (g *Gateway) handleManeuverRoll(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[maneuverRollPayload](raw)
	if err != nil {
		return nil, err
	}
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.orch.SubmitManeuverRollResults(req.AttackerValue, req.DefenderValue)
}

func (g *Gateway) handleDecideAction(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[decisionPayload](raw)
	if err != nil {
		return nil, err
	}
	return g.withRoom(sess, func(r *gameRoom) error { return r.orch.DecideAction(req.Decision) })
}

func (g *Gateway) handleSelectAction(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[selectActionPayload](raw)
	if err != nil {
		return nil, err
	}
	return g.withRoom(sess, func(r *gameRoom) error { return r.orch.SelectAction(req.Action) })
}

func (g *Gateway) handleMeleeRoll(sess *Session, raw json.RawMessage) (any, error) {
	return g.submitDice(sess, raw, func(r *gameRoom, dice string) (any, error) {
		return r.orch.SubmitAttackerMeleeResults(dice)
	})
}

func (g *Gateway) handleMissileRoll(sess *Session, raw json.RawMessage) (any, error) {
	return g.submitDice(sess, raw, func(r *gameRoom, dice string) (any, error) {
		return r.orch.SubmitAttackerMissileResults(dice)
	})
}

func (g *Gateway) handleSaveRoll(sess *Session, raw json.RawMessage) (any, error) {
	return g.submitDice(sess, raw, func(r *gameRoom, dice string) (any, error) {
		return r.orch.SubmitDefenderSaveResults(dice)
	})
}

func (g *Gateway) handleCounterRoll(sess *Session, raw json.RawMessage) (any, error) {
	return g.submitDice(sess, raw, func(r *gameRoom, dice string) (any, error) {
		return r.orch.SubmitMeleeCounterAttackResults(dice)
	})
}

func (g *Gateway) submitDice(sess *Session, raw json.RawMessage, fn func(*gameRoom, string) (any, error)) (any, error) {
	req, err := decode[dicePayload](raw)
	if err != nil {
		return nil, err
	}
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return fn(room, req.Dice)
}

func (g *Gateway) handleMagicRoll(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[magicRollPayload](raw)
	if err != nil {
		return nil, err
	}
	rolls := make([]magic.UnitRollResult, len(req.Rolls))
	for i, r := range req.Rolls {
		rolls[i] = magic.UnitRollResult{UnitID: r.UnitID, Results: r.Results}
	}
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.orch.SubmitMagicRollResults(req.ArmyID, rolls, req.Location)
}

func (g *Gateway) handleCastSpells(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[castSpellsPayload](raw)
	if err != nil {
		return nil, err
	}
	requests := make([]magic.SpellRequest, len(req.Requests))
	for i, r := range req.Requests {
		requests[i] = magic.SpellRequest{
			SpellName:      r.SpellName,
			Element:        catalog.Element(r.Element),
			Count:          r.Count,
			TargetPlayer:   r.TargetPlayer,
			TargetArmy:     r.TargetArmy,
			TargetUnit:     r.TargetUnit,
			FortitudeSaves: r.FortitudeSaves,
		}
	}
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.orch.CastSpells(requests)
}

func (g *Gateway) handleMutate(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[mutatePayload](raw)
	if err != nil {
		return nil, err
	}
	targets := make([]abilities.MutateTarget, len(req.Targets))
	for i, t := range req.Targets {
		targets[i] = abilities.MutateTarget{Opponent: t.Opponent, UnitName: t.UnitName}
	}
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.orch.ActivateMutate(targets)
}

func (g *Gateway) handleFeralization(sess *Session, raw json.RawMessage) (any, error) {
	req, err := decode[feralizationPayload](raw)
	if err != nil {
		return nil, err
	}
	room, err := g.room(sess)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.orch.ActivateFeralization(req.ArmyID, req.UnitIDs, req.IDResults)
}

// broadcastEvent pushes an engine event to every session in the game.
func (g *Gateway) broadcastEvent(gameID string, evt rules.Event) {
	payload := eventPayload{
		GameID:    gameID,
		Event:     string(evt.Type),
		Player:    evt.Player,
		Target:    evt.Target,
		Location:  evt.Location,
		Amount:    evt.Amount,
		Data:      evt.Data,
		Metadata:  evt.Metadata,
		Timestamp: evt.Timestamp.UnixMilli(),
	}
	msg := serverMessage{Type: "event", OK: true, Payload: payload}
	for _, s := range g.sessions.inGame(gameID) {
		if err := s.send(msg); err != nil {
			g.logger.Warn("event push failed",
				zap.String("session_id", s.ID),
				zap.String("event", string(evt.Type)))
		}
	}
}
