package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dragondice/dragondice-go/internal/game/rules"
)

// Replay is the ordered record of every engine event in a game, usable for
// step-through playback after the fact.
type Replay struct {
	GameID       string
	Events       []rules.Event
	CurrentIndex int

	mu     sync.RWMutex
	handle int
	bus    *rules.EventBus
}

// NewReplay creates an empty replay for the given game.
func NewReplay(gameID string) *Replay {
	return &Replay{GameID: gameID}
}

// Attach subscribes the replay to the event bus so every published event is
// recorded. Detach releases the subscription.
func (r *Replay) Attach(bus *rules.EventBus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bus != nil {
		return
	}
	r.bus = bus
	r.handle = bus.Subscribe(r.record)
}

// Detach stops recording.
func (r *Replay) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bus == nil {
		return
	}
	r.bus.Unsubscribe(r.handle)
	r.bus = nil
}

func (r *Replay) record(evt rules.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, evt)
}

// Len returns the number of recorded events.
func (r *Replay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Events)
}

// Start resets playback to the beginning.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Next returns the next event, nil at the end of the recording.
func (r *Replay) Next() *rules.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex < len(r.Events) {
		evt := r.Events[r.CurrentIndex]
		r.CurrentIndex++
		return &evt
	}
	return nil
}

// Previous steps back one event and returns it, nil at the beginning.
func (r *Replay) Previous() *rules.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		evt := r.Events[r.CurrentIndex]
		return &evt
	}
	return nil
}

// Skip advances playback by count events and returns the event landed on.
func (r *Replay) Skip(count int) *rules.Event {
	var last *rules.Event
	for i := 0; i < count; i++ {
		evt := r.Next()
		if evt == nil {
			return last
		}
		last = evt
	}
	return last
}

// Snapshot returns a copy of the recorded events.
func (r *Replay) Snapshot() []rules.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]rules.Event, len(r.Events))
	copy(out, r.Events)
	return out
}

// replayFile is the on-disk form.
type replayFile struct {
	GameID string
	Events []rules.Event
}

// SaveToFile writes the recording as a gzip-compressed gob stream.
func (r *Replay) SaveToFile(path string) error {
	r.mu.RLock()
	file := replayFile{GameID: r.GameID, Events: r.Events}
	r.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create replay directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create replay file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if err := gob.NewEncoder(gz).Encode(file); err != nil {
		gz.Close()
		return fmt.Errorf("encode replay: %w", err)
	}
	return gz.Close()
}

// LoadReplayFromFile reads a recording written by SaveToFile.
func LoadReplayFromFile(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	defer gz.Close()

	var file replayFile
	if err := gob.NewDecoder(gz).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &Replay{GameID: file.GameID, Events: file.Events}, nil
}
