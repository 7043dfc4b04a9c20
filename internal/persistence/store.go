package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/suderio/dicebot/internal/engine"
)

// EventWrapper facilitates serialization of polyphormic events
type EventWrapper struct {
	Type  engine.EventType `json:"type"`
	Event json.RawMessage  `json:"data"`
}

// Store handles append-only storing of the roll history.
type Store struct {
	mu   sync.Mutex
	file *os.File
}

// NewStore opens or creates the file at path for appending lines
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	return &Store{file: file}, nil
}

// Append takes an Event interface and marshals it to jsonl log.
func (s *Store) Append(evt engine.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	wrapper := EventWrapper{
		Type:  evt.Type(),
		Event: data,
	}

	wrapperData, err := json.Marshal(wrapper)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(wrapperData, '\n')); err != nil {
		return err
	}
	return s.file.Sync()
}

// Load replays all jsonl strings and unpacks them to Event slice.
func (s *Store) Load() ([]engine.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []engine.Event

	// Reset file pointer to beginning
	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(s.file)
	for scanner.Scan() {
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode wrapper: %w", err)
		}

		var evt engine.Event
		switch wrapper.Type {
		case engine.EventDiceRolled:
			evt = &engine.DiceRolledEvent{}
		case engine.EventRollFailed:
			evt = &engine.RollFailedEvent{}
		default:
			return nil, fmt.Errorf("unknown event type in log: %s", wrapper.Type)
		}

		if err := json.Unmarshal(wrapper.Event, evt); err != nil {
			return nil, fmt.Errorf("failed to parse event data into specific type: %w", err)
		}

		events = append(events, evt)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Recent returns up to n of the latest events rolled on server by actor, oldest first.
// An empty actor matches everyone on that server.
func (s *Store) Recent(server, actor string, n int) ([]engine.Event, error) {
	events, err := s.Load()
	if err != nil {
		return nil, err
	}

	var out []engine.Event
	for i := len(events) - 1; i >= 0 && len(out) < n; i-- {
		evtServer, evtActor := originOf(events[i])
		if evtServer != server {
			continue
		}
		if actor == "" || evtActor == actor {
			out = append(out, events[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func originOf(evt engine.Event) (server, actor string) {
	switch e := evt.(type) {
	case *engine.DiceRolledEvent:
		return e.Server, e.ActorName
	case *engine.RollFailedEvent:
		return e.Server, e.ActorName
	}
	return "", ""
}

// Close handles safe shutdown.
func (s *Store) Close() error {
	return s.file.Close()
}
