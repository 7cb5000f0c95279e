package game

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RoomManager tracks open rooms by their join code.
type RoomManager struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   Config
	log   *logrus.Logger
}

// NewRoomManager returns an empty registry using cfg for every table.
func NewRoomManager(cfg Config, log *logrus.Logger) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		log:   log,
	}
}

// Create opens a new room with host already seated and returns it.
func (m *RoomManager) Create(host *Session, rounds int) (*Room, error) {
	m.mu.Lock()
	code := m.newCodeLocked()
	room := NewRoom(code, rounds, m.cfg, m.log)
	room.onClose = m.remove
	m.rooms[code] = room
	m.mu.Unlock()

	if err := room.Join(host); err != nil {
		m.remove(code)
		return nil, err
	}
	return room, nil
}

// Get looks a room up by code.
func (m *RoomManager) Get(code string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToUpper(code)]
	return room, ok
}

// Count returns the number of open rooms.
func (m *RoomManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

func (m *RoomManager) remove(code string) {
	m.mu.Lock()
	delete(m.rooms, code)
	m.mu.Unlock()
}

// newCodeLocked derives an 8-character join code from a fresh UUID,
// retrying on the off chance it collides with an open room.
func (m *RoomManager) newCodeLocked() string {
	for {
		id, _ := uuid.NewRandom()
		code := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
		if _, taken := m.rooms[code]; !taken {
			return code
		}
	}
}
