package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesa-rpg/battlemap-backend/internal/persist"
	"github.com/mesa-rpg/battlemap-backend/internal/room"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// EnsureRoom returns the room for a code, creating it (rehydrated from its
// snapshot) on first use.
type EnsureRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the room registry: one actor goroutine owning a code→room map.
// Each room gets its own store and snapshot keyed by its code.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	snaps  persist.Snapshotter
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// ValidCode reports whether a room code is safe to use as a registry key
// and snapshot name: letters, digits, '-' or '_' only. Anything else —
// path separators and dot segments in particular — must never reach the
// snapshot layer.
func ValidCode(code string) bool {
	if code == "" || len(code) > 64 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func NewHub(parent context.Context, snaps persist.Snapshotter, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		snaps:  snaps,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.open(msg.Code)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case EnsureRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.open(msg.Code)

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

// open rehydrates a room from its persisted snapshot. Load is fail-open, so
// a missing snapshot just means an empty map.
func (h *Hub) open(code string) *room.Room {
	initial, err := h.snaps.Load(code)
	if err != nil {
		h.log.Warn("snapshot load failed, starting empty",
			zap.String("room", code), zap.Error(err))
		initial = nil
	}
	rm := room.NewRoom(h.ctx, code, initial, h.snaps, h.log)
	h.rooms[code] = rm
	return rm
}
