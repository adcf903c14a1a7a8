package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesa-rpg/battlemap-backend/internal/persist"
	"github.com/mesa-rpg/battlemap-backend/internal/store"
	"github.com/mesa-rpg/battlemap-backend/internal/token"
	"github.com/mesa-rpg/battlemap-backend/internal/types"
)

type Msg interface{ isRoomMsg() }

// FromClient carries one mutation intent, already decoded from the wire.
type FromClient struct {
	ClientID string
	Msg      types.ClientMessage
}

func (FromClient) isRoomMsg() {}

type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage // where this client wants to receive events
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type View struct {
	NumClients int
	Tokens     []token.Token
}

// Room owns the authoritative store for one battle map. A single goroutine
// drains the inbox, so every intent runs validate → apply → persist →
// broadcast to completion before the next one is looked at; arrival order
// is the one order every client observes.
type Room struct {
	code    string
	inbox   chan Msg
	store   *store.Store
	snaps   persist.Snapshotter
	clients map[string]chan types.ServerMessage
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRoom(parent context.Context, code string, initial []token.Token, snaps persist.Snapshotter, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64), // Small buffer
		store:   store.Load(initial),
		snaps:   snaps,
		clients: make(map[string]chan types.ServerMessage),
		log:     log.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

// Inbox exposes the message channel to the WS layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + hand it the full sequence immediately.
				r.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- types.ServerMessage{Type: types.MsgInit, Tokens: r.store.Tokens()}
				r.log.Info("client joined", zap.String("client", msg.ClientID))

			case Leave:
				// Close the outbox so the connection's writer goroutine
				// terminates; the slow-drop path may already have done both.
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}
				r.log.Info("client left", zap.String("client", msg.ClientID))

			case FromClient:
				r.handleIntent(msg)

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					NumClients: len(r.clients),
					Tokens:     r.store.Tokens(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

// handleIntent applies one client intent. Rejected intents are dropped with
// no reply — the sender's optimistic state stays stale until its next
// reconnect, which is the protocol's accepted trade.
func (r *Room) handleIntent(msg FromClient) {
	cm := msg.Msg
	switch cm.Type {
	case types.MsgAddToken:
		if cm.Token == nil {
			r.drop(msg, "missing token payload")
			return
		}
		if err := r.store.Add(*cm.Token); err != nil {
			r.drop(msg, err.Error())
			return
		}
		r.persist()
		r.broadcast(types.ServerMessage{Type: types.MsgAddToken, Token: cm.Token})

	case types.MsgUpdateToken:
		if cm.Token == nil {
			r.drop(msg, "missing token payload")
			return
		}
		// Unknown ids fall through to the broadcast: clients ignore
		// updates for tokens they do not have.
		if _, err := r.store.Update(*cm.Token); err != nil {
			r.drop(msg, err.Error())
			return
		}
		r.persist()
		r.broadcast(types.ServerMessage{Type: types.MsgUpdateToken, Token: cm.Token})

	case types.MsgReorder:
		if err := r.store.Reorder(cm.Tokens); err != nil {
			r.drop(msg, err.Error())
			return
		}
		r.persist()
		r.broadcast(types.ServerMessage{Type: types.MsgReorder, Tokens: r.store.Tokens()})

	case types.MsgDeleteToken:
		if cm.ID == nil {
			r.drop(msg, "missing id payload")
			return
		}
		// Broadcast even when nothing was removed: delete is idempotent
		// and every client converges on "gone".
		r.store.Delete(*cm.ID)
		r.persist()
		r.broadcast(types.ServerMessage{Type: types.MsgDeleteToken, ID: cm.ID})

	case types.MsgPlayMusic:
		// Soundboard trigger: pure relay, never touches the store.
		r.broadcast(types.ServerMessage{Type: types.MsgPlayMusic, URL: cm.URL})

	default:
		r.drop(msg, "unknown intent type")
	}
}

func (r *Room) drop(msg FromClient, reason string) {
	r.log.Debug("intent dropped",
		zap.String("client", msg.ClientID),
		zap.String("type", msg.Msg.Type),
		zap.String("reason", reason))
}

// persist mirrors the live sequence to the snapshotter. Failures are logged
// and otherwise ignored: durability is best-effort, the live session does
// not depend on it.
func (r *Room) persist() {
	if err := r.snaps.Save(r.code, r.store.Tokens()); err != nil {
		r.log.Error("snapshot write failed", zap.Error(err))
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more events
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(ev types.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- ev:
			// ok
		default:
			// Client is slow/full - drop them; reconnect + init resyncs.
			close(ch)
			delete(r.clients, id)
			r.log.Warn("dropped slow client", zap.String("client", id))
		}
	}
}
