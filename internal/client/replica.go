package client

import (
	"slices"

	"github.com/mesa-rpg/battlemap-backend/internal/token"
	"github.com/mesa-rpg/battlemap-backend/internal/types"
)

// SessionState is the connection-side state machine. A session accepts
// nothing but "init" until it has been seeded; after that every canonical
// event applies incrementally.
type SessionState string

const (
	StateConnecting SessionState = "connecting"
	StateSynced     SessionState = "synced"
)

// Replica is a participant's local view of the battle map. It is a cache of
// server truth, never authoritative: optimistic local edits are overwritten
// by the next canonical event carrying the same id.
type Replica struct {
	state    SessionState
	tokens   []token.Token
	selected token.ID
	hasSel   bool
}

func NewReplica() *Replica {
	return &Replica{state: StateConnecting}
}

func (r *Replica) State() SessionState { return r.state }

func (r *Replica) Tokens() []token.Token { return slices.Clone(r.tokens) }

// Select marks a token as the locally selected one. Selection is purely
// local state; it is never sent to the server.
func (r *Replica) Select(id token.ID) {
	r.selected = id
	r.hasSel = true
}

func (r *Replica) ClearSelection() { r.hasSel = false }

func (r *Replica) Selected() (token.ID, bool) { return r.selected, r.hasSel }

// AddLocal records an optimistic add so the token renders before the
// canonical echo arrives. The echo then dedupes against it.
func (r *Replica) AddLocal(t token.Token) {
	if r.find(t.ID) >= 0 {
		return
	}
	r.tokens = append(r.tokens, t)
}

// Apply reconciles one canonical server event into the replica.
func (r *Replica) Apply(ev types.ServerMessage) {
	if r.state != StateSynced {
		// Only the seed event counts before sync.
		if ev.Type == types.MsgInit {
			r.tokens = slices.Clone(ev.Tokens)
			r.state = StateSynced
		}
		return
	}

	switch ev.Type {
	case types.MsgInit:
		// A fresh seed (reconnect) always replaces everything.
		r.tokens = slices.Clone(ev.Tokens)

	case types.MsgAddToken:
		if ev.Token == nil {
			return
		}
		// De-duplicates the echo of our own optimistic add.
		if r.find(ev.Token.ID) >= 0 {
			return
		}
		r.tokens = append(r.tokens, *ev.Token)

	case types.MsgUpdateToken:
		if ev.Token == nil {
			return
		}
		if i := r.find(ev.Token.ID); i >= 0 {
			r.tokens[i] = *ev.Token
		}

	case types.MsgReorder:
		r.tokens = slices.Clone(ev.Tokens)

	case types.MsgDeleteToken:
		if ev.ID == nil {
			return
		}
		if i := r.find(*ev.ID); i >= 0 {
			r.tokens = slices.Delete(r.tokens, i, i+1)
		}
		if r.hasSel && r.selected == *ev.ID {
			r.hasSel = false
		}
	}
}

func (r *Replica) find(id token.ID) int {
	return slices.IndexFunc(r.tokens, func(t token.Token) bool { return t.ID == id })
}
