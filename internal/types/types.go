package types

import "github.com/mesa-rpg/battlemap-backend/internal/token"

// Message kinds shared by both directions. A client sends mutation intents;
// the server echoes the canonical version of each accepted mutation to
// every session, sender included.
const (
	MsgInit        = "init"
	MsgAddToken    = "addToken"
	MsgUpdateToken = "updateToken"
	MsgReorder     = "reorder"
	MsgDeleteToken = "deleteToken"
	MsgPlayMusic   = "play-music"
)

type ClientMessage struct {
	Type   string        `json:"type"`
	Token  *token.Token  `json:"token,omitempty"`
	Tokens []token.Token `json:"tokens,omitempty"`
	ID     *token.ID     `json:"id,omitempty"`
	URL    string        `json:"url,omitempty"`
}

// ServerMessage is a canonical event. "init" carries the full ordered
// sequence and is sent exactly once per connection; "reorder" also carries
// the canonical sequence; the rest carry a single token or id. Tokens is
// never omitted: an empty map must reach plain JSON consumers as [] rather
// than a missing field, so sequence events fill it with a non-nil slice.
type ServerMessage struct {
	Type   string        `json:"type"`
	Token  *token.Token  `json:"token,omitempty"`
	Tokens []token.Token `json:"tokens"`
	ID     *token.ID     `json:"id,omitempty"`
	URL    string        `json:"url,omitempty"`
}
