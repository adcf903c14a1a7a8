package persist

import "github.com/mesa-rpg/battlemap-backend/internal/token"

// Snapshotter is the durable write-through target for a room's token
// sequence. Save replaces the whole snapshot; Load returns the last saved
// sequence, or an empty one when no usable snapshot exists. Snapshots exist
// only for restart rehydration — live correctness never depends on them.
type Snapshotter interface {
	Load(room string) ([]token.Token, error)
	Save(room string, tokens []token.Token) error
}
