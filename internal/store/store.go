package store

import (
	"errors"
	"slices"

	"github.com/mesa-rpg/battlemap-backend/internal/token"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrDuplicateID   = errors.New("duplicate token id")
	ErrIDSetMismatch = errors.New("reorder is not a permutation of the live tokens")
)

// Store is the authoritative ordered token registry for one map. Slice
// order is z-order: index 0 paints bottom-most. The store is single-writer
// — the owning room goroutine is the only mutator — so there is no lock.
type Store struct {
	tokens []token.Token
}

func New() *Store { return &Store{} }

// Load builds a store from a persisted snapshot. Entries that would never
// have been admitted (no id, empty src) are discarded rather than trusted;
// a hand-edited or stale snapshot must not smuggle invalid tokens into the
// live set.
func Load(snapshot []token.Token) *Store {
	s := &Store{}
	for _, t := range snapshot {
		if !t.Valid() {
			continue
		}
		if s.find(t.ID) >= 0 {
			continue
		}
		s.tokens = append(s.tokens, t)
	}
	return s
}

// Add appends t at the top of the z-order. Invalid tokens and duplicate ids
// are rejected; the caller decides whether rejection is worth reporting
// (the sync protocol drops them silently).
func (s *Store) Add(t token.Token) error {
	if !t.Valid() {
		return ErrInvalidToken
	}
	if s.find(t.ID) >= 0 {
		return ErrDuplicateID
	}
	s.tokens = append(s.tokens, t)
	return nil
}

// Update replaces the fields of the entry matching t's id, keeping its
// position in the order. An unknown id is a no-op, not an error — the token
// may have been deleted by another client mid-drag. Returns whether an
// entry changed.
func (s *Store) Update(t token.Token) (bool, error) {
	if !t.Valid() {
		return false, ErrInvalidToken
	}
	i := s.find(t.ID)
	if i < 0 {
		return false, nil
	}
	s.tokens[i] = t
	return true, nil
}

// Reorder replaces the whole sequence. The submitted list must be a
// permutation of the live id set: a reorder can change stacking only, never
// membership, so a client racing a delete cannot resurrect a token or drop
// one on the floor.
func (s *Store) Reorder(seq []token.Token) error {
	for _, t := range seq {
		if !t.Valid() {
			return ErrInvalidToken
		}
	}
	if len(seq) != len(s.tokens) {
		return ErrIDSetMismatch
	}
	seen := make(map[token.ID]bool, len(seq))
	for _, t := range seq {
		seen[t.ID] = true
	}
	if len(seen) != len(seq) {
		return ErrIDSetMismatch
	}
	for _, t := range s.tokens {
		if !seen[t.ID] {
			return ErrIDSetMismatch
		}
	}
	s.tokens = slices.Clone(seq)
	return nil
}

// Delete removes the entry with the given id, reporting whether anything
// was removed. Absent ids are a no-op; delete is idempotent.
func (s *Store) Delete(id token.ID) bool {
	i := s.find(id)
	if i < 0 {
		return false
	}
	s.tokens = slices.Delete(s.tokens, i, i+1)
	return true
}

// Tokens returns a copy of the ordered sequence, safe to hand to other
// goroutines. The result is never nil: an empty store serializes as [].
func (s *Store) Tokens() []token.Token {
	out := make([]token.Token, 0, len(s.tokens))
	return append(out, s.tokens...)
}

func (s *Store) Len() int { return len(s.tokens) }

func (s *Store) find(id token.ID) int {
	return slices.IndexFunc(s.tokens, func(t token.Token) bool { return t.ID == id })
}
