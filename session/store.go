package session

import (
	"context"
	"errors"
	"log"
)

// ErrIncompleteSession is returned by [Store.Save] when the session is
// missing an access token; a token-less session must never be persisted.
var ErrIncompleteSession = errors.New("session missing access token")

// Record names within a tier. The three records are written and cleared as a
// unit; a tier holding only some of them is corrupt.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyDescriptor   = "session"
)

// Store mediates every read and write of session state across the two tiers.
type Store struct {
	ephemeral Tier
	durable   Tier
	prefix    string
}

// NewStore wires the two tiers under a key prefix. A nil tier falls back
// to an in-process [MemoryTier], so callers that never opt into
// persistence can pass nil for the durable tier.
func NewStore(ephemeral, durable Tier, prefix string) *Store {
	if ephemeral == nil {
		ephemeral = NewMemoryTier()
	}
	if durable == nil {
		durable = NewMemoryTier()
	}
	if prefix == "" {
		prefix = "planner"
	}
	return &Store{ephemeral: ephemeral, durable: durable, prefix: prefix}
}

func (s *Store) key(name string) string {
	return s.prefix + ":" + name
}

func (s *Store) keys() []string {
	return []string{s.key(keyAccessToken), s.key(keyRefreshToken), s.key(keyDescriptor)}
}

// Save writes the session into the ephemeral tier, and into the durable tier
// iff persist is true. When persist is false any prior durable copy is
// erased, so an unchecked "remember me" never leaves a stale durable session
// behind.
func (s *Store) Save(ctx context.Context, sess *Session, persist bool) error {
	if sess == nil || sess.AccessToken == "" {
		return ErrIncompleteSession
	}

	desc, err := encodeDescriptor(sess)
	if err != nil {
		return err
	}

	if err := writeTier(ctx, s.ephemeral, s.prefix, sess, desc); err != nil {
		return err
	}

	if !persist {
		return s.durable.Delete(ctx, s.keys()...)
	}

	if err := writeTier(ctx, s.durable, s.prefix, sess, desc); err != nil {
		// Never leave a partial durable copy behind a failed mirror.
		_ = s.durable.Delete(ctx, s.keys()...)
		return err
	}
	return nil
}

func writeTier(ctx context.Context, tier Tier, prefix string, sess *Session, desc string) error {
	if err := tier.Set(ctx, prefix+":"+keyAccessToken, sess.AccessToken); err != nil {
		return err
	}
	if err := tier.Set(ctx, prefix+":"+keyRefreshToken, sess.RefreshToken); err != nil {
		return err
	}
	return tier.Set(ctx, prefix+":"+keyDescriptor, desc)
}

// Load returns the current session, reading the ephemeral tier first and
// falling back to the durable tier after a restart. A durable hit is
// re-mirrored into the ephemeral tier. A malformed or partial record is
// treated as absent and clears both tiers: corrupt state never grants
// access.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	sess, corrupt, err := s.loadTier(ctx, s.ephemeral)
	if err != nil {
		return nil, err
	}
	if corrupt {
		log.Print("authflow: corrupt session record cleared")
		return nil, s.Clear(ctx)
	}
	if sess != nil {
		return sess, nil
	}

	sess, corrupt, err = s.loadTier(ctx, s.durable)
	if err != nil {
		return nil, err
	}
	if corrupt {
		log.Print("authflow: corrupt session record cleared")
		return nil, s.Clear(ctx)
	}
	if sess == nil {
		return nil, nil
	}

	// Rehydrate so the ephemeral tier is authoritative again and the durable
	// tier remains a full mirror.
	desc, encErr := encodeDescriptor(sess)
	if encErr != nil {
		return nil, encErr
	}
	if err := writeTier(ctx, s.ephemeral, s.prefix, sess, desc); err != nil {
		return nil, err
	}
	return sess, nil
}

// loadTier reads one tier. corrupt is true when the tier holds a token or
// descriptor that cannot be assembled into a whole session.
func (s *Store) loadTier(ctx context.Context, tier Tier) (*Session, bool, error) {
	access, err := tier.Get(ctx, s.key(keyAccessToken))
	if err != nil {
		return nil, false, err
	}
	refresh, err := tier.Get(ctx, s.key(keyRefreshToken))
	if err != nil {
		return nil, false, err
	}
	raw, err := tier.Get(ctx, s.key(keyDescriptor))
	if err != nil {
		return nil, false, err
	}

	if access == "" && raw == "" {
		return nil, false, nil
	}
	if access == "" || raw == "" {
		// Partial record: one half of the unit is gone.
		return nil, true, nil
	}

	desc, err := decodeDescriptor(raw)
	if err != nil {
		return nil, true, nil
	}

	return &Session{
		AccessToken:   access,
		RefreshToken:  refresh,
		Identifier:    desc.Identifier,
		EstablishedAt: desc.EstablishedAt,
	}, false, nil
}

// Clear erases both tiers unconditionally. Both deletes are attempted even
// when the first fails.
func (s *Store) Clear(ctx context.Context) error {
	ephErr := s.ephemeral.Delete(ctx, s.keys()...)
	durErr := s.durable.Delete(ctx, s.keys()...)
	return errors.Join(ephErr, durErr)
}

// Durable reports whether the durable tier currently holds a session, so
// callers rewriting the session can keep its persistence choice.
func (s *Store) Durable(ctx context.Context) bool {
	access, err := s.durable.Get(ctx, s.key(keyAccessToken))
	return err == nil && access != ""
}

// HasValidSession reports whether a non-empty access token record exists in
// either tier. This is a presence check only; token expiry is discovered
// reactively when the planner service rejects a request.
func (s *Store) HasValidSession(ctx context.Context) bool {
	if access, err := s.ephemeral.Get(ctx, s.key(keyAccessToken)); err == nil && access != "" {
		return true
	}
	access, err := s.durable.Get(ctx, s.key(keyAccessToken))
	return err == nil && access != ""
}
