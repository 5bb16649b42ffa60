package session

import (
	"encoding/json"
	"time"
)

// Session is the authoritative proof of authentication held by the client.
// It is created on successful login and destroyed on sign-out, on a rejected
// access token, or on a failed parse of persisted state.
type Session struct {
	AccessToken   string
	RefreshToken  string
	Identifier    string
	EstablishedAt time.Time
}

// descriptor is the JSON shape of the persisted session record. Tokens are
// stored under their own keys, never inside the descriptor.
type descriptor struct {
	Identifier    string    `json:"identifier"`
	EstablishedAt time.Time `json:"established_at"`
}

func encodeDescriptor(s *Session) (string, error) {
	data, err := json.Marshal(descriptor{
		Identifier:    s.Identifier,
		EstablishedAt: s.EstablishedAt.UTC(),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeDescriptor(raw string) (descriptor, error) {
	var d descriptor
	err := json.Unmarshal([]byte(raw), &d)
	return d, err
}
