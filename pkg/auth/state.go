package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// State travels through the provider round trip in the OAuth2 state
// parameter.
type State struct {
	CameFrom string `json:"came_from,omitempty"`
}

type encodedState struct {
	State
	Nonce string `json:"nonce"`
}

func (s *State) Encode(nonce string) (string, error) {
	raw, err := json.Marshal(&encodedState{State: *s, Nonce: nonce})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func ParseState(param string) (*State, string, error) {
	if param == "" {
		return nil, "", errors.New("missing state")
	}
	raw, err := base64.RawURLEncoding.DecodeString(param)
	if err != nil {
		return nil, "", fmt.Errorf("state is not base64: %w", err)
	}
	decoded := &encodedState{}
	if err := json.Unmarshal(raw, decoded); err != nil {
		return nil, "", fmt.Errorf("state is not JSON: %w", err)
	}
	if decoded.Nonce == "" {
		return nil, "", errors.New("state has no nonce")
	}
	return &decoded.State, decoded.Nonce, nil
}
