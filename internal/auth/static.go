package auth

import "context"

// StaticVerifier resolves tokens from a fixed map. Intended for tests
// and local development without a running auth service.
type StaticVerifier struct {
	Tokens map[string]Identity
}

// Verify implements Verifier
func (v *StaticVerifier) Verify(_ context.Context, token string) (Identity, error) {
	id, ok := v.Tokens[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
