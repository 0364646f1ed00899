package auth

import (
	"context"
	"errors"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jwt"
)

// KeySetFetcher returns the provider's signing keys.
type KeySetFetcher func(ctx context.Context, uri string) (jwk.Set, error)

func fetchKeySet(ctx context.Context, uri string) (jwk.Set, error) {
	return jwk.Fetch(ctx, uri)
}

func (a *Authenticator) VerifyToken(ctx context.Context, tokenString string) (jwt.Token, error) {
	if tokenString == "" {
		return nil, errors.New("empty access token")
	}

	jwks, err := a.fetchKeys(ctx, a.config.JWKSUri)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseString(tokenString,
		jwt.WithKeySet(jwks),
		jwt.WithValidate(true),
		jwt.WithIssuer(a.config.BaseUri),
	)
	if err != nil {
		return nil, err
	}
	return token, nil
}
