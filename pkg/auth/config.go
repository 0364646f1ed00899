package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const ClientID = "notes-console"

type Config struct {
	BaseUri     string
	JWKSUri     string
	LoginConfig oauth2.Config
}

type providerClaims struct {
	JWKSUri string `json:"jwks_uri"`
}

// BuildAuthConfig discovers the OIDC provider at authProviderUrl, retrying a
// few times while the provider comes up.
func BuildAuthConfig(ctx context.Context, clientID string, authProviderUrl string, redirectUrl string) (*Config, error) {
	provider, err := loadOIDCConfig(ctx, authProviderUrl, 5, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("could not load OIDC configuration: %w", err)
	}

	claims := &providerClaims{}
	if err := provider.Claims(claims); err != nil {
		return nil, fmt.Errorf("could not read OIDC provider metadata: %w", err)
	}
	if claims.JWKSUri == "" {
		return nil, fmt.Errorf("OIDC provider %s does not advertise jwks_uri", authProviderUrl)
	}

	config := &Config{
		LoginConfig: oauth2.Config{
			ClientID:    clientID,
			Endpoint:    provider.Endpoint(),
			RedirectURL: redirectUrl,
			Scopes:      []string{"profile", "email", oidc.ScopeOpenID},
		},
		BaseUri: authProviderUrl,
		JWKSUri: claims.JWKSUri,
	}
	return config, nil
}

func loadOIDCConfig(ctx context.Context, authProviderUrl string, retries int, delay time.Duration) (*oidc.Provider, error) {
	var provider *oidc.Provider
	var err error
	for i := 0; i < retries; i++ {
		provider, err = oidc.NewProvider(ctx, authProviderUrl)
		if err == nil {
			return provider, nil
		}
		slog.Warn("could not load OIDC config", "attempt", i+1, "url", authProviderUrl, "err", err)
		if i+1 < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, err
}
