package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers/dex"
	oauthserver "github.com/giantswarm/mcp-oauth/server"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// OAuthProviderDex is the Dex OIDC provider.
const OAuthProviderDex = "dex"

// OAuthConfig holds configuration for the OAuth-protected MCP endpoint.
type OAuthConfig struct {
	// BaseURL is the server's public base URL (e.g. https://brix.example.com).
	BaseURL string

	// Provider is the OAuth provider name. Only "dex" is supported.
	Provider string

	DexIssuerURL    string
	DexClientID     string
	DexClientSecret string
}

// Validate checks that every required field is set.
func (c OAuthConfig) Validate() error {
	if c.Provider != "" && c.Provider != OAuthProviderDex {
		return fmt.Errorf("unsupported OAuth provider %q (supported: %s)", c.Provider, OAuthProviderDex)
	}
	if err := validateHTTPSRequirement(c.BaseURL); err != nil {
		return fmt.Errorf("OAuth base URL validation failed: %w", err)
	}
	switch {
	case c.DexIssuerURL == "":
		return fmt.Errorf("dex issuer URL is required (--dex-issuer-url or DEX_ISSUER_URL)")
	case c.DexClientID == "":
		return fmt.Errorf("dex client ID is required (--dex-client-id or DEX_CLIENT_ID)")
	case c.DexClientSecret == "":
		return fmt.Errorf("dex client secret is required (--dex-client-secret or DEX_CLIENT_SECRET)")
	}
	return nil
}

// OAuthHandler puts an MCP endpoint behind OAuth 2.1 bearer tokens.
type OAuthHandler struct {
	oauthServer  *oauth.Server
	oauthHandler *oauth.Handler
}

// NewOAuthHandler creates the OAuth server with a Dex provider and in-memory
// token storage.
func NewOAuthHandler(cfg OAuthConfig) (*OAuthHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dexProvider, err := dex.NewProvider(&dex.Config{
		IssuerURL:    cfg.DexIssuerURL,
		ClientID:     cfg.DexClientID,
		ClientSecret: cfg.DexClientSecret,
		RedirectURL:  cfg.BaseURL + "/oauth/callback",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Dex provider: %w", err)
	}

	store := memory.New()
	logger := slog.Default()

	oauthSrv, err := oauth.NewServer(
		dexProvider,
		store,
		store,
		store,
		&oauthserver.Config{
			Issuer:                    cfg.BaseURL,
			AllowRefreshTokenRotation: true,
			MaxClientsPerIP:           10,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}

	return &OAuthHandler{
		oauthServer:  oauthSrv,
		oauthHandler: oauth.NewHandler(oauthSrv, logger),
	}, nil
}

// Mux returns a mux with the OAuth endpoints, the token-guarded MCP endpoint
// and /healthz.
func (h *OAuthHandler) Mux(mcpSrv *mcpserver.MCPServer, mcpEndpoint string) *http.ServeMux {
	mux := NewMux(mcpSrv, mcpEndpoint, h.oauthHandler.ValidateToken)

	h.oauthHandler.RegisterAuthorizationServerMetadataRoutes(mux)
	h.oauthHandler.RegisterProtectedResourceMetadataRoutes(mux, mcpEndpoint)
	mux.HandleFunc("/oauth/authorize", h.oauthHandler.ServeAuthorization)
	mux.HandleFunc("/oauth/token", h.oauthHandler.ServeToken)
	mux.HandleFunc("/oauth/callback", h.oauthHandler.ServeCallback)
	mux.HandleFunc("/oauth/register", h.oauthHandler.ServeClientRegistration)
	mux.HandleFunc("/oauth/revoke", h.oauthHandler.ServeTokenRevocation)
	mux.HandleFunc("/oauth/introspect", h.oauthHandler.ServeTokenIntrospection)

	return mux
}

// Shutdown stops the OAuth server's background work.
func (h *OAuthHandler) Shutdown(ctx context.Context) {
	if err := h.oauthServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown OAuth server", "error", err)
	}
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance.
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		switch u.Hostname() {
		case "localhost", "127.0.0.1", "::1":
			return nil
		}
		return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
	default:
		return fmt.Errorf("invalid URL scheme: %s (must be http for localhost or https)", u.Scheme)
	}
}
