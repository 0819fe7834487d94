package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcptools "github.com/giantswarm/brix-meter/internal/mcp"
	"github.com/giantswarm/brix-meter/internal/server"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

func newServeCmd() *cobra.Command {
	var (
		transport    string
		httpAddr     string
		httpEndpoint string
		outputDir    string

		enableOAuth     bool
		oauthBaseURL    string
		oauthProvider   string
		dexIssuerURL    string
		dexClientID     string
		dexClientSecret string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server exposing scoring and template tools via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default, for IDE integration)
  - streamable-http: HTTP with streaming support (for remote access)

When using streamable-http transport, OAuth 2.1 authentication can be enabled.

The configured API URL and model are defaults for tool calls that omit them.
The configured API key is never used by the server: every scoring call must
carry its own api_key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newServiceFromConfig()
			if err != nil {
				return err
			}

			sc := &server.ServerContext{
				Service:   svc,
				OutputDir: outputDir,
			}

			mcpSrv := mcpserver.NewMCPServer("brix-meter", rootCmd.Version,
				mcpserver.WithToolCapabilities(true),
			)
			if err := mcptools.RegisterTools(mcpSrv, sc); err != nil {
				return fmt.Errorf("failed to register MCP tools: %w", err)
			}

			shutdownCtx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			switch transport {
			case transportStdio:
				if err := mcpserver.ServeStdio(mcpSrv); err != nil {
					return fmt.Errorf("server stopped with error: %w", err)
				}
				return nil
			case transportStreamableHTTP:
				if !enableOAuth {
					fmt.Fprintf(os.Stderr, "Starting brix-meter MCP server on %s\n", httpAddr)
					fmt.Fprintf(os.Stderr, "  HTTP endpoint: %s\n  Health: /healthz\n", httpEndpoint)
					return server.ServeHTTP(shutdownCtx, httpAddr, server.NewMux(mcpSrv, httpEndpoint, nil), nil)
				}

				oauthHandler, err := server.NewOAuthHandler(server.OAuthConfig{
					BaseURL:         oauthBaseURL,
					Provider:        oauthProvider,
					DexIssuerURL:    envOr(dexIssuerURL, "DEX_ISSUER_URL"),
					DexClientID:     envOr(dexClientID, "DEX_CLIENT_ID"),
					DexClientSecret: envOr(dexClientSecret, "DEX_CLIENT_SECRET"),
				})
				if err != nil {
					return fmt.Errorf("failed to create OAuth handler: %w", err)
				}

				fmt.Fprintf(os.Stderr, "OAuth-enabled brix-meter MCP server starting on %s\n", httpAddr)
				fmt.Fprintf(os.Stderr, "  Base URL: %s\n", oauthBaseURL)
				fmt.Fprintf(os.Stderr, "  MCP endpoint: %s (requires OAuth Bearer token)\n", httpEndpoint)
				return server.ServeHTTP(shutdownCtx, httpAddr, oauthHandler.Mux(mcpSrv, httpEndpoint), oauthHandler.Shutdown)
			default:
				return fmt.Errorf("unsupported transport: %s (supported: stdio, streamable-http)", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for batch run results")

	cmd.Flags().BoolVar(&enableOAuth, "enable-oauth", false, "Enable OAuth 2.1 authentication (for HTTP transport)")
	cmd.Flags().StringVar(&oauthBaseURL, "oauth-base-url", "", "OAuth base URL (e.g. https://brix.example.com)")
	cmd.Flags().StringVar(&oauthProvider, "oauth-provider", server.OAuthProviderDex, "OAuth provider: dex")
	cmd.Flags().StringVar(&dexIssuerURL, "dex-issuer-url", "", "Dex OIDC issuer URL")
	cmd.Flags().StringVar(&dexClientID, "dex-client-id", "", "Dex OAuth client ID")
	cmd.Flags().StringVar(&dexClientSecret, "dex-client-secret", "", "Dex OAuth client secret")

	return cmd
}

func envOr(value, envKey string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envKey)
}
