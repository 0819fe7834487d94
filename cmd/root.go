package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "brix-meter",
	Short: "Score foods by sugar content and actions by absurdity using an LLM",
	Long: `brix-meter asks an OpenAI-compatible model to rate a short label: the Brix
sugar content of a food, or how absurd a described action is. The reply is parsed
into a number and classified into a tier (low, medium, high, max, off-scale).

Prompt templates define the scoring rubric. They can be listed and added through
the MCP server, and extra templates can be loaded from a YAML file at start-up.

When run without subcommands, it starts the MCP server (equivalent to 'brix-meter serve').`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if viper.GetBool("verbose") {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

// serveCmd is stored so the root command can delegate to it by default.
var serveCmd *cobra.Command

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "brix-meter version %s\n" .Version}}`)

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stderr, "No subcommand specified. Defaulting to 'serve' (stdio transport).")
		fmt.Fprintln(os.Stderr, "For HTTP transport or OAuth, use: brix-meter serve --transport streamable-http")
		fmt.Fprintln(os.Stderr)
		if err := serveCmd.RunE(serveCmd, args); err != nil {
			slog.Error("serve failed", "error", err)
			os.Exit(1)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	serveCmd = newServeCmd()
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newTemplatesCmd())

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/brix-meter/config.yaml)")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.String("api-url", "", "Chat completions endpoint URL")
	flags.String("api-key", "", "API key (or set OPENAI_API_KEY)")
	flags.String("model", "", "Model name")
	flags.String("templates-file", "", "YAML file with additional prompt templates")
	flags.String("env-file", ".env", "Environment file loaded before reading configuration")

	bindFlags(rootCmd, map[string]string{
		"verbose":        "verbose",
		"api-url":        "api_url",
		"api-key":        "api_key",
		"model":          "model",
		"templates-file": "templates_file",
	})
}

// bindFlags binds persistent flags of cmd to viper keys.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		_ = viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

func initConfig() {
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
	if err := loadDotEnv(envFile); err != nil {
		slog.Warn("failed to load env file", "path", envFile, "error", err)
	}

	viper.SetEnvPrefix("BRIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(filepath.Join(home, ".config", "brix-meter"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("failed to read config file", "error", err)
		}
	}
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
