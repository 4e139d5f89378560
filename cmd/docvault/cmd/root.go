package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/docvault/docvault/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "docvault",
	Short: "Document Vault: a document management gateway",
	Long: `Document Vault ingests files, stores them in Mayan EDMS (falling back
to local storage), extracts their text, derives AI summaries and tags, and
answers questions grounded in stored document content.

Commands:
  serve      Start the HTTP API server
  serve-mcp  Start the MCP server for AI-agent access
  ingest     Ingest a file or URL from the command line
  chat       Ask a question against stored documents`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Secrets and local overrides live in a .env file when present.
	godotenv.Load()

	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/docvault")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// DOCVAULT_ELASTICSEARCH_ADDRESSES -> elasticsearch.addresses
	viper.SetEnvPrefix("DOCVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("mode", "DOCVAULT_MODE")
	viper.BindEnv("server.addr", "DOCVAULT_SERVER_ADDR")
	viper.BindEnv("elasticsearch.addresses", "DOCVAULT_ELASTICSEARCH_ADDRESSES")
	viper.BindEnv("elasticsearch.index", "DOCVAULT_ELASTICSEARCH_INDEX")
	viper.BindEnv("elasticsearch.username", "DOCVAULT_ELASTICSEARCH_USERNAME")
	viper.BindEnv("elasticsearch.password", "DOCVAULT_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("store.backend", "DOCVAULT_STORE_BACKEND")
	viper.BindEnv("store.mayan.url", "DOCVAULT_STORE_MAYAN_URL")
	viper.BindEnv("store.mayan.token", "DOCVAULT_STORE_MAYAN_TOKEN")
	viper.BindEnv("store.s3.endpoint", "DOCVAULT_STORE_S3_ENDPOINT")
	viper.BindEnv("store.s3.bucket", "DOCVAULT_STORE_S3_BUCKET")
	viper.BindEnv("store.s3.access_key_id", "DOCVAULT_STORE_S3_ACCESS_KEY_ID")
	viper.BindEnv("store.s3.secret_access_key", "DOCVAULT_STORE_S3_SECRET_ACCESS_KEY")
	viper.BindEnv("fallback.dir", "DOCVAULT_FALLBACK_DIR")
	viper.BindEnv("ollama.url", "DOCVAULT_OLLAMA_URL")
	viper.BindEnv("ollama.model", "DOCVAULT_OLLAMA_MODEL")
	viper.BindEnv("embeddings.enabled", "DOCVAULT_EMBEDDINGS_ENABLED")
	viper.BindEnv("embeddings.model", "DOCVAULT_EMBEDDINGS_MODEL")
	viper.BindEnv("mcp.name", "DOCVAULT_MCP_NAME")
	viper.BindEnv("mcp.version", "DOCVAULT_MCP_VERSION")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv("DOCVAULT_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
