package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
	"github.com/spigell/scholarship-matcher/internal/intake"
	"github.com/spigell/scholarship-matcher/internal/screening"
	"github.com/spigell/scholarship-matcher/internal/server"
)

const (
	app       = "scholarship-matcher"
	envPrefix = "SCHOLARSHIP_MATCHER"
)

type Config struct {
	Profile     *intake.ProfileInput `mapstructure:"profile"`
	Catalog     string               `mapstructure:"catalog"`
	ExcludeFile string               `mapstructure:"exclude-file"`
	Screening   screening.Config     `mapstructure:"screening"`
	Engine      EngineConfig         `mapstructure:"engine"`
	Output      OutputConfig         `mapstructure:"output"`
	Server      server.Config        `mapstructure:"server"`
	AI          *AIConfig            `mapstructure:"ai"`
}

type EngineConfig struct {
	GPATolerance float64                `mapstructure:"gpa-tolerance"`
	Concurrency  int                    `mapstructure:"concurrency"`
	Timeout      time.Duration          `mapstructure:"timeout"`
	Penalties    eligibility.Penalties  `mapstructure:"penalties"`
	Vocabulary   eligibility.Vocabulary `mapstructure:"vocabulary"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scholarship-matcher checks a student profile against a scholarship catalog",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scholarship-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("catalog", "c", "", "scholarship catalog file (YAML or JSON). Default is the built-in catalog.")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	rootCmd.PersistentFlags().StringP("exclude-file", "e", "", "special file with dismissed scholarships to exclude. Default is unset.")
	rootCmd.PersistentFlags().StringSlice("exclude-organization", nil, "organization to leave out of the catalog (repeatable)")
	rootCmd.PersistentFlags().Bool("skip-expired", false, "leave out scholarships whose deadline has passed")
	rootCmd.PersistentFlags().StringP("output", "o", "", "report format: text or json")

	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("exclude-file", rootCmd.PersistentFlags().Lookup("exclude-file"))
	viper.BindPFlag("screening.exclude-organizations", rootCmd.PersistentFlags().Lookup("exclude-organization"))
	viper.BindPFlag("screening.skip-expired", rootCmd.PersistentFlags().Lookup("skip-expired"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))

	setDefaults()
}

// setDefaults registers every key so that environment overrides reach
// viper.Unmarshal.
func setDefaults() {
	viper.SetDefault("exclude-file", "")
	viper.SetDefault("screening.exclude-organizations", []string{})
	viper.SetDefault("screening.skip-expired", false)
	viper.SetDefault("engine.gpa-tolerance", eligibility.DefaultGPATolerance)
	viper.SetDefault("engine.concurrency", 0)
	viper.SetDefault("engine.timeout", 30*time.Second)
	viper.SetDefault("output.format", "text")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.read-timeout", 10*time.Second)
	viper.SetDefault("server.write-timeout", 30*time.Second)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.gemini.max-retries", 0)
	viper.SetDefault("ai.gemini.max-log-length", 0)
}

func initConfig() {
	// A missing .env file is fine; anything else is reported.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Without an explicit --config the built-in catalog and flags are enough.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{
		Engine: EngineConfig{Penalties: eligibility.DefaultPenalties()},
	}
	if err := viper.Unmarshal(config); err != nil {
		return config, err
	}

	if config.Screening.ExcludeFile == "" {
		config.Screening.ExcludeFile = config.ExcludeFile
	}

	return config, nil
}
