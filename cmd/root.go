package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/ai/groq"
	"github.com/spigell/resume-screener/internal/ai/provider"
	"github.com/spigell/resume-screener/internal/evaluate"
	"github.com/spigell/resume-screener/internal/record"
)

const (
	app = "resume-screener"
)

type Config struct {
	AI      *AIConfig `mapstructure:"ai"`
	Output  string    `mapstructure:"output"`
	Workers int       `mapstructure:"workers"`
	Exclude []string  `mapstructure:"exclude"`
}

type AIConfig struct {
	provider.Settings `mapstructure:",squash"`

	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener evaluates resumes with a hosted LLM and recommends whom to shortlist",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"ai.provider":            "SCREENER_PROVIDER",
		"ai.groq.api-key":        "GROQ_API_KEY",
		"ai.groq.api-key-file":   "GROQ_API_KEY_FILE",
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", ai.ProviderGroq)
	v.SetDefault("ai.groq.model", groq.DefaultModel)
	v.SetDefault("ai.groq.base-url", groq.DefaultBaseURL)
	v.SetDefault("ai.gemini.model", gemini.DefaultModel)
	v.SetDefault("ai.max-log-length", evaluate.DefaultMaxLogLength)
	v.SetDefault("ai.timeout", evaluate.DefaultTimeout)
	v.SetDefault("output", record.DefaultPath)
	v.SetDefault("workers", 1)
}

func initConfig() {
	// A missing .env is fine, the environment may already carry the keys.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", envFile, err)
	}

	// Only screening needs configuration.
	if screenCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional, but a broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	return config, nil
}
