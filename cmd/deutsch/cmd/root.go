package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"deutsch/src/config"
	"deutsch/src/database"
	"deutsch/src/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Config file
	cfgFile string

	verbose bool

	log *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deutsch",
	Short: "German practice in the terminal",
	Long: `deutsch drills possessive determiners and vocabulary, shows grammar
tables and asks a local language model to translate or explain sentences.

Answers are accepted regardless of letter case, extra spaces and
umlaut spelling (ä/ae, ö/oe, ü/ue, ß/ss).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := viper.GetString("env")
		if env == "" {
			env = "development"
		}
		l, err := logger.New(env, verbose)
		if err != nil {
			return err
		}
		log = l
		log.Debug("config loaded", zap.String("file", viper.ConfigFileUsed()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute adds all child commands to the root command and runs it with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/deutsch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logging")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	// .env in the working directory is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("warning: .env: " + err.Error() + "\n")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := config.GetConfigDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DEUTSCH")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file just means defaults
	_ = viper.ReadInConfig()
}

// configFilePath is the file settings are read from and written to
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	return config.GetConfigFile()
}

// loadSettings decodes the config file over the defaults, then applies
// DEUTSCH_* environment overrides and validates the result.
func loadSettings() (*config.Settings, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettingsFrom(path)
	if err != nil {
		return nil, err
	}

	overlayEnv(settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func overlayEnv(s *config.Settings) {
	set := func(key string) bool {
		_, ok := os.LookupEnv("DEUTSCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		return ok
	}

	if set("env") {
		s.Env = viper.GetString("env")
	}
	if set("quiz.rounds") {
		s.Quiz.Rounds = viper.GetInt("quiz.rounds")
	}
	if set("quiz.max_attempts") {
		s.Quiz.MaxAttempts = viper.GetInt("quiz.max_attempts")
	}
	if set("quiz.strict") {
		s.Quiz.Strict = viper.GetBool("quiz.strict")
	}
	if set("ollama.url") {
		s.Ollama.URL = viper.GetString("ollama.url")
	}
	if set("ollama.model") {
		s.Ollama.Model = viper.GetString("ollama.model")
	}
	if set("ollama.timeout") {
		s.Ollama.Timeout.Duration = viper.GetDuration("ollama.timeout")
	}
	if set("ollama.max_retries") {
		s.Ollama.MaxRetries = viper.GetInt("ollama.max_retries")
	}
	if set("database.path") {
		s.Database.Path = viper.GetString("database.path")
	}
}

// openHistory opens the quiz history database
func openHistory(settings *config.Settings) (*database.HistoryDB, error) {
	dbPath := settings.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = config.GetDatabasePath()
		if err != nil {
			return nil, err
		}
	}
	return database.NewHistoryDB(dbPath, log)
}
