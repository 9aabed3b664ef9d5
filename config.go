package clustergen

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings holds the pipeline inputs and outputs
type Settings struct {
	Interpretation string `mapstructure:"interpretation"`
	Assignments    string `mapstructure:"assignments"`
	OutputDir      string `mapstructure:"output_dir" validate:"required"`
	ExportDB       string `mapstructure:"export_db"`
	Debug          bool   `mapstructure:"debug"`
}

// Config holds the resolved settings for the current process
var Config Settings

var configKeys = []string{"interpretation", "assignments", "output_dir", "export_db", "debug"}

// RegisterFlags adds the persistent configuration flags to cmd and binds them to v
func RegisterFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String("interpretation", "", "Path to the interpretation table (per-video metrics CSV)")
	flags.String("assignments", "", "Path to the cluster assignment table (CSV)")
	flags.String("output-dir", ".", "Directory for generated files")
	flags.String("export-db", "", "Optional SQLite file receiving a snapshot of the exported specs")
	flags.Bool("debug", false, "Enable development logging")

	bindings := map[string]string{
		"interpretation": "interpretation",
		"assignments":    "assignments",
		"output_dir":     "output-dir",
		"export_db":      "export-db",
		"debug":          "debug",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// LoadConfig resolves Config from .env, clustergen.yaml, CLUSTERGEN_* variables and bound flags
func LoadConfig(v *viper.Viper) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	v.SetConfigName("clustergen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("CLUSTERGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("output_dir", ".")
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validate.Struct(settings); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	Config = settings
	logger.Debug("🔧 Configuration loaded",
		zap.String("interpretation", settings.Interpretation),
		zap.String("assignments", settings.Assignments),
		zap.String("output_dir", settings.OutputDir),
		zap.String("export_db", settings.ExportDB))
	return nil
}
