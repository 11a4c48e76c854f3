package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func Init(root *cobra.Command) {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = godotenv.Load("config.env")
	if root != nil {
		root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyInstructionsPath, "")
	viper.SetDefault(KeyPythonPath, "python3")
	viper.SetDefault(KeyTranspileTimeout, 30*time.Second)
	viper.SetDefault(KeyDBDebug, false)
	viper.SetDefault(KeyDBAutoMigrate, true)
}

func LogLevel() string                { return viper.GetString(KeyLogLevel) }
func InstructionsPath() string        { return viper.GetString(KeyInstructionsPath) }
func PythonPath() string              { return viper.GetString(KeyPythonPath) }
func TranspileTimeout() time.Duration { return viper.GetDuration(KeyTranspileTimeout) }
func PostgresURL() string             { return viper.GetString(KeyPostgresURL) }
func DBDebug() bool                   { return viper.GetBool(KeyDBDebug) }
func DBAutoMigrate() bool             { return viper.GetBool(KeyDBAutoMigrate) }

// HistoryEnabled reports whether transpile calls should be recorded.
func HistoryEnabled() bool { return PostgresURL() != "" }
