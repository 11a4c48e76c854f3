package config

const (
	KeyLogLevel         = "log_level"
	KeyInstructionsPath = "instructions_path"
	KeyPythonPath       = "python_path"
	KeyTranspileTimeout = "transpile_timeout"
	KeyPostgresURL      = "postgres_url"
	KeyDBDebug          = "db_debug"
	KeyDBAutoMigrate    = "db_auto_migrate"
)
