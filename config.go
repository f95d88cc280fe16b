package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// CLIConfig collects every flag. Defaults come from the environment (and a
// .env file in the working directory); explicit flags win.
type CLIConfig struct {
	CSV      string
	Format   string
	LogLevel string

	Category         string
	Ownership        string
	LGA              string
	Course           string
	MinAccreditation string
	MaxTuition       string
	SortBy           string
	Reverse          bool
	Top              int

	PresetsFile string
	Preset      string

	Port int

	ClickHouseEnabled bool
	CHHost            string
	CHPort            int
	CHUser            string
	CHPass            string
	CHDB              string
	CHTable           string
	CHSecure          bool
	CHBatchSize       int
}

// loadDotEnv is a no-op when no .env file exists.
func loadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

func defaultCLIConfig() CLIConfig {
	return CLIConfig{
		CSV:      envString("INSTDIR_CSV", ""),
		Format:   envString("INSTDIR_FORMAT", string(FormatList)),
		LogLevel: envString("LOG_LEVEL", "info"),

		SortBy: envString("INSTDIR_SORT_BY", string(SortByRank)),
		Top:    envInt("INSTDIR_TOP", DefaultTop),

		PresetsFile: envString("INSTDIR_PRESETS", "./presets.yaml"),

		Port: envInt("INSTDIR_PORT", 8093),

		ClickHouseEnabled: envBool("CLICKHOUSE_ENABLED", false),
		CHHost:            envString("CLICKHOUSE_HOST", "localhost"),
		CHPort:            envInt("CLICKHOUSE_PORT", 9000),
		CHUser:            envString("CLICKHOUSE_USER", "default"),
		CHPass:            envString("CLICKHOUSE_PASS", ""),
		CHDB:              envString("CLICKHOUSE_DB", "instdir"),
		CHTable:           envString("CLICKHOUSE_TABLE", "institution_rankings"),
		CHSecure:          envBool("CLICKHOUSE_SECURE", false),
		CHBatchSize:       envInt("CLICKHOUSE_BATCH_SIZE", 500),
	}
}

func (c CLIConfig) CriteriaInput() CriteriaInput {
	return CriteriaInput{
		Category:         c.Category,
		Ownership:        c.Ownership,
		LGA:              c.LGA,
		Course:           c.Course,
		MinAccreditation: c.MinAccreditation,
		MaxTuition:       c.MaxTuition,
	}
}

func (c CLIConfig) ClickHouse() ClickHouseConfig {
	return ClickHouseConfig{
		Enabled:   c.ClickHouseEnabled,
		Host:      c.CHHost,
		Port:      c.CHPort,
		User:      c.CHUser,
		Pass:      c.CHPass,
		DB:        c.CHDB,
		Table:     c.CHTable,
		Secure:    c.CHSecure,
		BatchSize: c.CHBatchSize,
	}
}

func envString(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(k)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
