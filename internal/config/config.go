package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Flat file storage and CSV export
	ExpensesFile string
	CSVFile      string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP change events (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	ExportTimeout            time.Duration

	// Sync worker
	SyncInterval time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		ExpensesFile: getEnv("EXPENSES_FILE", "expenses.txt"),
		CSVFile:      getEnv("EXPENSES_CSV_FILE", "expenses.csv"),

		DataBackend:  getEnv("DATA_BACKEND", BackendFile),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_changes"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		ExportTimeout:            getEnvDuration("EXPORT_TIMEOUT", 30*time.Second),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "warn"),
	}

	return cfg
}

// SheetsEnabled reports whether the Google Sheets exporter is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	validBackends := []string{BackendFile, BackendSQLite}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendFile && strings.TrimSpace(c.ExpensesFile) == "" {
		errors = append(errors, "expenses file path cannot be empty when using file backend")
	}

	if strings.TrimSpace(c.CSVFile) == "" {
		errors = append(errors, "CSV export path cannot be empty")
	} else if filepath.Clean(c.CSVFile) == filepath.Clean(c.ExpensesFile) && c.DataBackend == BackendFile {
		errors = append(errors, fmt.Sprintf("CSV export path '%s' must differ from the expenses file", c.CSVFile))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate Google Sheets configuration if the exporter is enabled
	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ExportTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export timeout %v: must be at least 1 second", c.ExportTimeout))
	} else if c.ExportTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid export timeout %v: must be at most 10 minutes", c.ExportTimeout))
	}

	if c.SyncInterval < 10*time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 10 seconds", c.SyncInterval))
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
