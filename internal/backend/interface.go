package backend

import (
	"context"
	"time"

	"expenses/internal/services"
	"expenses/internal/worker"
)

// Factory creates the expense store and its collaborators from configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*services.ExpenseStore, error)
	CreateSyncWorker(ctx context.Context, config Config) (*worker.SyncWorker, error)
}

// Config holds configuration for store creation
type Config struct {
	Type BackendType

	// File specific
	ExpensesFile string

	// SQLite specific
	SQLiteDBPath string

	// Export
	CSVFile                  string
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	ExportTimeout            time.Duration

	// Change events (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the persistence backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
