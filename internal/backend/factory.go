package backend

import (
	"context"
	"fmt"

	"expenses/internal/events"
	"expenses/internal/export"
	applog "expenses/internal/log"
	"expenses/internal/services"
	"expenses/internal/storage"
	"expenses/internal/worker"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateStore builds the repository, exporters and optional publisher and
// returns an unopened store.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*services.ExpenseStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.createRepository(config)
	if err != nil {
		return nil, err
	}

	exporter, err := f.createExporter(ctx, config)
	if err != nil {
		repo.Close()
		return nil, err
	}

	var publisher services.ChangePublisher
	if config.AMQPURL != "" {
		client, err := events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", applog.FieldError, err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return services.NewExpenseStore(repo, exporter, publisher, f.logger), nil
}

// CreateSyncWorker builds a worker that mirrors the configured repository
// into the configured exporters.
func (f *DefaultFactory) CreateSyncWorker(ctx context.Context, config Config) (*worker.SyncWorker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.createRepository(config)
	if err != nil {
		return nil, err
	}

	exporter, err := f.createExporter(ctx, config)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return worker.NewSyncWorker(repo, exporter, f.logger), nil
}

func (f *DefaultFactory) createRepository(config Config) (storage.Repository, error) {
	switch config.Type {
	case FileBackend:
		f.logger.Info("Initialized file backend", applog.FieldPath, config.ExpensesFile)
		return storage.NewFileRepository(config.ExpensesFile, f.logger), nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createExporter(ctx context.Context, config Config) (export.Exporter, error) {
	csvExporter := export.NewCSVExporter(config.CSVFile, f.logger)
	if config.GoogleSpreadsheetID == "" {
		return csvExporter, nil
	}

	sheets, err := export.NewSheetsExporter(ctx, export.SheetsConfig{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		Timeout:            config.ExportTimeout,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets exporter: %w", err)
	}
	f.logger.Info("Initialized Google Sheets exporter", applog.FieldDestination, sheets.Destination())

	return export.NewMulti(csvExporter, sheets), nil
}
