package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldExpenseName = "expense_name"
	FieldPrice       = "price"
	FieldCount       = "count"
	FieldPath        = "path"
	FieldBackend     = "backend"
	FieldLine        = "line"
	FieldDestination = "destination"
	FieldAction      = "action"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentExport  = "export"
	ComponentEvents  = "events"
	ComponentSession = "session"
	ComponentBackend = "backend"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpAdd      = "add"
	OpUpdate   = "update"
	OpRemove   = "remove"
	OpClear    = "clear"
	OpFind     = "find"
	OpView     = "view"
	OpExport   = "export"
	OpPublish  = "publish"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
	OpSync     = "sync"
	OpConsume  = "consume"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(name string, price decimal.Decimal) LogFields {
	f[FieldExpenseName] = name
	f[FieldPrice] = price.String()
	return f
}

// WithCount adds a count field
func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
