package backend

import (
	"context"

	"tripledger/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the row store and optional cleanup function
type BackendResult struct {
	Store   sheets.RowStore
	Cleanup CleanupFunc
}

// Factory creates row stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Google Sheets specific
	GoogleSpreadsheetID string
}

// BackendType represents the type of backend
type BackendType string

const (
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
