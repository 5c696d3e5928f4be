package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileJournal is a Journal that persists each order's snapshot history
// as a JSON file on disk.
type FileJournal struct {
	basePath string
	mu       sync.Mutex // Protects file operations
}

// NewFileJournal creates a file-based journal that saves history to
// the specified directory.
func NewFileJournal(basePath string) (*FileJournal, error) {
	// Ensure the base directory exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileJournal{
		basePath: basePath,
	}, nil
}

// Append implements the Journal interface for FileJournal.
func (f *FileJournal) Append(ctx context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	history, err := f.read(rec.OrderID)
	if err != nil {
		return err
	}
	if err := appendGuard(history, rec); err != nil {
		return err
	}
	history = append(history, rec)

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(f.filename(rec.OrderID), data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}

// History implements the Journal interface for FileJournal.
func (f *FileJournal) History(ctx context.Context, orderID string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	history, err := f.read(orderID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		return nil, fmt.Errorf("transaction %s not found", orderID)
	}
	return history, nil
}

// Delete implements the Journal interface for FileJournal.
func (f *FileJournal) Delete(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.filename(orderID)); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error
			return nil
		}
		return fmt.Errorf("failed to delete history file: %w", err)
	}

	return nil
}

// read loads an order's history, returning nil if no file exists yet.
func (f *FileJournal) read(orderID string) ([]Record, error) {
	data, err := os.ReadFile(f.filename(orderID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var history []Record
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return history, nil
}

// filename returns the full path for an order's history file.
func (f *FileJournal) filename(orderID string) string {
	return filepath.Join(f.basePath, orderID+".json")
}
