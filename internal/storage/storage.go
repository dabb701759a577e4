// Package storage keeps per-source command history in a JSON file store.
// The command core itself has no on-disk format; the proxy wires this in
// as an execution observer.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit int = 50

// Storage wraps the datastore keyed by source name.
type Storage struct {
	ds *datastore.DataStore
}

// CommandRecord is one executed command line.
type CommandRecord struct {
	Source   string    `json:"source"`
	Alias    string    `json:"alias"`
	Line     string    `json:"line"`
	Datetime time.Time `json:"datetime"`
}

// Record is everything stored for one source.
type Record struct {
	CommandHistory []CommandRecord `json:"cmd_history"`
}

// New opens or creates the store at filePath. The context bounds the
// store's background auto-save loop.
func New(ctx context.Context, filePath string) (*Storage, error) {
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// Close flushes and closes the underlying store.
func (s *Storage) Close() error {
	return s.ds.Close()
}

// Helper function to get or create a Record for a source
func (s *Storage) getOrCreateSourceRecord(source string) (*Record, error) {
	var record Record
	exists, err := s.ds.Get(source, &record)
	if err != nil {
		return nil, fmt.Errorf("error reading record for %q: %w", source, err)
	}
	if !exists {
		return &Record{CommandHistory: []CommandRecord{}}, nil
	}

	if len(record.CommandHistory) > commandHistoryLimit {
		record.CommandHistory = record.CommandHistory[len(record.CommandHistory)-commandHistoryLimit:]
	}

	return &record, nil
}

// RecordCommand appends one executed command line to the source's
// history, keeping at most commandHistoryLimit entries.
func (s *Storage) RecordCommand(source, alias, line string) error {
	record, err := s.getOrCreateSourceRecord(source)
	if err != nil {
		return err
	}

	record.CommandHistory = append(record.CommandHistory, CommandRecord{
		Source:   source,
		Alias:    alias,
		Line:     line,
		Datetime: time.Now(),
	})
	if len(record.CommandHistory) > commandHistoryLimit {
		record.CommandHistory = record.CommandHistory[len(record.CommandHistory)-commandHistoryLimit:]
	}
	return s.ds.Set(source, record)
}

// CommandHistory returns the source's recorded command lines, oldest
// first.
func (s *Storage) CommandHistory(source string) ([]CommandRecord, error) {
	record, err := s.getOrCreateSourceRecord(source)
	if err != nil {
		return nil, err
	}

	return record.CommandHistory, nil
}
