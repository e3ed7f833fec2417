package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const sessionKeyPrefix = "session:"

// BadgerStore persists histories in a badger database so they survive restarts
type BadgerStore struct {
	db       *badger.DB
	maxTurns int
	logger   *slog.Logger
}

// badgerLogger routes badger's own logging through slog
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Infof(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBadgerStore opens or creates a store at dir. An empty dir keeps everything in memory.
func OpenBadgerStore(dir string, maxTurns int) (*BadgerStore, error) {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	logger := slog.Default().With("component", "session-store")

	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &BadgerStore{db: db, maxTurns: maxTurns, logger: logger}, nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(_ context.Context, userID string) ([]Turn, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	var history []Turn
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		history, err = readHistory(txn, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if history == nil {
		history = []Turn{}
	}
	return history, nil
}

func (s *BadgerStore) Append(_ context.Context, userID string, turns ...Turn) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		history, err := readHistory(txn, userID)
		if err != nil {
			return err
		}
		value, err := json.Marshal(truncate(append(history, turns...), s.maxTurns))
		if err != nil {
			return err
		}
		return txn.Set(sessionKey(userID), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

func readHistory(txn *badger.Txn, userID string) ([]Turn, error) {
	item, err := txn.Get(sessionKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var history []Turn
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &history)
	})
	return history, err
}

func sessionKey(userID string) []byte {
	return []byte(sessionKeyPrefix + userID)
}

var _ Store = (*BadgerStore)(nil)
