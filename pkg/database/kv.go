package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"pinlist/pkg/utils"
)

// KVStore keeps string values under string keys in the kv_store table
type KVStore struct {
	db      *sqlx.DB
	dialect dialect
}

// NewKVStore wraps an open connection. The schema must already exist.
func NewKVStore(db *sqlx.DB) (*KVStore, error) {
	d, ok := dialects[db.DriverName()]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", db.DriverName())
	}
	return &KVStore{db: db, dialect: d}, nil
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *KVStore) Get(key string) ([]byte, bool, error) {
	var value string
	err := s.db.Get(&value, s.db.Rebind(`SELECT kv_value FROM kv_store WHERE kv_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put writes all records in a single transaction
func (s *KVStore) Put(records map[string][]byte) error {
	if len(records) == 0 {
		return nil
	}

	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	upsert := tx.Rebind(s.dialect.upsert)
	for _, key := range keys {
		if _, err := tx.Exec(upsert, key, string(records[key])); err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	utils.Log("Persisted keys %v", keys)
	return nil
}

// Keys lists the stored keys in order
func (s *KVStore) Keys() ([]string, error) {
	var keys []string
	if err := s.db.Select(&keys, `SELECT kv_key FROM kv_store ORDER BY kv_key`); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *KVStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM kv_store WHERE kv_key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if _, err := s.db.Exec(s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
