package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gotd/td/session"
)

// SessionStorage returns a gotd session.Storage that keeps the MTProto
// session under name in the store.
func (s *SQLStore) SessionStorage(name string) session.Storage {
	return &sessionStorage{store: s, name: name}
}

type sessionStorage struct {
	store *SQLStore
	name  string
}

func (ss *sessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	var data string
	err := ss.store.queryRow(ctx, `SELECT data FROM sessions WHERE name = ?`, ss.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", ss.name, err)
	}
	return []byte(data), nil
}

func (ss *sessionStorage) StoreSession(ctx context.Context, data []byte) error {
	_, err := ss.store.exec(ctx, `
		INSERT INTO sessions (name, data) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data`,
		ss.name, string(data))
	if err != nil {
		return fmt.Errorf("store session %q: %w", ss.name, err)
	}
	return nil
}
