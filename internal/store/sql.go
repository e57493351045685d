package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// timeFormat is fixed-width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// rebind rewrites "?" placeholders into the dialect's form.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	pool    *pgxpool.Pool
}

// Open connects to the store described by dsn. PostgreSQL URLs
// (postgres://, postgresql:// and their +pgx/+asyncpg variants) use pgx;
// anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string) (*SQLStore, error) {
	dsn = normalizeDSN(dsn)
	if dsn == "" {
		return nil, errors.New("store: empty DSN")
	}

	var (
		s   *SQLStore
		err error
	)
	if isPostgres(dsn) {
		s, err = openPostgres(ctx, dsn)
	} else {
		s, err = openSQLite(dsn)
	}
	if err != nil {
		return nil, err
	}

	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func openSQLite(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &SQLStore{db: db, dialect: dialectSQLite}, nil
}

func openPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 4
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 60 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &SQLStore{db: stdlib.OpenDBFromPool(pool), dialect: dialectPostgres, pool: pool}, nil
}

// normalizeDSN converts SQLAlchemy-style driver suffixes to plain URLs.
func normalizeDSN(dsn string) string {
	s := strings.TrimSpace(dsn)
	s = strings.Replace(s, "postgresql+asyncpg://", "postgresql://", 1)
	s = strings.Replace(s, "postgres+asyncpg://", "postgres://", 1)
	s = strings.Replace(s, "postgresql+pgx://", "postgresql://", 1)
	s = strings.Replace(s, "postgres+pgx://", "postgres://", 1)
	return s
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func (s *SQLStore) migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id          BIGINT PRIMARY KEY,
			kind        TEXT NOT NULL,
			access_hash BIGINT NOT NULL DEFAULT 0,
			title       TEXT NOT NULL DEFAULT '',
			emoji       TEXT NOT NULL DEFAULT '',
			last_active TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id             BIGINT PRIMARY KEY,
			access_hash    BIGINT NOT NULL DEFAULT 0,
			username       TEXT NOT NULL DEFAULT '',
			username_lower TEXT NOT NULL DEFAULT '',
			first_name     TEXT NOT NULL DEFAULT '',
			last_name      TEXT NOT NULL DEFAULT '',
			last_seen      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username_lower)`,
		`CREATE TABLE IF NOT EXISTS members (
			chat_id  BIGINT NOT NULL,
			user_id  BIGINT NOT NULL,
			added_at TEXT NOT NULL,
			PRIMARY KEY (chat_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			chat_id  BIGINT NOT NULL,
			user_id  BIGINT NOT NULL,
			role     TEXT NOT NULL,
			added_at TEXT NOT NULL,
			PRIMARY KEY (chat_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS afk (
			user_id BIGINT PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			reason  TEXT NOT NULL DEFAULT '',
			since   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS broadcasts (
			id         TEXT PRIMARY KEY,
			sender_id  BIGINT NOT NULL,
			text       TEXT NOT NULL,
			total      INTEGER NOT NULL,
			delivered  INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLStore) UpsertUser(ctx context.Context, u User) error {
	username := strings.TrimPrefix(u.Username, "@")
	_, err := s.exec(ctx, `
		INSERT INTO users (id, access_hash, username, username_lower, first_name, last_name, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			access_hash = CASE WHEN excluded.access_hash <> 0 THEN excluded.access_hash ELSE users.access_hash END,
			username = CASE WHEN excluded.first_name <> '' OR excluded.username <> '' THEN excluded.username ELSE users.username END,
			username_lower = CASE WHEN excluded.first_name <> '' OR excluded.username <> '' THEN excluded.username_lower ELSE users.username_lower END,
			first_name = CASE WHEN excluded.first_name <> '' THEN excluded.first_name ELSE users.first_name END,
			last_name = CASE WHEN excluded.first_name <> '' THEN excluded.last_name ELSE users.last_name END,
			last_seen = excluded.last_seen`,
		u.ID, u.AccessHash, username, strings.ToLower(username), u.FirstName, u.LastName, formatTime(u.LastSeen))
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", u.ID, err)
	}
	return nil
}

const userColumns = `id, access_hash, username, first_name, last_name, last_seen`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var lastSeen string
	if err := row.Scan(&u.ID, &u.AccessHash, &u.Username, &u.FirstName, &u.LastName, &lastSeen); err != nil {
		return User{}, err
	}
	u.LastSeen = parseTime(lastSeen)
	return u, nil
}

func (s *SQLStore) User(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *SQLStore) UserByUsername(ctx context.Context, username string) (User, error) {
	username = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	if username == "" {
		return User{}, ErrNotFound
	}
	u, err := scanUser(s.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username_lower = ? ORDER BY last_seen DESC LIMIT 1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user @%s: %w", username, err)
	}
	return u, nil
}

func (s *SQLStore) UpsertChat(ctx context.Context, c Chat) error {
	_, err := s.exec(ctx, `
		INSERT INTO chats (id, kind, access_hash, title, emoji, last_active)
		VALUES (?, ?, ?, ?, '', ?)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			access_hash = CASE WHEN excluded.access_hash <> 0 THEN excluded.access_hash ELSE chats.access_hash END,
			title = CASE WHEN excluded.title <> '' THEN excluded.title ELSE chats.title END,
			last_active = excluded.last_active`,
		c.ID, c.Kind, c.AccessHash, c.Title, formatTime(c.LastActive))
	if err != nil {
		return fmt.Errorf("upsert chat %d: %w", c.ID, err)
	}
	return nil
}

const chatColumns = `id, kind, access_hash, title, emoji, last_active`

func scanChat(row interface{ Scan(...any) error }) (Chat, error) {
	var c Chat
	var lastActive string
	if err := row.Scan(&c.ID, &c.Kind, &c.AccessHash, &c.Title, &c.Emoji, &lastActive); err != nil {
		return Chat{}, err
	}
	c.LastActive = parseTime(lastActive)
	return c, nil
}

func (s *SQLStore) Chat(ctx context.Context, id int64) (Chat, error) {
	c, err := scanChat(s.queryRow(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Chat{}, ErrNotFound
	}
	if err != nil {
		return Chat{}, fmt.Errorf("get chat %d: %w", id, err)
	}
	return c, nil
}

func (s *SQLStore) Chats(ctx context.Context) ([]Chat, error) {
	rows, err := s.query(ctx, `SELECT `+chatColumns+` FROM chats ORDER BY last_active DESC`)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *SQLStore) SetEmoji(ctx context.Context, chatID int64, emoji string) error {
	res, err := s.exec(ctx, `UPDATE chats SET emoji = ? WHERE id = ?`, emoji, chatID)
	if err != nil {
		return fmt.Errorf("set emoji for %d: %w", chatID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) AddMember(ctx context.Context, chatID, userID int64) (bool, error) {
	res, err := s.exec(ctx, `
		INSERT INTO members (chat_id, user_id, added_at) VALUES (?, ?, ?)
		ON CONFLICT (chat_id, user_id) DO NOTHING`,
		chatID, userID, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("add member %d to %d: %w", userID, chatID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLStore) Members(ctx context.Context, chatID int64) ([]User, error) {
	rows, err := s.query(ctx, `
		SELECT m.user_id, COALESCE(u.access_hash, 0), COALESCE(u.username, ''),
			COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.last_seen, '')
		FROM members m LEFT JOIN users u ON u.id = m.user_id
		WHERE m.chat_id = ?
		ORDER BY m.added_at, m.user_id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list members of %d: %w", chatID, err)
	}
	defer rows.Close()

	var members []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func (s *SQLStore) RemoveMember(ctx context.Context, chatID, userID int64) error {
	if _, err := s.exec(ctx, `DELETE FROM members WHERE chat_id = ? AND user_id = ?`, chatID, userID); err != nil {
		return fmt.Errorf("remove member %d from %d: %w", userID, chatID, err)
	}
	return nil
}

func (s *SQLStore) AddAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	res, err := s.exec(ctx, `
		INSERT INTO admins (chat_id, user_id, role, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (chat_id, user_id) DO NOTHING`,
		chatID, userID, string(RoleAdmin), formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("add admin %d in %d: %w", userID, chatID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLStore) RemoveAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM admins WHERE chat_id = ? AND user_id = ? AND role = ?`,
		chatID, userID, string(RoleAdmin))
	if err != nil {
		return false, fmt.Errorf("remove admin %d in %d: %w", userID, chatID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLStore) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM admins WHERE user_id = ? AND (chat_id = ? OR chat_id = ?)`,
		userID, chatID, GlobalChat).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check admin %d in %d: %w", userID, chatID, err)
	}
	return n > 0, nil
}

func (s *SQLStore) Admins(ctx context.Context, chatID int64) ([]Admin, error) {
	rows, err := s.query(ctx, `
		SELECT a.chat_id, a.user_id, a.role, a.added_at,
			COALESCE(u.access_hash, 0), COALESCE(u.username, ''),
			COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.last_seen, '')
		FROM admins a LEFT JOIN users u ON u.id = a.user_id
		WHERE a.chat_id = ? OR a.chat_id = ?
		ORDER BY a.role DESC, a.added_at`, chatID, GlobalChat)
	if err != nil {
		return nil, fmt.Errorf("list admins of %d: %w", chatID, err)
	}
	defer rows.Close()

	var admins []Admin
	for rows.Next() {
		var a Admin
		var role, addedAt, lastSeen string
		if err := rows.Scan(&a.ChatID, &a.UserID, &role, &addedAt,
			&a.User.AccessHash, &a.User.Username, &a.User.FirstName, &a.User.LastName, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		a.Role = Role(role)
		a.AddedAt = parseTime(addedAt)
		a.User.ID = a.UserID
		a.User.LastSeen = parseTime(lastSeen)
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (s *SQLStore) Owner(ctx context.Context) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `SELECT user_id FROM admins WHERE role = ? LIMIT 1`, string(RoleOwner)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get owner: %w", err)
	}
	return id, nil
}

func (s *SQLStore) ClaimOwner(ctx context.Context, userID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, s.dialect.rebind(`SELECT COUNT(*) FROM admins WHERE role = ?`),
		string(RoleOwner)).Scan(&n); err != nil {
		return false, fmt.Errorf("count owners: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO admins (chat_id, user_id, role, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (chat_id, user_id) DO UPDATE SET role = excluded.role`),
		GlobalChat, userID, string(RoleOwner), formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("insert owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (s *SQLStore) SetOwner(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM admins WHERE role = ? AND user_id <> ?`),
		string(RoleOwner), userID); err != nil {
		return fmt.Errorf("drop previous owner: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO admins (chat_id, user_id, role, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (chat_id, user_id) DO UPDATE SET role = excluded.role`),
		GlobalChat, userID, string(RoleOwner), formatTime(time.Now())); err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLStore) SetAFK(ctx context.Context, a AFK) error {
	_, err := s.exec(ctx, `
		INSERT INTO afk (user_id, chat_id, reason, since) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_id = excluded.chat_id,
			reason = excluded.reason,
			since = excluded.since`,
		a.UserID, a.ChatID, a.Reason, formatTime(a.Since))
	if err != nil {
		return fmt.Errorf("set afk %d: %w", a.UserID, err)
	}
	return nil
}

func (s *SQLStore) AFK(ctx context.Context, userID int64) (AFK, error) {
	a := AFK{UserID: userID}
	var since string
	err := s.queryRow(ctx, `SELECT chat_id, reason, since FROM afk WHERE user_id = ?`, userID).
		Scan(&a.ChatID, &a.Reason, &since)
	if errors.Is(err, sql.ErrNoRows) {
		return AFK{}, ErrNotFound
	}
	if err != nil {
		return AFK{}, fmt.Errorf("get afk %d: %w", userID, err)
	}
	a.Since = parseTime(since)
	return a, nil
}

func (s *SQLStore) ClearAFK(ctx context.Context, userID int64) (AFK, error) {
	a, err := s.AFK(ctx, userID)
	if err != nil {
		return AFK{}, err
	}
	res, err := s.exec(ctx, `DELETE FROM afk WHERE user_id = ?`, userID)
	if err != nil {
		return AFK{}, fmt.Errorf("clear afk %d: %w", userID, err)
	}
	// a concurrent clear already took it
	if n, _ := res.RowsAffected(); n == 0 {
		return AFK{}, ErrNotFound
	}
	return a, nil
}

func (s *SQLStore) RecordBroadcast(ctx context.Context, b Broadcast) (Broadcast, error) {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx, `
		INSERT INTO broadcasts (id, sender_id, text, total, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.SenderID, b.Text, b.Total, b.Delivered, formatTime(b.CreatedAt))
	if err != nil {
		return Broadcast{}, fmt.Errorf("record broadcast: %w", err)
	}
	return b, nil
}

// Stats returns record counts.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	counts := []struct {
		dst   *int
		query string
	}{
		{&st.Chats, `SELECT COUNT(*) FROM chats`},
		{&st.Groups, `SELECT COUNT(*) FROM chats WHERE kind <> 'user'`},
		{&st.Users, `SELECT COUNT(*) FROM users`},
		{&st.Members, `SELECT COUNT(*) FROM members`},
		{&st.Admins, `SELECT COUNT(*) FROM admins`},
		{&st.AFK, `SELECT COUNT(*) FROM afk`},
		{&st.Broadcasts, `SELECT COUNT(*) FROM broadcasts`},
	}
	for _, c := range counts {
		if err := s.queryRow(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}
	return st, nil
}

// Close closes the store.
func (s *SQLStore) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
