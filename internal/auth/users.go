package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roiboard/roiboard/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

// UserRecord is a stored annotator account.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
}

// UserStore persists accounts. CreateUser returns ErrEmailTaken for a duplicate email and
// lookups return ErrUserNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetUserByID(ctx context.Context, id string) (*UserRecord, error)
}

// MemoryUserStore keeps accounts in memory, for the file-backed server mode and tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]UserRecord
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]UserRecord),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryUserStore) CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := m.byEmail[key]; taken {
		return nil, ErrEmailTaken
	}
	m.byID[u.ID] = u
	m.byEmail[key] = u.ID
	return &u, nil
}

func (m *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := m.byID[id]
	return &u, nil
}

func (m *MemoryUserStore) GetUserByID(ctx context.Context, id string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// PGUserStore reads and writes the users table.
type PGUserStore struct {
	db db.DBTX
}

func NewPGUserStore(conn db.DBTX) *PGUserStore {
	return &PGUserStore{db: conn}
}

const (
	insertUser = `INSERT INTO users (id, email, password, display_name) VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name`
	selectUserByEmail = `SELECT id, email, password, display_name FROM users WHERE lower(email) = lower($1)`
	selectUserByID    = `SELECT id, email, password, display_name FROM users WHERE id = $1`
)

func (p *PGUserStore) CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error) {
	rec, err := scanUser(p.db.QueryRow(ctx, insertUser, u.ID, u.Email, u.PasswordHash, u.DisplayName))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return rec, nil
}

func (p *PGUserStore) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return p.get(ctx, selectUserByEmail, email)
}

func (p *PGUserStore) GetUserByID(ctx context.Context, id string) (*UserRecord, error) {
	return p.get(ctx, selectUserByID, id)
}

func (p *PGUserStore) get(ctx context.Context, query, arg string) (*UserRecord, error) {
	rec, err := scanUser(p.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return rec, nil
}

func scanUser(row pgx.Row) (*UserRecord, error) {
	var u UserRecord
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName); err != nil {
		return nil, err
	}
	return &u, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
