package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no wallet record exists for the given key.
	ErrNotFound = errors.New("wallet not found")
	// ErrEmailRegistered indicates the email already owns a wallet.
	ErrEmailRegistered = errors.New("email already registered")
)

// Repository persists wallet records.
type Repository interface {
	Create(ctx context.Context, record Record) error
	FindByEmail(ctx context.Context, email string) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
}

// PostgresRepository stores wallet records in PostgreSQL. The address and
// secret maps are serialized to JSONB columns.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record.
func (r *PostgresRepository) Create(ctx context.Context, record Record) error {
	recordID, err := uuid.Parse(record.ID)
	if err != nil {
		return err
	}
	addresses, err := json.Marshal(record.Addresses)
	if err != nil {
		return fmt.Errorf("encode addresses: %w", err)
	}
	secrets, err := json.Marshal(record.Secrets)
	if err != nil {
		return fmt.Errorf("encode secrets: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, name, email, credential, addresses, secrets, fiat_balance, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		recordID, record.Name, record.Email, record.Credential, addresses, secrets, record.FiatBalance, record.CreatedAt.UTC())
	return err
}

// FindByEmail fetches the wallet record owned by an email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Record, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, credential, addresses, secrets, fiat_balance, created_at
        FROM wallets WHERE email = $1`, email)
	return scanRecord(row)
}

// Get fetches a wallet record by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Record, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return Record{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, email, credential, addresses, secrets, fiat_balance, created_at
        FROM wallets WHERE id = $1`, recordID)
	return scanRecord(row)
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		record    Record
		id        uuid.UUID
		addresses []byte
		secrets   []byte
		createdAt time.Time
	)
	if err := row.Scan(&id, &record.Name, &record.Email, &record.Credential, &addresses, &secrets, &record.FiatBalance, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal(addresses, &record.Addresses); err != nil {
		return Record{}, fmt.Errorf("decode addresses: %w", err)
	}
	if err := json.Unmarshal(secrets, &record.Secrets); err != nil {
		return Record{}, fmt.Errorf("decode secrets: %w", err)
	}
	record.ID = id.String()
	record.CreatedAt = createdAt.UTC()
	return record, nil
}
