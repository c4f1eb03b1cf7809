// Package sqlite provides the SQLite-backed implementation of the
// clause and history stores.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/verdict-systems/clausewise/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
)

// Store is a SQLite-backed storage providing the clause and history
// store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.clausewise/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clausewise", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "clausewise.db")

	// WAL mode for better concurrency between the HTTP server and the
	// embedding backfill.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ClauseStore returns a ClauseStore interface backed by this store.
func (s *Store) ClauseStore() driven.ClauseStore {
	return &clauseStore{store: s}
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// ==================== Clause Store ====================

// clauseStore implements driven.ClauseStore.
type clauseStore struct {
	store *Store
}

var _ driven.ClauseStore = (*clauseStore)(nil)

// SaveContract stores a new contract and populates its ID.
func (s *clauseStore) SaveContract(ctx context.Context, contract *domain.Contract) error {
	if contract.UploadedAt.IsZero() {
		contract.UploadedAt = time.Now().UTC()
	}
	if contract.Status == "" {
		contract.Status = domain.StatusPending
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO contracts (title, text, status, uploaded_at)
		VALUES (?, ?, ?, ?)
	`, contract.Title, contract.Text, string(contract.Status), contract.UploadedAt)
	if err != nil {
		return fmt.Errorf("saving contract: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("contract insert id: %w", err)
	}
	contract.ID = domain.ContractID(id)
	return nil
}

// GetContract retrieves a contract by ID.
func (s *clauseStore) GetContract(ctx context.Context, id domain.ContractID) (*domain.Contract, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, text, status, uploaded_at, processed_at
		FROM contracts WHERE id = ?
	`, int64(id))

	contract, err := scanContract(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning contract: %w", err)
	}
	return contract, nil
}

// ListContracts returns stored contracts, newest first.
func (s *clauseStore) ListContracts(ctx context.Context) ([]domain.Contract, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, text, status, uploaded_at, processed_at
		FROM contracts ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}
		contracts = append(contracts, *contract)
	}
	return contracts, rows.Err()
}

// UpdateContractStatus records pipeline progress for a contract.
func (s *clauseStore) UpdateContractStatus(ctx context.Context, id domain.ContractID, status domain.ContractStatus) error {
	var processedAt any
	if status == domain.StatusCompleted || status == domain.StatusFailed {
		processedAt = time.Now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE contracts SET status = ?, processed_at = COALESCE(?, processed_at)
		WHERE id = ?
	`, string(status), processedAt, int64(id))
	if err != nil {
		return fmt.Errorf("updating contract status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveClauses stores clauses in one transaction and populates their IDs.
func (s *clauseStore) SaveClauses(ctx context.Context, clauses []domain.Clause) ([]domain.Clause, error) {
	if len(clauses) == 0 {
		return nil, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clauses (contract_id, segment_id, number, title, text, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing clause insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	saved := make([]domain.Clause, len(clauses))
	for i, clause := range clauses {
		if clause.SegmentID == "" {
			clause.SegmentID = uuid.NewString()
		}
		if clause.CreatedAt.IsZero() {
			clause.CreatedAt = now
		}

		res, err := stmt.ExecContext(ctx, int64(clause.ContractID), clause.SegmentID,
			clause.Number, clause.Title, clause.Text,
			float32SliceToBytes(clause.Embedding), clause.CreatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return nil, fmt.Errorf("%w: segment %q in contract %d",
					domain.ErrDuplicateClause, clause.SegmentID, clause.ContractID)
			}
			return nil, fmt.Errorf("saving clause: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("clause insert id: %w", err)
		}
		clause.ID = domain.ClauseID(id)
		saved[i] = clause
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing clauses: %w", err)
	}
	return saved, nil
}

// GetClauses retrieves all clauses for a contract in ascending ID order.
func (s *clauseStore) GetClauses(ctx context.Context, contractID domain.ContractID) ([]domain.Clause, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, contract_id, segment_id, number, title, text, embedding, created_at
		FROM clauses WHERE contract_id = ? ORDER BY id ASC
	`, int64(contractID))
	if err != nil {
		return nil, fmt.Errorf("listing clauses: %w", err)
	}
	defer rows.Close()

	var clauses []domain.Clause
	for rows.Next() {
		var clause domain.Clause
		var embeddingBlob []byte
		if err := rows.Scan(&clause.ID, &clause.ContractID, &clause.SegmentID,
			&clause.Number, &clause.Title, &clause.Text,
			&embeddingBlob, &clause.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning clause: %w", err)
		}
		clause.Embedding = bytesToFloat32Slice(embeddingBlob)
		clauses = append(clauses, clause)
	}
	return clauses, rows.Err()
}

// UpdateEmbedding stores the full embedding vector for a clause.
// The single-statement UPDATE is atomic: a concurrent reader sees either
// NULL or the complete vector, never part of one.
func (s *clauseStore) UpdateEmbedding(ctx context.Context, clauseID domain.ClauseID, embedding []float32) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE clauses SET embedding = ? WHERE id = ?
	`, float32SliceToBytes(embedding), int64(clauseID))
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteContract removes a contract; clauses and history cascade.
func (s *clauseStore) DeleteContract(ctx context.Context, id domain.ContractID) error {
	res, err := s.store.db.ExecContext(ctx,
		`DELETE FROM contracts WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("deleting contract: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner lets scanContract serve both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanContract reads one contract row.
func scanContract(row rowScanner) (*domain.Contract, error) {
	var contract domain.Contract
	var status string
	var processedAt sql.NullTime
	if err := row.Scan(&contract.ID, &contract.Title, &contract.Text,
		&status, &contract.UploadedAt, &processedAt); err != nil {
		return nil, err
	}
	contract.Status = domain.ContractStatus(status)
	if processedAt.Valid {
		contract.ProcessedAt = processedAt.Time
	}
	return &contract, nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// RecordQA stores one interaction, assigning ID and timestamp.
func (s *historyStore) RecordQA(ctx context.Context, record *domain.QARecord) error {
	record.ID = uuid.NewString()
	record.AskedAt = time.Now().UTC()

	refsJSON, err := json.Marshal(record.ReferencedClauseIDs)
	if err != nil {
		return fmt.Errorf("marshalling clause references: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO qa_history (id, contract_id, question, answer, confidence, referenced_clause_ids, asked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, int64(record.ContractID), record.Question, record.Answer,
		string(record.Confidence), string(refsJSON), record.AskedAt)
	if err != nil {
		return fmt.Errorf("saving qa record: %w", err)
	}
	return nil
}

// ListQA returns the interactions for a contract, newest first.
func (s *historyStore) ListQA(ctx context.Context, contractID domain.ContractID) ([]domain.QARecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, contract_id, question, answer, confidence, referenced_clause_ids, asked_at
		FROM qa_history WHERE contract_id = ? ORDER BY asked_at DESC, id DESC
	`, int64(contractID))
	if err != nil {
		return nil, fmt.Errorf("listing qa history: %w", err)
	}
	defer rows.Close()

	var records []domain.QARecord
	for rows.Next() {
		var record domain.QARecord
		var confidence, refsJSON string
		if err := rows.Scan(&record.ID, &record.ContractID, &record.Question,
			&record.Answer, &confidence, &refsJSON, &record.AskedAt); err != nil {
			return nil, fmt.Errorf("scanning qa record: %w", err)
		}
		record.Confidence = domain.Confidence(confidence)
		if err := json.Unmarshal([]byte(refsJSON), &record.ReferencedClauseIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling clause references: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ==================== Embedding encoding ====================

// float32SliceToBytes converts a vector to little-endian float32 bytes.
// Nil and empty vectors encode as nil (stored as NULL).
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
