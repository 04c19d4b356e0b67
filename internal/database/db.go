package database

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Account environments
const (
	EnvironmentLive = "live"
	EnvironmentTest = "test"
)

// Sync history statuses
const (
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// ErrAccountNotFound is returned when an account id does not exist
var ErrAccountNotFound = errors.New("account not found")

// DB wraps the SQLite database
type DB struct {
	*sql.DB
}

// Account is a Plaza seller account whose data is tracked locally
type Account struct {
	ID           int64      `json:"id"`
	AccountKey   string     `json:"accountKey"` // "publicKey_environment"
	DisplayName  string     `json:"displayName"`
	PublicKey    string     `json:"publicKey"`
	Environment  string     `json:"environment"` // "live" or "test"
	LastExportAt *time.Time `json:"lastExportAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TestMode returns true for accounts on the Plaza test environment
func (a *Account) TestMode() bool {
	return a.Environment == EnvironmentTest
}

// Credentials is the decrypted key pair of an account
type Credentials struct {
	PublicKey  string
	PrivateKey string
	TestMode   bool
}

// SyncHistory represents a sync operation record
type SyncHistory struct {
	ID           int64      `json:"id"`
	AccountID    int64      `json:"accountId"`
	RunID        string     `json:"runId"`
	SyncType     string     `json:"syncType"` // "export" or "process-status"
	Status       string     `json:"status"`   // "running", "success", "partial", "failed"
	ItemsSynced  int        `json:"itemsSynced"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Open opens or creates the database
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases and writers consistent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

func accountKey(publicKey string, testMode bool) string {
	return publicKey + "_" + environment(testMode)
}

func environment(testMode bool) string {
	if testMode {
		return EnvironmentTest
	}
	return EnvironmentLive
}

// SaveAccount creates an account or replaces the key pair and name of an
// existing one. The private key is encrypted with key before it is stored.
func (db *DB) SaveAccount(displayName, publicKey, privateKey string, testMode bool, key []byte) (*Account, error) {
	encrypted, err := EncryptSecret(privateKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO accounts (account_key, display_name, public_key, private_key_enc, environment)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_key) DO UPDATE SET
			display_name = excluded.display_name,
			private_key_enc = excluded.private_key_enc,
			updated_at = CURRENT_TIMESTAMP
	`, accountKey(publicKey, testMode), displayName, publicKey, encrypted, environment(testMode))
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	return db.GetAccountByKey(accountKey(publicKey, testMode))
}

const accountColumns = `id, account_key, display_name, public_key, environment, last_export_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.AccountKey, &acc.DisplayName, &acc.PublicKey,
		&acc.Environment, &acc.LastExportAt, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetAccounts returns all tracked accounts
func (db *DB) GetAccounts() ([]Account, error) {
	rows, err := db.Query(`SELECT ` + accountColumns + ` FROM accounts ORDER BY last_export_at DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// GetAccountByKey retrieves an account by its unique key, nil if absent
func (db *DB) GetAccountByKey(key string) (*Account, error) {
	acc, err := scanAccount(db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE account_key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return acc, err
}

// GetAccount retrieves an account by id
func (db *DB) GetAccount(id int64) (*Account, error) {
	acc, err := scanAccount(db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return acc, err
}

// GetCredentials decrypts the key pair of an account
func (db *DB) GetCredentials(accountID int64, key []byte) (*Credentials, error) {
	var (
		publicKey string
		env       string
		encrypted []byte
	)
	err := db.QueryRow(`SELECT public_key, environment, private_key_enc FROM accounts WHERE id = ?`, accountID).
		Scan(&publicKey, &env, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	privateKey, err := DecryptSecret(encrypted, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt private key: %w", err)
	}
	return &Credentials{PublicKey: publicKey, PrivateKey: privateKey, TestMode: env == EnvironmentTest}, nil
}

// DeleteAccount removes an account and everything synced for it
func (db *DB) DeleteAccount(id int64) error {
	res, err := db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateLastExport updates the last export timestamp for an account
func (db *DB) UpdateLastExport(accountID int64) error {
	_, err := db.Exec(`
		UPDATE accounts
		SET last_export_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, time.Now().UTC(), accountID)
	return err
}

// CreateSyncHistory creates a new sync history record
func (db *DB) CreateSyncHistory(sh *SyncHistory) error {
	result, err := db.Exec(`
		INSERT INTO sync_history (account_id, run_id, sync_type, status, items_synced, error_message, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sh.AccountID, sh.RunID, sh.SyncType, sh.Status, sh.ItemsSynced, sh.ErrorMessage, sh.StartedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	sh.ID = id
	return nil
}

// UpdateSyncHistory updates a sync history record
func (db *DB) UpdateSyncHistory(sh *SyncHistory) error {
	_, err := db.Exec(`
		UPDATE sync_history
		SET status = ?, items_synced = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`, sh.Status, sh.ItemsSynced, sh.ErrorMessage, sh.CompletedAt, sh.ID)
	return err
}

// GetSyncHistory returns the latest sync history for an account
func (db *DB) GetSyncHistory(accountID int64, limit int) ([]SyncHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, account_id, run_id, sync_type, status, items_synced, error_message, started_at, completed_at
		FROM sync_history
		WHERE account_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []SyncHistory
	for rows.Next() {
		var sh SyncHistory
		err := rows.Scan(&sh.ID, &sh.AccountID, &sh.RunID, &sh.SyncType, &sh.Status,
			&sh.ItemsSynced, &sh.ErrorMessage, &sh.StartedAt, &sh.CompletedAt)
		if err != nil {
			return nil, err
		}
		history = append(history, sh)
	}
	return history, rows.Err()
}

// Setting represents an application setting (key-value pair)
type Setting struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	DataType    string    `json:"dataType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Setting keys
const (
	SettingFulfilmentMethod    = "default_fulfilment_method"
	SettingVATPercent          = "vat_percent"
	SettingTargetMarginPercent = "target_margin_percent"
)

// GetAllSettings returns all application settings
func (db *DB) GetAllSettings() ([]Setting, error) {
	rows, err := db.Query(`
		SELECT id, key, value, COALESCE(description, ''), data_type, created_at, updated_at
		FROM settings
		ORDER BY key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.DataType, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetSetting returns a single setting by key, nil if absent
func (db *DB) GetSetting(key string) (*Setting, error) {
	var s Setting
	err := db.QueryRow(`
		SELECT id, key, value, COALESCE(description, ''), data_type, created_at, updated_at
		FROM settings
		WHERE key = ?
	`, key).Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.DataType, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSettingValue returns the value of a setting or def when it is not set
func (db *DB) GetSettingValue(key, def string) (string, error) {
	s, err := db.GetSetting(key)
	if err != nil || s == nil {
		return def, err
	}
	return s.Value, nil
}

// UpdateSetting updates the value of an existing setting
func (db *DB) UpdateSetting(key, value string) error {
	res, err := db.Exec(`
		UPDATE settings
		SET value = ?, updated_at = CURRENT_TIMESTAMP
		WHERE key = ?
	`, value, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// SeedInitialData inserts the default settings that are not present yet
func (db *DB) SeedInitialData() error {
	defaults := []Setting{
		{Key: SettingFulfilmentMethod, Value: "FBR", Description: "Fulfilment method used when a request does not name one", DataType: "string"},
		{Key: SettingVATPercent, Value: "21", Description: "VAT included in offer prices", DataType: "decimal"},
		{Key: SettingTargetMarginPercent, Value: "20", Description: "Margin below which a payout is flagged", DataType: "decimal"},
	}

	for _, s := range defaults {
		_, err := db.Exec(`
			INSERT INTO settings (key, value, description, data_type)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO NOTHING
		`, s.Key, s.Value, s.Description, s.DataType)
		if err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", s.Key, err)
		}
	}
	return nil
}
