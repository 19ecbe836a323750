package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// summaryWindowSize caps how many conversation summaries are kept per user.
// Insertion evicts the oldest once the cap is exceeded (FIFO sliding window).
const summaryWindowSize = 4

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        email TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS conversation_summaries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        summary TEXT NOT NULL,
        sentiment_label TEXT NOT NULL DEFAULT 'neutral',
        sentiment_confidence REAL NOT NULL DEFAULT 0,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS medical_profiles (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        email TEXT UNIQUE NOT NULL,
        age INTEGER NOT NULL,
        allergies_json TEXT NOT NULL DEFAULT '[]',
        conditions_json TEXT NOT NULL DEFAULT '[]',
        medications_json TEXT NOT NULL DEFAULT '[]',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS prescriptions (
        id TEXT PRIMARY KEY, -- UUID
        user_email TEXT NOT NULL,
        file_path TEXT NOT NULL,
        extracted_text TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS distress_users (
        user_id INTEGER PRIMARY KEY,
        flagged_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) CreateUser(name, email, passwordHash string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)", name, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getUserByID(id)
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) getUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Medical profile methods

func (s *SQLiteStore) CreateMedicalProfile(p *MedicalProfile) error {
	allergies, err := json.Marshal(p.Allergies)
	if err != nil {
		return fmt.Errorf("failed to marshal allergies: %w", err)
	}
	conditions, err := json.Marshal(p.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}
	medications, err := json.Marshal(p.Medications)
	if err != nil {
		return fmt.Errorf("failed to marshal medications: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO medical_profiles (email, age, allergies_json, conditions_json, medications_json) VALUES (?, ?, ?, ?, ?)",
		p.Email, p.Age, string(allergies), string(conditions), string(medications))
	if err != nil {
		return fmt.Errorf("failed to insert medical profile: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetMedicalProfileByEmail(email string) (*MedicalProfile, error) {
	var p MedicalProfile
	var allergiesJSON, conditionsJSON, medicationsJSON string
	err := s.db.QueryRow(
		"SELECT id, email, age, allergies_json, conditions_json, medications_json, created_at FROM medical_profiles WHERE email = ?", email).
		Scan(&p.ID, &p.Email, &p.Age, &allergiesJSON, &conditionsJSON, &medicationsJSON, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No intake form submitted yet
		}
		return nil, fmt.Errorf("failed to query medical profile: %w", err)
	}

	if err := json.Unmarshal([]byte(allergiesJSON), &p.Allergies); err != nil {
		log.Printf("Warning: malformed allergies list in medical profile for %s: %v", email, err)
	}
	if err := json.Unmarshal([]byte(conditionsJSON), &p.Conditions); err != nil {
		log.Printf("Warning: malformed conditions list in medical profile for %s: %v", email, err)
	}
	if err := json.Unmarshal([]byte(medicationsJSON), &p.Medications); err != nil {
		log.Printf("Warning: malformed medications list in medical profile for %s: %v", email, err)
	}
	return &p, nil
}

// Prescription methods

func (s *SQLiteStore) CreatePrescription(rec *PrescriptionRecord) error {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO prescriptions (id, user_email, file_path, extracted_text, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare prescription insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(rec.ID, rec.UserEmail, rec.FilePath, rec.ExtractedText, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute prescription insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPrescriptionsByEmail(email string) ([]PrescriptionRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, user_email, file_path, extracted_text, created_at FROM prescriptions WHERE user_email = ? ORDER BY created_at ASC", email)
	if err != nil {
		return nil, fmt.Errorf("failed to query prescriptions: %w", err)
	}
	defer rows.Close()

	var records []PrescriptionRecord
	for rows.Next() {
		var rec PrescriptionRecord
		if err := rows.Scan(&rec.ID, &rec.UserEmail, &rec.FilePath, &rec.ExtractedText, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prescription row: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Conversation summary methods

// AppendConversationSummary inserts a new summary record and prunes the user's
// history down to the newest summaryWindowSize rows, so the sliding-window cap
// holds no matter how many sessions a user ends.
func (s *SQLiteStore) AppendConversationSummary(userID int64, summary, sentimentLabel string, sentimentConfidence float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin summary transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO conversation_summaries (user_id, summary, sentiment_label, sentiment_confidence, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, summary, sentimentLabel, sentimentConfidence, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert conversation summary: %w", err)
	}

	_, err = tx.Exec(`
        DELETE FROM conversation_summaries
        WHERE user_id = ?
          AND id NOT IN (
            SELECT id FROM conversation_summaries
            WHERE user_id = ?
            ORDER BY created_at DESC, id DESC
            LIMIT ?
          )`, userID, userID, summaryWindowSize)
	if err != nil {
		return fmt.Errorf("failed to prune conversation summaries: %w", err)
	}

	return tx.Commit()
}

// GetRecentSummaries returns up to n of the user's summaries, newest first.
func (s *SQLiteStore) GetRecentSummaries(userID int64, n int) ([]ConversationSummaryRecord, error) {
	rows, err := s.db.Query(`
        SELECT id, user_id, summary, sentiment_label, sentiment_confidence, created_at
        FROM conversation_summaries
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation summaries: %w", err)
	}
	defer rows.Close()

	var records []ConversationSummaryRecord
	for rows.Next() {
		var rec ConversationSummaryRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Summary, &rec.SentimentLabel, &rec.SentimentConfidence, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Distress list methods

// AddDistressUser flags a user for admin review. Flagging an already flagged
// user is a no-op, so the escalation gate can call this unconditionally.
func (s *SQLiteStore) AddDistressUser(userID int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO distress_users (user_id, flagged_at) VALUES (?, ?)", userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert distress user: %w", err)
	}
	return nil
}

// GetDistressUsers returns every flagged user with the fields the admin
// dashboard shows, including each user's most recent session summary.
func (s *SQLiteStore) GetDistressUsers() ([]DistressUser, error) {
	rows, err := s.db.Query(`
        SELECT u.name, u.email, d.flagged_at,
               COALESCE((
                 SELECT cs.summary FROM conversation_summaries cs
                 WHERE cs.user_id = u.id
                 ORDER BY cs.created_at DESC, cs.id DESC
                 LIMIT 1
               ), '')
        FROM distress_users d
        JOIN users u ON u.id = d.user_id
        ORDER BY d.flagged_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query distress users: %w", err)
	}
	defer rows.Close()

	var users []DistressUser
	for rows.Next() {
		var du DistressUser
		if err := rows.Scan(&du.Name, &du.Email, &du.FlaggedAt, &du.LatestSummary); err != nil {
			return nil, fmt.Errorf("failed to scan distress user row: %w", err)
		}
		users = append(users, du)
	}
	return users, nil
}
