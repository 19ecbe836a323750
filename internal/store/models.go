package store

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// ConversationSummaryRecord is one end-of-session summary together with its
// sentiment score. Records are immutable once written; a user keeps at most
// the four most recent ones (the store prunes older rows on insert).
type ConversationSummaryRecord struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Summary             string    `json:"summary"`
	SentimentLabel      string    `json:"sentiment_label"`
	SentimentConfidence float64   `json:"sentiment_confidence"`
	CreatedAt           time.Time `json:"created_at"`
}

// MedicalProfile is the intake form, one per user, keyed by email.
type MedicalProfile struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Age         int       `json:"age"`
	Allergies   []string  `json:"allergies"`
	Conditions  []string  `json:"conditions"`
	Medications []string  `json:"medications"`
	CreatedAt   time.Time `json:"created_at"`
}

// PrescriptionRecord holds the OCR output for one uploaded prescription file.
type PrescriptionRecord struct {
	ID            string    `json:"id"` // UUID
	UserEmail     string    `json:"user_email"`
	FilePath      string    `json:"file_path"`
	ExtractedText string    `json:"extracted_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// DistressUser is one row of the admin review dashboard.
type DistressUser struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	LatestSummary string    `json:"latest_summary"`
	FlaggedAt     time.Time `json:"flagged_at"`
}
