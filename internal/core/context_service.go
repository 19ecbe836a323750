package core

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/medbot-ai/medbot-backend/internal/store"
)

// ErrNoMedicalData signals that a user has neither prescriptions nor an
// intake form. It is a defined empty state, not a failure: callers route it
// to a fixed user-facing message instead of building a prompt from nothing.
var ErrNoMedicalData = errors.New("no medical data found")

const (
	noPrescriptionsSentinel = "No prescriptions found."
	noMedicalFormSentinel   = "No medical form details available."
)

// MedicalDataStore is the read-only slice of the store the aggregator needs.
type MedicalDataStore interface {
	GetPrescriptionsByEmail(email string) ([]store.PrescriptionRecord, error)
	GetMedicalProfileByEmail(email string) (*store.MedicalProfile, error)
}

// ContextService merges a user's stored prescriptions and medical intake form
// into one formatted medical-history document.
type ContextService struct {
	store MedicalDataStore
}

func NewContextService(dataStore MedicalDataStore) *ContextService {
	return &ContextService{store: dataStore}
}

// BuildMedicalHistory fetches and formats the user's medical data. Pure read,
// no side effects. Store errors degrade to ErrNoMedicalData so a flaky
// database never aborts a chat request.
func (s *ContextService) BuildMedicalHistory(email string) (string, error) {
	prescriptions, err := s.store.GetPrescriptionsByEmail(email)
	if err != nil {
		log.Printf("Error fetching prescriptions for %s: %v", email, err)
		return "", ErrNoMedicalData
	}

	profile, err := s.store.GetMedicalProfileByEmail(email)
	if err != nil {
		log.Printf("Error fetching medical profile for %s: %v", email, err)
		return "", ErrNoMedicalData
	}

	if len(prescriptions) == 0 && profile == nil {
		log.Printf("No medical records found for %s", email)
		return "", ErrNoMedicalData
	}

	return combineMedicalHistory(formatPrescriptions(prescriptions), formatMedicalForm(profile)), nil
}

func formatPrescriptions(prescriptions []store.PrescriptionRecord) string {
	if len(prescriptions) == 0 {
		return noPrescriptionsSentinel
	}
	texts := make([]string, 0, len(prescriptions))
	for _, p := range prescriptions {
		texts = append(texts, p.ExtractedText)
	}
	return strings.Join(texts, "\n")
}

func formatMedicalForm(profile *store.MedicalProfile) string {
	if profile == nil {
		return noMedicalFormSentinel
	}
	return fmt.Sprintf("**Age:** %d\n**Allergies:** %s\n**Conditions:** %s\n**Medications:** %s",
		profile.Age,
		joinOrNA(profile.Allergies),
		joinOrNA(profile.Conditions),
		joinOrNA(profile.Medications))
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return "N/A"
	}
	return strings.Join(items, ", ")
}

func combineMedicalHistory(prescriptionText, medicalFormText string) string {
	return fmt.Sprintf("**User Medical History**\n\n**Prescriptions:**\n%s\n\n**Medical Form Details:**\n%s",
		prescriptionText, medicalFormText)
}
