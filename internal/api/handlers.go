package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/medbot-ai/medbot-backend/internal/auth"
	"github.com/medbot-ai/medbot-backend/internal/config"
	"github.com/medbot-ai/medbot-backend/internal/core"
	"github.com/medbot-ai/medbot-backend/internal/ocr"
	"github.com/medbot-ai/medbot-backend/internal/store"
)

type contextKey string

const userEmailContextKey contextKey = "userEmail"

type APIHandler struct {
	chatService *core.ChatService
	dbStore     *store.SQLiteStore
	extractor   ocr.Extractor
}

func NewAPIHandler(cs *core.ChatService, db *store.SQLiteStore, extractor ocr.Extractor) *APIHandler {
	return &APIHandler{
		chatService: cs,
		dbStore:     db,
		extractor:   extractor,
	}
}

// Auth

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for %s: %v", req.Email, err)
		http.Error(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user, err := h.dbStore.CreateUser(req.Name, req.Email, hashedPassword)
	if err != nil {
		log.Printf("Error creating user %s: %v", req.Email, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.dbStore.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("Error getting user %s: %v", req.Email, err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(req.Email)
	if err != nil {
		log.Printf("Error generating JWT for %s: %v", req.Email, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		email, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userEmailContextKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnlyMiddleware restricts a route to the configured admin identity.
func (h *APIHandler) AdminOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := r.Context().Value(userEmailContextKey).(string)
		if email != config.AppConfig.AdminEmail {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Chat

type ChatRequest struct {
	UserEmail string `json:"userEmail"`
	Query     string `json:"query"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserEmail == "" || req.Query == "" {
		writeJSONError(w, "User email and query are required.", http.StatusBadRequest)
		return
	}

	log.Printf("New chat query from %s: %s", req.UserEmail, req.Query)

	answer := h.chatService.HandleQuery(r.Context(), req.UserEmail, req.Query)
	json.NewEncoder(w).Encode(ChatResponse{Answer: answer})
}

type EndSessionRequest struct {
	UserEmail string `json:"userEmail"`
}

type EndSessionResponse struct {
	Message    string `json:"message"`
	Summary    string `json:"summary,omitempty"`
	RedirectTo string `json:"redirectTo"`
}

func (h *APIHandler) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserEmail == "" {
		writeJSONError(w, "User email is required.", http.StatusBadRequest)
		return
	}

	summary, hadConversation := h.chatService.EndSession(r.Context(), req.UserEmail)
	if !hadConversation {
		json.NewEncoder(w).Encode(EndSessionResponse{
			Message:    "Session ended. No conversation to summarize.",
			RedirectTo: "/login",
		})
		return
	}

	json.NewEncoder(w).Encode(EndSessionResponse{
		Message:    "Session ended successfully",
		Summary:    summary,
		RedirectTo: "/login",
	})
}

// Admin

func (h *APIHandler) DistressUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.dbStore.GetDistressUsers()
	if err != nil {
		log.Printf("Failed to fetch distress users: %v", err)
		http.Error(w, "Failed to fetch distress users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []store.DistressUser{}
	}
	json.NewEncoder(w).Encode(users)
}

// Medical data

type MedicalFormRequest struct {
	Email       string   `json:"email"`
	Age         int      `json:"age"`
	Allergies   []string `json:"allergies"`
	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`
}

func (h *APIHandler) MedicalFormHandler(w http.ResponseWriter, r *http.Request) {
	var req MedicalFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Age <= 0 {
		writeJSONError(w, "Email and age are required.", http.StatusBadRequest)
		return
	}

	profile := store.MedicalProfile{
		Email:       req.Email,
		Age:         req.Age,
		Allergies:   req.Allergies,
		Conditions:  req.Conditions,
		Medications: req.Medications,
	}
	if err := h.dbStore.CreateMedicalProfile(&profile); err != nil {
		log.Printf("Error saving medical form for %s: %v", req.Email, err)
		http.Error(w, "Failed to save medical form", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profile)
}

// UploadPrescriptionHandler accepts a multipart upload, saves the file, runs
// the OCR extractor and stores the resulting PrescriptionRecord.
func (h *APIHandler) UploadPrescriptionHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	userEmail := r.FormValue("userEmail")
	if userEmail == "" {
		userEmail = r.FormValue("email")
	}
	if userEmail == "" {
		writeJSONError(w, "User email is required.", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "No file uploaded.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filePath, err := h.saveUpload(file, header.Filename)
	if err != nil {
		log.Printf("Error saving uploaded prescription for %s: %v", userEmail, err)
		http.Error(w, "Failed to save uploaded file", http.StatusInternalServerError)
		return
	}

	extractedText, err := h.extractor.Extract(r.Context(), filePath)
	if err != nil {
		log.Printf("Error extracting prescription text for %s: %v", userEmail, err)
		http.Error(w, "Failed to extract prescription text", http.StatusInternalServerError)
		return
	}

	rec := store.PrescriptionRecord{
		UserEmail:     userEmail,
		FilePath:      filePath,
		ExtractedText: extractedText,
	}
	if err := h.dbStore.CreatePrescription(&rec); err != nil {
		log.Printf("Error storing prescription for %s: %v", userEmail, err)
		http.Error(w, "Failed to store prescription", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Prescription uploaded and processed successfully!",
		"data":    rec,
	})
}

func (h *APIHandler) saveUpload(file io.Reader, originalName string) (string, error) {
	uploadDir := config.AppConfig.UploadDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(originalName)
	filePath := filepath.Join(uploadDir, name)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return filePath, nil
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
