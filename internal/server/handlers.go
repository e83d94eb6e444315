package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vendorwatch/internal/analysis"
	"vendorwatch/internal/analytics"
	"vendorwatch/internal/auth"
	"vendorwatch/internal/database"
	"vendorwatch/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps the error taxonomy onto HTTP statuses. Parse and
// validation failures are upstream payload problems, hence 502.
func statusForError(err error) int {
	var parseErr *analysis.ParseError
	var validationErr *analysis.ValidationError
	switch {
	case errors.Is(err, analysis.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrConnectivity):
		return http.StatusBadGateway
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		return http.StatusBadGateway
	case errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrAuth):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// --- Auth ---

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := s.auth.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			writeError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, token, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.auth.Logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, currentUser(r))
}

// --- Settings ---

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	switch r.Method {
	case http.MethodGet:
		settings, err := s.userSettings(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var settings model.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if settings.Provider != model.ProviderGemini && settings.Provider != model.ProviderOllama {
			writeError(w, http.StatusBadRequest, "provider must be 'gemini' or 'ollama'")
			return
		}
		if settings.PostureWeight < 0 || settings.PostureWeight > 100 ||
			settings.ExposureWeight < 0 || settings.ExposureWeight > 100 {
			writeError(w, http.StatusBadRequest, "weights must be between 0 and 100")
			return
		}
		if err := s.db.SaveSettings(user.ID, &settings); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// userSettings returns the user's saved settings, or the configured
// defaults when nothing was saved yet.
func (s *Server) userSettings(userID int64) (model.Settings, error) {
	saved, err := s.db.GetSettings(userID)
	if err != nil {
		return model.Settings{}, err
	}
	if saved == nil {
		return s.cfg.DefaultSettings(), nil
	}
	return *saved, nil
}

// --- Analysis ---

type analyzeRequest struct {
	Domain     string         `json:"domain"`
	VendorName string         `json:"vendor_name"`
	ScanType   model.ScanType `json:"scan_type"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}
	if req.ScanType == "" {
		req.ScanType = model.ScanFull
	}
	if !req.ScanType.Valid() {
		writeError(w, http.StatusBadRequest, "scan_type must be 'quick' or 'full'")
		return
	}

	settings, err := s.userSettings(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, sources, err := s.analyzer.Analyze(r.Context(), req.Domain, req.ScanType, settings)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	vendorName := req.VendorName
	if vendorName == "" {
		vendorName = req.Domain
	}

	report := &model.Report{
		UserID:     user.ID,
		Domain:     req.Domain,
		VendorName: vendorName,
		Result:     *result,
		Sources:    sources,
		Timestamp:  time.Now().UnixMilli(),
		ScanType:   req.ScanType,
	}
	saved, err := s.db.SaveReport(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

type bulkAnalyzeRequest struct {
	Vendors  []analysis.Target `json:"vendors"`
	ScanType model.ScanType    `json:"scan_type"`
}

type bulkAnalyzeResponse struct {
	Reports []model.Report `json:"reports"`
	Error   string         `json:"error,omitempty"`
}

func (s *Server) handleBulkAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	var req bulkAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Vendors) == 0 {
		writeError(w, http.StatusBadRequest, "vendors list is required")
		return
	}
	if req.ScanType == "" {
		req.ScanType = model.ScanQuick
	}
	if !req.ScanType.Valid() {
		writeError(w, http.StatusBadRequest, "scan_type must be 'quick' or 'full'")
		return
	}

	settings, err := s.userSettings(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	saved, runErr := s.bulk.Run(r.Context(), user.ID, req.Vendors, req.ScanType, settings)
	if saved == nil {
		saved = []model.Report{}
	}

	resp := bulkAnalyzeResponse{Reports: saved}
	if runErr != nil {
		resp.Error = runErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Reports ---

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	switch r.Method {
	case http.MethodGet:
		reports, err := s.db.GetAllReportsForUser(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if reports == nil {
			reports = []model.Report{}
		}
		writeJSON(w, http.StatusOK, reports)

	case http.MethodDelete:
		if err := s.db.ClearAllReportsForUser(user.ID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleReport handles /api/reports/{id} and /api/reports/{id}/contract.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	idStr := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	parts := strings.SplitN(idStr, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	if len(parts) > 1 {
		if parts[1] == "contract" && r.Method == http.MethodPost {
			s.handleContractAnalysis(w, r, user, id)
			return
		}
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		report, err := s.db.GetReportByID(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if report == nil || report.UserID != user.ID {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeJSON(w, http.StatusOK, report)

	case http.MethodDelete:
		report, err := s.db.GetReportByID(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if report != nil && report.UserID != user.ID {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		if err := s.db.DeleteReport(id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type contractRequest struct {
	ContractText string `json:"contract_text"`
}

// handleContractAnalysis attaches a contract review to an existing
// report, re-saving it under the same id.
func (s *Server) handleContractAnalysis(w http.ResponseWriter, r *http.Request, user *model.User, reportID int64) {
	var req contractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ContractText == "" {
		writeError(w, http.StatusBadRequest, "contract_text is required")
		return
	}

	report, err := s.db.GetReportByID(reportID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil || report.UserID != user.ID {
		writeError(w, statusForError(database.ErrNotFound), "report not found")
		return
	}

	settings, err := s.userSettings(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contract, err := s.analyzer.AnalyzeContract(r.Context(), req.ContractText, settings)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	report.ContractAnalysis = contract
	saved, err := s.db.SaveReport(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// --- Analytics ---

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	reports, err := s.db.GetAllReportsForUser(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analytics.Compute(reports))
}
