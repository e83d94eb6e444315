package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"vendorwatch/internal/model"
)

// --- Users ---

func (db *DB) AddUser(email, passwordHash string) (*model.User, error) {
	res, err := db.Exec(
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return &model.User{ID: id, Email: email, PasswordHash: passwordHash}, nil
}

func (db *DB) GetUserByEmail(email string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRow(
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (db *DB) GetUserByID(id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRow(
		`SELECT id, email, password_hash FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// --- Reports ---

// SaveReport inserts the report when it has no ID yet, otherwise it
// overwrites the existing record in place. The returned report always
// carries its assigned ID.
func (db *DB) SaveReport(r *model.Report) (*model.Report, error) {
	result, err := json.Marshal(r.Result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	sources := r.Sources
	if sources == nil {
		sources = []model.Source{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return nil, fmt.Errorf("encode sources: %w", err)
	}
	var contract sql.NullString
	if r.ContractAnalysis != nil {
		data, err := json.Marshal(r.ContractAnalysis)
		if err != nil {
			return nil, fmt.Errorf("encode contract analysis: %w", err)
		}
		contract = sql.NullString{String: string(data), Valid: true}
	}

	if r.ID == 0 {
		res, err := db.Exec(
			`INSERT INTO reports (user_id, domain, vendor_name, scan_type, timestamp, result, sources, contract_analysis)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.UserID, r.Domain, r.VendorName, r.ScanType, r.Timestamp, string(result), string(sourcesJSON), contract,
		)
		if err != nil {
			return nil, fmt.Errorf("insert report: %w", err)
		}
		r.ID, _ = res.LastInsertId()
		return r, nil
	}

	_, err = db.Exec(
		`UPDATE reports SET user_id = ?, domain = ?, vendor_name = ?, scan_type = ?, timestamp = ?, result = ?, sources = ?, contract_analysis = ?
		 WHERE id = ?`,
		r.UserID, r.Domain, r.VendorName, r.ScanType, r.Timestamp, string(result), string(sourcesJSON), contract, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	return r, nil
}

func (db *DB) GetReportByID(id int64) (*model.Report, error) {
	row := db.QueryRow(
		`SELECT id, user_id, domain, vendor_name, scan_type, timestamp, result, sources, contract_analysis
		 FROM reports WHERE id = ?`, id,
	)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

// GetAllReportsForUser returns the user's reports, newest first.
func (db *DB) GetAllReportsForUser(userID int64) ([]model.Report, error) {
	rows, err := db.Query(
		`SELECT id, user_id, domain, vendor_name, scan_type, timestamp, result, sources, contract_analysis
		 FROM reports WHERE user_id = ? ORDER BY timestamp DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (db *DB) DeleteReport(id int64) error {
	_, err := db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// ClearAllReportsForUser removes all of one user's reports and nothing else.
func (db *DB) ClearAllReportsForUser(userID int64) error {
	_, err := db.Exec(`DELETE FROM reports WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("clear reports: %w", err)
	}
	return nil
}

func (db *DB) CountReports() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*model.Report, error) {
	r := &model.Report{}
	var result, sources string
	var contract sql.NullString
	err := row.Scan(&r.ID, &r.UserID, &r.Domain, &r.VendorName, &r.ScanType, &r.Timestamp, &result, &sources, &contract)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(result), &r.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	if contract.Valid {
		r.ContractAnalysis = &model.ContractAnalysisResult{}
		if err := json.Unmarshal([]byte(contract.String), r.ContractAnalysis); err != nil {
			return nil, fmt.Errorf("decode contract analysis: %w", err)
		}
	}
	return r, nil
}

// --- Settings ---

// GetSettings returns the user's saved settings, or nil when none were
// saved yet.
func (db *DB) GetSettings(userID int64) (*model.Settings, error) {
	s := &model.Settings{}
	err := db.QueryRow(
		`SELECT provider, ollama_model, ollama_url, posture_weight, exposure_weight
		 FROM settings WHERE user_id = ?`, userID,
	).Scan(&s.Provider, &s.OllamaModel, &s.OllamaURL, &s.PostureWeight, &s.ExposureWeight)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (db *DB) SaveSettings(userID int64, s *model.Settings) error {
	_, err := db.Exec(
		`INSERT INTO settings (user_id, provider, ollama_model, ollama_url, posture_weight, exposure_weight)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     provider = excluded.provider,
		     ollama_model = excluded.ollama_model,
		     ollama_url = excluded.ollama_url,
		     posture_weight = excluded.posture_weight,
		     exposure_weight = excluded.exposure_weight`,
		userID, s.Provider, s.OllamaModel, s.OllamaURL, s.PostureWeight, s.ExposureWeight,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
