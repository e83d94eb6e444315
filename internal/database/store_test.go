package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorwatch/internal/model"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func testReport(userID int64, domain string, ts int64) *model.Report {
	return &model.Report{
		UserID:     userID,
		Domain:     domain,
		VendorName: "Vendor " + domain,
		ScanType:   model.ScanFull,
		Timestamp:  ts,
		Sources:    []model.Source{{Title: "src", URI: "https://" + domain}},
		Result: model.AnalysisResult{
			VendorName:           "Vendor " + domain,
			OverallScore:         74.0,
			SecurityPostureScore: 80,
			ThreatExposureScore:  60,
			Summary:              "summary",
			RiskFactors: []model.RiskFactor{
				{Name: "Known Breach", Score: 70, Summary: "none found"},
			},
		},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, path := openTestDB(t)

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, len(migrations), version)
	db.Close()

	// Reopening at the current version must be a no-op.
	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, len(migrations), version)
}

func TestAddUserDuplicateEmail(t *testing.T) {
	db, _ := openTestDB(t)

	user, err := db.AddUser("a@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = db.AddUser("a@example.com", "otherhash")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestGetUserLookups(t *testing.T) {
	db, _ := openTestDB(t)

	created, err := db.AddUser("a@example.com", "hash")
	require.NoError(t, err)

	byEmail, err := db.GetUserByEmail("a@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := db.GetUserByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "a@example.com", byID.Email)

	// Misses return absent, not an error.
	missing, err := db.GetUserByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveReportRoundTrip(t *testing.T) {
	db, _ := openTestDB(t)
	user, err := db.AddUser("a@example.com", "hash")
	require.NoError(t, err)

	saved, err := db.SaveReport(testReport(user.ID, "acme.example", 1700000000000))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	fetched, err := db.GetReportByID(saved.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, saved.ID, fetched.ID)
	assert.Equal(t, saved.Domain, fetched.Domain)
	assert.Equal(t, saved.Timestamp, fetched.Timestamp)
	assert.Equal(t, saved.Result, fetched.Result)
	assert.Equal(t, saved.Sources, fetched.Sources)
	assert.Nil(t, fetched.ContractAnalysis)
}

func TestSaveReportOverwritesInPlace(t *testing.T) {
	db, _ := openTestDB(t)
	user, err := db.AddUser("a@example.com", "hash")
	require.NoError(t, err)

	saved, err := db.SaveReport(testReport(user.ID, "acme.example", 1700000000000))
	require.NoError(t, err)

	saved.ContractAnalysis = &model.ContractAnalysisResult{
		Strengths:         []string{"audit rights"},
		Weaknesses:        []string{"liability cap"},
		OverallAssessment: "Moderate",
	}
	resaved, err := db.SaveReport(saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, resaved.ID)

	count, err := db.CountReports()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fetched, err := db.GetReportByID(saved.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ContractAnalysis)
	assert.Equal(t, "Moderate", fetched.ContractAnalysis.OverallAssessment)
}

func TestGetAllReportsForUserSortedDescending(t *testing.T) {
	db, _ := openTestDB(t)
	user, err := db.AddUser("a@example.com", "hash")
	require.NoError(t, err)

	for _, ts := range []int64{1000, 3000, 2000} {
		_, err := db.SaveReport(testReport(user.ID, "acme.example", ts))
		require.NoError(t, err)
	}

	reports, err := db.GetAllReportsForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, int64(3000), reports[0].Timestamp)
	assert.Equal(t, int64(2000), reports[1].Timestamp)
	assert.Equal(t, int64(1000), reports[2].Timestamp)
}

func TestClearAllReportsForUserScoped(t *testing.T) {
	db, _ := openTestDB(t)
	alice, err := db.AddUser("alice@example.com", "hash")
	require.NoError(t, err)
	bob, err := db.AddUser("bob@example.com", "hash")
	require.NoError(t, err)

	for i := int64(0); i < 3; i++ {
		_, err := db.SaveReport(testReport(alice.ID, "acme.example", 1000+i))
		require.NoError(t, err)
	}
	_, err = db.SaveReport(testReport(bob.ID, "other.example", 5000))
	require.NoError(t, err)

	require.NoError(t, db.ClearAllReportsForUser(alice.ID))

	aliceReports, err := db.GetAllReportsForUser(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceReports)

	bobReports, err := db.GetAllReportsForUser(bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobReports, 1)
}

func TestDeleteReportMissingIsNoop(t *testing.T) {
	db, _ := openTestDB(t)
	require.NoError(t, db.DeleteReport(12345))
}

func TestSettingsRoundTrip(t *testing.T) {
	db, _ := openTestDB(t)
	user, err := db.AddUser("a@example.com", "hash")
	require.NoError(t, err)

	// Nothing saved yet.
	settings, err := db.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Nil(t, settings)

	want := &model.Settings{
		Provider:       model.ProviderOllama,
		OllamaModel:    "llama3",
		OllamaURL:      "http://localhost:11434",
		PostureWeight:  60,
		ExposureWeight: 40,
	}
	require.NoError(t, db.SaveSettings(user.ID, want))

	got, err := db.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Saving again updates rather than duplicates.
	want.PostureWeight = 80
	require.NoError(t, db.SaveSettings(user.ID, want))
	got, err = db.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.PostureWeight)
}
