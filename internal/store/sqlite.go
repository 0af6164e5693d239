package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pgauin01/hustlebot/internal/model"
)

// SQLiteStore backs all persistence: seen-job history, qualified matches,
// the application tracker, and generated artifacts, in one database file.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS seen_jobs (
		job_id     TEXT PRIMARY KEY,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		job_id       TEXT PRIMARY KEY,
		source       TEXT NOT NULL,
		title        TEXT NOT NULL,
		company      TEXT,
		description  TEXT,
		url          TEXT,
		budget_min   REAL,
		budget_max   REAL,
		currency     TEXT,
		skills       TEXT,
		location     TEXT,
		is_remote    INTEGER NOT NULL DEFAULT 0,
		posted_at    DATETIME,
		score        INTEGER NOT NULL DEFAULT 0,
		reasoning    TEXT,
		gap_analysis TEXT,
		saved_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		job_id       TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		company      TEXT,
		platform     TEXT,
		url          TEXT,
		applied_date DATETIME DEFAULT CURRENT_TIMESTAMP,
		status       TEXT NOT NULL,
		notes        TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS artifacts (
		job_id     TEXT NOT NULL,
		kind       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (job_id, kind)
	)`,
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// all tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// SeenIDs returns every recorded job ID.
func (s *SQLiteStore) SeenIDs() (map[string]bool, error) {
	rows, err := s.db.Query("SELECT job_id FROM seen_jobs")
	if err != nil {
		return nil, fmt.Errorf("loading seen jobs: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning seen job: %w", err)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating seen jobs: %w", err)
	}
	return seen, nil
}

// MarkSeen records a job ID as seen. If it already exists the call is a no-op.
func (s *SQLiteStore) MarkSeen(jobID string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_jobs (job_id) VALUES (?)", jobID)
	if err != nil {
		return fmt.Errorf("marking job %s as seen: %w", jobID, err)
	}
	return nil
}

// Cleanup deletes seen-job entries older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM seen_jobs WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up seen jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// SaveMatch persists a qualified job. Re-saving the same job ID is a no-op,
// so a job surviving multiple runs never duplicates.
func (s *SQLiteStore) SaveMatch(job model.Job) error {
	skills, err := json.Marshal(job.Skills)
	if err != nil {
		return fmt.Errorf("marshal skills for %s: %w", job.ID, err)
	}

	var postedAt any
	if job.PostedAt != nil {
		postedAt = job.PostedAt.UTC()
	}

	_, err = s.db.Exec(`INSERT OR IGNORE INTO matches
		(job_id, source, title, company, description, url, budget_min, budget_max,
		 currency, skills, location, is_remote, posted_at, score, reasoning, gap_analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Source, job.Title, job.Company, job.Description, job.URL,
		job.BudgetMin, job.BudgetMax, job.Currency, string(skills), job.Location,
		boolToInt(job.IsRemote), postedAt, job.RelevanceScore, job.Reasoning, job.GapAnalysis,
	)
	if err != nil {
		return fmt.Errorf("saving match %s: %w", job.ID, err)
	}
	return nil
}

// Matches returns all saved matches, highest score first.
func (s *SQLiteStore) Matches() ([]model.Job, error) {
	rows, err := s.db.Query(`SELECT job_id, source, title, company, description, url,
		budget_min, budget_max, currency, skills, location, is_remote, posted_at,
		score, reasoning, gap_analysis
		FROM matches ORDER BY score DESC, saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("loading matches: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var (
			j         model.Job
			skillsRaw sql.NullString
			postedAt  sql.NullTime
			isRemote  int
			company   sql.NullString
			desc      sql.NullString
			url       sql.NullString
			currency  sql.NullString
			location  sql.NullString
			reasoning sql.NullString
			gaps      sql.NullString
		)
		if err := rows.Scan(&j.ID, &j.Source, &j.Title, &company, &desc, &url,
			&j.BudgetMin, &j.BudgetMax, &currency, &skillsRaw, &location, &isRemote,
			&postedAt, &j.RelevanceScore, &reasoning, &gaps); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		j.Company = company.String
		j.Description = desc.String
		j.URL = url.String
		j.Currency = currency.String
		j.Location = location.String
		j.Reasoning = reasoning.String
		j.GapAnalysis = gaps.String
		j.IsRemote = isRemote != 0
		if postedAt.Valid {
			t := postedAt.Time
			j.PostedAt = &t
		}
		if skillsRaw.Valid && skillsRaw.String != "" {
			if err := json.Unmarshal([]byte(skillsRaw.String), &j.Skills); err != nil {
				return nil, fmt.Errorf("unmarshal skills for %s: %w", j.ID, err)
			}
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return jobs, nil
}

// DeleteMatch removes a saved match. Deleting a missing ID is a no-op.
func (s *SQLiteStore) DeleteMatch(jobID string) error {
	_, err := s.db.Exec("DELETE FROM matches WHERE job_id = ?", jobID)
	if err != nil {
		return fmt.Errorf("deleting match %s: %w", jobID, err)
	}
	return nil
}

// SaveApplication records that the user applied (or intends to apply) to job.
// Re-saving the same job ID keeps the original row.
func (s *SQLiteStore) SaveApplication(job model.Job, status string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO applications
		(job_id, title, company, platform, url, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, '')`,
		job.ID, job.Title, job.Company, job.Source, job.URL, status,
	)
	if err != nil {
		return fmt.Errorf("saving application %s: %w", job.ID, err)
	}
	return nil
}

// Applications returns all tracked applications, most recent first.
func (s *SQLiteStore) Applications() ([]model.Application, error) {
	rows, err := s.db.Query(`SELECT job_id, title, company, platform, url,
		applied_date, status, notes
		FROM applications ORDER BY applied_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("loading applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var (
			a        model.Application
			company  sql.NullString
			platform sql.NullString
			url      sql.NullString
			notes    sql.NullString
		)
		if err := rows.Scan(&a.JobID, &a.Title, &company, &platform, &url,
			&a.AppliedDate, &a.Status, &notes); err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		a.Company = company.String
		a.Platform = platform.String
		a.URL = url.String
		a.Notes = notes.String
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus changes an application's status and appends notes if given.
func (s *SQLiteStore) UpdateStatus(jobID, status, notes string) error {
	res, err := s.db.Exec(`UPDATE applications
		SET status = ?,
		    notes = CASE WHEN ? = '' THEN notes
		                 WHEN notes = '' OR notes IS NULL THEN ?
		                 ELSE notes || char(10) || ? END
		WHERE job_id = ?`,
		status, strings.TrimSpace(notes), notes, notes, jobID,
	)
	if err != nil {
		return fmt.Errorf("updating application %s: %w", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating application %s: %w", jobID, err)
	}
	if n == 0 {
		return fmt.Errorf("no application tracked for %s", jobID)
	}
	return nil
}

// SaveArtifact stores generated content (a proposal, a tailored resume) for a
// job. A newer artifact of the same kind replaces the old one.
func (s *SQLiteStore) SaveArtifact(jobID, kind, content string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO artifacts (job_id, kind, content)
		VALUES (?, ?, ?)`, jobID, kind, content)
	if err != nil {
		return fmt.Errorf("saving %s artifact for %s: %w", kind, jobID, err)
	}
	return nil
}

// Artifact returns the stored content for (jobID, kind), or an error when
// none exists.
func (s *SQLiteStore) Artifact(jobID, kind string) (string, error) {
	var content string
	err := s.db.QueryRow("SELECT content FROM artifacts WHERE job_id = ? AND kind = ?",
		jobID, kind).Scan(&content)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no %s artifact for %s", kind, jobID)
	}
	if err != nil {
		return "", fmt.Errorf("loading %s artifact for %s: %w", kind, jobID, err)
	}
	return content, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
