// Package store persists frame, rep, and session records in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id     TEXT PRIMARY KEY,
	source         TEXT,
	exercise       TEXT,
	forced         INTEGER NOT NULL DEFAULT 0,
	started_at     TEXT NOT NULL,
	finished_at    TEXT,
	rep_count      INTEGER NOT NULL DEFAULT 0,
	mean_score     REAL NOT NULL DEFAULT 0,
	warnings_count INTEGER NOT NULL DEFAULT 0,
	summary_json   TEXT
);

CREATE TABLE IF NOT EXISTS frames (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	frame_idx  INTEGER NOT NULL,
	time_s     REAL NOT NULL,
	exercise   TEXT NOT NULL,
	confidence REAL NOT NULL,
	phase      TEXT NOT NULL,
	knee_avg   REAL NOT NULL,
	elbow_avg  REAL NOT NULL,
	rep_count  INTEGER NOT NULL,
	score      REAL NOT NULL,
	warnings   TEXT,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS reps (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	rep_id         INTEGER NOT NULL,
	exercise       TEXT NOT NULL,
	start_s        REAL NOT NULL,
	end_s          REAL NOT NULL,
	duration_s     REAL NOT NULL,
	min_knee       REAL NOT NULL,
	min_elbow      REAL NOT NULL,
	mean_score     REAL NOT NULL,
	warnings_count INTEGER NOT NULL,
	top_warning    TEXT,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region records

// SessionRecord is one session row.
type SessionRecord struct {
	SessionID     string
	Source        string
	Exercise      string
	Forced        bool
	StartedAt     time.Time
	FinishedAt    time.Time
	RepCount      int
	MeanScore     float64
	WarningsCount int
	SummaryJSON   string
}

// FrameRecord is one per-frame row, suitable for row-oriented logging.
type FrameRecord struct {
	SessionID  string
	FrameIndex int
	TimeS      float64
	Exercise   string
	Confidence float64
	Phase      string
	KneeAvg    float64
	ElbowAvg   float64
	RepCount   int
	Score      float64
	Warnings   string // semicolon-joined
}

// RepRecord is one per-rep aggregation row, emitted when the count
// increases.
type RepRecord struct {
	SessionID     string
	RepID         int
	Exercise      string
	StartS        float64
	EndS          float64
	DurationS     float64
	MinKnee       float64
	MinElbow      float64
	MeanScore     float64
	WarningsCount int
	TopWarning    string
}

// #endregion records

// #region store

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for read-only tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region sessions

// BeginSession inserts the session row at start time.
func (s *Store) BeginSession(rec SessionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, source, exercise, forced, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, nullIfEmpty(rec.Source), nullIfEmpty(rec.Exercise),
		boolToInt(rec.Forced), rec.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FinishSession writes the final aggregates and summary JSON.
func (s *Store) FinishSession(rec SessionRecord) error {
	res, err := s.db.Exec(
		`UPDATE sessions
		 SET exercise = ?, finished_at = ?, rep_count = ?, mean_score = ?,
		     warnings_count = ?, summary_json = ?
		 WHERE session_id = ?`,
		nullIfEmpty(rec.Exercise), rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.RepCount, rec.MeanScore, rec.WarningsCount,
		nullIfEmpty(rec.SummaryJSON), rec.SessionID,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("finish session: unknown session %s", rec.SessionID)
	}
	return nil
}

// GetSession retrieves one session row.
func (s *Store) GetSession(sessionID string) (SessionRecord, error) {
	var rec SessionRecord
	var source, exercise, finished, summary sql.NullString
	var forced int
	var started string

	err := s.db.QueryRow(
		`SELECT session_id, source, exercise, forced, started_at, finished_at,
		        rep_count, mean_score, warnings_count, summary_json
		 FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&rec.SessionID, &source, &exercise, &forced, &started, &finished,
		&rec.RepCount, &rec.MeanScore, &rec.WarningsCount, &summary)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	rec.Source = source.String
	rec.Exercise = exercise.String
	rec.Forced = forced != 0
	rec.SummaryJSON = summary.String
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return rec, nil
}

// ListSessions returns the most recent sessions, newest first.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT session_id FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	out := make([]SessionRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetSession(id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// #endregion sessions

// #region frames

// LogFrame appends one per-frame row.
func (s *Store) LogFrame(rec FrameRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO frames (session_id, frame_idx, time_s, exercise, confidence,
		                     phase, knee_avg, elbow_avg, rep_count, score, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.FrameIndex, rec.TimeS, rec.Exercise, rec.Confidence,
		rec.Phase, rec.KneeAvg, rec.ElbowAvg, rec.RepCount, rec.Score,
		nullIfEmpty(rec.Warnings),
	)
	if err != nil {
		return fmt.Errorf("log frame: %w", err)
	}
	return nil
}

// FramePhases returns the phase label sequence of a session in frame order.
// Used for offline agreement metrics against a labeled reference.
func (s *Store) FramePhases(sessionID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT phase FROM frames WHERE session_id = ? ORDER BY frame_idx ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query frame phases: %w", err)
	}
	defer rows.Close()

	var phases []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phases: %w", err)
	}
	return phases, nil
}

// #endregion frames

// #region reps

// LogRep appends one per-rep row.
func (s *Store) LogRep(rec RepRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO reps (session_id, rep_id, exercise, start_s, end_s, duration_s,
		                   min_knee, min_elbow, mean_score, warnings_count, top_warning)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.RepID, rec.Exercise, rec.StartS, rec.EndS, rec.DurationS,
		rec.MinKnee, rec.MinElbow, rec.MeanScore, rec.WarningsCount,
		nullIfEmpty(rec.TopWarning),
	)
	if err != nil {
		return fmt.Errorf("log rep: %w", err)
	}
	return nil
}

// ListReps returns a session's rep rows in order.
func (s *Store) ListReps(sessionID string) ([]RepRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, rep_id, exercise, start_s, end_s, duration_s,
		        min_knee, min_elbow, mean_score, warnings_count, top_warning
		 FROM reps WHERE session_id = ? ORDER BY rep_id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list reps: %w", err)
	}
	defer rows.Close()

	var out []RepRecord
	for rows.Next() {
		var rec RepRecord
		var topWarning sql.NullString
		if err := rows.Scan(&rec.SessionID, &rec.RepID, &rec.Exercise,
			&rec.StartS, &rec.EndS, &rec.DurationS, &rec.MinKnee, &rec.MinElbow,
			&rec.MeanScore, &rec.WarningsCount, &topWarning); err != nil {
			return nil, fmt.Errorf("scan rep: %w", err)
		}
		rec.TopWarning = topWarning.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reps: %w", err)
	}
	return out, nil
}

// #endregion reps

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
