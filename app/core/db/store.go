package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BriefRecord is one saved daily brief.
type BriefRecord struct {
	ID         string
	Day        string
	Scenario   string
	ReportPath string
	Markdown   string
	CreatedAt  time.Time
}

// Pick is one recommended product attached to a brief.
type Pick struct {
	Position     int
	Title        string
	Price        *float64
	Prime        bool
	DeliveryDays *int
	URL          string
}

// BriefStore persists brief history and the picks each brief surfaced.
type BriefStore struct {
	db  *DB
	now func() time.Time
}

func NewBriefStore(database *DB) *BriefStore {
	return &BriefStore{db: database, now: time.Now}
}

// Save records a rendered brief and its picks, returning the brief id.
func (s *BriefStore) Save(record BriefRecord, picks []Pick) (string, error) {
	if record.Day == "" {
		return "", fmt.Errorf("brief day is required")
	}
	id := uuid.NewString()

	tx, err := s.db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("begin save brief: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
INSERT INTO briefs (id, day, scenario, report_path, markdown, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		id, record.Day, record.Scenario, record.ReportPath, record.Markdown, s.now().Unix()); err != nil {
		return "", fmt.Errorf("insert brief: %w", err)
	}

	for i, p := range picks {
		if _, err := tx.Exec(`
INSERT INTO brief_picks (id, brief_id, position, title, price, prime, delivery_days, url)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), id, i, p.Title, nullFloat(p.Price), boolInt(p.Prime), nullInt(p.DeliveryDays), p.URL); err != nil {
			return "", fmt.Errorf("insert pick: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit brief: %w", err)
	}
	return id, nil
}

// ByDay returns the most recent brief saved for a calendar day, or nil
// when none exists.
func (s *BriefStore) ByDay(day string) (*BriefRecord, error) {
	row := s.db.conn.QueryRow(`
SELECT id, day, scenario, report_path, markdown, created_at
FROM briefs WHERE day = ? ORDER BY created_at DESC LIMIT 1`, day)
	record, err := scanBrief(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query brief by day: %w", err)
	}
	return &record, nil
}

// Recent returns up to limit briefs, newest first.
func (s *BriefStore) Recent(limit int) ([]BriefRecord, error) {
	if limit <= 0 {
		limit = 7
	}
	rows, err := s.db.conn.Query(`
SELECT id, day, scenario, report_path, markdown, created_at
FROM briefs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent briefs: %w", err)
	}
	defer rows.Close()

	var records []BriefRecord
	for rows.Next() {
		record, err := scanBrief(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brief: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Picks returns the picks attached to a brief in display order.
func (s *BriefStore) Picks(briefID string) ([]Pick, error) {
	rows, err := s.db.conn.Query(`
SELECT position, title, price, prime, delivery_days, url
FROM brief_picks WHERE brief_id = ? ORDER BY position ASC`, briefID)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	var picks []Pick
	for rows.Next() {
		var (
			p     Pick
			price sql.NullFloat64
			days  sql.NullInt64
			prime int
		)
		if err := rows.Scan(&p.Position, &p.Title, &price, &prime, &days, &p.URL); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		if price.Valid {
			v := price.Float64
			p.Price = &v
		}
		if days.Valid {
			v := int(days.Int64)
			p.DeliveryDays = &v
		}
		p.Prime = prime != 0
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBrief(row rowScanner) (BriefRecord, error) {
	var (
		record    BriefRecord
		createdAt int64
	)
	if err := row.Scan(&record.ID, &record.Day, &record.Scenario, &record.ReportPath, &record.Markdown, &createdAt); err != nil {
		return BriefRecord{}, err
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	return record, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
