package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

const schema = `
	PRAGMA journal_mode = WAL;
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS category (
		position INTEGER NOT NULL,
		name     TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS sample (
		uid         TEXT PRIMARY KEY,
		category    TEXT NOT NULL REFERENCES category(name),
		position    INTEGER NOT NULL,
		part_labels TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS colorize_record (
		uid         TEXT PRIMARY KEY,
		category    TEXT NOT NULL,
		status      TEXT NOT NULL,
		face_count  INTEGER NOT NULL,
		part_count  INTEGER NOT NULL,
		error       TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		run_id      TEXT NOT NULL,
		published   INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_colorize_record_status ON colorize_record(status);
`

type catalogRepo struct {
	db *sql.DB
}

// NewCatalogRepository opens (or creates) the catalog database at path
func NewCatalogRepository(path string) (ports.CatalogRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer keeps concurrent colorize workers from tripping SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &catalogRepo{db: db}, nil
}

func (r *catalogRepo) ReplaceLabelSet(ctx context.Context, ls *domain.LabelSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace label set: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sample`); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM category`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	for ci, c := range ls.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO category (position, name) VALUES (?, ?)`, ci, c.Name,
		); err != nil {
			return fmt.Errorf("insert category %s: %w", c.Name, err)
		}
		for si, s := range c.Samples {
			labels, err := json.Marshal(s.PartLabels)
			if err != nil {
				return fmt.Errorf("encode part labels: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sample (uid, category, position, part_labels) VALUES (?, ?, ?, ?)`,
				s.UID, c.Name, si, string(labels),
			); err != nil {
				return fmt.Errorf("insert sample %s: %w", s.UID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit label set: %w", err)
	}
	return nil
}

func (r *catalogRepo) LabelSet(ctx context.Context) (*domain.LabelSet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, s.uid, s.part_labels
		FROM category c
		LEFT JOIN sample s ON s.category = c.name
		ORDER BY c.position, s.position
	`)
	if err != nil {
		return nil, fmt.Errorf("query label set: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var (
			name   string
			uid    sql.NullString
			labels sql.NullString
		)
		if err := rows.Scan(&name, &uid, &labels); err != nil {
			return nil, fmt.Errorf("scan label set row: %w", err)
		}
		if len(categories) == 0 || categories[len(categories)-1].Name != name {
			categories = append(categories, domain.Category{Name: name})
		}
		if !uid.Valid {
			continue
		}
		s := domain.Sample{UID: uid.String}
		if err := json.Unmarshal([]byte(labels.String), &s.PartLabels); err != nil {
			return nil, fmt.Errorf("decode part labels of %s: %w", uid.String, err)
		}
		cur := &categories[len(categories)-1]
		cur.Samples = append(cur.Samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label set rows: %w", err)
	}

	if len(categories) == 0 {
		return nil, domain.ErrLabelSetNotLoaded
	}
	return domain.NewLabelSet(categories)
}

func (r *catalogRepo) UpsertColorizeRecord(ctx context.Context, rec *domain.ColorizeRecord) error {
	if !rec.Status.IsValid() {
		return domain.ErrInvalidStatus
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO colorize_record
			(uid, category, status, face_count, part_count, error, duration_ms, run_id, published, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			category = excluded.category,
			status = excluded.status,
			face_count = excluded.face_count,
			part_count = excluded.part_count,
			error = excluded.error,
			duration_ms = excluded.duration_ms,
			run_id = excluded.run_id,
			published = excluded.published,
			updated_at = excluded.updated_at
	`,
		rec.UID, rec.Category, string(rec.Status), rec.FaceCount, rec.PartCount,
		rec.Error, rec.DurationMS, rec.RunID.String(), rec.Published, rec.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert colorize record: %w", err)
	}
	return nil
}

const recordColumns = `uid, category, status, face_count, part_count, error, duration_ms, run_id, published, updated_at`

func (r *catalogRepo) GetColorizeRecord(ctx context.Context, uid string) (*domain.ColorizeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM colorize_record WHERE uid = ?`, uid)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrColorizeRecordNotFound
		}
		return nil, fmt.Errorf("get colorize record: %w", err)
	}
	return rec, nil
}

func (r *catalogRepo) ListColorizeRecords(ctx context.Context, filter ports.ColorizeRecordFilter) ([]*domain.ColorizeRecord, int, error) {
	conditions := []string{"1 = 1"}
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM colorize_record WHERE "+whereClause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count colorize records: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM colorize_record WHERE %s ORDER BY uid LIMIT ? OFFSET ?`,
		recordColumns, whereClause)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list colorize records: %w", err)
	}
	defer rows.Close()

	var recs []*domain.ColorizeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan colorize record row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate colorize record rows: %w", err)
	}
	return recs, total, nil
}

func (r *catalogRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *catalogRepo) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.ColorizeRecord, error) {
	var (
		rec       domain.ColorizeRecord
		status    string
		runID     string
		updatedAt int64
	)
	err := s.Scan(
		&rec.UID, &rec.Category, &status, &rec.FaceCount, &rec.PartCount,
		&rec.Error, &rec.DurationMS, &runID, &rec.Published, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = domain.ColorizeStatus(status)
	rec.RunID, _ = uuid.Parse(runID)
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &rec, nil
}
