package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

type catalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(pool *pgxpool.Pool) ports.CatalogRepository {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) ReplaceLabelSet(ctx context.Context, ls *domain.LabelSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace label set: %w", err)
	}
	defer tx.Rollback(ctx)

	// sample rows cascade
	if _, err := tx.Exec(ctx, `DELETE FROM category`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	categoryRows := make([][]interface{}, 0, len(ls.Categories))
	var sampleRows [][]interface{}
	for ci, c := range ls.Categories {
		categoryRows = append(categoryRows, []interface{}{ci, c.Name})
		for si, s := range c.Samples {
			labelsJSON, err := json.Marshal(s.PartLabels)
			if err != nil {
				return fmt.Errorf("marshal part labels: %w", err)
			}
			sampleRows = append(sampleRows, []interface{}{s.UID, c.Name, si, labelsJSON})
		}
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"category"}, []string{"position", "name"},
		pgx.CopyFromRows(categoryRows),
	); err != nil {
		return fmt.Errorf("copy categories: %w", err)
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"sample"}, []string{"uid", "category", "position", "part_labels"},
		pgx.CopyFromRows(sampleRows),
	); err != nil {
		return fmt.Errorf("copy samples: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit label set: %w", err)
	}
	return nil
}

func (r *catalogRepo) LabelSet(ctx context.Context) (*domain.LabelSet, error) {
	query := `
		SELECT c.name, s.uid, s.part_labels
		FROM category c
		LEFT JOIN sample s ON s.category = c.name
		ORDER BY c.position, s.position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query label set: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var (
			name       string
			uid        *string
			labelsJSON []byte
		)
		if err := rows.Scan(&name, &uid, &labelsJSON); err != nil {
			return nil, fmt.Errorf("scan label set row: %w", err)
		}
		if len(categories) == 0 || categories[len(categories)-1].Name != name {
			categories = append(categories, domain.Category{Name: name})
		}
		if uid == nil {
			continue
		}
		s := domain.Sample{UID: *uid}
		if err := json.Unmarshal(labelsJSON, &s.PartLabels); err != nil {
			return nil, fmt.Errorf("unmarshal part labels of %s: %w", *uid, err)
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

	query := `
		INSERT INTO colorize_record
			(uid, category, status, face_count, part_count, error, duration_ms, run_id, published, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (uid) DO UPDATE SET
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			face_count = EXCLUDED.face_count,
			part_count = EXCLUDED.part_count,
			error = EXCLUDED.error,
			duration_ms = EXCLUDED.duration_ms,
			run_id = EXCLUDED.run_id,
			published = EXCLUDED.published,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		rec.UID, rec.Category, string(rec.Status), rec.FaceCount, rec.PartCount,
		rec.Error, rec.DurationMS, rec.RunID, rec.Published, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert colorize record: %w", err)
	}
	return nil
}

const recordColumns = `uid, category, status, face_count, part_count, error, duration_ms, run_id, published, updated_at`

func (r *catalogRepo) GetColorizeRecord(ctx context.Context, uid string) (*domain.ColorizeRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM colorize_record WHERE uid = $1`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrColorizeRecordNotFound
		}
		return nil, fmt.Errorf("get colorize record: %w", err)
	}
	return rec, nil
}

func (r *catalogRepo) ListColorizeRecords(ctx context.Context, filter ports.ColorizeRecordFilter) ([]*domain.ColorizeRecord, int, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, filter.Category)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM colorize_record WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count colorize records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM colorize_record
		WHERE %s
		ORDER BY uid
		LIMIT $%d OFFSET $%d
	`, recordColumns, whereClause, argPos, argPos+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
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
	return r.pool.Ping(ctx)
}

func (r *catalogRepo) Close() error {
	r.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (*domain.ColorizeRecord, error) {
	rec := &domain.ColorizeRecord{}
	var status string
	err := row.Scan(
		&rec.UID, &rec.Category, &status, &rec.FaceCount, &rec.PartCount,
		&rec.Error, &rec.DurationMS, &rec.RunID, &rec.Published, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = domain.ColorizeStatus(status)
	return rec, nil
}
