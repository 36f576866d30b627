package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mswell/internal/domain"
	"mswell/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ repository.CheckpointStore = (*Repository)(nil)

// timeLayout is fixed width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository implements repository.CheckpointStore using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		id TEXT PRIMARY KEY,
		well TEXT NOT NULL,
		segment_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS segments (
		checkpoint_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		segment INTEGER NOT NULL,
		branch INTEGER NOT NULL,
		outlet_segment INTEGER NOT NULL,
		segment_type INTEGER NOT NULL,
		dist_bhp_ref REAL NOT NULL,
		node_depth REAL NOT NULL,
		diameter REAL NOT NULL,
		roughness REAL NOT NULL,
		area REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (checkpoint_id, segment),
		FOREIGN KEY (checkpoint_id) REFERENCES checkpoints(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS segment_devices (
		checkpoint_id TEXT NOT NULL,
		segment INTEGER NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('sicd', 'valve')),
		data JSON,
		PRIMARY KEY (checkpoint_id, segment),
		FOREIGN KEY (checkpoint_id) REFERENCES checkpoints(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_checkpoints_well ON checkpoints(well, created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveWell stores a finalized segment set as a new checkpoint
func (r *Repository) SaveWell(ctx context.Context, set *domain.SegmentSet) (uuid.UUID, error) {
	if err := set.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("refusing to checkpoint well %s: %w", set.Well(), err)
	}

	segments := set.Segments()
	records := make([]domain.RstSegment, 0, len(segments))
	for _, seg := range segments {
		rst, err := seg.ToRestart()
		if err != nil {
			return uuid.Nil, fmt.Errorf("refusing to checkpoint well %s: %w", set.Well(), err)
		}
		records = append(records, rst)
	}

	id := uuid.New()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkpoints (id, well, segment_count, created_at)
		VALUES (?, ?, ?, ?)
	`, id.String(), set.Well(), len(records), r.now().UTC().Format(timeLayout))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert checkpoint: %w", err)
	}

	segStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (checkpoint_id, seq, `+segmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer segStmt.Close()

	for seq, rst := range records {
		if _, err := segStmt.ExecContext(ctx, segmentInsertArgs(id.String(), seq, rst)...); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert segment %d: %w", rst.Segment, err)
		}
	}

	for _, seg := range segments {
		args, err := deviceInsertArgs(id.String(), seg)
		if err != nil {
			return uuid.Nil, err
		}
		if args == nil {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO segment_devices (checkpoint_id, segment, kind, data)
			VALUES (?, ?, ?, ?)
		`, args...)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert device for segment %d: %w", seg.SegmentNumber(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// LoadWell restores the segment set stored under id
func (r *Repository) LoadWell(ctx context.Context, id uuid.UUID) (*domain.SegmentSet, error) {
	var well string
	err := r.db.QueryRowContext(ctx, `SELECT well FROM checkpoints WHERE id = ?`, id.String()).Scan(&well)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrCheckpointNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoint: %w", err)
	}

	segments, err := r.loadSegments(ctx, id)
	if err != nil {
		return nil, err
	}

	set, err := domain.AssembleSegmentSet(well, segments)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", id, err)
	}

	if err := r.attachDevices(ctx, id, set); err != nil {
		return nil, err
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", id, err)
	}
	return set, nil
}

func (r *Repository) loadSegments(ctx context.Context, id uuid.UUID) ([]*domain.Segment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+segmentColumns+`
		FROM segments
		WHERE checkpoint_id = ?
		ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []*domain.Segment
	for rows.Next() {
		var row segmentRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		seg, err := domain.NewSegmentFromRestart(row.toRestart())
		if err != nil {
			return nil, fmt.Errorf("checkpoint %s: %w", id, err)
		}
		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segments: %w", err)
	}
	return segments, nil
}

func (r *Repository) attachDevices(ctx context.Context, id uuid.UUID, set *domain.SegmentSet) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT segment, kind, data
		FROM segment_devices
		WHERE checkpoint_id = ?
		ORDER BY segment
	`, id.String())
	if err != nil {
		return fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []deviceRow
	for rows.Next() {
		var row deviceRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating devices: %w", err)
	}

	for i := range devices {
		if err := devices[i].attach(set); err != nil {
			return fmt.Errorf("checkpoint %s: %w", id, err)
		}
	}
	return nil
}

// LatestCheckpoint returns the most recent checkpoint of well
func (r *Repository) LatestCheckpoint(ctx context.Context, well string) (*domain.CheckpointInfo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, well, segment_count, created_at
		FROM checkpoints
		WHERE well = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, well)

	info, err := scanCheckpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no checkpoint for well %s", repository.ErrCheckpointNotFound, well)
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListCheckpoints returns all checkpoints of well, newest first. An empty
// well name lists every well.
func (r *Repository) ListCheckpoints(ctx context.Context, well string) ([]domain.CheckpointInfo, error) {
	query := `SELECT id, well, segment_count, created_at FROM checkpoints`
	var args []interface{}
	if well != "" {
		query += ` WHERE well = ?`
		args = append(args, well)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer rows.Close()

	var infos []domain.CheckpointInfo
	for rows.Next() {
		info, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoints: %w", err)
	}
	return infos, nil
}

// DeleteCheckpoint removes a checkpoint and its segment records
func (r *Repository) DeleteCheckpoint(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrCheckpointNotFound, id)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCheckpoint(row rowScanner) (domain.CheckpointInfo, error) {
	var (
		info      domain.CheckpointInfo
		createdAt string
	)
	if err := row.Scan(&info.ID, &info.Well, &info.SegmentCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, err
		}
		return info, fmt.Errorf("failed to scan checkpoint: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return info, fmt.Errorf("invalid checkpoint timestamp %q: %w", createdAt, err)
	}
	info.CreatedAt = t
	return info, nil
}
