package storage

import (
	"database/sql"
	"fmt"
	"time"

	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/utils"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) *SQLiteStore {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := db.Exec("PRAGMA synchronous = OFF;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.recreateTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) recreateTables() error {
	if _, err := d.DB.Exec("DROP TABLE IF EXISTS bucket_records"); err != nil {
		return fmt.Errorf("failed to drop bucket_records: %w", err)
	}

	query := `
		CREATE TABLE bucket_records (
			channel TEXT,
			start_time INTEGER,
			end_time INTEGER,
			minimum REAL,
			maximum REAL,
			first_val REAL,
			last_val REAL,
			average REAL,
			samples INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (channel, start_time)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create bucket_records: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Append inserts the bucket; a second bucket for the same minute is merged
// into the first. The channel is then trimmed to Storage.MaxBuckets rows.
func (d *SQLiteStore) Append(record models.MBucketRecord) error {
	if record.Channel == "" {
		return fmt.Errorf("bucket record without channel")
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO bucket_records (channel, start_time, end_time, minimum, maximum, first_val, last_val, average, samples, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (channel, start_time) DO UPDATE SET
			minimum = MIN(minimum, excluded.minimum),
			maximum = MAX(maximum, excluded.maximum),
			last_val = excluded.last_val,
			average = (average * MAX(samples, 1) + excluded.average * MAX(excluded.samples, 1)) / (MAX(samples, 1) + MAX(excluded.samples, 1)),
			samples = samples + excluded.samples
	`, record.Channel, record.StartTime, record.EndTime, record.Minimum, record.Maximum,
		record.First, record.Last, record.Average, record.Count, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert %s bucket: %w", record.Channel, err)
	}

	_, err = tx.Exec(`
		DELETE FROM bucket_records
		WHERE channel = ? AND start_time <= (
			SELECT start_time FROM bucket_records
			WHERE channel = ?
			ORDER BY start_time DESC
			LIMIT 1 OFFSET ?
		)
	`, record.Channel, record.Channel, d.Config.Storage.MaxBuckets)
	if err != nil {
		return fmt.Errorf("failed to trim %s buckets: %w", record.Channel, err)
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// Query resamples minute rows in SQL, newest limit buckets, oldest first.
func (d *SQLiteStore) Query(channel string, bucketSeconds int64, limit int) ([]models.MBucketRecord, error) {
	if limit <= 0 {
		return []models.MBucketRecord{}, nil
	}
	bucketSeconds = max(bucketSeconds, utils.MinuteSeconds)

	rows, err := d.DB.Query(`
		WITH b AS (
			SELECT start_time - (start_time % ?) AS bucket, start_time, minimum, maximum, first_val, last_val, average, samples
			FROM bucket_records
			WHERE channel = ?
		), g AS (
			SELECT bucket,
				MIN(minimum) AS minimum,
				MAX(maximum) AS maximum,
				SUM(average * MAX(samples, 1)) / SUM(MAX(samples, 1)) AS average,
				SUM(samples) AS samples,
				MIN(start_time) AS first_start,
				MAX(start_time) AS last_start
			FROM b
			GROUP BY bucket
		)
		SELECT g.bucket, g.minimum, g.maximum,
			(SELECT first_val FROM b WHERE b.start_time = g.first_start),
			(SELECT last_val FROM b WHERE b.start_time = g.last_start),
			g.average, g.samples
		FROM g
		ORDER BY g.bucket DESC
		LIMIT ?
	`, bucketSeconds, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s buckets: %w", channel, err)
	}
	defer rows.Close()

	var out []models.MBucketRecord
	for rows.Next() {
		r := models.MBucketRecord{Channel: channel}
		if err := rows.Scan(&r.StartTime, &r.Minimum, &r.Maximum, &r.First, &r.Last, &r.Average, &r.Count); err != nil {
			return nil, err
		}
		r.EndTime = r.StartTime + bucketSeconds
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest first from SQL
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []models.MBucketRecord{}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
