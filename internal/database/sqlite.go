package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sylrest/keepsake/internal/model"
	_ "modernc.org/sqlite"
)

// Sort field names accepted by ListImages. Anything else falls back to the
// upload timestamp.
const (
	SortByUploaded = "upload_timestamp"
	SortBySize     = "file_size"
	SortByFilename = "original_filename"
)

var sortColumns = map[string]string{
	SortByUploaded: "upload_timestamp",
	SortBySize:     "file_size",
	SortByFilename: "original_filename",
}

// SQLiteDB implements Database backed by SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) an SQLite database at dsn and runs
// migrations. For in-memory use pass "file::memory:?cache=shared".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	} else if !strings.Contains(dsn, "_journal_mode") {
		dsn += "&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Images
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateImage(img *model.Image) error {
	res, err := s.db.Exec(`
		INSERT INTO images (original_filename, saved_filename, file_extension, file_size, width, height, upload_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.OriginalFilename, img.SavedFilename, img.FileExtension,
		img.FileSize, img.Width, img.Height,
		img.UploadedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	img.ID = id
	return nil
}

func (s *SQLiteDB) GetImage(id int64) (*model.Image, error) {
	row := s.db.QueryRow(`
		SELECT id, original_filename, saved_filename, file_extension, file_size, width, height, upload_timestamp
		FROM images WHERE id = ?`,
		id,
	)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return img, err
}

// ListImages builds the filtered, sorted, paginated view. The ORDER BY
// always ends with "id DESC" so records with identical sort keys cannot
// appear on two pages or be skipped between page requests.
func (s *SQLiteDB) ListImages(q ListQuery) ([]*model.Image, int, error) {
	where, args := buildImageFilter(q)

	var total int
	countQuery := "SELECT COUNT(*) FROM images" + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count images: %w", err)
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "upload_timestamp"
	}
	order := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		order = "ASC"
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	query := fmt.Sprintf(`
		SELECT id, original_filename, saved_filename, file_extension, file_size, width, height, upload_timestamp
		FROM images%s
		ORDER BY %s %s, id DESC
		LIMIT ? OFFSET ?`, where, col, order)

	rows, err := s.db.Query(query, append(args, perPage, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images, err := scanImages(rows)
	if err != nil {
		return nil, 0, err
	}
	return images, total, nil
}

// buildImageFilter assembles the shared WHERE clause for the list and count
// queries from the optional filter fields.
func buildImageFilter(q ListQuery) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q.Filename != "" {
		clauses = append(clauses, "(original_filename LIKE ? OR saved_filename LIKE ?)")
		pattern := "%" + q.Filename + "%"
		args = append(args, pattern, pattern)
	}
	if q.FileExtension != "" {
		clauses = append(clauses, "file_extension = ?")
		args = append(args, strings.ToLower(q.FileExtension))
	}
	if !q.DateFrom.IsZero() {
		clauses = append(clauses, "upload_timestamp >= ?")
		args = append(args, q.DateFrom.UTC().Format(time.RFC3339))
	}
	if !q.DateTo.IsZero() {
		clauses = append(clauses, "upload_timestamp <= ?")
		args = append(args, q.DateTo.UTC().Format(time.RFC3339))
	}
	if q.MinSize > 0 {
		clauses = append(clauses, "file_size >= ?")
		args = append(args, q.MinSize)
	}
	if q.MaxSize > 0 {
		clauses = append(clauses, "file_size <= ?")
		args = append(args, q.MaxSize)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *SQLiteDB) DeleteImage(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteDB) SavedFilenameExists(name string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM images WHERE saved_filename = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check saved filename: %w", err)
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func (s *SQLiteDB) Stats(days int) (*model.Stats, error) {
	stats := &model.Stats{}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM images`).Scan(&stats.TotalUploads); err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}

	if err := s.db.QueryRow(`SELECT COALESCE(SUM(file_size), 0) FROM images`).Scan(&stats.TotalSize); err != nil {
		return nil, fmt.Errorf("sum file sizes: %w", err)
	}

	daily, err := s.dailyCounts(days)
	if err != nil {
		return nil, err
	}
	stats.DailyUploads = daily

	rows, err := s.db.Query(`
		SELECT file_extension, COUNT(*) AS count
		FROM images
		GROUP BY file_extension
		ORDER BY count DESC, file_extension ASC`)
	if err != nil {
		return nil, fmt.Errorf("count file types: %w", err)
	}
	defer rows.Close()

	stats.FileTypes = []model.ExtensionCount{}
	for rows.Next() {
		var ec model.ExtensionCount
		if err := rows.Scan(&ec.FileExtension, &ec.Count); err != nil {
			return nil, fmt.Errorf("scan file type: %w", err)
		}
		stats.FileTypes = append(stats.FileTypes, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM errors WHERE resolved = 0`).Scan(&stats.ErrorCount); err != nil {
		return nil, fmt.Errorf("count unresolved errors: %w", err)
	}

	return stats, nil
}

// dailyCounts returns one entry per calendar day (UTC) for the last `days`
// days, ending today. Days without uploads are filled with count 0.
func (s *SQLiteDB) dailyCounts(days int) ([]model.DailyCount, error) {
	if days < 1 {
		days = 1
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))

	rows, err := s.db.Query(`
		SELECT substr(upload_timestamp, 1, 10) AS day, COUNT(*)
		FROM images
		WHERE upload_timestamp >= ?
		GROUP BY day`,
		from.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]int, days)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		byDay[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	daily := make([]model.DailyCount, 0, days)
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		daily = append(daily, model.DailyCount{Date: key, Count: byDay[key]})
	}
	return daily, nil
}

// ---------------------------------------------------------------------------
// Logs
// ---------------------------------------------------------------------------

func (s *SQLiteDB) AddLog(level, message, source, details string) error {
	_, err := s.db.Exec(`
		INSERT INTO logs (timestamp, level, message, source, details)
		VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), level, message, source, details,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListLogs(q LogQuery) ([]*model.LogEntry, int, error) {
	var clauses []string
	var args []interface{}

	if q.Level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, q.Level)
	}
	if q.Search != "" {
		clauses = append(clauses, "(message LIKE ? OR details LIKE ?)")
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}
	if !q.DateFrom.IsZero() {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, q.DateFrom.UTC().Format(time.RFC3339))
	}
	if !q.DateTo.IsZero() {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, q.DateTo.UTC().Format(time.RFC3339))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 50
	}

	rows, err := s.db.Query(`
		SELECT id, timestamp, level, message, source, details
		FROM logs`+where+`
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`,
		append(args, perPage, (page-1)*perPage)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.LogEntry
	for rows.Next() {
		e := &model.LogEntry{}
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Level, &e.Message, &e.Source, &e.Details); err != nil {
			return nil, 0, fmt.Errorf("scan log: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, ts)
		logs = append(logs, e)
	}
	return logs, total, rows.Err()
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func (s *SQLiteDB) AddError(severity, message, details string) error {
	_, err := s.db.Exec(`
		INSERT INTO errors (timestamp, severity, message, details)
		VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), severity, message, details,
	)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListErrors(page, perPage int, includeResolved bool) ([]*model.ErrorEntry, int, error) {
	where := ""
	if !includeResolved {
		where = " WHERE resolved = 0"
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM errors" + where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count errors: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	rows, err := s.db.Query(`
		SELECT id, timestamp, severity, message, details, resolved
		FROM errors`+where+`
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list errors: %w", err)
	}
	defer rows.Close()

	var entries []*model.ErrorEntry
	for rows.Next() {
		e := &model.ErrorEntry{}
		var ts string
		var resolved int
		if err := rows.Scan(&e.ID, &ts, &e.Severity, &e.Message, &e.Details, &resolved); err != nil {
			return nil, 0, fmt.Errorf("scan error: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, ts)
		e.Resolved = resolved != 0
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (s *SQLiteDB) ResolveError(id int64) (bool, error) {
	res, err := s.db.Exec(`UPDATE errors SET resolved = 1 WHERE id = ? AND resolved = 0`, id)
	if err != nil {
		return false, fmt.Errorf("resolve error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanImage(row scannable) (*model.Image, error) {
	img := &model.Image{}
	var uploadedStr string

	err := row.Scan(&img.ID, &img.OriginalFilename, &img.SavedFilename,
		&img.FileExtension, &img.FileSize, &img.Width, &img.Height, &uploadedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan image: %w", err)
	}

	img.UploadedAt, _ = time.Parse(time.RFC3339, uploadedStr)
	return img, nil
}

func scanImages(rows *sql.Rows) ([]*model.Image, error) {
	var images []*model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
