// Package store persists the course catalog and embedded chunks in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	_ "modernc.org/sqlite"

	"courserag/internal/model"
)

type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

var _ model.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS courses (
  course_id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL UNIQUE,
  link TEXT NOT NULL DEFAULT '',
  instructor TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS lessons (
  course_id INTEGER NOT NULL,
  lesson_number INTEGER NOT NULL,
  title TEXT NOT NULL,
  link TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (course_id, lesson_number)
);

CREATE TABLE IF NOT EXISTS chunks (
  chunk_id INTEGER PRIMARY KEY AUTOINCREMENT,
  course_title TEXT NOT NULL,
  lesson_number INTEGER NOT NULL DEFAULT 0,
  chunk_index INTEGER NOT NULL DEFAULT 0,
  content TEXT NOT NULL,
  embedding BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_course_title ON chunks(course_title);
CREATE INDEX IF NOT EXISTS idx_lessons_course_id ON lessons(course_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) ensureDB(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		if err := s.Init(ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
		db = s.db
		s.mu.Unlock()
	}
	if db == nil {
		return nil, model.ErrStoreNotReady
	}
	return db, nil
}

// UpsertCourse writes the course row and replaces its lesson list in one
// transaction.
func (s *SQLiteStore) UpsertCourse(ctx context.Context, course model.Course) (int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO courses(title, link, instructor) VALUES(?, ?, ?)
		 ON CONFLICT(title) DO UPDATE SET
		   link=excluded.link,
		   instructor=excluded.instructor`,
		course.Title, course.Link, course.Instructor,
	); err != nil {
		return 0, err
	}

	var courseID int64
	if err := tx.QueryRowContext(ctx, `SELECT course_id FROM courses WHERE title = ?`, course.Title).Scan(&courseID); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE course_id = ?`, courseID); err != nil {
		return 0, err
	}
	for _, lesson := range course.Lessons {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO lessons(course_id, lesson_number, title, link) VALUES(?, ?, ?, ?)`,
			courseID, lesson.Number, lesson.Title, lesson.Link,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return courseID, nil
}

func (s *SQLiteStore) GetCourseByTitle(ctx context.Context, title string) (model.Course, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return model.Course{}, err
	}

	var course model.Course
	var courseID int64
	err = db.QueryRowContext(
		ctx,
		`SELECT course_id, title, link, instructor FROM courses WHERE title = ?`,
		title,
	).Scan(&courseID, &course.Title, &course.Link, &course.Instructor)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Course{}, model.ErrNotFound
	}
	if err != nil {
		return model.Course{}, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT lesson_number, title, link FROM lessons WHERE course_id = ? ORDER BY lesson_number`,
		courseID,
	)
	if err != nil {
		return model.Course{}, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var lesson model.Lesson
		if err := rows.Scan(&lesson.Number, &lesson.Title, &lesson.Link); err != nil {
			return model.Course{}, err
		}
		course.Lessons = append(course.Lessons, lesson)
	}
	return course, rows.Err()
}

func (s *SQLiteStore) ListCourseTitles(ctx context.Context) ([]string, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT title FROM courses ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func (s *SQLiteStore) CourseCount(ctx context.Context) (int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	return count, err
}

func (s *SQLiteStore) InsertChunk(ctx context.Context, chunk model.CourseChunk, embedding []float32) (int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}
	if len(embedding) == 0 {
		return 0, errors.New("embedding is required")
	}

	res, err := db.ExecContext(
		ctx,
		`INSERT INTO chunks(course_title, lesson_number, chunk_index, content, embedding)
		 VALUES(?, ?, ?, ?, ?)`,
		chunk.CourseTitle, chunk.LessonNumber, chunk.ChunkIndex, chunk.Content, encodeVector(embedding),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListChunks(ctx context.Context) ([]model.StoredChunk, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT chunk_id, course_title, lesson_number, chunk_index, content, embedding
		 FROM chunks ORDER BY chunk_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []model.StoredChunk
	for rows.Next() {
		var stored model.StoredChunk
		var blob []byte
		if err := rows.Scan(
			&stored.ChunkID,
			&stored.Chunk.CourseTitle,
			&stored.Chunk.LessonNumber,
			&stored.Chunk.ChunkIndex,
			&stored.Chunk.Content,
			&blob,
		); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", stored.ChunkID, err)
		}
		stored.Embedding = vec
		chunks = append(chunks, stored)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM chunks; DELETE FROM lessons; DELETE FROM courses;`)
	return err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// encodeVector packs float32s as little-endian bytes for BLOB storage.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, errors.New("malformed embedding blob")
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
