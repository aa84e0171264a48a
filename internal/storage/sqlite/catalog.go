package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lecternhq/lectern/internal/core"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) AddCourse(ctx context.Context, course core.Course, titleVec []float32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	vecBlob, err := serializeVector(titleVec)
	if err != nil {
		return err
	}

	// 1. Insert course metadata
	res, err := tx.ExecContext(ctx,
		`INSERT INTO courses (title, link, instructor) VALUES (?, ?, ?)`,
		course.Title, course.Link, course.Instructor,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// 2. Insert lessons
	for _, lesson := range course.Lessons {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO lessons (course_id, number, title, link) VALUES (?, ?, ?, ?)`,
			id, lesson.Number, lesson.Title, lesson.Link,
		)
		if err != nil {
			return fmt.Errorf("failed to insert lesson %d: %w", lesson.Number, err)
		}
	}

	// 3. Insert title vector keyed by the course rowid
	_, err = tx.ExecContext(ctx,
		`INSERT INTO course_titles_vec (rowid, embedding) VALUES (?, ?)`,
		id, vecBlob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert title vector: %w", err)
	}

	return tx.Commit()
}

func (r *CatalogRepo) GetCourse(ctx context.Context, title string) (*core.Course, error) {
	var course core.Course
	var id int64
	var link, instructor sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, link, instructor FROM courses WHERE title = ?`, title,
	).Scan(&id, &course.Title, &link, &instructor)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query course: %w", err)
	}
	course.Link = link.String
	course.Instructor = instructor.String

	rows, err := r.db.QueryContext(ctx,
		`SELECT number, title, link FROM lessons WHERE course_id = ? ORDER BY number ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lesson core.Lesson
		var lessonLink sql.NullString
		if err := rows.Scan(&lesson.Number, &lesson.Title, &lessonLink); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lesson.Link = lessonLink.String
		course.Lessons = append(course.Lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &course, nil
}

// ResolveTitle finds the stored course title closest to the given name
// embedding. Returns "" when nothing lands within maxDistance.
func (r *CatalogRepo) ResolveTitle(ctx context.Context, vec []float32, maxDistance float64) (string, error) {
	vecBlob, err := serializeVector(vec)
	if err != nil {
		return "", err
	}

	var title string
	var distance float64
	err = r.db.QueryRowContext(ctx, `
		SELECT c.title, v.distance
		FROM course_titles_vec v
		JOIN courses c ON c.id = v.rowid
		WHERE v.embedding MATCH ? AND k = 1
		ORDER BY v.distance`, vecBlob,
	).Scan(&title, &distance)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("title search failed: %w", err)
	}

	if distance > maxDistance {
		return "", nil
	}
	return title, nil
}

func (r *CatalogRepo) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM courses ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer rows.Close()

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

func (r *CatalogRepo) HasCourse(ctx context.Context, title string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM courses WHERE title = ?`, title,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check course: %w", err)
	}
	return n > 0, nil
}

func (r *CatalogRepo) CourseCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM courses`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}
