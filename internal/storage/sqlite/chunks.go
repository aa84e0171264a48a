package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lecternhq/lectern/internal/core"
)

// candidateFactor controls KNN over-fetch when course/lesson filters apply:
// vec0 cannot constrain joined columns inside a MATCH, so we fetch a wider
// candidate set and filter afterwards.
const candidateFactor = 20

type ChunksRepo struct {
	db *sql.DB
}

func NewChunksRepo(db *sql.DB) *ChunksRepo {
	return &ChunksRepo{db: db}
}

func (r *ChunksRepo) AddChunks(ctx context.Context, chunks []core.CourseChunk, vecs [][]float32) error {
	if len(chunks) != len(vecs) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vecs))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, chunk := range chunks {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (course_title, lesson_number, lesson_link, chunk_index, content)
			 VALUES (?, ?, ?, ?, ?)`,
			chunk.CourseTitle, chunk.LessonNumber, chunk.LessonLink, chunk.ChunkIndex, chunk.Content,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		vecBlob, err := serializeVector(vecs[i])
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chunks_vec (rowid, embedding) VALUES (?, ?)`, id, vecBlob)
		if err != nil {
			return fmt.Errorf("failed to insert chunk vector: %w", err)
		}
	}

	return tx.Commit()
}

// Search runs a KNN query over chunk embeddings, optionally scoped to a
// course title (exact, already resolved) and lesson number. Results come
// back in ascending distance order.
func (r *ChunksRepo) Search(ctx context.Context, vec []float32, courseTitle string, lessonNumber int, limit int) (core.SearchResults, error) {
	vecBlob, err := serializeVector(vec)
	if err != nil {
		return core.SearchResults{}, err
	}

	filtered := courseTitle != "" || lessonNumber != core.NoLesson
	k := limit
	if filtered {
		k = limit * candidateFactor
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.content, c.course_title, c.lesson_number, c.lesson_link, v.distance
		FROM chunks_vec v
		JOIN chunks c ON c.id = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`, vecBlob, k)
	if err != nil {
		return core.SearchResults{}, fmt.Errorf("content search failed: %w", err)
	}
	defer rows.Close()

	var results core.SearchResults
	for rows.Next() {
		var content string
		var meta core.ChunkMetadata
		var lessonLink sql.NullString
		var distance float64
		if err := rows.Scan(&content, &meta.CourseTitle, &meta.LessonNumber, &lessonLink, &distance); err != nil {
			return core.SearchResults{}, fmt.Errorf("failed to scan chunk: %w", err)
		}
		meta.LessonLink = lessonLink.String

		if courseTitle != "" && meta.CourseTitle != courseTitle {
			continue
		}
		if lessonNumber != core.NoLesson && meta.LessonNumber != lessonNumber {
			continue
		}

		results.Documents = append(results.Documents, content)
		results.Metadata = append(results.Metadata, meta)
		if len(results.Documents) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return core.SearchResults{}, err
	}

	return results, nil
}
