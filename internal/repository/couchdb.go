package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"
)

// Timestamps are stored as fixed width UTC strings so Mango sorts them
// lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	docTypeNote       = "note"
	docTypeFolder     = "folder"
	docTypeFlashcard  = "flashcard"
	docTypeQuiz       = "quiz"
	docTypeExamResult = "exam_result"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

const (
	indexByOwner  = "by-owner"
	indexByFolder = "by-folder"
	indexByNote   = "by-note"
)

type index struct {
	name   string
	fields []string
}

var indexes = []index{
	{name: indexByOwner, fields: []string{"doc_type", "student_id", "course_id", "created_at"}},
	{name: indexByFolder, fields: []string{"doc_type", "folder_id", "created_at"}},
	{name: indexByNote, fields: []string{"doc_type", "note_id", "created_at"}},
}

// EnsureIndexes creates the Mango indexes used by the sorted queries in
// this package. Creating an existing index is a no-op in CouchDB.
func EnsureIndexes(ctx context.Context, client *kivik.Client, dbName string) error {
	db := client.DB(dbName)
	for _, idx := range indexes {
		definition := map[string]interface{}{"fields": idx.fields}
		if err := db.CreateIndex(ctx, idx.name, idx.name, definition); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// findPageSize bounds each Mango request. CouchDB answers a query without a
// limit with at most 25 rows, so unbounded queries are read page by page.
const findPageSize = 200

// findDocs runs a Mango query and scans every matching row into T. A query
// that sets its own "limit" is sent once as given.
func findDocs[T any](ctx context.Context, db *kivik.DB, query map[string]interface{}) ([]T, error) {
	if _, bounded := query["limit"]; bounded {
		return findPage[T](ctx, db, query)
	}

	var docs []T
	for skip := 0; ; skip += findPageSize {
		page, err := findPage[T](ctx, db, pageQuery(query, skip))
		if err != nil {
			return nil, err
		}
		docs = append(docs, page...)
		if len(page) < findPageSize {
			return docs, nil
		}
	}
}

// pageQuery copies query with an explicit limit and offset.
func pageQuery(query map[string]interface{}, skip int) map[string]interface{} {
	paged := make(map[string]interface{}, len(query)+2)
	for k, v := range query {
		paged[k] = v
	}
	paged["limit"] = findPageSize
	paged["skip"] = skip
	return paged
}

func findPage[T any](ctx context.Context, db *kivik.DB, query map[string]interface{}) ([]T, error) {
	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []T
	for rows.Next() {
		var doc T
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func sortBy(direction string, fields ...string) []interface{} {
	sort := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		sort = append(sort, map[string]string{f: direction})
	}
	return sort
}

func useIndex(name string) []string {
	return []string{name, name}
}

func isNotFound(err error) bool {
	return kivik.HTTPStatus(err) == 404
}
