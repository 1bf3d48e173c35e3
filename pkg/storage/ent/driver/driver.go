// Package entdriver implements storage.Driver on top of ent's SQL dialect
// layer. Queries are built with the dialect builders so the same driver
// serves SQLite and PostgreSQL.
package entdriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

// Table is the name of the papers table.
const Table = "papers"

const (
	columnID          = "id"
	columnTitle       = "title"
	columnDescription = "description"
	columnTags        = "tags"
	columnQuestions   = "questions"
	columnSource      = "source"
	columnCreatedAt   = "created_at"
)

var columns = []string{
	columnID,
	columnTitle,
	columnDescription,
	columnTags,
	columnQuestions,
	columnSource,
	columnCreatedAt,
}

// EntDriver provides storage operations using an ent SQL driver.
// It is database-agnostic and can be embedded by specific drivers.
type EntDriver struct {
	Driver *entsql.Driver
}

// schema is valid for both SQLite and PostgreSQL.
const schema = `CREATE TABLE IF NOT EXISTS papers (
	id          TEXT   NOT NULL PRIMARY KEY,
	title       TEXT   NOT NULL,
	description TEXT   NOT NULL DEFAULT '',
	tags        TEXT   NOT NULL DEFAULT '[]',
	questions   TEXT   NOT NULL,
	source      TEXT   NOT NULL DEFAULT 'local',
	created_at  BIGINT NOT NULL
)`

// Migrate creates the papers table if it doesn't exist.
func (ed *EntDriver) Migrate(ctx context.Context) error {
	if err := ed.Driver.Exec(ctx, schema, []any{}, nil); err != nil {
		return fmt.Errorf("failed to create %s table: %w", Table, err)
	}
	return nil
}

// Put stores a paper. Returns true if the paper was newly inserted,
// false if one with the same ID already existed.
func (ed *EntDriver) Put(ctx context.Context, p *paper.Paper) (bool, error) {
	if p == nil {
		return false, errors.New("cannot store nil paper")
	}
	if p.ID == "" {
		return false, errors.New("cannot store paper without id")
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return false, fmt.Errorf("failed to marshal tags: %w", err)
	}
	questionsJSON, err := json.Marshal(p.Questions)
	if err != nil {
		return false, fmt.Errorf("failed to marshal questions: %w", err)
	}

	query, args := ed.builder().Insert(Table).
		Columns(columns...).
		Values(
			p.ID,
			p.Title,
			p.Description,
			string(tagsJSON),
			string(questionsJSON),
			p.Source,
			unixNano(p.CreatedAt),
		).
		OnConflict(
			entsql.ConflictColumns(columnID),
			entsql.DoNothing(),
		).
		Query()

	var res sql.Result
	if err := ed.Driver.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("could not insert paper: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// Get retrieves a paper by its ID.
func (ed *EntDriver) Get(ctx context.Context, id string) (*paper.Paper, error) {
	query, args := ed.builder().Select(columns...).
		From(ed.builder().Table(Table)).
		Where(entsql.EQ(columnID, id)).
		Query()

	papers, err := ed.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	if len(papers) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}
	return papers[0], nil
}

// List returns all papers, newest first.
func (ed *EntDriver) List(ctx context.Context) ([]*paper.Paper, error) {
	query, args := ed.builder().Select(columns...).
		From(ed.builder().Table(Table)).
		OrderBy(entsql.Desc(columnCreatedAt), entsql.Asc(columnID)).
		Query()

	papers, err := ed.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	return papers, nil
}

// Delete removes a paper by its ID.
func (ed *EntDriver) Delete(ctx context.Context, id string) error {
	query, args := ed.builder().Delete(Table).
		Where(entsql.EQ(columnID, id)).
		Query()

	var res sql.Result
	if err := ed.Driver.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("could not delete paper: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.NotFoundError{ID: id}
	}
	return nil
}

// Close closes the database connection.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}

func (ed *EntDriver) builder() *entsql.DialectBuilder {
	return entsql.Dialect(ed.Driver.Dialect())
}

func (ed *EntDriver) query(ctx context.Context, query string, args []any) ([]*paper.Paper, error) {
	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []*paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return papers, nil
}

// Conversion helpers
func scanPaper(rows *entsql.Rows) (*paper.Paper, error) {
	var (
		p         paper.Paper
		tags      string
		questions string
		createdAt int64
	)
	if err := rows.Scan(&p.ID, &p.Title, &p.Description, &tags, &questions, &p.Source, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan paper: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags of %s: %w", p.ID, err)
	}
	if len(p.Tags) == 0 {
		p.Tags = nil
	}
	if err := json.Unmarshal([]byte(questions), &p.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions of %s: %w", p.ID, err)
	}
	if createdAt != 0 {
		p.CreatedAt = time.Unix(0, createdAt).UTC()
	}

	return &p, nil
}

// unixNano stores the zero time as 0, which UnixNano does not.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}
