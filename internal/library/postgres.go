package library

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// PostgresStore persists the question library in Postgres. The unique
// index on stem_hash is the source of truth for de-duplication; inserts
// race-safely no-op on conflict.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const questionColumns = `id, category, difficulty, seed_echo, question, options,
	correct_index, explanation, quip_correct, quip_incorrect, stem_hash, tone,
	created_at, source, used_at`

func (s *PostgresStore) EnsureUniqueByHash(ctx context.Context, candidate QuestionDoc) (EnsureResult, error) {
	enriched := enrich(candidate, time.Now())

	row := s.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE stem_hash = $1`,
		enriched.StemHash)
	existing, err := scanDoc(row)
	if err == nil {
		return EnsureResult{Doc: existing, Duplicate: true}, nil
	}
	if err != pgx.ErrNoRows {
		return EnsureResult{}, fmt.Errorf("lookup by hash: %w", err)
	}
	return EnsureResult{Doc: enriched}, nil
}

func (s *PostgresStore) PutMany(ctx context.Context, candidates []QuestionDoc) (PutResult, error) {
	if len(candidates) == 0 {
		return PutResult{}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return PutResult{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var result PutResult
	for _, candidate := range candidates {
		enriched := enrich(candidate, time.Now())
		tag, err := tx.Exec(ctx, `
			INSERT INTO questions (
				id, category, difficulty, seed_echo, question, options,
				correct_index, explanation, quip_correct, quip_incorrect,
				stem_hash, tone, created_at, source, used_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			ON CONFLICT (stem_hash) DO NOTHING`,
			enriched.ID, enriched.Category, enriched.Difficulty, enriched.SeedEcho,
			enriched.Question.Question, enriched.Options, enriched.CorrectIndex,
			enriched.Explanation, enriched.Quips.Correct, enriched.Quips.Incorrect,
			enriched.StemHash, nullableTone(enriched.Tone), enriched.CreatedAt,
			enriched.Source, enriched.UsedAt)
		if err != nil {
			return PutResult{}, fmt.Errorf("insert question: %w", err)
		}
		if tag.RowsAffected() == 0 {
			result.Duplicates++
		} else {
			result.Inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return PutResult{}, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) DrawOne(ctx context.Context, params DrawParams) (*QuestionDoc, error) {
	exclude := params.ExcludeIDs
	if exclude == nil {
		exclude = []string{}
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE category = $1 AND difficulty = $2 AND used_at IS NULL
		   AND NOT (id = ANY($3))
		 ORDER BY random() LIMIT 1`,
		params.Category, params.Difficulty, exclude)
	doc, err := scanDoc(row)
	if err == nil {
		return &doc, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("draw exact: %w", err)
	}

	// Broaden to the whole category when the exact pool is dry.
	row = s.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE category = $1 AND used_at IS NULL AND NOT (id = ANY($2))
		 ORDER BY random() LIMIT 1`,
		params.Category, exclude)
	doc, err = scanDoc(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draw broad: %w", err)
	}
	return &doc, nil
}

func (s *PostgresStore) MarkUsed(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE questions SET used_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark used: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filterClause(filter)
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter, limit, offset int) ([]QuestionDoc, error) {
	where, args := filterClause(filter)
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+questionColumns+` FROM questions%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var docs []QuestionDoc
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func filterClause(filter Filter) (string, []any) {
	var (
		where string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = fmt.Sprintf(" WHERE category = $%d", len(args))
	}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		connector := " WHERE"
		if where != "" {
			connector = " AND"
		}
		where += fmt.Sprintf("%s difficulty = $%d", connector, len(args))
	}
	return where, args
}

func nullableTone(tone trivia.Tone) any {
	if tone == "" {
		return nil
	}
	return string(tone)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDoc(row scannable) (QuestionDoc, error) {
	var (
		doc  QuestionDoc
		tone *string
	)
	err := row.Scan(
		&doc.ID, &doc.Category, &doc.Difficulty, &doc.SeedEcho,
		&doc.Question.Question, &doc.Options, &doc.CorrectIndex,
		&doc.Explanation, &doc.Quips.Correct, &doc.Quips.Incorrect,
		&doc.StemHash, &tone, &doc.CreatedAt, &doc.Source, &doc.UsedAt)
	if err != nil {
		return QuestionDoc{}, err
	}
	if tone != nil {
		doc.Tone = trivia.Tone(*tone)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return doc, nil
}
