package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ummahhub/community-api/internal/domain"
)

// replyRecord is the JSONB element stored in forum_posts.replies.
type replyRecord struct {
	ID           string    `json:"id"`
	AuthorName   string    `json:"authorName"`
	Reply        string    `json:"reply"`
	Timestamp    time.Time `json:"timestamp"`
	IsAdminReply bool      `json:"isAdminReply"`
}

type forumPGRepository struct {
	pool *pgxpool.Pool
}

// NewForumPGRepository builds the postgres backed repository. Replies live in a JSONB
// array on the thread row so every mutation stays a single-row statement.
func NewForumPGRepository(pool *pgxpool.Pool) ForumRepository {
	return &forumPGRepository{pool: pool}
}

const replyPresent = `replies @> jsonb_build_array(jsonb_build_object('id', $2::text))`

func (r *forumPGRepository) CreateThread(ctx context.Context, thread *domain.ForumThread) error {
	replies, err := marshalReplies(thread.Replies)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO forum_posts (author_name, question, replies, is_closed)
        VALUES ($1,$2,$3::jsonb,$4)
        RETURNING id::text, created_at`
	var created time.Time
	if err := r.pool.QueryRow(ctx, query, thread.AuthorName, thread.Question, replies, thread.IsClosed).
		Scan(&thread.ID, &created); err != nil {
		return err
	}
	thread.Timestamp = created.UTC()
	if thread.Replies == nil {
		thread.Replies = []domain.ForumReply{}
	}
	return nil
}

func (r *forumPGRepository) GetThread(ctx context.Context, id string) (*domain.ForumThread, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrThreadNotFound
	}
	const query = `
        SELECT id::text, author_name, question, replies, is_closed, created_at
        FROM forum_posts WHERE id=$1`
	thread, err := scanThread(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return thread, nil
}

func (r *forumPGRepository) ListThreads(ctx context.Context, filter ThreadFilter) ([]domain.ForumThread, error) {
	filter = normalizeFilter(filter)
	const query = `
        SELECT id::text, author_name, question, replies, is_closed, created_at
        FROM forum_posts
        WHERE ($1 = '' OR question ILIKE '%' || $1 || '%')
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, escapeLike(filter.Search), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	threads := make([]domain.ForumThread, 0)
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *thread)
	}
	return threads, rows.Err()
}

func (r *forumPGRepository) AddReply(ctx context.Context, threadID string, reply domain.ForumReply) error {
	if _, err := uuid.Parse(threadID); err != nil {
		return ErrThreadNotFound
	}
	payload, err := json.Marshal(toReplyRecord(reply))
	if err != nil {
		return err
	}
	const query = `
        UPDATE forum_posts SET replies = replies || jsonb_build_array($3::jsonb)
        WHERE id=$1 AND NOT ` + replyPresent
	cmd, err := r.pool.Exec(ctx, query, threadID, reply.ID, payload)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.missing(ctx, threadID, ErrDuplicateReply)
	}
	return nil
}

func (r *forumPGRepository) PullReply(ctx context.Context, threadID, replyID string) error {
	if _, err := uuid.Parse(threadID); err != nil {
		return ErrThreadNotFound
	}
	const query = `
        UPDATE forum_posts SET replies = COALESCE((
            SELECT jsonb_agg(e.r ORDER BY e.ord)
            FROM jsonb_array_elements(replies) WITH ORDINALITY AS e(r, ord)
            WHERE e.r->>'id' <> $2::text
        ), '[]'::jsonb)
        WHERE id=$1 AND ` + replyPresent
	cmd, err := r.pool.Exec(ctx, query, threadID, replyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.missing(ctx, threadID, ErrReplyNotFound)
	}
	return nil
}

func (r *forumPGRepository) SetReply(ctx context.Context, threadID string, reply domain.ForumReply) error {
	if _, err := uuid.Parse(threadID); err != nil {
		return ErrThreadNotFound
	}
	payload, err := json.Marshal(toReplyRecord(reply))
	if err != nil {
		return err
	}
	const query = `
        UPDATE forum_posts SET replies = (
            SELECT jsonb_agg(CASE WHEN e.r->>'id' = $2::text THEN $3::jsonb ELSE e.r END ORDER BY e.ord)
            FROM jsonb_array_elements(replies) WITH ORDINALITY AS e(r, ord)
        )
        WHERE id=$1 AND ` + replyPresent
	cmd, err := r.pool.Exec(ctx, query, threadID, reply.ID, payload)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.missing(ctx, threadID, ErrReplyNotFound)
	}
	return nil
}

func (r *forumPGRepository) SetClosed(ctx context.Context, threadID string, closed bool) error {
	return r.exec(ctx, `UPDATE forum_posts SET is_closed=$2 WHERE id=$1`, threadID, closed)
}

func (r *forumPGRepository) SetQuestion(ctx context.Context, threadID, question string) error {
	return r.exec(ctx, `UPDATE forum_posts SET question=$2 WHERE id=$1`, threadID, question)
}

func (r *forumPGRepository) DeleteThread(ctx context.Context, threadID string) error {
	return r.exec(ctx, `DELETE FROM forum_posts WHERE id=$1`, threadID)
}

func (r *forumPGRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *forumPGRepository) exec(ctx context.Context, query, threadID string, arg ...any) error {
	if _, err := uuid.Parse(threadID); err != nil {
		return ErrThreadNotFound
	}
	cmd, err := r.pool.Exec(ctx, query, append([]any{threadID}, arg...)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrThreadNotFound
	}
	return nil
}

func (r *forumPGRepository) missing(ctx context.Context, threadID string, otherwise error) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM forum_posts WHERE id=$1)`, threadID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrThreadNotFound
	}
	return otherwise
}

func scanThread(row pgx.Row) (*domain.ForumThread, error) {
	var (
		thread  domain.ForumThread
		records []replyRecord
	)
	if err := row.Scan(&thread.ID, &thread.AuthorName, &thread.Question, &records, &thread.IsClosed, &thread.Timestamp); err != nil {
		return nil, err
	}
	thread.Timestamp = thread.Timestamp.UTC()
	thread.Replies = make([]domain.ForumReply, 0, len(records))
	for _, rec := range records {
		thread.Replies = append(thread.Replies, domain.ForumReply{
			ID:           rec.ID,
			AuthorName:   rec.AuthorName,
			Reply:        rec.Reply,
			Timestamp:    rec.Timestamp.UTC(),
			IsAdminReply: rec.IsAdminReply,
		})
	}
	return &thread, nil
}

func marshalReplies(replies []domain.ForumReply) ([]byte, error) {
	records := make([]replyRecord, 0, len(replies))
	for _, reply := range replies {
		records = append(records, toReplyRecord(reply))
	}
	return json.Marshal(records)
}

func toReplyRecord(reply domain.ForumReply) replyRecord {
	return replyRecord{
		ID:           reply.ID,
		AuthorName:   reply.AuthorName,
		Reply:        reply.Reply,
		Timestamp:    reply.Timestamp.UTC(),
		IsAdminReply: reply.IsAdminReply,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(strings.TrimSpace(s))
}
