package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/config"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ProgressRepository is the production exam.ProgressStore. Redis holds the
// live record — an answers hash (question index -> option key) plus cursor
// and saved-at keys — and every write also queues a snapshot that the
// progress worker mirrors into PostgreSQL. Reads prefer Redis and self-heal
// from the PostgreSQL snapshot on a cache miss, so a Redis restart does not
// lose paused attempts.
type ProgressRepository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

var _ exam.ProgressStore = (*ProgressRepository)(nil)

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ProgressRepository {
	return &ProgressRepository{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "progress_repository").Logger(),
	}
}

// progressSnapshot is the queue payload consumed by the progress worker.
type progressSnapshot struct {
	UserID       int            `json:"user_id"`
	ExamID       string         `json:"exam_id"`
	Answers      map[int]string `json:"answers"`
	CurrentIndex int            `json:"current_index"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// GetProgress returns the saved record, or (nil, nil) when none exists.
func (r *ProgressRepository) GetProgress(ctx context.Context, userID int, examID uuid.UUID) (*exam.ProgressRecord, error) {
	answersKey := config.CacheKey.ProgressAnswersKey(userID, examID.String())
	cursorKey := config.CacheKey.ProgressCursorKey(userID, examID.String())

	fields, err := r.rdb.HGetAll(ctx, answersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read answers hash: %w", err)
	}

	cursorVal, err := r.rdb.Get(ctx, cursorKey).Result()
	if errors.Is(err, redis.Nil) || len(fields) == 0 {
		// Cache miss — the record may still exist in the durable snapshot.
		return r.getFromSnapshot(ctx, userID, examID)
	}
	if err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}

	record := &exam.ProgressRecord{
		UserID:  userID,
		ExamID:  examID,
		Answers: make(exam.AnswerMap, len(fields)),
	}
	for field, key := range fields {
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("corrupt answer field %q: %w", field, err)
		}
		record.Answers[idx] = key
	}
	if record.CurrentIndex, err = strconv.Atoi(cursorVal); err != nil {
		return nil, fmt.Errorf("corrupt cursor %q: %w", cursorVal, err)
	}

	savedAtKey := config.CacheKey.ProgressSavedAtKey(userID, examID.String())
	if raw, err := r.rdb.Get(ctx, savedAtKey).Result(); err == nil {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			record.UpdatedAt = time.Unix(unix, 0)
		}
	}

	return record, nil
}

// getFromSnapshot reads the durable PostgreSQL copy and re-warms Redis.
func (r *ProgressRepository) getFromSnapshot(ctx context.Context, userID int, examID uuid.UUID) (*exam.ProgressRecord, error) {
	var (
		rawAnswers []byte
		record     = &exam.ProgressRecord{UserID: userID, ExamID: examID}
	)
	err := r.pool.QueryRow(ctx,
		`SELECT answers, current_index, updated_at
		 FROM progress_snapshots
		 WHERE user_id = $1 AND exam_id = $2`,
		userID, examID,
	).Scan(&rawAnswers, &record.CurrentIndex, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(rawAnswers, &record.Answers); err != nil {
		return nil, fmt.Errorf("decode snapshot answers: %w", err)
	}

	// Self-heal: put the record back so the next read is fast.
	if err := r.warmCache(ctx, record); err != nil {
		r.log.Warn().Err(err).Int("user_id", userID).Msg("Progress cache re-warm failed")
	}

	return record, nil
}

// SetProgress upserts the live record and queues the durable snapshot.
func (r *ProgressRepository) SetProgress(ctx context.Context, record *exam.ProgressRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	if err := r.warmCache(ctx, record); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}

	snapshot := progressSnapshot{
		UserID:       record.UserID,
		ExamID:       record.ExamID.String(),
		Answers:      record.Answers,
		CurrentIndex: record.CurrentIndex,
		UpdatedAt:    record.UpdatedAt,
	}
	payload, _ := json.Marshal(snapshot)
	if err := r.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, payload).Err(); err != nil {
		// The live record is in place; only the durable mirror is behind.
		r.log.Warn().Err(err).Int("user_id", record.UserID).Msg("Progress snapshot enqueue failed")
	}

	return nil
}

// warmCache writes the full record into Redis in one pipeline.
func (r *ProgressRepository) warmCache(ctx context.Context, record *exam.ProgressRecord) error {
	answersKey := config.CacheKey.ProgressAnswersKey(record.UserID, record.ExamID.String())
	cursorKey := config.CacheKey.ProgressCursorKey(record.UserID, record.ExamID.String())
	savedAtKey := config.CacheKey.ProgressSavedAtKey(record.UserID, record.ExamID.String())

	fields := make(map[string]string, len(record.Answers))
	for idx, key := range record.Answers {
		fields[strconv.Itoa(idx)] = key
	}

	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, answersKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, answersKey, fields)
	}
	pipe.Set(ctx, cursorKey, record.CurrentIndex, 0)
	pipe.Set(ctx, savedAtKey, record.UpdatedAt.Unix(), 0)
	_, err := pipe.Exec(ctx)
	return err
}

// DeleteProgress removes both the live record and the durable snapshot.
func (r *ProgressRepository) DeleteProgress(ctx context.Context, userID int, examID uuid.UUID) error {
	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ProgressAnswersKey(userID, examID.String()))
	pipe.Del(ctx, config.CacheKey.ProgressCursorKey(userID, examID.String()))
	pipe.Del(ctx, config.CacheKey.ProgressSavedAtKey(userID, examID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear progress cache: %w", err)
	}

	if _, err := r.pool.Exec(ctx,
		`DELETE FROM progress_snapshots WHERE user_id = $1 AND exam_id = $2`,
		userID, examID,
	); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	return nil
}
