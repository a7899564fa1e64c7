package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// StatsWorker consumes exam_stats_queue and folds completed scores into
// per-exam aggregates. Averages are eventually consistent with the
// attempt ledger.
type StatsWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewStatsWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "stats_worker").Logger(),
	}
}

type statsScorePayload struct {
	ExamID string  `json:"exam_id"`
	Score  float64 `json:"score"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	batch := make([]*statsScorePayload, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.ExamStatsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p statsScorePayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch Upsert Wrapper
// ----------------------------------------------------------------

func (w *StatsWorker) flushSafe(ctx context.Context, batch []*statsScorePayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsertStats(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk stats upsert failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.ExamStatsQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPSERT using UNNEST + alias
// ----------------------------------------------------------------

// bulkUpsertStats pre-aggregates the batch per exam so the UNNEST rows
// carry one (count, total) pair per exam. ON CONFLICT would reject two
// rows for the same key in one statement.
func (w *StatsWorker) bulkUpsertStats(ctx context.Context, batch []*statsScorePayload) error {
	type agg struct {
		count int
		total float64
	}

	perExam := make(map[uuid.UUID]*agg)
	for _, p := range batch {
		eID, err := uuid.Parse(p.ExamID)
		if err != nil {
			return err
		}
		a, ok := perExam[eID]
		if !ok {
			a = &agg{}
			perExam[eID] = a
		}
		a.count++
		a.total += p.Score
	}

	examIDs := make([]uuid.UUID, 0, len(perExam))
	counts := make([]int, 0, len(perExam))
	totals := make([]float64, 0, len(perExam))
	for eID, a := range perExam {
		examIDs = append(examIDs, eID)
		counts = append(counts, a.count)
		totals = append(totals, a.total)
	}

	query := `
		INSERT INTO exam_stats (exam_id, attempt_count, total_score)
		SELECT u.exam_id, u.attempt_count, u.total_score
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::float8[]
		) AS u (exam_id, attempt_count, total_score)
		ON CONFLICT (exam_id) DO UPDATE
		SET attempt_count = exam_stats.attempt_count + EXCLUDED.attempt_count,
		    total_score = exam_stats.total_score + EXCLUDED.total_score
	`

	_, err := w.pool.Exec(ctx, query, examIDs, counts, totals)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single upsert
// ----------------------------------------------------------------

func (w *StatsWorker) persistSingle(ctx context.Context, p *statsScorePayload) error {
	eID, err := uuid.Parse(p.ExamID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`INSERT INTO exam_stats (exam_id, attempt_count, total_score)
		 VALUES ($1, 1, $2)
		 ON CONFLICT (exam_id) DO UPDATE
		 SET attempt_count = exam_stats.attempt_count + 1,
		     total_score = exam_stats.total_score + EXCLUDED.total_score`,
		eID, p.Score,
	)

	return err
}
