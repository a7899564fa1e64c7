package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/config"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/model"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ExamService handles the exam catalog: listings with per-user overlays and
// the Redis-cached student-safe payload.
type ExamService struct {
	examRepo    *repository.ExamRepository
	attemptRepo *repository.AttemptRepository
	provider    exam.QuestionSetProvider
	progress    exam.ProgressStore
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	attemptRepo *repository.AttemptRepository,
	provider exam.QuestionSetProvider,
	progress exam.ProgressStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		provider:    provider,
		progress:    progress,
		rdb:         rdb,
		log:         log.With().Str("component", "exam_service").Logger(),
	}
}

// ListForUser returns the published catalog with the viewer's own state
// (resumable progress, best score) and aggregate stats overlaid.
func (s *ExamService) ListForUser(ctx context.Context, userID int) ([]model.ListedExam, error) {
	exams, err := s.examRepo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	listed := make([]model.ListedExam, 0, len(exams))
	for _, e := range exams {
		entry := model.ListedExam{Exam: e}

		if stats, err := s.examRepo.GetStats(ctx, e.ID); err == nil {
			entry.Stats = stats
		}

		if rec, err := s.progress.GetProgress(ctx, userID, e.ID); err == nil && rec != nil {
			entry.HasProgress = true
		}

		if best, err := s.attemptRepo.BestScore(ctx, userID, e.ID); err == nil {
			entry.BestScore = best
		}

		listed = append(listed, entry)
	}

	return listed, nil
}

// GetPayload returns the student-safe exam payload, from Redis when cached.
func (s *ExamService) GetPayload(ctx context.Context, examID uuid.UUID) (*model.ExamPayload, error) {
	payloadKey := config.CacheKey.ExamPayloadKey(examID.String())

	raw, err := s.rdb.Get(ctx, payloadKey).Result()
	if err == nil {
		var payload model.ExamPayload
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			return &payload, nil
		}
		// Corrupt cache entry — rebuild below.
		s.rdb.Del(ctx, payloadKey)
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read payload cache: %w", err)
	}

	payload, err := s.buildPayload(ctx, examID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(payload); err == nil {
		if err := s.rdb.Set(ctx, payloadKey, raw, 0).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Payload cache write failed")
		}
	}

	return payload, nil
}

// buildPayload loads the question set and strips the correct-answer keys.
func (s *ExamService) buildPayload(ctx context.Context, examID uuid.UUID) (*model.ExamPayload, error) {
	e, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	qs, err := s.provider.LoadQuestions(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	payload := &model.ExamPayload{
		ExamID:          examID,
		Title:           e.Title,
		DurationMinutes: e.DurationMinutes,
		Questions:       make([]model.QuestionForStudent, 0, qs.Len()),
	}
	for i := 0; i < qs.Len(); i++ {
		q := qs.At(i)
		payload.Questions = append(payload.Questions, model.QuestionForStudent{
			Index:   q.Index,
			Content: q.Content,
			Options: q.Options,
		})
	}

	return payload, nil
}

// PrewarmAllCaches loads every published exam's payload into Redis before
// the server accepts traffic, avoiding lazy-load races under load.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	warmed := 0
	for _, e := range exams {
		payload, err := s.buildPayload(ctx, e.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("exam_id", e.ID.String()).Msg("Payload prewarm skipped")
			continue
		}
		raw, _ := json.Marshal(payload)
		if err := s.rdb.Set(ctx, config.CacheKey.ExamPayloadKey(e.ID.String()), raw, 0).Err(); err != nil {
			return fmt.Errorf("prewarm exam %s: %w", e.ID, err)
		}
		warmed++
	}

	s.log.Info().Int("exams", warmed).Msg("Payload caches prewarmed")
	return nil
}
