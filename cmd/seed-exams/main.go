package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/config"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/database"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/logger"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/model"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type seedQuestion struct {
	content    string
	options    map[string]string
	correctKey string
}

type seedExam struct {
	title           string
	description     string
	category        string
	durationMinutes int
	questions       []seedQuestion
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	fmt.Println("=== Seeding Demo Data ===")

	// Demo account for local testing.
	demoEmail := "demo@prepmyexam.local"
	var existingID int
	err = pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", demoEmail).Scan(&existingID)
	if err != nil {
		if err == pgx.ErrNoRows {
			hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), cfg.BcryptCost)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to hash demo password")
			}
			demoUser := &model.User{
				Email:        demoEmail,
				Name:         "Demo User",
				PasswordHash: string(hash),
			}
			if err := userRepo.Create(ctx, demoUser); err != nil {
				log.Fatal().Err(err).Msg("Failed to create demo user")
			}
			fmt.Printf("Created demo user with ID: %d\n", demoUser.ID)
		} else {
			log.Fatal().Err(err).Msg("Failed to check existing demo user")
		}
	} else {
		fmt.Printf("Found existing demo user with ID: %d\n", existingID)
	}

	seeded := 0
	for _, se := range seedExams() {
		var examID uuid.UUID
		err := pool.QueryRow(ctx, "SELECT id FROM exams WHERE title = $1", se.title).Scan(&examID)
		if err == nil {
			fmt.Printf("Exam %q already exists, skipping\n", se.title)
			continue
		}
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check existing exam")
		}

		examID = uuid.New()
		_, err = pool.Exec(ctx,
			`INSERT INTO exams (id, title, description, category, duration_minutes, question_count, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			examID, se.title, se.description, se.category,
			se.durationMinutes, len(se.questions), model.ExamStatusPublished,
		)
		if err != nil {
			log.Fatal().Err(err).Str("title", se.title).Msg("Failed to insert exam")
		}

		for i, q := range se.questions {
			opts, _ := json.Marshal(q.options)
			_, err = pool.Exec(ctx,
				`INSERT INTO questions (exam_id, content, options, correct_key, position)
				 VALUES ($1, $2, $3, $4, $5)`,
				examID, q.content, opts, q.correctKey, i,
			)
			if err != nil {
				log.Fatal().Err(err).Str("title", se.title).Int("position", i).Msg("Failed to insert question")
			}
		}

		seeded++
		fmt.Printf("Created exam %q with %d questions\n", se.title, len(se.questions))
	}

	fmt.Printf("\nSeed completed! Added %d exams.\n", seeded)
}

func seedExams() []seedExam {
	return []seedExam{
		{
			title:           "Quantitative Aptitude: Percentages",
			description:     "Percentage problems of the kind asked in banking prelims.",
			category:        "Quantitative Aptitude",
			durationMinutes: 20,
			questions: []seedQuestion{
				{
					content:    "What is 35% of 480?",
					options:    map[string]string{"a": "158", "b": "164", "c": "168", "d": "172"},
					correctKey: "c",
				},
				{
					content:    "A number increased by 20% gives 540. The number is:",
					options:    map[string]string{"a": "432", "b": "450", "c": "468", "d": "480"},
					correctKey: "b",
				},
				{
					content:    "If the price of sugar rises by 25%, by what percent must consumption fall so expenditure stays the same?",
					options:    map[string]string{"a": "20%", "b": "25%", "c": "18%", "d": "22%"},
					correctKey: "a",
				},
				{
					content:    "45% of a number is 81. What is 30% of the same number?",
					options:    map[string]string{"a": "48", "b": "52", "c": "54", "d": "58"},
					correctKey: "c",
				},
				{
					content:    "A student scored 72 out of 120. What is the score as a percentage?",
					options:    map[string]string{"a": "55%", "b": "58%", "c": "62%", "d": "60%"},
					correctKey: "d",
				},
			},
		},
		{
			title:           "Reasoning Ability: Number Series",
			description:     "Spot the pattern and pick the missing term.",
			category:        "Reasoning Ability",
			durationMinutes: 15,
			questions: []seedQuestion{
				{
					content:    "2, 6, 12, 20, 30, ?",
					options:    map[string]string{"a": "40", "b": "42", "c": "44", "d": "46"},
					correctKey: "b",
				},
				{
					content:    "5, 11, 23, 47, 95, ?",
					options:    map[string]string{"a": "191", "b": "187", "c": "189", "d": "193"},
					correctKey: "a",
				},
				{
					content:    "3, 4, 8, 17, 33, ?",
					options:    map[string]string{"a": "54", "b": "56", "c": "58", "d": "60"},
					correctKey: "c",
				},
				{
					content:    "7, 14, 42, 168, ?",
					options:    map[string]string{"a": "672", "b": "714", "c": "840", "d": "504"},
					correctKey: "c",
				},
			},
		},
		{
			title:           "English Language: Spotting Errors",
			description:     "Identify the part of the sentence containing a grammatical error.",
			category:        "English Language",
			durationMinutes: 15,
			questions: []seedQuestion{
				{
					content:    "Each of the candidates (a) have submitted (b) their applications (c) before the deadline. (d) No error.",
					options:    map[string]string{"a": "a", "b": "b", "c": "c", "d": "d"},
					correctKey: "b",
				},
				{
					content:    "The committee (a) has took (b) a unanimous decision (c) on the proposal. (d) No error.",
					options:    map[string]string{"a": "a", "b": "b", "c": "c", "d": "d"},
					correctKey: "b",
				},
				{
					content:    "Neither the manager (a) nor the clerks (b) was present (c) at the meeting. (d) No error.",
					options:    map[string]string{"a": "a", "b": "b", "c": "c", "d": "d"},
					correctKey: "c",
				},
			},
		},
	}
}
