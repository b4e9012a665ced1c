package main

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/cetlabs/cetexam-backend/internal/config"
	"github.com/cetlabs/cetexam-backend/internal/database"
	"github.com/cetlabs/cetexam-backend/internal/logger"
	"github.com/cetlabs/cetexam-backend/internal/model"
	"github.com/cetlabs/cetexam-backend/internal/repository"
)

// Seeds a demo student, a small question bank across the four built-in
// categories, and one active exam. Intended for local development only.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte("student123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash demo password")
	}
	student := &model.User{
		Email:        "student@example.com",
		DisplayName:  "Demo Student",
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	}
	if err := userRepo.Create(ctx, student); err != nil {
		log.Warn().Err(err).Msg("Demo student not created (may already exist)")
	} else {
		log.Info().Str("email", student.Email).Msg("Demo student created")
	}

	type seedQuestion struct {
		text        string
		category    string
		explanation string
		difficulty  int
		options     []model.OptionInput
	}

	seeds := []seedQuestion{
		{
			text:        "If all roses are flowers and some flowers fade quickly, which statement must be true?",
			category:    model.CategoryReasoning,
			explanation: "Syllogisms only guarantee conclusions that follow from every premise; roses fading is not guaranteed.",
			difficulty:  2,
			options: []model.OptionInput{
				{Text: "All roses fade quickly"},
				{Text: "Some flowers are roses", IsCorrect: true},
				{Text: "No roses fade quickly"},
			},
		},
		{
			text:        "Choose the grammatically correct sentence.",
			category:    model.CategoryEnglish,
			explanation: "Subject and verb must agree in number; a singular subject takes a singular verb.",
			difficulty:  1,
			options: []model.OptionInput{
				{Text: "The committee meet every Monday"},
				{Text: "The committee meets every Monday", IsCorrect: true},
			},
		},
		{
			text:        "Which component of a computer executes instructions?",
			category:    model.CategoryComputerConcepts,
			explanation: "The central processing unit fetches, decodes and executes instructions.",
			difficulty:  1,
			options: []model.OptionInput{
				{Text: "RAM"},
				{Text: "CPU", IsCorrect: true},
				{Text: "SSD"},
			},
		},
		{
			text:        "What does len(\"exam\") return in Python?",
			category:    model.CategoryPython,
			explanation: "The len builtin returns the number of characters in a string.",
			difficulty:  1,
			options: []model.OptionInput{
				{Text: "3"},
				{Text: "4", IsCorrect: true},
				{Text: "5"},
			},
		},
	}

	exam := &model.Exam{
		Title:           "CET Practice Exam",
		Description:     "A short mixed practice exam covering all four subjects.",
		DurationMinutes: 30,
		IsActive:        true,
		Categories: []string{
			model.CategoryReasoning,
			model.CategoryEnglish,
			model.CategoryComputerConcepts,
			model.CategoryPython,
		},
	}

	for _, s := range seeds {
		q := &model.Question{
			Text:            s.text,
			Category:        s.category,
			Explanation:     s.explanation,
			DifficultyLevel: s.difficulty,
		}
		if err := questionRepo.Create(ctx, q, s.options); err != nil {
			log.Fatal().Err(err).Str("category", s.category).Msg("Failed to seed question")
		}
		exam.QuestionIDs = append(exam.QuestionIDs, q.ID)
	}
	log.Info().Int("count", len(seeds)).Msg("Questions seeded")

	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed exam")
	}
	log.Info().Str("exam_id", exam.ID.String()).Msg("Demo exam created")
}
