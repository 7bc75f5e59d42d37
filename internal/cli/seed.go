package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"quiz-live-service/internal/config"
	"quiz-live-service/internal/domain"
	pgstore "quiz-live-service/internal/infra/postgres"
)

// NewSeedCmd stores the demo quizzes in Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo quizzes into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return errNoPostgres
	}
	logger := newLogger(cfg)
	if err := runMigrations(ctx, cfg, logger); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := pgstore.NewQuizStore(pool)
	for _, quiz := range demoQuizzes(time.Now()) {
		if err := quiz.Validate(); err != nil {
			return err
		}
		if err := store.SaveQuiz(ctx, quiz); err != nil {
			return err
		}
		logger.Info().Str("quiz_id", quiz.ID).Str("name", quiz.Name).Msg("quiz seeded")
	}
	return nil
}

// demoQuizzes is the content served when no Postgres is configured.
func demoQuizzes(now time.Time) []domain.Quiz {
	ts := now.UnixMilli()
	return []domain.Quiz{
		{
			ID:          "demo-capitals",
			Name:        "World Capitals",
			Description: "Warm-up round on capital cities",
			CreatedAt:   ts,
			UpdatedAt:   ts,
			Questions: []domain.Question{
				{
					ID:           "demo-capitals-1",
					Text:         "What is the capital of Australia?",
					Answers:      [domain.AnswerCount]string{"Sydney", "Canberra", "Melbourne", "Perth"},
					CorrectIndex: 1,
					Points:       1,
					TimeLimit:    20,
				},
				{
					ID:           "demo-capitals-2",
					Text:         "Which city is the capital of Canada?",
					Answers:      [domain.AnswerCount]string{"Toronto", "Vancouver", "Montreal", "Ottawa"},
					CorrectIndex: 3,
					Points:       2,
					TimeLimit:    20,
				},
				{
					ID:           "demo-capitals-3",
					Text:         "Ulaanbaatar is the capital of which country?",
					Answers:      [domain.AnswerCount]string{"Mongolia", "Kazakhstan", "Nepal", "Bhutan"},
					CorrectIndex: 0,
					Points:       3,
					TimeLimit:    15,
				},
			},
		},
		{
			ID:          "demo-arithmetic",
			Name:        "Quick Arithmetic",
			Description: "Mental math against the clock",
			CreatedAt:   ts,
			UpdatedAt:   ts,
			Questions: []domain.Question{
				{
					ID:           "demo-arithmetic-1",
					Text:         "What is 7 x 8?",
					Answers:      [domain.AnswerCount]string{"54", "56", "64", "48"},
					CorrectIndex: 1,
					Points:       1,
					TimeLimit:    10,
				},
				{
					ID:           "demo-arithmetic-2",
					Text:         "What is 144 / 12?",
					Answers:      [domain.AnswerCount]string{"11", "14", "12", "13"},
					CorrectIndex: 2,
					Points:       2,
					TimeLimit:    10,
				},
			},
		},
	}
}
