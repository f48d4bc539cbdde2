package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"quiz-backend/internal/database"
	"quiz-backend/internal/repository"
)

func main() {
	file := pflag.StringP("file", "f", "seeds/capitals.json", "path to the JSON seed file")
	migrationsDir := pflag.String("migrations", "migrations", "directory with SQL migrations")
	pflag.Parse()

	godotenv.Load()

	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatalf("%s DATABASE_URL is not set", fail("✗"))
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("%s %v", fail("✗"), err)
	}
	defer f.Close()

	quizzes, err := parseSeed(f)
	if err != nil {
		log.Fatalf("%s %v", fail("✗"), err)
	}
	log.Printf("%s Parsed %d entries from %s", ok("✓"), len(quizzes), *file)

	pool, err := database.NewPostgresPool(databaseURL)
	if err != nil {
		log.Fatalf("%s PostgreSQL connection failed: %v", fail("✗"), err)
	}
	defer pool.Close()

	if err := database.RunMigrations(pool, *migrationsDir); err != nil {
		log.Fatalf("%s Database migration failed: %v", fail("✗"), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stats, err := seedAll(ctx, repoTx(repository.NewQuizRepo(pool)), quizzes)
	if err != nil {
		log.Fatalf("%s %v", fail("✗"), err)
	}

	log.Printf("%s Seeded %d new quizzes, appended to %d, %d questions in total",
		ok("✓"), stats.Created, stats.Appended, stats.Questions)
}
