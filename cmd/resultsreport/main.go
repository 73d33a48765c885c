package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/classpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/classpoll/internal/config"
	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var sessionID string
	pg := cfg.Postgres

	flag.StringVar(&sessionID, "session", "", "Session ID to report on")
	flag.StringVar(&pg.Host, "db-host", pg.Host, "Database host")
	flag.StringVar(&pg.Port, "db-port", pg.Port, "Database port")
	flag.StringVar(&pg.User, "db-user", pg.User, "Database user")
	flag.StringVar(&pg.Password, "db-pass", pg.Password, "Database password")
	flag.StringVar(&pg.DB, "db-name", pg.DB, "Database name")
	flag.Parse()

	if sessionID == "" {
		log.Fatal("a session id is required (-session)")
	}

	db, err := sql.Open("postgres", pg.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	resultService := services.NewResultService(postgres.NewPollResultRepository(db))

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	results, err := resultService.ListSessionResults(ctx, sessionID)
	if err != nil {
		log.Fatalf("Error listing results: %v", err)
	}
	if len(results) == 0 {
		log.Printf("No archived results for session %s", sessionID)
		return
	}

	printReport(results)
}

func printReport(results []*domain.PollResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	for _, r := range results {
		fmt.Fprintf(w, "#%d\t%s\t%d votes\t%s\n", r.PollID, r.Question, r.TotalVotes, r.CreatedAt.Format(time.RFC3339))
		for _, opt := range r.Tally.Options {
			marker := ""
			if r.CorrectAnswer != "" && opt.Label == r.CorrectAnswer {
				marker = "*"
			}
			fmt.Fprintf(w, "\t%s%s\t%d\t%.2f%%\n", opt.Label, marker, opt.Count, opt.Percentage)
		}
	}
}
