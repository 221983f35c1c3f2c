package main

import (
	"context"
	"flag"
	"os"

	"github.com/courtlytics/pbp/internal/testgames"
	"github.com/courtlytics/pbp/pkg/logger"
)

func main() {
	defaults := testgames.DefaultConfig()
	var (
		games    = flag.Int("games", defaults.Games, "Number of games to generate")
		periods  = flag.Int("periods", defaults.Periods, "Regulation periods per game")
		poss     = flag.Int("possessions", defaults.Possessions, "Possessions per period")
		seed     = flag.Int64("seed", 0, "Random seed (0 = non-reproducible)")
		starters = flag.Bool("starters", true, "Attach explicit starter lists")
		roster   = flag.Bool("roster", true, "Attach full rosters")
		shuffle  = flag.Bool("shuffle", false, "Emit raw events out of order")
		out      = flag.String("out", "games", "Output directory for game JSON files")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()
	log := logger.Get().Named("gamegen")

	cfg := defaults
	cfg.Games = *games
	cfg.Periods = *periods
	cfg.Possessions = *poss
	cfg.Seed = *seed
	cfg.WithStarters = *starters
	cfg.WithRoster = *roster
	cfg.Shuffle = *shuffle

	jobs := testgames.New(cfg).Generate()
	if err := testgames.WriteJobs(*out, jobs); err != nil {
		log.Error(ctx, "failed to write games", logger.Error(err))
		os.Exit(1)
	}

	events := 0
	for i := range jobs {
		events += len(jobs[i].Raw)
	}
	log.Info(ctx, "games written",
		logger.Int("games", len(jobs)),
		logger.Int("events", events),
		logger.String("dir", *out),
	)
}
