package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/mtf-triage/backend/internal/evaluation"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
)

func main() {
	goldenPath := flag.String("cases", "config/golden_cases.json", "path to the golden case file")
	failOnMismatch := flag.Bool("strict", false, "exit non-zero when any case disagrees")
	flag.Parse()

	observability.InitLogger("mtf-triage-evaluate", os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))

	path := *goldenPath
	if _, err := os.Stat("backend/" + path); err == nil {
		path = "backend/" + path
	}

	cases, err := evaluation.LoadGoldenCases(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to load golden cases")
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		log.Fatal().Err(err).Msg("Invalid golden case file")
	}

	runner := evaluation.NewRunner(triage.NewEngine(triage.DefaultRules()))
	summary, err := runner.Run(context.Background(), cases)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	if *failOnMismatch && len(summary.Mismatches) > 0 {
		os.Exit(1)
	}
}
