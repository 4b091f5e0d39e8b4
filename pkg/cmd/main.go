package main

import (
	"fmt"
	"os"

	"github.com/campuskit/coursezoom/pkg/internal/database"
	"github.com/campuskit/coursezoom/pkg/internal/services"
	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

// One-shot runner for a single reconciliation pass, handy for operators
// who want to see what the scheduled job would do right now.
func main() {
	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to database
	if err := database.NewSource(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Connect to the meeting provider
	if err := zoom.Setup(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when setting up the zoom client.")
	}

	report := services.DoSyncCourseMeetings()

	fmt.Printf("Sync pass %s processed %d meeting(s):\n", report.PassID, report.Processed)
	for key, outcome := range report.Details {
		switch outcome {
		case "updated":
			color.Green("  %s: moved to the next course date", key)
		case "deleted":
			color.Yellow("  %s: gone in zoom, deleted locally", key)
		case "failed":
			color.Red("  %s: failed, will be retried next pass", key)
		default:
			fmt.Printf("  %s: %v\n", key, outcome)
		}
	}
	fmt.Printf("updated=%d deleted=%d skipped=%d failed=%d\n",
		report.Updated, report.Deleted, report.Skipped, report.Failed)
}
