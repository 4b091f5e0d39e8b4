package main

import (
	"os"
	"os/signal"
	"syscall"

	pkg "github.com/campuskit/coursezoom/pkg/internal"
	"github.com/campuskit/coursezoom/pkg/internal/database"
	"github.com/campuskit/coursezoom/pkg/internal/http"
	"github.com/campuskit/coursezoom/pkg/internal/services"
	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

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

	// Server
	http.NewServer()
	go http.Listen()

	// Configure timed tasks
	viper.SetDefault("sync.interval", "@every 10m")
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc(viper.GetString("sync.interval"), func() {
		services.DoSyncCourseMeetings()
	})
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.Start()

	log.Info().Msgf("CourseZoom v%s is started...", pkg.AppVersion)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msgf("CourseZoom v%s is quitting...", pkg.AppVersion)

	quartz.Stop()
}
