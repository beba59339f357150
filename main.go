package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	config "daybrief/app/configs"
	"daybrief/app/core/agent"
	"daybrief/app/core/brief"
	"daybrief/app/core/catalog"
	"daybrief/app/core/commute"
	"daybrief/app/core/db"
	"daybrief/app/core/llm"
	"daybrief/app/core/places"
	"daybrief/app/core/scheduler"
	"daybrief/app/core/weather"
	"daybrief/app/pkg/logger"
	"daybrief/app/pkg/types"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Daybrief starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	tz, err := time.LoadLocation(cfg.Brief.Timezone)
	if err != nil {
		logger.Error("Bad timezone %q, using local: %v", cfg.Brief.Timezone, err)
		tz = time.Local
	}

	database, err := db.NewSQLiteDB(cfg.Brief.DataDir)
	if err != nil {
		logger.Error("Failed to initialize DB: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	store := db.NewBriefStore(database)

	composer := buildComposer(cfg, store, tz)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobScheduler := scheduler.New()
	err = jobScheduler.Register(scheduler.JobSpec{
		Name:    "daily-brief",
		At:      cfg.Brief.At,
		TZ:      tz,
		Timeout: 5 * time.Minute,
		Run: func(runCtx context.Context) error {
			out, err := composer.Compose(runCtx)
			if err != nil {
				return err
			}
			logger.Info("Daily brief saved: %s", out.ReportPath)
			return nil
		},
	})
	if err != nil {
		logger.Error("Failed to register daily brief job: %v", err)
		os.Exit(1)
	}
	if err := jobScheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler: %v", err)
		os.Exit(1)
	}
	defer func() {
		for _, st := range jobScheduler.Snapshot() {
			if st.Runs > 0 {
				logger.Info("Job %s: %d run(s), last ended %s, last error %q", st.Name, st.Runs, st.LastEndAt.Format(time.RFC3339), st.LastError)
			}
		}
		if err := jobScheduler.Stop(3 * time.Second); err != nil {
			logger.Error("Scheduler shutdown timeout: %v", err)
		}
	}()

	health := jobScheduler.Health()
	logger.Info("Scheduler running with %d job(s).", health.RegisteredJobs)
	logger.Info("Daybrief is running. Daily brief at %s %s.", cfg.Brief.At, cfg.Brief.Timezone)
	fmt.Printf("Daily brief scheduled at %s (%s); reports under %s\n", cfg.Brief.At, cfg.Brief.Timezone, cfg.Brief.ReportDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal: %v. Daybrief shutting down...", sig)
	cancel()
}

func buildComposer(cfg config.Config, store *db.BriefStore, tz *time.Location) *brief.Composer {
	completer := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	})

	catalogSvc := catalog.NewService(
		catalog.NewRainforestClient(os.Getenv("RAINFOREST_API_KEY"), "", 0),
		cfg.Catalog.Provider,
		cfg.Catalog.CacheDir,
		time.Duration(cfg.Catalog.CacheTTLHours)*time.Hour,
	)

	router := places.NewMapboxClient(os.Getenv("MAPBOX_TOKEN"), 0)
	resolver := places.NewResolver(
		router,
		places.NewOverpassClient(0),
		cfg.Places.CacheDir,
		time.Duration(cfg.Places.CacheTTLMin)*time.Minute,
	)

	assistant := agent.New(completer, catalogSvc, resolver, cfg.Brief.ProfilePath, tz)

	home := types.LatLng{Lat: cfg.Home.Lat, Lon: cfg.Home.Lon}
	office := types.LatLng{Lat: cfg.Office.Lat, Lon: cfg.Office.Lon}

	return brief.NewComposer(
		weather.NewOpenMeteoClient(cfg.Brief.Fahrenheit, 0),
		commute.NewAdvisor(router, tz),
		&brief.FileEvents{Path: "config/events.json"},
		assistant,
		store,
		brief.Settings{
			Home:             home,
			Office:           office,
			ArriveBy:         cfg.Commute.ArriveBy,
			BufferMin:        cfg.Commute.BufferMin,
			RerouteThreshold: cfg.Commute.RerouteThresholdMin,
			ReportDir:        cfg.Brief.ReportDir,
		},
		tz,
	)
}
