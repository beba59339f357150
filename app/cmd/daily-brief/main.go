package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
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
	"daybrief/app/core/weather"
	"daybrief/app/pkg/logger"
	"daybrief/app/pkg/types"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config json")
	eventsPath := flag.String("events", filepath.Join("config", "events.json"), "path to today's events json")
	docxOut := flag.String("docx", "", "also export the brief as a .docx to this path")
	noHistory := flag.Bool("no-history", false, "skip recording the brief in the history db")
	history := flag.Int("history", 0, "print the last N stored briefs and exit")
	showDay := flag.String("show", "", "print the stored brief for a day (YYYY-MM-DD) and exit")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("daily brief failed: init logger: %v", err)
	}

	cfg, err := config.LoadConfigFile(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "daily brief failed: load config: %v\n", err)
			os.Exit(2)
		}
		cfg = config.DefaultConfig()
	}

	tz, err := time.LoadLocation(cfg.Brief.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "daily brief failed: bad timezone %q: %v\n", cfg.Brief.Timezone, err)
		os.Exit(2)
	}

	if *history > 0 || *showDay != "" {
		database, err := db.NewSQLiteDB(cfg.Brief.DataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daily brief failed: open db: %v\n", err)
			os.Exit(2)
		}
		defer database.Close()
		store := db.NewBriefStore(database)

		if *showDay != "" {
			err = showBrief(store, *showDay)
		} else {
			err = printHistory(store, *history)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "daily brief failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var store *db.BriefStore
	if !*noHistory {
		database, err := db.NewSQLiteDB(cfg.Brief.DataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daily brief failed: open db: %v\n", err)
			os.Exit(2)
		}
		defer database.Close()
		store = db.NewBriefStore(database)
	}

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

	composer := brief.NewComposer(
		weather.NewOpenMeteoClient(cfg.Brief.Fahrenheit, 0),
		commute.NewAdvisor(router, tz),
		&brief.FileEvents{Path: *eventsPath},
		assistant,
		store,
		brief.Settings{
			Home:             types.LatLng{Lat: cfg.Home.Lat, Lon: cfg.Home.Lon},
			Office:           types.LatLng{Lat: cfg.Office.Lat, Lon: cfg.Office.Lon},
			ArriveBy:         cfg.Commute.ArriveBy,
			BufferMin:        cfg.Commute.BufferMin,
			RerouteThreshold: cfg.Commute.RerouteThresholdMin,
			ReportDir:        cfg.Brief.ReportDir,
		},
		tz,
	)

	out, err := composer.Compose(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "daily brief failed: %v\n", err)
		os.Exit(1)
	}

	if *docxOut != "" {
		if err := brief.ExportDocx(out, *docxOut); err != nil {
			fmt.Fprintf(os.Stderr, "daily brief failed: export docx: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("brief saved: %s (scenario=%s", out.ReportPath, out.Plan.Plan.Scenario)
	if out.Plan.Fallback {
		fmt.Print(", planner fallback")
	}
	fmt.Println(")")
	if *docxOut != "" {
		fmt.Printf("docx saved: %s\n", *docxOut)
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println(out.Markdown)
}

func showBrief(store *db.BriefStore, day string) error {
	record, err := store.ByDay(day)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no stored brief for %s", day)
	}
	fmt.Println(record.Markdown)
	return nil
}

func printHistory(store *db.BriefStore, limit int) error {
	records, err := store.Recent(limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no stored briefs")
		return nil
	}
	for _, record := range records {
		fmt.Printf("%s  %-16s %s\n", record.Day, record.Scenario, record.ReportPath)
		picks, err := store.Picks(record.ID)
		if err != nil {
			return err
		}
		for _, p := range picks {
			price := "?"
			if p.Price != nil {
				price = fmt.Sprintf("$%.2f", *p.Price)
			}
			fmt.Printf("    pick: %s (%s)\n", p.Title, price)
		}
	}
	return nil
}
