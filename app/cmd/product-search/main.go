package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	config "daybrief/app/configs"
	"daybrief/app/core/catalog"
	"daybrief/app/core/scoring"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config json")
	query := flag.String("query", "", "catalog search query")
	budget := flag.Float64("budget", 0, "budget in dollars (0 for none)")
	deadline := flag.String("deadline", "", "need-by date YYYY-MM-DD")
	primeOnly := flag.Bool("prime", false, "keep prime-eligible items only")
	limit := flag.Int("limit", 10, "max rows to print")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "product search failed: -query is required")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfigFile(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "product search failed: load config: %v\n", err)
			os.Exit(2)
		}
		cfg = config.DefaultConfig()
	}

	svc := catalog.NewService(
		catalog.NewRainforestClient(os.Getenv("RAINFOREST_API_KEY"), "", 0),
		cfg.Catalog.Provider,
		cfg.Catalog.CacheDir,
		time.Duration(cfg.Catalog.CacheTTLHours)*time.Hour,
	)

	params := catalog.SearchParams{
		Query:     *query,
		Deadline:  *deadline,
		PrimeOnly: *primeOnly,
		Zip:       cfg.Catalog.Zip,
	}
	if *budget > 0 {
		params.Budget = budget
	}

	items, err := svc.Search(context.Background(), params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "product search failed: %v\n", err)
		os.Exit(1)
	}

	ranked := scoring.Score(items, *query)
	if len(ranked) > *limit {
		ranked = ranked[:*limit]
	}

	if len(ranked) == 0 {
		fmt.Println("no results")
		return
	}

	fmt.Printf("%-6s %-8s %-6s %-5s %s\n", "score", "price", "prime", "days", "title")
	for _, r := range ranked {
		price := "?"
		if r.Price != nil {
			price = fmt.Sprintf("$%.2f", *r.Price)
		}
		days := "?"
		if r.DeliveryDays != nil {
			days = fmt.Sprintf("%d", *r.DeliveryDays)
		}
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Printf("%-6.3f %-8s %-6t %-5s %s\n", r.Scores.Total, price, r.Prime, days, title)
	}
}
