package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealscout/internal/config"
	"dealscout/internal/dealcheck"
	"dealscout/internal/dealfeed"
	"dealscout/internal/ebay"
	"dealscout/internal/ranker"
	"dealscout/internal/report"
	"dealscout/internal/scrape"
)

func main() {
	var (
		query    = flag.String("q", "", "search query (empty for homepage deals)")
		auctions = flag.Bool("auctions", false, "fetch auctions instead of fixed-price deals")
		limit    = flag.Int("limit", 50, "page size")
		offset   = flag.Int("offset", 0, "page offset")
		pages    = flag.Int("pages", 1, "number of pages to fetch and merge")
		csvOut   = flag.String("csv", "", "write results as CSV to this file ('-' for stdout)")
		watch    = flag.Bool("watch", false, "keep running and refresh homepage results on the configured schedule")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.HasCredentials() && !cfg.ScrapeFallback {
		log.Fatalf("no API credentials configured; set %s and %s (or enable %s)",
			config.EnvClientID, config.EnvClientSecret, config.EnvScrapeFallback)
	}

	tokens := ebay.NewTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.Sandbox)

	var provider ebay.Provider = ebay.NewClient(tokens, cfg.Sandbox)
	if cfg.CachePath != "" {
		cached, err := ebay.NewCachedProvider(provider, cfg.CachePath)
		if err != nil {
			log.Fatalf("response cache: %v", err)
		}
		provider = cached
	}

	var rules *dealcheck.Config
	if cfg.MaxOriginalPriceMultiple > 0 {
		rules = dealcheck.DefaultConfig()
		rules.MaxOriginalMultiple = cfg.MaxOriginalPriceMultiple
	}

	feed := dealfeed.New(provider, dealfeed.Options{
		Scraper:     scrape.New(cfg.ScrapeFallback),
		Ranker:      ranker.NewClient(cfg.RankerEndpoint),
		FilterRules: rules,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch {
	case *watch:
		runWatch(feed, cfg.RefreshSchedule)
	case *auctions:
		runAuctions(ctx, feed, *query, *limit, *offset, *pages, *csvOut)
	default:
		runDeals(ctx, feed, *query, *limit, *offset, *pages, *csvOut)
	}
}

func runDeals(ctx context.Context, feed *dealfeed.Service, query string, limit, offset, pages int, csvOut string) {
	var title string
	var result dealfeed.DealsResult

	switch {
	case query == "":
		home := dealfeed.NewHomepage(feed).Deals(ctx)
		title = home.Title
		result = dealfeed.DealsResult{Deals: home.Deals, Total: home.Total, Error: home.Error}
	case pages > 1:
		title = query
		session := dealfeed.NewSession(feed, limit)
		session.Search(query)
		for i := 0; i < pages && (i == 0 || session.HasMoreDeals()); i++ {
			result = session.MoreDeals(ctx)
			if result.Error != "" {
				break
			}
		}
	default:
		title = query
		result = feed.FetchDeals(ctx, query, limit, offset)
		result.Deals = feed.RankAndFilterDeals(ctx, result.Deals, query)
	}

	if result.Error != "" {
		fmt.Fprintln(os.Stderr, result.Error)
	}

	if csvOut != "" {
		writeCSV(csvOut, func(w *os.File) error {
			return report.WriteDealsCSV(w, result.Deals)
		})
		return
	}

	fmt.Printf("%s: %d deals (of %d upstream)\n\n", title, len(result.Deals), result.Total)
	for i := range result.Deals {
		d := &result.Deals[i]
		line := fmt.Sprintf("%3d. %s  %s", i+1, d.Price, d.Title)
		if d.DiscountPercentage != "" {
			line += fmt.Sprintf("  (-%s%%, was %s)", d.DiscountPercentage, d.OriginalPrice)
		}
		fmt.Println(line)
		fmt.Printf("     %s\n", d.ListingURL)
	}
}

func runAuctions(ctx context.Context, feed *dealfeed.Service, query string, limit, offset, pages int, csvOut string) {
	var title string
	var result dealfeed.AuctionsResult

	switch {
	case query == "":
		home := dealfeed.NewHomepage(feed).Auctions(ctx)
		title = home.Title
		result = dealfeed.AuctionsResult{Auctions: home.Auctions, Total: home.Total, Error: home.Error}
	case pages > 1:
		title = query
		session := dealfeed.NewSession(feed, limit)
		session.Search(query)
		for i := 0; i < pages && (i == 0 || session.HasMoreAuctions()); i++ {
			result = session.MoreAuctions(ctx)
			if result.Error != "" {
				break
			}
		}
	default:
		title = query
		result = feed.FetchAuctions(ctx, query, limit, offset)
		result.Auctions = feed.RankAuctions(result.Auctions)
	}

	if result.Error != "" {
		fmt.Fprintln(os.Stderr, result.Error)
	}

	if csvOut != "" {
		writeCSV(csvOut, func(w *os.File) error {
			return report.WriteAuctionsCSV(w, result.Auctions)
		})
		return
	}

	fmt.Printf("%s: %d auctions (of %d upstream)\n\n", title, len(result.Auctions), result.Total)
	for i := range result.Auctions {
		a := &result.Auctions[i]
		fmt.Printf("%3d. %s  %s  ends %s\n", i+1, a.CurrentBid, a.Title, a.EndTime)
		fmt.Printf("     %s\n", a.ListingURL)
	}
}

func runWatch(feed *dealfeed.Service, schedule string) {
	if schedule == "" {
		schedule = "@every 1h"
	}
	home := dealfeed.NewHomepage(feed)
	if err := home.StartRefresh(schedule); err != nil {
		log.Fatalf("refresh schedule: %v", err)
	}
	defer home.StopRefresh()

	// Prime the cache once before waiting on the schedule.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	deals := home.Deals(ctx)
	cancel()
	log.Printf("watching: %s (%d deals cached), refresh %s", deals.Title, len(deals.Deals), schedule)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")
}

func writeCSV(path string, write func(*os.File) error) {
	out := os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("create %s: %v", path, err)
		}
		defer f.Close()
		out = f
	}
	if err := write(out); err != nil {
		log.Fatalf("write csv: %v", err)
	}
}
