package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalScrapes tracks the number of authorized scrape runs started.
	TotalScrapes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_runs_total",
		Help: "The total number of scrape pipeline runs started.",
	})
	// TotalScrapeFailures tracks failed runs, labeled by failure code.
	TotalScrapeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_run_failures_total",
		Help: "The total number of failed scrape runs, by failure code.",
	}, []string{"code"})
	// TotalItemsExtracted tracks records yielded by the extractor.
	TotalItemsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_items_extracted_total",
		Help: "The total number of records extracted from fetched pages.",
	})
	// TotalItemsUpserted tracks records written to the store.
	TotalItemsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_items_upserted_total",
		Help: "The total number of records upserted into the store.",
	})
)
