package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"newsweave/aggregate"
	"newsweave/api"
	"newsweave/config"
	"newsweave/events"
	"newsweave/orchestrator"
	"newsweave/summarize"
	"newsweave/tui"
	"newsweave/vectorindex"
)

func main() {
	log.SetOutput(os.Stderr)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("fatal: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cfg := config.FromEnv()

	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "run":
		if err := buildPipeline(cfg).RunOnce(ctx); err != nil {
			log.Fatalf("pipeline run failed: %v", err)
		}

	case "daily":
		if len(os.Args) > 2 {
			cfg.ScheduleHour, cfg.ScheduleMinute = parseScheduleArg(os.Args[2], cfg)
		}
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := buildPipeline(cfg).RunDaily(ctx); err != nil && err != context.Canceled {
			log.Fatalf("daily loop stopped: %v", err)
		}

	case "fetch":
		results := buildPipeline(cfg).FetchAll(ctx)
		for _, r := range results {
			fmt.Printf("%-14s %s\n", r.Source+":", r.Title)
		}

	case "process":
		weekTag := optionalArg(2)
		bundle, err := buildPipeline(cfg).ProcessWeek(ctx, weekTag)
		if err != nil {
			log.Fatalf("failed to process week: %v", err)
		}
		if bundle == nil {
			fmt.Println("No articles found for the requested week")
			return
		}
		fmt.Printf("Week %s: %d articles from %d source(s)\n", bundle.Week, bundle.ArticleCount, len(bundle.Sources))

	case "combined":
		weekTag := optionalArg(2)
		bundle, err := buildPipeline(cfg).Combined(ctx, weekTag)
		if err != nil {
			log.Fatalf("failed to build combined bundle: %v", err)
		}
		if bundle == nil {
			fmt.Println("No articles found for the requested week")
			return
		}
		fmt.Printf("Wrote combined bundle for %s (%d articles)\n", bundle.Week, bundle.ArticleCount)

	case "list":
		weeks := aggregate.ListWeeks(cfg.DataDir)
		if len(weeks) == 0 {
			fmt.Println("No weekly bundles found")
			return
		}
		for _, wk := range weeks {
			fmt.Printf("%s: %d articles\n", wk.Week, wk.ArticleCount)
		}

	case "index":
		indexer := buildIndexer(cfg)
		if indexer == nil {
			log.Fatal("vector index not configured (set COHERE_API_KEY or OPENAI_API_KEY and a reachable Chroma)")
		}
		defer indexer.Close()
		bundle, err := aggregate.LoadBundleOrLatest(cfg.DataDir, optionalArg(2))
		if err != nil {
			log.Fatalf("no bundle to index: %v", err)
		}
		added, err := indexer.IndexBundle(bundle)
		if err != nil {
			log.Fatalf("indexing failed: %v", err)
		}
		fmt.Printf("Indexed %d new article(s) for week %s\n", added, bundle.Week)

	case "index-worker":
		runIndexWorker(ctx, cfg)

	case "serve":
		serve(cfg)

	case "tui":
		if err := tui.Run(cfg.DataDir); err != nil {
			log.Fatalf("tui failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`newsweave - weekly AI news aggregation

Usage:
  newsweave run                 Run the full pipeline once (fetch, aggregate, index)
  newsweave daily [HH:MM]       Run the pipeline every day at the given local time
  newsweave fetch               Fetch all sources without aggregating
  newsweave process [week]      Build weekly artifacts for a week (default: current)
  newsweave combined [week]     Rebuild only the combined bundle for a week
  newsweave list                List available weeks
  newsweave index [week]        Index a week's bundle into the vector store
  newsweave index-worker        Consume article events from Kafka and index them
  newsweave serve               Start the HTTP API
  newsweave tui                 Browse weekly bundles in the terminal

Examples:
  newsweave process 2025-W31
  newsweave daily 07:30`)
}

func optionalArg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func parseScheduleArg(raw string, cfg *config.Config) (int, int) {
	var hour, minute int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		log.Printf("invalid schedule %q, keeping %02d:%02d", raw, cfg.ScheduleHour, cfg.ScheduleMinute)
		return cfg.ScheduleHour, cfg.ScheduleMinute
	}
	return hour, minute
}

// buildPipeline wires the optional collaborators, degrading gracefully when
// a backing service is not configured or unreachable.
func buildPipeline(cfg *config.Config) *orchestrator.Pipeline {
	return orchestrator.New(cfg, buildSummarizer(cfg), buildIndexer(cfg), buildProducer(cfg))
}

func buildSummarizer(cfg *config.Config) summarize.Summarizer {
	if cfg.CohereAPIKey == "" {
		log.Println("COHERE_API_KEY not set; summaries will be placeholders")
		return nil
	}
	return summarize.NewCohere(cfg.CohereAPIKey, cfg.CohereModel)
}

func buildIndexer(cfg *config.Config) *vectorindex.Indexer {
	embedder := vectorindex.NewEmbeddingsProvider(cfg.CohereAPIKey, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if embedder == nil {
		log.Println("No embeddings provider configured; vector indexing disabled")
		return nil
	}

	chroma, err := vectorindex.NewChroma(vectorindex.ChromaConfig{
		Host:           cfg.ChromaHost,
		Port:           cfg.ChromaPort,
		CollectionName: cfg.ChromaCollection,
	}, embedder)
	if err != nil {
		log.Printf("Warning: Chroma unavailable: %v (vector indexing disabled)", err)
		return nil
	}

	var seen *vectorindex.SeenLinks
	if cfg.RedisAddr != "" {
		seen, err = vectorindex.NewSeenLinks(vectorindex.SeenConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.SeenKey,
			TTL:      cfg.SeenTTL,
		})
		if err != nil {
			log.Printf("Warning: seen-link filter unavailable: %v (falling back to Chroma lookups)", err)
			seen = nil
		}
	}
	return vectorindex.NewIndexer(chroma, seen)
}

func buildProducer(cfg *config.Config) *events.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Printf("Warning: Kafka unavailable: %v (event publishing disabled)", err)
		return nil
	}
	return producer
}

func runIndexWorker(ctx context.Context, cfg *config.Config) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS not set")
	}
	indexer := buildIndexer(cfg)
	if indexer == nil {
		log.Fatal("vector index not configured")
	}
	defer indexer.Close()

	consumer, err := events.NewConsumer(events.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
		Handler: &events.ArticleEventHandler{
			Process: func(ctx context.Context, event *events.ArticleEvent) error {
				added, err := indexer.IndexArticle(event.Article)
				if err != nil {
					return err
				}
				if added {
					log.Printf("Indexed article: %s", event.Article.Title)
				}
				return nil
			},
		},
	})
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("consumer failed to start: %v", err)
	}
	<-ctx.Done()
	_ = consumer.Close()
}

func serve(cfg *config.Config) {
	deps := api.Deps{DataDir: cfg.DataDir}

	if indexer := buildIndexer(cfg); indexer != nil {
		deps.Searcher = indexer
	}
	if cfg.CohereAPIKey != "" {
		deps.Chatter = summarize.NewCohere(cfg.CohereAPIKey, cfg.CohereModel)
	}
	pipeline := buildPipeline(cfg)
	deps.Refresh = pipeline.RunOnce

	r := api.NewRouter(deps)
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  GET  /api/weeks")
	log.Println("  GET  /api/news?week=<tag>")
	log.Println("  POST /api/search")
	log.Println("  POST /api/chat")
	log.Println("  POST /api/rss/refresh")
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
