// Package orchestrator runs the end-to-end pipeline: fetch every source,
// aggregate the week, index the bundle, and optionally upload it.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"newsweave/aggregate"
	"newsweave/common"
	"newsweave/config"
	"newsweave/events"
	"newsweave/rssfeeds"
	"newsweave/store"
	"newsweave/summarize"
	"newsweave/types"
	"newsweave/vectorindex"
	"newsweave/week"
)

// Pipeline owns the wired components for a full run. Indexer and Producer
// are optional; a nil value skips that stage.
type Pipeline struct {
	Cfg        *config.Config
	Summarizer summarize.Summarizer
	Indexer    *vectorindex.Indexer
	Producer   *events.Producer

	now func() time.Time
}

func New(cfg *config.Config, s summarize.Summarizer, ix *vectorindex.Indexer, p *events.Producer) *Pipeline {
	return &Pipeline{Cfg: cfg, Summarizer: s, Indexer: ix, Producer: p, now: time.Now}
}

// RunOnce executes one full cycle for the current week. Individual source or
// stage failures are logged and the run continues; only a failure to produce
// the combined bundle is returned as an error.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	currentWeek := week.Tag(p.now())
	log.Printf("=== Pipeline run, week %s ===", currentWeek)

	p.FetchAll(ctx)

	bundle, err := p.aggregator().ProcessWeek(ctx, currentWeek)
	if err != nil {
		return fmt.Errorf("aggregation failed for %s: %w", currentWeek, err)
	}
	if bundle == nil {
		log.Printf("No articles for week %s; nothing to index or upload", currentWeek)
		return nil
	}

	if p.Indexer != nil {
		added, err := p.Indexer.IndexBundle(bundle)
		if err != nil {
			log.Printf("Vector indexing failed: %v", err)
		} else {
			log.Printf("Indexed %d new article(s)", added)
		}
	}

	p.uploadBundle(ctx, bundle)

	log.Printf("=== Pipeline run complete ===")
	return nil
}

// FetchAll pulls every configured source, fail-soft per source, and
// publishes ingestion events for new articles when Kafka is configured.
func (p *Pipeline) FetchAll(ctx context.Context) []types.FetchResult {
	results := make([]types.FetchResult, 0, len(p.Cfg.Sources))
	for _, src := range p.Cfg.Sources {
		fetcher := rssfeeds.NewFetcher(src.Name, src.URL, store.ForSource(p.Cfg.DataDir, src.Name))
		fetcher.ExtractFull = p.Cfg.ExtractFullContent

		result, added := fetcher.FetchNew(ctx, p.Cfg.MaxArticlesPerSource)
		results = append(results, result)
		log.Printf("[%s] latest: %s", src.Name, result.Title)

		if p.Producer != nil {
			for _, article := range added {
				if err := p.Producer.PublishArticle(article); err != nil {
					log.Printf("[%s] event publish failed: %v", src.Name, err)
				}
			}
		}
	}
	return results
}

// ProcessWeek aggregates a specific week without fetching, for the `process`
// subcommand and re-runs of historical weeks.
func (p *Pipeline) ProcessWeek(ctx context.Context, weekTag string) (*types.WeeklyBundle, error) {
	return p.aggregator().ProcessWeek(ctx, weekTag)
}

// Combined regenerates only the combined bundle for a week.
func (p *Pipeline) Combined(ctx context.Context, weekTag string) (*types.WeeklyBundle, error) {
	return p.aggregator().Aggregate(ctx, weekTag)
}

func (p *Pipeline) aggregator() *aggregate.Aggregator {
	return aggregate.New(p.Cfg.DataDir, p.Cfg.Sources, p.Summarizer)
}

// uploadBundle pushes the combined bundle JSON to S3 when a bucket is
// configured. Upload failure never fails the run.
func (p *Pipeline) uploadBundle(ctx context.Context, bundle *types.WeeklyBundle) {
	if p.Cfg.S3Bucket == "" {
		return
	}

	client, err := common.NewS3(ctx, common.S3Config{
		Region:       p.Cfg.S3Region,
		Profile:      p.Cfg.S3Profile,
		UsePathStyle: p.Cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (upload skipped)", err)
		return
	}

	payload, err := json.MarshalIndent(bundle, "", "    ")
	if err != nil {
		log.Printf("Warning: failed to encode bundle for upload: %v", err)
		return
	}

	key := fmt.Sprintf("%scombined-week-%s.json", p.Cfg.S3Prefix, bundle.Week)
	uctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.Put(uctx, p.Cfg.S3Bucket, key, bytes.NewReader(payload), "application/json"); err != nil {
		log.Printf("S3 upload failed for %s: %v", key, err)
		return
	}
	log.Printf("Uploaded bundle to s3://%s/%s", p.Cfg.S3Bucket, key)
}
