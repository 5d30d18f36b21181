package jobs

import (
	"context"
	"fmt"

	"github.com/hadoku/trader/internal/data/repos"
	"github.com/hadoku/trader/internal/external/capitol"
	"github.com/hadoku/trader/pkg/logger"
)

// DisclosureJob scrapes recent congressional disclosures and stores the
// new ones. Duplicates are dropped at the database layer.
type DisclosureJob struct {
	client  *capitol.Client
	signals *repos.SignalRepository
	logger  *logger.Logger
}

func NewDisclosureJob(client *capitol.Client, signals *repos.SignalRepository, log *logger.Logger) *DisclosureJob {
	return &DisclosureJob{
		client:  client,
		signals: signals,
		logger:  log,
	}
}

func (j *DisclosureJob) Name() string {
	return "disclosure_fetch"
}

// Schedule returns the cron schedule (7 AM ET daily, before market open)
func (j *DisclosureJob) Schedule() string {
	return "0 0 7 * * *"
}

func (j *DisclosureJob) Run(ctx context.Context) error {
	signals, err := j.client.FetchRecent(ctx)
	if err != nil {
		return fmt.Errorf("fetch disclosures: %w", err)
	}

	stored := 0
	for _, sig := range signals {
		if err := j.signals.Insert(ctx, sig); err != nil {
			return fmt.Errorf("store signal %s/%s: %w", sig.Politician, sig.Ticker, err)
		}
		stored++
	}

	j.logger.WithFields(map[string]interface{}{
		"fetched": len(signals),
		"stored":  stored,
	}).Info("Disclosure fetch completed")

	return nil
}
