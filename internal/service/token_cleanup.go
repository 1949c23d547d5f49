package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/task-manager-api/internal/repository"
)

// TokenCleanup periodically purges refresh tokens that can never
// validate again, keeping the refresh_tokens table from growing without
// bound.
type TokenCleanup struct {
	cron   *cron.Cron
	tokens *repository.TokenRepo
}

func NewTokenCleanup(tokens *repository.TokenRepo) *TokenCleanup {
	return &TokenCleanup{cron: cron.New(), tokens: tokens}
}

// Start registers the purge job under the given cron spec (standard five
// field format or descriptors like "@hourly") and starts the scheduler.
func (t *TokenCleanup) Start(spec string) error {
	if _, err := t.cron.AddFunc(spec, t.run); err != nil {
		return err
	}
	t.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running purge to finish.
func (t *TokenCleanup) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

func (t *TokenCleanup) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := t.tokens.PurgeExpired(ctx)
	if err != nil {
		log.Printf("token-cleanup: purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("token-cleanup: removed %d stale refresh tokens", n)
	}
}
