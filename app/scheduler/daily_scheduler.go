// Package scheduler runs the deal pipeline on a fixed interval, cycling
// through the configured origin markets.
package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	businessflow "github.com/mmutvidal/escapadas-go/business_flow"
	"github.com/mmutvidal/escapadas-go/config"
)

// DailyScheduler drives one pipeline run per tick, advancing through the
// market list round-robin so every origin gets a slot.
type DailyScheduler struct {
	dealFlow businessflow.DealSelectionFlow
	markets  []config.Market
	interval time.Duration
	logger   *log.Logger

	mu   sync.Mutex
	next int
}

// NewDailyScheduler creates a scheduler with a rotating log file under
// logDir, mirrored to stdout.
func NewDailyScheduler(
	dealFlow businessflow.DealSelectionFlow,
	markets []config.Market,
	cfg config.SchedulerConfig,
	logCfg config.LoggingConfig,
) *DailyScheduler {
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "scheduler.log"),
		MaxSize:    logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAgeDays,
		Compress:   logCfg.Compress,
	}
	mw := io.MultiWriter(os.Stdout, rotator)
	logger := log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)

	return &DailyScheduler{
		dealFlow: dealFlow,
		markets:  markets,
		interval: cfg.Interval,
		logger:   logger,
	}
}

// Logger exposes the scheduler's mirrored logger so the flows can share it.
func (s *DailyScheduler) Logger() *log.Logger {
	return s.logger
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *DailyScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *DailyScheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("panic in pipeline run: %v", r)
		}
	}()

	market := s.nextMarket()
	s.logger.Printf("tick: running pipeline for %s", market.Origin)

	sel, err := s.dealFlow.RunDaily(ctx, market)
	switch {
	case errors.Is(err, businessflow.ErrNoOffers):
		s.logger.Printf("%s: no offers in window, skipping", market.Origin)
	case errors.Is(err, businessflow.ErrNoCandidates):
		s.logger.Printf("%s: no candidates passed the filters, skipping", market.Origin)
	case err != nil:
		s.logger.Printf("%s: pipeline failed: %v", market.Origin, err)
	default:
		s.logger.Printf("%s: selection ready, %d candidates, main %s-%s",
			market.Origin, len(sel.Candidates),
			sel.Main.Offer.Origin, sel.Main.Offer.Destination)
	}
}

func (s *DailyScheduler) nextMarket() config.Market {
	s.mu.Lock()
	defer s.mu.Unlock()
	market := s.markets[s.next%len(s.markets)]
	s.next++
	return market
}
