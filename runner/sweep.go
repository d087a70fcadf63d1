package runner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/legal-nlp/sjp-runner/runconfig"
)

// Sweep runs the language x seed matrix for one model/architecture,
// back-to-back. Each run gets its own derived configuration and output
// directory leaf.
type Sweep struct {
	cfg Config
}

// NewSweep creates a sweep over the configured languages and seeds.
func NewSweep(cfg Config) *Sweep {
	return &Sweep{cfg: cfg}
}

// Run executes every run in the matrix sequentially.
// It stops at the first failure unless "SweepContinueOnFailure" is set.
func (s *Sweep) Run() error {
	base := s.cfg.Run
	total := len(base.SweepLanguages) * len(base.SweepSeeds)
	s.cfg.Logger.Info("starting sweep",
		zap.String("model-id", base.ModelID),
		zap.Strings("languages", base.SweepLanguages),
		zap.Ints("seeds", base.SweepSeeds),
		zap.Int("total-runs", total),
	)

	now := time.Now()
	var errs []string
	for _, lang := range base.SweepLanguages {
		for _, seed := range base.SweepSeeds {
			select {
			case <-s.cfg.Stopc:
				s.cfg.Logger.Info("stopping sweep")
				return errors.New("sweep stopped")
			default:
			}

			run, err := base.WithRun(runconfig.Language(lang), seed)
			if err != nil {
				// configuration errors fail the whole sweep
				return err
			}
			rn := New(Config{
				Logger:    s.cfg.Logger,
				LogWriter: s.cfg.LogWriter,
				Stopc:     s.cfg.Stopc,
				Run:       run,
			})
			s.cfg.Logger.Info("sweep run starting", zap.String("run-name", run.RunName))
			if rerr := rn.Run(); rerr != nil {
				if !base.SweepContinueOnFailure {
					return fmt.Errorf("sweep run %q failed: %v", run.RunName, rerr)
				}
				s.cfg.Logger.Warn("sweep run failed but continue",
					zap.String("run-name", run.RunName),
					zap.Error(rerr),
				)
				errs = append(errs, rerr.Error())
				continue
			}
			s.cfg.Logger.Info("sweep run completed", zap.String("run-name", run.RunName))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, ", "))
	}
	s.cfg.Logger.Info("completed sweep",
		zap.Int("total-runs", total),
		zap.String("took", time.Since(now).String()),
	)
	return nil
}
