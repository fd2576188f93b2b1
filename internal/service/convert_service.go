package service

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/semaphore"

	"stillcast/internal/apperrors"
	"stillcast/internal/config"
	"stillcast/internal/domain"
	"stillcast/internal/encoder"
	"stillcast/internal/metrics"
	"stillcast/internal/registry"
	"stillcast/internal/storage"
)

// ConvertService orchestrates one conversion request: it starts an encoding
// job, awaits its single terminal outcome, and on success promotes the
// artifact into the download registry. On every other outcome the output is
// removed; input cleanup is the encoder's responsibility.
type ConvertService struct {
	cfg       *config.Config
	store     *storage.FileStore
	encoder   *encoder.Encoder
	registry  *registry.Registry
	validator *validator.Validate
	sem       *semaphore.Weighted
	logger    *slog.Logger
}

// NewConvertService wires the orchestrator. When cfg.MaxConcurrentEncodes is
// positive, a weighted semaphore caps the number of simultaneously running
// external processes; zero leaves them uncapped.
func NewConvertService(
	cfg *config.Config,
	store *storage.FileStore,
	enc *encoder.Encoder,
	reg *registry.Registry,
	logger *slog.Logger,
) *ConvertService {
	s := &ConvertService{
		cfg:       cfg,
		store:     store,
		encoder:   enc,
		registry:  reg,
		validator: validator.New(),
		logger:    logger,
	}

	if cfg.MaxConcurrentEncodes > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentEncodes))
	}

	return s
}

// Convert runs one encoding job to its terminal outcome and returns either a
// registered artifact reference or a classified error. Exactly one of the two
// is produced per call.
func (s *ConvertService) Convert(ctx context.Context, req *domain.ConvertRequest) (*domain.ConversionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.cleanupInputs(req)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.cleanupInputs(req)
			return nil, fmt.Errorf("acquire encode slot: %w", err)
		}
		defer s.sem.Release(1)
	}

	outputPath := s.store.NewOutputPath()

	metrics.ConversionsStarted.Inc()
	start := time.Now()

	job, err := s.encoder.Start(req.AudioPath, req.ImagePath, outputPath)
	if err != nil {
		metrics.ConversionsFailed.Inc()
		s.logger.Error("encoder spawn failed", "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrEncoderSpawn, err)
	}

	// The job resolves exactly once, bounded by the watchdog, so this wait
	// cannot hang. A client disconnect does not cancel the job: cleanup
	// invariants depend on observing the terminal outcome.
	res := <-job.Done()
	metrics.EncodeDuration.Observe(time.Since(start).Seconds())

	switch res.State {
	case domain.JobSucceeded:
		size, err := s.store.Size(outputPath)
		if err != nil || size == 0 {
			s.store.Remove(outputPath)
			metrics.ConversionsFailed.Inc()
			s.logger.Error("encoder reported success but produced no artifact", "output", outputPath)
			return nil, &apperrors.EncodeError{ExitCode: 0, Stderr: res.Stderr}
		}

		id := s.registry.Register(outputPath)
		metrics.ConversionsSucceeded.Inc()
		s.logger.Info("conversion completed",
			"id", id,
			"size_bytes", size,
			"duration", time.Since(start),
		)
		return &domain.ConversionResult{ID: id, ExpiresIn: s.registry.TTL()}, nil

	case domain.JobTimedOut:
		s.store.Remove(outputPath)
		metrics.ConversionsTimedOut.Inc()
		s.logger.Warn("conversion timed out", "timeout", s.cfg.EncodeTimeout)
		return nil, apperrors.ErrEncodeTimeout

	default:
		s.store.Remove(outputPath)
		metrics.ConversionsFailed.Inc()
		s.logger.Error("conversion failed",
			"exit_code", res.ExitCode,
			"signal", res.Signal,
			"stderr", res.Stderr,
		)
		return nil, &apperrors.EncodeError{
			ExitCode: res.ExitCode,
			Signal:   res.Signal,
			Stderr:   res.Stderr,
		}
	}
}

// Resolve maps a download identifier to the artifact path.
func (s *ConvertService) Resolve(id string) (string, error) {
	path, ok := s.registry.Lookup(id)
	if !ok {
		return "", apperrors.ErrArtifactNotFound
	}
	return path, nil
}

func (s *ConvertService) cleanupInputs(req *domain.ConvertRequest) {
	if req.AudioPath != "" {
		s.store.Remove(req.AudioPath)
	}
	if req.ImagePath != "" {
		s.store.Remove(req.ImagePath)
	}
}
