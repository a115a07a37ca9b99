package service

import (
	"context"
	"time"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/repository/unitofwork"
)

type IMaintenanceService interface {
	// PurgeExpiredTokens deletes verification and reset tokens past expiry.
	// Returns how many rows were removed.
	PurgeExpiredTokens(ctx context.Context) (int64, error)

	// StartPeriodicPurge runs PurgeExpiredTokens on the given interval until
	// the context is cancelled.
	StartPeriodicPurge(ctx context.Context, interval time.Duration)
}

type maintenanceService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewMaintenanceService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IMaintenanceService {
	return &maintenanceService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *maintenanceService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	verification, err := uow.UserRepository().DeleteExpiredVerificationTokens(ctx, now)
	if err != nil {
		return 0, err
	}

	reset, err := uow.UserRepository().DeleteExpiredResetTokens(ctx, now)
	if err != nil {
		return verification, err
	}

	return verification + reset, nil
}

func (s *maintenanceService) StartPeriodicPurge(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := s.PurgeExpiredTokens(ctx)
				if err != nil {
					s.log.Error("maintenance", "token purge failed", map[string]interface{}{"error": err})
					continue
				}
				if purged > 0 {
					s.log.Info("maintenance", "purged expired tokens", map[string]interface{}{"count": purged})
				}
			}
		}
	}()
}
