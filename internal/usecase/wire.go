package usecase

import (
	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/external_resource/porkbun"
	"github.com/thinko/swinelink/internal/repository"
	"github.com/thinko/swinelink/pkg/config"
	"github.com/thinko/swinelink/pkg/storage"
)

// NewFromConfig builds the registrar usecase with its client, state store
// and repositories. cfg must already be validated.
func NewFromConfig(cfg *config.Config, logger hclog.Logger) RegistrarUsecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	// Initialize storage
	stateStorage := storage.NewStateStorage(cfg.StateFile, logger.Named("state"))

	// Initialize Porkbun client
	client := porkbun.NewClient(porkbun.Options{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Logger:    logger.Named("porkbun"),
	})

	// Initialize repositories
	cooldownRepo := repository.NewCooldownRepository(stateStorage, nil, logger.Named("cooldown"))
	pricingRepo := repository.NewPricingRepository(client, stateStorage, nil, logger.Named("pricing"))

	return NewRegistrarUsecase(client, cooldownRepo, pricingRepo, logger.Named("usecase"))
}
