// Package maintenance provides one-shot administrative tasks on the
// settings database, invoked by flags instead of the normal display loop.
package maintenance

import (
	"github.com/rs/zerolog/log"
	"github.com/telegauge/telegauge/internal/config"
	"github.com/telegauge/telegauge/internal/storage"
)

// Run checks if any maintenance flags are set and executes the corresponding
// tasks. Returns true if a task was executed (indicating the program should
// exit).
func Run(cfg *config.Config, store *storage.Repository) bool {
	if cfg.Storage.SetIdentity != "" {
		if err := store.SetIdentity(cfg.Storage.SetIdentity); err != nil {
			log.Error().Err(err).Msg("Failed to store identity")
		} else {
			log.Info().Str("identity", cfg.Storage.SetIdentity).Msg("Identity stored")
		}
		return true
	}

	if cfg.Storage.ResetIdentity {
		if err := store.ClearIdentity(); err != nil {
			log.Error().Err(err).Msg("Failed to clear identity")
		} else {
			log.Info().Msg("Identity cleared, the device will show the setup screen")
		}
		return true
	}

	if cfg.Storage.ForgetWeather {
		if err := store.ForgetWeather(); err != nil {
			log.Error().Err(err).Msg("Failed to drop weather snapshot")
		} else {
			log.Info().Msg("Persisted weather snapshot dropped")
		}
		return true
	}

	return false
}
