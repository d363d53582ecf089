package services

import (
	"time"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// Expired bans stay around this long for audit before being purged.
const banRetention = 30 * 24 * time.Hour

func DoAutoDatabaseCleanup() {
	deadline := time.Now().Add(-60 * time.Minute)
	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var count int64
	for _, model := range database.AutoMaintainRange {
		tx := database.C.Unscoped().Where("deleted_at IS NOT NULL AND deleted_at <= ?", deadline).Delete(model)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
		}
		count += tx.RowsAffected
	}

	tx := database.C.Unscoped().
		Where("expires_at <= ?", time.Now().Add(-banRetention)).
		Delete(&models.Ban{})
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when purging stale bans...")
	}
	count += tx.RowsAffected

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}
