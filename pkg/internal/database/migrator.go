package database

import (
	"github.com/nexocrm/messaging/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.Channel{},
	&models.ChannelMember{},
	&models.Message{},
	&models.Ban{},
	&models.PushSubscription{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
