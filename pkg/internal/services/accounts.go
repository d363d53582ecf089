package services

import (
	"fmt"

	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
)

func GetAccount(id string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		return account, fmt.Errorf("account not found: %v", err)
	}
	return account, nil
}
