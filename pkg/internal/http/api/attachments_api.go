package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nexocrm/messaging/pkg/internal/services"
)

func uploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "a file field is required")
	}

	src, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	defer src.Close()

	url, err := services.UploadAvatar(c.Context(), src, file.Size, file.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return c.JSON(fiber.Map{"url": url})
}
