package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/smallbiznis/invoicedesk/internal/settings/domain"
)

type updateSettingsRequest struct {
	BusinessName           string `json:"business_name"`
	WhatsAppProvider       string `json:"whatsapp_provider"`
	WhatsAppAPIKey         string `json:"whatsapp_api_key"`
	AutoReminderDaysBefore int    `json:"auto_reminder_days_before"`
	AutoReminderDaysAfter  int    `json:"auto_reminder_days_after"`
}

// GetSettings never exposes the stored API key in full.
func (s *Server) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.settingsSvc.Get(c.Request.Context()).Masked()})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.Update(c.Request.Context(), settingsdomain.UpdateRequest{
		BusinessName:           strings.TrimSpace(req.BusinessName),
		WhatsAppProvider:       strings.TrimSpace(req.WhatsAppProvider),
		WhatsAppAPIKey:         strings.TrimSpace(req.WhatsAppAPIKey),
		AutoReminderDaysBefore: req.AutoReminderDaysBefore,
		AutoReminderDaysAfter:  req.AutoReminderDaysAfter,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Masked()})
}
