package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reminderdomain "github.com/smallbiznis/invoicedesk/internal/reminder/domain"
)

type sendReminderRequest struct {
	Message string `json:"message"`
}

func (s *Server) DraftReminder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.reminderSvc.Generate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendReminder(c *gin.Context) {
	var req sendReminderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.reminderSvc.Send(c.Request.Context(), reminderdomain.SendRequest{
		InvoiceID: strings.TrimSpace(c.Param("id")),
		Message:   strings.TrimSpace(req.Message),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
