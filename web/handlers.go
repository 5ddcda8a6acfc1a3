package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/bot"
	"github.com/Nehilsa2/twitter_automation/settings"
	"github.com/Nehilsa2/twitter_automation/stealth"
)

// statusResponse mirrors the controller's Status for JSON consumers.
type statusResponse struct {
	State     string          `json:"state"`
	IsRunning bool            `json:"is_running"`
	StartedAt string          `json:"started_at,omitempty"`
	LastError string          `json:"last_error,omitempty"`
	Counters  []stealth.Stats `json:"counters,omitempty"`
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.controller.Status()

	resp := statusResponse{
		State:     st.State.String(),
		IsRunning: st.State == bot.Running || st.State == bot.Starting,
		LastError: st.LastError,
		Counters:  st.Counters,
	}
	if !st.StartedAt.IsZero() {
		resp.StartedAt = st.StartedAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStart(c *gin.Context) {
	if err := s.controller.Start(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, bot.ErrAlreadyRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Bot started successfully"})
}

func (s *Server) handleStop(c *gin.Context) {
	if err := s.controller.Stop(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, bot.ErrNotRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Bot stop requested"})
}

func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleUpdateConfig(c *gin.Context) {
	var partial settings.Partial
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid JSON body: " + err.Error()})
		return
	}

	if err := s.store.Update(partial); err != nil {
		var fieldErrs settings.FieldErrors
		if errors.As(err, &fieldErrs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": fieldErrs.Error(),
				"fields":  fieldErrs,
			})
			return
		}
		s.log.Error("config update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Configuration updated successfully"})
}
