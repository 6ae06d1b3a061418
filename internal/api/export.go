package api

import (
	"net/http"
	"time"

	"TR_telegram_taskbot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type ExportPayload struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Stats       StatsResponse  `json:"stats"`
	Tasks       []TaskResponse `json:"tasks"`
}

// ExportStats produces a downloadable JSON snapshot of the bot's state for
// offline reporting.
func (r *adminRoutes) ExportStats(c *gin.Context) {
	log := logger.Logger()

	userStats, err := r.users.Stats(c.Request.Context())
	if err != nil {
		log.Error("failed to load user stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}

	taskStats, err := r.tasks.Stats(c.Request.Context())
	if err != nil {
		log.Error("failed to load task stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}

	tasks, err := r.tasks.ListAll(c.Request.Context())
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}

	payload := ExportPayload{
		GeneratedAt: time.Now().UTC(),
		Stats: StatsResponse{
			TotalUsers:        userStats.TotalUsers,
			CompletedProfiles: userStats.CompletedProfiles,
			TotalBalance:      userStats.TotalBalance,
			TotalTasks:        taskStats.TotalTasks,
			ActiveTasks:       taskStats.ActiveTasks,
			TotalCompletions:  taskStats.TotalCompletions,
		},
		Tasks: make([]TaskResponse, len(tasks)),
	}
	for i, t := range tasks {
		payload.Tasks[i] = taskResponse(t)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Error("failed to marshal export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="taskbot-export.json"`)
	c.Data(http.StatusOK, "application/json", out)
}
