package api

import (
	"errors"
	"net/http"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/pkg/auth"
	"TR_telegram_taskbot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type adminRoutes struct {
	users    *service.UserService
	tasks    *service.TaskService
	withdraw *service.WithdrawService
	settings *service.SettingsService
	a        *auth.TelegramAuth
}

func NewAdminRoutes(handler *gin.RouterGroup, users *service.UserService, tasks *service.TaskService,
	withdraw *service.WithdrawService, settings *service.SettingsService, a *auth.TelegramAuth) {
	r := &adminRoutes{
		users:    users,
		tasks:    tasks,
		withdraw: withdraw,
		settings: settings,
		a:        a,
	}

	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware())
	h.Use(a.AdminOnly())
	{
		h.GET("/stats", r.GetStats)
		h.GET("/export", r.ExportStats)

		h.GET("/tasks", r.ListTasks)
		h.POST("/tasks", r.CreateTask)
		h.PATCH("/tasks/:id", r.UpdateTask)
		h.DELETE("/tasks/:id", r.DeleteTask)

		h.GET("/withdrawals", r.ListPendingWithdrawals)
		h.PATCH("/withdrawals/:id", r.ResolveWithdrawal)

		h.GET("/settings", r.GetSettings)
		h.PUT("/settings", r.UpdateSettings)
	}
}

type StatsResponse struct {
	TotalUsers        int `json:"total_users"`
	CompletedProfiles int `json:"completed_profiles"`
	TotalBalance      int `json:"total_balance"`
	TotalTasks        int `json:"total_tasks"`
	ActiveTasks       int `json:"active_tasks"`
	TotalCompletions  int `json:"total_completions"`
}

func (r *adminRoutes) GetStats(c *gin.Context) {
	log := logger.Logger()

	userStats, err := r.users.Stats(c.Request.Context())
	if err != nil {
		log.Error("failed to load user stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	taskStats, err := r.tasks.Stats(c.Request.Context())
	if err != nil {
		log.Error("failed to load task stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		TotalUsers:        userStats.TotalUsers,
		CompletedProfiles: userStats.CompletedProfiles,
		TotalBalance:      userStats.TotalBalance,
		TotalTasks:        taskStats.TotalTasks,
		ActiveTasks:       taskStats.ActiveTasks,
		TotalCompletions:  taskStats.TotalCompletions,
	})
}

type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Reward      int       `json:"reward"`
	Type        string    `json:"type"`
	Active      bool      `json:"active"`
}

func taskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Link:        t.Link,
		Reward:      t.Reward,
		Type:        string(t.Type),
		Active:      t.Active,
	}
}

func (r *adminRoutes) ListTasks(c *gin.Context) {
	log := logger.Logger()

	tasks, err := r.tasks.ListAll(c.Request.Context())
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = taskResponse(t)
	}
	c.JSON(http.StatusOK, out)
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Link        string `json:"link" binding:"required"`
	Reward      int    `json:"reward" binding:"min=0"`
}

func (r *adminRoutes) CreateTask(c *gin.Context) {
	log := logger.Logger()

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := r.tasks.Create(c.Request.Context(), model.TaskDraft{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		Reward:      req.Reward,
		Type:        service.DetectTaskType(req.Link),
	})
	if err != nil {
		log.Error("failed to create task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task))
}

type UpdateTaskRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (r *adminRoutes) UpdateTask(c *gin.Context) {
	log := logger.Logger()

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := r.tasks.SetActive(c.Request.Context(), taskID, *req.Active); err != nil {
		log.Error("failed to update task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (r *adminRoutes) DeleteTask(c *gin.Context) {
	log := logger.Logger()

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := r.tasks.Delete(c.Request.Context(), taskID); err != nil {
		log.Error("failed to delete task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	c.Status(http.StatusNoContent)
}

type WithdrawalResponse struct {
	ID             uuid.UUID `json:"id"`
	UserTelegramID int64     `json:"user_telegram_id"`
	Amount         int       `json:"amount"`
	WalletAddress  string    `json:"wallet_address"`
	Status         string    `json:"status"`
	CreatedAt      string    `json:"created_at"`
}

func (r *adminRoutes) ListPendingWithdrawals(c *gin.Context) {
	log := logger.Logger()

	withdrawals, err := r.withdraw.Pending(c.Request.Context())
	if err != nil {
		log.Error("failed to list pending withdrawals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}

	out := make([]WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		out[i] = WithdrawalResponse{
			ID:             w.ID,
			UserTelegramID: w.UserTelegramID,
			Amount:         w.Amount,
			WalletAddress:  w.WalletAddress,
			Status:         string(w.Status),
			CreatedAt:      w.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	c.JSON(http.StatusOK, out)
}

type ResolveWithdrawalRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r *adminRoutes) ResolveWithdrawal(c *gin.Context) {
	log := logger.Logger()

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	var req ResolveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err = r.withdraw.Resolve(c.Request.Context(), withdrawalID, model.WithdrawalStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrWithdrawalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found or already resolved"})
			return
		}
		log.Error("failed to resolve withdrawal", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to resolve withdrawal"})
		return
	}

	c.Status(http.StatusNoContent)
}

type SettingsResponse struct {
	CurrencyName  string `json:"currency_name"`
	MinWithdraw   int    `json:"min_withdraw"`
	ReferralBonus int    `json:"referral_bonus"`
}

func (r *adminRoutes) GetSettings(c *gin.Context) {
	s := r.settings.Current()
	c.JSON(http.StatusOK, SettingsResponse{
		CurrencyName:  s.CurrencyName,
		MinWithdraw:   s.MinWithdraw,
		ReferralBonus: s.ReferralBonus,
	})
}

type UpdateSettingsRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func (r *adminRoutes) UpdateSettings(c *gin.Context) {
	log := logger.Logger()

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := r.settings.Update(c.Request.Context(), req.Key, req.Value); err != nil {
		log.Error("failed to update setting", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid setting"})
		return
	}

	c.Status(http.StatusNoContent)
}
