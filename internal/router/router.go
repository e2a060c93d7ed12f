package router

import (
	"context"
	"time"

	"manu4/config"
	"manu4/internal/domain"
	"manu4/internal/handler"
	"manu4/internal/middleware"
	"manu4/internal/repository"
	"manu4/internal/scheduler"
	"manu4/internal/service"
	"manu4/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup builds the HTTP surface and the background scheduler. The returned
// scheduler is already running; the caller owns its shutdown.
func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger) (*gin.Engine, *scheduler.Scheduler) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewNotificationSettingRepository(db)
	subscriptionRepo := repository.NewPushSubscriptionRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	orderRepo := repository.NewServiceOrderRepository(db)

	// Live connection registry
	registry := ws.NewRegistry(log.Named("ws"))

	// Services
	var pushSender service.PushSender
	if pushSvc := service.NewPushService(&cfg.Push, subscriptionRepo, log.Named("push")); pushSvc != nil {
		pushSender = pushSvc
		log.Info("web push delivery enabled")
	} else {
		log.Info("web push delivery disabled: set PUSH_VAPID_PUBLIC_KEY and PUSH_VAPID_PRIVATE_KEY to enable")
	}
	dispatcher := service.NewDispatcher(userRepo, notificationRepo, settingRepo, registry, pushSender,
		cfg.Scheduler.DedupWindow, log.Named("dispatch"))
	scanner := service.NewScanner(equipmentRepo, orderRepo, dispatcher, log.Named("scanner"))
	sweeper := service.NewSweeper(notificationRepo, subscriptionRepo, cfg.Retention, log.Named("sweeper"))

	// Scheduler with the fixed job table
	sched := scheduler.New(log.Named("scheduler"))
	sched.ScheduleJob(domain.JobEquipmentFailureScan, cfg.Scheduler.EquipmentScan, scanner.CheckEquipmentFailures)
	sched.ScheduleJob(domain.JobMaintenanceDueScan, cfg.Scheduler.MaintenanceScan, scanner.CheckMaintenanceDue)
	sched.ScheduleJob(domain.JobServiceOrderScan, cfg.Scheduler.ServiceOrderScan, scanner.CheckServiceOrders)
	sched.ScheduleJob(domain.JobRetentionSweep, cfg.Scheduler.RetentionSweep, func(ctx context.Context) error {
		_, err := sweeper.Run(ctx)
		return err
	})

	// Handlers
	authHandler := handler.NewAuthHandler(&cfg.JWT, userRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, registry)
	pushHandler := handler.NewPushHandler(subscriptionRepo)
	adminHandler := handler.NewAdminHandler(sched, dispatcher, registry)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			me.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			me.POST("/push-subscriptions", pushHandler.Subscribe)
			me.DELETE("/push-subscriptions", pushHandler.Unsubscribe)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("/checks/:kind", adminHandler.TriggerCheck)
			admin.POST("/notifications", adminHandler.Dispatch)
			admin.POST("/notifications/batch", adminHandler.DispatchBatch)
			admin.GET("/ws/stats", adminHandler.WSStats)
		}
	}

	r.GET("/ws/notifications", handler.NotificationsWS(&cfg.JWT, registry, notificationRepo, log.Named("ws")))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(503, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r, sched
}
