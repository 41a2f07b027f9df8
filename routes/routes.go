package routes

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/caobathien/Church/assignments"
	"github.com/caobathien/Church/attendance"
	"github.com/caobathien/Church/config"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/handlers"
	"github.com/caobathien/Church/middlewares"
	"github.com/caobathien/Church/storage"
	"github.com/caobathien/Church/tabular"
)

// RegisterRoutes nối toàn bộ route HTTP.
func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	// ===== Services dùng chung =====
	asg := assignments.NewService(database.DB)
	ledger := attendance.NewService(database.DB)
	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("không tạo được thư mục upload: %v", err)
	}
	importJobs := tabular.NewJobStore(15 * time.Minute)

	// ===== Handlers (singleton) =====
	auth := handlers.NewAuthHandler(cfg.JWTSecret)
	account := handlers.NewAccountHandler(files)
	cls := handlers.NewClassHandler(asg)
	std := handlers.NewStudentHandler()
	stdPort := handlers.NewStudentPortHandler(importJobs)
	ldr := handlers.NewLeaderHandler(importJobs)
	att := handlers.NewAttendanceHandler(ledger)
	ann := handlers.NewAnnouncementHandler(files)
	fb := handlers.NewFeedbackHandler()
	usr := handlers.NewUserHandler()
	dash := handlers.NewDashboardHandler(ledger)

	// ===== Public =====
	e.POST("/auth/register", auth.Register)
	e.POST("/auth/login", auth.Login)
	e.Static("/uploads", cfg.UploadDir)

	// ===== Cần đăng nhập =====
	api := e.Group("", middlewares.RequireAuth(cfg.JWTSecret))

	api.GET("/home", dash.Home)

	api.GET("/account", account.Me)
	api.PUT("/account", account.Update)
	api.PUT("/account/password", account.ChangePassword)
	api.PUT("/account/avatar", account.UpdateAvatar)

	api.GET("/classes", cls.List)
	api.GET("/classes/:id", cls.Detail)

	api.GET("/students", std.List)
	api.GET("/students/:id", std.Detail)
	api.POST("/students", std.Create)
	api.PUT("/students/:id", std.Update)
	api.DELETE("/students/:id", std.Delete)
	api.PUT("/students/:id/scores", std.UpdateScores)
	api.GET("/students/export", stdPort.Export)
	api.POST("/students/import/preview", stdPort.ImportPreview)
	api.POST("/students/import/confirm", stdPort.ImportConfirm)

	api.POST("/classes/:id/attendance", att.Take)
	api.PUT("/classes/:id/attendance/:date", att.Update)
	api.GET("/classes/:id/attendance", att.History)
	api.GET("/classes/:id/attendance/:date", att.ForDate)

	api.GET("/announcements", ann.List)
	api.POST("/feedback", fb.Create)

	// ===== Chỉ admin =====
	admin := api.Group("/admin", middlewares.RequireAdmin())

	admin.POST("/classes", cls.Create)
	admin.PUT("/classes/:id", cls.Update)
	admin.DELETE("/classes/:id", cls.Delete)
	admin.POST("/classes/:id/leaders", cls.AssignLeader)
	admin.DELETE("/classes/:id/leaders/:userId", cls.UnassignLeader)
	admin.GET("/leaders/unassigned", cls.UnassignedLeaders)

	admin.GET("/leaders", ldr.List)
	admin.POST("/leaders", ldr.Create)
	admin.PUT("/leaders/:id", ldr.Update)
	admin.DELETE("/leaders/:id", ldr.Delete)
	admin.POST("/leaders/import/preview", ldr.ImportPreview)
	admin.POST("/leaders/import/confirm", ldr.ImportConfirm)
	admin.GET("/leaders/export", ldr.Export)

	admin.POST("/announcements", ann.Create)
	admin.PUT("/announcements/:id", ann.Update)
	admin.DELETE("/announcements/:id", ann.Delete)

	admin.GET("/feedback", fb.List)
	admin.DELETE("/feedback/:id", fb.Delete)

	admin.GET("/users", usr.List)
	admin.PUT("/users/:id", usr.Update)
	admin.DELETE("/users/:id", usr.Delete)
}
