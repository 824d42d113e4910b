package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xmustafa5/TimeClass-sub001/config"
	"github.com/xmustafa5/TimeClass-sub001/internal/api/handler"
	"github.com/xmustafa5/TimeClass-sub001/internal/api/middleware"
	"github.com/xmustafa5/TimeClass-sub001/pkg/jwt"
	"github.com/xmustafa5/TimeClass-sub001/pkg/redis"
)

const (
	maxBodyBytes    = 1 << 20
	loginRateLimit  = 10
	loginRateWindow = time.Minute
	// 预检接口供表单实时调用，按账号放宽
	checkRateLimit  = 120
	checkRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	admin := middleware.RoleAuth("admin")
	checkLimit := middleware.RateLimit(rdb, "check", checkRateLimit, checkRateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, "login", loginRateLimit, loginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 教师模块
			teachers := authorized.Group("/teachers")
			{
				teachers.GET("", h.Teacher.ListTeachers)
				teachers.GET("/:id", h.Teacher.GetTeacher)
				teachers.GET("/:id/load", h.Teacher.GetTeacherLoad)
				teachers.POST("", admin, h.Teacher.CreateTeacher)
				teachers.PUT("/:id", admin, h.Teacher.UpdateTeacher)
				teachers.DELETE("/:id", admin, h.Teacher.DeleteTeacher)
			}

			// 年级模块
			grades := authorized.Group("/grades")
			{
				grades.GET("", h.Grade.ListGrades)
				grades.GET("/:id", h.Grade.GetGrade)
				grades.POST("", admin, h.Grade.CreateGrade)
				grades.PUT("/:id", admin, h.Grade.UpdateGrade)
				grades.DELETE("/:id", admin, h.Grade.DeleteGrade)
			}

			// 班级模块
			sections := authorized.Group("/sections")
			{
				sections.GET("", h.Section.ListSections)
				sections.GET("/:id", h.Section.GetSection)
				sections.POST("", admin, h.Section.CreateSection)
				sections.PUT("/:id", admin, h.Section.UpdateSection)
				sections.DELETE("/:id", admin, h.Section.DeleteSection)
			}

			// 教室模块
			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Room.ListRooms)
				rooms.GET("/:id", h.Room.GetRoom)
				rooms.POST("", admin, h.Room.CreateRoom)
				rooms.PUT("/:id", admin, h.Room.UpdateRoom)
				rooms.DELETE("/:id", admin, h.Room.DeleteRoom)
			}

			// 节次模块
			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.ListPeriods)
				periods.POST("/check", checkLimit, h.Period.CheckPeriod)
				periods.GET("/:id", h.Period.GetPeriod)
				periods.POST("", admin, h.Period.CreatePeriod)
				periods.PUT("/:id", admin, h.Period.UpdatePeriod)
				periods.DELETE("/:id", admin, h.Period.DeletePeriod)
			}

			// 排课模块
			entries := authorized.Group("/schedule-entries")
			{
				entries.GET("", h.ScheduleEntry.ListEntries)
				entries.POST("/check", checkLimit, h.ScheduleEntry.CheckEntry)
				entries.GET("/:id", h.ScheduleEntry.GetEntry)
				entries.POST("", admin, h.ScheduleEntry.CreateEntry)
				entries.PUT("/:id", admin, h.ScheduleEntry.UpdateEntry)
				entries.DELETE("/:id", admin, h.ScheduleEntry.DeleteEntry)
			}

			// 课表视图
			timetable := authorized.Group("/timetable")
			{
				timetable.GET("/sections/:id", h.Timetable.ForSection)
				timetable.GET("/teachers/:id", h.Timetable.ForTeacher)
				timetable.GET("/rooms/:id", h.Timetable.ForRoom)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/timetable", h.Export.ExportTimetable)
				export.GET("/teachers/:id/calendar", h.Export.ExportTeacherCalendar)
			}
		}
	}

	return r
}
