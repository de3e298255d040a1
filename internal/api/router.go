package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/companyos/portal-api/internal/api/handler"
	"github.com/companyos/portal-api/internal/api/middleware"
	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
	"github.com/companyos/portal-api/internal/core/service"
	mongodb "github.com/companyos/portal-api/internal/infrastructure/db/mongo"
	redisdb "github.com/companyos/portal-api/internal/infrastructure/db/redis"
	healthhandlers "github.com/companyos/portal-api/internal/infrastructure/http/handlers"
)

// Deps carries the process-wide resources the router wires together.
type Deps struct {
	DB         *mongo.Database
	Redis      *redis.Client
	Mailer     ports.Mailer
	Dispatcher ports.EmailDispatcher
	Templates  ports.EmailTemplateRepository
	JWTSecret  string
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	otpRepo := mongodb.NewOTPRepository(deps.DB)
	attendanceRepo := mongodb.NewAttendanceRepository(deps.DB)
	emailRepo := mongodb.NewEmailRepository(deps.DB)
	throttle := redisdb.NewOTPThrottle(deps.Redis, 0)

	// --- Services ---
	authService := service.NewAuthService(userRepo, otpRepo, throttle, deps.Mailer, deps.JWTSecret, deps.Logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, deps.Logger)
	employeeService := service.NewEmployeeService(userRepo, deps.Logger)
	emailService := service.NewEmailService(userRepo, emailRepo, deps.Templates, deps.Dispatcher, deps.Logger)
	dashboardService := service.NewDashboardService(userRepo, emailRepo, attendanceRepo)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	profileHandler := handler.NewProfileHandler(employeeService)
	emailHandler := handler.NewEmailHandler(emailService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	authn := middleware.Auth(deps.JWTSecret)
	employeeOnly := middleware.RequireRoles(domain.RoleEmployee)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	adminOrHR := middleware.RequireRoles(domain.RoleAdmin, domain.RoleHR)
	anyRole := middleware.RequireRoles(domain.RoleAdmin, domain.RoleHR, domain.RoleEmployee)

	// --- Auth routes (no token required) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/verify-otp", authHandler.VerifyOTP)
	e.POST("/auth/reset-password", authHandler.ResetPassword)

	// --- Attendance ---
	e.POST("/attendance/check-in", attendanceHandler.CheckIn, authn, employeeOnly)
	e.POST("/attendance/check-out", attendanceHandler.CheckOut, authn, employeeOnly)
	e.GET("/attendance/mine", attendanceHandler.MyAttendance, authn, employeeOnly)
	e.GET("/attendance/logs", attendanceHandler.Logs, authn, adminOnly)

	// --- Employee directory ---
	e.GET("/employees", employeeHandler.List, authn, anyRole)
	e.POST("/employees", employeeHandler.Create, authn, adminOnly)
	e.PUT("/employees/:id", employeeHandler.Update, authn, adminOnly)
	e.DELETE("/employees/:id", employeeHandler.Delete, authn, adminOnly)

	// --- Profile ---
	e.GET("/profile", profileHandler.Get, authn, anyRole)
	e.PUT("/profile", profileHandler.Update, authn, anyRole)
	e.POST("/profile/change-password", profileHandler.ChangePassword, authn, anyRole)

	// --- Bulk email ---
	e.POST("/email/send", emailHandler.Send, authn, adminOrHR)
	e.GET("/email/templates/:template", emailHandler.Template, authn, adminOrHR)
	e.GET("/email/history", emailHandler.History, authn, adminOnly)

	// --- Dashboard ---
	e.GET("/dashboard/stats", dashboardHandler.Stats, authn, anyRole)

	// --- Observability (no auth required) ---
	healthHandler := healthhandlers.NewHealthHandler()
	healthDepsHandler := healthhandlers.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
