package app

import (
	"fmt"
	"time"

	"github.com/MechanicWorks/MechanicWorks/internal/common/auth"
	"github.com/MechanicWorks/MechanicWorks/internal/common/config"
	"github.com/MechanicWorks/MechanicWorks/internal/common/logger"
	"github.com/MechanicWorks/MechanicWorks/internal/common/middleware"
	"github.com/MechanicWorks/MechanicWorks/internal/common/server"
	"github.com/MechanicWorks/MechanicWorks/internal/customer"
	"github.com/MechanicWorks/MechanicWorks/internal/inventory"
	"github.com/MechanicWorks/MechanicWorks/internal/mechanic"
	"github.com/MechanicWorks/MechanicWorks/internal/ticket"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// App 组装好的应用：路由已挂载，可直接交给 server.Run 或测试用例。
type App struct {
	Engine *gin.Engine
	DB     *gorm.DB
}

// OpenDatabase 打开 MySQL 连接并应用连接池配置。
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	return db, nil
}

// Migrate 建表：四张实体表加两张纯关联表（复合主键）。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&customer.Customer{},
		&mechanic.Mechanic{},
		&ticket.ServiceTicket{},
		&inventory.Inventory{},
		&ticket.TicketMechanic{},
		&ticket.TicketPart{},
	)
}

// New 按配置打开数据库并组装应用。
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	return NewWithDB(cfg, log, db)
}

// NewWithDB 用外部给定的数据库组装应用（测试用 sqlite 内存库走这里）。
func NewWithDB(cfg *config.Config, log logger.Logger, db *gorm.DB) (*App, error) {
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, err
	}

	loginLimiter := middleware.NewKeyedLimiter(
		time.Duration(cfg.RateLimit.LoginWindowSeconds)*time.Second,
		cfg.RateLimit.LoginMaxAttempts,
	)
	ticketCache := middleware.NewTTLCache(time.Duration(cfg.Cache.TicketTTLSeconds) * time.Second)

	mechanicRepo := mechanic.NewRepo(db)
	ticketRepo := ticket.NewRepo(db)
	customerRepo := customer.NewRepo(db)
	inventoryRepo := inventory.NewRepo(db)

	mechanicSvc := mechanic.NewService(mechanicRepo)
	ticketSvc := ticket.NewService(ticketRepo, mechanicRepo)
	customerSvc := customer.NewService(customerRepo, ticketSvc, ticketCache)
	inventorySvc := inventory.NewService(inventoryRepo, ticketRepo)

	engine := server.NewEngine(cfg, log)
	customer.NewHandler(customerSvc, ticketSvc, tokens, log).RegisterRoutes(engine.Group("/customers"), loginLimiter)
	mechanic.NewHandler(mechanicSvc, tokens, log).RegisterRoutes(engine.Group("/mechanics"), loginLimiter)
	ticket.NewHandler(ticketSvc, tokens, log).RegisterRoutes(engine.Group("/service-tickets"))
	inventory.NewHandler(inventorySvc, tokens, log).RegisterRoutes(engine.Group("/inventory"))

	return &App{Engine: engine, DB: db}, nil
}
