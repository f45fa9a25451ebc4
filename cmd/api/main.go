package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.Inventory{},
		&model.InventoryHold{},
		&model.InventoryAdjustment{},
		&model.OutboxEvent{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Usecase生成
	tx := infraRepo.NewTxManagerGorm(gormDB)
	orderUC := usecase.NewOrderUsecase(tx, logger)
	invUC := usecase.NewInventoryUsecase(tx, logger)
	auditUC := usecase.NewAuditUsecase(tx, logger)

	//Handler生成
	orderH := handler.NewOrderHandler(orderUC)
	invH := handler.NewInventoryHandler(invUC)
	auditH := handler.NewAuditLogHandler(auditUC)

	//Server起動
	e := server.New(cfg, orderH, invH, auditH)
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
