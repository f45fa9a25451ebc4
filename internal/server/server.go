package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はechoを組み立てて返す。起動は呼び出し側
func New(cfg config.Config, orderH *handler.OrderHandler, invH *handler.InventoryHandler, auditH *handler.AuditLogHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	orderH.RegisterRoutes(e, cfg)
	invH.RegisterRoutes(e, cfg)
	auditH.RegisterRoutes(e, cfg)

	return e
}
