package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/caobathien/Church/config"
	"github.com/caobathien/Church/database"
	"github.com/caobathien/Church/routes"
)

func main() {
	cfg := config.Load()

	// Kết nối DB; nếu DB chưa chạy thì fail ngay từ đầu
	database.Connect(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.RegisterRoutes(e, cfg)

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
