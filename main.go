package main

import (
	"os"

	"yatube-api/config"
	"yatube-api/models"
	"yatube-api/routes"
	"yatube-api/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)

	cache := utils.NewPageCache(cfg)
	r := routes.SetupRouter(db, cache)

	utils.Sugar.Infof("starting server on :%s (pid=%d)", cfg.AppPort, os.Getpid())
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Errorf("server exited: %v", err)
	}
}
