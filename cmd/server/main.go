package main

import (
	"fmt"
	"os"

	"inmodraft/internal/app/server"
	"inmodraft/internal/app/server/config"
	"inmodraft/internal/utils/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	app, err := server.New(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации сервера: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}
