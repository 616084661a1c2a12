package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/astroadvisor/internal/server"
	"github.com/dmitrijs2005/astroadvisor/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	// load .env if present (ok if missing in prod)
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
