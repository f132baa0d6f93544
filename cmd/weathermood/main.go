package main

import (
	"context"
	"log"
	"os"

	"github.com/weathermood/weathermood/internal/client/cli"
	"github.com/weathermood/weathermood/internal/client/config"
	"github.com/weathermood/weathermood/internal/flagx"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	args := flagx.NonFlagArgs(os.Args[1:])
	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
