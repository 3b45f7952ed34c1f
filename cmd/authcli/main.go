package main

import (
	"context"
	"log"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/cli"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/config"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/facade"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	auth := facade.New()
	if err := auth.Configure(*cfg); err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = auth.Reset(ctx) }()

	app := cli.NewApp(auth)
	app.Run(ctx)
}
