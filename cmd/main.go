package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lumenlabs/creatorchat-backend/internal/app"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		a.Log.Error("HTTP server stopped", "error", err)
		os.Exit(1)
	}
}
