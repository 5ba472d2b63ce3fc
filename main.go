package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kburke8/poe-watcher-sub000/internal/api"
	"github.com/kburke8/poe-watcher-sub000/internal/websocket"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := NewApp()
	if err := app.Startup(ctx); err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}

	wsServer := websocket.NewServer(app, api.NewRouter(app.Database()), app.ServerPort())
	app.SetBroadcaster(wsServer)

	port, err := wsServer.Start(ctx)
	if err != nil {
		fmt.Printf("Failed to start WebSocket server: %v\n", err)
		app.Shutdown(ctx)
		os.Exit(1)
	}

	// The overlay launcher reads the bound port from stdout.
	fmt.Printf("WS_PORT:%d\n", port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	wsServer.Stop(ctx)
	app.Shutdown(ctx)
}
