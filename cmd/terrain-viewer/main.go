package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-gl/glfw/v3.3/glfw"

	"terrainstream/internal/config"
)

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "terrain YAML config (defaults to $"+config.EnvPath+")")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	vsync := flag.Bool("vsync", true, "wait for vertical sync")
	fps := flag.Int("fps", 0, "frame cap when vsync is off, 0 is unlimited")
	flag.Parse()

	logger := log.New(os.Stdout, "[terrain-viewer] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		logger.Fatalf("glfw init: %v", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(*width, *height, *vsync)
	if err != nil {
		logger.Fatalf("create window: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := newViewer(ctx, window, cfg, logger)
	if err != nil {
		logger.Fatalf("init viewer: %v", err)
	}
	v.limiter.limit = *fps
	setupInputHandlers(window, v)

	if err := v.Run(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
		os.Exit(1)
	}
}
