package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"terrainstream/internal/config"
	"terrainstream/internal/graphics"
	terrainr "terrainstream/internal/graphics/renderables/terrain"
	"terrainstream/internal/graphics/renderables/wireframe"
	"terrainstream/internal/graphics/renderer"
	"terrainstream/internal/input"
	"terrainstream/internal/profiling"
	"terrainstream/internal/world"
)

const (
	mouseSensitivity = 0.1
	boostFactor      = 8
	slowFrame        = 50 * time.Millisecond
)

// Viewer owns the window loop: camera input, terrain ticking and rendering.
type Viewer struct {
	window   *glfw.Window
	logger   *log.Logger
	store    *config.Store
	updates  <-chan config.Terrain
	terrain  *world.Terrain
	surfaces *graphics.Surfaces
	camera   *graphics.Camera
	renderer *renderer.Renderer
	ground   *terrainr.Terrain
	bounds   *wireframe.Wireframe
	input    *input.InputManager
	limiter  frameLimiter

	paused        bool
	showProfiling bool
	firstMouse    bool
	lastX, lastY  float64

	frames      int
	lastFPSTime time.Time
	lastTime    time.Time
}

func newViewer(ctx context.Context, window *glfw.Window, cfg config.Terrain, logger *log.Logger) (*Viewer, error) {
	store := config.NewStore(cfg)
	surfaces := graphics.NewSurfaces()
	surfaces.SetMaterial(cfg.Material, mgl32.Vec4{1, 1, 1, 1})

	w, h := window.GetFramebufferSize()
	camera := graphics.NewCamera(w, h, mgl32.Vec3{0, 0, float32(cfg.HeightScale())}, farPlane(cfg))
	camera.Speed = float32(cfg.ChunkSize) * 2

	tr, err := world.New(cfg, surfaces, world.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		window:      window,
		logger:      logger,
		store:       store,
		updates:     store.Subscribe(),
		terrain:     tr,
		surfaces:    surfaces,
		camera:      camera,
		input:       input.NewInputManager(),
		firstMouse:  true,
		lastFPSTime: time.Now(),
		lastTime:    time.Now(),
	}

	v.ground = terrainr.NewTerrain(surfaces, float32(cfg.RenderRadius))
	v.bounds = wireframe.NewWireframe(v.chunkBounds)
	v.renderer, err = renderer.NewRenderer(camera, v.ground, v.bounds)
	if err != nil {
		return nil, err
	}

	if err := tr.Start(ctx, camera.Position); err != nil {
		v.renderer.Dispose()
		return nil, err
	}
	return v, nil
}

// Run ticks until the window closes or ctx is cancelled, then stops the terrain.
func (v *Viewer) Run(ctx context.Context) error {
	for !v.window.ShouldClose() && ctx.Err() == nil {
		if err := v.tick(); err != nil {
			v.logger.Printf("tick: %v", err)
			break
		}
	}

	err := v.terrain.Stop()
	v.renderer.Dispose()
	return err
}

func (v *Viewer) tick() error {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(v.lastTime).Seconds()
	v.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	v.handleActions()
	if err := v.applyConfigUpdates(); err != nil {
		return err
	}

	if !v.paused {
		v.moveCamera(dt)
		var err error
		func() {
			defer profiling.Track("world.Update")()
			_, err = v.terrain.Update(dt, v.camera.Position)
		}()
		if err != nil {
			return err
		}
	}

	v.renderer.Render(dt)
	func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
	v.input.PostUpdate()

	v.report(now)
	v.limiter.Wait(v.paused)
	return nil
}

func (v *Viewer) handleActions() {
	im := v.input
	cfg := v.store.Get()

	if im.JustPressed(input.ActionPause) {
		v.paused = !v.paused
		if v.paused {
			v.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		} else {
			v.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			v.firstMouse = true
		}
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		v.ground.ToggleWireframe()
	}
	if im.JustPressed(input.ActionToggleBounds) {
		v.bounds.Enabled = !v.bounds.Enabled
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		v.showProfiling = !v.showProfiling
	}

	var err error
	switch {
	case im.JustPressed(input.ActionScaleUp):
		err = v.store.SetScale(cfg.Scale * 1.25)
	case im.JustPressed(input.ActionScaleDown):
		err = v.store.SetScale(cfg.Scale / 1.25)
	case im.JustPressed(input.ActionRadiusUp):
		err = v.store.SetRenderRadius(cfg.RenderRadius + cfg.ChunkSize)
	case im.JustPressed(input.ActionRadiusDown):
		err = v.store.SetRenderRadius(cfg.RenderRadius - cfg.ChunkSize)
	case im.JustPressed(input.ActionReseed):
		err = v.store.SetSeed(cfg.Seed + 1)
	}
	if err != nil {
		v.logger.Printf("config: %v", err)
	}
}

// applyConfigUpdates forwards the newest stored configuration to the terrain.
func (v *Viewer) applyConfigUpdates() error {
	select {
	case cfg := <-v.updates:
		if err := v.terrain.OnConfigChanged(cfg); err != nil {
			return fmt.Errorf("apply config: %w", err)
		}
		v.camera.FarPlane = farPlane(cfg)
		v.ground.FogDistance = float32(cfg.RenderRadius)
		v.surfaces.SetMaterial(cfg.Material, mgl32.Vec4{1, 1, 1, 1})
		v.logger.Printf("config: scale %.2f, render radius %.0f, seed %d", cfg.Scale, cfg.RenderRadius, cfg.Seed)
	default:
	}
	return nil
}

func (v *Viewer) moveCamera(dt float64) {
	im := v.input
	forward := im.Axis(input.ActionMoveForward, input.ActionMoveBackward)
	right := im.Axis(input.ActionMoveRight, input.ActionMoveLeft)
	up := im.Axis(input.ActionMoveUp, input.ActionMoveDown)
	if im.IsActive(input.ActionBoost) {
		dt *= boostFactor
	}
	v.camera.Move(forward, right, up, dt)
}

func (v *Viewer) handleMouse(xpos, ypos float64) {
	if v.paused {
		return
	}
	if v.firstMouse {
		v.lastX, v.lastY = xpos, ypos
		v.firstMouse = false
		return
	}
	dx := (xpos - v.lastX) * mouseSensitivity
	dy := (v.lastY - ypos) * mouseSensitivity
	v.lastX, v.lastY = xpos, ypos
	v.camera.Look(dx, dy)
}

// chunkBounds returns one box per spawned chunk spanning its height range.
func (v *Viewer) chunkBounds() []wireframe.Box {
	cache := v.terrain.Cache()
	if cache == nil {
		return nil
	}
	size := float32(v.terrain.Config().ChunkSize)
	var boxes []wireframe.Box
	for _, coord := range v.terrain.Spawned() {
		mesh, ok := cache.Get(coord)
		if !ok {
			continue
		}
		origin := coord.Origin(size)
		boxes = append(boxes, wireframe.Box{
			Min: origin.Add(mgl32.Vec3{0, 0, mesh.MinHeight}),
			Max: origin.Add(mgl32.Vec3{size, size, mesh.MaxHeight}),
		})
	}
	return boxes
}

func (v *Viewer) report(frameStart time.Time) {
	v.frames++
	if d := time.Since(frameStart); d > slowFrame {
		v.logger.Printf("slow frame %.1fms: %s", float64(d.Microseconds())/1000, profiling.TopN(5))
	}
	if time.Since(v.lastFPSTime) < time.Second {
		return
	}
	st := v.terrain.Stats()
	v.logger.Printf("fps %d, drawn %d, spawned %d, cached %d, sweeps %d, epoch %d",
		v.frames, v.ground.Drawn(), st.Spawned, st.Cached, st.Sweeps, st.Epoch)
	if v.showProfiling {
		v.logger.Printf("profile: %s", profiling.TopN(8))
	}
	v.frames = 0
	v.lastFPSTime = time.Now()
}

func farPlane(cfg config.Terrain) float32 {
	return float32(cfg.GenerateRadius() + cfg.HeightScale())
}
