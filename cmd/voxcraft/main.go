package main

import (
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxcraft/internal/config"
	"voxcraft/internal/engine"
	"voxcraft/internal/physics"
	"voxcraft/internal/profiling"
	"voxcraft/internal/save"
	"voxcraft/internal/world"
)

func init() {
	runtime.LockOSThread()
}

const (
	playerHalfWidth = 0.3
	playerHeight    = 1.8
	eyeHeight       = 1.62
	reachDistance   = 5.0
	moveSpeed       = 10.0
	autosavePeriod  = 60 * time.Second
)

func main() {
	configPath := flag.String("config", "voxcraft.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	eng := engine.New(cfg.World)
	defer eng.Close()

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, "voxcraft", nil, nil)
	if err != nil {
		log.Fatalf("window: %v", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		log.Fatalf("gl: %v", err)
	}

	renderer, err := NewRenderer("assets/atlas.png")
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}

	cam := spawnCamera(eng, cfg.World.SaveDir)

	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	var lastX, lastY float64
	firstMouse := true
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if firstMouse {
			lastX, lastY = x, y
			firstMouse = false
		}
		cam.Rotate(float32(x-lastX), float32(y-lastY))
		lastX, lastY = x, y
	})

	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		hit, ok := eng.Raycast(cam.Position, cam.Front(), reachDistance)
		if !ok {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			if err := eng.SetBlock(hit.Block, world.BlockAir); err != nil {
				log.Printf("break %v: %v", hit.Block, err)
			}
		case glfw.MouseButtonRight:
			place := hit.Block.Offset(hit.Normal[0], hit.Normal[1], hit.Normal[2])
			if err := eng.SetBlock(place, world.BlockStone); err != nil {
				log.Printf("place %v: %v", place, err)
			}
		}
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	gl.ClearColor(0.53, 0.73, 0.95, 1.0)

	lastFrame := glfw.GetTime()
	lastSave := time.Now()
	lastStats := time.Now()

	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := float32(now - lastFrame)
		lastFrame = now
		if dt > 0.25 {
			dt = 0.25
		}

		profiling.ResetFrame()

		moveCamera(window, eng, cam, dt)
		eng.OnPlayerMoved(cam.Position)
		eng.Tick()

		for _, up := range eng.DrainMeshUpdates() {
			renderer.Upload(up.Coord, up.Mesh)
		}
		for _, coord := range eng.DrainMeshRemovals() {
			renderer.Remove(coord)
		}

		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		proj := mgl32.Perspective(mgl32.DegToRad(cfg.Window.FOV), float32(w)/float32(h), 0.1, 1000)
		renderer.Draw(proj, cam.ViewMatrix())

		window.SwapBuffers()
		glfw.PollEvents()

		if time.Since(lastSave) > autosavePeriod {
			saveWorld(eng, cam, cfg.World.SaveDir)
			lastSave = time.Now()
		}
		if time.Since(lastStats) > 5*time.Second {
			log.Printf("frame: %s", profiling.TopN(4))
			lastStats = time.Now()
		}
	}

	saveWorld(eng, cam, cfg.World.SaveDir)
}

// spawnCamera restores the player file or drops the player a little
// above the terrain surface at the origin.
func spawnCamera(eng *engine.Engine, saveDir string) *Camera {
	cam := &Camera{Yaw: -90}
	st, err := save.LoadPlayer(saveDir)
	if err != nil {
		log.Printf("load player: %v", err)
	}
	if st != nil {
		cam.Position = mgl32.Vec3{st.Position[0], st.Position[1], st.Position[2]}
		cam.Yaw = st.Yaw
		cam.Pitch = st.Pitch
		return cam
	}
	h := eng.Generator().SurfaceHeight(8, 8)
	cam.Position = mgl32.Vec3{8.5, float32(h) + 3, 8.5}
	return cam
}

func saveWorld(eng *engine.Engine, cam *Camera, saveDir string) {
	if err := eng.SaveAll(); err != nil {
		log.Printf("save world: %v", err)
	}
	st := &save.PlayerState{
		Position: [3]float32{cam.Position.X(), cam.Position.Y(), cam.Position.Z()},
		Yaw:      cam.Yaw,
		Pitch:    cam.Pitch,
		Spawn:    [3]float32{8.5, cam.Position.Y(), 8.5},
	}
	if err := save.SavePlayer(saveDir, st); err != nil {
		log.Printf("save player: %v", err)
	}
}

// moveCamera applies fly movement with swept-AABB collision, resolved
// axis by axis.
func moveCamera(window *glfw.Window, eng *engine.Engine, cam *Camera, dt float32) {
	var wish mgl32.Vec3
	front := cam.Front()
	flat := mgl32.Vec3{front.X(), 0, front.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	right := cam.Right()

	if window.GetKey(glfw.KeyW) == glfw.Press {
		wish = wish.Add(flat)
	}
	if window.GetKey(glfw.KeyS) == glfw.Press {
		wish = wish.Sub(flat)
	}
	if window.GetKey(glfw.KeyD) == glfw.Press {
		wish = wish.Add(right)
	}
	if window.GetKey(glfw.KeyA) == glfw.Press {
		wish = wish.Sub(right)
	}
	if window.GetKey(glfw.KeySpace) == glfw.Press {
		wish = wish.Add(mgl32.Vec3{0, 1, 0})
	}
	if window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		wish = wish.Sub(mgl32.Vec3{0, 1, 0})
	}
	if wish.Len() == 0 {
		return
	}
	delta := wish.Normalize().Mul(moveSpeed * dt)

	feet := cam.Position.Sub(mgl32.Vec3{0, eyeHeight, 0})
	box := physics.AABB{
		Min: feet.Sub(mgl32.Vec3{playerHalfWidth, 0, playerHalfWidth}),
		Max: feet.Add(mgl32.Vec3{playerHalfWidth, playerHeight, playerHalfWidth}),
	}

	for axis := 0; axis < 3; axis++ {
		if delta[axis] == 0 {
			continue
		}
		var step mgl32.Vec3
		step[axis] = delta[axis]
		if r, ok := eng.SweepAABB(box, step); ok {
			step[axis] *= r.T
			// Back off slightly so the box never interpenetrates.
			if step[axis] > 0.001 {
				step[axis] -= 0.001
			} else if step[axis] < -0.001 {
				step[axis] += 0.001
			} else {
				step[axis] = 0
			}
		}
		box = box.Offset(step)
	}

	cam.Position = box.Min.Add(mgl32.Vec3{playerHalfWidth, eyeHeight, playerHalfWidth})
}
