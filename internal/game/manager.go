package game

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/maniartech/signals"

	"chosenoffset.com/roomwalk/internal/camera"
	"chosenoffset.com/roomwalk/internal/config"
	"chosenoffset.com/roomwalk/internal/input"
	"chosenoffset.com/roomwalk/internal/motion"
	"chosenoffset.com/roomwalk/internal/render"
	"chosenoffset.com/roomwalk/internal/render/projector"
	"chosenoffset.com/roomwalk/internal/scene"
)

// Manager is the walkthrough session. It owns the scene, the camera and the
// input state, and implements render.Game. All methods except Start must be
// called from the loop goroutine.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	Renderer     render.Renderer
	InputMgr     render.InputManager

	// StatusChanged fires on the loop goroutine when loading ends.
	StatusChanged signals.Signal[Status]

	state State
	err   error
	scene *scene.Scene

	held       *input.HeldKeys
	controller *motion.Controller
	bounds     motion.Bounds
	rig        *camera.Rig
	camera     *camera.Camera
	projector  *projector.Projector

	ctx      context.Context
	composer Composer
	results  chan composeResult

	keyBuf        []render.Key
	cursorX       int
	cursorY       int
	cursorTracked bool
	frames        int
}

// NewManager creates a session in the loading state.
func NewManager(cfg *config.Config, r render.Renderer, in render.InputManager, composer Composer, width, height int) *Manager {
	rig := camera.NewRig(mgl64.Vec3{0, cfg.Motion.PersonHeight, 0})
	rig.Sensitivity = cfg.Motion.MouseSensitivity
	aspect := 1.0
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}
	p := projector.New(r)
	p.SetSize(width, height)
	return &Manager{
		ScreenWidth:   width,
		ScreenHeight:  height,
		Renderer:      r,
		InputMgr:      in,
		StatusChanged: signals.NewSync[Status](),
		state:         StateLoading,
		held:          input.NewHeldKeys(),
		controller:    motion.NewController(cfg.Motion.StepSize),
		bounds:        motion.NewBounds(cfg.Room.HalfExtent),
		rig:           rig,
		camera:        camera.New(cfg.Camera.FOV, aspect, cfg.Camera.Near, cfg.Camera.Far),
		projector:     p,
		ctx:           context.Background(),
		composer:      composer,
		results:       make(chan composeResult, 1),
	}
}

// Start composes the room in the background. The walk loop starts on the
// first Update after composition has finished successfully. Once ctx is done,
// Update returns render.ErrTermination.
func (m *Manager) Start(ctx context.Context) {
	m.ctx = ctx
	log.Info("Composing room")
	go func() {
		s, err := m.composer.Compose(ctx)
		m.results <- composeResult{scene: s, err: err}
	}()
}

// State returns the session state.
func (m *Manager) State() State { return m.state }

// Err returns the composition error in StateFailed.
func (m *Manager) Err() error { return m.err }

// Scene returns the composed scene, or nil before composition has finished.
func (m *Manager) Scene() *scene.Scene { return m.scene }

// Rig returns the camera rig.
func (m *Manager) Rig() *camera.Rig { return m.rig }

// Camera returns the perspective camera.
func (m *Manager) Camera() *camera.Camera { return m.camera }

// HeldKeys returns the held movement keys.
func (m *Manager) HeldKeys() *input.HeldKeys { return m.held }

// Frames returns how many walk frames have run.
func (m *Manager) Frames() int { return m.frames }

// Update handles input and, once the room is ready, advances one frame.
func (m *Manager) Update() error {
	if m.state == StateLoading {
		m.pollComposition()
	}
	if err := m.ctx.Err(); err != nil {
		log.Info("Shutting down", "reason", err)
		return render.ErrTermination
	}
	m.handleInput()
	if m.state == StateWalking {
		m.Frame()
	}
	return nil
}

func (m *Manager) pollComposition() {
	select {
	case r := <-m.results:
		if r.err != nil && m.ctx.Err() != nil {
			// Interrupted, not failed. Update terminates the loop.
			log.Debug("Composition interrupted", "error", r.err)
			return
		}
		if r.err != nil {
			m.state = StateFailed
			m.err = r.err
			log.Error("Failed to compose room", "error", r.err)
		} else {
			m.scene = r.scene
			m.state = StateWalking
			log.Info("Room ready", "nodes", r.scene.Len())
		}
		m.StatusChanged.Emit(context.Background(), Status{State: m.state, Err: m.err})
	default:
	}
}

// Layout handles window resize. The camera and the projector are updated
// immediately, independent of the frame tick.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != m.ScreenWidth || outsideHeight != m.ScreenHeight {
		m.ScreenWidth = outsideWidth
		m.ScreenHeight = outsideHeight
		m.camera.SetAspect(outsideWidth, outsideHeight)
		m.projector.SetSize(outsideWidth, outsideHeight)
		log.Debug("Resized", "width", outsideWidth, "height", outsideHeight)
	}
	return outsideWidth, outsideHeight
}
