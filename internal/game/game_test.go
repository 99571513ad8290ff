package game

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/roomwalk/internal/compose"
	"chosenoffset.com/roomwalk/internal/config"
	"chosenoffset.com/roomwalk/internal/render"
	"chosenoffset.com/roomwalk/internal/render/rendertest"
	"chosenoffset.com/roomwalk/internal/scene"
)

type stubComposer struct {
	release chan struct{}
	scene   *scene.Scene
	err     error
}

func (c *stubComposer) Compose(ctx context.Context) (*scene.Scene, error) {
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.scene, c.err
}

func newManager(t *testing.T, c Composer) (*Manager, *rendertest.Input) {
	t.Helper()
	in := rendertest.NewInput()
	m := NewManager(config.DefaultConfig(), &rendertest.Renderer{}, in, c, 800, 600)
	return m, in
}

func readyManager(t *testing.T) (*Manager, *rendertest.Input) {
	t.Helper()
	s := scene.New()
	compose.BuildRoom(s, config.DefaultConfig().Room)
	m, in := newManager(t, &stubComposer{scene: s})
	m.Start(context.Background())
	waitForLoad(t, m)
	require.Equal(t, StateWalking, m.State())
	return m, in
}

func waitForLoad(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.State() == StateLoading {
		require.True(t, time.Now().Before(deadline), "composition did not finish")
		require.NoError(t, m.Update())
		time.Sleep(time.Millisecond)
	}
}

func vecInDelta(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func TestStartPosition(t *testing.T) {
	m, _ := newManager(t, &stubComposer{})
	assert.Equal(t, mgl64.Vec3{0, 250, 0}, m.Rig().Position())
	assert.Equal(t, StateLoading, m.State())
}

func TestWalkForward(t *testing.T) {
	m, in := readyManager(t)

	in.Press(render.KeyW)
	require.NoError(t, m.Update())
	vecInDelta(t, mgl64.Vec3{0, 250, -10}, m.Rig().Position())

	require.NoError(t, m.Update())
	vecInDelta(t, mgl64.Vec3{0, 250, -20}, m.Rig().Position())

	in.Release(render.KeyW)
	require.NoError(t, m.Update())
	vecInDelta(t, mgl64.Vec3{0, 250, -20}, m.Rig().Position())
	assert.Zero(t, m.HeldKeys().Len())
}

func TestWalkDiagonal(t *testing.T) {
	m, in := readyManager(t)
	in.Press(render.KeyW, render.KeyD)
	require.NoError(t, m.Update())
	vecInDelta(t, mgl64.Vec3{10, 250, -10}, m.Rig().Position())
}

func TestOpposingKeysBothApply(t *testing.T) {
	m, in := readyManager(t)
	in.Press(render.KeyW, render.KeyS)
	require.NoError(t, m.Update())
	vecInDelta(t, mgl64.Vec3{0, 250, 0}, m.Rig().Position())
	assert.Equal(t, 2, m.HeldKeys().Len())
}

func TestWalkStopsAtBounds(t *testing.T) {
	m, in := readyManager(t)
	m.Rig().SetPosition(mgl64.Vec3{975, 250, 0})
	in.Press(render.KeyD)
	require.NoError(t, m.Update())
	vecInDelta(t, mgl64.Vec3{980, 250, 0}, m.Rig().Position())
	require.NoError(t, m.Update())
	vecInDelta(t, mgl64.Vec3{980, 250, 0}, m.Rig().Position())
}

func TestPositionStaysInsideRoom(t *testing.T) {
	m, in := readyManager(t)
	keys := []render.Key{render.KeyW, render.KeyA, render.KeyS, render.KeyD}
	rng := rand.New(rand.NewPCG(7, 7))

	for range 3000 {
		k := keys[rng.IntN(len(keys))]
		if rng.IntN(2) == 0 {
			in.Press(k)
		} else {
			in.Release(k)
		}
		if rng.IntN(50) == 0 {
			m.Rig().SetOrientation(rng.Float64()*2*math.Pi, 0)
		}
		require.NoError(t, m.Update())

		p := m.Rig().Position()
		require.LessOrEqual(t, math.Abs(p.X()), 980.0)
		require.LessOrEqual(t, math.Abs(p.Z()), 980.0)
		require.Equal(t, 250.0, p.Y())
	}
}

func TestLoopWaitsForComposition(t *testing.T) {
	s := scene.New()
	c := &stubComposer{release: make(chan struct{}), scene: s}
	m, in := newManager(t, c)
	m.Start(context.Background())

	in.Press(render.KeyW)
	for range 5 {
		require.NoError(t, m.Update())
	}
	assert.Equal(t, StateLoading, m.State())
	assert.Zero(t, m.Frames())
	assert.Equal(t, mgl64.Vec3{0, 250, 0}, m.Rig().Position())
	assert.Nil(t, m.Scene())

	screen := rendertest.NewImage(800, 600)
	m.Draw(screen)
	assert.Equal(t, []string{loadingText}, screen.Texts)
	assert.Empty(t, screen.Calls)

	close(c.release)
	waitForLoad(t, m)
	assert.Equal(t, StateWalking, m.State())
	assert.Same(t, s, m.Scene())
	assert.Equal(t, 1, m.Frames())
}

func TestCompositionFailure(t *testing.T) {
	loadErr := &compose.LoadError{Asset: "a3_1.jpeg", Kind: compose.KindImage, Err: errors.New("no such file")}
	m, in := newManager(t, &stubComposer{err: loadErr})

	var statuses []Status
	m.StatusChanged.AddListener(func(_ context.Context, s Status) {
		statuses = append(statuses, s)
	})

	m.Start(context.Background())
	waitForLoad(t, m)

	assert.Equal(t, StateFailed, m.State())
	var le *compose.LoadError
	require.ErrorAs(t, m.Err(), &le)
	assert.Equal(t, "a3_1.jpeg", le.Asset)
	require.Len(t, statuses, 1)
	assert.Equal(t, StateFailed, statuses[0].State)

	in.Press(render.KeyW)
	for range 3 {
		require.NoError(t, m.Update())
	}
	assert.Zero(t, m.Frames())
	assert.Equal(t, mgl64.Vec3{0, 250, 0}, m.Rig().Position())

	screen := rendertest.NewImage(800, 600)
	m.Draw(screen)
	require.Len(t, screen.Texts, 1)
	assert.Contains(t, screen.Texts[0], "a3_1.jpeg")
}

func TestStatusOnReady(t *testing.T) {
	m, _ := newManager(t, &stubComposer{scene: scene.New()})
	var got []Status
	m.StatusChanged.AddListener(func(_ context.Context, s Status) {
		got = append(got, s)
	})
	m.Start(context.Background())
	waitForLoad(t, m)
	assert.Equal(t, []Status{{State: StateWalking}}, got)
}

func TestPointerLock(t *testing.T) {
	m, in := readyManager(t)

	t.Run("look ignored while unlocked", func(t *testing.T) {
		in.CursorX = 300
		require.NoError(t, m.Update())
		assert.Zero(t, m.Rig().Yaw())
	})

	t.Run("click locks", func(t *testing.T) {
		in.Clicked = true
		require.NoError(t, m.Update())
		assert.True(t, m.Rig().IsLocked())
		assert.True(t, in.Captured)
	})

	t.Run("pointer motion turns", func(t *testing.T) {
		in.CursorX += 100
		require.NoError(t, m.Update())
		assert.InDelta(t, -0.2, m.Rig().Yaw(), 1e-9)
	})

	t.Run("escape releases and drops held keys", func(t *testing.T) {
		in.Press(render.KeyW)
		require.NoError(t, m.Update())
		require.Equal(t, 1, m.HeldKeys().Len())

		in.Press(render.KeyEscape)
		require.NoError(t, m.Update())
		assert.False(t, m.Rig().IsLocked())
		assert.False(t, in.Captured)
		assert.Zero(t, m.HeldKeys().Len())
	})
}

func TestLayoutResizesImmediately(t *testing.T) {
	m, _ := newManager(t, &stubComposer{})
	w, h := m.Layout(1000, 500)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)
	assert.InDelta(t, 2.0, m.Camera().Aspect, 1e-9)
	assert.Zero(t, m.Frames())

	m.Layout(1000, 0)
	assert.InDelta(t, 2.0, m.Camera().Aspect, 1e-9)
}

func TestDrawWalking(t *testing.T) {
	m, _ := readyManager(t)
	screen := rendertest.NewImage(800, 600)
	m.Draw(screen)
	assert.NotEmpty(t, screen.Calls)
	assert.Equal(t, []string{hintText}, screen.Texts)
}

func TestCancelStopsLoopWithoutFailing(t *testing.T) {
	c := &stubComposer{release: make(chan struct{})}
	m, _ := newManager(t, c)
	var statuses []Status
	m.StatusChanged.AddListener(func(_ context.Context, s Status) {
		statuses = append(statuses, s)
	})
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	require.NoError(t, m.Update())

	cancel()
	require.Eventually(t, func() bool { return len(m.results) == 1 }, 2*time.Second, time.Millisecond)

	err := m.Update()
	require.ErrorIs(t, err, render.ErrTermination)
	assert.Equal(t, StateLoading, m.State())
	assert.NoError(t, m.Err())
	assert.Empty(t, statuses)
	assert.Zero(t, m.Frames())
}

func TestCancelWhileWalking(t *testing.T) {
	s := scene.New()
	m, in := newManager(t, &stubComposer{scene: s})
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	waitForLoad(t, m)
	frames := m.Frames()

	cancel()
	in.Press(render.KeyW)
	require.ErrorIs(t, m.Update(), render.ErrTermination)
	assert.Equal(t, frames, m.Frames())
	assert.Equal(t, mgl64.Vec3{0, 250, 0}, m.Rig().Position())
}

func TestLostCaptureReleasesPointer(t *testing.T) {
	m, in := readyManager(t)
	in.Clicked = true
	require.NoError(t, m.Update())
	require.True(t, m.Rig().IsLocked())

	in.Press(render.KeyW)
	require.NoError(t, m.Update())
	require.Equal(t, 1, m.HeldKeys().Len())

	in.Captured = false
	require.NoError(t, m.Update())
	assert.False(t, m.Rig().IsLocked())
	assert.Zero(t, m.HeldKeys().Len())

	in.CursorX += 50
	require.NoError(t, m.Update())
	assert.Zero(t, m.Rig().Yaw())
}
