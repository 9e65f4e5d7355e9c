// doomview - Terminal Doom-style level viewer
// Walk a level with the column renderer and explore it on the automap.
//
// Controls:
//
//	W/S, Up/Down     - Walk forward/back
//	A/D, Left/Right  - Turn (arrows pan the map when follow is off)
//	Tab              - Map, then overlay, then back to the view
//	+/-              - Zoom the map
//	0                - Toggle whole-map zoom
//	F                - Toggle follow mode
//	G                - Toggle grid
//	R                - Toggle map rotation
//	C                - Cycle map cheat (all lines, then things)
//	I                - Toggle invulnerability colormap
//	P                - Save screenshot
//	?                - Toggle HUD overlay
//	Esc              - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/doomview/pkg/automap"
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
	"github.com/taigrr/doomview/pkg/view"
)

var (
	levelPath  = flag.String("level", "", "Path to a glTF level (default: built-in demo)")
	targetFPS  = flag.Int("fps", render.TicRate, "Target FPS")
	backend    = flag.String("backend", render.BackendVGA, "Video backend: vga, modey, ega, cga, text")
	skyFlag    = flag.String("sky", "textured", "Sky mode: textured or flat")
	skyTexture = flag.String("skytex", "", "Path to a sky image (PNG/JPG)")
	fuzzFlag   = flag.String("fuzz", "auto", "Fuzz effect: auto, readback or fixed")
	wipeFlag   = flag.String("wipe", "melt", "Screen wipe: melt or colorxform")
	screenshot = flag.String("screenshot", "", "Render one frame to this PNG and exit")
	shotSize   = flag.String("size", "320x200", "Render size for -screenshot")
	logPath    = flag.String("log", "", "Write a debug log to this file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "doomview - Terminal Doom-style level viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: doomview [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Walk and turn\n")
		fmt.Fprintf(os.Stderr, "  Tab         - Automap / overlay / view\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Pan the map (follow off)\n")
		fmt.Fprintf(os.Stderr, "  +/- 0       - Zoom, whole map\n")
		fmt.Fprintf(os.Stderr, "  F G R C     - Follow, grid, rotate, cheat\n")
		fmt.Fprintf(os.Stderr, "  I           - Invulnerability colormap\n")
		fmt.Fprintf(os.Stderr, "  P           - Screenshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := setupLogging(*logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	lvl, err := loadLevel(*levelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *screenshot != "" {
		err = renderScreenshot(cfg, lvl, *screenshot)
	} else {
		err = run(cfg, lvl)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	render.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return nil
}

func parseConfig() (Config, error) {
	cfg := Config{Backend: *backend, FPS: max(*targetFPS, 1)}
	var err error
	if cfg.Sky, err = parseSky(*skyFlag); err != nil {
		return cfg, err
	}
	if cfg.Fuzz, err = parseFuzz(*fuzzFlag); err != nil {
		return cfg, err
	}
	if cfg.Wipe, err = parseWipe(*wipeFlag); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadLevel(path string) (*level.Level, error) {
	if path == "" {
		return level.Demo(), nil
	}
	lvl, err := level.LoadGLTF(path)
	if err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	return lvl, nil
}

func loadTextures(skyPath string) (*view.Textures, error) {
	tex := view.NewTextures()
	if skyPath == "" {
		return tex, nil
	}
	pal := render.DefaultPalette()
	if err := tex.LoadSky(skyPath, &pal); err != nil {
		return nil, err
	}
	return tex, nil
}

func startPlayer(lvl *level.Level) (level.Player, error) {
	p, ok := lvl.PlayerStart()
	if !ok {
		return p, fmt.Errorf("level %q has no player start", lvl.Name)
	}
	return p, nil
}

// renderScreenshot draws the opening view headless and saves it scaled to
// the 4:3 shape of a CRT.
func renderScreenshot(cfg Config, lvl *level.Level, path string) error {
	w, h, err := parseSize(*shotSize)
	if err != nil {
		return err
	}
	p, err := startPlayer(lvl)
	if err != nil {
		return err
	}
	tex, err := loadTextures(*skyTexture)
	if err != nil {
		return err
	}
	s, err := NewScene(cfg, lvl, p, w, h, tex)
	if err != nil {
		return err
	}
	s.Render()
	fw, fh := s.Frame.Width, s.Frame.Height
	if err := s.Frame.SavePNG(path, fw, fw*3/4); err != nil {
		return err
	}
	fmt.Printf("Saved %s (%dx%d, %s)\n", path, fw, fh, cfg.Backend)
	return nil
}

// HUD tracks the frame rate and draws the status line.
type HUD struct {
	name      string
	show      bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(name string) *HUD {
	return &HUD{name: name, show: true, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

var (
	hudGreen  = color.RGBA{0x55, 0xff, 0x55, 0xff}
	hudYellow = color.RGBA{0xff, 0xff, 0x55, 0xff}
	hudWhite  = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Draw writes the status line on terminal row y. Automap messages always
// show; the FPS and level name only with the HUD on.
func (h *HUD) Draw(scr uv.Screen, width, y int, msg string) {
	for x := range width {
		scr.SetCell(x, y, &uv.Cell{Content: " ", Width: 1})
	}
	if msg != "" {
		render.DrawStatus(scr, 0, y, msg, hudYellow)
	}
	if !h.show {
		return
	}
	fps := fmt.Sprintf("%.0f FPS", h.fps)
	render.DrawStatus(scr, max(width-len(fps), 0), y, fps, hudGreen)
	if msg == "" {
		render.DrawStatus(scr, 0, y, h.name, hudWhite)
	}
}

// mapKeys are the terminal keys the automap sees. Arrows are shared with
// walking and reach the player only when the automap passes on them.
var mapKeys = []struct {
	names []string
	key   automap.Key
}{
	{[]string{"up"}, automap.KeyPanUp},
	{[]string{"down"}, automap.KeyPanDown},
	{[]string{"left"}, automap.KeyPanLeft},
	{[]string{"right"}, automap.KeyPanRight},
	{[]string{"+", "="}, automap.KeyZoomIn},
	{[]string{"-", "_"}, automap.KeyZoomOut},
	{[]string{"0"}, automap.KeyGoBig},
	{[]string{"f"}, automap.KeyFollow},
	{[]string{"g"}, automap.KeyGrid},
	{[]string{"r"}, automap.KeyRotate},
	{[]string{"c"}, automap.KeyCheat},
}

func matchMapKey(ev interface{ MatchString(...string) bool }) (automap.Key, bool) {
	for _, mk := range mapKeys {
		if ev.MatchString(mk.names...) {
			return mk.key, true
		}
	}
	return 0, false
}

// sceneSize is the pixel size for a terminal: one row is kept for the
// status line and every cell holds two pixels stacked.
func sceneSize(width, height int) (int, int) {
	return max(width&^3, 4), min(max((height-1)*2, 2), render.MaxViewHeight&^1)
}

func run(cfg Config, lvl *level.Level) error {
	player, err := startPlayer(lvl)
	if err != nil {
		return err
	}
	textures, err := loadTextures(*skyTexture)
	if err != nil {
		return err
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	sw, sh := sceneSize(width, height)
	scene, err := NewScene(cfg, lvl, player, sw, sh, textures)
	if err != nil {
		cleanup()
		return err
	}

	hud := NewHUD(lvl.Name)
	motion := NewMotion(cfg.FPS)
	wipe := render.NewWipe(cfg.Wipe, uint64(time.Now().UnixNano()))
	shots := 0

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	present := func(fb *render.Framebuffer) error {
		area := uv.Rect(0, 0, width, height-1)
		fb.Draw(term, area)
		hud.Draw(term, width, height-1, scene.Message())
		return term.Display()
	}

	// Key release events are unreliable in terminals, so pan and zoom
	// keys are released by the frame after their last press.
	var held []automap.Key

	handle := func(ev uv.Event) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			sw, sh := sceneSize(width, height)
			next, err := NewScene(cfg, lvl, scene.Player, sw, sh, textures)
			if err != nil {
				render.Logger().Error("resize", "err", err)
				return
			}
			scene = next
			held = held[:0]

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				cancel()
				return
			case ev.MatchString("tab"):
				start := scene.Frame.Clone()
				if scene.ToggleMap() {
					scene.Render()
					wipe.Start(start, scene.Frame, start)
					err := render.RunWipe(ctx, wipe, render.NewClockTicks(), render.PresenterFunc(func() {
						if err := present(start); err != nil {
							render.Logger().Error("present", "err", err)
						}
					}))
					if err != nil {
						render.Logger().Debug("wipe interrupted", "err", err)
					}
				}
				return
			case ev.MatchString("p"):
				shots++
				path := fmt.Sprintf("doomview%03d.png", shots)
				if err := scene.Frame.SavePNG(path, 0, 0); err != nil {
					render.Logger().Error("screenshot", "err", err)
				} else {
					scene.post("Screenshot " + path)
				}
				return
			case ev.MatchString("i"):
				scene.Player.Invulnerable = !scene.Player.Invulnerable
				return
			case ev.MatchString("?", "shift+/"):
				hud.show = !hud.show
				return
			}

			if k, ok := matchMapKey(ev); ok {
				if scene.Map.Responder(automap.Event{Type: automap.KeyDown, Key: k}) {
					held = append(held, k)
					return
				}
			}
			switch {
			case ev.MatchString("w", "up"):
				motion.Walk.Push(walkAccel, walkMax)
			case ev.MatchString("s", "down"):
				motion.Walk.Push(-walkAccel, walkMax)
			case ev.MatchString("a", "left"):
				motion.Turn.Push(turnAccel, turnMax)
			case ev.MatchString("d", "right"):
				motion.Turn.Push(-turnAccel, turnMax)
			}

		case uv.KeyReleaseEvent:
			if k, ok := matchMapKey(ev); ok {
				scene.Map.Responder(automap.Event{Type: automap.KeyUp, Key: k})
			}
		}
	}

	// Main loop
	targetDuration := time.Second / time.Duration(cfg.FPS)
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()

	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					cancel()
					break drain
				}
				handle(ev)
			default:
				break drain
			}
		}

		scene.Tick(motion)
		for _, k := range held {
			scene.Map.Responder(automap.Event{Type: automap.KeyUp, Key: k})
		}
		held = held[:0]

		scene.Render()
		if err := present(scene.Frame); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}
		hud.UpdateFPS()

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
