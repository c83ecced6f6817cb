package main

import (
	"flag"
	"image"
	"image/color"
	"os"
	"sync"

	pomodoro "github.com/d093w1z/pomodoro/api"
	"github.com/d093w1z/pomodoro/config"
	"github.com/d093w1z/pomodoro/gui/focotimer/polybar"
	widgets "github.com/d093w1z/pomodoro/gui/focotimer/widgets"
	"github.com/d093w1z/pomodoro/notify"
	"github.com/d093w1z/gio/app"
	"github.com/d093w1z/gio/io/event"
	"github.com/d093w1z/gio/io/key"
	"github.com/d093w1z/gio/io/system"
	"github.com/d093w1z/gio/layout"
	"github.com/d093w1z/gio/op"
	"github.com/d093w1z/gio/op/clip"
	"github.com/d093w1z/gio/op/paint"
	"github.com/d093w1z/gio/unit"
	"github.com/d093w1z/gio/widget"
	"github.com/d093w1z/gio/widget/material"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

type C = layout.Context
type D = layout.Dimensions

var (
	isPolybarEnabled = flag.Bool("polybar", false, "Enable polybar output")
	configPath       = flag.String("config", "", "Path to a YAML config file")
)

var (
	btnToggle = new(widget.Clickable)
	btnReset  = new(widget.Clickable)
	btnClose  = new(widget.Clickable)
)

type AppManager struct {
	timers  *pomodoro.TimerManager
	onClose func()
	window  *app.Window
	mu      sync.Mutex
}

func NewAppManager(tm *pomodoro.TimerManager, onClose func()) *AppManager {
	m := &AppManager{timers: tm, onClose: onClose}
	go m.invalidateOnChange(tm.Subscribe())
	return m
}

// invalidateOnChange redraws the open window whenever the timer changes.
func (m *AppManager) invalidateOnChange(updates <-chan pomodoro.Snapshot) {
	for range updates {
		m.mu.Lock()
		w := m.window
		m.mu.Unlock()
		if w != nil {
			w.Invalidate()
		}
	}
}

// Start creates the window and launches the event loop
func (m *AppManager) Start() {
	m.mu.Lock()
	if m.window != nil {
		m.mu.Unlock()
		return
	}

	m.window = new(app.Window)
	m.window.Option(app.Decorated(false), app.Transparent(true), app.Size(300, 360), app.Title("Pomodoro Timer"))
	w := m.window
	m.mu.Unlock()

	go func() {
		if err := m.loop(w); err != nil {
			log.Error().Err(err).Msg("window closed with error")
		}
		if m.onClose != nil {
			m.onClose()
		}
	}()
}

// Stop closes the window safely
func (m *AppManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.window != nil {
		m.window.Invalidate()
		m.window.Perform(system.ActionClose)
		m.window = nil
	}
}

// ToggleState starts/stops the GUI window
func (m *AppManager) ToggleState() {
	m.mu.Lock()
	windowRunning := m.window != nil
	m.mu.Unlock()

	if !windowRunning {
		go m.Start()
	} else {
		go m.Stop()
	}
}

// ---------------- GUI LOOP ----------------
func (m *AppManager) loop(window *app.Window) error {
	var ops op.Ops
	th := material.NewTheme()

	for {
		e := window.Event()
		switch e := e.(type) {
		case app.DestroyEvent:
			m.mu.Lock()
			if m.window == window {
				m.window = nil
			}
			m.mu.Unlock()
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			// Key input handling
			event.Op(gtx.Ops, window)
			key.InputHintOp{Tag: window, Hint: key.HintAny}.Add(gtx.Ops)
			for {
				ev, ok := gtx.Source.Event(key.Filter{Focus: nil})
				if !ok {
					break
				}
				keyEv, ok := ev.(key.Event)
				if !ok || keyEv.State != key.Press {
					continue
				}
				switch keyEv.Name {
				case key.NameEscape:
					m.Stop()
				case key.NameSpace:
					if m.timers.Snapshot().CanToggle() {
						m.timers.Toggle()
					}
				case "R":
					m.timers.Reset()
				}
			}

			// Draw rounded background
			rect := clip.UniformRRect(
				image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y),
				8,
			)
			rect.Push(gtx.Ops)
			paint.FillShape(gtx.Ops, color.NRGBA{R: 0x01, G: 0x01, B: 0x01, A: 0xFF}, rect.Op(gtx.Ops))

			timerPage(th, gtx, m)

			e.Frame(gtx.Ops)
		}
	}
}

// ---------------- TIMER PAGE ----------------
func timerPage(th *material.Theme, gtx C, m *AppManager) D {
	s := m.timers.Snapshot()

	mainIcon := icons.AVPlayArrow
	if s.Status == pomodoro.Running {
		mainIcon = icons.AVPause
	}

	return layout.Center.Layout(gtx, func(gtx C) D {
		return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(layout.Spacer{Height: unit.Dp(20)}.Layout),
			widgets.Timer(th, s),
			layout.Rigid(layout.Spacer{Height: unit.Dp(20)}.Layout),
			layout.Rigid(func(gtx C) D {
				inset := layout.UniformInset(unit.Dp(8))
				return inset.Layout(gtx, func(gtx C) D {
					return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
						widgets.Button(th, 10, pomodoro.ButtonLabel(s), mainIcon, btnToggle, s.CanToggle(), m.timers.Toggle),
						layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
						widgets.Button(th, 10, "RESET", icons.AVReplay, btnReset, true, m.timers.Reset),
						layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
						widgets.Button(th, 5, "CLOSE", icons.NavigationClose, btnClose, true, func() { go m.Stop() }),
					)
				})
			}),
			widgets.Footer(th, s.Total),
		)
	})
}

// ---------------- NOTIFIERS ----------------
func buildNotifier(cfg *config.Config) (pomodoro.Notifier, func()) {
	var sinks notify.Multi
	closer := func() {}

	if cfg.Notify.Log {
		sinks = append(sinks, notify.NewLog(log.With().Str("component", "notify").Logger()))
	}
	if cfg.Notify.Desktop {
		sinks = append(sinks, notify.NewDesktop("Pomodoro"))
	}
	if cfg.Notify.NATS.URL != "" {
		n := notify.NewNATS(cfg.Notify.NATS)
		sinks = append(sinks, n)
		closer = func() {
			if err := n.Close(); err != nil {
				log.Warn().Err(err).Msg("closing NATS connection")
			}
		}
	}
	return sinks, closer
}

// ---------------- MAIN ----------------
func main() {
	flag.Parse()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	notifier, closeNotifier := buildNotifier(cfg)
	timers := pomodoro.NewTimerManager(cfg.Duration,
		pomodoro.WithNotifier(notifier),
		pomodoro.WithMessage(cfg.Message),
	)

	// app.Main never returns, so every exit goes through here
	var exitOnce sync.Once
	exit := func() {
		exitOnce.Do(func() {
			timers.Close()
			closeNotifier()
			log.Info().Msg("pomodoro stopped")
			os.Exit(0)
		})
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Bool("polybar", *isPolybarEnabled).
		Msg("starting pomodoro")

	if *isPolybarEnabled {
		manager := NewAppManager(timers, nil)
		if err := polybar.Init(cfg.Polybar.Pipe); err != nil {
			log.Fatal().Err(err).Msg("failed to set up polybar")
		}
		polybar.SetTimerManager(timers)
		polybar.AddHandler(manager.ToggleState)
		go func() {
			if err := polybar.Main(); err != nil {
				log.Error().Err(err).Msg("polybar stopped")
			}
			exit()
		}()
	} else {
		NewAppManager(timers, exit).Start()
	}

	app.Main()
}
