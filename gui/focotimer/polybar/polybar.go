package polybar

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	pomodoro "github.com/d093w1z/pomodoro/api"
	"github.com/rs/zerolog/log"
)

var (
	fifoPipePath string

	mu                sync.RWMutex
	guiToggleCallback func()

	timerMu   sync.Mutex
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	stopping  = make(chan struct{})

	timerManager *pomodoro.TimerManager
)

// --- TimerManager injection ---

// SetTimerManager lets the application provide a shared TimerManager instance.
// Safe to call before or after Init().
func SetTimerManager(tm *pomodoro.TimerManager) {
	timerMu.Lock()
	defer timerMu.Unlock()
	timerManager = tm
}

// getTimerManager safely returns the current TimerManager or nil.
func getTimerManager() *pomodoro.TimerManager {
	timerMu.Lock()
	defer timerMu.Unlock()
	return timerManager
}

// --- Polybar setup ---

// Init creates the command FIFO next to base.
func Init(base string) error {
	path, err := InitWithBase(base)
	if err != nil {
		return fmt.Errorf("polybar.Init: %w", err)
	}
	log.Info().Str("path", path).Msg("FIFO created")
	return nil
}

func InitWithBase(base string) (string, error) {
	abs := base
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(os.TempDir(), base)
	}

	path, err := mkfifoUnique(abs, 0666)
	if err != nil {
		return "", err
	}
	fifoPipePath = path
	return path, nil
}

func mkfifoUnique(base string, mode os.FileMode) (string, error) {
	// Add PID to make it unique per process
	pid := os.Getpid()

	for i := 0; i < 1000; i++ {
		var path string
		if i == 0 {
			path = fmt.Sprintf("%s.%d", base, pid)
		} else {
			path = fmt.Sprintf("%s.%d.%d", base, pid, i)
		}

		err := syscall.Mkfifo(path, uint32(mode.Perm()))
		if err == nil {
			return path, nil
		}
		if errors.Is(err, os.ErrExist) {
			fi, statErr := os.Lstat(path)
			if statErr != nil {
				continue
			}
			if fi.Mode()&os.ModeNamedPipe != 0 && canUseFifo(path) {
				return path, nil
			}
			continue
		}
		return "", fmt.Errorf("mkfifo %q: %w", path, err)
	}
	return "", fmt.Errorf("unable to allocate unique FIFO for base %q after many attempts", base)
}

// canUseFifo reports whether nobody is reading the FIFO yet. Opening the
// write end without blocking only succeeds with a reader attached, so an
// ENXIO error means the pipe is free.
func canUseFifo(path string) bool {
	file, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return errors.Is(err, syscall.ENXIO)
	}
	file.Close()
	return false
}

// --- Handlers ---

// AddHandler registers the callback for the "gui" command.
func AddHandler(f func()) {
	mu.Lock()
	guiToggleCallback = f
	mu.Unlock()
}

// Main prints a status line on every timer change until a signal arrives or
// Shutdown is called.
func Main() error {
	if fifoPipePath == "" {
		return errors.New("polybar.Main: Init was not called")
	}

	startOnce.Do(func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handleCmds()
		}()
	})

	// Set up signal handling BEFORE starting the main loop
	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	var updates <-chan pomodoro.Snapshot
	if tm := getTimerManager(); tm != nil {
		updates = tm.Subscribe()
	} else {
		log.Warn().Msg("polybar.Main: no TimerManager set, timer disabled")
	}

	log.Info().Msg("polybar.Main: starting main loop")
	fmt.Println(output())

	for {
		select {
		case _, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			fmt.Println(output())
		case sig := <-sigc:
			log.Info().Stringer("signal", sig).Msg("polybar.Main: shutting down")
			Shutdown()
			return nil
		case <-stopping:
			log.Info().Msg("polybar.Main: stopping channel triggered")
			return nil
		}
	}
}

func Shutdown() {
	log.Debug().Msg("polybar.Shutdown: initiating shutdown")
	stopOnce.Do(func() {
		close(stopping)
		if fifoPipePath != "" {
			log.Debug().Str("path", fifoPipePath).Msg("polybar.Shutdown: removing FIFO")
			if err := os.Remove(fifoPipePath); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Warn().Err(err).Str("path", fifoPipePath).Msg("removing FIFO")
			}
		}
	})
	wg.Wait()
	log.Debug().Msg("polybar.Shutdown: complete")
}

func FifoPath() string { return fifoPipePath }

// --- Internal command loop ---

func handleCmds() {
	log.Debug().Msg("polybar.handleCmds: starting command handler")
	defer log.Debug().Msg("polybar.handleCmds: command handler stopped")

	for {
		select {
		case <-stopping:
			return
		default:
		}

		// O_RDWR keeps the FIFO open between writers and lets Shutdown
		// unblock us without a writer.
		file, err := os.OpenFile(fifoPipePath, os.O_RDWR, os.ModeNamedPipe)
		if err != nil {
			log.Error().Err(err).Str("path", fifoPipePath).Msg("polybar.handleCmds: open FIFO")
			select {
			case <-stopping:
				return
			case <-time.After(time.Second):
				continue
			}
		}

		done := make(chan struct{})
		go func() {
			select {
			case <-stopping:
				file.Close()
			case <-done:
			}
		}()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			dispatch(scanner.Text())
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
			log.Error().Err(err).Msg("polybar.handleCmds: scanner error")
		}

		close(done)
		_ = file.Close()

		// Small delay before reopening to prevent tight loops
		select {
		case <-stopping:
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func dispatch(cmd string) {
	log.Debug().Str("cmd", cmd).Msg("polybar: received command")
	switch cmd {
	case "toggle":
		TimerToggle()
	case "reset":
		TimerReset()
	case "gui":
		mu.RLock()
		cb := guiToggleCallback
		mu.RUnlock()
		if cb != nil {
			cb()
		}
	case "":
	default:
		log.Warn().Str("cmd", cmd).Msg("polybar: unknown command")
	}
}

func polybarActionButton(button string, action string) string {
	lbl := button
	if len(lbl) > 0 && lbl[len(lbl)-1] == '\n' {
		lbl = lbl[:len(lbl)-1]
	}
	return fmt.Sprintf("%%{A:%s:} %s %%{A}", action, lbl)
}

func pipeCommand(cmd string) string {
	return fmt.Sprintf("echo '%s' > %s", cmd, fifoPipePath)
}

// --- Output helpers ---

func output() string {
	s := Snapshot()
	label := statusIcon(s) + " " + s.Format()

	// a finished timer only accepts reset, like the disabled GUI button
	toggle := polybarActionButton(label, pipeCommand("toggle"))
	if !s.CanToggle() {
		toggle = " " + label + " "
	}

	return toggle +
		polybarActionButton("⟲", pipeCommand("reset")) +
		polybarActionButton("☰", pipeCommand("gui"))
}

func statusIcon(s pomodoro.Snapshot) string {
	switch {
	case s.Remaining == 0:
		return "🎉"
	case s.Status == pomodoro.Running:
		return "⏰"
	case s.Status == pomodoro.Paused:
		return "⏸"
	default:
		return "🍅"
	}
}

// --- Timer wrappers (null-safe) ---

func TimerToggle() {
	if tm := getTimerManager(); tm != nil {
		tm.Toggle()
	}
}

func TimerReset() {
	if tm := getTimerManager(); tm != nil {
		tm.Reset()
	}
}

func Snapshot() pomodoro.Snapshot {
	if tm := getTimerManager(); tm != nil {
		return tm.Snapshot()
	}
	return pomodoro.Snapshot{}
}
