package pomodoro

import (
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		1500: "25:00",
		65:   "01:05",
		59:   "00:59",
		-3:   "00:00",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Errorf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressFraction(t *testing.T) {
	if got := ProgressFraction(1500, 1500); got != 0 {
		t.Errorf("Expected 0 at start, got %v", got)
	}
	if got := ProgressFraction(0, 1500); got != 1 {
		t.Errorf("Expected 1 at end, got %v", got)
	}
	if got := ProgressFraction(750, 1500); got != 0.5 {
		t.Errorf("Expected 0.5 halfway, got %v", got)
	}
	if got := ProgressFraction(0, 0); got != 1 {
		t.Errorf("Expected zero total to count as complete, got %v", got)
	}
	if got := ProgressFraction(2000, 1500); got != 0 {
		t.Errorf("Expected fraction clamped to 0, got %v", got)
	}
}

func TestArcOffset(t *testing.T) {
	r := 45.0
	if got := ArcOffset(r, 0); math.Abs(got-2*math.Pi*r) > 1e-9 {
		t.Errorf("Expected full circumference at start, got %v", got)
	}
	if got := ArcOffset(r, 1); got != 0 {
		t.Errorf("Expected no offset when complete, got %v", got)
	}
	if got := ArcOffset(r, 0.5); math.Abs(got-math.Pi*r) > 1e-9 {
		t.Errorf("Expected half circumference halfway, got %v", got)
	}
}

func TestStatusTextAndLabel(t *testing.T) {
	idle := Snapshot{Remaining: 1500, Total: 1500, Status: Idle}
	running := Snapshot{Remaining: 10, Total: 1500, Status: Running}
	paused := Snapshot{Remaining: 10, Total: 1500, Status: Paused}
	done := Snapshot{Remaining: 0, Total: 1500, Status: Finished}

	if StatusText(running) != "⏰ Trabalhando..." {
		t.Errorf("unexpected running text %q", StatusText(running))
	}
	if StatusText(paused) != "⏸️ Pausado" {
		t.Errorf("unexpected paused text %q", StatusText(paused))
	}
	if StatusText(idle) == StatusText(paused) {
		t.Error("Expected idle and paused to read differently")
	}
	if StatusText(done) != "🎉 Concluído!" {
		t.Errorf("unexpected finished text %q", StatusText(done))
	}

	if ButtonLabel(idle) != "Iniciar" || ButtonLabel(paused) != "Iniciar" {
		t.Error("Expected start label for idle and paused")
	}
	if ButtonLabel(running) != "Pausar" {
		t.Errorf("unexpected running label %q", ButtonLabel(running))
	}
	if ButtonLabel(done) != "Finalizado" {
		t.Errorf("unexpected finished label %q", ButtonLabel(done))
	}
	if FooterText(1500) != "Técnica Pomodoro: 25 minutos de foco" {
		t.Errorf("unexpected footer %q", FooterText(1500))
	}
}
