package pomodoro

import (
	"fmt"
	"math"
)

// Format renders seconds as zero padded "MM:SS".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ProgressFraction is the elapsed share of total, in [0, 1].
// A zero total counts as complete.
func ProgressFraction(remaining, total int) float64 {
	if total <= 0 {
		return 1
	}
	p := float64(total-remaining) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Circumference of a circle of radius r.
func Circumference(r float64) float64 {
	return 2 * math.Pi * r
}

// ArcOffset is the stroke offset hiding the not-yet-elapsed part of a progress
// ring of radius r.
func ArcOffset(r, fraction float64) float64 {
	return Circumference(r) * (1 - fraction)
}

func StatusText(s Snapshot) string {
	switch {
	case s.Remaining == 0:
		return "🎉 Concluído!"
	case s.Status == Running:
		return "⏰ Trabalhando..."
	case s.Status == Paused:
		return "⏸️ Pausado"
	default:
		return "🍅 Pronto"
	}
}

func ButtonLabel(s Snapshot) string {
	switch {
	case !s.CanToggle():
		return "Finalizado"
	case s.Status == Running:
		return "Pausar"
	default:
		return "Iniciar"
	}
}

func FooterText(total int) string {
	return fmt.Sprintf("Técnica Pomodoro: %d minutos de foco", total/60)
}
