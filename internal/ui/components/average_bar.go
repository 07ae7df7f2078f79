package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gradebook-tui/internal/ui/styles"
)

const (
	gradientLow  = "#ff6b6b"
	gradientHigh = "#51cf66"

	labelWidth   = 15
	percentWidth = 7
)

// AverageBar renders a subject average as a progress bar on a 0-100 scale.
// Averages above 100 (extra credit) are drawn as a full bar.
type AverageBar struct {
	progress progress.Model
}

// NewAverageBar creates a bar with a red to green gradient.
func NewAverageBar() AverageBar {
	return AverageBar{
		progress: progress.New(
			progress.WithScaledGradient(gradientLow, gradientHigh),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// SetWidth sets the progress bar width.
func (a *AverageBar) SetWidth(width int) {
	a.progress.Width = width
}

// View renders label, bar and average. width is the total line width.
func (a AverageBar) View(average float64, label string, width int) string {
	a.progress.Width = max(width-labelWidth-percentWidth-2, 10)

	bar := a.progress.ViewAs(fraction(average))

	averageStr := styles.GetScoreStyle(average).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(formatAverage(average))

	labelStr := styles.ProgressLabelStyle.Width(labelWidth).Render(truncateLabel(label, labelWidth-1))

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", averageStr)
}

// ViewCompact renders the bar and average without a label.
func (a AverageBar) ViewCompact(average float64, width int) string {
	a.progress.Width = max(width-percentWidth-1, 5)

	bar := a.progress.ViewAs(fraction(average))
	averageStr := styles.GetScoreStyle(average).Render(formatAverage(average))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", averageStr)
}

func fraction(average float64) float64 {
	if math.IsNaN(average) {
		return 0
	}
	return math.Min(math.Max(average/100, 0), 1)
}

// formatAverage shows whole numbers without decimals and everything else with
// two, so a raw subject quotient like 83.333 reads as 83.33.
func formatAverage(average float64) string {
	if average == math.Trunc(average) {
		return fmt.Sprintf("%.0f", average)
	}
	return fmt.Sprintf("%.2f", average)
}

func truncateLabel(label string, width int) string {
	r := []rune(label)
	if len(r) <= width {
		return label
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
