package stats

import (
	"os"

	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	minCurveWidth       = 10
)

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return CurveWidthFor(width)
}

// CurveWidthFor clamps a total width to something a curve can use.
func CurveWidthFor(totalWidth int) int {
	if totalWidth < minCurveWidth {
		return minCurveWidth
	}
	return totalWidth
}
