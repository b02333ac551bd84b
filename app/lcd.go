package app

import (
	"errors"
	"image/color"

	"canclock/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

const (
	lcdRows = 2
	lcdCols = 16
)

var (
	ErrCursor = errors.New("app: lcd cursor out of range")
	ErrFont   = errors.New("app: lcd font has no width")
)

var (
	lcdBG = color.RGBA{R: 0x9c, G: 0xc4, B: 0x3c, A: 0xff}
	lcdFG = color.RGBA{R: 0x10, G: 0x20, B: 0x10, A: 0xff}
)

// lcd models a 2x16 character module drawn onto a framebuffer. Writes land in
// a cell buffer at the cursor; Flush redraws the panel when cells changed.
type lcd struct {
	d    *fbDisplay
	font tinyfont.Fonter

	cellW, cellH int16
	baseline     int16
	x0, y0       int16

	cells    [lcdRows][lcdCols]byte
	row, col int
	dirty    bool
}

func newLCD(fb hal.Framebuffer) (*lcd, error) {
	l := &lcd{
		d:        newFBDisplay(fb),
		font:     &freemono.Regular9pt7b,
		cellH:    22,
		baseline: 15,
	}
	_, outboxWidth := tinyfont.LineWidth(l.font, "0")
	l.cellW = int16(outboxWidth)
	if l.cellW <= 0 {
		return nil, ErrFont
	}
	w, h := l.d.Size()
	l.x0 = (w - lcdCols*l.cellW) / 2
	l.y0 = (h - lcdRows*l.cellH) / 2
	if l.x0 < 0 {
		l.x0 = 0
	}
	if l.y0 < 0 {
		l.y0 = 0
	}
	l.Clear()
	return l, nil
}

// Clear blanks every cell and homes the cursor.
func (l *lcd) Clear() {
	for r := range l.cells {
		for c := range l.cells[r] {
			l.cells[r][c] = ' '
		}
	}
	l.row, l.col = 0, 0
	l.dirty = true
}

func (l *lcd) SetCursor(row, col int) error {
	if row < 0 || row >= lcdRows || col < 0 || col >= lcdCols {
		return ErrCursor
	}
	l.row, l.col = row, col
	return nil
}

// WriteString writes s at the cursor. Characters past the end of the row are
// dropped.
func (l *lcd) WriteString(s string) {
	for i := 0; i < len(s) && l.col < lcdCols; i++ {
		if l.cells[l.row][l.col] != s[i] {
			l.cells[l.row][l.col] = s[i]
			l.dirty = true
		}
		l.col++
	}
}

// Row returns the 16 characters of row.
func (l *lcd) Row(row int) string {
	if row < 0 || row >= lcdRows {
		return ""
	}
	return string(l.cells[row][:])
}

// Flush redraws the panel if any cell changed since the last flush.
func (l *lcd) Flush() error {
	if !l.dirty {
		return nil
	}
	l.dirty = false
	if err := l.d.Fill(lcdBG); err != nil {
		return err
	}
	for r := 0; r < lcdRows; r++ {
		y := l.y0 + int16(r)*l.cellH + l.baseline
		for c := 0; c < lcdCols; c++ {
			ch := l.cells[r][c]
			if ch == ' ' {
				continue
			}
			tinyfont.DrawChar(l.d, l.font, l.x0+int16(c)*l.cellW, y, rune(ch), lcdFG)
		}
	}
	return l.d.Display()
}
