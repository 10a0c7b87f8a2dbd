package tui

import (
	"strings"

	"github.com/dshills/goterm"
)

// fakeSurface is an in-memory Surface for render assertions
type fakeSurface struct {
	width  int
	height int
	cells  [][]goterm.Cell
}

func newFakeSurface(width, height int) *fakeSurface {
	f := &fakeSurface{width: width, height: height}
	f.Clear()
	return f
}

func (f *fakeSurface) Size() (int, int) { return f.width, f.height }

func (f *fakeSurface) Clear() {
	f.cells = make([][]goterm.Cell, f.height)
	for y := range f.cells {
		f.cells[y] = make([]goterm.Cell, f.width)
		for x := range f.cells[y] {
			f.cells[y][x] = goterm.NewCell(' ', colorDefault, colorDefault, goterm.StyleNone)
		}
	}
}

func (f *fakeSurface) Show() error { return nil }

func (f *fakeSurface) SetCell(x, y int, cell goterm.Cell) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.cells[y][x] = cell
}

func (f *fakeSurface) GetCell(x, y int) goterm.Cell {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return goterm.NewCell(' ', colorDefault, colorDefault, goterm.StyleNone)
	}
	return f.cells[y][x]
}

func (f *fakeSurface) DrawText(x, y int, text string, fg, bg goterm.Color, style goterm.Style) {
	col := x
	for _, ch := range text {
		f.SetCell(col, y, goterm.NewCell(ch, fg, bg, style))
		col++
	}
}

// row returns the characters of one screen row with trailing spaces removed
func (f *fakeSurface) row(y int) string {
	if y < 0 || y >= f.height {
		return ""
	}
	runes := make([]rune, f.width)
	for x := 0; x < f.width; x++ {
		runes[x] = f.cells[y][x].Ch
	}
	return strings.TrimRight(string(runes), " ")
}

// contains reports whether any screen row contains the given text
func (f *fakeSurface) contains(text string) bool {
	for y := 0; y < f.height; y++ {
		if strings.Contains(f.row(y), text) {
			return true
		}
	}
	return false
}
