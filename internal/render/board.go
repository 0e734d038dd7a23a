package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/park285/xo-arena/pkg/arenadto"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BoardRenderer turns a game view into a PNG.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, view arenadto.GameView) ([]byte, error)
}

type neonRenderer struct {
	cellSize int
}

// NewBoardRenderer returns a renderer with cells of cellSize pixels (96 when <= 0).
func NewBoardRenderer(cellSize int) BoardRenderer {
	if cellSize <= 0 {
		cellSize = 96
	}
	return &neonRenderer{cellSize: cellSize}
}

var (
	voidColor     = color.RGBA{10, 10, 20, 255}
	cellColor     = color.RGBA{18, 18, 34, 255}
	gridColor     = color.RGBA{80, 40, 140, 255}
	comboColor    = color.NRGBA{R: 255, G: 190, B: 11, A: 90}
	captionColor  = color.RGBA{236, 239, 255, 255}
	winPinkColor  = color.RGBA{255, 0, 110, 255}
	winCyanColor  = color.RGBA{0, 245, 255, 255}
	drawGoldColor = color.RGBA{255, 190, 11, 255}
)

func (r *neonRenderer) RenderPNG(ctx context.Context, view arenadto.GameView) ([]byte, error) {
	const (
		margin     = 24
		gap        = 6
		headerSize = 40
		footerSize = 36
	)
	cs := r.cellSize
	boardSize := cs*3 + gap*2
	width := boardSize + margin*2
	height := boardSize + margin*2 + headerSize + footerSize
	origin := image.Point{X: margin, Y: margin + headerSize}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(voidColor), image.Point{}, draw.Src)
	boardRect := image.Rect(origin.X-gap, origin.Y-gap, origin.X+boardSize+gap, origin.Y+boardSize+gap)
	draw.Draw(img, boardRect, image.NewUniform(gridColor), image.Point{}, draw.Src)

	inCombo := map[int]bool{}
	for _, i := range view.Combo {
		inCombo[i] = true
	}

	for i, mark := range view.Cells {
		rect := CellRect(origin, cs, gap, i)
		draw.Draw(img, rect, image.NewUniform(cellColor), image.Point{}, draw.Src)
		if inCombo[i] {
			draw.Draw(img, rect, image.NewUniform(comboColor), image.Point{}, draw.Over)
		}
		if mark == "" {
			continue
		}
		m, err := markImage(mark, cs)
		if err != nil {
			return nil, err
		}
		draw.Draw(img, rect, m, image.Point{}, draw.Over)
	}

	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	drawCentered(drawer, image.Rect(0, margin/2, width, margin/2+headerSize), Headline(view), headlineColor(view))
	drawCentered(drawer, image.Rect(0, height-footerSize-margin/2, width, height-margin/2), ScoreLine(view), captionColor)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// CellRect is the pixel rectangle of cell i (row-major) on a board at origin.
func CellRect(origin image.Point, cellSize, gap, i int) image.Rectangle {
	row, col := i/3, i%3
	x := origin.X + col*(cellSize+gap)
	y := origin.Y + row*(cellSize+gap)
	return image.Rect(x, y, x+cellSize, y+cellSize)
}

// Headline is the ASCII caption above the board.
func Headline(v arenadto.GameView) string {
	switch {
	case v.Decided && v.Draw:
		return "DRAW"
	case v.Decided:
		return strings.ToUpper(asciiOnly(v.WinnerName)) + " WINS"
	case v.CurrentPlayer != "":
		return fmt.Sprintf("TURN %s (%s)", strings.ToUpper(asciiOnly(v.CurrentPlayer)), v.Turn)
	default:
		return "XO ARENA"
	}
}

// ScoreLine is the caption under the board.
func ScoreLine(v arenadto.GameView) string {
	return fmt.Sprintf("%s %d  DRAWS %d  %s %d  ROUND %d",
		asciiOnly(v.Player1), v.Stats.Player1Wins, v.Stats.Draws,
		asciiOnly(v.Player2), v.Stats.Player2Wins, v.RoundCount)
}

func headlineColor(v arenadto.GameView) color.Color {
	switch {
	case v.Decided && v.Draw:
		return drawGoldColor
	case v.Winner == "X":
		return winPinkColor
	case v.Winner == "O":
		return winCyanColor
	default:
		return captionColor
	}
}

// basicfont only covers ASCII.
func asciiOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

func drawCentered(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}
