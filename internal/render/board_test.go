package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/park285/xo-arena/pkg/arenadto"
)

func TestRenderPNGDecodes(t *testing.T) {
	r := NewBoardRenderer(48)
	view := arenadto.GameView{
		Active:     true,
		Player1:    "Ann",
		Player2:    "Bob",
		Cells:      [9]string{"X", "O", "O", "", "X", "", "", "", "X"},
		Decided:    true,
		Winner:     "X",
		WinnerName: "Ann",
		Combo:      []int{0, 4, 8},
		Stats:      arenadto.Stats{Player1Wins: 1},
		RoundCount: 1,
	}
	raw, err := r.RenderPNG(context.Background(), view)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantW := 48*3 + 6*2 + 24*2
	if img.Bounds().Dx() != wantW {
		t.Fatalf("width = %d, want %d", img.Bounds().Dx(), wantW)
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBoardRenderer(0).RenderPNG(ctx, arenadto.GameView{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestMarkImageCachedAndRejectsUnknown(t *testing.T) {
	a, err := markImage("X", 32)
	if err != nil {
		t.Fatalf("markImage: %v", err)
	}
	b, _ := markImage("X", 32)
	if a != b {
		t.Fatalf("expected cached image")
	}
	if _, err := markImage("Z", 32); err == nil {
		t.Fatalf("expected error for unknown mark")
	}
}

func TestCellRect(t *testing.T) {
	got := CellRect(image.Point{X: 10, Y: 20}, 30, 5, 5)
	want := image.Rect(10+2*35, 20+35, 10+2*35+30, 20+35+30)
	if got != want {
		t.Fatalf("CellRect = %v, want %v", got, want)
	}
}

func TestCaptions(t *testing.T) {
	if got := Headline(arenadto.GameView{Decided: true, Draw: true}); got != "DRAW" {
		t.Fatalf("draw headline = %q", got)
	}
	if got := Headline(arenadto.GameView{Decided: true, Winner: "O", WinnerName: "Zoë"}); got != "ZO? WINS" {
		t.Fatalf("win headline = %q", got)
	}
	if got := Headline(arenadto.GameView{Turn: "X", CurrentPlayer: "ann"}); got != "TURN ANN (X)" {
		t.Fatalf("turn headline = %q", got)
	}
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	path, err := DirSaver(dir)("../escape.png", []byte("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("saved outside dir: %s", path)
	}
	if b, err := os.ReadFile(path); err != nil || string(b) != "x" {
		t.Fatalf("read back: %q %v", b, err)
	}
}
