package arenapresenter

import (
	"errors"
	"fmt"
	"time"

	"github.com/park285/xo-arena/pkg/arenadto"
)

var ErrNothingToExport = errors.New("no board to export")

// Presenter exports board images without coupling the UI to the renderer or the filesystem.
type Presenter struct {
	render func(view arenadto.GameView) ([]byte, error)
	save   func(name string, data []byte) (string, error)
	now    func() time.Time
}

func NewPresenter(render func(arenadto.GameView) ([]byte, error), save func(name string, data []byte) (string, error)) *Presenter {
	return &Presenter{render: render, save: save, now: time.Now}
}

// Snapshot renders the current board and stores it. It returns where the image went.
func (p *Presenter) Snapshot(view arenadto.GameView) (string, error) {
	if p == nil || p.render == nil || p.save == nil {
		return "", ErrNothingToExport
	}
	if !view.Active {
		return "", ErrNothingToExport
	}
	img, err := p.render(view)
	if err != nil {
		return "", fmt.Errorf("render board: %w", err)
	}
	if len(img) == 0 {
		return "", ErrNothingToExport
	}
	return p.save(SnapshotName(view, p.now()), img)
}

// SnapshotName is xo-<tag>-r<round>-<timestamp>.png.
func SnapshotName(view arenadto.GameView, at time.Time) string {
	tag := SessionTag(view.SessionID)
	if tag == "" {
		tag = "LOCAL"
	}
	return fmt.Sprintf("xo-%s-r%d-%s.png", tag, view.RoundCount, at.UTC().Format("20060102T150405"))
}
