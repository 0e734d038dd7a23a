package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/*.svg
var markFiles embed.FS

type markCacheKey struct {
	mark string
	size int
}

var (
	markCache   = map[markCacheKey]image.Image{}
	markCacheMu sync.RWMutex
)

// markImage rasterizes the SVG for mark ("X" or "O") at size×size.
func markImage(mark string, size int) (image.Image, error) {
	key := markCacheKey{mark: mark, size: size}

	markCacheMu.RLock()
	if img, ok := markCache[key]; ok {
		markCacheMu.RUnlock()
		return img, nil
	}
	markCacheMu.RUnlock()

	name, err := markAssetName(mark)
	if err != nil {
		return nil, err
	}
	data, err := markFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read mark asset %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse mark svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	markCacheMu.Lock()
	markCache[key] = img
	markCacheMu.Unlock()
	return img, nil
}

func markAssetName(mark string) (string, error) {
	switch mark {
	case "X":
		return "assets/x.svg", nil
	case "O":
		return "assets/o.svg", nil
	default:
		return "", fmt.Errorf("no asset for mark %q", mark)
	}
}
