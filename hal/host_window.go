//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"
	"image/color"

	"canclock/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const ledStrip = 16

var (
	ledOn  = color.RGBA{R: 0x30, G: 0xe0, B: 0x50, A: 0xff}
	ledOff = color.RGBA{R: 0x20, G: 0x30, B: 0x20, A: 0xff}
)

// RunWindow starts a desktop window that shows the display framebuffer and the
// indicator LEDs. It blocks until the window closes or the firmware returns.
func RunWindow(prog Program, cfg RunConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 3
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cfg.Duration)
		defer stop()
	}

	h, errc := start(ctx, prog, cfg)
	g := &hostGame{h: h, errc: errc}
	ebiten.SetWindowTitle("canclock (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*cfg.Scale, (h.fb.height+ledStrip)*cfg.Scale)
	ebiten.SetTPS(30)
	runErr := ebiten.RunGame(g)

	cancel()
	if !g.done {
		g.err = <-errc
	}
	if runErr != nil && runErr != ebiten.Termination {
		return runErr
	}
	if g.err != nil && !errors.Is(g.err, context.Canceled) && !errors.Is(g.err, context.DeadlineExceeded) {
		return g.err
	}
	return nil
}

type hostGame struct {
	h       *hostHAL
	errc    <-chan error
	done    bool
	err     error
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	seq     uint64
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.errc:
		g.done = true
		g.err = err
		return ebiten.Termination
	default:
		return nil
	}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.front))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	if seq := fb.snapshotRGB565(g.scratch); seq != g.seq {
		g.seq = seq
		src := g.scratch
		dst := g.img.Pix
		for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
			r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
			j := (i / 2) * 4
			dst[j+0] = r
			dst[j+1] = gg
			dst[j+2] = b
			dst[j+3] = 0xFF
		}
		g.fbImg.ReplacePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)

	y := float32(fb.height) + 4
	for i, l := range g.h.leds {
		c := ledOff
		if l.on.Load() {
			c = ledOn
		}
		vector.DrawFilledRect(screen, float32(6+i*14), y, 8, 8, c, false)
	}
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height + ledStrip
}
