//go:build !tinygo

package hal

import "sync"

// hostFramebuffer is drawn by the firmware goroutine into the back buffer;
// Present publishes it to the front buffer the window reads.
type hostFramebuffer struct {
	width  int
	height int
	stride int
	back   []byte

	mu    sync.Mutex
	front []byte
	seq   uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		back:   make([]byte, stride*height),
		front:  make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.back }

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	fill565(f.back, rgb565(r, g, b))
}

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.front, f.back)
	f.seq++
	return nil
}

// snapshotRGB565 copies the last presented frame into dst and returns its
// sequence number.
func (f *hostFramebuffer) snapshotRGB565(dst []byte) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
	return f.seq
}
