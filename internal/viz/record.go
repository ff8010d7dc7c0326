package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

// Recorder collects canvas frames into an animated GIF.
type Recorder struct {
	frames []*image.Paletted
}

const dotPixels = 4

// Capture rasterises the canvas, one dotPixels square per Braille dot.
func (r *Recorder) Capture(c *Canvas) {
	w, h := c.Dots()
	img := image.NewPaletted(image.Rect(0, 0, w*dotPixels, h*dotPixels), color.Palette{color.Black, color.White})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotPixels; py++ {
				for px := 0; px < dotPixels; px++ {
					img.SetColorIndex(x*dotPixels+px, y*dotPixels+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Len() int { return len(r.frames) }

// Save writes the frames to path with delay hundredths of a second between
// them and drops them.
func (r *Recorder) Save(path string, delay int) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	r.frames = nil

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
