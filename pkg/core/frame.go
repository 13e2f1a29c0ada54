package core

import (
	"image"
	"image/color"
)

// Texel is one RGBA sample of a frame buffer
type Texel struct {
	R, G, B, A uint8
}

// Gray returns an opaque texel with all color channels set to v
func Gray(v uint8) Texel {
	return Texel{R: v, G: v, B: v, A: 255}
}

// RGBA converts the texel to the standard library color type
func (t Texel) RGBA() color.RGBA {
	return color.RGBA{R: t.R, G: t.G, B: t.B, A: t.A}
}

// Frame is a row-major texel buffer of a fixed size
type Frame struct {
	Width  int
	Height int
	Texels []Texel
}

// NewFrame allocates a frame with every texel zeroed
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Texels: make([]Texel, width*height),
	}
}

// Index returns the flat texel index of pixel (col, row)
func (f *Frame) Index(col, row int) int {
	return row*f.Width + col
}

// At returns the texel of pixel (col, row)
func (f *Frame) At(col, row int) Texel {
	return f.Texels[f.Index(col, row)]
}

// Set stores the texel of pixel (col, row)
func (f *Frame) Set(col, row int, t Texel) {
	f.Texels[f.Index(col, row)] = t
}

// Stride is the number of bytes in one row of the packed RGBA buffer
func (f *Frame) Stride() int {
	return f.Width * 4
}

// Bytes packs the texels into an RGBA byte slice with stride Width*4
func (f *Frame) Bytes() []byte {
	pix := make([]byte, len(f.Texels)*4)
	for i, t := range f.Texels {
		pix[i*4+0] = t.R
		pix[i*4+1] = t.G
		pix[i*4+2] = t.B
		pix[i*4+3] = t.A
	}
	return pix
}

// ToImage copies the frame into an *image.RGBA
func (f *Frame) ToImage() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Bytes(),
		Stride: f.Stride(),
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Clone returns a deep copy of the frame
func (f *Frame) Clone() *Frame {
	texels := make([]Texel, len(f.Texels))
	copy(texels, f.Texels)
	return &Frame{Width: f.Width, Height: f.Height, Texels: texels}
}

// FrameFromImage converts any image into a frame, dropping precision below 8 bits
func FrameFromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	frame := NewFrame(bounds.Dx(), bounds.Dy())
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
			frame.Set(x, y, Texel{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return frame
}
