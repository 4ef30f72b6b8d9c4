package video

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Frame is one decoded video frame as packed 8-bit RGB. It is ephemeral:
// the batcher owns it until hand-off to a worker, the worker owns it until
// a result is produced, and the batch releases it afterwards.
type Frame struct {
	Pix    []byte // RGB24, len = 3*Width*Height
	Width  int
	Height int
}

func (f Frame) Empty() bool {
	return len(f.Pix) == 0
}

// Image converts the packed RGB buffer into an image.RGBA.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i+2 < len(f.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// EncodeJPEG compresses the frame for hand-off to the pose estimator.
func (f Frame) EncodeJPEG(quality int) ([]byte, error) {
	if f.Empty() {
		return nil, fmt.Errorf("cannot encode empty frame")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
