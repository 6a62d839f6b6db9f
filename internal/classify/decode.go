package classify

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// inputSize is the square pixel dimension the bundled MobileNet-v2 model expects.
const inputSize = 224

// DecodeImage decodes a supported image format, trying the .ico reader
// first since its magic bytes don't match any registered stdlib decoder.
func DecodeImage(data []byte) (image.Image, error) {
	if img, err := decodeICO(data); err == nil {
		return img, nil
	}
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := bmp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := tiff.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("unrecognised image format")
}

// preprocess resizes img to inputSize x inputSize and produces an
// NHWC float32 tensor normalised to [-1, 1], the standard MobileNet-v2
// input convention.
func preprocess(img image.Image) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, inputSize, inputSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	tensor := make([]float32, inputSize*inputSize*3)
	i := 0
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			tensor[i+0] = (float32(r>>8)/127.5 - 1)
			tensor[i+1] = (float32(g>>8)/127.5 - 1)
			tensor[i+2] = (float32(b>>8)/127.5 - 1)
			i += 3
		}
	}
	return tensor
}
