package classify

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/bmp"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// decodeICO parses a Windows .ico container and decodes its largest frame.
// No Go library for .ico decoding was found in the reference corpus; each
// frame is either an embedded PNG or a bare BITMAPINFOHEADER (DIB) without
// the BMP file header, so a synthetic file header is prepended before
// handing the bytes to the standard BMP decoder.
func decodeICO(data []byte) (image.Image, error) {
	if len(data) < 6 || data[0] != 0 || data[1] != 0 || data[2] != 1 || data[3] != 0 {
		return nil, fmt.Errorf("not an ICO file")
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return nil, fmt.Errorf("ICO has no frames")
	}

	type entry struct {
		width, height int
		size          uint32
		offset        uint32
	}
	var best entry
	for i := 0; i < count; i++ {
		off := 6 + i*16
		if off+16 > len(data) {
			return nil, fmt.Errorf("truncated ICO directory")
		}
		w := int(data[off])
		if w == 0 {
			w = 256
		}
		h := int(data[off+1])
		if h == 0 {
			h = 256
		}
		size := binary.LittleEndian.Uint32(data[off+8:])
		offset := binary.LittleEndian.Uint32(data[off+12:])
		if w*h > best.width*best.height {
			best = entry{width: w, height: h, size: size, offset: offset}
		}
	}

	end := uint64(best.offset) + uint64(best.size)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("ICO frame out of bounds")
	}
	frame := data[best.offset:end]

	if bytes.HasPrefix(frame, pngMagic) {
		return png.Decode(bytes.NewReader(frame))
	}
	return decodeDIB(frame)
}

// decodeDIB wraps a bare DIB (BITMAPINFOHEADER + pixel data, no
// BITMAPFILEHEADER) in a minimal 14-byte BMP file header so it can be
// handed to golang.org/x/image/bmp.
func decodeDIB(dib []byte) (image.Image, error) {
	if len(dib) < 4 {
		return nil, fmt.Errorf("DIB too small")
	}
	headerSize := binary.LittleEndian.Uint32(dib[0:4])
	fileSize := uint32(14) + uint32(len(dib))

	header := make([]byte, 14)
	header[0], header[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(header[2:], fileSize)
	binary.LittleEndian.PutUint32(header[10:], 14+headerSize)

	return bmp.Decode(bytes.NewReader(append(header, dib...)))
}
