package testutil

import "bytes"

// PNGBytes returns a minimal PNG header padded to size bytes, enough for
// content sniffing to report image/png.
func PNGBytes(size int) []byte {
	header := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if size < len(header) {
		size = len(header)
	}
	return append(header, bytes.Repeat([]byte{0}, size-len(header))...)
}

// GIFBytes returns a GIF image, a type uploads must reject.
func GIFBytes() []byte {
	return append([]byte("GIF89a"), make([]byte, 32)...)
}
