package texture

import (
	"encoding/binary"
	"io"
)

const (
	ddsMagic      = 0x20534444 // "DDS "
	ddsHeaderSize = 124
	ddsPixelSize  = 32

	ddsFlagCaps        = 0x1
	ddsFlagHeight      = 0x2
	ddsFlagWidth       = 0x4
	ddsFlagPixelFormat = 0x1000
	ddsFlagLinearSize  = 0x80000

	ddsPixelFourCC     = 0x4
	ddsCapsTexture     = 0x1000
	ddsFourCCDXT1      = 0x31545844 // "DXT1"
	ddsFileHeaderBytes = 4 + ddsHeaderSize
)

// HeaderSize is the number of bytes preceding the block data in a DDS file.
const HeaderSize = ddsFileHeaderBytes

// LinearSize returns the byte size of the BC1 payload for a surface.
func LinearSize(width, height int) int {
	bw := (width + 3) / 4
	bh := (height + 3) / 4
	return bw * bh * BlockSize
}

func writeHeader(w io.Writer, width, height int) error {
	var buf [ddsFileHeaderBytes]byte
	le := binary.LittleEndian
	le.PutUint32(buf[0:], ddsMagic)
	h := buf[4:]
	le.PutUint32(h[0:], ddsHeaderSize)
	le.PutUint32(h[4:], ddsFlagCaps|ddsFlagHeight|ddsFlagWidth|ddsFlagPixelFormat|ddsFlagLinearSize)
	le.PutUint32(h[8:], uint32(height))
	le.PutUint32(h[12:], uint32(width))
	le.PutUint32(h[16:], uint32(LinearSize(width, height)))
	// depth (20) and mip count (24) stay zero; 11 reserved dwords follow.
	pf := h[72:]
	le.PutUint32(pf[0:], ddsPixelSize)
	le.PutUint32(pf[4:], ddsPixelFourCC)
	le.PutUint32(pf[8:], ddsFourCCDXT1)
	le.PutUint32(h[104:], ddsCapsTexture)
	_, err := w.Write(buf[:])
	return err
}
