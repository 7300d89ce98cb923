package services

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// Minimal little-endian TIFF/EXIF writer for building test JPEGs.

const (
	tiffASCII    = 2
	tiffLong     = 4
	tiffRational = 5

	tagDateTime         = 0x0132
	tagExifIFDPointer   = 0x8769
	tagGPSInfoPointer   = 0x8825
	tagDateTimeOriginal = 0x9003
	tagGPSLatitudeRef   = 0x0001
	tagGPSLatitude      = 0x0002
	tagGPSLongitudeRef  = 0x0003
	tagGPSLongitude     = 0x0004
)

type exifEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) exifEntry {
	b := append([]byte(s), 0)
	return exifEntry{tag: tag, typ: tiffASCII, count: uint32(len(b)), data: b}
}

func longEntry(tag uint16, v uint32) exifEntry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return exifEntry{tag: tag, typ: tiffLong, count: 1, data: b}
}

func rationalEntry(tag uint16, vals ...[2]uint32) exifEntry {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[8*i:], v[0])
		binary.LittleEndian.PutUint32(b[8*i+4:], v[1])
	}
	return exifEntry{tag: tag, typ: tiffRational, count: uint32(len(vals)), data: b}
}

func dms(d, m, s uint32) [][2]uint32 {
	return [][2]uint32{{d, 1}, {m, 1}, {s, 1}}
}

// ifdSize is the encoded length of an IFD plus its out-of-line values.
func ifdSize(entries []exifEntry) uint32 {
	n := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if len(e.data) > 4 {
			n += uint32(len(e.data)+1) &^ 1
		}
	}
	return n
}

func encodeIFD(entries []exifEntry, offset uint32) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	var head, tail bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&head, le, uint16(len(entries)))
	dataOff := offset + uint32(2+12*len(entries)+4)
	for _, e := range entries {
		_ = binary.Write(&head, le, e.tag)
		_ = binary.Write(&head, le, e.typ)
		_ = binary.Write(&head, le, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			head.Write(inline)
			continue
		}
		_ = binary.Write(&head, le, dataOff)
		tail.Write(e.data)
		if len(e.data)%2 == 1 {
			tail.WriteByte(0)
		}
		dataOff += uint32(len(e.data)+1) &^ 1
	}
	_ = binary.Write(&head, le, uint32(0))
	return append(head.Bytes(), tail.Bytes()...)
}

// buildExifJPEG wraps IFD0 and optional Exif and GPS sub-IFDs into a JPEG
// holding nothing but an APP1 segment.
func buildExifJPEG(ifd0, exifIFD, gpsIFD []exifEntry) []byte {
	const headerSize = 8
	ifd0 = append([]exifEntry(nil), ifd0...)
	if exifIFD != nil {
		ifd0 = append(ifd0, longEntry(tagExifIFDPointer, 0))
	}
	if gpsIFD != nil {
		ifd0 = append(ifd0, longEntry(tagGPSInfoPointer, 0))
	}

	exifOff := headerSize + ifdSize(ifd0)
	gpsOff := exifOff
	if exifIFD != nil {
		gpsOff += ifdSize(exifIFD)
	}
	for i := range ifd0 {
		switch ifd0[i].tag {
		case tagExifIFDPointer:
			binary.LittleEndian.PutUint32(ifd0[i].data, exifOff)
		case tagGPSInfoPointer:
			binary.LittleEndian.PutUint32(ifd0[i].data, gpsOff)
		}
	}

	var tiff bytes.Buffer
	tiff.Write([]byte{'I', 'I', 0x2A, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(headerSize))
	tiff.Write(encodeIFD(ifd0, headerSize))
	if exifIFD != nil {
		tiff.Write(encodeIFD(exifIFD, exifOff))
	}
	if gpsIFD != nil {
		tiff.Write(encodeIFD(gpsIFD, gpsOff))
	}

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(2+6+tiff.Len()))
	out.WriteString("Exif\x00\x00")
	out.Write(tiff.Bytes())
	out.Write([]byte{0xFF, 0xD9})
	return out.Bytes()
}
