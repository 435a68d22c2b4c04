package imageloader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"io"

	exiftiff "github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/image/tiff"
	"vincit.fi/image-metadata/common/logger"
)

const tiffHeaderSize = 8

var errNotTiff = errors.New("not a TIFF stream")

// decodeTiffPages decodes every page of a TIFF file. The decoder reads the
// first directory only, so every further page is decoded from a copy whose
// header points at that page's directory.
func decodeTiffPages(data []byte) ([]image.Image, error) {
	order, offsets, err := tiffPageOffsets(data)
	if err != nil {
		return nil, err
	}

	pages := make([]image.Image, 0, len(offsets))
	for i, offset := range offsets {
		page := data
		if i > 0 {
			page = append([]byte{}, data...)
			order.PutUint32(page[4:tiffHeaderSize], offset)
		}
		img, err := tiff.Decode(bytes.NewReader(page))
		if err != nil {
			if i == 0 {
				return nil, err
			}
			logger.Warn.Printf("Skipping unreadable TIFF page %d: %s", i, err)
			continue
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// tiffPageOffsets follows the directory chain from the header. A broken link
// ends the chain.
func tiffPageOffsets(data []byte) (binary.ByteOrder, []uint32, error) {
	if len(data) < tiffHeaderSize {
		return nil, nil, errNotTiff
	}
	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, nil, errNotTiff
	}

	reader := bytes.NewReader(data)
	seen := map[uint32]bool{}
	var offsets []uint32
	for offset := order.Uint32(data[4:tiffHeaderSize]); offset != 0 && !seen[offset]; {
		seen[offset] = true
		offsets = append(offsets, offset)

		if _, err := reader.Seek(int64(offset), io.SeekStart); err != nil {
			break
		}
		_, next, err := exiftiff.DecodeDir(reader, order)
		if err != nil {
			logger.Debug.Printf("TIFF directory chain ends at page %d: %s", len(offsets), err)
			break
		}
		offset = uint32(next)
	}
	return order, offsets, nil
}
