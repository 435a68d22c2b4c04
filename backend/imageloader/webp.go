package imageloader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/riff"
	"golang.org/x/image/webp"
)

var (
	fccWEBP = riff.FourCC{'W', 'E', 'B', 'P'}
	fccVP8X = riff.FourCC{'V', 'P', '8', 'X'}
	fccANMF = riff.FourCC{'A', 'N', 'M', 'F'}
	fccALPH = riff.FourCC{'A', 'L', 'P', 'H'}
	fccVP8  = riff.FourCC{'V', 'P', '8', ' '}
	fccVP8L = riff.FourCC{'V', 'P', '8', 'L'}

	errWebpFrame = errors.New("invalid animated WebP frame")
)

const (
	webpVP8XSize       = 10
	webpFrameHeader    = 16
	webpAnimationFlag  = 1 << 1
	webpAlphaFlag      = 1 << 4
	webpDisposeFlag    = 1 << 0
	webpNoBlendingFlag = 1 << 1
)

type webpChunk struct {
	id   riff.FourCC
	data []byte
}

// isAnimatedWebp tells if data is a WebP file with the animation flag set.
func isAnimatedWebp(data []byte) bool {
	return len(data) >= 21 &&
		string(data[:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP" &&
		string(data[12:16]) == "VP8X" &&
		data[20]&webpAnimationFlag != 0
}

// decodeWebpFrames renders the ANMF frames of an animated WebP on its canvas.
// The frame bitstreams are decoded one by one as still images.
func decodeWebpFrames(data []byte) ([]image.Image, error) {
	formType, chunks, err := riff.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if formType != fccWEBP {
		return nil, fmt.Errorf("unexpected RIFF form %q", formType[:])
	}

	var frames *compositor
	for {
		id, _, chunkData, err := chunks.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		switch id {
		case fccVP8X:
			header := make([]byte, webpVP8XSize)
			if _, err := io.ReadFull(chunkData, header); err != nil {
				return nil, err
			}
			frames = newCompositor(uint24(header[4:7])+1, uint24(header[7:10])+1)
		case fccANMF:
			if frames == nil {
				return nil, fmt.Errorf("%w: frame before canvas", errWebpFrame)
			}
			payload, err := io.ReadAll(chunkData)
			if err != nil {
				return nil, err
			}
			if err := addWebpFrame(frames, payload); err != nil {
				return nil, err
			}
		}
	}

	if frames == nil || len(frames.frames) == 0 {
		return nil, errNoFrames
	}
	return frames.frames, nil
}

func addWebpFrame(frames *compositor, payload []byte) error {
	if len(payload) < webpFrameHeader {
		return fmt.Errorf("%w: short header", errWebpFrame)
	}
	x := uint24(payload[0:3]) * 2
	y := uint24(payload[3:6]) * 2
	width := uint24(payload[6:9]) + 1
	height := uint24(payload[9:12]) + 1
	flags := payload[15]

	frameChunks, err := splitWebpChunks(payload[webpFrameHeader:])
	if err != nil {
		return err
	}
	img, err := webp.Decode(bytes.NewReader(stillWebp(width, height, frameChunks)))
	if err != nil {
		return err
	}

	dispose := disposeNone
	if flags&webpDisposeFlag != 0 {
		dispose = disposeBackground
	}
	frames.add(img, image.Rect(x, y, x+width, y+height), flags&webpNoBlendingFlag == 0, dispose)
	return nil
}

func splitWebpChunks(data []byte) ([]webpChunk, error) {
	var chunks []webpChunk
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, fmt.Errorf("%w: truncated chunk header", errWebpFrame)
		}
		size := int(binary.LittleEndian.Uint32(data[4:8]))
		if size < 0 || size > len(data)-8 {
			return nil, fmt.Errorf("%w: chunk length %d exceeds data", errWebpFrame, size)
		}
		var id riff.FourCC
		copy(id[:], data[:4])
		switch id {
		case fccALPH, fccVP8, fccVP8L:
			chunks = append(chunks, webpChunk{id: id, data: data[8 : 8+size]})
		}

		next := 8 + size + size&1
		if next > len(data) {
			next = len(data)
		}
		data = data[next:]
	}
	return chunks, nil
}

// stillWebp wraps the bitstream chunks of one frame into a file of their own.
func stillWebp(width int, height int, chunks []webpChunk) []byte {
	body := &bytes.Buffer{}
	body.Write(fccWEBP[:])
	for _, c := range chunks {
		if c.id == fccALPH {
			header := make([]byte, webpVP8XSize)
			header[0] = webpAlphaFlag
			putUint24(header[4:7], width-1)
			putUint24(header[7:10], height-1)
			writeWebpChunk(body, fccVP8X, header)
			break
		}
	}
	for _, c := range chunks {
		writeWebpChunk(body, c.id, c.data)
	}

	out := &bytes.Buffer{}
	out.WriteString("RIFF")
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(body.Len()))
	out.Write(size)
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeWebpChunk(w *bytes.Buffer, id riff.FourCC, data []byte) {
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(data)))
	w.Write(id[:])
	w.Write(size)
	w.Write(data)
	if len(data)%2 == 1 {
		w.WriteByte(0)
	}
}

func uint24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func putUint24(b []byte, value int) {
	b[0] = byte(value)
	b[1] = byte(value >> 8)
	b[2] = byte(value >> 16)
}
