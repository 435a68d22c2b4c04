// Package pngtext reads and writes the textual metadata chunks of PNG files
// (tEXt, zTXt, iTXt) and extracts the eXIf chunk.
package pngtext

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"vincit.fi/image-metadata/common/logger"
)

var (
	ErrNotPNG          = errors.New("not a PNG stream")
	ErrCorruptChunk    = errors.New("corrupt PNG chunk")
	ErrInvalidKeyword  = errors.New("invalid text chunk keyword")
	ErrCompressionMode = errors.New("unsupported compression")
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

const (
	chunkIHDR = "IHDR"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
	chunkTEXT = "tEXt"
	chunkZTXT = "zTXt"
	chunkITXT = "iTXt"
	chunkEXIF = "eXIf"
	chunkACTL = "acTL"

	compressionDeflate = 0

	// maxIDATSize bounds the image data written per chunk.
	maxIDATSize = 1 << 15
)

type chunk struct {
	chunkType string
	data      []byte
}

// Info is the metadata found in a PNG stream.
type Info struct {
	Text map[string]string
	Exif []byte
}

// Entry is a single text chunk to write.
type Entry struct {
	Key   string
	Value string
}

func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

func readChunks(data []byte) ([]chunk, error) {
	if !IsPNG(data) {
		return nil, ErrNotPNG
	}

	var chunks []chunk
	reader := bytes.NewReader(data[len(pngSignature):])
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(reader, header); err != nil {
			if err == io.EOF {
				return chunks, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrCorruptChunk, err)
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunkType := string(header[4:8])
		if int64(length) > int64(reader.Len()) {
			return nil, fmt.Errorf("%w: %s length %d exceeds data", ErrCorruptChunk, chunkType, length)
		}

		chunkData := make([]byte, length)
		if _, err := io.ReadFull(reader, chunkData); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCorruptChunk, err)
		}
		crc := make([]byte, 4)
		if _, err := io.ReadFull(reader, crc); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCorruptChunk, err)
		}
		if binary.BigEndian.Uint32(crc) != chunkCRC(header[4:8], chunkData) {
			return nil, fmt.Errorf("%w: %s checksum mismatch", ErrCorruptChunk, chunkType)
		}

		chunks = append(chunks, chunk{chunkType: chunkType, data: chunkData})
		if chunkType == chunkIEND {
			return chunks, nil
		}
	}
}

// IsAnimated tells if data is an animated PNG, that is it has an acTL chunk
// before the image data.
func IsAnimated(data []byte) bool {
	chunks, err := readChunks(data)
	if err != nil {
		return false
	}
	for _, c := range chunks {
		switch c.chunkType {
		case chunkACTL:
			return true
		case chunkIDAT:
			return false
		}
	}
	return false
}

func chunkCRC(chunkType []byte, data []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write(chunkType)
	crc.Write(data)
	return crc.Sum32()
}

// ReadInfo collects the text chunks and the eXIf payload of a PNG stream.
// Later chunks with the same keyword replace earlier ones.
func ReadInfo(data []byte) (*Info, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}

	info := &Info{Text: map[string]string{}}
	for _, c := range chunks {
		var key, value string
		var err error
		switch c.chunkType {
		case chunkTEXT:
			key, value, err = parseText(c.data)
		case chunkZTXT:
			key, value, err = parseCompressedText(c.data)
		case chunkITXT:
			key, value, err = parseInternationalText(c.data)
		case chunkEXIF:
			info.Exif = c.data
			continue
		default:
			continue
		}
		if err != nil {
			logger.Warn.Printf("Skipping unreadable %s chunk: %s", c.chunkType, err)
			continue
		}
		info.Text[key] = value
	}
	return info, nil
}

func splitKeyword(data []byte) (string, []byte, error) {
	separator := bytes.IndexByte(data, 0)
	if separator < 1 {
		return "", nil, ErrInvalidKeyword
	}
	key, err := decodeLatin1(data[:separator])
	return key, data[separator+1:], err
}

func parseText(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	value, err := decodeLatin1(rest)
	return key, value, err
}

func parseCompressedText(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	if len(rest) < 1 || rest[0] != compressionDeflate {
		return "", "", ErrCompressionMode
	}
	inflated, err := inflate(rest[1:])
	if err != nil {
		return "", "", err
	}
	value, err := decodeLatin1(inflated)
	return key, value, err
}

func parseInternationalText(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	if len(rest) < 2 {
		return "", "", ErrCorruptChunk
	}
	compressed := rest[0] == 1
	if compressed && rest[1] != compressionDeflate {
		return "", "", ErrCompressionMode
	}
	rest = rest[2:]

	// Language tag and translated keyword are not kept
	for i := 0; i < 2; i++ {
		separator := bytes.IndexByte(rest, 0)
		if separator < 0 {
			return "", "", ErrCorruptChunk
		}
		rest = rest[separator+1:]
	}

	if compressed {
		if rest, err = inflate(rest); err != nil {
			return "", "", err
		}
	}
	return key, string(rest), nil
}

func inflate(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func deflate(data []byte, level int) ([]byte, error) {
	buffer := &bytes.Buffer{}
	writer, err := zlib.NewWriterLevel(buffer, level)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func decodeLatin1(data []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(decoded), err
}

func encodeLatin1(value string) ([]byte, error) {
	return charmap.ISO8859_1.NewEncoder().Bytes([]byte(value))
}

// textChunk builds a tEXt chunk when the value is Latin-1 and falls back to an
// uncompressed iTXt chunk otherwise.
func textChunk(entry Entry) (chunk, error) {
	if entry.Key == "" || strings.IndexByte(entry.Key, 0) >= 0 {
		return chunk{}, fmt.Errorf("%w: '%s'", ErrInvalidKeyword, entry.Key)
	}
	key, err := encodeLatin1(entry.Key)
	if err != nil {
		return chunk{}, fmt.Errorf("%w: '%s' is not Latin-1", ErrInvalidKeyword, entry.Key)
	}

	data := &bytes.Buffer{}
	data.Write(key)
	data.WriteByte(0)
	if value, err := encodeLatin1(entry.Value); err == nil {
		data.Write(value)
		return chunk{chunkType: chunkTEXT, data: data.Bytes()}, nil
	}

	// flag, method, empty language tag and translated keyword
	data.Write([]byte{0, compressionDeflate, 0, 0})
	data.WriteString(entry.Value)
	return chunk{chunkType: chunkITXT, data: data.Bytes()}, nil
}

func writeChunk(w io.Writer, c chunk) error {
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[:4], uint32(len(c.data)))
	copy(header[4:], c.chunkType)
	crc := make([]byte, 4)
	binary.BigEndian.PutUint32(crc, chunkCRC(header[4:], c.data))

	for _, part := range [][]byte{header, c.data, crc} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes img as PNG with one text chunk per entry placed right after
// the header. Image data is deflated with the given zlib level (0-9) and split
// into IDAT chunks of at most maxIDATSize bytes.
func Encode(w io.Writer, img image.Image, entries []Entry, level int) error {
	if level < zlib.NoCompression || level > zlib.BestCompression {
		return fmt.Errorf("%w: level %d", ErrCompressionMode, level)
	}

	textChunks := make([]chunk, 0, len(entries))
	for _, entry := range entries {
		c, err := textChunk(entry)
		if err != nil {
			return err
		}
		textChunks = append(textChunks, c)
	}

	encoded := &bytes.Buffer{}
	encoder := &png.Encoder{CompressionLevel: png.NoCompression}
	if err := encoder.Encode(encoded, img); err != nil {
		return err
	}
	chunks, err := readChunks(encoded.Bytes())
	if err != nil {
		return err
	}

	imageData := &bytes.Buffer{}
	for _, c := range chunks {
		if c.chunkType == chunkIDAT {
			imageData.Write(c.data)
		}
	}
	raw, err := inflate(imageData.Bytes())
	if err != nil {
		return err
	}
	compressed, err := deflate(raw, level)
	if err != nil {
		return err
	}

	if _, err := w.Write(pngSignature); err != nil {
		return err
	}
	idatWritten := false
	for _, c := range chunks {
		switch c.chunkType {
		case chunkIHDR:
			if err := writeChunk(w, c); err != nil {
				return err
			}
			for _, text := range textChunks {
				if err := writeChunk(w, text); err != nil {
					return err
				}
			}
		case chunkIDAT:
			if idatWritten {
				continue
			}
			idatWritten = true
			for start := 0; start < len(compressed); start += maxIDATSize {
				end := start + maxIDATSize
				if end > len(compressed) {
					end = len(compressed)
				}
				if err := writeChunk(w, chunk{chunkType: chunkIDAT, data: compressed[start:end]}); err != nil {
					return err
				}
			}
		default:
			if err := writeChunk(w, c); err != nil {
				return err
			}
		}
	}
	return nil
}
