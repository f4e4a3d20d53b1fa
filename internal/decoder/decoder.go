package decoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"tomoRelay/internal/entity"
)

var (
	ErrIncompleteMessage = errors.New("decoder: wrong part count")
	ErrBadTags           = errors.New("decoder: start/end tag mismatch")
	ErrTruncatedInfo     = errors.New("decoder: info block too short")
	ErrImageSizeMismatch = errors.New("decoder: image size mismatch")
)

var (
	startTag   = []byte("[start]")
	endTag     = []byte("[end]")
	finalTag   = []byte("-writedone")
	garbageTag = []byte("meta data")
)

// Both the info and image blocks carry a 4-byte length header before the
// big-endian payload words.
const headerSize = 4

const (
	idxCols    = 0
	idxRows    = 1
	idxFrameID = 4

	infoMinWords = idxFrameID + 1
)

// Decode validates and unpacks one 7-part acquisition message. It is pure:
// no I/O, no routing. Tags are checked before the info and image blocks are
// touched, so a mistagged message never has its payload interpreted.
func Decode(parts [][]byte) (*entity.Envelope, error) {
	if len(parts) != entity.PartCount {
		return nil, fmt.Errorf("%w: got %d parts, want %d", ErrIncompleteMessage, len(parts), entity.PartCount)
	}
	if !bytes.HasPrefix(parts[entity.PartStart], startTag) || !bytes.HasPrefix(parts[entity.PartEnd], endTag) {
		return nil, ErrBadTags
	}

	info, err := decodeInfo(parts[entity.PartInfo])
	if err != nil {
		return nil, err
	}
	cols, rows := int32(info[idxCols]), int32(info[idxRows])

	pixels, err := decodeImage(parts[entity.PartImage], rows, cols)
	if err != nil {
		return nil, err
	}

	return &entity.Envelope{
		Info:      info,
		Cols:      cols,
		Rows:      rows,
		FrameID:   info[idxFrameID],
		Pixels:    pixels,
		H5File:    parts[entity.PartH5File],
		TifFile:   parts[entity.PartTifFile],
		ParamsRaw: parts[entity.PartParams],
	}, nil
}

func decodeInfo(buf []byte) ([]uint32, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedInfo, len(buf))
	}
	body := buf[headerSize:]
	if len(body)%4 != 0 || len(body)/4 < infoMinWords {
		return nil, fmt.Errorf("%w: %d payload bytes", ErrTruncatedInfo, len(body))
	}
	words := make([]uint32, len(body)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(body[i*4:])
	}
	return words, nil
}

func decodeImage(buf []byte, rows, cols int32) ([]uint16, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageSizeMismatch, len(buf))
	}
	body := buf[headerSize:]
	want := int(rows) * int(cols) * 2
	if len(body) != want {
		return nil, fmt.Errorf("%w: %d payload bytes for %dx%d frame", ErrImageSizeMismatch, len(body), rows, cols)
	}
	pixels := make([]uint16, int(rows)*int(cols))
	for i := range pixels {
		pixels[i] = binary.BigEndian.Uint16(body[i*2:])
	}
	return pixels, nil
}

// Classify assigns the routing class for a decoded envelope. Order matters:
// the control tags are not mutually exclusive with the null-frame shape
// check, and the tag checks must win.
func Classify(env *entity.Envelope) entity.FrameClass {
	switch {
	case bytes.HasPrefix(env.ParamsRaw, finalTag):
		return entity.ClassFinal
	case bytes.HasPrefix(env.ParamsRaw, garbageTag):
		return entity.ClassGarbage
	case env.Rows+env.Cols <= 3:
		return entity.ClassNull
	default:
		return entity.ClassValid
	}
}
