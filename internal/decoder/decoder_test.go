package decoder

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomoRelay/internal/entity"
)

// buildMessage assembles a well-formed 7-part message. Pixels default to a
// sequential ramp of cols*rows values when nil.
func buildMessage(cols, rows, frameID uint32, paramBlock string, pixels []uint16) [][]byte {
	info := make([]byte, 4+5*4)
	binary.BigEndian.PutUint32(info[4:], cols)
	binary.BigEndian.PutUint32(info[8:], rows)
	binary.BigEndian.PutUint32(info[20:], frameID)

	if pixels == nil {
		pixels = make([]uint16, cols*rows)
		for i := range pixels {
			pixels[i] = uint16(i)
		}
	}
	image := make([]byte, 4+len(pixels)*2)
	for i, px := range pixels {
		binary.BigEndian.PutUint16(image[4+i*2:], px)
	}

	return [][]byte{
		[]byte("[start]"),
		image,
		info,
		[]byte("scan.h5"),
		[]byte("scan.tif"),
		[]byte(paramBlock),
		[]byte("[end]"),
	}
}

func TestDecodeRoundTripShape(t *testing.T) {
	parts := buildMessage(4, 3, 123, "-image_key 0\r\n", nil)

	env, err := Decode(parts)
	require.NoError(t, err)

	assert.Equal(t, int32(4), env.Cols)
	assert.Equal(t, int32(3), env.Rows)
	assert.Equal(t, uint32(123), env.FrameID)
	require.Len(t, env.Pixels, 12)
	for i, px := range env.Pixels {
		assert.Equal(t, uint16(i), px, "pixel %d out of row-major order", i)
	}
	assert.Equal(t, []byte("scan.h5"), env.H5File)
	assert.Equal(t, []byte("scan.tif"), env.TifFile)
	assert.Equal(t, []byte("-image_key 0\r\n"), env.ParamsRaw)
}

func TestDecodeDeterministic(t *testing.T) {
	parts := buildMessage(2, 2, 7, "-image_key 1\r\n", nil)

	first, err := Decode(parts)
	require.NoError(t, err)
	second, err := Decode(parts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Classify(first), Classify(second))
}

func TestDecodeTagSuffixesAllowed(t *testing.T) {
	parts := buildMessage(2, 2, 1, "", nil)
	parts[entity.PartStart] = []byte("[start] run 42")
	parts[entity.PartEnd] = []byte("[end] run 42")

	_, err := Decode(parts)
	assert.NoError(t, err)
}

func TestDecodeFramingErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([][]byte) [][]byte
		wantErr error
	}{
		{
			name:    "too few parts",
			mutate:  func(p [][]byte) [][]byte { return p[:6] },
			wantErr: ErrIncompleteMessage,
		},
		{
			name:    "too many parts",
			mutate:  func(p [][]byte) [][]byte { return append(p, []byte("extra")) },
			wantErr: ErrIncompleteMessage,
		},
		{
			name: "bad start tag",
			mutate: func(p [][]byte) [][]byte {
				p[entity.PartStart] = []byte("[begin]")
				return p
			},
			wantErr: ErrBadTags,
		},
		{
			name: "bad end tag",
			mutate: func(p [][]byte) [][]byte {
				p[entity.PartEnd] = []byte("[done]")
				return p
			},
			wantErr: ErrBadTags,
		},
		{
			name: "info shorter than five words",
			mutate: func(p [][]byte) [][]byte {
				p[entity.PartInfo] = p[entity.PartInfo][:4+3*4]
				return p
			},
			wantErr: ErrTruncatedInfo,
		},
		{
			name: "info missing its header",
			mutate: func(p [][]byte) [][]byte {
				p[entity.PartInfo] = []byte{0, 1}
				return p
			},
			wantErr: ErrTruncatedInfo,
		},
		{
			name: "image too short for shape",
			mutate: func(p [][]byte) [][]byte {
				p[entity.PartImage] = p[entity.PartImage][:len(p[entity.PartImage])-2]
				return p
			},
			wantErr: ErrImageSizeMismatch,
		},
		{
			name: "image too long for shape",
			mutate: func(p [][]byte) [][]byte {
				p[entity.PartImage] = append(p[entity.PartImage], 0, 0)
				return p
			},
			wantErr: ErrImageSizeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := tt.mutate(buildMessage(4, 3, 9, "-image_key 0\r\n", nil))
			_, err := Decode(parts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeBadTagsBeatOtherDamage(t *testing.T) {
	// A mistagged message reports BadTags no matter how broken the rest is.
	parts := buildMessage(4, 3, 9, "", nil)
	parts[entity.PartStart] = []byte("noise")
	parts[entity.PartInfo] = []byte{1}
	parts[entity.PartImage] = []byte{2}

	_, err := Decode(parts)
	assert.ErrorIs(t, err, ErrBadTags)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		cols   uint32
		rows   uint32
		params string
		want   entity.FrameClass
	}{
		{
			name: "valid frame", cols: 4, rows: 3,
			params: "-image_key 0\r\n",
			want:   entity.ClassValid,
		},
		{
			name: "writedone is final", cols: 4, rows: 3,
			params: "-writedone\r\n",
			want:   entity.ClassFinal,
		},
		{
			name: "garbage metadata tag", cols: 4, rows: 3,
			params: "meta data from before restart",
			want:   entity.ClassGarbage,
		},
		{
			name: "null boundary 1x2", cols: 2, rows: 1,
			params: "-image_key 0\r\n",
			want:   entity.ClassNull,
		},
		{
			name: "2x2 is not null", cols: 2, rows: 2,
			params: "-image_key 0\r\n",
			want:   entity.ClassValid,
		},
		{
			name: "final wins over null", cols: 1, rows: 1,
			params: "-writedone\r\n",
			want:   entity.ClassFinal,
		},
		{
			name: "garbage wins over null", cols: 1, rows: 1,
			params: "meta data\r\n",
			want:   entity.ClassGarbage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode(buildMessage(tt.cols, tt.rows, 1, tt.params, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, Classify(env))
		})
	}
}
