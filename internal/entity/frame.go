package entity

// Part order of one BCS acquisition message. The controller sends the seven
// parts positionally; nothing on the wire is self-describing.
const (
	PartStart = iota
	PartImage
	PartInfo
	PartH5File
	PartTifFile
	PartParams
	PartEnd

	PartCount = 7
)

// Envelope is the decoded form of one 7-part acquisition message.
type Envelope struct {
	// Info holds the big-endian u32 words of the info block. Only the
	// column count, row count and frame identifier are assigned meaning;
	// the rest are reserved by the controller.
	Info    []uint32
	Cols    int32
	Rows    int32
	FrameID uint32

	// Pixels is the detector image in row-major order, Rows*Cols values.
	Pixels []uint16

	// File name blocks, passed through untouched.
	H5File  []byte
	TifFile []byte

	// ParamsRaw is the undecoded parameter block.
	ParamsRaw []byte
}

// FrameClass is the routing class assigned to a decoded envelope.
type FrameClass int

const (
	ClassValid FrameClass = iota
	ClassFinal
	ClassGarbage
	ClassNull
)

func (c FrameClass) String() string {
	switch c {
	case ClassValid:
		return "valid"
	case ClassFinal:
		return "final"
	case ClassGarbage:
		return "garbage"
	case ClassNull:
		return "null"
	}
	return "unknown"
}

// ImageKind is the semantic role carried in the -image_key parameter.
type ImageKind int

const (
	KindProjection ImageKind = 0
	KindWhite      ImageKind = 1
	KindDark       ImageKind = 2
)

// DType names the pixel datatype announced to the broadcast sinks.
type DType string

const DTypeUint16 DType = "uint16"

// ImageMessage is the wire form published to a broadcast channel.
type ImageMessage struct {
	FrameID   uint32 `json:"frameID"`
	Cols      int32  `json:"cols"`
	Rows      int32  `json:"rows"`
	DType     string `json:"dtype"`
	Timestamp int64  `json:"ts"`
	Payload   []byte `json:"payload"`
}
