package glbimport

import (
	"encoding/binary"
	"fmt"
)

// Container is a split GLB file: the decoded JSON chunk plus the raw binary
// chunk. The binary chunk may be nil when no buffer view needs it.
type Container struct {
	Version uint32
	Doc     *Document
	Bin     []byte
}

// ParseContainer validates the GLB header and walks the chunk stream.
// Unrecognized chunk types are skipped by offset advance alone. The declared
// total length in the header is not independently validated.
func ParseContainer(data []byte) (*Container, error) {
	if len(data) < GLB_HEADER_SIZE {
		return nil, &FormatError{Msg: "invalid size"}
	}
	if binary.LittleEndian.Uint32(data[0:4]) != GLB_SIGNATURE {
		return nil, &FormatError{Msg: "invalid magic"}
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != GLB_VERSION {
		warnf("container declares version %d, assuming version %d semantics", version, GLB_VERSION)
	}

	var jsonChunk []byte
	var bin []byte
	haveJSON := false

	offset := GLB_HEADER_SIZE
	for offset < len(data) {
		if offset+GLB_CHUNK_HEADER_SIZE > len(data) {
			return nil, &FormatError{Msg: "chunk exceeds file"}
		}
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		ctype := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		payload := offset + GLB_CHUNK_HEADER_SIZE
		if payload+length > len(data) {
			return nil, &FormatError{Msg: "chunk exceeds file"}
		}

		switch ctype {
		case CHUNK_TYPE_JSON:
			if haveJSON {
				return nil, &FormatError{Msg: "duplicate JSON chunk"}
			}
			jsonChunk = data[payload : payload+length]
			haveJSON = true
		case CHUNK_TYPE_BIN:
			bin = data[payload : payload+length]
		default:
			// skipped by offset advance alone
		}

		offset = payload + length + chunkPadding(length)
	}

	if !haveJSON {
		return nil, &FormatError{Msg: "no JSON chunk"}
	}

	doc, err := DecodeDocument(jsonChunk)
	if err != nil {
		return nil, err
	}
	if err := checkBufferViews(doc, bin); err != nil {
		return nil, err
	}

	return &Container{Version: version, Doc: doc, Bin: bin}, nil
}

// chunkPadding returns the bytes needed to round length up to the chunk
// alignment boundary.
func chunkPadding(length int) int {
	pad := length % GLB_CHUNK_ALIGN
	if pad != 0 {
		pad = GLB_CHUNK_ALIGN - pad
	}
	return pad
}

// checkBufferViews verifies every declared view fits inside the binary
// chunk, so downstream slicing cannot run off the end of a truncated file.
func checkBufferViews(doc *Document, bin []byte) error {
	if len(doc.BufferViews) > 0 && bin == nil {
		return &FormatError{Msg: "missing binary chunk"}
	}
	for i, view := range doc.BufferViews {
		end := uint64(view.ByteOffset) + uint64(view.ByteLength)
		if end > uint64(len(bin)) {
			return &FormatError{Msg: fmt.Sprintf("bufferView %d exceeds binary chunk (%d > %d)", i, end, len(bin))}
		}
	}
	return nil
}
