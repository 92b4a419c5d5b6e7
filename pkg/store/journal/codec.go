package journal

import (
	"encoding/binary"
	"fmt"

	"github.com/cuemby/chainkv/internal/kverr"
	"github.com/cuemby/chainkv/pkg/kv"
)

// headerVersion is the one and only codec version chainkv has shipped.
// The version byte exists so a future incompatible encoding can be
// introduced without breaking readers of the current one (spec §9's
// Open Question: "a bit in the reserved field is recommended").
const headerVersion uint8 = 1

// headerEncodedSize is the fixed wire size of an encoded header: one
// version byte plus a big-endian uint32 block count.
const headerEncodedSize = 5

// encodeHeader serializes {block_count: blockCount}.
func encodeHeader(blockCount uint32) []byte {
	out := make([]byte, headerEncodedSize)
	out[0] = headerVersion
	binary.BigEndian.PutUint32(out[1:5], blockCount)
	return out
}

// decodeHeader parses a header record written by encodeHeader.
func decodeHeader(raw []byte) (uint32, error) {
	if len(raw) != headerEncodedSize {
		return 0, fmt.Errorf("journal: header wrong size: %w", kverr.ErrMalformedHeader)
	}
	if raw[0] != headerVersion {
		return 0, fmt.Errorf("journal: unsupported header version %d: %w", raw[0], kverr.ErrMalformedHeader)
	}
	return binary.BigEndian.Uint32(raw[1:5]), nil
}

// Op-kind tags for the block codec. These are independent of kv.OpKind
// so the wire format doesn't change if the Go enum's iota values ever
// shift.
const (
	blockOpPut          byte = 1
	blockOpDelete       byte = 2
	blockOpDeletePrefix byte = 3
)

// encodeBlock serializes an ordered list of operations as:
//
//	be32(op_count)
//	per op: op_kind(1) be32(key_len) key be32(value_len) value
//
// For Delete and DeletePrefix, whose payload lives entirely in the key
// field, value_len is written as 0 and no value bytes follow.
func encodeBlock(ops []kv.Operation) []byte {
	size := 4
	for _, op := range ops {
		size += 1 + 4 + len(op.Key)
		if op.Kind == kv.OpPut {
			size += 4 + len(op.Value)
		} else {
			size += 4
		}
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(ops)))
	pos := 4
	for _, op := range ops {
		switch op.Kind {
		case kv.OpPut:
			out[pos] = blockOpPut
		case kv.OpDelete:
			out[pos] = blockOpDelete
		case kv.OpDeletePrefix:
			out[pos] = blockOpDeletePrefix
		}
		pos++
		binary.BigEndian.PutUint32(out[pos:pos+4], uint32(len(op.Key)))
		pos += 4
		copy(out[pos:], op.Key)
		pos += len(op.Key)
		if op.Kind == kv.OpPut {
			binary.BigEndian.PutUint32(out[pos:pos+4], uint32(len(op.Value)))
			pos += 4
			copy(out[pos:], op.Value)
			pos += len(op.Value)
		} else {
			binary.BigEndian.PutUint32(out[pos:pos+4], 0)
			pos += 4
		}
	}
	return out
}

// decodeBlock parses bytes written by encodeBlock, rejecting any
// truncated or malformed encoding with ErrFailureToRetrieveJournalBlock
// per spec §4.4.
func decodeBlock(raw []byte) ([]kv.Operation, error) {
	fail := func(reason string) ([]kv.Operation, error) {
		return nil, fmt.Errorf("journal: %s: %w", reason, kverr.ErrFailureToRetrieveJournalBlock)
	}
	if len(raw) < 4 {
		return fail("block too short for op count")
	}
	count := binary.BigEndian.Uint32(raw[0:4])
	pos := 4
	ops := make([]kv.Operation, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+1+4 > len(raw) {
			return fail("truncated operation header")
		}
		kindByte := raw[pos]
		pos++
		keyLen := int(binary.BigEndian.Uint32(raw[pos : pos+4]))
		pos += 4
		if keyLen < 0 || pos+keyLen > len(raw) {
			return fail("truncated key")
		}
		key := append([]byte{}, raw[pos:pos+keyLen]...)
		pos += keyLen

		if pos+4 > len(raw) {
			return fail("truncated value length")
		}
		valueLen := int(binary.BigEndian.Uint32(raw[pos : pos+4]))
		pos += 4
		if valueLen < 0 || pos+valueLen > len(raw) {
			return fail("truncated value")
		}
		value := raw[pos : pos+valueLen]
		pos += valueLen

		var op kv.Operation
		switch kindByte {
		case blockOpPut:
			op = kv.Operation{Kind: kv.OpPut, Key: key, Value: append([]byte{}, value...)}
		case blockOpDelete:
			op = kv.Operation{Kind: kv.OpDelete, Key: key}
		case blockOpDeletePrefix:
			op = kv.Operation{Kind: kv.OpDeletePrefix, Key: key}
		default:
			return fail("unknown op kind")
		}
		ops = append(ops, op)
	}
	if pos != len(raw) {
		return fail("trailing bytes after last operation")
	}
	return ops, nil
}
