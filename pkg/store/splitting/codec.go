package splitting

import "encoding/binary"

// Physical key tags. These live in a layer-private keyspace below the
// journaling tag (kv.JournalTag) and above the backend: entryTag
// carries every logical key's value (or its split index), chunkTag
// carries the overflow chunks for values too large for the inner
// store. The two tags partition the physical keyspace so a chunk can
// never be mistaken for a logical entry.
const (
	entryTag byte = 0x00
	chunkTag byte = 0x01
)

// Value markers, the first byte of whatever is stored under entryTag.
const (
	directMarker byte = 0x00
	splitMarker  byte = 0x01
)

func entryKey(key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, entryTag)
	out = append(out, key...)
	return out
}

func entryPrefix(prefix []byte) []byte {
	return entryKey(prefix)
}

func chunkPrefix(prefix []byte) []byte {
	out := make([]byte, 0, len(prefix)+1)
	out = append(out, chunkTag)
	out = append(out, prefix...)
	return out
}

func chunkKey(key []byte, index uint32) []byte {
	out := make([]byte, 0, len(key)+5)
	out = append(out, chunkTag)
	out = append(out, key...)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	out = append(out, idx[:]...)
	return out
}

func encodeDirectValue(value []byte) []byte {
	out := make([]byte, 0, len(value)+1)
	out = append(out, directMarker)
	out = append(out, value...)
	return out
}

func encodeSplitIndex(chunkCount uint32, totalLen uint64) []byte {
	out := make([]byte, 13)
	out[0] = splitMarker
	binary.BigEndian.PutUint32(out[1:5], chunkCount)
	binary.BigEndian.PutUint64(out[5:13], totalLen)
	return out
}

func decodeSplitIndex(raw []byte) (chunkCount uint32, totalLen uint64, ok bool) {
	if len(raw) != 13 || raw[0] != splitMarker {
		return 0, 0, false
	}
	return binary.BigEndian.Uint32(raw[1:5]), binary.BigEndian.Uint64(raw[5:13]), true
}
