package journal

import (
	"encoding/binary"

	"github.com/cuemby/chainkv/pkg/kv"
)

// headerKey is the fixed key [JOURNAL_TAG, KeyTagJournalHeader, 0u32].
func headerKey() []byte {
	return []byte{kv.JournalTag, kv.KeyTagJournalHeader, 0, 0, 0, 0}
}

// blockKey is [JOURNAL_TAG, KeyTagJournalEntry, idx_be_u32] per spec §6.
func blockKey(index uint32) []byte {
	out := make([]byte, 6)
	out[0] = kv.JournalTag
	out[1] = kv.KeyTagJournalEntry
	binary.BigEndian.PutUint32(out[2:6], index)
	return out
}

// blockKeyEncodedSize is the fixed byte length of any blockKey.
const blockKeyEncodedSize = 6

// headerKeyEncodedSize is the fixed byte length of headerKey.
const headerKeyEncodedSize = 6
