package elastic

import "strconv"

const (
	// MemoryBuffer is the number of events per generation served from the
	// in-memory head before writes spill to the store.
	MemoryBuffer = 10
	// MaxEvents bounds the write index so that zero-padded sequence strings
	// stay byte-comparable in FIFO order.
	MaxEvents = 100_000_000

	seqWidth = 9
	slash    = '/'
)

// queueKey builds the store key for one spilled event:
// {id}/{version}/{seq}.
func queueKey(id string, version int64, seq int64) []byte {
	k := make([]byte, 0, len(id)+2+20+seqWidth)
	k = append(k, id...)
	k = append(k, slash)
	k = strconv.AppendInt(k, version, 10)
	k = append(k, slash)
	return appendSeq(k, seq)
}

// generationPrefix is the cleanup prefix for one retired generation. The
// cleaner appends the trailing separator itself.
func generationPrefix(id string, version int64) string {
	return id + "/" + strconv.FormatInt(version, 10)
}

// appendSeq writes seq zero-filled to the width of MaxEvents.
func appendSeq(dst []byte, seq int64) []byte {
	var buf [seqWidth]byte
	for i := seqWidth - 1; i >= 0; i-- {
		buf[i] = byte('0' + seq%10)
		seq /= 10
	}
	return append(dst, buf[:]...)
}

// prefixUpperBound returns the smallest key greater than every key carrying
// prefix, for iterator bounds and range compaction. Returns nil when no such
// bound exists (all-0xff prefix).
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
