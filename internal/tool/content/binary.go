package content

// SampleSize is the number of leading bytes scanned for null bytes, as Git does.
const SampleSize = 8000

// IsBinary reports whether data looks binary by scanning its first SampleSize
// bytes for a null byte. UTF-16 and UTF-32 byte order marks are treated as text.
func IsBinary(data []byte) bool {
	if len(data) >= 2 {
		if (data[0] == 0xFF && data[1] == 0xFE) ||
			(data[0] == 0xFE && data[1] == 0xFF) {
			return false
		}
	}
	if len(data) >= 4 {
		if data[0] == 0x00 && data[1] == 0x00 && data[2] == 0xFE && data[3] == 0xFF {
			return false
		}
	}

	n := min(len(data), SampleSize)
	for i := range n {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
