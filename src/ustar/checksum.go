package ustar

// generateChecksum sums the defined header bytes of b, counting the checksum
// field itself as spaces, and masks the sum to (2 << precision) - 1.
func generateChecksum(b []byte, precision uint) int64 {
	mask := int64(2)<<precision - 1
	if len(b) > headerLen {
		b = b[:headerLen]
	}
	var v int64
	for i, c := range b {
		if i >= chksumPos && i < chksumPos+chksumLen {
			c = ' '
		}
		v = (v + int64(c)) & mask
	}
	return v
}
