package protocol

// Checksum computes the TMCL frame checksum: the unsigned 8-bit sum of all
// bytes, modulo 256. Every frame carries it as its final byte, computed over
// the preceding bytes.
func Checksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}
