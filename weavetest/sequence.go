package weavetest

import "encoding/binary"

// SequenceID returns the binary representation of a sequence value, as used
// by orm.Sequence to build keys.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
