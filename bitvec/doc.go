// Package bitvec provides the fixed-length binary point type used by the index
// and its Hamming distance.
//
// A BitVector stores its bits in 64-bit words, so Distance is a word-wise XOR
// followed by a population count:
//
//	a, _ := bitvec.Parse("0110")
//	b, _ := bitvec.Parse("0011")
//	d, _ := bitvec.Distance(a, b) // 2
//
// Parse and String convert between a BitVector and its bit-string form, the
// representation used by point files (one '0'/'1' character per dimension).
package bitvec
