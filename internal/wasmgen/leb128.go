package wasmgen

// LEB128 varint encoding for the WASM binary format. No ecosystem WASM
// encoder exists anywhere in the example corpus (the source's own
// wasm.rs leans on the `wasm-encoder` crate, which has no Go
// counterpart among this module's dependencies), so the section/LEB
// encoding below is hand-rolled against the published WebAssembly
// binary format, in the same manual byte-twiddling style as
// `lang/yasm/output.go`'s little-endian header construction.

// appendUleb32 appends v as an unsigned LEB128 varint.
func appendUleb32(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			return buf
		}
	}
}

// appendSleb64 appends v as a signed LEB128 varint.
func appendSleb64(buf []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

// appendName appends a WASM "name": a uleb32 byte length followed by the
// UTF-8 bytes.
func appendName(buf []byte, name string) []byte {
	buf = appendUleb32(buf, uint32(len(name)))
	return append(buf, name...)
}

// withLength prepends payload's length, as a uleb32, to payload itself —
// every WASM section and every function body in the code section is
// framed this way.
func withLength(payload []byte) []byte {
	out := appendUleb32(nil, uint32(len(payload)))
	return append(out, payload...)
}
