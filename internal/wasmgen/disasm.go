package wasmgen

import (
	"fmt"
	"strings"
)

// BinaryToWAT decodes a WASM module produced by Generate back into a
// readable textual form, in the manual bit/byte-decoding switch style
// of `lang/yasm/disasm.go`'s disassembleInstruction — a reader walking
// the byte stream case by case rather than a full structured WAT
// printer. Only the opcode subset Generate itself emits is decoded;
// anything else reports an "unknown" entry rather than failing the
// whole dump, matching disasm.go's own ".word 0x%04x ; unknown"
// fallback.
func BinaryToWAT(b []byte) (string, error) {
	if len(b) < 8 || string(b[0:4]) != "\x00asm" {
		return "", fmt.Errorf("wasmgen: not a WASM binary module")
	}
	pos := 8
	var out strings.Builder
	out.WriteString("(module\n")

	for pos < len(b) {
		if pos >= len(b) {
			break
		}
		id := b[pos]
		pos++
		length, n := readUleb32(b, pos)
		pos += n
		payload := b[pos : pos+int(length)]
		pos += int(length)

		switch id {
		case secType:
			out.WriteString(disasmTypeSection(payload))
		case secFunction:
			out.WriteString(disasmFunctionSection(payload))
		case secExport:
			out.WriteString(disasmExportSection(payload))
		case secCode:
			out.WriteString(disasmCodeSection(payload))
		default:
			fmt.Fprintf(&out, "  ;; unknown section 0x%02x, %d bytes\n", id, length)
		}
	}
	out.WriteString(")\n")
	return out.String(), nil
}

func readUleb32(b []byte, pos int) (uint32, int) {
	var v uint32
	var shift uint
	n := 0
	for {
		c := b[pos+n]
		n++
		v |= uint32(c&0x7F) << shift
		if c&0x80 == 0 {
			break
		}
		shift += 7
	}
	return v, n
}

func valTypeName(vt byte) string {
	switch vt {
	case valI32:
		return "i32"
	case valI64:
		return "i64"
	case valF64:
		return "f64"
	default:
		return fmt.Sprintf("0x%02x", vt)
	}
}

func disasmTypeSection(payload []byte) string {
	var out strings.Builder
	count, n := readUleb32(payload, 0)
	pos := n
	for i := uint32(0); i < count; i++ {
		pos++ // 0x60 form byte
		nparams, n := readUleb32(payload, pos)
		pos += n
		var params []string
		for p := uint32(0); p < nparams; p++ {
			params = append(params, valTypeName(payload[pos]))
			pos++
		}
		nresults, n := readUleb32(payload, pos)
		pos += n
		var results []string
		for r := uint32(0); r < nresults; r++ {
			results = append(results, valTypeName(payload[pos]))
			pos++
		}
		fmt.Fprintf(&out, "  (type %d (func (param %s) (result %s)))\n",
			i, strings.Join(params, " "), strings.Join(results, " "))
	}
	return out.String()
}

func disasmFunctionSection(payload []byte) string {
	var out strings.Builder
	count, n := readUleb32(payload, 0)
	pos := n
	for i := uint32(0); i < count; i++ {
		typeIdx, n := readUleb32(payload, pos)
		pos += n
		fmt.Fprintf(&out, "  (func %d (type %d))\n", i, typeIdx)
	}
	return out.String()
}

func disasmExportSection(payload []byte) string {
	var out strings.Builder
	count, n := readUleb32(payload, 0)
	pos := n
	for i := uint32(0); i < count; i++ {
		nameLen, n := readUleb32(payload, pos)
		pos += n
		name := string(payload[pos : pos+int(nameLen)])
		pos += int(nameLen)
		desc := payload[pos]
		pos++
		idx, n := readUleb32(payload, pos)
		pos += n
		kind := "func"
		if desc != exportDescFunc {
			kind = fmt.Sprintf("0x%02x", desc)
		}
		fmt.Fprintf(&out, "  (export %q (%s %d))\n", name, kind, idx)
		_ = i
	}
	return out.String()
}

// disasmCodeSection walks each function body's instruction stream
// opcode by opcode, printing operands for the fixed set Generate
// emits; anything else falls back to a raw byte note.
func disasmCodeSection(payload []byte) string {
	var out strings.Builder
	count, n := readUleb32(payload, 0)
	pos := n
	for i := uint32(0); i < count; i++ {
		bodyLen, n := readUleb32(payload, pos)
		pos += n
		body := payload[pos : pos+int(bodyLen)]
		pos += int(bodyLen)
		fmt.Fprintf(&out, "  (func %d\n", i)
		out.WriteString(disasmFunctionBody(body))
		out.WriteString("  )\n")
	}
	return out.String()
}

func disasmFunctionBody(body []byte) string {
	var out strings.Builder
	pos := 0
	localRuns, n := readUleb32(body, pos)
	pos += n
	for r := uint32(0); r < localRuns; r++ {
		runLen, n := readUleb32(body, pos)
		pos += n
		vt := body[pos]
		pos++
		fmt.Fprintf(&out, "    (local %d %s)\n", runLen, valTypeName(vt))
	}

	for pos < len(body) {
		op := body[pos]
		pos++
		switch op {
		case opEnd:
			out.WriteString("    end\n")
		case opCall:
			idx, n := readUleb32(body, pos)
			pos += n
			fmt.Fprintf(&out, "    call %d\n", idx)
		case opLocalGet:
			fmt.Fprintf(&out, "    local.get %d\n", body[pos])
			pos++
		case opLocalSet:
			fmt.Fprintf(&out, "    local.set %d\n", body[pos])
			pos++
		case opI32Const:
			fmt.Fprintf(&out, "    i32.const %d\n", int8(body[pos]))
			pos++
		case opI64Const:
			v, n := readSleb64(body, pos)
			pos += n
			fmt.Fprintf(&out, "    i64.const %d\n", v)
		case opF64Const:
			pos += 8
			out.WriteString("    f64.const <bits>\n")
		default:
			fmt.Fprintf(&out, "    ;; unknown opcode 0x%02x\n", op)
		}
	}
	return out.String()
}

func readSleb64(b []byte, pos int) (int64, int) {
	var result int64
	var shift uint
	n := 0
	for {
		c := b[pos+n]
		n++
		result |= int64(c&0x7F) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				result |= -1 << shift
			}
			break
		}
	}
	return result, n
}
