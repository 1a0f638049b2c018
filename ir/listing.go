package ir

import (
	"fmt"
	"strings"
)

// Listing renders an instruction stream one instruction per line. Label
// markers are printed flush left, everything else indented with its offset.
func Listing(insns []*Insn) string {
	var sb strings.Builder
	for i, in := range insns {
		if in.Op == OpLabel {
			fmt.Fprintf(&sb, "%s\n", in)
			continue
		}
		fmt.Fprintf(&sb, "%04d    %s\n", i, in)
	}
	return sb.String()
}

// Opcodes extracts the opcode sequence of a stream, skipping label markers.
func Opcodes(insns []*Insn) []Opcode {
	ops := make([]Opcode, 0, len(insns))
	for _, in := range insns {
		if in.Op == OpLabel {
			continue
		}
		ops = append(ops, in.Op)
	}
	return ops
}
