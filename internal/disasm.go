package internal

import "fmt"

// DisassemblyLine is one two-byte word of a program listing
type DisassemblyLine struct {
	Address     uint16
	Opcode      uint16
	Instruction string
}

func (l DisassemblyLine) String() string {
	return fmt.Sprintf("%03X  %04X  %s", l.Address, l.Opcode, l.Instruction)
}

// Disassemble lists a program image as if loaded at 0x200. Words that do
// not decode are shown as data, and a trailing odd byte is padded with zero.
func Disassemble(rom []byte) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, (len(rom)+1)/2)
	for i := 0; i < len(rom); i += 2 {
		opcode := uint16(rom[i]) << 8
		if i+1 < len(rom) {
			opcode |= uint16(rom[i+1])
		}
		line := DisassemblyLine{
			Address: uint16(pcStartAddr + i),
			Opcode:  opcode,
		}
		if ins, err := Decode(opcode); err == nil {
			line.Instruction = ins.String()
		} else {
			line.Instruction = fmt.Sprintf("DW 0x%04X", opcode)
		}
		lines = append(lines, line)
	}
	return lines
}
