package cpu

// opcodeEntry is a flat, typed description of one opcode slot -- the
// systems-language replacement spec.md §9 calls for in place of the
// packed-integer tables the JS source used.
type opcodeEntry struct {
	mnemonic         string
	mode             addressingMode
	exec             func(c *CPU, mode addressingMode, addr uint16)
	baseCycles       int
	pageCrossPenalty bool // add 1 cycle if resolveOperand crossed a page
	forceIndexedDummy bool // stores/RMW: always perform the indexed dummy read
	isBranch         bool
	isRMW            bool
}

var opcodeTable [256]opcodeEntry

func op(n string, mode addressingMode, fn func(*CPU, addressingMode, uint16), cycles int, opts ...func(*opcodeEntry)) opcodeEntry {
	e := opcodeEntry{mnemonic: n, mode: mode, exec: fn, baseCycles: cycles}
	for _, o := range opts {
		o(&e)
	}
	return e
}

func pageCross(e *opcodeEntry)    { e.pageCrossPenalty = true }
func forceDummy(e *opcodeEntry)   { e.forceIndexedDummy = true }
func branch(e *opcodeEntry)       { e.isBranch = true }
func rmw(e *opcodeEntry)          { e.isRMW = true; e.forceIndexedDummy = true }

func (c *CPU) setNZ(v byte) {
	c.P.Z = v == 0
	c.P.N = v&0x80 != 0
}

// --- load/store ---

func (c *CPU) lda(mode addressingMode, addr uint16) { c.A = c.read(addr); c.setNZ(c.A) }
func (c *CPU) ldx(mode addressingMode, addr uint16) { c.X = c.read(addr); c.setNZ(c.X) }
func (c *CPU) ldy(mode addressingMode, addr uint16) { c.Y = c.read(addr); c.setNZ(c.Y) }
func (c *CPU) sta(mode addressingMode, addr uint16) { c.write(addr, c.A) }
func (c *CPU) stx(mode addressingMode, addr uint16) { c.write(addr, c.X) }
func (c *CPU) sty(mode addressingMode, addr uint16) { c.write(addr, c.Y) }

func (c *CPU) tax(addressingMode, uint16) { c.X = c.A; c.setNZ(c.X) }
func (c *CPU) tay(addressingMode, uint16) { c.Y = c.A; c.setNZ(c.Y) }
func (c *CPU) txa(addressingMode, uint16) { c.A = c.X; c.setNZ(c.A) }
func (c *CPU) tya(addressingMode, uint16) { c.A = c.Y; c.setNZ(c.A) }
func (c *CPU) tsx(addressingMode, uint16) { c.X = c.S; c.setNZ(c.X) }
func (c *CPU) txs(addressingMode, uint16) { c.S = c.X }

func (c *CPU) pha(addressingMode, uint16) { c.push(c.A) }
func (c *CPU) php(addressingMode, uint16) {
	f := c.P
	f.B = true
	c.push(f.Encode())
}
func (c *CPU) pla(addressingMode, uint16) { c.A = c.pop(); c.setNZ(c.A) }
func (c *CPU) plp(addressingMode, uint16) {
	b := c.pop()
	f := Decode(b)
	f.B = c.P.B // B has no physical register bit; preserve, never observed externally
	c.P = f
}

// --- logic / arithmetic ---

func (c *CPU) and(mode addressingMode, addr uint16) { c.A &= c.read(addr); c.setNZ(c.A) }
func (c *CPU) ora(mode addressingMode, addr uint16) { c.A |= c.read(addr); c.setNZ(c.A) }
func (c *CPU) eor(mode addressingMode, addr uint16) { c.A ^= c.read(addr); c.setNZ(c.A) }

func (c *CPU) bit(mode addressingMode, addr uint16) {
	v := c.read(addr)
	c.P.Z = (c.A & v) == 0
	c.P.V = v&(1<<6) != 0
	c.P.N = v&(1<<7) != 0
}

func (c *CPU) adcValue(v byte) {
	carry := uint16(0)
	if c.P.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := byte(sum)
	c.P.V = (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0
	c.P.C = sum > 0xFF
	c.A = result
	c.setNZ(c.A)
}

func (c *CPU) adc(mode addressingMode, addr uint16) { c.adcValue(c.read(addr)) }
func (c *CPU) sbc(mode addressingMode, addr uint16) { c.adcValue(^c.read(addr)) }

func (c *CPU) cmpValue(reg, v byte) {
	c.P.C = reg >= v
	c.setNZ(reg - v)
}
func (c *CPU) cmp(mode addressingMode, addr uint16) { c.cmpValue(c.A, c.read(addr)) }
func (c *CPU) cpx(mode addressingMode, addr uint16) { c.cmpValue(c.X, c.read(addr)) }
func (c *CPU) cpy(mode addressingMode, addr uint16) { c.cmpValue(c.Y, c.read(addr)) }

func (c *CPU) inc(mode addressingMode, addr uint16) {
	v := c.read(addr)
	c.write(addr, v) // dummy write of original value (RMW pattern)
	v++
	c.write(addr, v)
	c.setNZ(v)
}
func (c *CPU) dec(mode addressingMode, addr uint16) {
	v := c.read(addr)
	c.write(addr, v)
	v--
	c.write(addr, v)
	c.setNZ(v)
}
func (c *CPU) inx(addressingMode, uint16) { c.X++; c.setNZ(c.X) }
func (c *CPU) iny(addressingMode, uint16) { c.Y++; c.setNZ(c.Y) }
func (c *CPU) dex(addressingMode, uint16) { c.X--; c.setNZ(c.X) }
func (c *CPU) dey(addressingMode, uint16) { c.Y--; c.setNZ(c.Y) }

func (c *CPU) asl(mode addressingMode, addr uint16) {
	if mode == modeAccumulator {
		c.P.C = c.A&0x80 != 0
		c.A <<= 1
		c.setNZ(c.A)
		return
	}
	v := c.read(addr)
	c.write(addr, v)
	c.P.C = v&0x80 != 0
	v <<= 1
	c.write(addr, v)
	c.setNZ(v)
}

func (c *CPU) lsr(mode addressingMode, addr uint16) {
	if mode == modeAccumulator {
		c.P.C = c.A&1 != 0
		c.A >>= 1
		c.setNZ(c.A)
		return
	}
	v := c.read(addr)
	c.write(addr, v)
	c.P.C = v&1 != 0
	v >>= 1
	c.write(addr, v)
	c.setNZ(v)
}

func (c *CPU) rol(mode addressingMode, addr uint16) {
	var carryIn byte
	if c.P.C {
		carryIn = 1
	}
	if mode == modeAccumulator {
		c.P.C = c.A&0x80 != 0
		c.A = (c.A << 1) | carryIn
		c.setNZ(c.A)
		return
	}
	v := c.read(addr)
	c.write(addr, v)
	c.P.C = v&0x80 != 0
	v = (v << 1) | carryIn
	c.write(addr, v)
	c.setNZ(v)
}

func (c *CPU) ror(mode addressingMode, addr uint16) {
	var carryIn byte
	if c.P.C {
		carryIn = 0x80
	}
	if mode == modeAccumulator {
		c.P.C = c.A&1 != 0
		c.A = (c.A >> 1) | carryIn
		c.setNZ(c.A)
		return
	}
	v := c.read(addr)
	c.write(addr, v)
	c.P.C = v&1 != 0
	v = (v >> 1) | carryIn
	c.write(addr, v)
	c.setNZ(v)
}

// --- control flow ---

func (c *CPU) jmp(mode addressingMode, addr uint16) { c.PC = addr }

func (c *CPU) jsr(mode addressingMode, addr uint16) {
	// The return address pushed is PC-1. The last real bus cycle of JSR is
	// modeAbsolute's target high-byte fetch (spec.md §4.1); the two push()
	// writes that follow are real bus cycles too and would otherwise leave
	// DataBus holding the pushed low byte instead, so the fetched high byte
	// is snapshotted here and restored after the pushes.
	hi := c.DataBus
	ret := c.PC - 1
	c.push(byte(ret >> 8))
	c.push(byte(ret))
	c.PC = addr
	c.DataBus = hi
}

func (c *CPU) rts(addressingMode, uint16) {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	c.PC = (hi<<8 | lo) + 1
}

func (c *CPU) rti(addressingMode, uint16) {
	b := c.pop()
	c.P = Decode(b)
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	c.PC = hi<<8 | lo
}

func (c *CPU) brkOp(addressingMode, uint16) { c.brk() }

func (c *CPU) branchIf(cond bool, addr uint16) {
	if !cond {
		return
	}
	c.lastBranchTaken = true
	c.lastBranchPageCrossed = (c.PC & 0xFF00) != (addr & 0xFF00)
	c.PC = addr
}

func (c *CPU) bcc(mode addressingMode, addr uint16) { c.branchIf(!c.P.C, addr) }
func (c *CPU) bcs(mode addressingMode, addr uint16) { c.branchIf(c.P.C, addr) }
func (c *CPU) beq(mode addressingMode, addr uint16) { c.branchIf(c.P.Z, addr) }
func (c *CPU) bne(mode addressingMode, addr uint16) { c.branchIf(!c.P.Z, addr) }
func (c *CPU) bmi(mode addressingMode, addr uint16) { c.branchIf(c.P.N, addr) }
func (c *CPU) bpl(mode addressingMode, addr uint16) { c.branchIf(!c.P.N, addr) }
func (c *CPU) bvc(mode addressingMode, addr uint16) { c.branchIf(!c.P.V, addr) }
func (c *CPU) bvs(mode addressingMode, addr uint16) { c.branchIf(c.P.V, addr) }

func (c *CPU) clc(addressingMode, uint16) { c.P.C = false }
func (c *CPU) sec(addressingMode, uint16) { c.P.C = true }
func (c *CPU) cli(addressingMode, uint16) { c.P.I = false }
func (c *CPU) sei(addressingMode, uint16) { c.P.I = true }
func (c *CPU) clv(addressingMode, uint16) { c.P.V = false }
func (c *CPU) cld(addressingMode, uint16) { c.P.D = false } // decimal mode is unused on NES but the flag bit is real
func (c *CPU) sed(addressingMode, uint16) { c.P.D = true }

func (c *CPU) nop(mode addressingMode, addr uint16) {
	if mode != modeImplied && mode != modeAccumulator {
		c.read(addr) // unofficial NOPs with an addressing mode still read their operand
	}
}

func init() {
	opcodeTable = buildOpcodeTable()
}

func buildOpcodeTable() [256]opcodeEntry {
	var t [256]opcodeEntry

	t[0x00] = op("BRK", modeImplied, (*CPU).brkOp, 7)
	t[0x01] = op("ORA", modeIndirectX, (*CPU).ora, 6)
	t[0x05] = op("ORA", modeZeroPage, (*CPU).ora, 3)
	t[0x06] = op("ASL", modeZeroPage, (*CPU).asl, 5, rmw)
	t[0x08] = op("PHP", modeImplied, (*CPU).php, 3)
	t[0x09] = op("ORA", modeImmediate, (*CPU).ora, 2)
	t[0x0A] = op("ASL", modeAccumulator, (*CPU).asl, 2)
	t[0x0D] = op("ORA", modeAbsolute, (*CPU).ora, 4)
	t[0x0E] = op("ASL", modeAbsolute, (*CPU).asl, 6, rmw)
	t[0x10] = op("BPL", modeRelative, (*CPU).bpl, 2, branch)
	t[0x11] = op("ORA", modeIndirectY, (*CPU).ora, 5, pageCross)
	t[0x15] = op("ORA", modeZeroPageX, (*CPU).ora, 4)
	t[0x16] = op("ASL", modeZeroPageX, (*CPU).asl, 6, rmw)
	t[0x18] = op("CLC", modeImplied, (*CPU).clc, 2)
	t[0x19] = op("ORA", modeAbsoluteY, (*CPU).ora, 4, pageCross)
	t[0x1D] = op("ORA", modeAbsoluteX, (*CPU).ora, 4, pageCross)
	t[0x1E] = op("ASL", modeAbsoluteX, (*CPU).asl, 7, rmw)

	t[0x20] = op("JSR", modeAbsolute, (*CPU).jsr, 6)
	t[0x21] = op("AND", modeIndirectX, (*CPU).and, 6)
	t[0x24] = op("BIT", modeZeroPage, (*CPU).bit, 3)
	t[0x25] = op("AND", modeZeroPage, (*CPU).and, 3)
	t[0x26] = op("ROL", modeZeroPage, (*CPU).rol, 5, rmw)
	t[0x28] = op("PLP", modeImplied, (*CPU).plp, 4)
	t[0x29] = op("AND", modeImmediate, (*CPU).and, 2)
	t[0x2A] = op("ROL", modeAccumulator, (*CPU).rol, 2)
	t[0x2C] = op("BIT", modeAbsolute, (*CPU).bit, 4)
	t[0x2D] = op("AND", modeAbsolute, (*CPU).and, 4)
	t[0x2E] = op("ROL", modeAbsolute, (*CPU).rol, 6, rmw)
	t[0x30] = op("BMI", modeRelative, (*CPU).bmi, 2, branch)
	t[0x31] = op("AND", modeIndirectY, (*CPU).and, 5, pageCross)
	t[0x35] = op("AND", modeZeroPageX, (*CPU).and, 4)
	t[0x36] = op("ROL", modeZeroPageX, (*CPU).rol, 6, rmw)
	t[0x38] = op("SEC", modeImplied, (*CPU).sec, 2)
	t[0x39] = op("AND", modeAbsoluteY, (*CPU).and, 4, pageCross)
	t[0x3D] = op("AND", modeAbsoluteX, (*CPU).and, 4, pageCross)
	t[0x3E] = op("ROL", modeAbsoluteX, (*CPU).rol, 7, rmw)

	t[0x40] = op("RTI", modeImplied, (*CPU).rti, 6)
	t[0x41] = op("EOR", modeIndirectX, (*CPU).eor, 6)
	t[0x45] = op("EOR", modeZeroPage, (*CPU).eor, 3)
	t[0x46] = op("LSR", modeZeroPage, (*CPU).lsr, 5, rmw)
	t[0x48] = op("PHA", modeImplied, (*CPU).pha, 3)
	t[0x49] = op("EOR", modeImmediate, (*CPU).eor, 2)
	t[0x4A] = op("LSR", modeAccumulator, (*CPU).lsr, 2)
	t[0x4C] = op("JMP", modeAbsolute, (*CPU).jmp, 3)
	t[0x4D] = op("EOR", modeAbsolute, (*CPU).eor, 4)
	t[0x4E] = op("LSR", modeAbsolute, (*CPU).lsr, 6, rmw)
	t[0x50] = op("BVC", modeRelative, (*CPU).bvc, 2, branch)
	t[0x51] = op("EOR", modeIndirectY, (*CPU).eor, 5, pageCross)
	t[0x55] = op("EOR", modeZeroPageX, (*CPU).eor, 4)
	t[0x56] = op("LSR", modeZeroPageX, (*CPU).lsr, 6, rmw)
	t[0x58] = op("CLI", modeImplied, (*CPU).cli, 2)
	t[0x59] = op("EOR", modeAbsoluteY, (*CPU).eor, 4, pageCross)
	t[0x5D] = op("EOR", modeAbsoluteX, (*CPU).eor, 4, pageCross)
	t[0x5E] = op("LSR", modeAbsoluteX, (*CPU).lsr, 7, rmw)

	t[0x60] = op("RTS", modeImplied, (*CPU).rts, 6)
	t[0x61] = op("ADC", modeIndirectX, (*CPU).adc, 6)
	t[0x65] = op("ADC", modeZeroPage, (*CPU).adc, 3)
	t[0x66] = op("ROR", modeZeroPage, (*CPU).ror, 5, rmw)
	t[0x68] = op("PLA", modeImplied, (*CPU).pla, 4)
	t[0x69] = op("ADC", modeImmediate, (*CPU).adc, 2)
	t[0x6A] = op("ROR", modeAccumulator, (*CPU).ror, 2)
	t[0x6C] = op("JMP", modeIndirect, (*CPU).jmp, 5)
	t[0x6D] = op("ADC", modeAbsolute, (*CPU).adc, 4)
	t[0x6E] = op("ROR", modeAbsolute, (*CPU).ror, 6, rmw)
	t[0x70] = op("BVS", modeRelative, (*CPU).bvs, 2, branch)
	t[0x71] = op("ADC", modeIndirectY, (*CPU).adc, 5, pageCross)
	t[0x75] = op("ADC", modeZeroPageX, (*CPU).adc, 4)
	t[0x76] = op("ROR", modeZeroPageX, (*CPU).ror, 6, rmw)
	t[0x78] = op("SEI", modeImplied, (*CPU).sei, 2)
	t[0x79] = op("ADC", modeAbsoluteY, (*CPU).adc, 4, pageCross)
	t[0x7D] = op("ADC", modeAbsoluteX, (*CPU).adc, 4, pageCross)
	t[0x7E] = op("ROR", modeAbsoluteX, (*CPU).ror, 7, rmw)

	t[0x81] = op("STA", modeIndirectX, (*CPU).sta, 6)
	t[0x84] = op("STY", modeZeroPage, (*CPU).sty, 3)
	t[0x85] = op("STA", modeZeroPage, (*CPU).sta, 3)
	t[0x86] = op("STX", modeZeroPage, (*CPU).stx, 3)
	t[0x88] = op("DEY", modeImplied, (*CPU).dey, 2)
	t[0x8A] = op("TXA", modeImplied, (*CPU).txa, 2)
	t[0x8C] = op("STY", modeAbsolute, (*CPU).sty, 4)
	t[0x8D] = op("STA", modeAbsolute, (*CPU).sta, 4)
	t[0x8E] = op("STX", modeAbsolute, (*CPU).stx, 4)
	t[0x90] = op("BCC", modeRelative, (*CPU).bcc, 2, branch)
	t[0x91] = op("STA", modeIndirectY, (*CPU).sta, 6, forceDummy)
	t[0x94] = op("STY", modeZeroPageX, (*CPU).sty, 4)
	t[0x95] = op("STA", modeZeroPageX, (*CPU).sta, 4)
	t[0x96] = op("STX", modeZeroPageY, (*CPU).stx, 4)
	t[0x98] = op("TYA", modeImplied, (*CPU).tya, 2)
	t[0x99] = op("STA", modeAbsoluteY, (*CPU).sta, 5, forceDummy)
	t[0x9A] = op("TXS", modeImplied, (*CPU).txs, 2)
	t[0x9D] = op("STA", modeAbsoluteX, (*CPU).sta, 5, forceDummy)

	t[0xA0] = op("LDY", modeImmediate, (*CPU).ldy, 2)
	t[0xA1] = op("LDA", modeIndirectX, (*CPU).lda, 6)
	t[0xA2] = op("LDX", modeImmediate, (*CPU).ldx, 2)
	t[0xA4] = op("LDY", modeZeroPage, (*CPU).ldy, 3)
	t[0xA5] = op("LDA", modeZeroPage, (*CPU).lda, 3)
	t[0xA6] = op("LDX", modeZeroPage, (*CPU).ldx, 3)
	t[0xA8] = op("TAY", modeImplied, (*CPU).tay, 2)
	t[0xA9] = op("LDA", modeImmediate, (*CPU).lda, 2)
	t[0xAA] = op("TAX", modeImplied, (*CPU).tax, 2)
	t[0xAC] = op("LDY", modeAbsolute, (*CPU).ldy, 4)
	t[0xAD] = op("LDA", modeAbsolute, (*CPU).lda, 4)
	t[0xAE] = op("LDX", modeAbsolute, (*CPU).ldx, 4)
	t[0xB0] = op("BCS", modeRelative, (*CPU).bcs, 2, branch)
	t[0xB1] = op("LDA", modeIndirectY, (*CPU).lda, 5, pageCross)
	t[0xB4] = op("LDY", modeZeroPageX, (*CPU).ldy, 4)
	t[0xB5] = op("LDA", modeZeroPageX, (*CPU).lda, 4)
	t[0xB6] = op("LDX", modeZeroPageY, (*CPU).ldx, 4)
	t[0xB8] = op("CLV", modeImplied, (*CPU).clv, 2)
	t[0xB9] = op("LDA", modeAbsoluteY, (*CPU).lda, 4, pageCross)
	t[0xBA] = op("TSX", modeImplied, (*CPU).tsx, 2)
	t[0xBC] = op("LDY", modeAbsoluteX, (*CPU).ldy, 4, pageCross)
	t[0xBD] = op("LDA", modeAbsoluteX, (*CPU).lda, 4, pageCross)
	t[0xBE] = op("LDX", modeAbsoluteY, (*CPU).ldx, 4, pageCross)

	t[0xC0] = op("CPY", modeImmediate, (*CPU).cpy, 2)
	t[0xC1] = op("CMP", modeIndirectX, (*CPU).cmp, 6)
	t[0xC4] = op("CPY", modeZeroPage, (*CPU).cpy, 3)
	t[0xC5] = op("CMP", modeZeroPage, (*CPU).cmp, 3)
	t[0xC6] = op("DEC", modeZeroPage, (*CPU).dec, 5, rmw)
	t[0xC8] = op("INY", modeImplied, (*CPU).iny, 2)
	t[0xC9] = op("CMP", modeImmediate, (*CPU).cmp, 2)
	t[0xCA] = op("DEX", modeImplied, (*CPU).dex, 2)
	t[0xCC] = op("CPY", modeAbsolute, (*CPU).cpy, 4)
	t[0xCD] = op("CMP", modeAbsolute, (*CPU).cmp, 4)
	t[0xCE] = op("DEC", modeAbsolute, (*CPU).dec, 6, rmw)
	t[0xD0] = op("BNE", modeRelative, (*CPU).bne, 2, branch)
	t[0xD1] = op("CMP", modeIndirectY, (*CPU).cmp, 5, pageCross)
	t[0xD5] = op("CMP", modeZeroPageX, (*CPU).cmp, 4)
	t[0xD6] = op("DEC", modeZeroPageX, (*CPU).dec, 6, rmw)
	t[0xD8] = op("CLD", modeImplied, (*CPU).cld, 2)
	t[0xD9] = op("CMP", modeAbsoluteY, (*CPU).cmp, 4, pageCross)
	t[0xDD] = op("CMP", modeAbsoluteX, (*CPU).cmp, 4, pageCross)
	t[0xDE] = op("DEC", modeAbsoluteX, (*CPU).dec, 7, rmw)

	t[0xE0] = op("CPX", modeImmediate, (*CPU).cpx, 2)
	t[0xE1] = op("SBC", modeIndirectX, (*CPU).sbc, 6)
	t[0xE4] = op("CPX", modeZeroPage, (*CPU).cpx, 3)
	t[0xE5] = op("SBC", modeZeroPage, (*CPU).sbc, 3)
	t[0xE6] = op("INC", modeZeroPage, (*CPU).inc, 5, rmw)
	t[0xE8] = op("INX", modeImplied, (*CPU).inx, 2)
	t[0xE9] = op("SBC", modeImmediate, (*CPU).sbc, 2)
	t[0xEA] = op("NOP", modeImplied, (*CPU).nop, 2)
	t[0xEC] = op("CPX", modeAbsolute, (*CPU).cpx, 4)
	t[0xED] = op("SBC", modeAbsolute, (*CPU).sbc, 4)
	t[0xEE] = op("INC", modeAbsolute, (*CPU).inc, 6, rmw)
	t[0xF0] = op("BEQ", modeRelative, (*CPU).beq, 2, branch)
	t[0xF1] = op("SBC", modeIndirectY, (*CPU).sbc, 5, pageCross)
	t[0xF5] = op("SBC", modeZeroPageX, (*CPU).sbc, 4)
	t[0xF6] = op("INC", modeZeroPageX, (*CPU).inc, 6, rmw)
	t[0xF8] = op("SED", modeImplied, (*CPU).sed, 2)
	t[0xF9] = op("SBC", modeAbsoluteY, (*CPU).sbc, 4, pageCross)
	t[0xFD] = op("SBC", modeAbsoluteX, (*CPU).sbc, 4, pageCross)
	t[0xFE] = op("INC", modeAbsoluteX, (*CPU).inc, 7, rmw)

	fillUnofficial(&t)
	return t
}
