package cpu

type addressingMode int

const (
	modeImplied addressingMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeRelative
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndirectX
	modeIndirectY
)

// resolveOperand computes the effective address for mode and performs the
// dummy reads spec.md §4.1's addressing-mode table documents. It returns
// the effective address (meaningless for modeImplied/modeAccumulator) and
// whether an indexed access crossed a page boundary.
//
// Dummy reads are real bus cycles: they flow through c.read, which updates
// DataBus and InstrBusCycles exactly like a "real" read, so reading
// $2002/$4015 as a dummy read has the documented side effects.
func (c *CPU) resolveOperand(mode addressingMode, entry opcodeEntry) (addr uint16, pageCrossed bool) {
	switch mode {
	case modeImplied, modeAccumulator:
		return 0, false

	case modeImmediate:
		addr = c.PC
		c.PC++
		return addr, false

	case modeZeroPage:
		addr = uint16(c.read(c.PC))
		c.PC++
		return addr, false

	case modeZeroPageX:
		base := c.read(c.PC)
		c.PC++
		c.read(uint16(base)) // always dummy-reads the unindexed ZP address
		return uint16(base + c.X), false

	case modeZeroPageY:
		base := c.read(c.PC)
		c.PC++
		c.read(uint16(base))
		return uint16(base + c.Y), false

	case modeRelative:
		offset := c.read(c.PC)
		c.PC++
		target := c.PC + uint16(int8(offset))
		return target, (target&0xFF00 != c.PC&0xFF00)

	case modeAbsolute:
		addr = c.read16(c.PC)
		c.PC += 2
		return addr, false

	case modeAbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		effective := base + uint16(c.X)
		crossed := (base & 0xFF00) != (effective & 0xFF00)
		if crossed || entry.forceIndexedDummy {
			wrong := (base & 0xFF00) | (effective & 0x00FF)
			c.read(wrong)
		}
		return effective, crossed

	case modeAbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		effective := base + uint16(c.Y)
		crossed := (base & 0xFF00) != (effective & 0xFF00)
		if crossed || entry.forceIndexedDummy {
			wrong := (base & 0xFF00) | (effective & 0x00FF)
			c.read(wrong)
		}
		return effective, crossed

	case modeIndirect:
		ptr := c.read16(c.PC)
		c.PC += 2
		// 6502 page-wrap bug: high byte wraps within the same page.
		lo := c.read(ptr)
		hi := c.read((ptr & 0xFF00) | ((ptr + 1) & 0x00FF))
		return uint16(hi)<<8 | uint16(lo), false

	case modeIndirectX:
		zp := c.read(c.PC)
		c.PC++
		c.read(uint16(zp)) // always dummy-reads the pre-indexed ZP pointer
		ptr := zp + c.X
		lo := c.read(uint16(ptr))
		hi := c.read(uint16(ptr + 1))
		return uint16(hi)<<8 | uint16(lo), false

	case modeIndirectY:
		zp := c.read(c.PC)
		c.PC++
		lo := c.read(uint16(zp))
		hi := c.read(uint16(zp + 1))
		base := uint16(hi)<<8 | uint16(lo)
		effective := base + uint16(c.Y)
		crossed := (base & 0xFF00) != (effective & 0xFF00)
		if crossed || entry.forceIndexedDummy {
			wrong := (base & 0xFF00) | (effective & 0x00FF)
			c.read(wrong)
		}
		return effective, crossed

	default:
		return 0, false
	}
}
