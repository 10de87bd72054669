package console

import (
	"github.com/golang/glog"
)

// cpuBus implements cpu.Bus, wiring the CPU's $0000-$FFFF address space
// to WRAM, the PPU/APU registers, the controllers/Zapper, the mapper and
// the Game Genie hook. Grounded on the teacher's nes/cpubus.go memory
// map, generalized to route PRG RAM/registers through the Mapper
// interface instead of a single NROM-shaped cartridge.
//
// CPU memory map:
//
//	0x0000-0x07FF  WRAM
//	0x0800-0x1FFF  WRAM mirrors
//	0x2000-0x2007  PPU registers
//	0x2008-0x3FFF  PPU register mirrors
//	0x4000-0x4013  APU registers
//	0x4014         OAM DMA
//	0x4015         APU status
//	0x4016         controller 1 (+ strobe, written to both ports)
//	0x4017         controller 2 / Zapper, frame counter (write)
//	0x4018-0x401F  APU/IO test registers (unimplemented)
//	0x4020-0x5FFF  extended RAM (unimplemented on all supported mappers)
//	0x6000-0xFFFF  mapper PRG RAM / PRG ROM
type cpuBus struct {
	console *Console
}

func (b *cpuBus) Read(addr uint16) byte {
	co := b.console
	switch {
	case addr < 0x2000:
		return co.wram[addr%0x0800]
	case addr < 0x4000:
		return co.ppu.ReadRegister(int(addr))
	case addr == 0x4015:
		return co.apu.ReadStatus(co.cpu.DataBus)
	case addr == 0x4016:
		return co.controllers[0].read(co.cpu.DataBus)
	case addr == 0x4017:
		bright := co.zapper.aimed && co.ppu.IsPixelBright(co.zapper.x, co.zapper.y)
		return co.controllers[1].read(co.cpu.DataBus) | co.zapper.read(bright)
	case addr < 0x4020:
		glog.V(1).Infof("console: unimplemented CPU bus read at 0x%04x", addr)
		return 0
	case addr < 0x6000:
		return 0
	default:
		v := co.mapperRef.ReadPRG(addr)
		return co.gameGenie.Apply(addr, v)
	}
}

func (b *cpuBus) Write(addr uint16, v byte) {
	co := b.console
	switch {
	case addr < 0x2000:
		co.wram[addr%0x0800] = v
	case addr < 0x4000:
		co.ppu.WriteRegister(int(addr), v)
	case addr < 0x4014:
		co.apu.WriteRegister(addr, v)
	case addr == 0x4014:
		co.doOAMDMA(v)
	case addr == 0x4015:
		co.apu.WriteRegister(addr, v)
	case addr == 0x4016:
		strobe := v&1 != 0
		co.controllers[0].write(strobe)
		co.controllers[1].write(strobe)
	case addr == 0x4017:
		co.apu.WriteRegister(addr, v)
	case addr < 0x4020:
		glog.V(1).Infof("console: unimplemented CPU bus write at 0x%04x = 0x%02x", addr, v)
	case addr < 0x6000:
		// extended RAM, unimplemented on all supported mappers
	case addr < 0x8000:
		co.mapperRef.WritePRG(addr, v)
		if co.opts.OnBatteryRamWrite != nil {
			co.opts.OnBatteryRamWrite(addr, v)
		}
	default:
		co.mapperRef.WritePRG(addr, v)
		co.ppu.SetMirrorMode(co.mapperRef.Mirroring())
	}
}

// ReadDMCSample implements apu.MemoryReader, letting the DMC channel
// fetch sample bytes straight off the CPU's address space (including
// PRG ROM and, per real hardware, the Game Genie substitution hook).
func (b *cpuBus) ReadDMCSample(addr uint16) byte { return b.Read(addr) }

// StallCPU implements apu.MemoryReader's DMA-hijacking hook.
func (b *cpuBus) StallCPU(cycles int) { b.console.cpu.HaltCycles(cycles) }

// doOAMDMA copies one 256-byte page into OAM and halts the CPU for the
// 513/514 cycles real hardware spends servicing the transfer. The
// odd/even cycle-alignment distinction (514 on an odd CPU cycle) is
// approximated here as a flat 513, an open question recorded in
// DESIGN.md.
func (co *Console) doOAMDMA(page byte) {
	base := uint16(page) << 8
	var buf [256]byte
	for i := 0; i < 256; i++ {
		buf[i] = co.bus.Read(base + uint16(i))
	}
	co.ppu.WriteOAMDMA(buf)
	co.cpu.HaltCycles(513)
}
