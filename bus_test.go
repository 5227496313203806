package ciasim_test

import (
	"testing"

	"github.com/db47h/ciasim"
)

func newEngine(dev ciasim.Device) *ciasim.Engine {
	return ciasim.NewEngine(dev, ciasim.NewClock(dev, 0))
}

func TestEngineRegisterAccess(t *testing.T) {
	dev := newFakeDev()
	eng := newEngine(dev)

	eng.Reset()
	eng.WriteRegister(5, 0x3F)
	// the fake zeroes its cycle counter on reset release
	if dev.cycles != 1 {
		t.Errorf("bus cycles after write = %d, want 1", dev.cycles)
	}
	if dev.regs[5] != 0x3F {
		t.Errorf("register 5 = %02X, want 3F", dev.regs[5])
	}
	// /CS and /W released after the transaction
	if dev.busIn&(0x3<<ciasim.InWn) != 0x3<<ciasim.InWn {
		t.Errorf("control bits not released: busIn = %X", dev.busIn)
	}

	if v := eng.ReadRegister(5); v != 0x3F {
		t.Errorf("register 5 read = %02X, want 3F", v)
	}
	if dev.cycles != 2 {
		t.Errorf("bus cycles after read = %d, want 2", dev.cycles)
	}
	if dev.busIn&(1<<ciasim.InCSn) == 0 {
		t.Errorf("/CS not released after read: busIn = %X", dev.busIn)
	}
}

func TestEnginePortRead(t *testing.T) {
	sig, err := ciasim.Resolve("PA", ciasim.Read)
	if err != nil {
		t.Fatal(err)
	}
	td := []struct {
		drv, ddr, want uint8
	}{
		// a bit reads back the driver where the DDR marks it as output and
		// reads as released high otherwise
		{0xF0, 0xF0, 0xFF},
		{0xF0, 0x0F, 0xF0},
		{0xA0, 0xF0, 0xAF},
		{0x00, 0xFF, 0x00},
		{0x00, 0x00, 0xFF},
	}
	for _, d := range td {
		dev := newFakeDev()
		dev.pins |= uint64(d.drv)<<ciasim.OutPA | uint64(d.ddr)<<ciasim.OutDDRA
		dev.update()
		if v := newEngine(dev).ReadPort(sig); v != d.want {
			t.Errorf("port read drv=%02X ddr=%02X = %02X, want %02X", d.drv, d.ddr, v, d.want)
		}
	}
}

func TestEnginePortWrite(t *testing.T) {
	sig, err := ciasim.Resolve("PB", ciasim.Write)
	if err != nil {
		t.Fatal(err)
	}
	dev := newFakeDev()
	dev.pins |= uint64(0xA5)<<ciasim.OutPB | uint64(0xF0)<<ciasim.OutDDRB
	dev.update()

	// output-configured bits keep the device's own level, input-configured
	// bits take the caller's value
	newEngine(dev).WritePort(sig, 0x3C)
	const want = 0xA0 | 0x0C // drv&ddr | val&^ddr
	if got := uint8(dev.busIn >> ciasim.InPB); got != want {
		t.Errorf("port B input field = %02X, want %02X", got, want)
	}
}

func TestEnginePinWrite(t *testing.T) {
	tod, err := ciasim.Resolve("TOD", ciasim.Write)
	if err != nil {
		t.Fatal(err)
	}
	dev := newFakeDev()
	eng := newEngine(dev)

	eng.WritePin(tod, 1)
	if dev.busIn&(1<<ciasim.InTOD) == 0 {
		t.Error("TOD input not driven high")
	}
	eng.WritePin(tod, 0)
	if dev.busIn&(1<<ciasim.InTOD) != 0 {
		t.Error("TOD input not driven low")
	}
}

func TestEnginePulledPinWrite(t *testing.T) {
	cnt, err := ciasim.Resolve("CNT", ciasim.Write)
	if err != nil {
		t.Fatal(err)
	}

	// device releases the line: external level passes through
	dev := newFakeDev()
	eng := newEngine(dev)
	eng.WritePin(cnt, 1)
	if dev.busIn&(1<<ciasim.InCNT) == 0 {
		t.Error("CNT input low with line released, want high")
	}

	// device holds the shared line low: the external high is pulled down
	dev = newFakeDev()
	dev.pins &^= 1 << ciasim.OutCNT
	dev.update()
	eng = newEngine(dev)
	eng.WritePin(cnt, 1)
	if dev.busIn&(1<<ciasim.InCNT) != 0 {
		t.Error("CNT input high with line driven low, want pulled down")
	}
}

func TestEnginePinRead(t *testing.T) {
	irq, err := ciasim.Resolve("IRQ", ciasim.Read)
	if err != nil {
		t.Fatal(err)
	}
	dev := newFakeDev()
	eng := newEngine(dev)
	if v := eng.ReadPin(irq); v != 1 {
		t.Errorf("released /IRQ reads %d, want 1", v)
	}
	dev.fireAfter = 1
	dev.cycles = 1
	dev.update()
	if v := eng.ReadPin(irq); v != 0 {
		t.Errorf("asserted /IRQ reads %d, want 0", v)
	}
}
