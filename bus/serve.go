package bus

import (
	"encoding/binary"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/trace"
)

// Order is the byte order of data carried in memory messages. The SoC is a
// little-endian RISC-V core.
var Order = binary.LittleEndian

// A RegisterFile answers word accesses at offsets from a device's base.
type RegisterFile interface {
	Load(offset uint32) uint32
	Store(offset, v uint32)
}

// ServeOne answers at most one request waiting on port. It returns false if
// nothing was waiting or the response cannot be sent yet.
func ServeOne(port sim.Port, base uint32, rf RegisterFile) bool {
	item := port.PeekIncoming()
	if item == nil {
		return false
	}

	if !port.CanSend() {
		return false
	}

	var rsp sim.Msg
	switch req := item.(type) {
	case *mem.ReadReq:
		offset := uint32(req.Address) - base
		v := rf.Load(offset)
		data := make([]byte, 4)
		Order.PutUint32(data, v)

		rsp = mem.DataReadyRspBuilder{}.
			WithSrc(port.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			WithData(data).
			Build()
	case *mem.WriteReq:
		offset := uint32(req.Address) - base
		rf.Store(offset, wordOf(req.Data))

		rsp = mem.WriteDoneRspBuilder{}.
			WithSrc(port.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			Build()
	default:
		panic("bus: device received a message that is not a memory request")
	}

	if err := port.Send(rsp); err != nil {
		trace.Trace("Backpressure",
			"Port", port.Name(),
			"Error", err,
		)
		return false
	}

	port.RetrieveIncoming()

	return true
}

func wordOf(data []byte) uint32 {
	var buf [4]byte
	copy(buf[:], data)

	return Order.Uint32(buf[:])
}
