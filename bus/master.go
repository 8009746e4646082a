// Package bus provides the CPU side of the simulated SoC: a bus master that
// turns 32-bit register loads and stores into akita memory requests, and
// the helper devices use to answer them.
package bus

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"
	"github.com/sarchlab/bitrev/trace"
)

var (
	// ErrUnmapped is returned for an access no device decodes.
	ErrUnmapped = errors.New("bus: unmapped address")

	// ErrNoResponse means the engine went idle before the device answered.
	ErrNoResponse = errors.New("bus: device did not respond")

	// ErrUnaligned is returned for an access that is not word aligned.
	ErrUnaligned = errors.New("bus: unaligned access")

	// ErrSend means the request could not leave the master's port.
	ErrSend = errors.New("bus: send failed")
)

type region struct {
	name       string
	base, size uint32
	local      sim.Port
	remote     sim.RemotePort
}

func (r *region) contains(addr uint32) bool {
	return addr >= r.base && addr-r.base < r.size
}

// Master issues one register access at a time and runs the engine until the
// addressed device has answered, so accesses complete in program order.
type Master struct {
	*sim.TickingComponent

	engine  sim.Engine
	regions []*region
	pending map[string]sim.Msg
	waiting map[string]bool

	reads, writes uint64
}

// Tick collects the responses that have arrived.
func (m *Master) Tick() (madeProgress bool) {
	for _, r := range m.regions {
		madeProgress = m.collect(r) || madeProgress
	}

	return madeProgress
}

func (m *Master) collect(r *region) bool {
	item := r.local.RetrieveIncoming()
	if item == nil {
		return false
	}

	var rspTo string
	switch rsp := item.(type) {
	case *mem.DataReadyRsp:
		rspTo = rsp.RespondTo
	case *mem.WriteDoneRsp:
		rspTo = rsp.RespondTo
	default:
		panic("bus: master received a message that is not a memory response")
	}

	if !m.waiting[rspTo] {
		panic(fmt.Sprintf("bus: unexpected response to %s from %s", rspTo, r.name))
	}
	delete(m.waiting, rspTo)
	m.pending[rspTo] = item

	return true
}

// MapDevice decodes [base, base+size) to the device port remote. The master
// creates its own port for the device and links the two with a direct
// connection.
func (m *Master) MapDevice(name string, base, size uint32, remote sim.Port) {
	for _, r := range m.regions {
		if base < r.base+r.size && r.base < base+size {
			panic(fmt.Sprintf("bus: %s overlaps %s", name, r.name))
		}
	}

	local := sim.NewPort(m, 1, 1, m.Name()+"."+name)
	m.AddPort(name, local)

	conn := directconnection.MakeBuilder().
		WithEngine(m.engine).
		WithFreq(m.Freq).
		Build(m.Name() + "." + name + ".Conn")
	conn.PlugIn(local)
	conn.PlugIn(remote)

	m.regions = append(m.regions, &region{
		name:   name,
		base:   base,
		size:   size,
		local:  local,
		remote: remote.AsRemote(),
	})
}

func (m *Master) route(addr uint32) (*region, error) {
	if addr%4 != 0 {
		return nil, fmt.Errorf("%w: 0x%08x", ErrUnaligned, addr)
	}

	for _, r := range m.regions {
		if r.contains(addr) {
			return r, nil
		}
	}

	return nil, fmt.Errorf("%w: 0x%08x", ErrUnmapped, addr)
}

// Read32 loads the register at addr.
func (m *Master) Read32(addr uint32) (uint32, error) {
	r, err := m.route(addr)
	if err != nil {
		return 0, err
	}

	req := mem.ReadReqBuilder{}.
		WithSrc(r.local.AsRemote()).
		WithDst(r.remote).
		WithAddress(uint64(addr)).
		WithByteSize(4).
		Build()

	item, err := m.issue(r, req)
	if err != nil {
		return 0, err
	}
	m.reads++

	v := wordOf(item.(*mem.DataReadyRsp).Data)
	trace.Trace("Bus",
		"Behavior", "Read",
		"Time", float64(m.Engine.CurrentTime()*1e9),
		"Device", r.name,
		"Addr", addr,
		"Data", v,
	)

	return v, nil
}

// Write32 stores v to the register at addr.
func (m *Master) Write32(addr, v uint32) error {
	r, err := m.route(addr)
	if err != nil {
		return err
	}

	data := make([]byte, 4)
	Order.PutUint32(data, v)

	req := mem.WriteReqBuilder{}.
		WithSrc(r.local.AsRemote()).
		WithDst(r.remote).
		WithAddress(uint64(addr)).
		WithData(data).
		Build()

	if _, err := m.issue(r, req); err != nil {
		return err
	}
	m.writes++

	trace.Trace("Bus",
		"Behavior", "Write",
		"Time", float64(m.Engine.CurrentTime()*1e9),
		"Device", r.name,
		"Addr", addr,
		"Data", v,
	)

	return nil
}

func (m *Master) issue(r *region, req sim.Msg) (sim.Msg, error) {
	id := req.Meta().ID

	if err := r.local.Send(req); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSend, r.name, err)
	}
	m.waiting[id] = true

	if err := m.engine.Run(); err != nil {
		return nil, fmt.Errorf("bus: engine: %w", err)
	}

	rsp, ok := m.pending[id]
	if !ok {
		delete(m.waiting, id)
		return nil, fmt.Errorf("%w: %s", ErrNoResponse, r.name)
	}
	delete(m.pending, id)

	return rsp, nil
}

// Accesses returns the number of completed reads and writes.
func (m *Master) Accesses() (reads, writes uint64) {
	return m.reads, m.writes
}
