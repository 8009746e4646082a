package soc

import (
	"fmt"
	"strings"

	"github.com/sarchlab/bitrev/reg"
)

// MaxNameLen bounds the identification string read from ROM.
const MaxNameLen = 256

// ReadName reads the NUL-terminated string at base one word at a time,
// low byte first.
func ReadName(bus reg.Bus, base uint32) (string, error) {
	var sb strings.Builder

	for addr := base; sb.Len() < MaxNameLen; addr += 4 {
		w, err := bus.Read32(addr)
		if err != nil {
			return sb.String(), fmt.Errorf("rom read 0x%08x: %w", addr, err)
		}

		for i := 0; i < 4; i++ {
			c := byte(w >> (8 * i))
			if c == 0 {
				return sb.String(), nil
			}
			sb.WriteByte(c)
		}
	}

	return sb.String(), nil
}
