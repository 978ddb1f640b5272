package quad

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// CheckAddresses verifies that the addresses of the appended quadruples are in [start, next address) and are
// unique; quadruples without an address are ignored.
func (t *Table) CheckAddresses() error {
	seen := bitset.New(uint(t.next - t.start))

	for position, record := range t.records {
		if !record.placed {
			continue
		}
		addr := record.address
		if addr < t.start || addr >= t.next {
			return fmt.Errorf("%w: quadruple at position %d has the address %d that is outside [%d, %d)",
				ErrInconsistentTable, position, addr, t.start, t.next)
		}
		bit := uint(addr - t.start)
		if seen.Test(bit) {
			return fmt.Errorf("%w: address %d is used by several quadruples", ErrInconsistentTable, addr)
		}
		seen.Set(bit)
	}
	return nil
}

// Unplaced returns the positions of the quadruples that have no address (inserted quadruples).
func (t *Table) Unplaced() []int {
	var positions []int
	for i, record := range t.records {
		if !record.placed {
			positions = append(positions, i)
		}
	}
	return positions
}
