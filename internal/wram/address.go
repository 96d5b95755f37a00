package wram

// WRAM bank boundaries in GBC address space.
const (
	Bank0Start = 0xC000
	Bank1Start = 0xD000
	BankSize   = 0x1000
)

// OffsetToAddress maps a snapshot offset to its console address. Offsets outside
// the first two banks have no known linear mapping and are returned unchanged.
func OffsetToAddress(offset int) uint32 {
	switch {
	case offset >= 0 && offset < BankSize:
		return uint32(offset + Bank0Start)
	case offset >= BankSize && offset < 2*BankSize:
		return uint32(offset - BankSize + Bank1Start)
	default:
		return uint32(offset)
	}
}
