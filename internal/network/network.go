package network

import (
	"fmt"
	"net/netip"
	"strconv"
)

const (
	// BlockSize is the number of addresses reserved per sandbox.
	BlockSize = 4
	// CIDR is the prefix length of one block.
	CIDR = 30

	HostInterfacePrefix    = "vethh-"
	SandboxInterfacePrefix = "vethn-"
)

// Pool is the private address range sandboxes are carved out of.
type Pool struct {
	Prefix    netip.Prefix
	MaxBlocks int
}

// ParsePool builds a Pool from its textual prefix.
func ParsePool(prefix string, maxBlocks int) (Pool, error) {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		return Pool{}, fmt.Errorf("invalid pool prefix %q: %w", prefix, err)
	}
	pool := Pool{Prefix: p.Masked(), MaxBlocks: maxBlocks}
	if err := pool.Validate(); err != nil {
		return Pool{}, err
	}
	return pool, nil
}

// Validate checks that every block below MaxBlocks fits inside Prefix.
func (p Pool) Validate() error {
	if !p.Prefix.IsValid() || !p.Prefix.Addr().Is4() {
		return fmt.Errorf("pool prefix must be a valid IPv4 prefix (got %s)", p.Prefix)
	}
	if p.MaxBlocks < 1 {
		return fmt.Errorf("pool must hold at least one block (got %d)", p.MaxBlocks)
	}
	size := uint64(1) << (32 - p.Prefix.Bits())
	if uint64(p.MaxBlocks)*BlockSize > size {
		return fmt.Errorf("%d blocks do not fit in %s", p.MaxBlocks, p.Prefix)
	}
	return nil
}

// Addresses is the usable pair inside one block.
type Addresses struct {
	Host    netip.Addr
	Sandbox netip.Addr
}

// AddressesForBlock derives the host and sandbox addresses of a block.
// Block n covers base+4n .. base+4n+3; the host takes +1, the sandbox +2.
// It is pure: the result depends only on the pool and block.
func (p Pool) AddressesForBlock(block int) (Addresses, error) {
	if block < 0 || block >= p.MaxBlocks {
		return Addresses{}, fmt.Errorf("block %d outside pool of %d blocks", block, p.MaxBlocks)
	}
	base := p.Prefix.Masked().Addr().As4()
	start := uint32(base[0])<<24 | uint32(base[1])<<16 | uint32(base[2])<<8 | uint32(base[3])
	offset := start + uint32(block)*BlockSize
	return Addresses{
		Host:    addrFromUint32(offset + 1),
		Sandbox: addrFromUint32(offset + 2),
	}, nil
}

func addrFromUint32(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// Network is the stored network identity of a sandbox. It is computed once
// at creation and never recomputed.
type Network struct {
	HostInterface    string `json:"hostInterface" yaml:"hostInterface"`
	SandboxInterface string `json:"sandboxInterface" yaml:"sandboxInterface"`
	HostIP           string `json:"hostIp" yaml:"hostIp"`
	SandboxIP        string `json:"sandboxIp" yaml:"sandboxIp"`
	CIDR             int    `json:"cidr" yaml:"cidr"`
}

// NetworkForBlock returns the full network identity for a block.
func (p Pool) NetworkForBlock(block int) (Network, error) {
	addrs, err := p.AddressesForBlock(block)
	if err != nil {
		return Network{}, err
	}
	n := strconv.Itoa(block)
	return Network{
		HostInterface:    HostInterfacePrefix + n,
		SandboxInterface: SandboxInterfacePrefix + n,
		HostIP:           addrs.Host.String(),
		SandboxIP:        addrs.Sandbox.String(),
		CIDR:             CIDR,
	}, nil
}

// Env returns the variables handed to the sandbox runtime so it can wire
// the veth pair.
func (n Network) Env() []string {
	return []string{
		"FORAGE_SANDBOX_HOST_IF=" + n.HostInterface,
		"FORAGE_SANDBOX_IF=" + n.SandboxInterface,
		"FORAGE_SANDBOX_HOST_IP=" + n.HostIP,
		"FORAGE_SANDBOX_IP=" + n.SandboxIP,
		"FORAGE_SANDBOX_CIDR=" + strconv.Itoa(n.CIDR),
	}
}
