// Package network derives sandbox network identities from address blocks.
//
// The pool prefix (10.201.0.0/16 by default) is cut into /30 blocks of four
// addresses. Block n yields:
//
//	base + 4n      network address
//	base + 4n + 1  host side of the veth pair
//	base + 4n + 2  sandbox side of the veth pair
//	base + 4n + 3  broadcast
//
// Derivation is pure so IP assignment can be recomputed and audited without
// consulting the allocator. Interface names are vethh-<n> and vethn-<n>,
// which stay under the 15 byte Linux limit for any block below 10^9.
package network
