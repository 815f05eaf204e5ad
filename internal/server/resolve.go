package server

import (
	"fmt"
	"net"
)

// resolveIPv4 accepts a dotted quad or a host name with an IPv4 address.
// An empty address means all interfaces.
func resolveIPv4(address string) (net.IP, error) {
	if address == "" {
		return net.IPv4zero.To4(), nil
	}
	if ip := net.ParseIP(address); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("listen address %s is not IPv4", address)
	}
	addr, err := net.ResolveIPAddr("ip4", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listen address %s: %w", address, err)
	}
	return addr.IP.To4(), nil
}
