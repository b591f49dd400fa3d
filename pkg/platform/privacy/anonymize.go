// Package privacy masks caller network addresses before they reach the access log.
package privacy

import (
	"net"
	"net/netip"
)

const (
	ipv4PrefixBits = 24
	ipv6PrefixBits = 48
)

// AnonymizeIP masks an address down to its network prefix: /24 for IPv4
// (and IPv4-mapped IPv6), /48 for IPv6.
//
// Returns "unknown" for empty input and "invalid" when the value cannot be parsed.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := ipv6PrefixBits
	if addr.Is4() {
		bits = ipv4PrefixBits
	}
	prefix, err := addr.WithZone("").Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// AnonymizeRemoteAddr accepts an http.Request.RemoteAddr style "host:port"
// value (or a bare host) and returns the anonymized host.
func AnonymizeRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return AnonymizeIP(host)
}
