// Package urlguard validates URLs and proxy URLs against SSRF exposure: it
// rejects private, link-local, and unspecified address ranges before a
// connection is ever opened, and again after DNS resolution.
//
// The teacher repository (github.com/use-agent/purify) dials hosts directly
// with no such guard; this package is built fresh in its idiom — plain
// functions over stdlib net/netip, no framework.
package urlguard

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"time"
)

// DNSTimeout bounds host resolution (spec §4.A).
const DNSTimeout = 5 * time.Second

// AllowedProxySchemes is the closed set of proxy URL schemes spec §4.A
// permits.
var AllowedProxySchemes = map[string]bool{
	"http": true, "https": true, "socks5": true, "socks5h": true,
}

// Result carries the resolved, non-private addresses for a validated host.
type Result struct {
	Host      string
	Addresses []netip.Addr
}

// Resolver is the minimal DNS capability urlguard needs, satisfied by
// *net.Resolver in production and fakeable in tests.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// DefaultResolver wraps net.DefaultResolver.
var DefaultResolver Resolver = net.DefaultResolver

// ValidateURL parses raw, SSRF-checks its host, and returns the resolved
// addresses. It never performs DNS for an IP literal.
func ValidateURL(ctx context.Context, raw string) (*Result, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("urlguard: parse url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("urlguard: url has no host")
	}
	return validateHost(ctx, host)
}

// ValidateProxyURL applies the same SSRF path to a proxy URL, additionally
// restricting the scheme to AllowedProxySchemes.
func ValidateProxyURL(ctx context.Context, raw string) (*Result, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("urlguard: parse proxy url: %w", err)
	}
	if !AllowedProxySchemes[u.Scheme] {
		return nil, fmt.Errorf("urlguard: proxy scheme %q not allowed", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("urlguard: proxy url has no host")
	}
	return validateHost(ctx, host)
}

func validateHost(ctx context.Context, host string) (*Result, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		if IsPrivate(addr) {
			return nil, fmt.Errorf("urlguard: %s is a private address", host)
		}
		return &Result{Host: host, Addresses: []netip.Addr{addr}}, nil
	}

	resCtx, cancel := context.WithTimeout(ctx, DNSTimeout)
	defer cancel()

	ips, err := DefaultResolver.LookupIP(resCtx, "ip", host)
	if err != nil || len(ips) == 0 {
		return nil, fmt.Errorf("urlguard: dns resolution failed for %s: %w", host, err)
	}

	addrs := make([]netip.Addr, 0, len(ips))
	for _, ip := range ips {
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		addr = addr.Unmap() // reduce IPv4-mapped IPv6 before classification
		if IsPrivate(addr) {
			return nil, fmt.Errorf("urlguard: %s resolved to private address %s", host, addr)
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("urlguard: %s resolved to no usable addresses", host)
	}
	return &Result{Host: host, Addresses: addrs}, nil
}

// IsPrivate classifies an address against the IPv4 and IPv6 private ranges
// named in spec §4.A. An IPv4-mapped IPv6 address is classified by its
// embedded IPv4 address.
func IsPrivate(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	if addr.Is4() || addr.Is4In6() {
		a := addr.As4()
		switch {
		case a[0] == 0: // 0.0.0.0/8
			return true
		case a[0] == 10: // 10.0.0.0/8
			return true
		case a[0] == 127: // 127.0.0.0/8
			return true
		case a[0] == 169 && a[1] == 254: // 169.254.0.0/16
			return true
		case a[0] == 172 && a[1] >= 16 && a[1] <= 31: // 172.16.0.0/12
			return true
		case a[0] == 192 && a[1] == 168: // 192.168.0.0/16
			return true
		}
		return false
	}

	switch {
	case addr.IsUnspecified(): // ::
		return true
	case addr.IsLoopback(): // ::1
		return true
	case addr.IsLinkLocalUnicast(): // fe80::/10
		return true
	}
	a16 := addr.As16()
	if a16[0]&0xfe == 0xfc { // fc00::/7
		return true
	}
	if a16[0] == 0xfd { // fd00::/8 (subset of fc00::/7, redundant but explicit)
		return true
	}
	return false
}
