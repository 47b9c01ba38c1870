package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"

	tls "github.com/refraction-networking/utls"
)

// dialTLS establishes a TLS connection with the ClientHello fingerprint for
// preset, optionally through a SOCKS5 proxy. Grounded on the teacher's
// dialTLSChrome (scraper/httpfetch.go).
func dialTLS(ctx context.Context, network, addr string, preset Preset, proxy string) (net.Conn, error) {
	helloID, err := clientHelloID(preset)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{}
	var rawConn net.Conn

	if proxy != "" {
		proxyURL, perr := url.Parse(proxy)
		if perr == nil && (proxyURL.Scheme == "socks5" || proxyURL.Scheme == "socks5h") {
			conn, derr := dialer.DialContext(ctx, "tcp", proxyURL.Host)
			if derr != nil {
				return nil, fmt.Errorf("transport: socks5 dial: %w", derr)
			}
			rawConn = conn
		}
	}

	if rawConn == nil {
		rawConn, err = dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{ServerName: host}, helloID)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
