// Package transport implements the HTTP GET/POST layer: SSRF-guarded,
// TLS-fingerprinted, size-capped, retrying on transient failures.
//
// Dial logic is grounded on the teacher's scraper/httpfetch.go
// (dialTLSChrome: utls.UClient over a raw dialed conn, SOCKS5 proxy
// handling) and engine/http_engine.go (per-preset utls.UTLSIdToSpec
// ClientHello construction with ALPN patched to the transport the preset
// implies).
package transport

import (
	"fmt"

	tls "github.com/refraction-networking/utls"
)

// Preset is an opaque fingerprint identifier drawn from the fixed
// vocabulary in spec §6.
type Preset string

const (
	PresetChrome143       Preset = "CHROME_143"
	PresetAndroidChrome143 Preset = "ANDROID_CHROME_143"
	PresetIOSChrome143    Preset = "IOS_CHROME_143"
	PresetIOSSafari18     Preset = "IOS_SAFARI_18"
	PresetFirefox133      Preset = "FIREFOX_133"
)

// clientHelloID maps a preset to the utls ClientHello it mimics. Multiple
// presets share a HelloID and are distinguished only at the header layer
// (User-Agent) by the caller — utls has no distinct Android/iOS Chrome
// fingerprints beyond the desktop ones it ships.
func clientHelloID(p Preset) (tls.ClientHelloID, error) {
	switch p {
	case PresetChrome143, PresetAndroidChrome143:
		return tls.HelloChrome_Auto, nil
	case PresetIOSChrome143, PresetIOSSafari18:
		return tls.HelloIOS_Auto, nil
	case PresetFirefox133:
		return tls.HelloFirefox_Auto, nil
	case "":
		return tls.HelloChrome_Auto, nil
	default:
		return tls.ClientHelloID{}, fmt.Errorf("transport: unknown preset %q", p)
	}
}

// UserAgent returns the browser User-Agent string associated with a preset,
// mirroring the teacher's hard-coded chromeUA constant but varied per
// preset.
func UserAgent(p Preset) string {
	switch p {
	case PresetAndroidChrome143:
		return "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Mobile Safari/537.36"
	case PresetIOSChrome143:
		return "Mozilla/5.0 (iPhone; CPU iPhone OS 18_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/143.0.0.0 Mobile/15E148 Safari/604.1"
	case PresetIOSSafari18:
		return "Mozilla/5.0 (iPhone; CPU iPhone OS 18_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Mobile/15E148 Safari/604.1"
	case PresetFirefox133:
		return "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0"
	default:
		return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
	}
}
