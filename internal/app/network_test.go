package app

import (
	"net"
	"testing"
)

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func lanProvider(ip string) mockNetworkProvider {
	return mockNetworkProvider{interfaces: []networkInterface{
		mockInterface{
			flags: net.FlagUp,
			addrs: []net.Addr{&net.IPNet{IP: net.ParseIP(ip), Mask: net.CIDRMask(24, 32)}},
		},
	}}
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{"network error", mockNetworkProvider{err: net.ErrClosed}, "localhost"},
		{"addrs error", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, err: net.ErrClosed},
		}}, "localhost"},
		{"ip addr", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("192.168.1.100")}}},
		}}, "192.168.1.100"},
		{"public fallback", lanProvider("8.8.8.8"), "8.8.8.8"},
		{"down interface skipped", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: 0, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("10.0.0.2")}}},
		}}, "localhost"},
		{"loopback ip skipped", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{
				&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
				&net.IPNet{IP: net.ParseIP("192.168.1.50"), Mask: net.CIDRMask(24, 32)},
			}},
		}}, "192.168.1.50"},
		{"private preferred", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{
				&net.IPAddr{IP: net.ParseIP("8.8.8.8")},
				&net.IPAddr{IP: net.ParseIP("172.20.0.4")},
			}},
		}}, "172.20.0.4"},
		{"ipv6 ignored", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("fe80::1")}}},
		}}, "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsPrivate172(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.15.0.1", false},
		{"172.32.0.1", false},
		{"192.168.1.1", false},
		{"::1", false},
	}
	for _, tt := range tests {
		if got := isPrivate172(net.ParseIP(tt.ip)); got != tt.want {
			t.Errorf("isPrivate172(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
	if isPrivate172(nil) {
		t.Error("expected nil IP to be non-private")
	}
}

func TestLanURL(t *testing.T) {
	lan := lanProvider("192.168.1.20")

	tests := []struct {
		name     string
		raw      string
		provider networkProvider
		want     string
	}{
		{"localhost with port", "http://localhost:5000/api/snacks", lan, "http://192.168.1.20:5000/api/snacks"},
		{"loopback ip", "http://127.0.0.1/api/snacks", lan, "http://192.168.1.20/api/snacks"},
		{"public host untouched", "https://snacks.example.com/api/snacks", lan, "https://snacks.example.com/api/snacks"},
		{"no lan address", "http://localhost:5000/api/snacks", mockNetworkProvider{err: net.ErrClosed}, "http://localhost:5000/api/snacks"},
		{"not a url", "::::", lan, "::::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lanURL(tt.raw, tt.provider); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRealNetworkProvider_Interfaces(t *testing.T) {
	if _, err := (realNetworkProvider{}).Interfaces(); err != nil {
		t.Errorf("expected interfaces to be listed, got %v", err)
	}
}
