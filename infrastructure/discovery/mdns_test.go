package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		description string
		entry       *mdns.ServiceEntry
		want        string
		ok          bool
	}{
		{"Should format an IPv4 entry", &mdns.ServiceEntry{AddrV4: net.IPv4(192, 168, 1, 20), Port: 8080}, "192.168.1.20:8080", true},
		{"Should skip entries without IPv4", &mdns.ServiceEntry{Port: 8080}, "", false},
		{"Should skip entries without port", &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 1)}, "", false},
		{"Should skip nil entries", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, ok := address(tt.entry)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
