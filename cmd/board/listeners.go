package main

import (
	"fmt"
	"net"
)

// listeners are opened before any worker starts, so a busy port aborts the
// startup with nothing left to stop.
type listeners struct {
	http net.Listener
	grpc net.Listener
}

// openListeners binds the HTTP address and, when grpcPort is set, the gRPC
// one. On failure every listener already bound is released.
func openListeners(host string, port, grpcPort int) (listeners, error) {
	var l listeners
	httpAddress := fmt.Sprintf("%s:%d", host, port)
	httpListener, err := net.Listen("tcp", httpAddress)
	if err != nil {
		return listeners{}, fmt.Errorf("failed to listen on %s: %w", httpAddress, err)
	}
	l.http = httpListener

	if grpcPort > 0 {
		grpcAddress := fmt.Sprintf("%s:%d", host, grpcPort)
		grpcListener, err := net.Listen("tcp", grpcAddress)
		if err != nil {
			l.Close()
			return listeners{}, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
		}
		l.grpc = grpcListener
	}
	return l, nil
}

func (l listeners) Close() {
	if l.http != nil {
		_ = l.http.Close()
	}
	if l.grpc != nil {
		_ = l.grpc.Close()
	}
}
