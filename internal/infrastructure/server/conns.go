package server

import (
	"context"
	"net"
	"sync"

	"google.golang.org/grpc/peer"
)

// gatewayConns tracks the connections the gateway opens to the local gRPC
// listener, keyed by their local address, so the engine can recognize the
// gateway as a peer. The gateway rate-limits its own clients per IP.
type gatewayConns struct {
	mu    sync.RWMutex
	addrs map[string]struct{}
}

func newGatewayConns() *gatewayConns {
	return &gatewayConns{addrs: make(map[string]struct{})}
}

// dial is a grpc.WithContextDialer dialer.
func (g *gatewayConns) dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	key := conn.LocalAddr().String()
	g.mu.Lock()
	g.addrs[key] = struct{}{}
	g.mu.Unlock()

	return &trackedConn{Conn: conn, release: func() {
		g.mu.Lock()
		delete(g.addrs, key)
		g.mu.Unlock()
	}}, nil
}

// owns reports whether the call in ctx arrived on a gateway connection.
func (g *gatewayConns) owns(ctx context.Context) bool {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return false
	}
	g.mu.RLock()
	_, ok = g.addrs[p.Addr.String()]
	g.mu.RUnlock()
	return ok
}

func (g *gatewayConns) size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.addrs)
}

type trackedConn struct {
	net.Conn
	once    sync.Once
	release func()
}

func (c *trackedConn) Close() error {
	c.once.Do(c.release)
	return c.Conn.Close()
}
