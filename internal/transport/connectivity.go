package transport

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// Checker reports device connectivity before a request is attempted.
//
// Online returns (false, nil) only for a definitive offline verdict; a
// probe that itself fails returns a non-nil error and the caller proceeds
// optimistically.
type Checker interface {
	Online(ctx context.Context) (bool, error)
}

// OptimisticChecker never reports offline. It is the default when no probe
// address is configured.
type OptimisticChecker struct{}

func (OptimisticChecker) Online(ctx context.Context) (bool, error) { return true, nil }

// DialChecker probes connectivity with a TCP dial against a well-known
// address. DNS failures and unreachable-network errors are a definitive
// offline verdict; a refused connection still proves the network path
// works.
type DialChecker struct {
	Addr    string // host:port
	Timeout time.Duration
}

func (c *DialChecker) Online(ctx context.Context) (bool, error) {
	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err == nil {
		_ = conn.Close()
		return true, nil
	}

	if isOfflineDialError(err) {
		return false, nil
	}
	if strings.Contains(err.Error(), "connection refused") {
		// The stack routed the packet; the host just has nothing
		// listening. That is not "offline".
		return true, nil
	}
	return false, err
}

func isOfflineDialError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "network is down")
}
