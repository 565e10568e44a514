package observability

import (
	"context"
	"errors"
	"net"
	"time"
)

// ObserveStore times one record store round trip. A nil *Prom just runs fn.
func (p *Prom) ObserveStore(op string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.StoreErrorsTotal.WithLabelValues(op, classifyStoreErr(err)).Inc()
	}
	p.StoreCallDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

// statusCoder is satisfied by recordstore.NetworkError without importing it here.
type statusCoder interface {
	StatusCode() int
}

func classifyStoreErr(err error) string {
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() > 0 {
		switch code := sc.StatusCode(); {
		case code >= 500:
			return "server_error"
		case code == 404:
			return "not_found"
		case code >= 400:
			return "client_error"
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "connection"
	}

	return "unknown"
}
