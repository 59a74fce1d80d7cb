package poller

import (
	"errors"
)

var (
	// ErrConnectionProbe is returned by Start when the synchronous
	// activation probe cannot reach the Odoo endpoint.
	ErrConnectionProbe = errors.New("failed to connect to Odoo")
)
