package poller

//go:generate mockgen -destination=mock_poller.go -package=poller github.com/carverauto/odoosync/pkg/poller Clock,Ticker,Fetcher

import (
	"context"
	"time"

	"github.com/carverauto/odoosync/pkg/odoo"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Fetcher is the slice of the Odoo client the poller needs: one fetch
// per tick, a connectivity probe on activation, and resource release on
// deactivation. *odoo.Client satisfies it.
type Fetcher interface {
	SearchRead(ctx context.Context, model string, domain odoo.Domain, fields []string, limit, offset int) ([]map[string]interface{}, error)
	TestConnection(ctx context.Context) bool
	Close()
}
