package resolve

import (
	"context"

	"github.com/namecoin/bcresolve/dnssec"
)

// NamecoinClient is the external blockchain registry collaborator:
// one operation, lookup(full_name) -> value. namecoin.Client
// satisfies this; tests substitute a fake.
type NamecoinClient interface {
	Lookup(ctx context.Context, fullName string) (value string, found bool, err error)
}

// DNSSECContext is the external DNSSEC resolver facility, narrowed to
// the five operations the pipeline needs. *dnssec.Context satisfies
// this; tests substitute a fake so the pipeline's NS-loop and
// classification logic can be exercised without a live network or
// real keys.
type DNSSECContext interface {
	LoadResolvConf(path string) error
	AddTrustAnchorFile(path string) error
	AddTrustAnchor(presentation string) error
	LoadForwardZone(zone, addr string)
	Resolve(ctx context.Context, name string, qtype uint16) (*dnssec.Result, error)
}

// ContextFactory builds a fresh DNSSECContext. A new one is requested
// for every NS attempt: no trust-anchor bleed-through between
// candidates.
type ContextFactory func() DNSSECContext
