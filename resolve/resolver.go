// Package resolve implements the per-query trust-bootstrap pipeline:
// validate the name, fetch the SLD's NS/DS record from the blockchain,
// canonicalize the DS entry into a trust anchor, resolve each
// candidate nameserver under the public trust anchor, then issue the
// user's query under a synthetic forward-zone context anchored by the
// blockchain-supplied DS set.
//
// Adapted from original_source's NamecoinResolver.resolve
// (bcresolver/__init__.py), restructured into blocky's
// Resolver-as-a-struct-with-injected-collaborators idiom
// (resolver/resolver.go) so NamecoinClient and DNSSECContext can be
// substituted with fakes in tests.
package resolve

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"

	"github.com/namecoin/bcresolve/dnssec"
	"github.com/namecoin/bcresolve/evt"
	"github.com/namecoin/bcresolve/forwardzone"
	"github.com/namecoin/bcresolve/log"
	"github.com/namecoin/bcresolve/namecoin"
)

// Options configures a Resolver: constructed once, immutable,
// read-only during resolution.
type Options struct {
	ResolvConf    string
	DNSSECRootKey string
	TempDir       string
}

// Resolver performs resolve() calls against injected collaborators.
// A Resolver is stateless between calls; every field is read-only
// after construction, and no state is shared across concurrent calls.
type Resolver struct {
	Namecoin   NamecoinClient
	NewContext ContextFactory
	Options    Options
}

// New builds a Resolver backed by a real namecoin.Client and real
// dnssec.Context instances.
func New(client *namecoin.Client, opts Options) *Resolver {
	return &Resolver{
		Namecoin:   client,
		NewContext: func() DNSSECContext { return dnssec.NewContext() },
		Options:    opts,
	}
}

// Resolve runs the full five-stage pipeline for name/qtypeToken and
// returns the extracted Value, or the last classification error seen
// across the NS loop (nil, nil if the loop exhausted with no error at
// all, matching the original's "else return None").
func (r *Resolver) Resolve(ctx context.Context, name, qtypeToken string) (*Value, error) {
	queryID := uuid.NewString()
	logger := log.WithQueryID("resolve", queryID).WithField("name", name).WithField("qtype", qtypeToken)

	evt.Bus().Publish(evt.ResolveStarted, name, qtypeToken)

	value, attempts, err := r.resolve(ctx, name, qtypeToken, logger)
	if err != nil {
		logger.Warnf("resolution failed: %s", err)
		evt.Bus().Publish(evt.ResolveFailed, name, outcomeLabel(err))

		return nil, err
	}

	logger.Debug("resolution succeeded")
	evt.Bus().Publish(evt.ResolveSucceeded, name, attempts)

	return value, nil
}

func (r *Resolver) resolve(ctx context.Context, name, qtypeToken string, logger *logrus.Entry) (*Value, int, error) {
	sld, err := validateName(name)
	if err != nil {
		return nil, 0, err
	}

	qtype, err := parseQueryType(qtypeToken)
	if err != nil {
		return nil, 0, err
	}

	record, err := r.fetchRecord(ctx, sld)
	if err != nil {
		return nil, 0, err
	}

	trustAnchor, err := canonicalizeDS(sld, record.DS[0])
	if err != nil {
		return nil, 0, err
	}

	logger.Debugf("trust anchor for %s: %s", sld, trustAnchor)

	return r.resolveViaNameservers(ctx, name, sld, qtype, record.NS, trustAnchor, logger)
}

// fetchRecord performs stage 2: the blockchain lookup and parse, with
// the NoDSRecord/NoNameserver checks required before any resolver
// context is created.
func (r *Resolver) fetchRecord(ctx context.Context, sld string) (*namecoin.Record, error) {
	label := sld[:len(sld)-len(".bit.")]

	value, found, err := r.Namecoin.Lookup(ctx, "d/"+label)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrNoNameValue
	}

	record, err := namecoin.ParseValue(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoNameValue, err)
	}

	if len(record.DS) == 0 {
		return nil, ErrNoDSRecord
	}

	if len(record.NS) == 0 {
		return nil, ErrNoNameserver
	}

	return record, nil
}

// resolveViaNameservers implements stages 4 and 5: walk nsNames in
// order, resolve each under the public trust anchor, then run the
// authoritative query under a fresh per-SLD context. Returns the
// first extracted Value, or the last classification error seen.
func (r *Resolver) resolveViaNameservers(
	ctx context.Context,
	name, sld string,
	qtype uint16,
	nsNames []string,
	trustAnchor string,
	logger *logrus.Entry,
) (*Value, int, error) {
	var lastErr error

	attempts := 0

	for _, ns := range nsNames {
		attempts++

		nsAddr, ok, err := r.resolveNameserver(ctx, ns, logger)
		if err != nil {
			return nil, attempts, err // TrustAnchorMissing: fatal, terminates the entire call
		}

		if !ok {
			lastErr = ErrInvalidNameserver
			logger.Infof("no usable address for nameserver %s", ns)

			continue
		}

		value, err := r.queryAuthoritative(ctx, name, sld, qtype, nsAddr, trustAnchor, logger)
		if err != nil {
			if isFatal(err) {
				return nil, attempts, err // UnsupportedType: fatal, terminates the entire call
			}

			lastErr = err

			continue
		}

		if value != nil {
			return value, attempts, nil
		}
	}

	return nil, attempts, lastErr
}

func isFatal(err error) bool {
	return err == ErrUnsupportedType
}

// resolveNameserver performs stage 4 for a single NS name: an A
// lookup under the public trust anchor, falling back to AAAA when the
// nameserver has no usable IPv4 address. The secure flag is not
// required here.
//
// Trying both query types and accumulating the per-type failure
// instead of discarding it on the first miss is grounded on blocky's
// bootstrap resolver (resolver/bootstrap.go's resolveType loop over
// A/AAAA, appended via hashicorp/go-multierror).
func (r *Resolver) resolveNameserver(ctx context.Context, ns string, logger *logrus.Entry) (addr string, ok bool, err error) {
	dctx := r.NewContext()

	if err := dctx.LoadResolvConf(r.Options.ResolvConf); err != nil {
		logger.Warnf("can't load resolv.conf: %s", err)

		return "", false, nil
	}

	if err := dctx.AddTrustAnchorFile(r.Options.DNSSECRootKey); err != nil {
		return "", false, ErrTrustAnchorMissing
	}

	var problems *multierror.Error

	for _, qtype := range [...]uint16{dns.TypeA, dns.TypeAAAA} {
		result, resolveErr := dctx.Resolve(ctx, ns, qtype)

		switch {
		case resolveErr != nil:
			problems = multierror.Append(problems, fmt.Errorf("%s: %w", dns.TypeToString[qtype], resolveErr))

			continue
		case result.Status != dnssec.StatusSuccess:
			problems = multierror.Append(problems, fmt.Errorf("%s: status %d", dns.TypeToString[qtype], result.Status))

			continue
		case result.Bogus:
			problems = multierror.Append(problems, fmt.Errorf("%s: bogus", dns.TypeToString[qtype]))

			continue
		case !result.HaveData:
			continue
		}

		if nsAddr, found := firstAddress(result.Answer); found {
			return nsAddr, true, nil
		}
	}

	if problems.ErrorOrNil() != nil {
		logger.Debugf("nameserver %s: %s", ns, problems)
	}

	return "", false, nil
}

// queryAuthoritative performs stage 5 for one candidate NS address:
// materialize the scratch forward-zone file, build a fresh context
// anchored solely by trustAnchor, issue the query, classify the
// result, and extract a Value. The scratch file is unlinked on every
// return path.
func (r *Resolver) queryAuthoritative(
	ctx context.Context,
	name, sld string,
	qtype uint16,
	nsAddr string,
	trustAnchor string,
	logger *logrus.Entry,
) (*Value, error) {
	path, err := forwardzone.Write(r.Options.TempDir, sld, nsAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve: can't materialize forward-zone config: %w", err)
	}
	defer func() {
		if rmErr := forwardzone.Remove(path); rmErr != nil {
			logger.Warnf("can't remove scratch forward-zone config: %s", rmErr)
		}
	}()

	dctx := r.NewContext()
	dctx.LoadForwardZone(sld, nsAddr)

	if err := dctx.AddTrustAnchor(trustAnchor); err != nil {
		return nil, fmt.Errorf("resolve: can't install trust anchor: %w", err)
	}

	result, err := dctx.Resolve(ctx, name, qtype)
	if err != nil {
		return nil, err
	}

	if result.Status != dnssec.StatusSuccess {
		// A status-only failure is deliberately not recorded as
		// last_error; this preserves the original's behavior.
		logger.Infof("authoritative query failed for %s via %s", name, nsAddr)

		return nil, nil
	}

	if !result.Secure {
		return nil, ErrInsecureResult
	}

	if result.Bogus {
		return nil, ErrBogusResult
	}

	if !result.HaveData {
		return nil, ErrEmptyResult
	}

	return extractValue(qtype, result.Answer)
}
