package dnssec

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const (
	ednsUDPSize    = 4096
	exchangeTimeout = 5 * time.Second
)

// Context is one per-query synthetic resolver context: a stub config
// (its servers), zero or more installed trust anchors, and an
// optional forward-zone override. It is cheap to create and meant to
// be used for exactly one resolve() and then discarded: no
// trust-anchor bleed-through between successive contexts.
type Context struct {
	servers []string // "host:port" stub resolvers, from resolv.conf
	anchors []Anchor

	forwardZone string
	forwardAddr string
}

// NewContext creates an empty context with no servers and no anchors.
func NewContext() *Context {
	return &Context{}
}

// LoadResolvConf loads the system stub resolver config into the stub
// context.
func (c *Context) LoadResolvConf(path string) error {
	cc, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return fmt.Errorf("can't load resolv.conf %s: %w", path, err)
	}

	c.servers = make([]string, 0, len(cc.Servers))
	for _, s := range cc.Servers {
		c.servers = append(c.servers, net.JoinHostPort(s, cc.Port))
	}

	return nil
}

// AddTrustAnchorFile installs every DS/DNSKEY found in path. Returns
// an error if the file is missing or inaccessible — callers map this
// onto a TrustAnchorMissing classification.
func (c *Context) AddTrustAnchorFile(path string) error {
	anchors, err := ParseAnchorFile(path)
	if err != nil {
		return err
	}

	c.anchors = append(c.anchors, anchors...)

	return nil
}

// AddTrustAnchor installs a single presentation-format DS/DNSKEY
// string as a trust point for this context.
func (c *Context) AddTrustAnchor(presentation string) error {
	anchor, err := ParseAnchorString(presentation)
	if err != nil {
		return err
	}

	c.anchors = append(c.anchors, anchor)

	return nil
}

// LoadForwardZone configures this context to send every query to
// addr ("ip:port" or bare ip, defaulting to port 53) regardless of
// name, the in-memory equivalent of the forward-zone/forward-first
// scratch config file package forwardzone writes and unlinks on disk
// for resolver libraries that can only be configured from a file.
func (c *Context) LoadForwardZone(zone, addr string) {
	c.forwardZone = dns.Fqdn(zone)
	c.forwardAddr = withDefaultPort(addr)
}

func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}

	return net.JoinHostPort(addr, "53")
}

func (c *Context) server() (string, error) {
	if c.forwardAddr != "" {
		return c.forwardAddr, nil
	}

	if len(c.servers) > 0 {
		return c.servers[0], nil
	}

	return "", fmt.Errorf("no upstream server configured")
}

// Resolve performs the DNS query and, if a trust anchor is installed,
// validates the response against it. It never returns a non-nil error
// for an ordinary DNS-level failure (timeout, SERVFAIL, NXDOMAIN) —
// those are reported as Result{Status: StatusError}, mirroring
// ub_ctx.resolve's (status, result) return shape. A non-nil error
// means the context itself is unusable (no server configured).
func (c *Context) Resolve(ctx context.Context, name string, qtype uint16) (*Result, error) {
	server, err := c.server()
	if err != nil {
		return nil, err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.SetEdns0(ednsUDPSize, true)

	client := &dns.Client{Timeout: exchangeTimeout}

	resp, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil || resp.Rcode != dns.RcodeSuccess {
		return &Result{Status: StatusError}, nil
	}

	result := &Result{
		Status:   StatusSuccess,
		HaveData: len(resp.Answer) > 0,
		Answer:   resp.Answer,
	}

	if len(c.anchors) == 0 {
		return result, nil
	}

	secure, bogus, err := c.validate(ctx, server, resp.Answer)
	if err != nil {
		return result, nil
	}

	result.Secure = secure
	result.Bogus = bogus

	return result, nil
}

// validate implements the island-of-trust check described in
// SPEC_FULL.md §6.4: query the DNSKEY RRset at the anchor's owner
// name, match a KSK against the installed anchor, verify that
// DNSKEY RRset's self-signature, then verify the answer's RRSIG with
// one of the now-trusted keys.
func (c *Context) validate(ctx context.Context, server string, answer []dns.RR) (secure, bogus bool, err error) {
	owner := c.anchors[0].Owner

	dnskeyMsg := new(dns.Msg)
	dnskeyMsg.SetQuestion(owner, dns.TypeDNSKEY)
	dnskeyMsg.SetEdns0(ednsUDPSize, true)

	client := &dns.Client{Timeout: exchangeTimeout}

	dnskeyResp, _, err := client.ExchangeContext(ctx, dnskeyMsg, server)
	if err != nil || dnskeyResp.Rcode != dns.RcodeSuccess {
		return false, false, nil // can't obtain DNSKEY: indistinguishable from "zone unsigned" here -> insecure
	}

	keys, sigs := splitDNSKEYs(dnskeyResp.Answer)
	if len(keys) == 0 {
		return false, false, nil
	}

	ksk := matchKSK(keys, c.anchors)
	if ksk == nil {
		// DNSKEY RRset published, but none matches our trust anchor: the
		// chain of trust to this zone is broken.
		return false, true, nil
	}

	if !isSupportedAlgorithm(ksk.Algorithm) {
		return false, false, nil // unsupported algorithm: insecure, not bogus
	}

	dnskeyRRs := make([]dns.RR, 0, len(keys))
	for _, k := range keys {
		dnskeyRRs = append(dnskeyRRs, k)
	}

	if !verifySigned(dnskeyRRs, sigs, []*dns.DNSKEY{ksk}) {
		return false, true, nil
	}

	if len(answer) == 0 {
		// empty answer: nothing to verify a signature over; HaveData
		// already reports the emptiness, Secure is simply not asserted.
		return false, false, nil
	}

	rrset, answerSigs := splitRRSIGs(answer)
	if len(answerSigs) == 0 {
		return false, false, nil // unsigned answer: insecure, not bogus
	}

	supported := false
	for _, sig := range answerSigs {
		supported = supported || isSupportedAlgorithm(sig.Algorithm)
	}

	if !supported {
		return false, false, nil // only unsupported algorithms: insecure, not bogus
	}

	if verifySigned(rrset, answerSigs, keys) {
		return true, false, nil
	}

	return false, true, nil
}

func splitDNSKEYs(rrs []dns.RR) (keys []*dns.DNSKEY, sigs []*dns.RRSIG) {
	for _, rr := range rrs {
		switch v := rr.(type) {
		case *dns.DNSKEY:
			keys = append(keys, v)
		case *dns.RRSIG:
			sigs = append(sigs, v)
		}
	}

	return keys, sigs
}
