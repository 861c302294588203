// Package dnssec implements the DNSSEC-validating resolver facility as
// an external collaborator: loading a stub config, loading a trust
// anchor from a file or a presentation-format string, loading a
// forward-zone, and resolving a name under the installed anchor.
//
// Adapted from blocky's resolver/dnssec package (TrustAnchorStore,
// RRSIG/DNSKEY verification helpers), but generalized from blocky's
// root-of-trust/full-chain design to island-of-trust validation: the
// anchor is installed directly at the zone being validated, exactly
// what unbound's ub_ctx_add_ta/ub_ctx_add_ta_file do. The public trust
// anchor anchors "."; the blockchain DS anchors the SLD itself.
package dnssec

import (
	"fmt"
	"os"
	"strings"

	"github.com/miekg/dns"
)

// Anchor is a single trust anchor record: a DS or a DNSKEY RR.
type Anchor struct {
	RR    dns.RR
	Owner string // FQDN this anchor is a trust point for
}

// ParseAnchorFile reads every DS/DNSKEY RR from path (e.g. unbound's
// root.key). Returns an error if path is not a regular, readable file
// — this maps directly onto a TrustAnchorMissing classification.
func ParseAnchorFile(path string) ([]Anchor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("trust anchor file is missing or inaccessible: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("trust anchor path %s is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trust anchor file is missing or inaccessible: %w", err)
	}
	defer f.Close()

	var anchors []Anchor

	zp := dns.NewZoneParser(f, "", path)
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		anchor, err := toAnchor(rr)
		if err != nil {
			continue
		}

		anchors = append(anchors, anchor)
	}

	if err := zp.Err(); err != nil {
		return nil, fmt.Errorf("can't parse trust anchor file %s: %w", path, err)
	}

	return anchors, nil
}

// ParseAnchorString parses a single presentation-format DS or DNSKEY
// RR line, e.g.
// `"{sld}. IN DS {key_tag} {algo} {digest_type} {HEX_DIGEST}"`.
func ParseAnchorString(presentation string) (Anchor, error) {
	rr, err := dns.NewRR(presentation)
	if err != nil {
		return Anchor{}, fmt.Errorf("can't parse trust anchor %q: %w", presentation, err)
	}

	return toAnchor(rr)
}

func toAnchor(rr dns.RR) (Anchor, error) {
	switch rr.(type) {
	case *dns.DS, *dns.DNSKEY:
		return Anchor{RR: rr, Owner: strings.ToLower(dns.Fqdn(rr.Header().Name))}, nil
	default:
		return Anchor{}, fmt.Errorf("trust anchor record must be DS or DNSKEY, got %T", rr)
	}
}
