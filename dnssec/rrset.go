package dnssec

import (
	"time"

	"github.com/miekg/dns"
)

// clockSkewTolerance matches unbound/BIND's default signature
// validity-window slack.
const clockSkewTolerance = time.Hour

// isSupportedAlgorithm reports whether alg is one Go's crypto stack
// (via miekg/dns) can verify. Per RFC 4035 §2.2, unsupported
// algorithms must be treated as Insecure, never Bogus.
func isSupportedAlgorithm(alg uint8) bool {
	switch alg {
	case dns.RSASHA1, dns.RSASHA1NSEC3SHA1, dns.RSASHA256, dns.RSASHA512,
		dns.ECDSAP256SHA256, dns.ECDSAP384SHA384, dns.ED25519, dns.ED448:
		return true
	default:
		return false
	}
}

// splitRRSIGs separates an RRset into the covered records and their
// RRSIGs.
func splitRRSIGs(rrs []dns.RR) (covered []dns.RR, sigs []*dns.RRSIG) {
	for _, rr := range rrs {
		if sig, ok := rr.(*dns.RRSIG); ok {
			sigs = append(sigs, sig)
		} else {
			covered = append(covered, rr)
		}
	}

	return covered, sigs
}

// findMatchingDNSKEY returns the DNSKEY matching the RRSIG's key tag
// and algorithm, or nil. Per RFC 4034 §2.1.2 the Protocol field must
// be 3.
func findMatchingDNSKEY(keys []*dns.DNSKEY, keyTag uint16, algorithm uint8) *dns.DNSKEY {
	const dnskeyProtocol = 3

	for _, key := range keys {
		if key.Protocol != dnskeyProtocol {
			continue
		}

		if key.KeyTag() == keyTag && key.Algorithm == algorithm {
			return key
		}
	}

	return nil
}

// verifySigned checks every RRSIG covering rrset against the
// candidate keys, within the clock-skew-tolerant validity window.
// Returns true as soon as one signature verifies.
func verifySigned(rrset []dns.RR, sigs []*dns.RRSIG, keys []*dns.DNSKEY) bool {
	if len(rrset) == 0 || len(sigs) == 0 {
		return false
	}

	now := time.Now()

	for _, sig := range sigs {
		if !isSupportedAlgorithm(sig.Algorithm) {
			continue
		}

		key := findMatchingDNSKEY(keys, sig.KeyTag, sig.Algorithm)
		if key == nil {
			continue
		}

		inception := time.Unix(int64(sig.Inception), 0).Add(-clockSkewTolerance)
		expiration := time.Unix(int64(sig.Expiration), 0).Add(clockSkewTolerance)

		if now.Before(inception) || now.After(expiration) {
			continue
		}

		if err := sig.Verify(key, rrset); err == nil {
			return true
		}
	}

	return false
}

// keyMatchesAnchor reports whether key is the DS or DNSKEY anchor's
// trust point: for a DS anchor, key's computed digest must match; for
// a DNSKEY anchor, the key material must match byte-for-byte.
func keyMatchesAnchor(key *dns.DNSKEY, anchor Anchor) bool {
	switch rr := anchor.RR.(type) {
	case *dns.DNSKEY:
		return key.Flags == rr.Flags && key.Protocol == rr.Protocol &&
			key.Algorithm == rr.Algorithm && key.PublicKey == rr.PublicKey

	case *dns.DS:
		ds := key.ToDS(rr.DigestType)
		if ds == nil {
			return false
		}

		return ds.KeyTag == rr.KeyTag && ds.Algorithm == rr.Algorithm &&
			ds.DigestType == rr.DigestType &&
			equalFoldHex(ds.Digest, rr.Digest)

	default:
		return false
	}
}

func equalFoldHex(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]

		if ca >= 'a' && ca <= 'z' {
			ca -= 'a' - 'A'
		}

		if cb >= 'a' && cb <= 'z' {
			cb -= 'a' - 'A'
		}

		if ca != cb {
			return false
		}
	}

	return true
}

// matchKSK returns the first DNSKEY (with the SEP bit set) whose
// trust matches one of the installed anchors.
func matchKSK(keys []*dns.DNSKEY, anchors []Anchor) *dns.DNSKEY {
	for _, key := range keys {
		if key.Flags&dns.SEP == 0 {
			continue
		}

		for _, anchor := range anchors {
			if keyMatchesAnchor(key, anchor) {
				return key
			}
		}
	}

	return nil
}
