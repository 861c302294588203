package resolve

import (
	"strings"

	"github.com/miekg/dns"
)

// firstAddress returns the first A/AAAA address found among answer,
// skipping RRSIGs and anything else.
func firstAddress(answer []dns.RR) (string, bool) {
	for _, rr := range answer {
		switch v := rr.(type) {
		case *dns.A:
			return v.A.String(), true
		case *dns.AAAA:
			return v.AAAA.String(), true
		}
	}

	return "", false
}

// extractValue implements stage 5's final switch: pull the answer
// apart by qtype, or fail with ErrUnsupportedType for anything outside
// {A, AAAA, CNAME, TXT, MX}. A nil, nil return means "no usable
// record of the requested type in this answer" — the caller treats
// that as an empty-result fallthrough: if extraction yields a value,
// return it immediately, otherwise continue to the next NS.
func extractValue(qtype uint16, answer []dns.RR) (*Value, error) {
	switch qtype {
	case dns.TypeA, dns.TypeAAAA:
		addr, ok := firstAddress(answer)
		if !ok {
			return nil, nil
		}

		return &Value{Kind: KindAddress, Address: addr}, nil

	case dns.TypeCNAME:
		for _, rr := range answer {
			if v, ok := rr.(*dns.CNAME); ok {
				return &Value{Kind: KindDomain, Domain: v.Target}, nil
			}
		}

		return nil, nil

	case dns.TypeTXT:
		for _, rr := range answer {
			if v, ok := rr.(*dns.TXT); ok {
				return &Value{Kind: KindDomain, Domain: strings.Join(v.Txt, "")}, nil
			}
		}

		return nil, nil

	case dns.TypeMX:
		for _, rr := range answer {
			if v, ok := rr.(*dns.MX); ok {
				return &Value{Kind: KindMX, Preference: v.Preference, Exchange: v.Mx}, nil
			}
		}

		return nil, nil

	default:
		return nil, ErrUnsupportedType
	}
}
