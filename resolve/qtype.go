package resolve

import "github.com/miekg/dns"

// supportedQTypes is the set the authoritative extractor knows how to
// turn into a Value. A type outside this set is recognized DNS (so it
// passes parseQueryType) but fails extraction with ErrUnsupportedType.
var supportedQTypes = map[uint16]bool{
	dns.TypeA:     true,
	dns.TypeAAAA:  true,
	dns.TypeCNAME: true,
	dns.TypeTXT:   true,
	dns.TypeMX:    true,
}

// parseQueryType converts a DNS type token ("A", "SRV", ...) to its
// numeric form. An unrecognized token is ErrInvalidQueryType; a
// recognized-but-unsupported one (e.g. "SRV") is accepted here and
// rejected later, at extraction time, per spec.
func parseQueryType(token string) (uint16, error) {
	t, ok := dns.StringToType[token]
	if !ok {
		return 0, ErrInvalidQueryType
	}

	return t, nil
}

func isSupportedQueryType(t uint16) bool {
	return supportedQTypes[t]
}
