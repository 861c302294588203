package dnssec

import (
	"crypto"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMatchesAnchorDS(t *testing.T) {
	ksk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: "example.bit.", Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET},
		Flags:     dns.SEP | dns.ZONE,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}

	_, err := ksk.Generate(1024)
	require.NoError(t, err)

	ds := ksk.ToDS(dns.SHA256)
	require.NotNil(t, ds)

	anchor := Anchor{RR: ds, Owner: "example.bit."}
	assert.True(t, keyMatchesAnchor(ksk, anchor))

	anchor.RR.(*dns.DS).Digest = "00"
	assert.False(t, keyMatchesAnchor(ksk, anchor))
}

func TestKeyMatchesAnchorDNSKEY(t *testing.T) {
	ksk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: "example.bit.", Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET},
		Flags:     dns.SEP | dns.ZONE,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}

	_, err := ksk.Generate(1024)
	require.NoError(t, err)

	anchor := Anchor{RR: ksk, Owner: "example.bit."}
	assert.True(t, keyMatchesAnchor(ksk, anchor))
}

func TestMatchKSKRequiresSEPFlag(t *testing.T) {
	zsk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: "example.bit.", Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET},
		Flags:     dns.ZONE,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}

	_, err := zsk.Generate(1024)
	require.NoError(t, err)

	anchor := Anchor{RR: zsk, Owner: "example.bit."}

	assert.Nil(t, matchKSK([]*dns.DNSKEY{zsk}, []Anchor{anchor}))
}

func TestIsSupportedAlgorithm(t *testing.T) {
	assert.True(t, isSupportedAlgorithm(dns.RSASHA256))
	assert.True(t, isSupportedAlgorithm(dns.ED25519))
	assert.False(t, isSupportedAlgorithm(dns.DSA))
}

func TestSplitRRSIGs(t *testing.T) {
	a := &dns.A{Hdr: dns.RR_Header{Name: "ns1.example.bit.", Rrtype: dns.TypeA}}
	sig := &dns.RRSIG{Hdr: dns.RR_Header{Name: "ns1.example.bit.", Rrtype: dns.TypeRRSIG}}

	covered, sigs := splitRRSIGs([]dns.RR{a, sig})
	assert.Len(t, covered, 1)
	assert.Len(t, sigs, 1)
}

func TestVerifySignedEndToEnd(t *testing.T) {
	ksk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: "example.bit.", Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     dns.SEP | dns.ZONE,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}

	priv, err := ksk.Generate(1024)
	require.NoError(t, err)

	a := &dns.A{
		Hdr: dns.RR_Header{Name: "ns1.example.bit.", Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 3600},
		A:   []byte{192, 0, 2, 1},
	}
	rrset := []dns.RR{a}

	sig := &dns.RRSIG{
		Hdr:         dns.RR_Header{Name: "ns1.example.bit.", Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 3600},
		TypeCovered: dns.TypeA,
		Algorithm:   dns.RSASHA256,
		Labels:      3,
		OrigTtl:     3600,
		Expiration:  uint32(time.Now().Add(time.Hour).Unix()),
		Inception:   uint32(time.Now().Add(-time.Hour).Unix()),
		KeyTag:      ksk.KeyTag(),
		SignerName:  "example.bit.",
	}

	require.NoError(t, sig.Sign(priv.(crypto.Signer), rrset))

	assert.True(t, verifySigned(rrset, []*dns.RRSIG{sig}, []*dns.DNSKEY{ksk}))
}

func TestVerifySignedRejectsExpired(t *testing.T) {
	ksk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: "example.bit.", Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     dns.SEP | dns.ZONE,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}

	priv, err := ksk.Generate(1024)
	require.NoError(t, err)

	a := &dns.A{
		Hdr: dns.RR_Header{Name: "ns1.example.bit.", Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 3600},
		A:   []byte{192, 0, 2, 1},
	}
	rrset := []dns.RR{a}

	sig := &dns.RRSIG{
		Hdr:         dns.RR_Header{Name: "ns1.example.bit.", Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 3600},
		TypeCovered: dns.TypeA,
		Algorithm:   dns.RSASHA256,
		Labels:      3,
		OrigTtl:     3600,
		Expiration:  uint32(time.Now().Add(-2 * time.Hour).Unix()),
		Inception:   uint32(time.Now().Add(-4 * time.Hour).Unix()),
		KeyTag:      ksk.KeyTag(),
		SignerName:  "example.bit.",
	}

	require.NoError(t, sig.Sign(priv.(crypto.Signer), rrset))

	assert.False(t, verifySigned(rrset, []*dns.RRSIG{sig}, []*dns.DNSKEY{ksk}))
}
