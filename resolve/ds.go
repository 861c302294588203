package resolve

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/namecoin/bcresolve/namecoin"
)

var hexDigestPattern = regexp.MustCompile(`^[0-9a-fA-F]*$`)

// canonicalizeDS turns a blockchain DS tuple into a presentation-format
// trust anchor line: digest_material is hex if it matches
// hexDigestPattern, verbatim; otherwise it is standard base64, decoded
// and re-encoded as uppercase hex.
func canonicalizeDS(sld string, entry namecoin.DSEntry) (string, error) {
	var hexDigest string

	if hexDigestPattern.MatchString(entry.DigestMaterial) {
		hexDigest = entry.DigestMaterial
	} else {
		raw, err := base64.StdEncoding.DecodeString(entry.DigestMaterial)
		if err != nil {
			return "", fmt.Errorf("resolve: can't decode DS digest_material as base64: %w", err)
		}

		hexDigest = strings.ToUpper(hex.EncodeToString(raw))
	}

	return fmt.Sprintf("%s IN DS %d %d %d %s", sld, entry.KeyTag, entry.Algorithm, entry.DigestType, hexDigest), nil
}
