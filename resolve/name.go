package resolve

import "strings"

// validateName applies spec's name-acceptance rule: trim one trailing
// dot, require a ".bit" suffix, require at least two labels, and
// return the canonical SLD ("{label}.bit.") used for the rest of the
// pipeline.
func validateName(name string) (sld string, err error) {
	trimmed := strings.TrimSuffix(name, ".")

	if !strings.HasSuffix(trimmed, ".bit") {
		return "", ErrInvalidName
	}

	labels := strings.Split(trimmed, ".")
	if len(labels) < 2 {
		return "", ErrInvalidName
	}

	sldLabel := labels[len(labels)-2]

	return sldLabel + ".bit.", nil
}
