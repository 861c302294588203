// Package forwardzone materializes and removes the scratch
// forward-first config file needed for each authoritative query: a
// file telling the DNSSEC resolver facility to send every query for
// zone straight to nameserver rather than recursing from the root.
//
// Adapted byte-for-byte from original_source's
// NamecoinResolver._build_temp_unbound_config /
// _delete_temp_unbound_config (bcresolver/__init__.py): same template,
// same leading blank line and trailing indentation quirk, so the
// scratch file stays a faithful drop-in for an actual unbound
// forward-zone include even though bcresolve's own DNSSEC context
// loads the zone/nameserver in memory via dnssec.Context.LoadForwardZone.
package forwardzone

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

const configTemplate = "\nforward-zone:\n    name: \"%s\"\n    forward-addr: %s\n    forward-first: yes\n        "

// Write creates a new scratch config file under dir for zone,
// forwarding to nameserver. Returns the path to the created file.
func Write(dir, zone, nameserver string) (string, error) {
	if zone == "" {
		return "", fmt.Errorf("forwardzone: zone is required")
	}

	if nameserver == "" {
		return "", fmt.Errorf("forwardzone: nameserver is required")
	}

	f, err := os.CreateTemp(dir, "unbound-config")
	if err != nil {
		return "", fmt.Errorf("forwardzone: can't create temp config file: %w", err)
	}
	defer f.Close()

	contents := fmt.Sprintf(configTemplate, zone, nameserver)

	if _, err := f.WriteString(contents); err != nil {
		return "", fmt.Errorf("forwardzone: can't write temp config file: %w", err)
	}

	log.Debugf("created temp forward-zone config file: %s", f.Name())

	return f.Name(), nil
}

// Remove deletes path. It is idempotent: a missing file is not an
// error, matching the original's best-effort cleanup.
func Remove(path string) error {
	log.Debugf("removing temp forward-zone config file: %s", path)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("forwardzone: can't remove temp config file %s: %w", path, err)
	}

	return nil
}
