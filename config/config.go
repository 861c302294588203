// Package config loads ResolverConfig — the resolv.conf path, public
// trust anchor file, Namecoin RPC endpoint and scratch directory —
// plus the ambient logging/API/metrics sections a complete repository
// needs.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/namecoin/bcresolve/log"
	"gopkg.in/yaml.v2"
)

// Namecoin holds the Namecoin node JSON-RPC endpoint: host, port,
// user, password, and the request timeout (source default 60s).
type Namecoin struct {
	Host     string   `yaml:"host" default:"127.0.0.1"`
	Port     uint16   `yaml:"port" default:"8336"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	Timeout  Duration `yaml:"timeout" default:"60s"`
}

// HTTP configures the query API server started by the serve command (SPEC_FULL.md §6.6).
type HTTP struct {
	Listen string `yaml:"listen" default:":8080"`
}

// Metrics configures the optional Prometheus endpoint (SPEC_FULL.md §6.7).
type Metrics struct {
	Enable bool   `yaml:"enable" default:"false"`
	Path   string `yaml:"path" default:"/metrics"`
}

// Config is the complete, immutable resolver configuration. It is
// constructed once by the caller and never mutated during resolution.
type Config struct {
	// ResolvConf is the system stub resolver config used when resolving
	// nameserver A records under the public trust anchor.
	ResolvConf string `yaml:"resolv_conf" default:"/etc/resolv.conf"`

	// DNSSECRootKey is the path to the public DNSSEC trust anchor file.
	DNSSECRootKey string `yaml:"dnssec_root_key" default:"/usr/local/etc/unbound/root.key"`

	// TempDir is the scratch directory for forward-zone config files.
	// Empty means "use the OS default temp directory" (os.TempDir()).
	TempDir string `yaml:"temp_dir"`

	Namecoin Namecoin `yaml:"namecoin"`
	Log      log.Config `yaml:"log"`
	HTTP     HTTP       `yaml:"http"`
	Metrics  Metrics    `yaml:"metrics"`
}

// NewConfig loads configuration from path, applying defaults for any
// field the file doesn't set. A missing file is not an error — the
// caller gets an all-defaults Config, mirroring the Python
// NamecoinResolver constructor's keyword-argument defaults.
func NewConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("can't read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("can't parse config file %s: %w", path, err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("can't apply config defaults: %w", err)
	}

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	return cfg, nil
}
