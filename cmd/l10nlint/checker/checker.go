// Package checker wires the static validator into a build pipeline: it
// loads the configuration, the resource catalog and the usage feed, runs
// the validation pass and renders the report.
package checker

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lifei6671/l10n"
)

// Options selects the inputs of one check run.
type Options struct {
	// ConfigFile overrides configuration file discovery. Empty means
	// L10N_CONFIG_FILE, then l10n.toml / config.toml, then defaults.
	ConfigFile string
	// Dir overrides the resource root from the configuration.
	Dir string
	// UsagesFile is the YAML usage feed produced by call-site discovery.
	// Empty means only catalog completeness and formatter references are
	// checked.
	UsagesFile string
	// Lenient downgrades missing resource/message findings to warnings.
	Lenient bool
}

// usageFeed is the YAML shape of the call-site feed:
//
//	usages:
//	  - resource: home
//	    key: welcome
//	    args: [first-name]
//	    locales: [en-CA, fr]
//	  - resource: settings/account
//	    key: signin.tooltip
//	    partial: true
type usageFeed struct {
	Usages []l10n.Usage `yaml:"usages"`
}

// LoadUsages reads a usage feed file.
func LoadUsages(path string) ([]l10n.Usage, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read usage feed %q", path)
	}
	var feed usageFeed
	if err := yaml.Unmarshal(src, &feed); err != nil {
		return nil, errors.Wrapf(err, "usage feed %q", path)
	}
	return feed.Usages, nil
}

// Run loads everything and executes the validation pass.
func Run(opts Options) (*l10n.Report, error) {
	cfg := &l10n.Config{Paths: l10n.Paths{Default: "l10n"}}

	configFile := opts.ConfigFile
	if configFile == "" {
		if found, ok := l10n.FindConfig(); ok {
			configFile = found
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = l10n.LoadConfig(configFile); err != nil {
			return nil, err
		}
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = cfg.Path(); err != nil {
			return nil, err
		}
	}

	translator, err := l10n.Load(dir, cfg.Locales)
	if err != nil {
		return nil, err
	}

	var usages []l10n.Usage
	if opts.UsagesFile != "" {
		if usages, err = LoadUsages(opts.UsagesFile); err != nil {
			return nil, err
		}
	}

	return translator.Validate(usages, l10n.ValidateOptions{AllowIncomplete: opts.Lenient})
}
