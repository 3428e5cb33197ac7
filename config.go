package l10n

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// env vars understood by the configuration loader
const (
	// EnvConfigFile points at an explicit configuration file.
	EnvConfigFile = "L10N_CONFIG_FILE"
	// EnvPathEnv selects one of the configured environment paths.
	EnvPathEnv = "L10N_PATH_ENV"
)

// Config carries the resolved configuration input: where the resources
// live and which locales the build declares. A nil Locales requests
// discovery mode.
type Config struct {
	Paths   Paths
	Locales *Locales
}

// Paths is the resource root per environment with a default.
type Paths struct {
	Default      string
	Environments map[string]string
}

// Path resolves the resource root, honoring L10N_PATH_ENV.
func (c *Config) Path() (string, error) {
	env, ok := os.LookupEnv(EnvPathEnv)
	if !ok {
		return c.Paths.Default, nil
	}
	p, ok := c.Paths.Environments[env]
	if !ok {
		return "", errors.Errorf("l10n path for environment %q is not set in the configuration", env)
	}
	return p, nil
}

// configuration file shapes:
//
//	[l10n]
//	path = "l10n"                                        # short form
//	paths = { default = "$ROOT/l10n", release = "/var" } # full form
//	locales = [
//	    "en",
//	    { main = "en-GB", fallback = "en" },
//	]
type configFile struct {
	L10n configSection `toml:"l10n"`
}

type configSection struct {
	Path    toml.Primitive   `toml:"path"`
	Paths   toml.Primitive   `toml:"paths"`
	Locales []toml.Primitive `toml:"locales"`
}

// FindConfig locates the configuration file: L10N_CONFIG_FILE when set,
// otherwise l10n.toml then config.toml next to the working directory. A
// false result means defaults apply.
func FindConfig() (string, bool) {
	if p, ok := os.LookupEnv(EnvConfigFile); ok {
		return p, true
	}
	for _, name := range []string{"l10n.toml", "config.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name, true
		}
	}
	return "", false
}

// LoadConfig reads and parses one configuration file. Relative `$ROOT`
// prefixes in paths resolve against the file's directory.
func LoadConfig(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %q", path)
	}
	cfg, err := ParseConfig(src)
	if err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}

	root := filepath.Dir(path)
	cfg.Paths.Default = replaceRoot(cfg.Paths.Default, root)
	for env, p := range cfg.Paths.Environments {
		cfg.Paths.Environments[env] = replaceRoot(p, root)
	}
	return cfg, nil
}

// ParseConfig parses the `[l10n]` table out of a configuration file body.
// Other tables in the file are ignored.
func ParseConfig(src []byte) (*Config, error) {
	var file configFile
	md, err := toml.Decode(string(src), &file)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Paths: Paths{Default: "l10n"}}

	for _, key := range []string{"path", "paths"} {
		if !md.IsDefined("l10n", key) {
			continue
		}
		prim := file.L10n.Path
		if key == "paths" {
			prim = file.L10n.Paths
		}
		if cfg.Paths, err = decodePaths(md, prim); err != nil {
			return nil, errors.Wrapf(err, "key %q", "l10n."+key)
		}
		break
	}

	if md.IsDefined("l10n", "locales") {
		entries := make([]LocaleEntry, 0, len(file.L10n.Locales))
		for _, prim := range file.L10n.Locales {
			entry, err := decodeLocaleEntry(md, prim)
			if err != nil {
				return nil, errors.Wrap(err, `key "l10n.locales"`)
			}
			entries = append(entries, entry)
		}
		locales, err := NewLocales(entries)
		if err != nil {
			return nil, errors.Wrap(err, `key "l10n.locales"`)
		}
		cfg.Locales = locales
	}

	return cfg, nil
}

// decodePaths accepts the short string form or the full table form with a
// required "default" entry.
func decodePaths(md toml.MetaData, prim toml.Primitive) (Paths, error) {
	var short string
	if err := md.PrimitiveDecode(prim, &short); err == nil {
		return Paths{Default: short}, nil
	}

	var full map[string]string
	if err := md.PrimitiveDecode(prim, &full); err != nil {
		return Paths{}, errors.New(`expected a path string or a table like { default = "l10n" }`)
	}
	def, ok := full["default"]
	if !ok {
		return Paths{}, errors.New(`missing field "default"`)
	}
	delete(full, "default")
	return Paths{Default: def, Environments: full}, nil
}

// decodeLocaleEntry accepts a bare locale string or a { main, fallback }
// table.
func decodeLocaleEntry(md toml.MetaData, prim toml.Primitive) (LocaleEntry, error) {
	var bare string
	if err := md.PrimitiveDecode(prim, &bare); err == nil {
		return NewLocaleEntry(bare, "")
	}

	var full struct {
		Main     string `toml:"main"`
		Fallback string `toml:"fallback"`
	}
	if err := md.PrimitiveDecode(prim, &full); err != nil {
		return LocaleEntry{}, errors.New(`expected a locale like "en-US" or a table like { main = "fr-CA", fallback = "fr" }`)
	}
	if full.Main == "" {
		return LocaleEntry{}, errors.New(`missing field "main"`)
	}
	return NewLocaleEntry(full.Main, full.Fallback)
}

func replaceRoot(p, root string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if rest, ok := strings.CutPrefix(p, "$ROOT"); ok {
		return filepath.Join(root, strings.TrimPrefix(rest, "/"))
	}
	return p
}
