// Package pagination splits in-memory result sets into pages for HTTP listings.
package pagination

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultPageSize  = 50
	defaultPageLimit = 500
)

// Config bounds the page sizes a listing serves. PageSize applies when a
// request names none; PageLimit caps what a request may ask for.
type Config struct {
	PageSize  int `toml:"page_size"`
	PageLimit int `toml:"page_limit"`
}

// Env names the environment variables that override Config.
type Env struct {
	PageSize  string
	PageLimit string
}

// Finalize applies environment overrides, fills unset sizes, and validates.
// A malformed environment value is an error rather than silently ignored.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		if err := lookupInt(env.PageSize, &c.PageSize); err != nil {
			return err
		}
		if err := lookupInt(env.PageLimit, &c.PageLimit); err != nil {
			return err
		}
	}
	if c.PageSize == 0 {
		c.PageSize = min(defaultPageSize, max(c.PageLimit, 0))
		if c.PageSize == 0 {
			c.PageSize = defaultPageSize
		}
	}
	if c.PageLimit == 0 {
		c.PageLimit = max(defaultPageLimit, c.PageSize)
	}
	return c.validate()
}

// Merge overwrites sizes set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.PageSize != 0 {
		c.PageSize = overlay.PageSize
	}
	if overlay.PageLimit != 0 {
		c.PageLimit = overlay.PageLimit
	}
}

func (c *Config) validate() error {
	switch {
	case c.PageSize < 1:
		return fmt.Errorf("page_size %d must be positive", c.PageSize)
	case c.PageLimit < c.PageSize:
		return fmt.Errorf("page_limit %d is below page_size %d", c.PageLimit, c.PageSize)
	}
	return nil
}

func lookupInt(name string, dst *int) error {
	if name == "" {
		return nil
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not an integer", name, v)
	}
	*dst = n
	return nil
}
