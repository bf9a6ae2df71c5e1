package browser

import (
	"encoding/json"
	"os"
	"path/filepath"

	"jobbots/common/errors"

	"github.com/playwright-community/playwright-go"
)

// storedCookie is the on-disk form, matching the driver's own cookie JSON.
type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// CookiesPath is the file a site's cookies are kept in under dir.
func CookiesPath(dir, site string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, site+"_cookies.json")
}

func writeCookieFile(path string, cookies []storedCookie) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Internal("creating cookies dir", err)
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return errors.Internal("encoding cookies", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Internal("writing cookies", err)
	}
	return nil
}

// readCookieFile reports false with no error when path does not exist.
func readCookieFile(path string) ([]storedCookie, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Internal("reading cookies", err)
	}
	var cookies []storedCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, false, errors.InvalidInput("decoding cookies "+path, err)
	}
	return cookies, true, nil
}

func fromDriverCookies(in []playwright.Cookie) []storedCookie {
	out := make([]storedCookie, 0, len(in))
	for _, c := range in {
		sc := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			sc.SameSite = string(*c.SameSite)
		}
		out = append(out, sc)
	}
	return out
}

func toDriverCookies(in []storedCookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(in))
	for _, c := range in {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			Expires:  playwright.Float(c.Expires),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		if c.SameSite != "" {
			sameSite := playwright.SameSiteAttribute(c.SameSite)
			oc.SameSite = &sameSite
		}
		out = append(out, oc)
	}
	return out
}

// SaveCookies writes the context's cookies to the session's cookie file.
func (s *Session) SaveCookies() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Unavailable("browser session closed", nil)
	}
	return s.saveCookies()
}

func (s *Session) saveCookies() error {
	if s.opts.CookiesPath == "" {
		return errors.InvalidInput("no cookies path configured", nil)
	}
	cookies, err := s.context.Cookies()
	if err != nil {
		return driverError("reading cookies", err)
	}
	return writeCookieFile(s.opts.CookiesPath, fromDriverCookies(cookies))
}

// LoadCookies restores cookies from the session's cookie file. It reports
// false when there was nothing to restore.
func (s *Session) LoadCookies() (bool, error) {
	if s.opts.CookiesPath == "" {
		return false, nil
	}
	cookies, ok, err := readCookieFile(s.opts.CookiesPath)
	if err != nil || !ok {
		return false, err
	}
	if err := s.context.AddCookies(toDriverCookies(cookies)); err != nil {
		return false, driverError("adding cookies", err)
	}
	return true, nil
}
