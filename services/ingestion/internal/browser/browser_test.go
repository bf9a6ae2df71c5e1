package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobbots/common/errors"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDriverEnv(t *testing.T) {
	t.Run("paths set", func(t *testing.T) {
		env := DriverEnv(DriverOptions{
			BrowsersPath: "/opt/ms-playwright",
			NodeJSPath:   "/usr/bin/node",
		})
		assert.Equal(t, "/opt/ms-playwright", env["PLAYWRIGHT_BROWSERS_PATH"])
		assert.Equal(t, "/usr/bin/node", env["PLAYWRIGHT_NODEJS_PATH"])
		assert.Equal(t, "go", env["PW_LANG_NAME"])
		assert.NotEmpty(t, env["PW_LANG_NAME_VERSION"])
		assert.NotEmpty(t, env["PW_CLI_DISPLAY_VERSION"])
	})

	t.Run("paths unset", func(t *testing.T) {
		env := DriverEnv(DriverOptions{})
		assert.NotContains(t, env, "PLAYWRIGHT_BROWSERS_PATH")
		assert.NotContains(t, env, "PLAYWRIGHT_NODEJS_PATH")
		assert.Contains(t, env, "PW_LANG_NAME")
	})
}

func TestLaunchOptionsDefaults(t *testing.T) {
	opts := LaunchOptions{Args: []string{"--no-sandbox", AutomationControlledArg}}.withDefaults()

	require.NotNil(t, opts.Headless)
	assert.True(t, *opts.Headless)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultActionTimeout, opts.ActionTimeout)
	assert.Equal(t, "zh-CN", opts.Locale)
	assert.Equal(t, []string{AutomationControlledArg, "--no-sandbox"}, opts.Args)

	headed := false
	opts = LaunchOptions{Headless: &headed}.withDefaults()
	assert.False(t, *opts.Headless)
}

func TestTimeoutMillis(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, 2000.0, timeoutMillis(ctx, 2*time.Second, time.Minute))
	assert.Equal(t, 60000.0, timeoutMillis(ctx, 0, time.Minute))

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	got := timeoutMillis(ctx, 10*time.Second, time.Minute)
	assert.LessOrEqual(t, got, 500.0)
	assert.Greater(t, got, 0.0)
}

func TestCookieFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := CookiesPath(filepath.Join(dir, "cookies"), "boss")
	assert.Equal(t, filepath.Join(dir, "cookies", "boss_cookies.json"), path)

	_, ok, err := readCookieFile(path)
	require.NoError(t, err)
	assert.False(t, ok)

	lax := playwright.SameSiteAttributeLax
	driver := []playwright.Cookie{{
		Name:     "__zp_stoken__",
		Value:    "abc",
		Domain:   ".zhipin.com",
		Path:     "/",
		Expires:  1.7e9,
		HttpOnly: true,
		SameSite: lax,
	}}
	require.NoError(t, writeCookieFile(path, fromDriverCookies(driver)))

	stored, ok, err := readCookieFile(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored, 1)
	assert.Equal(t, "Lax", stored[0].SameSite)

	restored := toDriverCookies(stored)
	require.Len(t, restored, 1)
	assert.Equal(t, "__zp_stoken__", restored[0].Name)
	assert.Equal(t, ".zhipin.com", *restored[0].Domain)
	assert.True(t, *restored[0].HttpOnly)
	require.NotNil(t, restored[0].SameSite)
	assert.Equal(t, *lax, *restored[0].SameSite)
}

func TestReadCookieFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ganji_cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ok, err := readCookieFile(path)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errors.ErrTypeInvalidInput))
}

func TestCookiesPathDisabled(t *testing.T) {
	assert.Empty(t, CookiesPath("", "boss"))
}

func TestLaunchWithoutDriver(t *testing.T) {
	d := NewDriver(DriverOptions{}, zap.NewNop())
	_, err := d.Launch(LaunchOptions{})
	assert.True(t, errors.Is(err, errors.ErrTypeUnavailable))
	assert.NoError(t, d.Stop())
}
