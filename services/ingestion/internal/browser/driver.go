package browser

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"jobbots/common/errors"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const playwrightModule = "github.com/playwright-community/playwright-go"

type DriverOptions struct {
	// BrowsersPath overrides where browser binaries are looked up.
	BrowsersPath string
	// NodeJSPath points at the node binary that runs the driver.
	NodeJSPath string
	// DriverDirectory is where the driver bundle lives or is installed.
	DriverDirectory string
	// Install downloads the driver and Chromium before starting.
	Install bool
}

// DriverEnv returns the variables the driver process reads at start-up.
// Unset paths are left out so the driver falls back to its own defaults.
func DriverEnv(opts DriverOptions) map[string]string {
	env := map[string]string{
		"PW_LANG_NAME":           "go",
		"PW_LANG_NAME_VERSION":   strings.TrimPrefix(runtime.Version(), "go"),
		"PW_CLI_DISPLAY_VERSION": bindingVersion(),
	}
	if opts.BrowsersPath != "" {
		env["PLAYWRIGHT_BROWSERS_PATH"] = opts.BrowsersPath
	}
	if opts.NodeJSPath != "" {
		env["PLAYWRIGHT_NODEJS_PATH"] = opts.NodeJSPath
	}
	return env
}

func bindingVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == playwrightModule {
			return strings.TrimPrefix(dep.Version, "v")
		}
	}
	return "unknown"
}

// Driver owns the running Playwright driver process. Sessions launched
// from it must be closed before Stop.
type Driver struct {
	mu     sync.Mutex
	opts   DriverOptions
	pw     *playwright.Playwright
	logger *zap.Logger
}

func NewDriver(opts DriverOptions, logger *zap.Logger) *Driver {
	return &Driver{opts: opts, logger: logger.Named("browser")}
}

func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw != nil {
		return nil
	}

	for k, v := range DriverEnv(d.opts) {
		if err := os.Setenv(k, v); err != nil {
			return errors.Internal(fmt.Sprintf("setting %s", k), err)
		}
	}

	runOpts := &playwright.RunOptions{
		DriverDirectory: d.opts.DriverDirectory,
		Browsers:        []string{"chromium"},
		Verbose:         false,
		Stdout:          d.output(),
		Stderr:          d.output(),
	}

	if d.opts.Install {
		d.logger.Info("installing playwright driver",
			zap.String("driver_dir", d.opts.DriverDirectory))
		if err := playwright.Install(runOpts); err != nil {
			return errors.Unavailable("installing playwright", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return errors.Unavailable("starting playwright driver", err)
	}
	d.pw = pw

	d.logger.Info("playwright driver started")
	return nil
}

func (d *Driver) output() io.Writer {
	if d.logger.Core().Enabled(zap.DebugLevel) {
		return zap.NewStdLog(d.logger.Named("driver")).Writer()
	}
	return io.Discard
}

func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw == nil {
		return nil
	}
	err := d.pw.Stop()
	d.pw = nil
	if err != nil {
		return errors.Internal("stopping playwright driver", err)
	}
	d.logger.Info("playwright driver stopped")
	return nil
}

func (d *Driver) running() (*playwright.Playwright, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pw == nil {
		return nil, errors.Unavailable("playwright driver not started", nil)
	}
	return d.pw, nil
}
