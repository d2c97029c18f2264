/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command emberhttpd runs the server: it loads configuration, binds the
// listeners, and serves connections until an interrupt or terminate
// signal arrives.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nabbar/emberhttp/dispatch"
	"github.com/nabbar/emberhttp/logger"
	loglvl "github.com/nabbar/emberhttp/logger/level"
	"github.com/nabbar/emberhttp/resource"
	"github.com/nabbar/emberhttp/session"
	"github.com/nabbar/emberhttp/webconfig"
	"github.com/nabbar/emberhttp/wmetrics"
	"github.com/nabbar/emberhttp/worker"
)

var (
	flagPort        int
	flagConfig      string
	flagWWWRoot     string
	flagLogFile     string
	flagFileLevel   int
	flagConsoleLvl  int
	flagDisableEmb  bool
	flagDeflate     int
	flagIPv6        bool
	flagMetricsAddr string
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emberhttpd",
		Short:   "A small embeddable HTTP/1.0-1.1 server",
		Version: "0.1.0",
		RunE:    runServer,
	}

	fl := cmd.Flags()
	fl.IntVarP(&flagPort, "port", "p", 0, "listen port 1-60000 (overrides config file)")
	fl.StringVarP(&flagConfig, "config", "c", "", "path to an INI configuration file")
	fl.StringVarP(&flagWWWRoot, "root", "r", "", "document root (overrides config file)")
	fl.StringVarP(&flagLogFile, "logfile", "l", "", "log file path (overrides config file)")
	fl.IntVarP(&flagFileLevel, "file-level", "F", -1, "file log level 0-6 (overrides config file)")
	fl.IntVarP(&flagConsoleLvl, "console-level", "C", -1, "console log level 0-6 (overrides config file)")
	fl.BoolVarP(&flagDisableEmb, "disable-embedded", "D", false, "disable embedded resource serving")
	fl.IntVarP(&flagDeflate, "deflate", "d", -1, "deflate compression level 0-9 (overrides config file)")
	fl.BoolVar(&flagIPv6, "ipv6", false, "also bind an IPv6 listener")
	fl.StringVar(&flagMetricsAddr, "metrics-addr", "", "address to serve Prometheus /metrics on (empty disables it)")
	cmd.Flags().BoolP("version", "v", false, "print version and exit")

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	opts, err := webconfig.Load(flagConfig)
	if err != nil {
		return err
	}
	opts.Merge(buildOverrides())
	if flagDeflate >= 0 {
		opts.Deflate = flagDeflate
	}
	if flagFileLevel >= 0 {
		opts.LogLevelFile = levelName(flagFileLevel)
	}
	if flagConsoleLvl >= 0 {
		opts.LogLevelConsole = levelName(flagConsoleLvl)
	}
	if err = opts.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	log := logger.New(ctx)
	if flagConsoleLvl >= 0 {
		log.SetLevel(loglvl.ParseFromInt(flagConsoleLvl))
	}

	store := session.New(time.Duration(opts.Scripting.SessionTimeout) * time.Second)
	defer store.Close()

	// No embedded assets are bundled with this binary build; a future
	// build tag can swap this for an embed.FS-backed resource.FSProvider
	// without touching the rest of the wiring.
	var resProvider resource.Provider = resource.Disabled{}

	metrics := wmetrics.New(prometheus.DefaultRegisterer)

	wcfg := worker.Config{
		WWWRoot:          opts.WWWRoot,
		ScriptingEnabled: opts.Scripting.Enabled,
		DeflateLevel:     opts.Deflate,
		RecvTimeout:      10 * time.Second,
	}
	wdeps := worker.Deps{
		Sessions:  store,
		Resources: resProvider,
		Metrics:   metrics,
		OnLog: func(format string, args ...any) {
			log.Error(fmt.Sprintf(format, args...), nil)
		},
	}

	ls, err := dispatch.Listen(opts.Port, opts.IPv6)
	if err != nil {
		return err
	}

	d := dispatch.New(ls, func(conn net.Conn) {
		worker.Serve(conn, wcfg, wdeps)
	}, func(format string, args ...any) {
		log.Info(fmt.Sprintf(format, args...), nil)
	})

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		dispatch.WaitForSignal(runCtx)
		cancel()
	}()

	go reportSessionGauge(runCtx, store, metrics)

	if flagMetricsAddr != "" {
		go serveMetrics(runCtx, flagMetricsAddr, log)
	}

	log.Info(fmt.Sprintf("emberhttpd listening on port %d", opts.Port), nil)
	return d.Run(runCtx)
}

// serveMetrics runs a /metrics endpoint against the default Prometheus
// registry until ctx is cancelled. It is a separate plain net/http server
// from the dispatcher's own listeners, since scraping must keep working
// even while the dispatcher is draining connections at shutdown.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(fmt.Sprintf("metrics server: %v", err), nil)
	}
}

// reportSessionGauge keeps wmetrics' ActiveSessions gauge current. The
// session store has no change-notification hook, so this polls on a short
// interval rather than updating the gauge from every Start/Destroy call
// site.
func reportSessionGauge(ctx context.Context, store *session.Store, metrics *wmetrics.Collector) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ActiveSessions.Set(float64(store.Count()))
		}
	}
}

// levelName converts the CLI's 0-6 log level scale (Panic..Nil) to the
// logger package's level name, matching logger/level's own Int() ordering.
func levelName(n int) string {
	return loglvl.Level(n).String()
}

func buildOverrides() *webconfig.Options {
	o := &webconfig.Options{
		Port:    flagPort,
		WWWRoot: flagWWWRoot,
		LogFile: flagLogFile,
		IPv6:    flagIPv6,
	}
	if flagDisableEmb {
		o.DisableEmbeddedRes = true
	}
	return o
}
