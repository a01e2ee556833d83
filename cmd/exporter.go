package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/logging"
	"excalibur-cli/pkg/models"
)

var (
	expPort       string
	serviceAction string // install, uninstall, start, stop
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	server *http.Server
	api    *client.PortalClient
	logger *log.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

const loginRetryDelay = 30 * time.Second

func (p *program) Start(s service.Service) error {
	// Start should not block. The server is built here so Stop never races
	// with the goroutine; serving waits for the initial login.
	registry := prometheus.NewRegistry()
	registry.MustRegister(&PortalCollector{Client: p.api, Logger: p.logger})

	handler := promhttp.HandlerFor(prometheus.Gatherers{registry, metricsRegistry}, promhttp.HandlerOpts{
		ErrorLog: p.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	})
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	p.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", expPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx)
	return nil
}

func (p *program) run(ctx context.Context) {
	defer close(p.done)

	p.logger.Info("attempting initial login", "portal", p.api.Config.SharingURL)
	for {
		_, err := p.api.Login(ctx)
		if err == nil {
			break
		}
		if errors.Is(err, client.ErrAuthenticationFailed) || errors.Is(err, client.ErrMissingArgument) {
			p.logger.Error("initial login failed, collector will report excalibur_up 0", "err", err)
			break
		}
		p.logger.Warn("portal unreachable, retrying", "err", err, "in", loginRetryDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(loginRetryDelay):
		}
	}

	p.logger.Info("exporter listening", "addr", p.server.Addr)
	if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		p.logger.Error("http server error", "err", err)
	}
}

func (p *program) Stop(s service.Service) error {
	p.logger.Info("stopping service")
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			p.logger.Warn("server forced to shutdown", "err", err)
		}
	}
	if p.done != nil {
		select {
		case <-p.done:
		case <-ctx.Done():
		}
	}
	return nil
}

// --- COLLECTOR ---

// PortalCollector scrapes the acting user's content on every collection.
type PortalCollector struct {
	Client *client.PortalClient
	Logger *log.Logger
	mu     sync.Mutex
}

var (
	upDesc = prometheus.NewDesc(
		"excalibur_up", "Was the last scrape of the portal successful.", nil, nil,
	)
	scrapeDurationDesc = prometheus.NewDesc(
		"excalibur_scrape_duration_seconds", "Time taken to scrape the portal.", nil, nil,
	)
	folderCountDesc = prometheus.NewDesc(
		"excalibur_folders_total", "Number of folders owned by the user.", nil, nil,
	)
	itemCountDesc = prometheus.NewDesc(
		"excalibur_items_total", "Items owned by the user grouped by type.", []string{"type"}, nil,
	)
	videoServiceCountDesc = prometheus.NewDesc(
		"excalibur_video_services_total", "Services published on the video server.", nil, nil,
	)
	tokenExpiryDesc = prometheus.NewDesc(
		"excalibur_token_expiry_seconds", "Seconds until the portal token expires.", nil, nil,
	)
)

func (c *PortalCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- scrapeDurationDesc
	ch <- folderCountDesc
	ch <- itemCountDesc
	ch <- videoServiceCountDesc
	ch <- tokenExpiryDesc
}

func (c *PortalCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	success := 1.0

	// 1. Folders and items
	if root, err := withRelogin(ctx, c, func(ctx context.Context) (models.UserContentResponse, error) {
		return c.Client.GetUserContent(ctx, "", 100)
	}); err == nil {
		ch <- prometheus.MustNewConstMetric(folderCountDesc, prometheus.GaugeValue, float64(len(root.Folders)))

		types := map[string]float64{}
		count := func(items []models.Item) {
			for _, it := range items {
				types[it.Type]++
			}
		}
		count(root.Items)
		for _, f := range root.Folders {
			content, err := c.Client.GetUserContent(ctx, f.ID, 100)
			if err != nil {
				success = 0.0
				c.Logger.Warn("error scraping folder", "folder", f.Title, "err", err)
				continue
			}
			count(content.Items)
		}
		for t, n := range types {
			ch <- prometheus.MustNewConstMetric(itemCountDesc, prometheus.GaugeValue, n, t)
		}
	} else {
		success = 0.0
		c.Logger.Warn("error scraping user content", "err", err)
	}

	// 2. Video server, only when configured
	if c.Client.Config.VideoServerURL != "" {
		if services, err := withRelogin(ctx, c, c.Client.ListVideoServices); err == nil {
			ch <- prometheus.MustNewConstMetric(videoServiceCountDesc, prometheus.GaugeValue, float64(len(services)))
		} else {
			success = 0.0
			c.Logger.Warn("error scraping video services", "err", err)
		}
	}

	if exp := c.Client.Session().Expires; !exp.IsZero() {
		ch <- prometheus.MustNewConstMetric(tokenExpiryDesc, prometheus.GaugeValue, time.Until(exp).Seconds())
	}
	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, success)
	ch <- prometheus.MustNewConstMetric(scrapeDurationDesc, prometheus.GaugeValue, time.Since(start).Seconds())
}

// withRelogin retries fetch once after a fresh login when the token was rejected.
func withRelogin[T any](ctx context.Context, c *PortalCollector, fetch func(context.Context) (T, error)) (T, error) {
	res, err := fetch(ctx)
	if err == nil || !isAuthError(err) {
		return res, err
	}
	c.Logger.Info("token rejected, logging in again")
	if _, lerr := c.Client.Login(ctx); lerr != nil {
		return res, lerr
	}
	return fetch(ctx)
}

// --- COMMAND ---

var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Start Prometheus exporter service",
	Long: `Starts a long-running HTTP server that exposes portal content metrics and
the exporter's own request metrics. Can be installed as a system service.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}
		if s.sharingURL == "" {
			return fmt.Errorf("%w: --sharingurl or SHARING_URL", client.ErrMissingArgument)
		}

		api := client.New(client.ClientConfig{
			SharingURL:     s.sharingURL,
			VideoServerURL: s.videoServerURL,
			Username:       conn.user,
			Password:       conn.password,
			CertFile:       conn.certFile,
			KeyFile:        conn.keyFile,
			VerifySSL:      s.paths.VerifySSL,
		})
		api.Metrics = requestMetrics

		svcConfig := &service.Config{
			Name:        "excalibur-exporter",
			DisplayName: "Excalibur Portal Prometheus Exporter",
			Description: "Exposes ArcGIS portal content metrics to Prometheus",
			Arguments:   exporterServiceArgs(s),
		}

		prg := &program{api: api, logger: logging.New("exporter")}
		svc, err := service.New(prg, svcConfig)
		if err != nil {
			return err
		}

		// Service control actions (install, start, stop, uninstall)
		if serviceAction != "" {
			if serviceAction == "install" && conn.certFile == "" && (conn.user == "" || conn.password == "") {
				return fmt.Errorf("%w: --user and --password (or --cert) are required to install the service", client.ErrMissingArgument)
			}
			if err := service.Control(svc, serviceAction); err != nil {
				return fmt.Errorf("failed to %s service: %w", serviceAction, err)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return nil
		}

		// Blocking. Reached when the service manager starts the binary or when run interactively.
		return svc.Run()
	},
}

// exporterServiceArgs is the command line the service manager runs.
func exporterServiceArgs(s settings) []string {
	args := []string{
		"exporter",
		"--sharingurl", s.sharingURL,
		"--port", expPort,
	}
	if s.videoServerURL != "" {
		args = append(args, "--videoserverurl", s.videoServerURL)
	}
	if conn.certFile != "" {
		args = append(args, "--cert", absPath(conn.certFile))
		if conn.keyFile != "" {
			args = append(args, "--key", absPath(conn.keyFile))
		}
	} else {
		args = append(args, "--user", conn.user, "--password", conn.password)
	}
	if pathsFile != "" {
		args = append(args, "--paths", absPath(pathsFile))
	}
	if logFile != "" {
		args = append(args, "--log-file", absPath(logFile))
	}
	return args
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func init() {
	rootCmd.AddCommand(exporterCmd)
	exporterCmd.Flags().StringVar(&expPort, "port", "9100", "Port to listen on")
	exporterCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
