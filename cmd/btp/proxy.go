package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/blazor-tools/btp/internal/config"
	"github.com/blazor-tools/btp/internal/errors"
	"github.com/blazor-tools/btp/pkg/archive"
	"github.com/blazor-tools/btp/pkg/proxy"
	"github.com/spf13/cobra"
)

func proxyCmd(opts *globalOptions) *cobra.Command {
	var (
		listen   string
		upstream string
	)

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run the intercepting proxy",
		Long: `Run a reverse proxy in front of a Blazor Server application.

The proxy strips WebSockets from SignalR negotiate responses (see
'btp prefs'), decodes every BlazorPack batch it forwards, and serves
the editor API under the configured prefix (default /_btp).

Examples:
  btp proxy --upstream=http://localhost:5000
  btp proxy --listen=0.0.0.0:8088 --log-level=debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefaults(opts)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Proxy.Listen = listen
			}
			if upstream != "" {
				cfg.Proxy.Upstream = upstream
			}
			return runProxy(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default from btp.json)")
	cmd.Flags().StringVarP(&upstream, "upstream", "u", "", "Blazor Server URL (default from btp.json)")

	return cmd
}

func runProxy(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	target, err := cfg.UpstreamURL()
	if err != nil {
		return err
	}
	scope, err := cfg.ScopeMatcher()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	options := []proxy.Option{
		proxy.WithAPIPrefix(cfg.Proxy.APIPrefix),
		proxy.WithMaxBodySize(cfg.Proxy.MaxBodySize),
		proxy.WithScope(scope),
		proxy.WithPreferences(config.NewPreferences(cfg)),
		proxy.WithStore(store),
		proxy.WithCodec(newCodec(cfg)),
		proxy.WithTracerName(cfg.Tracing.TracerName),
	}
	if cfg.Metrics.Enabled {
		options = append(options, proxy.WithMetrics(proxy.NewMetrics(proxy.WithNamespace(cfg.Metrics.Namespace))))
	}
	srv, err := proxy.New(target, options...)
	if err != nil {
		return errors.New("E080").Wrap(err)
	}

	ln, err := net.Listen("tcp", cfg.Proxy.Listen)
	if err != nil {
		return errors.New("E081").Wrap(err)
	}
	httpServer := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	out := cmd.OutOrStdout()
	success(out, "Proxying http://%s -> %s", ln.Addr(), target)
	info(out, "Editor API: http://%s%s", ln.Addr(), srv.APIPrefix())
	if cfg.Preferences.UseWebSocket {
		info(out, "WebSockets kept in negotiate responses")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- httpServer.Serve(ln) }()

	select {
	case err := <-errc:
		return errors.New("E081").Wrap(err)
	case <-ctx.Done():
	}

	info(out, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openStore builds the configured capture archive.
func openStore(cfg *config.Config) (archive.Store, error) {
	var store archive.Store
	switch cfg.Archive.Backend {
	case config.BackendNone:
		return archive.Nop, nil
	case config.BackendDisk:
		disk, err := archive.NewDiskStore(cfg.ArchiveDir())
		if err != nil {
			return nil, errors.New("E101").Wrap(err)
		}
		store = disk
	case config.BackendS3:
		store = archive.NewS3Store(newS3Client(cfg.Archive), cfg.Archive.Bucket, cfg.Archive.Prefix)
	default:
		return nil, errors.New("E100")
	}
	if cfg.Archive.RatePerSecond > 0 {
		store = archive.NewLimited(store, cfg.Archive.RatePerSecond, cfg.Archive.Burst)
	}
	return store, nil
}

// newS3Client returns an S3 client using credentials from the standard
// AWS_* environment variables.
func newS3Client(ac config.ArchiveConfig) *s3.Client {
	opts := s3.Options{
		Region:      ac.Region,
		Credentials: aws.NewCredentialsCache(envCredentials{}),
	}
	if ac.Endpoint != "" {
		opts.BaseEndpoint = aws.String(ac.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

type envCredentials struct{}

func (envCredentials) Retrieve(ctx context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.Newf(errors.CategoryArchive, "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for the s3 archive")
	}
	return creds, nil
}
