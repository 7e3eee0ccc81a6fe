package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/cli"
	"github.com/aretw0/props/internal/presentation/tui"
	httpAdapter "github.com/aretw0/props/pkg/adapters/http"
	"github.com/aretw0/props/pkg/observability"
	"github.com/aretw0/props/pkg/records"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the declared models over HTTP: model descriptions, OpenAPI schemas,
decoding and, unless --store=none, a record store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		trusted, _ := cmd.Flags().GetBool("trusted")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		p, err := cli.Open(cmd.Context(), options(cmd), metrics.Hooks())
		if err != nil {
			return err
		}

		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithLogger(p.Logger),
			httpAdapter.WithVersion(props.Version),
			httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		}
		if trusted {
			handlerOpts = append(handlerOpts, httpAdapter.WithTrustedInput())
		}

		storeOpts := storeOptions(cmd)
		storeOpts.ClassKey = p.Codec.ClassKey()
		if storeOpts.Kind != "none" {
			persistence, err := cli.OpenStore(storeOpts)
			if err != nil {
				return err
			}
			defer persistence.Close()

			mgrOpts := []records.Option{
				records.WithCodec(p.Codec),
				records.WithLogger(p.Logger),
			}
			if persistence.Locker != nil {
				mgrOpts = append(mgrOpts, records.WithLocker(persistence.Locker))
			}
			if trusted {
				mgrOpts = append(mgrOpts, records.WithTrustedStore())
			}
			handlerOpts = append(handlerOpts, httpAdapter.WithRecords(records.NewManager(persistence.Store, mgrOpts...)))
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(p.Codec, handlerOpts...),
		}

		if !noBanner && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting props server on %s\n", srv.Addr)
			fmt.Printf("Serving %d models from: %s\n", len(p.Models), options(cmd).Defs)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				p.Logger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Println("props server stopped gracefully")
			return nil
		}
	},
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	flags := cmd.Flags()
	var opts cli.StoreOptions
	opts.Kind, _ = flags.GetString("store")
	opts.Path, _ = flags.GetString("store-path")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.RedisPassword = os.Getenv("PROPS_REDIS_PASSWORD")
	opts.RedisDB, _ = flags.GetInt("redis-db")
	opts.RedisPrefix, _ = flags.GetString("redis-prefix")
	opts.TTL, _ = flags.GetDuration("ttl")
	opts.EncryptionKey = os.Getenv("PROPS_ENCRYPTION_KEY")
	opts.FallbackKeys, _ = flags.GetStringSlice("fallback-key")
	opts.PIIPatterns, _ = flags.GetStringSlice("pii")
	return opts
}

func init() {
	rootCmd.AddCommand(serveCmd)
	flags := serveCmd.Flags()
	flags.StringP("port", "p", "8080", "Port to listen on")
	flags.Bool("trusted", false, "Honour class tags in request bodies and stored records")
	flags.Bool("no-banner", false, "Do not print the banner")
	flags.String("store", cli.StoreMemory, "Record store: memory, file, redis or none")
	flags.String("store-path", "", "Directory of the file store (default .props/records)")
	flags.String("redis-addr", "localhost:6379", "Redis address")
	flags.Int("redis-db", 0, "Redis database")
	flags.String("redis-prefix", "", "Redis key prefix")
	flags.Duration("ttl", 0, "Record expiration (redis only)")
	flags.StringSlice("fallback-key", nil, "Older base64 encryption keys still accepted for reads")
	flags.StringSlice("pii", nil, "Regular expressions of field names to mask before saving")
}
