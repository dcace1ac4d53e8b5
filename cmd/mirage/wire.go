package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/config"
	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/identity"
	"github.com/alfredjeanlab/mirage/internal/launcher"
	"github.com/alfredjeanlab/mirage/internal/metrics"
	"github.com/alfredjeanlab/mirage/internal/mirage"
	"github.com/alfredjeanlab/mirage/internal/model"
	"github.com/alfredjeanlab/mirage/internal/store"
	"github.com/alfredjeanlab/mirage/internal/store/file"
	"github.com/alfredjeanlab/mirage/internal/store/memory"
	"github.com/alfredjeanlab/mirage/internal/store/postgres"
	"github.com/alfredjeanlab/mirage/internal/store/s3store"
)

// openSlot opens the save slot backend selected in c.
func openSlot(ctx context.Context, c *config.Config) (store.Slot, error) {
	switch c.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StorePostgres:
		return postgres.New(c.DatabaseURL)
	case config.StoreS3:
		return s3store.New(ctx, c.S3Bucket, c.S3Prefix, c.S3Region, c.S3Endpoint)
	default:
		dir := c.StateDir
		if dir == "" {
			d, err := file.DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return file.New(dir)
	}
}

func slotKey(c *config.Config) store.Key {
	return store.Key{Name: c.SlotName, UserIndex: c.SlotIndex}
}

// loadDevice returns the device identifier, creating and saving one on first use.
func loadDevice(ctx context.Context, c *config.Config, log *slog.Logger) (model.DeviceID, store.Slot, error) {
	slot, err := openSlot(ctx, c)
	if err != nil {
		return "", nil, fmt.Errorf("opening %s save slot: %w", c.Store, err)
	}
	ids := identity.NewStore(slot, slotKey(c), log)
	id, err := ids.Bootstrap(ctx, identity.NewUUID)
	if err != nil {
		slot.Close()
		return "", nil, err
	}
	return id, slot, nil
}

// wallet bundles a mirage.Client with the resources it was built from.
type wallet struct {
	*mirage.Client
	slot    store.Slot
	emitter *events.Emitter
	stats   *metrics.Collector
}

// openWallet builds a client for the configured backend.
func openWallet(ctx context.Context, c *config.Config, log *slog.Logger) (*wallet, error) {
	device, slot, err := loadDevice(ctx, c, log)
	if err != nil {
		return nil, err
	}

	var pub events.Publisher
	if c.NATSURL != "" {
		p, err := events.NewNATSPublisher(c.NATSURL)
		if err != nil {
			slot.Close()
			return nil, err
		}
		pub = p
		log.Debug("events enabled", "nats_url", c.NATSURL)
	}
	emitter := events.NewEmitter(pub, log)

	stats := metrics.New(prometheus.NewRegistry())
	api := client.NewHTTPClient(c.BaseURL,
		client.WithAgent(c.Agent),
		client.WithTimeout(c.HTTPTimeout),
		client.WithObserver(stats),
	)

	var l launcher.Launcher = launcher.OS{}
	if noBrowser {
		l = launcher.Print{W: os.Stderr}
	}

	mc := mirage.New(device, api,
		mirage.WithLauncher(l),
		mirage.WithEmitter(emitter),
		mirage.WithLogger(log),
		mirage.WithPollAttempts(c.PollAttempts),
		mirage.WithPollInterval(c.PollInterval),
		mirage.WithPollObserver(stats),
	)
	log.Debug("wallet ready", "device_id", device.String(), "base_url", api.BaseURL())
	return &wallet{Client: mc, slot: slot, emitter: emitter, stats: stats}, nil
}

// Close releases the client, the event connection and the save slot.
func (w *wallet) Close() {
	if err := w.Client.Close(); err != nil {
		logger.Warn("closing client", "err", err)
	}
	if err := w.emitter.Close(); err != nil {
		logger.Warn("closing event publisher", "err", err)
	}
	if err := w.slot.Close(); err != nil {
		logger.Warn("closing save slot", "err", err)
	}
	if showStats {
		printStats(os.Stderr, w.stats.RequestCounts())
	}
}

func printStats(out io.Writer, counts map[string]float64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%-40s %.0f\n", k, counts[k])
	}
}

// connected opens a wallet and establishes a session.
func connected(ctx context.Context) (*wallet, model.Session, error) {
	w, err := openWallet(ctx, cfg, logger)
	if err != nil {
		return nil, model.Session{}, err
	}
	sess, err := w.Connect(ctx)
	if err != nil {
		w.Close()
		return nil, model.Session{}, err
	}
	return w, sess, nil
}
