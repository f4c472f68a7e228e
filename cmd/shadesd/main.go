package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/krel404/shades/internal/api"
	"github.com/krel404/shades/internal/config"
	"github.com/krel404/shades/internal/kvstore"
	"github.com/krel404/shades/internal/logger"
	"github.com/krel404/shades/internal/metrics"
	"github.com/krel404/shades/internal/pusher"
	"github.com/krel404/shades/internal/store"
)

const lastSyncKey = "sync.last_completed_at"

var (
	configFile string
	debug      bool
)

func main() {
	flag.StringVar(&configFile, "config", "", "path to config file")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	logg, err := logger.New(debug)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer logg.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		logg.Fatalf("config: %v", err)
	}

	m := metrics.New()

	kv, err := kvstore.Open(cfg.KVPath)
	if err != nil {
		logg.Fatalf("kvstore: %v", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logg.Errorf("kvstore close: %v", err)
		}
	}()

	st := store.NewStore(logg)
	st.OnAfterDispatch(func(action store.Action, s *store.State) {
		m.DispatchTotal.WithLabelValues(fmt.Sprintf("%T", action)).Inc()
		m.PendingMessages.Set(float64(s.Messages.PendingCount()))
	})

	client, err := api.NewClient(logg, st, m, cfg.APIOrigin, cfg.AccessToken)
	if err != nil {
		logg.Fatalf("api client: %v", err)
	}

	bridge := pusher.NewBridge(logg, st, cfg.GatewayURL, cfg.AccessToken, client.UserID())
	bridge.SetStateChangeHandler(func(s pusher.ConnState) {
		if s == pusher.StateConnected {
			m.Connected.Set(1)
		} else {
			m.Connected.Set(0)
		}
	})

	go bridge.Run()

	if raw, ok, err := kv.Get(lastSyncKey); err != nil {
		logg.Warnf("kvstore read: %v", err)
	} else if ok {
		logg.Infof("last sync completed at %s", raw)
	}

	syncCtx, cancelSync := context.WithTimeout(context.Background(), 30*time.Second)
	if err := initialSync(syncCtx, logg, client); err != nil {
		logg.Warnf("initial sync: %v", err)
	} else if err := kv.Set(lastSyncKey, []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
		logg.Warnf("kvstore write: %v", err)
	}
	cancelSync()

	var debugSrv *http.Server
	if cfg.DebugAddr != "" {
		debugSrv = newDebugServer(cfg.DebugAddr, m, st, bridge)
		go func() {
			logg.Infof("debug server on %s", cfg.DebugAddr)
			if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logg.Errorf("debug server: %v", err)
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logg.Infof("received signal: %s", sig)

	if debugSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := debugSrv.Shutdown(shutdownCtx); err != nil {
			logg.Errorf("debug server shutdown: %v", err)
		}
	}

	bridge.Shutdown()
	logg.Info("shutdown complete")
}

// initialSync seeds the store: viewer record, channel list, then the
// users referenced by channel membership.
func initialSync(ctx context.Context, logg *zap.SugaredLogger, client *api.Client) error {
	if _, err := client.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	channels, err := client.FetchChannels(ctx)
	if err != nil {
		return fmt.Errorf("fetch channels: %w", err)
	}

	seen := map[string]struct{}{}
	var userIDs []string
	for _, c := range channels {
		for _, id := range c.MemberUserIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) > 0 {
		if err := client.FetchUsers(ctx, userIDs); err != nil {
			logg.Warnf("fetch users: %v", err)
		}
	}
	return nil
}

func newDebugServer(addr string, m *metrics.Metrics, st *store.Store, bridge *pusher.Bridge) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(m.Reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /debug/state", func(w http.ResponseWriter, r *http.Request) {
		s := st.State()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(map[string]any{
			"connected": bridge.Connected(),
			"channels":  s.Channels.Len(),
			"messages":  s.Messages.Len(),
			"users":     s.Users.Len(),
			"pending":   s.Messages.PendingCount(),
		})
	})

	h := handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet}),
		handlers.AllowedOrigins([]string{"*"}),
	)(mux)
	h = handlers.LoggingHandler(os.Stdout, h)

	return &http.Server{Addr: addr, Handler: h}
}
