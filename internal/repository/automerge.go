package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/simmer-app/simmer-backend/internal/syncdoc"
	"github.com/simmer-app/simmer-backend/internal/types"
)

const (
	defaultReconnectWait = 5 * time.Second
	bootstrapTimeout     = 10 * time.Second
)

// AutomergeConfig configures an automerge-backed repository.
type AutomergeConfig struct {
	// HubURL is the base http(s) URL of the sync hub.
	HubURL string
	// CollectionID names the document to sync against.
	CollectionID string
	// DocPath, when set, is a file the document is snapshotted to so the
	// replica can start from local state before the hub is reachable.
	DocPath string
	// FlushInterval is passed through to the sync loop.
	FlushInterval time.Duration
	// ReconnectWait is the pause between connection attempts.
	ReconnectWait time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// AutomergeRepository keeps the collection in a local automerge document
// and converges it with the hub's copy over a websocket. Saves apply to
// the local document immediately and reach other replicas asynchronously;
// the repository works offline and catches up when the hub returns.
type AutomergeRepository struct {
	cfg    AutomergeConfig
	logger *slog.Logger

	mu        sync.Mutex
	doc       *automerge.Doc
	lastHeads string
	onRemote  func([]types.Recipe)
	started   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAutomerge builds the local document for the collection, preferring a
// DocPath snapshot, then the hub's latest copy, then an empty document.
func NewAutomerge(ctx context.Context, cfg AutomergeConfig) (*AutomergeRepository, error) {
	if cfg.HubURL == "" {
		return nil, errors.New("hub URL is required")
	}
	if cfg.CollectionID == "" {
		return nil, errors.New("collection id is required")
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = defaultReconnectWait
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := &AutomergeRepository{cfg: cfg, logger: cfg.Logger}

	doc, err := r.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	// Each replica needs its own actor id, otherwise two replicas started
	// from the same snapshot would collide on the same change sequence.
	id := uuid.New()
	_ = doc.SetActorID(hex.EncodeToString(id[:]))
	r.doc = doc
	r.lastHeads = syncdoc.HeadsKey(doc)
	return r, nil
}

func (r *AutomergeRepository) bootstrap(ctx context.Context) (*automerge.Doc, error) {
	if r.cfg.DocPath != "" {
		data, err := os.ReadFile(r.cfg.DocPath)
		switch {
		case err == nil:
			doc, err := automerge.Load(data)
			if err == nil {
				r.logger.Info("loaded collection snapshot", "path", r.cfg.DocPath, "collection", r.cfg.CollectionID)
				return doc, nil
			}
			r.logger.Warn("ignoring unreadable collection snapshot", "path", r.cfg.DocPath, "error", err)
		case !errors.Is(err, os.ErrNotExist):
			r.logger.Warn("failed to read collection snapshot", "path", r.cfg.DocPath, "error", err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()
	latest, err := url.JoinPath(r.cfg.HubURL, "collections", r.cfg.CollectionID, "latest")
	if err != nil {
		return nil, fmt.Errorf("invalid hub URL: %w", err)
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, latest, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bootstrap request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		// The hub being down must not keep a replica from starting; an
		// empty document merges cleanly once the connection comes back.
		r.logger.Warn("sync hub unreachable, starting empty", "error", err)
		return automerge.New(), nil
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read hub document: %w", err)
		}
		doc, err := automerge.Load(data)
		if err != nil {
			return nil, fmt.Errorf("failed to load hub document: %w", err)
		}
		r.logger.Info("bootstrapped collection from hub", "collection", r.cfg.CollectionID, "bytes", len(data))
		return doc, nil
	case http.StatusNotFound:
		return automerge.New(), nil
	default:
		return nil, fmt.Errorf("unexpected hub response %d fetching latest document", resp.StatusCode)
	}
}

// Load decodes the collection from the local document.
func (r *AutomergeRepository) Load(ctx context.Context) ([]types.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return syncdoc.Decode(r.doc)
}

// Save applies the snapshot to the local document. The sync loop carries
// the resulting changes to the hub in the background.
func (r *AutomergeRepository) Save(ctx context.Context, recipes []types.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed, err := syncdoc.Apply(r.doc, recipes)
	if err != nil {
		return fmt.Errorf("failed to apply snapshot to document: %w", err)
	}
	if !changed {
		return nil
	}
	r.lastHeads = syncdoc.HeadsKey(r.doc)
	r.writeSnapshotLocked()
	return nil
}

// Subscribe starts the background sync loop. It may be called once.
func (r *AutomergeRepository) Subscribe(ctx context.Context, fn func([]types.Recipe)) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("already subscribed")
	}
	r.started = true
	r.onRemote = fn
	r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.syncLoop(runCtx)
	return nil
}

// Close stops the sync loop and writes a final document snapshot.
func (r *AutomergeRepository) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.mu.Lock()
	r.writeSnapshotLocked()
	r.mu.Unlock()
	return nil
}

func (r *AutomergeRepository) syncLoop(ctx context.Context) {
	defer r.wg.Done()
	for {
		if err := r.syncOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("sync connection failed", "collection", r.cfg.CollectionID, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.cfg.ReconnectWait):
		}
	}
}

func (r *AutomergeRepository) syncOnce(ctx context.Context) error {
	wsURL, err := r.syncURL()
	if err != nil {
		return err
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial sync hub: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	r.logger.Info("connected to sync hub", "collection", r.cfg.CollectionID)

	r.mu.Lock()
	state := automerge.NewSyncState(r.doc)
	r.mu.Unlock()
	return syncdoc.Run(ctx, conn, state, syncdoc.RunOptions{
		FlushInterval: r.cfg.FlushInterval,
		OnUpdate:      r.deliver,
	})
}

// deliver hands the decoded collection to the subscriber when a received
// sync message moved the document's heads. Saves of this replica update
// lastHeads themselves, so their echo never comes back around.
func (r *AutomergeRepository) deliver() {
	r.mu.Lock()
	heads := syncdoc.HeadsKey(r.doc)
	if heads == r.lastHeads {
		r.mu.Unlock()
		return
	}
	r.lastHeads = heads
	recipes, err := syncdoc.Decode(r.doc)
	fn := r.onRemote
	r.writeSnapshotLocked()
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("failed to decode synced collection", "collection", r.cfg.CollectionID, "error", err)
		return
	}
	if fn != nil {
		fn(recipes)
	}
}

func (r *AutomergeRepository) writeSnapshotLocked() {
	if r.cfg.DocPath == "" {
		return
	}
	if err := os.WriteFile(r.cfg.DocPath, r.doc.Save(), 0o600); err != nil {
		r.logger.Warn("failed to write collection snapshot", "path", r.cfg.DocPath, "error", err)
	}
}

func (r *AutomergeRepository) syncURL() (string, error) {
	u, err := url.Parse(r.cfg.HubURL)
	if err != nil {
		return "", fmt.Errorf("invalid hub URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported hub URL scheme %q", u.Scheme)
	}
	u = u.JoinPath("collections", r.cfg.CollectionID, "sync")
	return u.String(), nil
}
