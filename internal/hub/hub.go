package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/simmer-app/simmer-backend/internal/middleware"
	"github.com/simmer-app/simmer-backend/internal/syncdoc"
)

// Hub hosts the authoritative document for every collection. Connected
// clients converge on it through the sync protocol; changed documents are
// checkpointed to storage on a fixed interval and at shutdown.
type Hub struct {
	storage            *Storage
	metrics            *Metrics
	logger             *slog.Logger
	checkpointInterval time.Duration

	docs sync.Map // collection id -> *document
}

// document pairs a collection doc with the heads it was last saved at.
type document struct {
	doc *automerge.Doc

	mu         sync.Mutex
	savedHeads string
}

// New creates a Hub on the given storage
func New(storage *Storage, logger *slog.Logger, checkpointInterval time.Duration) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if checkpointInterval <= 0 {
		checkpointInterval = 5 * time.Second
	}
	return &Hub{
		storage:            storage,
		metrics:            NewMetrics(),
		logger:             logger,
		checkpointInterval: checkpointInterval,
	}
}

// Boot loads every checkpointed collection into memory
func (h *Hub) Boot(ctx context.Context) error {
	records, err := h.storage.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, record := range records {
		doc, err := automerge.Load(record.Content)
		if err != nil {
			return fmt.Errorf("failed to load collection %s: %w", record.ID, err)
		}
		h.docs.Store(record.ID, &document{doc: doc, savedHeads: syncdoc.HeadsKey(doc)})
		if recipes, err := syncdoc.Decode(doc); err == nil {
			h.metrics.CollectionRecipes.WithLabelValues(record.ID).Set(float64(len(recipes)))
		}
	}

	h.logger.Info("loaded collections from storage", "count", len(records))
	return nil
}

// Run checkpoints changed documents until ctx is cancelled, then writes a
// final checkpoint
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.checkpointInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Checkpoint(ctx)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			h.Checkpoint(shutdownCtx)
			cancel()
			return
		}
	}
}

// Checkpoint writes every document whose heads moved since its last save
func (h *Hub) Checkpoint(ctx context.Context) {
	h.docs.Range(func(key, value any) bool {
		id := key.(string)
		d := value.(*document)

		heads := syncdoc.HeadsKey(d.doc)
		d.mu.Lock()
		changed := heads != d.savedHeads
		d.mu.Unlock()
		if !changed {
			return true
		}

		if err := h.storage.Upsert(ctx, id, d.doc.Save()); err != nil {
			h.logger.Error("failed to checkpoint collection", "collection", id, "err", err)
			return true
		}

		d.mu.Lock()
		d.savedHeads = heads
		d.mu.Unlock()

		h.metrics.CheckpointsTotal.Inc()
		if recipes, err := syncdoc.Decode(d.doc); err == nil {
			h.metrics.CollectionRecipes.WithLabelValues(id).Set(float64(len(recipes)))
		}
		h.logger.Info("checkpointed collection", "collection", id, "heads", heads)
		return true
	})
}

func (h *Hub) getOrCreate(id string) *document {
	if value, ok := h.docs.Load(id); ok {
		return value.(*document)
	}
	value, _ := h.docs.LoadOrStore(id, &document{doc: automerge.New()})
	return value.(*document)
}

func (h *Hub) lookup(id string) (*document, bool) {
	value, ok := h.docs.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*document), true
}

// Handler returns the hub's HTTP surface
func (h *Hub) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			m := httpsnoop.CaptureMetrics(handler, writer, request)
			h.logger.Info("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
		})
	})

	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(h.handleHealthz)
	r.Methods(http.MethodGet).Path("/metrics").Handler(h.metrics.Handler())
	r.Methods(http.MethodGet).Path("/collections").HandlerFunc(h.handleListCollections)
	r.Methods(http.MethodGet).Path("/collections/{id}/latest").HandlerFunc(h.handleLatest)
	r.Methods(http.MethodGet).Path("/collections/{id}/snapshot").HandlerFunc(h.handleSnapshot)
	r.Methods(http.MethodGet).Path("/collections/{id}/sync").HandlerFunc(h.handleSync)
	r.Methods(http.MethodDelete).Path("/collections/{id}").HandlerFunc(h.handleDelete)

	return middleware.ErrorHandler(r)
}

func (h *Hub) handleHealthz(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "application/json")
	_, _ = writer.Write([]byte(`{"status":"ok"}`))
}

// collectionInfo is one row of the admin collection listing.
type collectionInfo struct {
	ID      string `json:"id"`
	Heads   string `json:"heads"`
	Recipes int    `json:"recipes"`
}

func (h *Hub) handleListCollections(writer http.ResponseWriter, request *http.Request) {
	infos := make([]collectionInfo, 0)
	h.docs.Range(func(key, value any) bool {
		id := key.(string)
		d := value.(*document)
		info := collectionInfo{ID: id, Heads: syncdoc.HeadsKey(d.doc)}
		if recipes, err := syncdoc.Decode(d.doc); err == nil {
			info.Recipes = len(recipes)
		}
		infos = append(infos, info)
		return true
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(map[string]any{"collections": infos})
}

func (h *Hub) handleLatest(writer http.ResponseWriter, request *http.Request) {
	d, ok := h.lookup(mux.Vars(request)["id"])
	if !ok {
		http.Error(writer, "collection not found", http.StatusNotFound)
		return
	}

	writer.Header().Set("Content-Type", "application/octet-stream")
	if _, err := writer.Write(d.doc.Save()); err != nil {
		h.logger.Error("failed to write document", "err", err)
	}
}

func (h *Hub) handleSnapshot(writer http.ResponseWriter, request *http.Request) {
	id := mux.Vars(request)["id"]
	d, ok := h.lookup(id)
	if !ok {
		http.Error(writer, "collection not found", http.StatusNotFound)
		return
	}

	recipes, err := syncdoc.Decode(d.doc)
	if err != nil {
		h.logger.Error("failed to decode collection", "collection", id, "err", err)
		http.Error(writer, "failed to decode collection", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(map[string]any{"id": id, "recipes": recipes})
}

func (h *Hub) handleDelete(writer http.ResponseWriter, request *http.Request) {
	id := mux.Vars(request)["id"]
	h.docs.Delete(id)
	h.metrics.CollectionRecipes.DeleteLabelValues(id)
	if err := h.storage.Delete(request.Context(), id); err != nil {
		h.logger.Error("failed to delete collection", "collection", id, "err", err)
		http.Error(writer, "failed to delete collection", http.StatusInternalServerError)
		return
	}

	// Sessions already attached keep their document until they reconnect.
	writer.WriteHeader(http.StatusNoContent)
}

func (h *Hub) handleSync(writer http.ResponseWriter, request *http.Request) {
	id := mux.Vars(request)["id"]
	d := h.getOrCreate(id)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade", "err", err)
		return
	}

	h.metrics.SessionsActive.Inc()
	defer h.metrics.SessionsActive.Dec()
	h.logger.Info("sync session opened", "collection", id)

	syncState := automerge.NewSyncState(d.doc)
	err = syncdoc.Run(request.Context(), conn, syncState, syncdoc.RunOptions{
		OnUpdate: func() { h.metrics.MessagesTotal.WithLabelValues("in").Inc() },
		OnSend:   func() { h.metrics.MessagesTotal.WithLabelValues("out").Inc() },
	})
	if err != nil {
		h.logger.Error("sync session failed", "collection", id, "err", err)
		return
	}
	h.logger.Info("sync session closed", "collection", id)
}
