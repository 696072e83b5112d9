package syncdoc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/gorilla/websocket"
)

// DefaultFlushInterval is how often pending sync messages are generated
// when no option overrides it.
const DefaultFlushInterval = time.Second

// RunOptions configure Run.
type RunOptions struct {
	// FlushInterval is how often the writer checks the document for new
	// changes to send. Defaults to DefaultFlushInterval.
	FlushInterval time.Duration
	// OnUpdate is called after every received message that the document
	// absorbed. It runs on the read loop, so it must not block.
	OnUpdate func()
	// OnSend is called after every sync message written to the peer. It
	// runs on the write loop, so it must not block.
	OnSend func()
}

// Run drives the automerge sync protocol for one document over an open
// websocket connection until the peer disconnects or ctx is cancelled.
// Both ends of a connection run this same loop, each against its own
// document. The connection is closed by the time Run returns.
func Run(ctx context.Context, conn *websocket.Conn, state *automerge.SyncState, opts RunOptions) error {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var readErr, writeErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					readErr = fmt.Errorf("failed to read sync message: %w", err)
				}
				return
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			if _, err := state.ReceiveMessage(data); err != nil {
				readErr = fmt.Errorf("failed to apply sync message: %w", err)
				return
			}
			if opts.OnUpdate != nil {
				opts.OnUpdate()
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		// Closing the connection unblocks the reader once the writer is
		// done; cancel first so the reader knows the exit was deliberate.
		defer func() {
			cancel()
			_ = conn.Close()
		}()
		ticker := time.NewTicker(opts.FlushInterval)
		defer ticker.Stop()
		for {
			for {
				msg, valid := state.GenerateMessage()
				if !valid {
					break
				}
				if err := conn.WriteMessage(websocket.BinaryMessage, msg.Bytes()); err != nil {
					if ctx.Err() == nil {
						writeErr = fmt.Errorf("failed to write sync message: %w", err)
					}
					return
				}
				if opts.OnSend != nil {
					opts.OnSend()
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	wg.Wait()
	if readErr != nil {
		return readErr
	}
	return writeErr
}
