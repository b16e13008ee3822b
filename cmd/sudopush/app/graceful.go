package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sudopush/sudopush/pkg/log"
	"github.com/sudopush/sudopush/pkg/ssh"
)

// GracefulShutdownHandler handles graceful shutdown for commands that use a Manager
type GracefulShutdownHandler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	manager  *ssh.Manager
	exitFunc func(int) // Allow injection of exit function for testing
}

// NewGracefulShutdownHandler creates a new graceful shutdown handler
func NewGracefulShutdownHandler() *GracefulShutdownHandler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &GracefulShutdownHandler{
		ctx:      ctx,
		cancel:   cancel,
		exitFunc: os.Exit, // Default to os.Exit
	}

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start signal handling goroutine
	go handler.handleSignals(sigChan)

	return handler
}

// SetManager sets the manager whose clients are closed on shutdown
func (h *GracefulShutdownHandler) SetManager(manager *ssh.Manager) {
	h.manager = manager
}

// Context returns the context that will be cancelled on shutdown
func (h *GracefulShutdownHandler) Context() context.Context {
	return h.ctx
}

// Close performs cleanup and cancels the context
func (h *GracefulShutdownHandler) Close() {
	h.cancel()
}

// SetExitFunc sets a custom exit function (useful for testing)
func (h *GracefulShutdownHandler) SetExitFunc(exitFunc func(int)) {
	h.exitFunc = exitFunc
}

// handleSignals handles OS signals for graceful shutdown
func (h *GracefulShutdownHandler) handleSignals(sigChan chan os.Signal) {
	sig := <-sigChan
	log.Infof("Received signal %v, initiating graceful shutdown...", sig)

	if h.manager != nil {
		log.Infof("Closing SSH connections...")
		h.manager.CloseAll()
	}

	h.cancel()
	h.exitFunc(0)
}
