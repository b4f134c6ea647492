package cli

import (
	"testing"
	"time"
)

func TestSetupSignalHandlerStartsActive(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Error("context cancelled before any signal")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestSetupSignalHandlerDrivesShutdown(t *testing.T) {
	ctx := SetupSignalHandler()

	serverDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(serverDone)
	}()

	select {
	case <-serverDone:
		t.Error("shutdown ran without a signal")
	case <-time.After(10 * time.Millisecond):
	}
}
