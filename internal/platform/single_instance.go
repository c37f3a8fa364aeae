package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net"
	"strings"
	"time"

	"meettimer/internal/logfields"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// Requests a second launch can forward to the running host.
const (
	RequestPopup = "popup"
	RequestFocus = "focus"
)

const signalTimeout = 2 * time.Second

// InstanceGuard holds the single host lock. Later launches connect to it
// and forward a one-line request instead of starting a second host.
type InstanceGuard struct {
	listener net.Listener
	address  string
}

// AcquireSingleInstance binds a localhost port derived from appName.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// Serve hands each forwarded request to onRequest until ctx ends or the
// guard is released.
func (guard *InstanceGuard) Serve(ctx context.Context, onRequest func(string)) {
	go func() {
		<-ctx.Done()
		_ = guard.Release()
	}()
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(signalTimeout))
		line, err := bufio.NewReader(conn).ReadString('\n')
		_ = conn.Close()
		if err != nil {
			slog.Debug("Dropped instance request", logfields.Error(err))
			continue
		}
		if request := strings.TrimSpace(line); request != "" {
			onRequest(request)
		}
	}
}

// Signal forwards request to the instance holding the lock for appName.
func Signal(appName, request string) error {
	conn, err := net.DialTimeout("tcp", instanceAddress(appName), signalTimeout)
	if err != nil {
		return fmt.Errorf("connect to running instance: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if _, err := fmt.Fprintln(conn, request); err != nil {
		return fmt.Errorf("send instance request: %w", err)
	}
	return nil
}

// Release frees the lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
