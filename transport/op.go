// File: transport/op.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Op is a transport-level operation not tied to any stream.

package transport

import (
	"fmt"
	"strings"

	"github.com/momentics/hioload-transport/core/concurrency"
)

// SendPingArgs requests a keepalive ping.
type SendPingArgs struct {
	// OnInitiate fires when the ping is written.
	OnInitiate *concurrency.Closure
	// OnAck fires when the peer acknowledges it.
	OnAck *concurrency.Closure
}

// Op describes connectivity-level work for a transport.
type Op struct {
	// OnConsumed fires once the transport has finished with the op.
	OnConsumed *concurrency.Closure

	// GoawayError, when set, sends a goaway carrying it.
	GoawayError error
	// DisconnectWithError, when set, closes the transport with it.
	DisconnectWithError error

	// BindPollingEntity binds the transport's descriptors.
	BindPollingEntity *PollingEntity

	SendPing SendPingArgs

	ResetConnectBackoff bool
}

func (op *Op) String() string {
	var parts []string
	if op.OnConsumed != nil {
		parts = append(parts, "ON_CONSUMED["+op.OnConsumed.Name()+"]")
	}
	if op.GoawayError != nil {
		parts = append(parts, fmt.Sprintf("SEND_GOAWAY:%v", op.GoawayError))
	}
	if op.DisconnectWithError != nil {
		parts = append(parts, fmt.Sprintf("DISCONNECT:%v", op.DisconnectWithError))
	}
	if op.BindPollingEntity != nil {
		parts = append(parts, "BIND_"+op.BindPollingEntity.String())
	}
	if op.SendPing.OnInitiate != nil || op.SendPing.OnAck != nil {
		parts = append(parts, "SEND_PING")
	}
	if op.ResetConnectBackoff {
		parts = append(parts, "RESET_CONNECT_BACKOFF")
	}
	if len(parts) == 0 {
		return "EMPTY"
	}
	return strings.Join(parts, " ")
}
