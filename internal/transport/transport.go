// Package transport defines the boundary to the interception and dispatch
// side of the system. Captured traffic arrives through a packet subscription;
// synthetic traffic leaves through Dispatch. The interception bridge itself
// lives outside this repository.
package transport

import "context"

// Direction tags which side of the protocol produced a captured packet.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// PacketFunc receives one captured wire message with its direction tag.
type PacketFunc func(data []byte, dir Direction)

// Source delivers intercepted traffic. Implementations call the subscribed
// function from their own goroutine; consumers must be safe for that.
type Source interface {
	// OnPacket registers fn and returns an unsubscribe function.
	OnPacket(fn PacketFunc) func()
}

// Transport dispatches raw bytes to the game gateway and returns the raw
// response. An empty response with a nil error means the reply will arrive
// asynchronously through the Source subscription instead.
type Transport interface {
	Dispatch(ctx context.Context, payload []byte, targetURL string) ([]byte, error)
}
