package pb

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// jsonCodec marshals the plain Go structs in this package as JSON on the
// wire. Registered under the name "proto" so that a gRPC transport with no
// explicit content-subtype (the default for a plain grpc.Dial/grpc.NewServer
// pair) picks it up automatically — the same trick a hand-rolled
// non-protoc service reaches for when it wants the standard
// google.golang.org/grpc transport without generated descriptor-backed
// messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "proto" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("pb: marshalling %T: %w", v, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("pb: unmarshalling into %T: %w", v, err)
	}
	return nil
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
