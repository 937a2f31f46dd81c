// Package clubv1 defines the club.v1 gRPC API: request and response messages,
// service descriptors, clients and the JSON codec they travel over.
package clubv1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the content-subtype club.v1 messages are sent with
// (content-type "application/grpc+json").
const CodecName = "json"

func init() {
	encoding.RegisterCodec(codec{})
}

// codec marshals club.v1 messages as JSON. Protobuf messages sent over the
// same subtype (health checks from JSON clients) go through protojson.
type codec struct{}

func (codec) Name() string { return CodecName }

func (codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return b, nil
}

func (codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return nil
}

// WithJSONCodec is the call option clients need to talk to club.v1 services.
// The generated-style clients in this package add it on every call.
func WithJSONCodec() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
