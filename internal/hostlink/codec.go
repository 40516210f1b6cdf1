package hostlink

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// #region json-codec

// CodecName is the gRPC content subtype the host link speaks.
const CodecName = "json"

// jsonCodec carries host-link messages as JSON so page hosts can call the
// service without generated protobuf stubs.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// #endregion json-codec
