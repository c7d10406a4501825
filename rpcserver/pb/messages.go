// Package pb holds the wire types and gRPC service scaffolding for the
// exposerpc service described in exposerpc.proto. No protoc compiler was
// available in this environment, so this package is hand-authored rather
// than generated: the message types are plain Go structs (no protobuf
// descriptor machinery), and codec.go registers a JSON wire codec so the
// standard google.golang.org/grpc transport can marshal them without a
// .proto-compiled message type. exposerpc.proto documents the same shapes
// as the source of truth a real protoc run would compile from.
package pb

// DynamicValue is the wire representation of spec.md §6's DynamicValue sum
// type: {null, bool, number, string, object, array}. Go's encoding/json
// already decodes arbitrary JSON into exactly this shape via `any`
// (map[string]any for objects, []any for arrays, float64 for numbers), so
// DynamicValue is not a distinct Go type — fields below are typed `any`
// directly.

// InvokeRequest is the wire request for InvokeCallable and each message of
// InvokeCallableStream.
type InvokeRequest struct {
	ContainerName      string   `json:"containerName"`
	MemberName         string   `json:"memberName"`
	Arguments          []any    `json:"arguments,omitempty"`
	ParameterTypeNames []string `json:"parameterTypeNames,omitempty"`
}

// InvokeResponse is the wire response for InvokeCallable and each message of
// InvokeCallableStream. Error is populated instead of Result for a
// streamed request that failed without tearing down the stream (§4.4).
type InvokeResponse struct {
	Result any         `json:"result,omitempty"`
	Error  *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo carries a recoverable per-message error on a stream, since a
// gRPC status can only terminate the whole stream.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteRequest is the wire request for WriteDatum.
type WriteRequest struct {
	ContainerName string `json:"containerName"`
	DatumName     string `json:"datumName"`
	Value         any    `json:"value"`
}

// WriteResponse is the wire response for WriteDatum.
type WriteResponse struct {
	PreviousValue any `json:"previousValue"`
}

// DescribeRequest is the (empty) wire request for DescribeAll.
type DescribeRequest struct{}

// DescribeResponse is the wire response for DescribeAll.
type DescribeResponse struct {
	Members []MemberInfo `json:"members"`
}

// ParameterInfo describes one formal parameter in introspection output.
type ParameterInfo struct {
	Name     string `json:"name"`
	TypeName string `json:"typeName"`
	Index    int    `json:"index"`
}

// MemberInfo is one entry of DescribeResponse, per spec.md §4.5.
type MemberInfo struct {
	ContainerName  string          `json:"containerName"`
	MemberName     string          `json:"memberName"`
	Secured        bool            `json:"secured"`
	ReturnTypeName string          `json:"returnTypeName"`
	Parameters     []ParameterInfo `json:"parameters"`
	Description    string          `json:"description"`
	Kind           string          `json:"kind"` // "CALLABLE" or "DATUM"
	Writeable      bool            `json:"writeable"`
	Static         bool            `json:"static"`
	Immutable      bool            `json:"immutable"`
}
