// Package vinrpc is the wire contract between the field client and the
// remote vehicle store.
//
// Messages are plain Go structs carried over gRPC with a JSON codec
// registered under the "json" content subtype. The service descriptor and
// client stub are written by hand in the shape protoc-gen-go-grpc emits, so
// the server registers with grpc.ServiceRegistrar as usual.
package vinrpc
