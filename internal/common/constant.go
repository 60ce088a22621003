package common

// AccessTokenHeaderName is the gRPC metadata key carrying the identity
// provider's access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// CodecName is the gRPC content subtype used between client and server.
const CodecName = "json"
