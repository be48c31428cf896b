package upload

import "time"

const (
	// DefaultDeadlineMS bounds every publish call.
	DefaultDeadlineMS = 5000

	// DefaultEndpoint is the public event ingestion edge.
	DefaultEndpoint = "https://edge-grpc.spotify.com"
)

// Protocols understood by NewConnectPublisher.
const (
	ProtocolGRPC    = "grpc"
	ProtocolGRPCWeb = "grpcweb"
	ProtocolConnect = "connect"
)

// Config holds upload parameters.
type Config struct {
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	DeadlineMS   int    `json:"deadline_ms,omitempty" yaml:"deadline_ms,omitempty"`
}

// DefaultConfig returns a Config with the default deadline and no secret.
func DefaultConfig() Config {
	return Config{DeadlineMS: DefaultDeadlineMS}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.ClientSecret != "" {
		c.ClientSecret = source.ClientSecret
	}
	if source.DeadlineMS > 0 {
		c.DeadlineMS = source.DeadlineMS
	}
}

// Deadline returns DeadlineMS as a duration.
func (c *Config) Deadline() time.Duration {
	return time.Duration(c.DeadlineMS) * time.Millisecond
}

// TransportConfig selects where and how batches are published.
type TransportConfig struct {
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Protocol    string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Compression string `json:"compression,omitempty" yaml:"compression,omitempty"`
}

// DefaultTransportConfig returns gRPC to DefaultEndpoint, uncompressed.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Endpoint: DefaultEndpoint,
		Protocol: ProtocolGRPC,
	}
}

// Merge applies non-zero values from source into c.
func (c *TransportConfig) Merge(source *TransportConfig) {
	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.Protocol != "" {
		c.Protocol = source.Protocol
	}
	if source.Compression != "" {
		c.Compression = source.Compression
	}
}
