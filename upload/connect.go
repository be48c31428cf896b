package upload

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ConnectPublisher publishes events with a connect-go client carrying
// dynamic protobuf messages.
type ConnectPublisher struct {
	client     *connect.Client[dynamicpb.Message, dynamicpb.Message]
	httpClient *http.Client
}

var _ Publisher = (*ConnectPublisher)(nil)

// NewConnectPublisher creates a publisher for cfg. A nil httpClient gets
// a client suited to the protocol: plaintext gRPC endpoints need HTTP/2
// without TLS.
func NewConnectPublisher(cfg *TransportConfig, httpClient *http.Client) (*ConnectPublisher, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, ErrNoTransport
	}

	opts := []connect.ClientOption{
		connect.WithSchema(publishMethod),
		connect.WithResponseInitializer(initDynamic),
	}

	switch cfg.Protocol {
	case "", ProtocolGRPC:
		opts = append(opts, connect.WithGRPC())
	case ProtocolGRPCWeb:
		opts = append(opts, connect.WithGRPCWeb())
	case ProtocolConnect:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProtocol, cfg.Protocol)
	}

	compression, err := compressionOptions(cfg.Compression)
	if err != nil {
		return nil, err
	}
	opts = append(opts, compression...)

	if httpClient == nil {
		httpClient = defaultHTTPClient(cfg)
	}

	url := strings.TrimSuffix(cfg.Endpoint, "/") + PublishEventsProcedure
	return &ConnectPublisher{
		client:     connect.NewClient[dynamicpb.Message, dynamicpb.Message](httpClient, url, opts...),
		httpClient: httpClient,
	}, nil
}

func (p *ConnectPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResponse, error) {
	msg, err := encodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := p.client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, fmt.Errorf("publish events: %w", err)
	}
	return decodeResponse(resp.Msg), nil
}

// Close releases idle connections.
func (p *ConnectPublisher) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// initDynamic gives connect an empty message of the right type to
// unmarshal into; a zero dynamicpb.Message has no descriptor.
func initDynamic(spec connect.Spec, msg any) error {
	dynamic, ok := msg.(*dynamicpb.Message)
	if !ok {
		return nil
	}
	method, ok := spec.Schema.(protoreflect.MethodDescriptor)
	if !ok {
		return fmt.Errorf("invalid schema type %T for %T message", spec.Schema, dynamic)
	}
	desc := method.Output()
	if !spec.IsClient {
		desc = method.Input()
	}
	*dynamic = *dynamicpb.NewMessage(desc)
	return nil
}

func defaultHTTPClient(cfg *TransportConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	grpc := cfg.Protocol == "" || cfg.Protocol == ProtocolGRPC
	if grpc && strings.HasPrefix(cfg.Endpoint, "http://") {
		var protocols http.Protocols
		protocols.SetUnencryptedHTTP2(true)
		transport.Protocols = &protocols
	}
	return &http.Client{Transport: transport}
}
