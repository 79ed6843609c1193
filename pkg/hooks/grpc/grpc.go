// Package grpc implements a gRPC-based hook system. For each hook event, the InvokeHook
// procedure of the plone.tus.hooks.v1.HookHandler service is invoked with details about
// the hook type, session and request. Request and response are well-known protobuf
// types, so receivers need no generated code: the request is a google.protobuf.Struct
// and the response a google.protobuf.Empty. RegisterHookHandlerServer registers a Go
// implementation of the service.
package grpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"os"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/FHNW/plone.restapi/pkg/hooks"
)

type GrpcHook struct {
	Endpoint                        string
	MaxRetries                      int
	Backoff                         time.Duration
	Timeout                         time.Duration
	ForwardHeaders                  []string
	Secure                          bool
	ServerTLSCertificateFilePath    string
	ClientTLSCertificateFilePath    string
	ClientTLSCertificateKeyFilePath string

	conn *grpc.ClientConn
}

func (g *GrpcHook) Setup() error {
	grpcOpts := []grpc.DialOption{}

	if g.Secure {
		if g.ServerTLSCertificateFilePath == "" {
			return errors.New("hooks-grpc-secure was set to true but no gRPC server TLS certificate file was provided. A value for hooks-grpc-server-tls-certificate is missing")
		}

		serverCert, err := os.ReadFile(g.ServerTLSCertificateFilePath)
		if err != nil {
			return err
		}

		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(serverCert) {
			return errors.New("no certificate found in " + g.ServerTLSCertificateFilePath)
		}

		tlsConfig := &tls.Config{
			RootCAs: certPool,
		}

		// Use mutual TLS if the client's certificate and key are provided
		if g.ClientTLSCertificateFilePath != "" && g.ClientTLSCertificateKeyFilePath != "" {
			clientCert, err := tls.LoadX509KeyPair(g.ClientTLSCertificateFilePath, g.ClientTLSCertificateKeyFilePath)
			if err != nil {
				return err
			}

			tlsConfig.Certificates = append(tlsConfig.Certificates, clientCert)
		}

		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	opts := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(grpc_retry.BackoffLinear(g.Backoff)),
		grpc_retry.WithMax(uint(g.MaxRetries)),
	}
	grpcOpts = append(grpcOpts, grpc.WithUnaryInterceptor(grpc_retry.UnaryClientInterceptor(opts...)))

	if g.Timeout <= 0 {
		g.Timeout = 30 * time.Second
	}

	conn, err := grpc.NewClient(g.Endpoint, grpcOpts...)
	if err != nil {
		return err
	}
	g.conn = conn
	return nil
}

func (g *GrpcHook) InvokeHook(hookReq hooks.HookRequest) error {
	req, err := marshal(hookReq, g.ForwardHeaders)
	if err != nil {
		return err
	}

	// The request which caused the event has usually been answered already,
	// so its cancellation must not abort the notification.
	ctx := context.Background()
	if hookReq.Event.Context != nil {
		ctx = context.WithoutCancel(hookReq.Event.Context)
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	return g.conn.Invoke(ctx, invokeHookMethod, req, &emptypb.Empty{})
}

// Close closes the connection to the endpoint.
func (g *GrpcHook) Close() error {
	if g.conn == nil {
		return nil
	}
	return g.conn.Close()
}

// marshal converts hookReq into the request message. Only the headers listed
// in forwardHeaders are included, each with its first value.
func marshal(hookReq hooks.HookRequest, forwardHeaders []string) (*structpb.Struct, error) {
	event := hookReq.Event

	metaData := make(map[string]interface{}, len(event.Upload.MetaData))
	for key, value := range event.Upload.MetaData {
		metaData[key] = value
	}

	return structpb.NewStruct(map[string]interface{}{
		"type": string(hookReq.Type),
		"event": map[string]interface{}{
			"upload": map[string]interface{}{
				"id":       event.Upload.ID,
				"length":   event.Upload.Length,
				"offset":   event.Upload.Offset,
				"metaData": metaData,
			},
			"parent":   event.Parent,
			"location": event.Location,
			"httpRequest": map[string]interface{}{
				"method":     event.HTTPRequest.Method,
				"uri":        event.HTTPRequest.URI,
				"remoteAddr": event.HTTPRequest.RemoteAddr,
				"header":     getHeader(event.HTTPRequest.Header, forwardHeaders),
			},
		},
	})
}

func getHeader(httpHeader http.Header, forwardHeaders []string) map[string]interface{} {
	hookHeader := make(map[string]interface{})
	for _, key := range forwardHeaders {
		if val := httpHeader.Get(key); val != "" {
			hookHeader[key] = val
		}
	}
	return hookHeader
}
