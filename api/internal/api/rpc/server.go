package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

const (
	msgMissingData     = "Missing required field: data"
	msgMissingEnvelope = "Missing required fields: data and iv"
	msgMissingItems    = "Missing required field: items (must be an array)"
)

// ==============================================================================
// 1. Server Construction
// ==============================================================================

// NewServer builds a gRPC server exposing the cipher service and the standard
// health service. Extra options (message size limits, credentials) are appended.
func NewServer(logger zerolog.Logger, crypto domain.CryptoService, batch domain.BatchDecrypter, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(logger),
			loggingInterceptor(logger),
		),
	}, opts...)

	srv := grpc.NewServer(opts...)
	RegisterCipherServer(srv, NewCipherService(crypto, batch))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv
}

func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		event := logger.Info()
		switch code {
		case codes.OK:
		case codes.InvalidArgument:
			event = logger.Warn()
		default:
			event = logger.Error()
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(started)).
			Msg("rpc")
		return resp, err
	}
}

func recoveryInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Str("method", info.FullMethod).
					Msg("Recovered from rpc panic")
				resp, err = nil, status.Error(codes.Internal, "Internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// ==============================================================================
// 2. The Cipher Service
// ==============================================================================

type CipherService struct {
	crypto domain.CryptoService
	batch  domain.BatchDecrypter
}

var _ CipherServer = (*CipherService)(nil)

func NewCipherService(crypto domain.CryptoService, batch domain.BatchDecrypter) *CipherService {
	return &CipherService{crypto: crypto, batch: batch}
}

// Encrypt takes {data: <any>} and returns {success, data, iv}.
func (s *CipherService) Encrypt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	value, ok := req.GetFields()["data"]
	if !ok || value.GetKind() == nil {
		return nil, status.Error(codes.InvalidArgument, msgMissingData)
	}
	if _, isNull := value.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, status.Error(codes.InvalidArgument, msgMissingData)
	}

	raw, err := protojson.Marshal(value)
	if err != nil {
		return nil, toStatus("Encryption", fmt.Errorf("%w: %v", domain.ErrSerialization, err))
	}

	env, err := s.crypto.Encrypt(ctx, json.RawMessage(raw))
	if err != nil {
		return nil, toStatus("Encryption", err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"success": structpb.NewBoolValue(true),
		"data":    structpb.NewStringValue(env.Data),
		"iv":      structpb.NewStringValue(env.IV),
	}}, nil
}

// Decrypt takes {data, iv} and returns {success, data: <value>}.
func (s *CipherService) Decrypt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	env := envelopeOf(req)
	if env.Data == "" || env.IV == "" {
		return nil, status.Error(codes.InvalidArgument, msgMissingEnvelope)
	}

	value, err := s.crypto.Decrypt(ctx, &env)
	if err != nil {
		return nil, toStatus("Decryption", err)
	}

	pv := new(structpb.Value)
	if err := fromJSON(value, pv); err != nil {
		return nil, toStatus("Decryption", fmt.Errorf("%w: %v", domain.ErrSerialization, err))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"success": structpb.NewBoolValue(true),
		"data":    pv,
	}}, nil
}

// DecryptBatch takes {items: [{data, iv}...]} and returns {success, results, total, successful}.
func (s *CipherService) DecryptBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	items := req.GetFields()["items"].GetListValue()
	if items == nil {
		return nil, status.Error(codes.InvalidArgument, msgMissingItems)
	}

	envs := make([]domain.Envelope, len(items.GetValues()))
	for i, item := range items.GetValues() {
		// Non-object items stay zero-valued and fail as missing fields.
		envs[i] = envelopeOf(item.GetStructValue())
	}

	report := s.batch.DecryptBatch(ctx, envs)

	out := new(structpb.Struct)
	if err := fromJSON(report, out); err != nil {
		return nil, toStatus("Decryption", fmt.Errorf("%w: %v", domain.ErrSerialization, err))
	}
	out.Fields["success"] = structpb.NewBoolValue(true)
	return out, nil
}

// ==============================================================================
// 3. Helpers
// ==============================================================================

func envelopeOf(s *structpb.Struct) domain.Envelope {
	fields := s.GetFields()
	return domain.Envelope{
		Data: fields["data"].GetStringValue(),
		IV:   fields["iv"].GetStringValue(),
	}
}

// fromJSON round-trips v through JSON so json.Number and custom marshalers
// land in the protobuf well-known types unchanged.
func fromJSON(v any, dst proto.Message) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return protojson.Unmarshal(buf.Bytes(), dst)
}

// toStatus mirrors the HTTP mapping: validation is the caller's fault, the rest is Internal.
func toStatus(op string, err error) error {
	code := codes.Internal
	if domain.KindOf(err) == domain.KindValidation {
		code = codes.InvalidArgument
	}
	return status.Error(code, domain.Describe(op, err))
}
