package pb

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

const serviceName = "qiraa.Reader"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}

// Codec is forced on the server with grpc.ForceServerCodec and on clients with grpc.ForceCodec.
var Codec encoding.Codec = jsonCodec{}

func init() {
	encoding.RegisterCodec(Codec)
}

type ReaderServer interface {
	OpenDocument(context.Context, *OpenDocumentRequest) (*StateResponse, error)
	ChangePage(context.Context, *ChangePageRequest) (*StateResponse, error)
	GoToPage(context.Context, *GoToPageRequest) (*StateResponse, error)
	SetMode(context.Context, *SetModeRequest) (*StateResponse, error)
	Resize(context.Context, *ResizeRequest) (*StateResponse, error)
	Pointer(context.Context, *PointerRequest) (*PointerResponse, error)
	Undo(context.Context, *SessionRequest) (*StateResponse, error)
	Clear(context.Context, *SessionRequest) (*StateResponse, error)
	RenderFrame(context.Context, *SessionRequest) (*RenderFrameResponse, error)
	Analyze(context.Context, *SessionRequest) (*AnalyzeResponse, error)
	SaveCard(context.Context, *SaveCardRequest) (*SaveCardResponse, error)
	CloseSession(context.Context, *SessionRequest) (*CloseSessionResponse, error)
}

// UnimplementedReaderServer can be embedded to have forward compatible implementations.
type UnimplementedReaderServer struct{}

func (UnimplementedReaderServer) OpenDocument(context.Context, *OpenDocumentRequest) (*StateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method OpenDocument not implemented")
}
func (UnimplementedReaderServer) ChangePage(context.Context, *ChangePageRequest) (*StateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ChangePage not implemented")
}
func (UnimplementedReaderServer) GoToPage(context.Context, *GoToPageRequest) (*StateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GoToPage not implemented")
}
func (UnimplementedReaderServer) SetMode(context.Context, *SetModeRequest) (*StateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetMode not implemented")
}
func (UnimplementedReaderServer) Resize(context.Context, *ResizeRequest) (*StateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Resize not implemented")
}
func (UnimplementedReaderServer) Pointer(context.Context, *PointerRequest) (*PointerResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Pointer not implemented")
}
func (UnimplementedReaderServer) Undo(context.Context, *SessionRequest) (*StateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Undo not implemented")
}
func (UnimplementedReaderServer) Clear(context.Context, *SessionRequest) (*StateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Clear not implemented")
}
func (UnimplementedReaderServer) RenderFrame(context.Context, *SessionRequest) (*RenderFrameResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RenderFrame not implemented")
}
func (UnimplementedReaderServer) Analyze(context.Context, *SessionRequest) (*AnalyzeResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Analyze not implemented")
}
func (UnimplementedReaderServer) SaveCard(context.Context, *SaveCardRequest) (*SaveCardResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SaveCard not implemented")
}
func (UnimplementedReaderServer) CloseSession(context.Context, *SessionRequest) (*CloseSessionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CloseSession not implemented")
}

func RegisterReaderServer(s grpc.ServiceRegistrar, srv ReaderServer) {
	s.RegisterService(&Reader_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(ReaderServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReaderServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReaderServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var Reader_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ReaderServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "OpenDocument", Handler: unaryHandler("OpenDocument", ReaderServer.OpenDocument)},
		{MethodName: "ChangePage", Handler: unaryHandler("ChangePage", ReaderServer.ChangePage)},
		{MethodName: "GoToPage", Handler: unaryHandler("GoToPage", ReaderServer.GoToPage)},
		{MethodName: "SetMode", Handler: unaryHandler("SetMode", ReaderServer.SetMode)},
		{MethodName: "Resize", Handler: unaryHandler("Resize", ReaderServer.Resize)},
		{MethodName: "Pointer", Handler: unaryHandler("Pointer", ReaderServer.Pointer)},
		{MethodName: "Undo", Handler: unaryHandler("Undo", ReaderServer.Undo)},
		{MethodName: "Clear", Handler: unaryHandler("Clear", ReaderServer.Clear)},
		{MethodName: "RenderFrame", Handler: unaryHandler("RenderFrame", ReaderServer.RenderFrame)},
		{MethodName: "Analyze", Handler: unaryHandler("Analyze", ReaderServer.Analyze)},
		{MethodName: "SaveCard", Handler: unaryHandler("SaveCard", ReaderServer.SaveCard)},
		{MethodName: "CloseSession", Handler: unaryHandler("CloseSession", ReaderServer.CloseSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "qiraa/reader.proto",
}

// ReaderClient calls the service over a connection using Codec.
type ReaderClient struct {
	cc grpc.ClientConnInterface
}

func NewReaderClient(cc grpc.ClientConnInterface) *ReaderClient {
	return &ReaderClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec)}, opts...)
	if err := cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReaderClient) OpenDocument(ctx context.Context, in *OpenDocumentRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[StateResponse](ctx, c.cc, "OpenDocument", in, opts...)
}

func (c *ReaderClient) SetMode(ctx context.Context, in *SetModeRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[StateResponse](ctx, c.cc, "SetMode", in, opts...)
}

func (c *ReaderClient) Pointer(ctx context.Context, in *PointerRequest, opts ...grpc.CallOption) (*PointerResponse, error) {
	return invoke[PointerResponse](ctx, c.cc, "Pointer", in, opts...)
}

func (c *ReaderClient) Analyze(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	return invoke[AnalyzeResponse](ctx, c.cc, "Analyze", in, opts...)
}

func (c *ReaderClient) CloseSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*CloseSessionResponse, error) {
	return invoke[CloseSessionResponse](ctx, c.cc, "CloseSession", in, opts...)
}

func (c *ReaderClient) ChangePage(ctx context.Context, in *ChangePageRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[StateResponse](ctx, c.cc, "ChangePage", in, opts...)
}

func (c *ReaderClient) GoToPage(ctx context.Context, in *GoToPageRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[StateResponse](ctx, c.cc, "GoToPage", in, opts...)
}

func (c *ReaderClient) Resize(ctx context.Context, in *ResizeRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[StateResponse](ctx, c.cc, "Resize", in, opts...)
}

func (c *ReaderClient) Undo(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[StateResponse](ctx, c.cc, "Undo", in, opts...)
}

func (c *ReaderClient) Clear(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[StateResponse](ctx, c.cc, "Clear", in, opts...)
}

func (c *ReaderClient) RenderFrame(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*RenderFrameResponse, error) {
	return invoke[RenderFrameResponse](ctx, c.cc, "RenderFrame", in, opts...)
}

func (c *ReaderClient) SaveCard(ctx context.Context, in *SaveCardRequest, opts ...grpc.CallOption) (*SaveCardResponse, error) {
	return invoke[SaveCardResponse](ctx, c.cc, "SaveCard", in, opts...)
}
