package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gcs "cloud.google.com/go/storage"
	vision "cloud.google.com/go/vision/v2/apiv1"
	firebase "firebase.google.com/go"
	"github.com/google/generative-ai-go/genai"
	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/ridge/must/v2"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "github.com/qiraa-project/qiraa/grpc"
	qiraaAuth "github.com/qiraa-project/qiraa/grpc/auth"
	"github.com/qiraa-project/qiraa/grpc/impl"
	implDocumentai "github.com/qiraa-project/qiraa/grpc/impl/documentai"
	yaGenai "github.com/qiraa-project/qiraa/grpc/impl/genai"
	implOpenai "github.com/qiraa-project/qiraa/grpc/impl/openai"
	"github.com/qiraa-project/qiraa/grpc/impl/storage"
	"github.com/qiraa-project/qiraa/grpc/impl/tesseract"
	implVision "github.com/qiraa-project/qiraa/grpc/impl/vision"
	"github.com/qiraa-project/qiraa/pkg/auth"
	"github.com/qiraa-project/qiraa/pkg/env"
	"github.com/qiraa-project/qiraa/pkg/font"
	yaHttp "github.com/qiraa-project/qiraa/pkg/http"
	yaOpenai "github.com/qiraa-project/qiraa/pkg/openai"
	"github.com/qiraa-project/qiraa/pkg/raster"
	"github.com/qiraa-project/qiraa/pkg/recognition"
)

func main() {
	env.Load()

	ctx := context.Background()
	secrets := &secretSource{}
	defer secrets.Close()

	// Go Bold is used when no font directory is configured.
	fontProvider := font.Default()
	if fontDir := env.StringVariable("LABEL_FONT_DIR", ""); fontDir != "" {
		fontProvider = must.OK1(font.New(fontDir))
	}

	languages := recognition.Languages{
		Source: env.StringVariable("SOURCE_LANGUAGE", recognition.DefaultLanguages.Source),
		Target: env.StringVariable("TARGET_LANGUAGE", recognition.DefaultLanguages.Target),
	}
	gateway := newGateway(ctx, secrets, languages)
	gateway = recognition.WithRetry(
		gateway,
		time.Duration(env.IntVariable("GATEWAY_RETRY_INTERVAL_MS", 500))*time.Millisecond,
		uint64(env.IntVariable("GATEWAY_MAX_RETRIES", 2)),
	)

	storageConfig := impl.Storage{
		CardsBucket:            env.StringVariable("CARDS_BUCKET", ""),
		CompositeArchiveBucket: env.StringVariable("COMPOSITE_ARCHIVE_BUCKET", ""),
	}
	if storageConfig.CardsBucket != "" || storageConfig.CompositeArchiveBucket != "" {
		storageConfig.Client = storage.New(must.OK1(gcs.NewClient(ctx)))
	}

	var serverOptions []grpc.ServerOption
	if env.BoolVariable("AUTH_DISABLED", false) {
		log.Printf("Authorization is disabled")
	} else {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: env.RequiredStringVariable("GCP_PROJECT_ID")})
		if err != nil {
			log.Fatalf("error initializing app: %v", err)
		}
		firebaseClient, err := app.Auth(ctx)
		if err != nil {
			log.Fatalf("error getting Auth client: %v", err)
		}
		authClient := qiraaAuth.New(firebaseClient, env.StringListVariable("ALLOWED_EMAIL_DOMAINS", nil))
		serverOptions = append(serverOptions, grpc.UnaryInterceptor(apiKeyInterceptor(authClient)))
	}

	// Page uploads and composites are sent inline. 20MB matches the Vision and OpenAI image limits.
	// Ref: https://cloud.google.com/vision/quotas#limits
	serverOptions = append(serverOptions,
		grpc.ForceServerCodec(pb.Codec),
		grpc.MaxRecvMsgSize(20*1024*1024),
		grpc.MaxSendMsgSize(20*1024*1024),
	)
	grpcServer := grpc.NewServer(serverOptions...)

	readerServer := impl.New(
		raster.New(),
		gateway,
		fontProvider,
		storageConfig,
		env.IntVariable("DEFAULT_CONTAINER_WIDTH", 864),
	)
	pb.RegisterReaderServer(grpcServer, readerServer)

	// Tabs closed without CloseSession would otherwise keep their documents open.
	idleTTL := time.Duration(env.IntVariable("SESSION_IDLE_TTL_MINUTES", 30)) * time.Minute
	go readerServer.RunSessionSweeper(ctx, idleTTL, time.Minute)

	go runGrpcServer(grpcServer, env.RequiredIntVariable("GRPC_PORT"))
	runGrpcWebServer(grpcServer, env.RequiredIntVariable("WEB_PORT"), env.RequiredStringVariable("QIRAA_UI_URL"))
}

// newGateway builds the recognition gateway selected by RECOGNITION_PROVIDER. The OCR
// providers read the text first and hand it to the chat model for vocalization and translation.
func newGateway(ctx context.Context, secrets *secretSource, languages recognition.Languages) recognition.Gateway {
	provider := env.StringVariable("RECOGNITION_PROVIDER", "gemini")
	languageHints := env.StringListVariable("OCR_LANGUAGE_HINTS", []string{"ar"})

	switch provider {
	case "gemini", "openai":
		return newChatGateway(ctx, secrets, languages, provider)
	case "vision":
		visionClient := must.OK1(vision.NewImageAnnotatorClient(ctx))
		return recognition.TwoStage(
			implVision.NewDetector(visionClient, languageHints),
			newChatGateway(ctx, secrets, languages, env.StringVariable("ANALYZER_PROVIDER", "gemini")),
		)
	case "documentai":
		documentaiClient := must.OK1(documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(env.RequiredStringVariable("DOCUMENTAI_ENDPOINT"))))
		spec := implDocumentai.Spec{
			ProjectID:   env.RequiredStringVariable("GCP_PROJECT_ID"),
			Location:    env.RequiredStringVariable("DOCUMENTAI_LOCATION"),
			ProcessorID: env.RequiredStringVariable("DOCUMENTAI_PROCESSOR_ID"),
		}
		return recognition.TwoStage(
			implDocumentai.NewDetector(documentaiClient, spec, languageHints),
			newChatGateway(ctx, secrets, languages, env.StringVariable("ANALYZER_PROVIDER", "gemini")),
		)
	case "tesseract":
		return recognition.TwoStage(
			tesseract.NewDetector(env.StringListVariable("TESSERACT_LANGUAGES", []string{"ara"})),
			newChatGateway(ctx, secrets, languages, env.StringVariable("ANALYZER_PROVIDER", "gemini")),
		)
	default:
		log.Fatalf("unknown RECOGNITION_PROVIDER %q", provider)
		return nil
	}
}

// newChatGateway builds the chat model gateway. Any provider other than "openai" runs on Gemini.
func newChatGateway(ctx context.Context, secrets *secretSource, languages recognition.Languages, provider string) *implOpenai.Gateway {
	if provider == "openai" {
		openaiKey := secrets.key(ctx, "OPENAI_API_KEY", "OPENAI_KEY_SECRET_NAME")
		return implOpenai.NewGateway(
			yaOpenai.NewAdapter(openai.NewClient(openaiKey)),
			env.StringVariable("OPENAI_MODEL", implOpenai.DefaultModel),
			languages,
			true, /* =jsonResponseFormat */
		)
	}

	geminiKey := secrets.key(ctx, "GEMINI_API_KEY", "GEMINI_API_KEY_SECRET_NAME")
	genaiClient := must.OK1(genai.NewClient(ctx, option.WithAPIKey(geminiKey)))
	return implOpenai.NewGateway(
		yaGenai.New(genaiClient),
		env.StringVariable("GEMINI_MODEL", string(yaGenai.GenaiModelFlash)),
		languages,
		false, /* =jsonResponseFormat */
	)
}

// secretSource reads API keys from the environment for local development and from GCP Secret
// Manager otherwise. The Secret Manager client is created on first use.
type secretSource struct {
	client *secretmanager.Client
}

func (s *secretSource) key(ctx context.Context, keyVariable string, secretNameVariable string) string {
	if key := os.Getenv(keyVariable); key != "" {
		return key
	}
	if s.client == nil {
		s.client = must.OK1(secretmanager.NewClient(ctx))
	}
	secretValue := must.OK1(s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
			env.RequiredStringVariable("GCP_PROJECT_ID"),
			env.RequiredStringVariable(secretNameVariable),
		),
	}))
	return string(secretValue.Payload.Data)
}

func (s *secretSource) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func runGrpcServer(grpcServer *grpc.Server, port int) {
	log.Printf("Qiraa gRPC server listening on port %d", port)
	must.OK(grpcServer.Serve(must.OK1(net.Listen("tcp", fmt.Sprintf(":%d", port)))))
}

func runGrpcWebServer(grpcServer *grpc.Server, port int, url string) {
	grpcwebServer := grpcweb.WrapServer(grpcServer,
		grpcweb.WithOriginFunc(func(origin string) bool {
			return origin == url
		}),
	)

	staticFileDir := env.RequiredStringVariable("QIRAA_STATIC_FILE_DIR")
	indexHandler := yaHttp.HandleIndex(staticFileDir)
	defaultHandler := func(w http.ResponseWriter, r *http.Request) {
		if grpcwebServer.IsGrpcWebRequest(r) || grpcwebServer.IsAcceptableGrpcCorsRequest(r) {
			grpcwebServer.ServeHTTP(w, r)
			return
		}
		indexHandler(w, r)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", defaultHandler)
	mux.HandleFunc("/assets/", yaHttp.HandleFileServer(http.FileServer(http.Dir(staticFileDir))))
	log.Printf("Qiraa gRPC-web server listening on port %d", port)
	must.OK(http.ListenAndServe(fmt.Sprintf(":%d", port), mux))
}

func apiKeyInterceptor(authClient qiraaAuth.Auth) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, request any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		metadatas, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Errorf(codes.Unauthenticated, "missing context metadata")
		}
		token, extractTokenErr := auth.BearerToken(metadatas)
		if extractTokenErr != nil {
			return nil, status.Error(codes.Unauthenticated, extractTokenErr.Error())
		}
		_, err := authClient.Verify(ctx, token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		return handler(ctx, request)
	}
}
