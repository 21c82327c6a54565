// Package pb declares the qiraa.Reader service. Messages travel as JSON through the codec
// registered below, for both native gRPC and gRPC-web clients.
package pb

type Box struct {
	Ordinal int32   `json:"ordinal"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type Surface struct {
	Width  int32   `json:"width"`
	Height int32   `json:"height"`
	Scale  float64 `json:"scale"`
}

type SessionState struct {
	SessionId   string   `json:"session_id"`
	PageCount   int32    `json:"page_count"`
	CurrentPage int32    `json:"current_page"`
	Mode        string   `json:"mode"`
	Surface     *Surface `json:"surface"`
	// Committed boxes in insertion order.
	Boxes     []*Box `json:"boxes"`
	Transient *Box   `json:"transient,omitempty"`
	Dragging  bool   `json:"dragging"`
	ShowHint  bool   `json:"show_hint"`
}

type WordPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Card struct {
	Id             string      `json:"id"`
	OriginalText   string      `json:"original_text"`
	VocalizedText  string      `json:"vocalized_text"`
	TranslatedText string      `json:"translated_text"`
	Words          []*WordPair `json:"words"`
	Context        string      `json:"context,omitempty"`
	// Unix milliseconds.
	CreatedAt int64 `json:"created_at"`
}

type OpenDocumentRequest struct {
	// Empty to start a new session.
	SessionId      string `json:"session_id"`
	Document       []byte `json:"document"`
	MimeType       string `json:"mime_type"`
	ContainerWidth int32  `json:"container_width"`
}

func (x *OpenDocumentRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *OpenDocumentRequest) GetDocument() []byte {
	if x != nil {
		return x.Document
	}
	return nil
}

func (x *OpenDocumentRequest) GetMimeType() string {
	if x != nil {
		return x.MimeType
	}
	return ""
}

func (x *OpenDocumentRequest) GetContainerWidth() int32 {
	if x != nil {
		return x.ContainerWidth
	}
	return 0
}

type ChangePageRequest struct {
	SessionId string `json:"session_id"`
	Delta     int32  `json:"delta"`
}

func (x *ChangePageRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *ChangePageRequest) GetDelta() int32 {
	if x != nil {
		return x.Delta
	}
	return 0
}

type GoToPageRequest struct {
	SessionId string `json:"session_id"`
	// 1-based.
	Page int32 `json:"page"`
}

func (x *GoToPageRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *GoToPageRequest) GetPage() int32 {
	if x != nil {
		return x.Page
	}
	return 0
}

type SetModeRequest struct {
	SessionId string `json:"session_id"`
	// "navigate" or "select_region".
	Mode string `json:"mode"`
}

func (x *SetModeRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *SetModeRequest) GetMode() string {
	if x != nil {
		return x.Mode
	}
	return ""
}

type ResizeRequest struct {
	SessionId      string `json:"session_id"`
	ContainerWidth int32  `json:"container_width"`
}

func (x *ResizeRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *ResizeRequest) GetContainerWidth() int32 {
	if x != nil {
		return x.ContainerWidth
	}
	return 0
}

type PointerRequest struct {
	SessionId string `json:"session_id"`
	// "down", "move", "up" or "leave".
	Kind string `json:"kind"`
	// Pointer position in page client coordinates.
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
	// Top-left corner of the drawn surface in the same coordinates.
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
}

func (x *PointerRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *PointerRequest) GetKind() string {
	if x != nil {
		return x.Kind
	}
	return ""
}

type SessionRequest struct {
	SessionId string `json:"session_id"`
}

func (x *SessionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type SaveCardRequest struct {
	SessionId  string `json:"session_id"`
	AnalysisId string `json:"analysis_id"`
	Context    string `json:"context"`
}

func (x *SaveCardRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *SaveCardRequest) GetAnalysisId() string {
	if x != nil {
		return x.AnalysisId
	}
	return ""
}

type StateResponse struct {
	State *SessionState `json:"state"`
}

type PointerResponse struct {
	// "none", "started", "resized", "committed" or "discarded".
	Effect string        `json:"effect"`
	State  *SessionState `json:"state"`
}

type RenderFrameResponse struct {
	// The page with its overlays as a PNG data URI.
	UriImage string        `json:"uri_image"`
	State    *SessionState `json:"state"`
}

type AnalyzeResponse struct {
	AnalysisId string `json:"analysis_id"`
	// The composite sent for recognition as a PNG data URI.
	UriComposite   string        `json:"uri_composite"`
	OriginalText   string        `json:"original_text"`
	VocalizedText  string        `json:"vocalized_text"`
	TranslatedText string        `json:"translated_text"`
	Words          []*WordPair   `json:"words"`
	State          *SessionState `json:"state"`
}

type SaveCardResponse struct {
	Card *Card `json:"card"`
}

type CloseSessionResponse struct{}
