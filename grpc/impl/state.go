package impl

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	pb "github.com/qiraa-project/qiraa/grpc"
	"github.com/qiraa-project/qiraa/pkg/recognition"
	"github.com/qiraa-project/qiraa/pkg/selection"
	"github.com/qiraa-project/qiraa/pkg/session"
	"github.com/qiraa-project/qiraa/pkg/utils"
)

func toSessionState(id string, state session.State) *pb.SessionState {
	result := &pb.SessionState{
		SessionId:   id,
		PageCount:   int32(state.PageCount),
		CurrentPage: int32(state.CurrentPage),
		Mode:        string(state.Mode),
		Surface: &pb.Surface{
			Width:  int32(state.Geometry.Width),
			Height: int32(state.Geometry.Height),
			Scale:  state.Geometry.Scale,
		},
		Boxes: utils.Map(state.Labels, func(label selection.Label) *pb.Box {
			return &pb.Box{
				Ordinal: int32(label.Ordinal),
				X:       label.Box.X,
				Y:       label.Box.Y,
				Width:   label.Box.Width,
				Height:  label.Box.Height,
			}
		}),
		Dragging: state.Dragging,
		ShowHint: state.ShowHint,
	}
	if state.Transient != nil {
		result.Transient = &pb.Box{
			X:      state.Transient.X,
			Y:      state.Transient.Y,
			Width:  state.Transient.Width,
			Height: state.Transient.Height,
		}
	}
	return result
}

func toWordPairs(words []recognition.WordPair) []*pb.WordPair {
	return utils.Map(words, func(word recognition.WordPair) *pb.WordPair {
		return &pb.WordPair{Source: word.Source, Target: word.Target}
	})
}

func toDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
