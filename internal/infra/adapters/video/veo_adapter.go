package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ai-video-studio/internal/domain/ports/adapter"
)

var _ adapter.VideoGenerator = (*VeoAdapter)(nil)

// grpc code for CANCELLED in google.rpc.Status
const rpcCodeCancelled = 1

// VeoAdapter drives Veo long-running video operations through the genai SDK.
// The job token is the operation name.
type VeoAdapter struct {
	client *genai.Client
	model  string
}

func NewVeoAdapter(ctx context.Context, apiKey, baseURL, model string) (*VeoAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("veo: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &VeoAdapter{client: c, model: model}, nil
}

func (v *VeoAdapter) Submit(ctx context.Context, req adapter.SubmitRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("veo: empty prompt")
	}
	op, err := v.client.Models.GenerateVideos(ctx, v.model, req.Prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
	if err != nil {
		return "", err
	}
	if op == nil || op.Name == "" {
		return "", errors.New("veo: operation without name")
	}
	return op.Name, nil
}

func (v *VeoAdapter) PollStatus(ctx context.Context, h adapter.JobHandle) (adapter.RemoteStatus, error) {
	if h.Token == "" {
		return adapter.RemoteStatus{}, errors.New("veo: missing operation name")
	}
	op, err := v.client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: h.Token}, nil)
	if err != nil {
		return adapter.RemoteStatus{}, err
	}
	return statusFromOperation(op), nil
}

func statusFromOperation(op *genai.GenerateVideosOperation) adapter.RemoteStatus {
	if op == nil || !op.Done {
		st := adapter.RemoteStatus{State: adapter.RemoteProcessing}
		if op != nil {
			if p, ok := op.Metadata["progressPercent"]; ok {
				st.Message = fmt.Sprintf("rendering %v%%", p)
			}
		}
		return st
	}

	if op.Error != nil {
		msg, _ := op.Error["message"].(string)
		if rpcCode(op.Error["code"]) == rpcCodeCancelled {
			return adapter.RemoteStatus{State: adapter.RemoteCancelled, Message: msg}
		}
		return adapter.RemoteStatus{State: adapter.RemoteFailed, Message: msg}
	}

	st := adapter.RemoteStatus{State: adapter.RemoteComplete}
	if op.Response == nil {
		return st
	}
	for _, gv := range op.Response.GeneratedVideos {
		if gv != nil && gv.Video != nil && gv.Video.URI != "" {
			st.ResultURLs = append(st.ResultURLs, gv.Video.URI)
		}
	}
	if len(st.ResultURLs) == 0 && len(op.Response.RAIMediaFilteredReasons) > 0 {
		return adapter.RemoteStatus{
			State:   adapter.RemoteFailed,
			Message: "filtered: " + strings.Join(op.Response.RAIMediaFilteredReasons, "; "),
		}
	}
	return st
}

// rpcCode tolerates the numeric shapes a decoded JSON map can hold.
func rpcCode(v any) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case int:
		return c
	case int32:
		return int(c)
	case int64:
		return int(c)
	}
	return 0
}
