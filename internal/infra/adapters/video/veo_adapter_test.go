package video

import (
	"testing"

	"google.golang.org/genai"

	"ai-video-studio/internal/domain/ports/adapter"
)

func TestStatusFromOperation(t *testing.T) {
	cases := []struct {
		name      string
		op        *genai.GenerateVideosOperation
		wantState adapter.RemoteState
		wantMsg   string
		wantURLs  int
	}{
		{
			name:      "running",
			op:        &genai.GenerateVideosOperation{Name: "operations/1"},
			wantState: adapter.RemoteProcessing,
		},
		{
			name:      "running with progress",
			op:        &genai.GenerateVideosOperation{Metadata: map[string]any{"progressPercent": 40}},
			wantState: adapter.RemoteProcessing,
			wantMsg:   "rendering 40%",
		},
		{
			name:      "done with error",
			op:        &genai.GenerateVideosOperation{Done: true, Error: map[string]any{"code": float64(3), "message": "bad prompt"}},
			wantState: adapter.RemoteFailed,
			wantMsg:   "bad prompt",
		},
		{
			name:      "done cancelled",
			op:        &genai.GenerateVideosOperation{Done: true, Error: map[string]any{"code": float64(1)}},
			wantState: adapter.RemoteCancelled,
		},
		{
			name: "done with videos",
			op: &genai.GenerateVideosOperation{Done: true, Response: &genai.GenerateVideosResponse{
				GeneratedVideos: []*genai.GeneratedVideo{
					{Video: &genai.Video{URI: "https://files/a"}},
					{Video: &genai.Video{URI: "https://files/b"}},
				},
			}},
			wantState: adapter.RemoteComplete,
			wantURLs:  2,
		},
		{
			name: "done but filtered",
			op: &genai.GenerateVideosOperation{Done: true, Response: &genai.GenerateVideosResponse{
				RAIMediaFilteredCount:   1,
				RAIMediaFilteredReasons: []string{"unsafe content"},
			}},
			wantState: adapter.RemoteFailed,
			wantMsg:   "filtered: unsafe content",
		},
		{
			name:      "done without response",
			op:        &genai.GenerateVideosOperation{Done: true},
			wantState: adapter.RemoteComplete,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := statusFromOperation(tc.op)
			if got.State != tc.wantState {
				t.Errorf("expected state %s, got %s", tc.wantState, got.State)
			}
			if got.Message != tc.wantMsg {
				t.Errorf("expected message %q, got %q", tc.wantMsg, got.Message)
			}
			if len(got.ResultURLs) != tc.wantURLs {
				t.Errorf("expected %d urls, got %v", tc.wantURLs, got.ResultURLs)
			}
		})
	}
}
