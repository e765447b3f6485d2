package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-video-studio/internal/domain/ports/adapter"
)

var _ adapter.VideoGenerator = (*HTTPAdapter)(nil)

// HTTPAdapter talks to a generic remote job API:
//
//	POST {base}/generate  {prompt,user_id,chat_id}      -> {job_token}
//	GET  {base}/status?user_id=&chat_id=&token=         -> {state,message,result_urls}
type HTTPAdapter struct {
	base   string
	apiKey string
	client *http.Client
}

func NewHTTPAdapter(baseURL, apiKey string, timeout time.Duration) (*HTTPAdapter, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid video api base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAdapter{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (a *HTTPAdapter) Submit(ctx context.Context, req adapter.SubmitRequest) (string, error) {
	payload := map[string]string{
		"prompt":  req.Prompt,
		"user_id": req.OwnerID,
		"chat_id": req.ContainerID,
	}
	b, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/generate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out struct {
		JobToken string `json:"job_token"`
	}
	if err := a.do(httpReq, &out); err != nil {
		return "", err
	}
	return out.JobToken, nil
}

func (a *HTTPAdapter) PollStatus(ctx context.Context, h adapter.JobHandle) (adapter.RemoteStatus, error) {
	q := url.Values{}
	q.Set("user_id", h.OwnerID)
	q.Set("chat_id", h.ContainerID)
	if h.Token != "" {
		q.Set("token", h.Token)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/status?"+q.Encode(), nil)
	if err != nil {
		return adapter.RemoteStatus{}, err
	}

	var out struct {
		State      string   `json:"state"`
		Message    string   `json:"message"`
		ResultURLs []string `json:"result_urls"`
	}
	if err := a.do(httpReq, &out); err != nil {
		return adapter.RemoteStatus{}, err
	}
	return adapter.RemoteStatus{State: parseRemoteState(out.State), Message: out.Message, ResultURLs: out.ResultURLs}, nil
}

func (a *HTTPAdapter) do(req *http.Request, out any) error {
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("video api http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("video api: decode: %w", err)
	}
	return nil
}

// parseRemoteState folds provider spellings onto RemoteState. Unrecognised
// states pass through unchanged; the reconciler keeps polling on them.
func parseRemoteState(s string) adapter.RemoteState {
	st := adapter.RemoteState(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "completed", "succeeded":
		return adapter.RemoteComplete
	case "canceled":
		return adapter.RemoteCancelled
	}
	return st
}
