package adapter

import "context"

// RemoteState is the job state reported by the external generation service.
type RemoteState string

const (
	RemoteQueued     RemoteState = "queued"
	RemoteProcessing RemoteState = "processing"
	RemoteComplete   RemoteState = "complete"
	RemoteFailed     RemoteState = "failed"
	RemoteCancelled  RemoteState = "cancelled"
)

// SubmitRequest starts remote work for one prompt.
type SubmitRequest struct {
	Prompt      string
	OwnerID     string
	ContainerID string
}

// JobHandle addresses a remote job. Providers keyed by owner/container ignore
// Token; providers that return an operation name rely on it.
type JobHandle struct {
	OwnerID     string
	ContainerID string
	Token       string
}

// RemoteStatus is one poll result. ResultURLs is populated on RemoteComplete:
// index 0 is the video, index 1 (optional) the preview.
type RemoteStatus struct {
	State      RemoteState
	Message    string
	ResultURLs []string
}

// VideoGenerator is the port for the long-running external video job API.
// There is no cancel RPC; cancellation is enforced locally.
type VideoGenerator interface {
	// Submit triggers remote work and returns the provider's job token.
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	// PollStatus returns the current remote state. Errors are transport errors
	// and carry no information about the job itself.
	PollStatus(ctx context.Context, h JobHandle) (RemoteStatus, error)
}
