package invitation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"prospec-live/internal/entity"

	"github.com/google/uuid"
)

// HTTPTransport talks to the prospection REST endpoint:
// POST {base}/prospection/requests to create, GET .../requests/{id} to poll.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type createRequestBody struct {
	BuildingId  uuid.UUID `json:"buildingId"`
	RequesterId uuid.UUID `json:"requesterId"`
	PartnerId   uuid.UUID `json:"partnerId"`
}

type requestStatusBody struct {
	RequestId uuid.UUID               `json:"requestId"`
	Status    entity.InvitationStatus `json:"status"`
}

func (t *HTTPTransport) CreateRequest(ctx context.Context, buildingId, requesterId, partnerId uuid.UUID) (uuid.UUID, entity.InvitationStatus, error) {
	payload, err := json.Marshal(createRequestBody{
		BuildingId:  buildingId,
		RequesterId: requesterId,
		PartnerId:   partnerId,
	})
	if err != nil {
		return uuid.Nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/prospection/requests", bytes.NewReader(payload))
	if err != nil {
		return uuid.Nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return uuid.Nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return uuid.Nil, "", fmt.Errorf("create request: unexpected status %d", resp.StatusCode)
	}

	var body requestStatusBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.Nil, "", err
	}
	return body.RequestId, body.Status, nil
}

func (t *HTTPTransport) RequestStatus(ctx context.Context, requestId uuid.UUID) (entity.InvitationStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/prospection/requests/"+requestId.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("request status: unexpected status %d", resp.StatusCode)
	}

	var body requestStatusBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Status, nil
}
