package rooms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fluentvoice/fluentvoice-backend/internal/config"
)

// Room service RPC paths. LiveKit exposes its room API as Twirp over JSON.
const (
	rpcCreateRoom       = "/twirp/livekit.RoomService/CreateRoom"
	rpcDeleteRoom       = "/twirp/livekit.RoomService/DeleteRoom"
	rpcListRooms        = "/twirp/livekit.RoomService/ListRooms"
	rpcListParticipants = "/twirp/livekit.RoomService/ListParticipants"
)

// emptyTimeout is how long the provider keeps a room alive with nobody in
// it before closing it on its own. The cleanup sweep is stricter.
const emptyTimeoutSeconds = 30 * 60

// LiveKitProvider implements Provider against a LiveKit server.
type LiveKitProvider struct {
	cfg     config.LiveKitConfig
	apiHost string
	client  *http.Client
}

// NewLiveKitProvider creates a room provider from LiveKit credentials. The
// configured ws URL is translated to the http host for API calls.
func NewLiveKitProvider(cfg config.LiveKitConfig) *LiveKitProvider {
	apiHost := cfg.URL
	apiHost = strings.Replace(apiHost, "wss://", "https://", 1)
	apiHost = strings.Replace(apiHost, "ws://", "http://", 1)
	apiHost = strings.TrimSuffix(apiHost, "/")

	return &LiveKitProvider{
		cfg:     cfg,
		apiHost: apiHost,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ClientURL returns the ws URL clients connect to.
func (p *LiveKitProvider) ClientURL() string {
	return p.cfg.URL
}

// CreateRoom creates a media room. Room metadata carries the session's
// difficulty and topic so the voice agent can pick them up.
func (p *LiveKitProvider) CreateRoom(ctx context.Context, name string, metadata map[string]string) error {
	body := map[string]interface{}{
		"name":          name,
		"empty_timeout": emptyTimeoutSeconds,
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		body["metadata"] = string(raw)
	}

	return p.call(ctx, rpcCreateRoom, body, nil)
}

// DeleteRoom tears down a room. A missing room is success, not failure:
// the sweep and normal session end can both race to delete the same room.
func (p *LiveKitProvider) DeleteRoom(ctx context.Context, name string) error {
	err := p.call(ctx, rpcDeleteRoom, map[string]interface{}{"room": name}, nil)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return err
	}
	return nil
}

// ListRooms returns every live room on the server.
func (p *LiveKitProvider) ListRooms(ctx context.Context) ([]Room, error) {
	var resp struct {
		Rooms []struct {
			Name            string `json:"name"`
			CreationTime    string `json:"creation_time"`
			NumParticipants int    `json:"num_participants"`
		} `json:"rooms"`
	}

	if err := p.call(ctx, rpcListRooms, map[string]interface{}{}, &resp); err != nil {
		return nil, err
	}

	rooms := make([]Room, 0, len(resp.Rooms))
	for _, r := range resp.Rooms {
		// creation_time is unix seconds serialized as a string (proto
		// int64 JSON encoding).
		secs, err := strconv.ParseInt(r.CreationTime, 10, 64)
		if err != nil {
			secs = 0
		}
		rooms = append(rooms, Room{
			Name:            r.Name,
			CreationTime:    time.Unix(secs, 0),
			NumParticipants: r.NumParticipants,
		})
	}

	return rooms, nil
}

// ListParticipants returns the participants connected to a room.
func (p *LiveKitProvider) ListParticipants(ctx context.Context, roomName string) ([]Participant, error) {
	var resp struct {
		Participants []struct {
			Identity string `json:"identity"`
			State    string `json:"state"`
		} `json:"participants"`
	}

	if err := p.call(ctx, rpcListParticipants, map[string]interface{}{"room": roomName}, &resp); err != nil {
		return nil, err
	}

	participants := make([]Participant, 0, len(resp.Participants))
	for _, pi := range resp.Participants {
		participants = append(participants, Participant{
			Identity: pi.Identity,
			State:    pi.State,
		})
	}

	return participants, nil
}

// GenerateToken mints a signed join token for a learner.
func (p *LiveKitProvider) GenerateToken(roomName, identity string, metadata map[string]string) (string, error) {
	return joinToken(p.cfg.APIKey, p.cfg.APISecret, roomName, identity, metadata)
}

type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("room service returned status %d: %s", e.StatusCode, e.Body)
}

func (p *LiveKitProvider) call(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiHost+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	token, err := adminToken(p.cfg.APIKey, p.cfg.APISecret)
	if err != nil {
		return fmt.Errorf("failed to sign admin token: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &apiError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode room service response: %w", err)
		}
	}

	return nil
}
