package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/sky-garden-race/game/config"
	"github.com/wricardo/sky-garden-race/game/engine"
	"github.com/wricardo/sky-garden-race/game/narrator"
	"github.com/wricardo/sky-garden-race/game/service"
	"github.com/wricardo/sky-garden-race/game/session"
	"github.com/wricardo/sky-garden-race/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	SelectCharacterFunc func(ctx context.Context, sessionID string, player int, characterID string) (*engine.GameState, error)
	StartGameFunc       func(ctx context.Context, sessionID string) (*engine.GameState, error)
	RollFunc            func(ctx context.Context, sessionID string) (*service.RollResult, error)
	ResetFunc           func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistoryFunc   func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	GetBoardFunc     func(ctx context.Context) (*service.BoardInfo, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.Rules, error)
	SaveConfigFunc  func(ctx context.Context, configName string, rules *engine.Rules) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) SelectCharacter(ctx context.Context, sessionID string, player int, characterID string) (*engine.GameState, error) {
	if m.SelectCharacterFunc != nil {
		return m.SelectCharacterFunc(ctx, sessionID, player, characterID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) StartGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.StartGameFunc != nil {
		return m.StartGameFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) Roll(ctx context.Context, sessionID string) (*service.RollResult, error) {
	if m.RollFunc != nil {
		return m.RollFunc(ctx, sessionID)
	}
	return &service.RollResult{GameState: &engine.GameState{}, Winner: engine.NoWinner}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Turns: []engine.TurnRecord{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockGameService) GetBoard(ctx context.Context) (*service.BoardInfo, error) {
	if m.GetBoardFunc != nil {
		return m.GetBoardFunc(ctx)
	}
	return &service.BoardInfo{}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.Rules, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	rules := engine.DefaultRules()
	rules.Name = configName
	return rules, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, rules *engine.Rules) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, rules)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub, WithStaticDir(""))
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %s)", err, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("session abc: %w", service.ErrNotFound), http.StatusNotFound},
		{engine.ErrNotReady, http.StatusConflict},
		{engine.ErrNotPlaying, http.StatusConflict},
		{engine.ErrCharacterTaken, http.StatusConflict},
		{engine.ErrNotInSetup, http.StatusConflict},
		{engine.ErrInvalidPlayer, http.StatusBadRequest},
		{fmt.Errorf("%w: wizard", engine.ErrUnknownCharacter), http.StatusBadRequest},
		{fmt.Errorf("%w: bad rules", service.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		wantConfig     string
		createErr      error
		expectedStatus int
	}{
		{name: "default config", requestBody: nil, wantConfig: "", expectedStatus: http.StatusCreated},
		{name: "config_id", requestBody: map[string]string{"config_id": "chaos"}, wantConfig: "chaos", expectedStatus: http.StatusCreated},
		{name: "legacy config_name", requestBody: map[string]string{"config_name": "gentle"}, wantConfig: "gentle", expectedStatus: http.StatusCreated},
		{name: "unknown config", requestBody: map[string]string{"config_id": "nope"}, wantConfig: "nope", createErr: fmt.Errorf("configuration %w", service.ErrNotFound), expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotConfig string
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					gotConfig = configName
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					return &service.SessionInfo{ID: "sess-123", ConfigName: configName}, nil
				},
			}
			server := setupTestServer(mock)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if gotConfig != tt.wantConfig {
				t.Errorf("Expected config %q, got %q", tt.wantConfig, gotConfig)
			}
			if tt.createErr != nil {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] == "" {
					t.Error("Expected error message in body")
				}
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "mid", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
			}, nil
		},
	}
	server := setupTestServer(mock)

	tests := []struct {
		query   string
		wantIDs []string
	}{
		{"", []string{"old", "mid", "new"}},
		{"?sort=created", []string{"new", "mid", "old"}},
		{"?sort=created&order=asc", []string{"old", "mid", "new"}},
		{"?sort=created&limit=1", []string{"new"}},
		{"?limit=abc", []string{"old", "mid", "new"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			var ids []string
			for _, s := range resp.Sessions {
				ids = append(ids, s.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
			require.Equal(t, len(tt.wantIDs), resp.Count)
			require.Equal(t, 3, resp.Total)
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("session %s: %w", sessionID, service.ErrNotFound)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return service.ErrNotFound
			}
			return nil
		},
	}
	server := setupTestServer(mock)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/sessions/abcd", http.StatusOK},
		{"GET", "/api/sessions/missing", http.StatusNotFound},
		{"DELETE", "/api/sessions/abcd", http.StatusOK},
		{"DELETE", "/api/sessions/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

// Game Operation Tests

func TestSelectCharacter(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		serviceErr error
		want       int
	}{
		{"valid", map[string]interface{}{"player": 1, "character": "fox"}, nil, http.StatusOK},
		{"player zero is allowed", map[string]interface{}{"player": 0, "character": "cat"}, nil, http.StatusOK},
		{"missing player", map[string]interface{}{"character": "fox"}, nil, http.StatusBadRequest},
		{"missing character", map[string]interface{}{"player": 0}, nil, http.StatusBadRequest},
		{"taken", map[string]interface{}{"player": 1, "character": "fox"}, engine.ErrCharacterTaken, http.StatusConflict},
		{"unknown", map[string]interface{}{"player": 1, "character": "wizard"}, engine.ErrUnknownCharacter, http.StatusBadRequest},
		{"already started", map[string]interface{}{"player": 1, "character": "fox"}, engine.ErrNotInSetup, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{
				SelectCharacterFunc: func(ctx context.Context, sessionID string, player int, characterID string) (*engine.GameState, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					state := &engine.GameState{}
					state.Players[player].Character = &engine.Character{ID: characterID}
					return state, nil
				},
			}
			server := setupTestServer(mock)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/characters", tt.body))
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		req := httptest.NewRequest("POST", "/api/sessions/abcd/characters", strings.NewReader("{"))
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStartAndRollErrors(t *testing.T) {
	mock := &MockGameService{
		StartGameFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return nil, engine.ErrNotReady
		},
		RollFunc: func(ctx context.Context, sessionID string) (*service.RollResult, error) {
			return nil, engine.ErrNotPlaying
		},
	}
	server := setupTestServer(mock)

	for _, path := range []string{"/api/sessions/abcd/start", "/api/sessions/abcd/roll"} {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", path, nil))
		if w.Code != http.StatusConflict {
			t.Errorf("%s: expected 409, got %d", path, w.Code)
		}
	}
}

func TestRoll(t *testing.T) {
	mock := &MockGameService{
		RollFunc: func(ctx context.Context, sessionID string) (*service.RollResult, error) {
			state := &engine.GameState{Round: 5}
			state.Players[0].Position = 18
			return &service.RollResult{
				GameState: state,
				Roll:      4,
				Winner:    engine.NoWinner,
				Card:      &engine.EventCard{Kind: engine.EventBlossom, Text: "Blossom"},
				Record:    &engine.TurnRecord{Player: 0, From: 0, To: 18, Roll: 4},
				Message:   "climbed",
			}, nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/roll", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.RollResult
	parseResponse(t, w, &resp)
	require.Equal(t, 4, resp.Roll)
	require.Equal(t, 18, resp.GameState.Players[0].Position)
	require.Equal(t, engine.EventBlossom, resp.Card.Kind)
	require.Equal(t, "climbed", resp.Message)
}

func TestResetAndState(t *testing.T) {
	mock := &MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			state := &engine.GameState{}
			state.Phase = engine.PhaseSetup
			return state, nil
		},
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return nil, service.ErrNotFound
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/reset", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message string           `json:"message"`
		State   engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	require.Equal(t, "Game reset successfully", resp.Message)
	require.Equal(t, engine.PhaseSetup, resp.State.Phase)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/abcd/state", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistoryParsesQuery(t *testing.T) {
	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: service.DefaultHistoryLimit, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=zero&order=sideways", service.HistoryOptions{Page: 1, Limit: service.DefaultHistoryLimit, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			mock := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{}, nil
				},
			}
			server := setupTestServer(mock)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/abcd/history"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.want, got)
		})
	}
}

// Board and configuration tests

func TestBoardAndCharacters(t *testing.T) {
	mock := &MockGameService{
		GetBoardFunc: func(ctx context.Context) (*service.BoardInfo, error) {
			return &service.BoardInfo{Characters: engine.Characters()}, nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/board", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/characters", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var characters []engine.Character
	parseResponse(t, w, &characters)
	require.Len(t, characters, 4)
}

func TestConfigs(t *testing.T) {
	var saved *engine.Rules
	mock := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Format: "json"}, {ConfigID: "chaos", Format: "hcl"}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.Rules, error) {
			if configName == "missing" {
				return nil, fmt.Errorf("configuration %w", service.ErrNotFound)
			}
			return engine.DefaultRules(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, rules *engine.Rules) error {
			if rules.EventEvery > engine.MaxEventEvery {
				return fmt.Errorf("%w: event_every", service.ErrInvalidInput)
			}
			saved = rules
			return nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var configs []service.ConfigInfo
	parseResponse(t, w, &configs)
	require.Len(t, configs, 2)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/classic", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"valid", map[string]interface{}{"name": "fast", "description": "Fast", "event_every": 2}, http.StatusCreated},
		{"missing name", map[string]interface{}{"description": "Fast"}, http.StatusBadRequest},
		{"out of range", map[string]interface{}{"name": "bad", "description": "Bad", "event_every": 99}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/configs", tt.body))
			require.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	require.NotNil(t, saved)
	require.Equal(t, 2, saved.EventEvery)
}

func TestUnifiedSessions(t *testing.T) {
	p0Ahead := &engine.GameState{}
	p0Ahead.Winner = engine.NoWinner
	p0Ahead.Players[0].Position = 30
	p0Ahead.Players[1].Position = 10

	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", ConfigName: "classic", GameState: p0Ahead},
				{ID: "b", ConfigName: "chaos"},
			}, nil
		},
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "b" {
				return &service.SessionInfo{ID: "b", ConfigName: "chaos"}, nil
			}
			return nil, service.ErrNotFound
		},
	}
	server := setupTestServer(mock)

	type unified struct {
		ConfigName string                   `json:"config_name"`
		Sessions   []map[string]interface{} `json:"sessions"`
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/unified?configName=classic", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp unified
	parseResponse(t, w, &resp)
	require.Equal(t, "classic", resp.ConfigName)
	require.Len(t, resp.Sessions, 1)
	require.Equal(t, float64(0), resp.Sessions[0]["leader"])

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/unified?sessionIds=b,%20missing", nil))
	parseResponse(t, w, &resp)
	require.Len(t, resp.Sessions, 1)
	require.Equal(t, "b", resp.Sessions[0]["session_id"])
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "healthy")
}

func TestWebSocketRequiresSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrNotFound
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws?session=nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

// newLiveServer wires the real service stack with scripted dice
func newLiveServer(t *testing.T, rolls ...int) (*httptest.Server, *websocket.Hub) {
	t.Helper()
	sessions := session.NewManager(session.WithSourceFactory(func() engine.Source {
		return &engine.ScriptedSource{Rolls: append([]int(nil), rolls...)}
	}))
	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run()

	svc := service.NewGameService(sessions, configs, narrator.New("en-US"))
	ts := httptest.NewServer(NewServer(svc, hub, WithStaticDir(t.TempDir())))
	t.Cleanup(ts.Close)
	return ts, hub
}

func postJSON(t *testing.T, url string, body interface{}, target interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

func TestFullGameOverHTTP(t *testing.T) {
	// Player 1 climbs the vine at 4, player 2 walks to 2
	ts, hub := newLiveServer(t, 4, 2)

	var info service.SessionInfo
	require.Equal(t, http.StatusCreated, postJSON(t, ts.URL+"/api/sessions", map[string]string{}, &info))
	base := ts.URL + "/api/sessions/" + info.ID

	var state engine.GameState
	require.Equal(t, http.StatusConflict, postJSON(t, base+"/start", nil, nil))
	require.Equal(t, http.StatusOK, postJSON(t, base+"/characters", map[string]interface{}{"player": 0, "character": "bunny"}, &state))
	require.Equal(t, http.StatusConflict, postJSON(t, base+"/characters", map[string]interface{}{"player": 1, "character": "bunny"}, nil))
	require.Equal(t, http.StatusOK, postJSON(t, base+"/characters", map[string]interface{}{"player": 1, "character": "fox"}, &state))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + info.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(info.ID) == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, postJSON(t, base+"/start", nil, &state))
	require.Equal(t, engine.PhasePlaying, state.Phase)

	var roll service.RollResult
	require.Equal(t, http.StatusOK, postJSON(t, base+"/roll", nil, &roll))
	require.Equal(t, 18, roll.GameState.Players[0].Position)
	require.Contains(t, roll.Message, "Magic Vine")

	// start then roll each push a state update
	var pushed websocket.Message
	for i := 0; i < 2; i++ {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &pushed))
	}
	require.Equal(t, websocket.EventStateUpdate, pushed.Event)
	require.Equal(t, 18, pushed.GameState.Players[0].Position)

	resp, err := http.Get(base + "/history?order=asc")
	require.NoError(t, err)
	defer resp.Body.Close()
	var history service.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Equal(t, 1, history.TotalTurns)
	require.Equal(t, 4, history.Turns[0].Roll)

	resp404, err := http.Get(ts.URL + "/api/sessions/zzzz/state")
	require.NoError(t, err)
	resp404.Body.Close()
	require.Equal(t, http.StatusNotFound, resp404.StatusCode)
}
