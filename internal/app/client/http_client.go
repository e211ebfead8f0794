package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"inmodraft/internal/app/client/config"
	"inmodraft/internal/domain/draft"
)

// RemoteClient — удаленное (авторитетное) хранилище черновиков с точки
// зрения клиента. Выделен в интерфейс, чтобы фасад и реконсиляция
// тестировались на фейке без сети.
type RemoteClient interface {
	CreateDraft(ctx context.Context, req draft.CreateRequest) (string, error)
	UpdateDraft(ctx context.Context, draftID string, req draft.UpdateRequest) error
	GetDraft(ctx context.Context, draftID string) (*draft.Draft, error)
	DeleteDraft(ctx context.Context, draftID string) error
	ListDrafts(ctx context.Context, kind draft.Kind) (draft.ListResponse, error)
	HealthCheck(ctx context.Context) error
	Me(ctx context.Context) (int, error)
	SetToken(token string)
}

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{
		// Ограниченный таймаут: зависший запрос эквивалентен офлайну
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "Inmodraft-Client/1.0",
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	return nil
}

// Me возвращает ownerID текущего токена
func (h *httpClient) Me(ctx context.Context) (int, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/me", nil)
	if err != nil {
		return 0, err
	}

	var meResp struct {
		OwnerID int `json:"owner_id"`
	}
	if err := h.parseResponse(resp, &meResp); err != nil {
		return 0, err
	}

	return meResp.OwnerID, nil
}

// CreateDraft создает черновик на сервере
func (h *httpClient) CreateDraft(ctx context.Context, req draft.CreateRequest) (string, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/drafts", req)
	if err != nil {
		return "", err
	}

	var createResp struct {
		ID string `json:"id"`
	}
	if err := h.parseResponse(resp, &createResp); err != nil {
		return "", err
	}

	return createResp.ID, nil
}

// UpdateDraft обновляет черновик на сервере
func (h *httpClient) UpdateDraft(ctx context.Context, draftID string, req draft.UpdateRequest) error {
	resp, err := h.doRequest(ctx, http.MethodPut, "/api/drafts/"+draftID, req)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

// GetDraft загружает черновик с сервера
func (h *httpClient) GetDraft(ctx context.Context, draftID string) (*draft.Draft, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/drafts/"+draftID, nil)
	if err != nil {
		return nil, err
	}

	var d draft.Draft
	if err := h.parseResponse(resp, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

// DeleteDraft отбрасывает черновик на сервере
func (h *httpClient) DeleteDraft(ctx context.Context, draftID string) error {
	resp, err := h.doRequest(ctx, http.MethodDelete, "/api/drafts/"+draftID, nil)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

// ListDrafts возвращает список черновиков владельца
func (h *httpClient) ListDrafts(ctx context.Context, kind draft.Kind) (draft.ListResponse, error) {
	path := "/api/drafts"
	if kind != "" {
		path += "?kind=" + string(kind)
	}

	resp, err := h.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return draft.ListResponse{}, err
	}

	var list draft.ListResponse
	if err := h.parseResponse(resp, &list); err != nil {
		return draft.ListResponse{}, err
	}

	return list, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		// Транспортная ошибка и таймаут неотличимы от офлайна
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return draft.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server rejected request: status %d: %s", resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
