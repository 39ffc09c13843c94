package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"gradebook/internal/app/client/config"
	"gradebook/internal/domain/mark"
)

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	// Определяем протокол
	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "Gradebook-Client/1.0",
	}
}

// SetToken устанавливает токен доступа к API
func (h *httpClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *httpClient) bearer() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул статус: %d", resp.StatusCode)
	}

	return nil
}

// BatchUpdateMarks отправляет пачку оценок одним запросом
func (h *httpClient) BatchUpdateMarks(ctx context.Context, entries []mark.Entry) (mark.BatchResponse, error) {
	var out mark.BatchResponse

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/marks/batch", mark.BatchRequest{Marks: entries})
	if err != nil {
		return out, err
	}

	if err := h.parseResponse(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

// ListAssessmentMarks возвращает оценки по работе с сервера
func (h *httpClient) ListAssessmentMarks(ctx context.Context, assessmentID string) (mark.ListResponse, error) {
	return h.listMarks(ctx, "/api/v1/assessments/"+url.PathEscape(assessmentID)+"/marks")
}

// ListStudentMarks возвращает оценки ученика с итогом для табеля
func (h *httpClient) ListStudentMarks(ctx context.Context, studentID string) (mark.ListResponse, error) {
	return h.listMarks(ctx, "/api/v1/students/"+url.PathEscape(studentID)+"/marks")
}

func (h *httpClient) listMarks(ctx context.Context, path string) (mark.ListResponse, error) {
	var out mark.ListResponse

	resp, err := h.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return out, err
	}

	if err := h.parseResponse(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	// Добавляем заголовки
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if token := h.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

// APIError ответ сервера с кодом ошибки
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ошибка сервера (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ошибка сервера: статус %d", e.Status)
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"body", string(body),
	)

	if resp.StatusCode >= 400 {
		// huma отдает application/problem+json
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Message = errResp.Detail
			if errResp.Error != "" {
				apiErr.Message = errResp.Error
			}
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}
