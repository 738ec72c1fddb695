package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"lunasync/internal/app/client/config"
	"lunasync/internal/domain/record"
)

// Transport операции удаленного хранилища документов
type Transport interface {
	// Push создает документ (пустой doc.ID) или сливает поля в существующий
	Push(ctx context.Context, collection record.Collection, doc PushDoc) (RemoteRecord, error)
	// Pull возвращает документы с updatedAt > since, от новых к старым,
	// вместе со временем сервера на момент чтения
	Pull(ctx context.Context, collection record.Collection, since int64) (PullPage, error)
	HealthCheck(ctx context.Context) error
}

type httpTransport struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func NewHTTPTransport(cfg *config.Config, log *slog.Logger) (*httpTransport, error) {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
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
	baseURL := scheme + cfg.ServerAddress

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("некорректный адрес сервера %q: %w", cfg.ServerAddress, err)
	}

	return &httpTransport{
		client:    client,
		log:       log.With(slog.String("component", "transport")),
		baseURL:   baseURL,
		userAgent: "Lunasync-Client/1.0",
	}, nil
}

// HealthCheck проверяет доступность сервера
func (h *httpTransport) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return &RemoteError{Op: OpHealth, Err: err}
	}

	if err := h.parseResponse(resp, nil); err != nil {
		return &RemoteError{Op: OpHealth, Status: resp.StatusCode, Err: err}
	}

	return nil
}

func (h *httpTransport) Push(ctx context.Context, collection record.Collection, doc PushDoc) (RemoteRecord, error) {
	if doc.ID == "" {
		return h.create(ctx, collection, doc)
	}
	return h.upsert(ctx, collection, doc)
}

func (h *httpTransport) create(ctx context.Context, collection record.Collection, doc PushDoc) (RemoteRecord, error) {
	body := createDocumentRequest{
		Fields:    doc.Fields,
		DeviceID:  doc.DeviceID,
		ClientRef: doc.ClientRef,
	}

	resp, err := h.doRequest(ctx, http.MethodPost, documentsPath(collection), body)
	if err != nil {
		return RemoteRecord{}, &RemoteError{Collection: collection, Op: OpCreate, RecordID: doc.ClientRef, Err: err}
	}

	var created RemoteRecord
	if err := h.parseResponse(resp, &created); err != nil {
		return RemoteRecord{}, &RemoteError{
			Collection: collection, Op: OpCreate, RecordID: doc.ClientRef, Status: resp.StatusCode, Err: err,
		}
	}
	if created.ID == "" {
		return RemoteRecord{}, &RemoteError{
			Collection: collection, Op: OpCreate, RecordID: doc.ClientRef, Status: resp.StatusCode,
			Err: errors.New("сервер не вернул идентификатор"),
		}
	}

	return created, nil
}

func (h *httpTransport) upsert(ctx context.Context, collection record.Collection, doc PushDoc) (RemoteRecord, error) {
	body := upsertDocumentRequest{
		Fields:   doc.Fields,
		DeviceID: doc.DeviceID,
	}

	path := documentsPath(collection) + "/" + url.PathEscape(doc.ID)
	resp, err := h.doRequest(ctx, http.MethodPut, path, body)
	if err != nil {
		return RemoteRecord{}, &RemoteError{Collection: collection, Op: OpUpsert, RecordID: doc.ID, Err: err}
	}

	var updated RemoteRecord
	if err := h.parseResponse(resp, &updated); err != nil {
		return RemoteRecord{}, &RemoteError{
			Collection: collection, Op: OpUpsert, RecordID: doc.ID, Status: resp.StatusCode, Err: err,
		}
	}
	if updated.ID == "" {
		updated.ID = doc.ID
	}

	return updated, nil
}

func (h *httpTransport) Pull(ctx context.Context, collection record.Collection, since int64) (PullPage, error) {
	path := documentsPath(collection) + "?since=" + strconv.FormatInt(since, 10)

	resp, err := h.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return PullPage{}, &RemoteError{Collection: collection, Op: OpPull, Err: err}
	}

	var page PullPage
	if err := h.parseResponse(resp, &page); err != nil {
		return PullPage{}, &RemoteError{Collection: collection, Op: OpPull, Status: resp.StatusCode, Err: err}
	}

	h.log.Debug("Получены изменения с сервера",
		"collection", collection,
		"since", since,
		"count", len(page.Records),
		"server_time", page.ServerTime,
	)

	return page, nil
}

func documentsPath(collection record.Collection) string {
	return "/api/v1/collections/" + url.PathEscape(string(collection)) + "/documents"
}

func (h *httpTransport) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
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
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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

func (h *httpTransport) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"size", len(body),
	)

	if resp.StatusCode >= 400 {
		// ошибки сервера приходят в формате application/problem+json
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &problem); err == nil {
			if problem.Detail != "" {
				return fmt.Errorf("ошибка сервера: %s", problem.Detail)
			}
			if problem.Title != "" {
				return fmt.Errorf("ошибка сервера: %s", problem.Title)
			}
		}
		return fmt.Errorf("ошибка сервера: статус %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}
