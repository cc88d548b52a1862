package billingservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// AppointmentClosedEvent уведомление о завершённой записи.
// BillingService создаёт по нему запись о доходе.
type AppointmentClosedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	SalonID       int64     `json:"salon_id"`
	ClientID      int64     `json:"client_id"`
	ServiceIDs    []int64   `json:"service_ids"`
	WorkerIDs     []int64   `json:"worker_ids"`
	ClosedBy      int64     `json:"closed_by"`
	ClosedAt      time.Time `json:"closed_at"`
}

// Client клиент для работы с BillingService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента BillingService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NotifyAppointmentClosed отправляет событие о закрытии записи
func (c *Client) NotifyAppointmentClosed(ctx context.Context, event *AppointmentClosedEvent) error {
	url := fmt.Sprintf("%s/internal/appointments/closed", c.baseURL)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	return nil
}

// NotifyAppointmentClosedWithGracefulDegradation отправляет событие с graceful degradation.
// Закрытие записи никогда не блокируется недоступностью биллинга: любая ошибка
// доставки конвертируется в ErrServiceDegraded и логируется уровнем ERROR.
func (c *Client) NotifyAppointmentClosedWithGracefulDegradation(ctx context.Context, event *AppointmentClosedEvent) error {
	if err := c.NotifyAppointmentClosed(ctx, event); err != nil {
		c.log.Error("BillingService unavailable, applying graceful degradation for appointment_id=%d: %v",
			event.AppointmentID, err)
		return fmt.Errorf("%w: appointment_id=%d, error=%v", ErrServiceDegraded, event.AppointmentID, err)
	}

	c.log.Info("Successfully notified billing about closed appointment_id=%d", event.AppointmentID)
	return nil
}
