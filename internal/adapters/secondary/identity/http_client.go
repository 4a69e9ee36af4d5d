package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/jupiterclapton/skylark/internal/core/ports"
)

// HTTPClient pousse nos changements de profil vers l'API d'administration du
// provider d'identité. Ces appels sont best-effort du point de vue métier :
// l'appelant logge et avale l'erreur, la vérité locale reste Postgres.
type HTTPClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewHTTPClient(baseURL, secretKey string) ports.IdentitySync {
	return &HTTPClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// PushDisplayName : le provider range le display name dans "first_name"
// (convention de son API, pas la nôtre).
func (c *HTTPClient) PushDisplayName(ctx context.Context, actorID, displayName string) error {
	payload, err := json.Marshal(map[string]string{"first_name": displayName})
	if err != nil {
		return fmt.Errorf("identity: marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s", c.baseURL, url.PathEscape(actorID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("identity: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	return c.do(req, "push display name")
}

func (c *HTTPClient) PushAvatar(ctx context.Context, actorID string, file ports.FileUpload) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s/profile_image", c.baseURL, url.PathEscape(actorID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("identity: new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	return c.do(req, "push avatar")
}

func (c *HTTPClient) do(req *http.Request, op string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("identity: %s: status %d: %s", op, resp.StatusCode, snippet)
	}
	return nil
}
