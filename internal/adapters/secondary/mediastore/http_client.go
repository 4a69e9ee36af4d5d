package mediastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/jupiterclapton/skylark/internal/core/domain"
	"github.com/jupiterclapton/skylark/internal/core/ports"
)

// HTTPClient parle au service d'upload de médias (boîte noire) : un POST
// multipart avec le blob, le namespace de destination et un hint de
// transformation optionnel ; en retour un chemin stocké, une classification
// image/vidéo et, pour les images, une hauteur.
type HTTPClient struct {
	baseURL    string
	privateKey string
	http       *http.Client
}

func NewHTTPClient(baseURL, privateKey string) ports.MediaStore {
	return &HTTPClient{
		baseURL:    baseURL,
		privateKey: privateKey,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Réponse du media service
type uploadResponse struct {
	FilePath string `json:"filePath"`
	FileType string `json:"fileType"` // "image" ou "video"
	Height   int    `json:"height"`
}

func (c *HTTPClient) Upload(ctx context.Context, in ports.UploadInput) (*ports.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("fileName", in.FileName); err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}
	if err := writer.WriteField("folder", in.Folder); err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}
	if in.Transformation != "" {
		if err := writer.WriteField("transformation", in.Transformation); err != nil {
			return nil, fmt.Errorf("media: build request: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", in.FileName)
	if err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}
	if _, err := part.Write(in.Data); err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/files/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("media: new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		// On lit un peu du corps pour le diagnostic, sans le déverser entier dans l'erreur
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("media: upload failed: status %d: %s", resp.StatusCode, snippet)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("media: decode response: %w", err)
	}

	mediaType := domain.MediaTypeImage
	if out.FileType == "video" {
		mediaType = domain.MediaTypeVideo
	}

	return &ports.UploadResult{
		Path:   out.FilePath,
		Type:   mediaType,
		Height: out.Height,
	}, nil
}
