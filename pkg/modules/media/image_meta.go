// pkg/modules/media/image_meta.go
// Package media contains modules that analyze media artifacts.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
)

const (
	imageMetaModuleName = "image_meta_module"

	fetchTimeout  = 10 * time.Second
	maxImageBytes = 16 << 20
)

// ImageMetaModule extracts basic metadata from an image supplied as an
// upload or a URL and returns a single presentation card with the image
// embedded for display.
type ImageMetaModule struct {
	desc   engine.ModuleDescriptor
	client *http.Client
	logger zerolog.Logger
}

// NewImageMetaModule constructs the module. It has no configuration.
func NewImageMetaModule(engine.Env) (engine.Module, error) {
	return &ImageMetaModule{
		desc: engine.ModuleDescriptor{
			Name:        imageMetaModuleName,
			DisplayName: "Image Metadata Extractor",
			Description: "Extracts metadata from an image (upload or URL) and displays it.",
			Version:     "0.1.0",
			Author:      "OSFiler Team",
			RequiredParams: []engine.ParamSpec{
				{Name: "image_file", Type: "file", Description: "Image file to analyze (optional if image_url is provided)"},
				{Name: "image_url", Type: "string", Description: "URL to an image (optional if image_file is provided)"},
			},
			OptionalParams: []engine.ParamSpec{},
			Category:       "media",
			Tags:           []string{"image", "metadata"},
			Enabled:        true,
			HasConfig:      false,
			ConfigSchema:   engine.Schema{},
		},
		client: &http.Client{Timeout: fetchTimeout},
		logger: log.With().Str("module", imageMetaModuleName).Logger(),
	}, nil
}

// Metadata implements engine.Module.
func (m *ImageMetaModule) Metadata() engine.ModuleDescriptor {
	return m.desc
}

// ValidateParams implements engine.Module. The declared parameters are
// alternatives: at least one of image_file or image_url must be non-empty.
func (m *ImageMetaModule) ValidateParams(params map[string]any) bool {
	if fileBytes, _, ok := fileParam(params["image_file"]); ok && len(fileBytes) > 0 {
		return true
	}
	if url := strings.TrimSpace(cast.ToString(params["image_url"])); url != "" {
		return true
	}
	m.logger.Error().Msg("Missing required parameter: either image_file or image_url must be provided")
	return false
}

// LoadConfig implements engine.Module. The module has no configuration.
func (m *ImageMetaModule) LoadConfig(bool) map[string]any {
	return map[string]any{}
}

// SaveConfig implements engine.Module. The module has no configuration.
func (m *ImageMetaModule) SaveConfig(map[string]any) error {
	return engine.ErrNoConfig
}

// Execute implements engine.Module.
func (m *ImageMetaModule) Execute(ctx context.Context, params map[string]any) (any, error) {
	data, filename, source, err := m.imageBytes(ctx, params)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to decode image")
		return nil, fmt.Errorf("%w: could not read image metadata", engine.ErrInvalidInput)
	}

	meta := map[string]any{
		"format":     format,
		"width":      cfg.Width,
		"height":     cfg.Height,
		"size_bytes": len(data),
		"source":     source,
	}
	if filename != "" {
		meta["filename"] = filename
	}

	subtitle := filename
	if subtitle == "" {
		subtitle = source
	}
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))

	card := engine.NewCard("Image Metadata", meta).
		WithSubtitle(subtitle).
		WithImage(dataURL)
	result := engine.BuildResult(
		[]engine.Card{card},
		engine.DisplaySingleCard,
		"Image Metadata",
		fmt.Sprintf("Metadata for %s", subtitle),
	)
	return result, nil
}

// imageBytes resolves the image payload from either parameter form.
func (m *ImageMetaModule) imageBytes(ctx context.Context, params map[string]any) (data []byte, filename, source string, err error) {
	if fileBytes, name, ok := fileParam(params["image_file"]); ok && len(fileBytes) > 0 {
		return fileBytes, name, "upload", nil
	}

	url := strings.TrimSpace(cast.ToString(params["image_url"]))
	if url == "" {
		return nil, "", "", fmt.Errorf("%w: either image_file or image_url must be provided", engine.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: invalid image_url", engine.ErrInvalidInput)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, "", "", fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read image: %w", err)
	}

	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	return data, parts[len(parts)-1], "url", nil
}

// fileParam extracts raw bytes and filename from a file-like parameter.
func fileParam(v any) (data []byte, filename string, ok bool) {
	switch file := v.(type) {
	case engine.FileParam:
		return file.Data, file.Filename, true
	case *engine.FileParam:
		if file == nil {
			return nil, "", false
		}
		return file.Data, file.Filename, true
	case []byte:
		return file, "", true
	default:
		return nil, "", false
	}
}

func init() {
	engine.Register(imageMetaModuleName, NewImageMetaModule)
}
