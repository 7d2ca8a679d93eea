// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Symbiot01/medsight/internal/config"
	controlhttp "github.com/Symbiot01/medsight/internal/control/http"
	"github.com/Symbiot01/medsight/internal/control/http/bind"
	"github.com/Symbiot01/medsight/internal/control/http/problem"
	"github.com/Symbiot01/medsight/internal/control/middleware"
	"github.com/Symbiot01/medsight/internal/log"
	"github.com/Symbiot01/medsight/internal/storage"
	"github.com/Symbiot01/medsight/internal/telemetry"
)

// DetailStorageNotConfigured is the 503 detail for an unusable bucket configuration.
const DetailStorageNotConfigured = "storage is not configured"

// RootResponse is the body of GET /.
type RootResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// StorageResponse lists the non-secret bucket coordinates.
type StorageResponse struct {
	BucketName   string `json:"bucketName"`
	BucketRegion string `json:"bucketRegion"`
	Endpoint     string `json:"endpoint"`
}

// DownloadURLRequest is the body of POST /api/dicom/download-url.
type DownloadURLRequest struct {
	FileName  string `json:"fileName" validate:"required,min=1,max=512"`
	ExpiresIn *int   `json:"expiresIn,omitempty" validate:"omitempty,gte=60,lte=86400"`
}

// DownloadURLResponse carries a presigned download URL.
type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
	FileName  string `json:"fileName"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	controlhttp.WriteJSON(w, r, http.StatusOK, RootResponse{
		Message: "DICOM Processing Backend API",
		Status:  "running",
		Endpoints: map[string]string{
			"health":       "/healthz",
			"ready":        "/readyz",
			"storage":      "/api/storage",
			"download_url": "/api/dicom/download-url",
		},
	})
}

// bucketConfig returns the resolved configuration or the 503 every storage
// route answers with when it is unusable.
func (s *Server) bucketConfig() (config.BucketConfig, error) {
	cfg, err := s.buckets.Get()
	if err != nil {
		return config.BucketConfig{}, problem.New(http.StatusServiceUnavailable, DetailStorageNotConfigured)
	}
	return cfg, nil
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) error {
	cfg, err := s.bucketConfig()
	if err != nil {
		return err
	}
	endpoint, err := storage.Endpoint(cfg)
	if err != nil {
		return err
	}
	controlhttp.WriteJSON(w, r, http.StatusOK, StorageResponse{
		BucketName:   cfg.BucketName,
		BucketRegion: cfg.BucketRegion,
		Endpoint:     endpoint,
	})
	return nil
}

func (s *Server) handleDownloadURL(w http.ResponseWriter, r *http.Request) error {
	var req DownloadURLRequest
	if err := bind.JSON(r, &req); err != nil {
		return err
	}

	cfg, err := s.bucketConfig()
	if err != nil {
		return err
	}
	presigner, err := s.presigner()
	if err != nil {
		return problem.New(http.StatusServiceUnavailable, DetailStorageNotConfigured)
	}

	ttl := s.cfg.PresignTTL
	if req.ExpiresIn != nil {
		ttl = time.Duration(*req.ExpiresIn) * time.Second
	}

	ctx, span := telemetry.Tracer("medsight/api").Start(r.Context(), "storage.presign_get",
		trace.WithAttributes(telemetry.StorageAttributes(cfg.BucketName, cfg.BucketRegion, req.FileName)...),
	)
	url, err := presigner.PresignGet(ctx, req.FileName, ttl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "presign failed")
		span.End()
		return fmt.Errorf("presign %q: %w", req.FileName, err)
	}
	span.End()

	traceID, _ := middleware.ExtractTraceContext(r)
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(log.FieldEvent, "download_url.issued").
		Str(log.FieldBucket, cfg.BucketName).
		Dur("ttl", ttl).
		Str("trace_id", traceID).
		Msg("presigned download url issued")

	controlhttp.WriteJSON(w, r, http.StatusOK, DownloadURLResponse{
		URL:       url,
		ExpiresIn: int(ttl / time.Second),
		FileName:  req.FileName,
	})
	return nil
}
