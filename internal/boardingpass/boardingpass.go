// Package boardingpass retrieves rendered boarding passes for completed bookings.
package boardingpass

import (
	"context"
	"errors"
	"fmt"

	"booking-wizard/internal/models"

	"go.uber.org/zap"
)

var (
	ErrNoBooking     = errors.New("No booking ID available")
	ErrInvalidFormat = errors.New("Invalid format")
)

var contentTypes = map[string]string{
	models.FormatPNG: "image/png",
	models.FormatPDF: "application/pdf",
}

// Fetcher renders an artifact on the backend.
type Fetcher interface {
	BoardingPass(ctx context.Context, bookingID, style, format string) ([]byte, error)
}

// Cache keeps artifacts that rendered successfully.
type Cache interface {
	Get(ctx context.Context, bookingID, style, format string) ([]byte, bool, error)
	Set(ctx context.Context, bookingID, style, format string, data []byte) error
}

// Artifact is a downloadable boarding pass.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

type Retriever struct {
	fetcher Fetcher
	cache   Cache
	logger  *zap.Logger
}

// NewRetriever builds a retriever. cache may be nil.
func NewRetriever(fetcher Fetcher, cache Cache, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{fetcher: fetcher, cache: cache, logger: logger}
}

// Preview returns the image rendering. A failed render never replaces a
// previously cached one.
func (r *Retriever) Preview(ctx context.Context, bookingID, style string) ([]byte, error) {
	return r.fetch(ctx, bookingID, style, models.FormatPNG)
}

// Download returns the artifact in the requested format with its file name.
func (r *Retriever) Download(ctx context.Context, bookingID, style, format string) (*Artifact, error) {
	contentType, ok := contentTypes[format]
	if !ok {
		return nil, ErrInvalidFormat
	}
	data, err := r.fetch(ctx, bookingID, style, format)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		FileName:    FileName(bookingID, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// FileName is the name a downloaded artifact is saved under.
func FileName(bookingID, format string) string {
	return fmt.Sprintf("boarding-pass-%s.%s", bookingID, format)
}

// ContentType maps a format to its MIME type.
func ContentType(format string) string {
	return contentTypes[format]
}

func (r *Retriever) fetch(ctx context.Context, bookingID, style, format string) ([]byte, error) {
	if bookingID == "" {
		return nil, ErrNoBooking
	}
	if style == "" {
		style = models.DefaultBoardingPassStyle
	}

	if r.cache != nil {
		data, hit, err := r.cache.Get(ctx, bookingID, style, format)
		if err != nil {
			r.logger.Warn("Boarding pass cache read failed", zap.String("booking_id", bookingID), zap.Error(err))
		} else if hit {
			return data, nil
		}
	}

	data, err := r.fetcher.BoardingPass(ctx, bookingID, style, format)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, bookingID, style, format, data); err != nil {
			r.logger.Warn("Boarding pass cache write failed", zap.String("booking_id", bookingID), zap.Error(err))
		}
	}
	return data, nil
}
