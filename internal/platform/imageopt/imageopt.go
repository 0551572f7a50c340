// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package imageopt shrinks stored page and cover images in place.

Optimisation is best effort: a file that cannot be decoded or rewritten is
left exactly as uploaded and the failure is only logged.
*/
package imageopt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Optimizer rewrites image files in place.
type Optimizer interface {
	Optimize(ctx context.Context, paths []string)
}

// Noop leaves every file untouched.
type Noop struct{}

// Optimize implements [Optimizer].
func (Noop) Optimize(context.Context, []string) {}

// Resizer caps image width and re-encodes JPEGs at a fixed quality.
type Resizer struct {
	maxWidth int
	quality  int
	logger   *slog.Logger
}

// NewResizer builds a [Resizer].
func NewResizer(maxWidth, quality int, logger *slog.Logger) *Resizer {
	return &Resizer{maxWidth: maxWidth, quality: quality, logger: logger}
}

// Optimize processes each path, stopping early only if ctx is cancelled.
func (resizer *Resizer) Optimize(ctx context.Context, paths []string) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		if err := resizer.optimizeFile(path); err != nil {
			resizer.logger.WarnContext(ctx, "image_optimize_failed",
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
	}
}

// optimizeFile rewrites one file through a sibling temp file and a rename,
// so a crash never leaves a half-written page behind.
func (resizer *Resizer) optimizeFile(path string) error {
	extension := strings.ToLower(filepath.Ext(path))

	// GIFs may be animated and imaging keeps only the first frame; WebP has no encoder.
	if extension == ".gif" || extension == ".webp" {
		return nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("imageopt: decode: %w", err)
	}

	bounds := img.Bounds()
	resized := bounds.Dx() > resizer.maxWidth
	if resized {
		img = imaging.Resize(img, resizer.maxWidth, 0, imaging.Lanczos)
	}

	// PNGs are lossless; without a resize there is nothing to gain
	if !resized && extension == ".png" {
		return nil
	}

	temporary := strings.TrimSuffix(path, filepath.Ext(path)) + ".opt" + extension
	if err := imaging.Save(img, temporary, imaging.JPEGQuality(resizer.quality)); err != nil {
		_ = os.Remove(temporary)
		return fmt.Errorf("imageopt: encode: %w", err)
	}

	// Keep the original when re-encoding made it larger
	if before, after := fileSize(path), fileSize(temporary); !resized && after >= before {
		return os.Remove(temporary)
	}

	if err := os.Rename(temporary, path); err != nil {
		_ = os.Remove(temporary)
		return fmt.Errorf("imageopt: replace: %w", err)
	}
	return nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
