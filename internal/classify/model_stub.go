//go:build !cgo
// +build !cgo

package classify

import (
	"errors"
	"image"
)

// Classifier stub type when built without CGO (see model_cgo.go for the real implementation).
type Classifier struct{}

// NewClassifier returns an error when built without CGO (ONNX Runtime not available).
func NewClassifier(_ string, _ int) (*Classifier, error) {
	return nil, errors.New("image classifier requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Classify never succeeds in the !cgo build.
func (c *Classifier) Classify(_ string, _ image.Image) (string, error) {
	return "", errors.New("image classifier requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Close is a no-op stub.
func (c *Classifier) Close() error { return nil }
