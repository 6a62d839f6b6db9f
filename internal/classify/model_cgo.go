//go:build cgo
// +build cgo

// Package classify runs a MobileNet-v2 image classifier via ONNX Runtime
// (requires CGO and the onnxruntime shared library).
package classify

import (
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Classifier holds a loaded ONNX MobileNet-v2 session and its tensors.
type Classifier struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	numClasses   int
	cache        *labelCache
	mu           sync.Mutex
}

// NewClassifier initialises the ONNX Runtime environment and loads the
// ONNX model at modelPath. The environment is initialised on every call,
// without checking whether an earlier call already did so.
func NewClassifier(modelPath string, cacheSize int) (*Classifier, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	numClasses := len(labels)

	inputTensor, err := ort.NewTensor(ort.NewShape(1, inputSize, inputSize, 3), make([]float32, inputSize*inputSize*3))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewTensor(ort.NewShape(1, int64(numClasses)), make([]float32, numClasses))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Classifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		numClasses:   numClasses,
		cache:        newLabelCache(cacheSize),
	}, nil
}

// Classify returns the top-1 class label for img, using the digest as a
// cache key so repeated observations of an unchanged file skip inference.
func (c *Classifier) Classify(digest string, img image.Image) (string, error) {
	if cached, ok := c.cache.Get(digest); ok {
		return cached, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tensor := preprocess(img)
	copy(c.inputTensor.GetData(), tensor)

	if err := c.session.Run(); err != nil {
		return "", fmt.Errorf("inference failed: %w", err)
	}

	logits := c.outputTensor.GetData()
	best := argmax(logits)
	result := label(best)
	c.cache.Set(digest, result)
	return result, nil
}

// Close destroys the session and tensors.
func (c *Classifier) Close() error {
	var err error
	if c.session != nil {
		err = c.session.Destroy()
		c.session = nil
	}
	if c.inputTensor != nil {
		_ = c.inputTensor.Destroy()
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		_ = c.outputTensor.Destroy()
		c.outputTensor = nil
	}
	return err
}

func argmax(logits []float32) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}
