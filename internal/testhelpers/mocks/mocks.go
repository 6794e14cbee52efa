// Package mocks holds testify mocks for the upstream collaborators shared by
// several packages' tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Completer is a mock implementation of a chat completion client
type Completer struct {
	mock.Mock
}

func (m *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// ImageGenerator is a mock implementation of an image generation client
type ImageGenerator struct {
	mock.Mock
}

func (m *ImageGenerator) GenerateImage(ctx context.Context, description string) (string, error) {
	args := m.Called(ctx, description)
	return args.String(0), args.Error(1)
}
