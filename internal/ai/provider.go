package ai

import "context"

type Provider interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error)
}

// ImageProvider is implemented by providers that can render an image
// from a text prompt. Doodle rounds require one; providers without
// image support simply don't implement it.
type ImageProvider interface {
	GenerateImage(ctx context.Context, model string, prompt string) ([]byte, error)
}
