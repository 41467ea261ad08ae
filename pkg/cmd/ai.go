package cmd

import (
	"log/slog"

	"github.com/adviso/adviso/pkg/ai"
	"github.com/adviso/adviso/pkg/ai/httpclient"
	"github.com/adviso/adviso/pkg/ai/static"
)

// NewAIClient selects the AI collaborator. Without an endpoint the static
// client serves labeled offline responses, which keeps every surface usable
// in development.
func NewAIClient(endpoint string, logger *slog.Logger) ai.Client {
	if endpoint == "" {
		logger.Warn("No AI endpoint configured, using offline responses")

		return static.NewClient()
	}

	return httpclient.NewClient(endpoint, logger)
}
