package openai

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/lagunalab/cartodex/internal/domain"
)

// EmbedImage vectorizes raw image bytes in the joint visual/text space. The
// image is sent as a base64 data URI to the joint encoder's embeddings
// endpoint.
func (e *Embedder) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	mime := http.DetectContentType(image)
	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
	return e.embedInput(ctx, uri)
}
