// Package suggest turns receipt photos and voice notes into transaction
// drafts. A suggestion is only a prefill: failures degrade to nil and the
// caller falls back to manual entry, nothing is ever created automatically.
package suggest

import (
	"context"

	"zenfin/internal/core"
)

// Producer extracts a draft from raw media. Both methods return (nil, nil)
// when the model cannot produce a usable suggestion.
type Producer interface {
	FromImage(ctx context.Context, jpeg []byte) (*core.TransactionDraft, error)
	FromVoice(ctx context.Context, audio []byte, mimeType string) (*core.TransactionDraft, error)
}
