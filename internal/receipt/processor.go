package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/models"
)

// Extractor reads a receipt image. categories are offered to the model as
// suggestions for the line items.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string, categories []*models.Category) (*ExtractedReceipt, error)
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Processor runs the whole receipt flow: extraction, image upload and
// materialization.
type Processor struct {
	categories   CategoryLister
	extractor    Extractor
	uploader     Uploader
	materializer *Materializer
	now          func() time.Time
}

func NewProcessor(categories CategoryLister, extractor Extractor, uploader Uploader, materializer *Materializer) *Processor {
	return &Processor{
		categories:   categories,
		extractor:    extractor,
		uploader:     uploader,
		materializer: materializer,
		now:          time.Now,
	}
}

func (p *Processor) ProcessImage(ctx context.Context, userID, accountID uuid.UUID, image []byte, mimeType string, opts Options) (*Result, error) {
	if len(image) == 0 {
		return nil, apperr.Validation("image is required")
	}
	if accountID == uuid.Nil {
		return nil, apperr.Validation("account_id is required")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	log := logger.FromContext(ctx)

	categories, err := p.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	extracted, err := p.extractor.Extract(ctx, image, mimeType, categories)
	if err != nil {
		if apperr.Classified(err) {
			return nil, err
		}
		return nil, apperr.External("receipt extraction", err)
	}
	log.Info().Str("merchant", extracted.MerchantName).Int("items", len(extracted.Items)).Msg("receipt analyzed")

	key := fmt.Sprintf("%s/%d.jpg", userID, p.now().UnixMilli())
	url, err := p.uploader.Upload(ctx, key, image, mimeType)
	if err != nil {
		return nil, apperr.External("receipt upload", err)
	}
	log.Debug().Str("url", url).Msg("receipt image uploaded")

	return p.materializer.Materialize(ctx, userID, accountID, url, *extracted, opts)
}
