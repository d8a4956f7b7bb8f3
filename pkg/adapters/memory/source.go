package memory

import (
	"context"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// Source implements ports.ItemSource over a fixed list of items.
type Source struct {
	Items []domain.ItemSpec
}

// LoadItems returns a copy of the configured items.
func (s Source) LoadItems(ctx context.Context) ([]domain.ItemSpec, error) {
	return append([]domain.ItemSpec(nil), s.Items...), nil
}
