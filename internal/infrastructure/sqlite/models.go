package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/document"
)

// documentModel is a row of the documents table. Times are Unix seconds.
type documentModel struct {
	ID        int64
	GUID      string
	Path      string
	TextHash  string
	CreatedAt int64
	UpdatedAt int64
}

func (m documentModel) toDomain() annotations.Document {
	return annotations.Document{
		GUID:      m.GUID,
		Path:      m.Path,
		Version:   m.TextHash,
		CreatedAt: time.Unix(m.CreatedAt, 0),
		UpdatedAt: time.Unix(m.UpdatedAt, 0),
	}
}

// spanModel is a row of the spans table. TokenIDs is a JSON array.
type spanModel struct {
	Position int
	Label    string
	Text     string
	TokenIDs string
	Draft    bool
	Selected bool
}

func toSpanModel(position int, s document.Span) (spanModel, error) {
	ids := s.TokenIDs
	if ids == nil {
		ids = []int{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return spanModel{}, fmt.Errorf("encoding token ids: %w", err)
	}
	return spanModel{
		Position: position,
		Label:    s.Label,
		Text:     s.Text,
		TokenIDs: string(encoded),
		Draft:    s.Draft,
		Selected: s.Selected,
	}, nil
}

func (m spanModel) toDomain() (document.Span, error) {
	var ids []int
	if err := json.Unmarshal([]byte(m.TokenIDs), &ids); err != nil {
		return document.Span{}, fmt.Errorf("decoding token ids at position %d: %w", m.Position, err)
	}
	return document.Span{
		Label:    m.Label,
		Text:     m.Text,
		TokenIDs: ids,
		Draft:    m.Draft,
		Selected: m.Selected,
	}, nil
}
