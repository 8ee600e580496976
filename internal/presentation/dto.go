// Package presentation converts annotation data into the JSON shapes the
// CLI reads and writes.
package presentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/document"
)

// ExportDTO is the export envelope for one document.
type ExportDTO struct {
	Path      string          `json:"path"`
	GUID      string          `json:"guid,omitempty"`
	Version   string          `json:"version"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
	Objects   []document.Span `json:"objects"`
}

// TokenDTO is one token as printed by the tokens command.
type TokenDTO struct {
	Index         int    `json:"index"`
	Text          string `json:"text"`
	TrailingSpace bool   `json:"trailing_space"`
}

// FromDomainRecord converts a stored record to an export envelope.
func FromDomainRecord(rec annotations.Record) ExportDTO {
	dto := ExportDTO{
		Path:    rec.Path,
		GUID:    rec.GUID,
		Version: rec.Version,
		Objects: rec.Objects,
	}
	if !rec.UpdatedAt.IsZero() {
		updated := rec.UpdatedAt.UTC()
		dto.UpdatedAt = &updated
	}
	if dto.Objects == nil {
		dto.Objects = []document.Span{}
	}
	return dto
}

// FromDomainTokens converts tokens for printing.
func FromDomainTokens(tokens []document.Token) []TokenDTO {
	dtos := make([]TokenDTO, len(tokens))
	for i, t := range tokens {
		dtos[i] = TokenDTO{Index: t.Index, Text: t.Text, TrailingSpace: t.TrailingSpace}
	}
	return dtos
}

// ParseObjects decodes an object list. It accepts either a bare JSON array
// of spans or an export envelope.
func ParseObjects(data []byte) ([]document.Span, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("parsing objects: empty input")
	}

	var objects []document.Span
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return nil, fmt.Errorf("parsing objects: %w", err)
		}
	} else {
		var env ExportDTO
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("parsing export: %w", err)
		}
		objects = env.Objects
	}
	if objects == nil {
		objects = document.Clear()
	}
	return objects, nil
}
