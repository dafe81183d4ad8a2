package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Cache stores read results of the job catalogue. A nil Cache disables
// caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const (
	listKeyPrefix   = "jobs:list:"
	detailKeyPrefix = "jobs:detail:"
)

type listKeyInput struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	Company  string `json:"company"`
	Page     int    `json:"page"`
	Size     int    `json:"size"`
}

func normalizeSearchValue(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func listCacheKey(in ListInput) string {
	p := in.Page.Normalize()
	b, _ := json.Marshal(listKeyInput{
		Title:    normalizeSearchValue(in.Title),
		Location: normalizeSearchValue(in.Location),
		Company:  normalizeSearchValue(in.Company),
		Page:     p.Page,
		Size:     p.Size,
	})
	sum := sha256.Sum256(b)
	return listKeyPrefix + hex.EncodeToString(sum[:])
}

func detailCacheKey(id uuid.UUID) string {
	return detailKeyPrefix + id.String()
}
