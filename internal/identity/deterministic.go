package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID identifies a page imported from the fixture at sourcePath.
func PageUUID(sourcePath string) uuid.UUID {
	return UUID("feincms:page:" + strings.Trim(strings.TrimSpace(sourcePath), "/"))
}

// ContentItemUUID identifies the index-th imported item of a page region.
func ContentItemUUID(pageID uuid.UUID, region string, index int) uuid.UUID {
	return UUID("feincms:content_item:" + pageID.String() + ":" + strings.TrimSpace(region) + ":" + strconv.Itoa(index))
}
