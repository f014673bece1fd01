package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

// cacheKeyVersion is bumped whenever the cached payload shape or the key layout changes.
const cacheKeyVersion = "v1"

// Cache namespaces. Statistics live apart from listings since their TTL differs.
const (
	sessionsNamespace      = "unified_sessions"
	subscriptionsNamespace = "unified_subscriptions"
	statisticsNamespace    = "unified_stats"
)

// cacheKeyParams is the fixed-order identity of a cached read. Field order is
// the hash order.
type cacheKeyParams struct {
	Op       string   `json:"op"`
	Tenant   string   `json:"tenant"`
	Audience []string `json:"audience"`
	Status   string   `json:"status"`
	Kinds    []string `json:"kinds"`
	From     string   `json:"from"`
	To       string   `json:"to"`
}

// buildCacheKey derives a deterministic key: audience and kinds are sorted and
// deduplicated, times are truncated to the second in UTC.
func buildCacheKey(namespace, op, tenantID string, audience []string, status string, kinds []models.Kind, from, to *time.Time) string {
	params := cacheKeyParams{
		Op:       op,
		Tenant:   tenantID,
		Audience: canonicalIDs(audience),
		Status:   status,
		Kinds:    canonicalKinds(kinds),
		From:     cacheTime(from),
		To:       cacheTime(to),
	}
	payload, _ := json.Marshal(params)
	sum := sha256.Sum256(payload)

	var builder strings.Builder
	builder.Grow(len(namespace) + len(op) + len(tenantID) + 80)
	builder.WriteString(namespace)
	builder.WriteByte(':')
	builder.WriteString(cacheKeyVersion)
	builder.WriteByte(':')
	builder.WriteString(op)
	builder.WriteByte(':')
	builder.WriteString(strings.ReplaceAll(tenantID, ":", "|"))
	builder.WriteByte(':')
	builder.WriteString(hex.EncodeToString(sum[:]))
	return builder.String()
}

func canonicalIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func canonicalKinds(kinds []models.Kind) []string {
	normalized := models.NormalizeKinds(kinds)
	out := make([]string, len(normalized))
	for i, kind := range normalized {
		out[i] = string(kind)
	}
	sort.Strings(out)
	return out
}

func cacheTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
