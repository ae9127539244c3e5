package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kmarchat/streamgate/internal/models"
	"github.com/kmarchat/streamgate/internal/xtream"
)

// PayloadKind is the caller-declared shape of a bulk listing payload.
// Dispatch is explicit rather than sniffed from the payload or action string.
type PayloadKind int

const (
	PayloadVodList PayloadKind = iota + 1
	PayloadSeriesList
)

// Action returns the provider action that produces this listing.
func (k PayloadKind) Action() string {
	if k == PayloadSeriesList {
		return xtream.ActionSeries
	}
	return xtream.ActionVodStreams
}

// ItemType returns the catalog type rows of this listing are stored under.
func (k PayloadKind) ItemType() models.ItemType {
	if k == PayloadSeriesList {
		return models.ItemTypeSeries
	}
	return models.ItemTypeVod
}

func (k PayloadKind) String() string {
	return string(k.ItemType())
}

// ExtractItems projects a raw listing payload into catalog items. Elements
// missing a numeric id or a name are dropped from the batch rather than
// rejecting the whole payload; drop reasons are aggregated into errs.
// fetched is the number of elements the payload decoded to.
func ExtractItems(kind PayloadKind, payload []byte) (items []models.Item, fetched int, errs []string) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, []string{fmt.Sprintf("decode %s payload: %v", kind, err)}
	}

	idField, posterField := "stream_id", "stream_icon"
	if kind == PayloadSeriesList {
		idField, posterField = "series_id", "cover"
	}

	var missingID, missingName int
	for _, entry := range raw {
		id, ok := numericID(entry[idField])
		if !ok {
			missingID++
			continue
		}

		name := strings.TrimSpace(stringField(entry, "name"))
		if name == "" {
			missingName++
			continue
		}

		item := models.Item{
			ID:   id,
			Type: kind.ItemType(),
			Name: name,
		}
		if poster := strings.TrimSpace(stringField(entry, posterField)); poster != "" {
			item.PosterURL = &poster
		}
		if category, ok := numericID(entry["category_id"]); ok {
			item.CategoryID = &category
		}

		items = append(items, item)
	}

	if missingID > 0 {
		errs = append(errs, fmt.Sprintf("%d items missing %s", missingID, idField))
	}
	if missingName > 0 {
		errs = append(errs, fmt.Sprintf("%d items missing name", missingName))
	}

	return items, len(raw), errs
}

// numericID stringifies a provider identifier. Providers are inconsistent and
// send ids as JSON numbers or numeric strings; anything else is rejected.
func numericID(v any) (string, bool) {
	switch value := v.(type) {
	case json.Number:
		if _, err := strconv.ParseInt(value.String(), 10, 64); err != nil {
			return "", false
		}
		return value.String(), true
	case string:
		value = strings.TrimSpace(value)
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return "", false
		}
		return value, true
	default:
		return "", false
	}
}

func stringField(entry map[string]any, key string) string {
	if s, ok := entry[key].(string); ok {
		return s
	}
	return ""
}
