// Package normalizer turns loosely-shaped ad-library items into canonical ad records.
//
// Upstream scrapers disagree on naming (snake_case vs camelCase) and on nesting
// (one object vs a list of objects), so each output field is resolved through
// an ordered list of lookup paths. Nothing here returns an error: a value of
// the wrong shape simply resolves to nil for that field.
package normalizer

import (
	"fmt"
	"strings"

	"adscout/internal/domain"
)

type source int

const (
	fromItem source = iota
	fromSnapshot
	fromCard
	fromPageCategory
)

type path struct {
	src source
	key string
}

func item(key string) path         { return path{fromItem, key} }
func snapshot(key string) path     { return path{fromSnapshot, key} }
func card(key string) path         { return path{fromCard, key} }
func pageCategory(key string) path { return path{fromPageCategory, key} }

// sources holds the mappings a path may point into. Any of them may be nil.
type sources struct {
	item         map[string]any
	snapshot     map[string]any
	card         map[string]any
	pageCategory map[string]any
}

func newSources(raw domain.RawAdItem) sources {
	snap := UnwrapSnapshot(raw)
	return sources{
		item:         map[string]any(raw),
		snapshot:     snap,
		card:         firstMapping(snap["cards"]),
		pageCategory: firstMapping(snap["page_categories"]),
	}
}

func (s sources) lookup(p path) any {
	var m map[string]any
	switch p.src {
	case fromItem:
		m = s.item
	case fromSnapshot:
		m = s.snapshot
	case fromCard:
		m = s.card
	case fromPageCategory:
		m = s.pageCategory
	}
	if m == nil {
		return nil
	}
	return m[p.key]
}

type resolver func(s sources) any

// firstOf returns the first truthy value among paths.
func firstOf(paths ...path) resolver {
	return func(s sources) any {
		for _, p := range paths {
			if v := s.lookup(p); truthy(v) {
				return v
			}
		}
		return nil
	}
}

// direct copies the item value as-is, falsy values included.
func direct(key string) resolver {
	return func(s sources) any { return s.item[key] }
}

// joined flattens a list value into a ", " separated string.
func joined(key string) resolver {
	return func(s sources) any {
		v := s.item[key]
		list, ok := v.([]any)
		if !ok {
			if strs, ok := v.([]string); ok {
				return strings.Join(strs, ", ")
			}
			// scalars pass through unchanged
			return v
		}
		parts := make([]string, len(list))
		for i, el := range list {
			parts[i] = stringify(el)
		}
		return strings.Join(parts, ", ")
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

type fieldRule struct {
	field   string
	resolve resolver
}

var fieldRules = []fieldRule{
	{domain.FieldAdArchiveID, firstOf(item("ad_archive_id"), item("adId"))},
	{domain.FieldCategories, joined("categories")},
	{domain.FieldCollationCount, direct("collation_count")},
	{domain.FieldCollationID, direct("collation_id")},
	{domain.FieldStartDate, firstOf(item("start_date"), item("startDate"))},
	{domain.FieldEndDate, firstOf(item("end_date"), item("endDate"))},
	{domain.FieldEntityType, direct("entity_type")},
	{domain.FieldIsActive, direct("is_active")},
	{domain.FieldPageID, firstOf(item("page_id"), item("pageId"))},
	{domain.FieldPageName, firstOf(item("page_name"), item("pageName"))},
	{domain.FieldCTAText, firstOf(card("cta_text"), snapshot("cta_text"))},
	{domain.FieldCTAType, firstOf(card("cta_type"), snapshot("cta_type"))},
	{domain.FieldLinkURL, firstOf(snapshot("link_url"), card("link_url"))},
	{domain.FieldDisplayURL, firstOf(snapshot("caption"))},
	{domain.FieldWebsiteURL, firstOf(snapshot("link_url"), snapshot("website"), snapshot("url"))},
	{domain.FieldPageEntityType, firstOf(pageCategory("page_entity_type"), item("page_entity_type"))},
	{domain.FieldPageProfilePictureURL, firstOf(item("page_profile_picture_url"), snapshot("page_profile_picture_url"))},
	{domain.FieldPageProfileURI, firstOf(item("page_profile_uri"), snapshot("page_profile_uri"))},
	{domain.FieldStateMediaRunLabel, direct("state_media_run_label")},
	{domain.FieldTotalActiveTime, direct("total_active_time")},
	{domain.FieldOriginalImageURL, func(s sources) any { return ImageURL(s.item, s.snapshot) }},
	{domain.FieldVideoURL, func(s sources) any { return VideoURL(s.item, s.snapshot) }},
}

// ExtractRecord normalizes one raw item. It never fails; fields that cannot
// be resolved are left nil.
func ExtractRecord(raw domain.RawAdItem) domain.CanonicalAdRecord {
	s := newSources(raw)
	values := make(map[string]any, len(fieldRules))
	for _, rule := range fieldRules {
		values[rule.field] = rule.resolve(s)
	}
	return domain.RecordFromMap(values)
}

// ExtractRecords normalizes items in order.
func ExtractRecords(raw []domain.RawAdItem) []domain.CanonicalAdRecord {
	out := make([]domain.CanonicalAdRecord, len(raw))
	for i, it := range raw {
		out[i] = ExtractRecord(it)
	}
	return out
}
