package domain

import (
	"errors"
	"time"
)

// RawAdItem is one loosely-typed ad record as decoded from the search API.
// Keys differ between scraper versions, so nothing here is guaranteed.
type RawAdItem map[string]any

// CanonicalAdRecord is the normalized, fixed-schema form of a RawAdItem.
// Values keep the upstream JSON type (string, number, bool) and are nil when
// no source field yielded a value.
type CanonicalAdRecord struct {
	AdArchiveID           any `json:"ad_archive_id"`
	Categories            any `json:"categories"`
	CollationCount        any `json:"collation_count"`
	CollationID           any `json:"collation_id"`
	StartDate             any `json:"start_date"`
	EndDate               any `json:"end_date"`
	EntityType            any `json:"entity_type"`
	IsActive              any `json:"is_active"`
	PageID                any `json:"page_id"`
	PageName              any `json:"page_name"`
	CTAText               any `json:"cta_text"`
	CTAType               any `json:"cta_type"`
	LinkURL               any `json:"link_url"`
	DisplayURL            any `json:"display_url"`
	WebsiteURL            any `json:"website_url"`
	PageEntityType        any `json:"page_entity_type"`
	PageProfilePictureURL any `json:"page_profile_picture_url"`
	PageProfileURI        any `json:"page_profile_uri"`
	StateMediaRunLabel    any `json:"state_media_run_label"`
	TotalActiveTime       any `json:"total_active_time"`
	OriginalImageURL      any `json:"original_image_url"`
	VideoURL              any `json:"video_url"`
}

// Canonical field names, in storage column order.
const (
	FieldAdArchiveID           = "ad_archive_id"
	FieldCategories            = "categories"
	FieldCollationCount        = "collation_count"
	FieldCollationID           = "collation_id"
	FieldStartDate             = "start_date"
	FieldEndDate               = "end_date"
	FieldEntityType            = "entity_type"
	FieldIsActive              = "is_active"
	FieldPageID                = "page_id"
	FieldPageName              = "page_name"
	FieldCTAText               = "cta_text"
	FieldCTAType               = "cta_type"
	FieldLinkURL               = "link_url"
	FieldDisplayURL            = "display_url"
	FieldWebsiteURL            = "website_url"
	FieldPageEntityType        = "page_entity_type"
	FieldPageProfilePictureURL = "page_profile_picture_url"
	FieldPageProfileURI        = "page_profile_uri"
	FieldStateMediaRunLabel    = "state_media_run_label"
	FieldTotalActiveTime       = "total_active_time"
	FieldOriginalImageURL      = "original_image_url"
	FieldVideoURL              = "video_url"
)

// CanonicalFields lists every key of a CanonicalAdRecord.
var CanonicalFields = []string{
	FieldAdArchiveID, FieldCategories, FieldCollationCount, FieldCollationID,
	FieldStartDate, FieldEndDate, FieldEntityType, FieldIsActive,
	FieldPageID, FieldPageName, FieldCTAText, FieldCTAType,
	FieldLinkURL, FieldDisplayURL, FieldWebsiteURL, FieldPageEntityType,
	FieldPageProfilePictureURL, FieldPageProfileURI, FieldStateMediaRunLabel,
	FieldTotalActiveTime, FieldOriginalImageURL, FieldVideoURL,
}

// RecordFromMap builds a record from a field-name keyed map. Unknown keys are ignored.
func RecordFromMap(m map[string]any) CanonicalAdRecord {
	return CanonicalAdRecord{
		AdArchiveID:           m[FieldAdArchiveID],
		Categories:            m[FieldCategories],
		CollationCount:        m[FieldCollationCount],
		CollationID:           m[FieldCollationID],
		StartDate:             m[FieldStartDate],
		EndDate:               m[FieldEndDate],
		EntityType:            m[FieldEntityType],
		IsActive:              m[FieldIsActive],
		PageID:                m[FieldPageID],
		PageName:              m[FieldPageName],
		CTAText:               m[FieldCTAText],
		CTAType:               m[FieldCTAType],
		LinkURL:               m[FieldLinkURL],
		DisplayURL:            m[FieldDisplayURL],
		WebsiteURL:            m[FieldWebsiteURL],
		PageEntityType:        m[FieldPageEntityType],
		PageProfilePictureURL: m[FieldPageProfilePictureURL],
		PageProfileURI:        m[FieldPageProfileURI],
		StateMediaRunLabel:    m[FieldStateMediaRunLabel],
		TotalActiveTime:       m[FieldTotalActiveTime],
		OriginalImageURL:      m[FieldOriginalImageURL],
		VideoURL:              m[FieldVideoURL],
	}
}

// AsMap returns the record as a map holding all canonical keys.
func (r CanonicalAdRecord) AsMap() map[string]any {
	return map[string]any{
		FieldAdArchiveID:           r.AdArchiveID,
		FieldCategories:            r.Categories,
		FieldCollationCount:        r.CollationCount,
		FieldCollationID:           r.CollationID,
		FieldStartDate:             r.StartDate,
		FieldEndDate:               r.EndDate,
		FieldEntityType:            r.EntityType,
		FieldIsActive:              r.IsActive,
		FieldPageID:                r.PageID,
		FieldPageName:              r.PageName,
		FieldCTAText:               r.CTAText,
		FieldCTAType:               r.CTAType,
		FieldLinkURL:               r.LinkURL,
		FieldDisplayURL:            r.DisplayURL,
		FieldWebsiteURL:            r.WebsiteURL,
		FieldPageEntityType:        r.PageEntityType,
		FieldPageProfilePictureURL: r.PageProfilePictureURL,
		FieldPageProfileURI:        r.PageProfileURI,
		FieldStateMediaRunLabel:    r.StateMediaRunLabel,
		FieldTotalActiveTime:       r.TotalActiveTime,
		FieldOriginalImageURL:      r.OriginalImageURL,
		FieldVideoURL:              r.VideoURL,
	}
}

// inclusive range of calendar dates, only used for filtering
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether Start does not fall after End.
func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

// DateLayout is the YYYY-MM-DD form accepted for range bounds.
const DateLayout = "2006-01-02"

// ParseDateRange accepts both bounds or neither. Neither yields a nil range.
func ParseDateRange(from, to string) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, errors.New("both start and end dates are required")
	}

	start, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, errors.New("start date must be in YYYY-MM-DD format")
	}
	end, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, errors.New("end date must be in YYYY-MM-DD format")
	}

	r := &DateRange{Start: start, End: end}
	if !r.Valid() {
		return nil, errors.New("start date must not be after end date")
	}
	return r, nil
}
