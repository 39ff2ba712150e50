package normalizer

// Candidate keys, highest priority first.
var (
	nestedImageKeys = []string{"original_image_url", "original_picture_url", "original_picture", "url", "src"}
	itemImageKeys   = []string{"imageUrl", "image_url", "thumbnailUrl", "thumbnail_url", "image"}

	nestedVideoKeys   = []string{"video_hd_url", "video_sd_url", "video_preview_url", "url", "src"}
	fallbackVideoKeys = []string{"videoUrl", "video_url", "video", "video_hd_url", "video_sd_url"}
)

// ImageURL resolves the creative image. Nested snapshot images win over
// top-level item keys.
func ImageURL(item, snapshot map[string]any) any {
	if v := firstInMappings(snapshot["images"], nestedImageKeys); v != nil {
		return v
	}
	return firstTruthyKey(item, itemImageKeys...)
}

// VideoURL resolves the creative video. After the nested snapshot videos,
// each fallback key is checked on the item and then on the snapshot before
// moving to the next key.
func VideoURL(item, snapshot map[string]any) any {
	if v := firstInMappings(snapshot["videos"], nestedVideoKeys); v != nil {
		return v
	}
	for _, k := range fallbackVideoKeys {
		if v := item[k]; truthy(v) {
			return v
		}
		if v := snapshot[k]; truthy(v) {
			return v
		}
	}
	return nil
}

// firstInMappings walks elements in order and, within each, keys in order.
func firstInMappings(v any, keys []string) any {
	for _, m := range asMappings(v) {
		if hit := firstTruthyKey(m, keys...); hit != nil {
			return hit
		}
	}
	return nil
}
