package infrastructure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"adscout/internal/domain"
	"adscout/pkg/database"
	"adscout/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *CollectionRepository {
	t.Helper()

	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "ads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewCollectionRepository(db, logger.Discard())
}

func TestSanitizeCollectionName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Spring", "ads_spring"},
		{"drops punctuation and spaces", "Spring Sale 2024!", "ads_springsale2024"},
		{"keeps underscores", "my_list", "ads_my_list"},
		{"empty", "", "ads_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeCollectionName(tt.input))
		})
	}
}

func TestCollectionRepository_CreateCollectionSuffixesTakenName(t *testing.T) {
	repo := newTestRepository(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := t.Context()

	first, err := repo.CreateCollection(ctx, "Spring Sale", "spring ideas")
	require.NoError(t, err)
	assert.Equal(t, "ads_springsale", first.Name)

	second, err := repo.CreateCollection(ctx, "spring sale", "")
	require.NoError(t, err)
	assert.Equal(t, "ads_springsale_1714564800", second.Name)

	list, err := repo.ListCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := repo.GetCollection(ctx, "ads_springsale")
	require.NoError(t, err)
	assert.Equal(t, "spring ideas", got.Description)
	assert.True(t, got.CreatedAt.Equal(fixed))
}

func TestCollectionRepository_SaveAd(t *testing.T) {
	repo := newTestRepository(t)
	ctx := t.Context()

	c, err := repo.CreateCollection(ctx, "winners", "")
	require.NoError(t, err)

	ad := domain.CanonicalAdRecord{
		AdArchiveID:      "123",
		PageName:         "Acme",
		StartDate:        "2024-03-15",
		IsActive:         true,
		CollationCount:   2.0,
		OriginalImageURL: "https://cdn/img.jpg",
	}

	saved, err := repo.SaveAd(ctx, c.Name, ad, "great hook")
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	_, err = repo.SaveAd(ctx, c.Name, ad, "again")
	assert.ErrorIs(t, err, domain.ErrAdAlreadySaved)

	got, err := repo.GetAd(ctx, c.Name, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "123", got.Ad.AdArchiveID)
	assert.Equal(t, "Acme", got.Ad.PageName)
	assert.Equal(t, true, got.Ad.IsActive)
	assert.Equal(t, 2.0, got.Ad.CollationCount)
	assert.Nil(t, got.Ad.VideoURL)
	assert.Equal(t, "great hook", got.Notes)
}

func TestCollectionRepository_SaveAdErrors(t *testing.T) {
	repo := newTestRepository(t)
	ctx := t.Context()

	_, err := repo.SaveAd(ctx, "ads_missing", domain.CanonicalAdRecord{AdArchiveID: "1"}, "")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	c, err := repo.CreateCollection(ctx, "x", "")
	require.NoError(t, err)

	_, err = repo.SaveAd(ctx, c.Name, domain.CanonicalAdRecord{PageName: "no id"}, "")
	assert.ErrorIs(t, err, domain.ErrMissingAdID)
}

func TestCollectionRepository_SameAdInTwoCollections(t *testing.T) {
	repo := newTestRepository(t)
	ctx := t.Context()

	a, err := repo.CreateCollection(ctx, "a", "")
	require.NoError(t, err)
	b, err := repo.CreateCollection(ctx, "b", "")
	require.NoError(t, err)

	ad := domain.CanonicalAdRecord{AdArchiveID: "42"}
	_, err = repo.SaveAd(ctx, a.Name, ad, "")
	require.NoError(t, err)
	_, err = repo.SaveAd(ctx, b.Name, ad, "")
	require.NoError(t, err)
}

func TestCollectionRepository_ListAdsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := t.Context()

	c, err := repo.CreateCollection(ctx, "ordered", "")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"1", "2", "3"} {
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		_, err := repo.SaveAd(ctx, c.Name, domain.CanonicalAdRecord{AdArchiveID: id}, "")
		require.NoError(t, err)
	}

	ads, err := repo.ListAds(ctx, c.Name)
	require.NoError(t, err)
	require.Len(t, ads, 3)
	assert.Equal(t, "3", ads[0].Ad.AdArchiveID)
	assert.Equal(t, "1", ads[2].Ad.AdArchiveID)
}

func TestCollectionRepository_DeleteAd(t *testing.T) {
	repo := newTestRepository(t)
	ctx := t.Context()

	c, err := repo.CreateCollection(ctx, "del", "")
	require.NoError(t, err)
	saved, err := repo.SaveAd(ctx, c.Name, domain.CanonicalAdRecord{AdArchiveID: "1"}, "")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAd(ctx, c.Name, saved.ID))
	assert.ErrorIs(t, repo.DeleteAd(ctx, c.Name, saved.ID), domain.ErrAdNotFound)

	_, err = repo.GetAd(ctx, c.Name, saved.ID)
	assert.ErrorIs(t, err, domain.ErrAdNotFound)
}

func TestCollectionRepository_DeleteCollectionDropsContents(t *testing.T) {
	repo := newTestRepository(t)
	ctx := t.Context()

	c, err := repo.CreateCollection(ctx, "gone", "")
	require.NoError(t, err)
	saved, err := repo.SaveAd(ctx, c.Name, domain.CanonicalAdRecord{AdArchiveID: "1"}, "")
	require.NoError(t, err)
	require.NoError(t, repo.RecordGeneratedImage(ctx, domain.GeneratedImage{
		ID:          "img-1",
		Collection:  c.Name,
		SavedAdID:   saved.ID,
		VariantName: "bold",
		PromptText:  "{}",
		FilePath:    "/tmp/img-1.png",
		CreatedAt:   time.Now().UTC(),
	}))

	images, err := repo.ListGeneratedImages(ctx, c.Name)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "bold", images[0].VariantName)

	require.NoError(t, repo.DeleteCollection(ctx, c.Name))
	assert.ErrorIs(t, repo.DeleteCollection(ctx, c.Name), domain.ErrCollectionNotFound)

	_, err = repo.ListAds(ctx, c.Name)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	// recreating the name starts empty
	again, err := repo.CreateCollection(ctx, "gone", "")
	require.NoError(t, err)
	assert.Equal(t, c.Name, again.Name)
	ads, err := repo.ListAds(ctx, again.Name)
	require.NoError(t, err)
	assert.Empty(t, ads)
}
