package domain

import (
	"context"
)

// remote ad-library search
type AdSearchClient interface {
	SearchAds(ctx context.Context, query SearchQuery) ([]RawAdItem, error)
}

// storage for collections, saved ads and generated-image provenance
type CollectionRepository interface {
	CreateCollection(ctx context.Context, name, description string) (*Collection, error)
	ListCollections(ctx context.Context) ([]Collection, error)
	GetCollection(ctx context.Context, name string) (*Collection, error)
	DeleteCollection(ctx context.Context, name string) error

	SaveAd(ctx context.Context, collection string, ad CanonicalAdRecord, notes string) (*SavedAd, error)
	ListAds(ctx context.Context, collection string) ([]SavedAd, error)
	GetAd(ctx context.Context, collection string, id int64) (*SavedAd, error)
	DeleteAd(ctx context.Context, collection string, id int64) error

	RecordGeneratedImage(ctx context.Context, img GeneratedImage) error
	ListGeneratedImages(ctx context.Context, collection string) ([]GeneratedImage, error)
}

// vision assistant turning creative images into a CreativeSpec
type AssistantClient interface {
	AnalyzeImages(ctx context.Context, images []SourceImage) (*CreativeSpec, error)
}

// image-generation endpoint
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, error)
}

// downloads creative images by URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (*SourceImage, error)
}

// persists generated image bytes and returns their location
type ImageStore interface {
	Save(ctx context.Context, collection, name string, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
}
