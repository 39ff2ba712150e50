package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"adscout/internal/domain"
	"adscout/pkg/logger"

	"github.com/mattn/go-sqlite3"
)

// CollectionRepository is the SQLite-backed domain.CollectionRepository.
type CollectionRepository struct {
	db     *sql.DB
	logger *logger.Logger
	now    func() time.Time
}

func NewCollectionRepository(db *sql.DB, logger *logger.Logger) *CollectionRepository {
	return &CollectionRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// SanitizeCollectionName keeps letters, digits and underscores, lowercases
// them and adds the "ads_" prefix.
func SanitizeCollectionName(name string) string {
	var b strings.Builder
	b.WriteString("ads_")
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// CreateCollection stores a new collection under the sanitized form of name.
// When that name is taken the current unix time is appended.
func (r *CollectionRepository) CreateCollection(ctx context.Context, name, description string) (*domain.Collection, error) {
	safeName := SanitizeCollectionName(name)

	exists, err := r.collectionExists(ctx, safeName)
	if err != nil {
		return nil, err
	}
	if exists {
		safeName = fmt.Sprintf("%s_%d", safeName, r.now().Unix())
	}

	c := domain.Collection{
		Name:        safeName,
		Description: description,
		CreatedAt:   r.now().UTC(),
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO collections (name, description, created_at)
		VALUES (?, ?, ?)
	`, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	r.logger.WithContext(ctx).WithField("collection", c.Name).Info("Created collection")
	return &c, nil
}

func (r *CollectionRepository) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, description, created_at
		FROM collections
		ORDER BY created_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var out []domain.Collection
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collections rows: %w", err)
	}
	return out, nil
}

func (r *CollectionRepository) GetCollection(ctx context.Context, name string) (*domain.Collection, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, description, created_at
		FROM collections
		WHERE name = ?
	`, name)

	var c domain.Collection
	if err := row.Scan(&c.Name, &c.Description, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &c, nil
}

// DeleteCollection removes the collection together with its ads and
// generated-image records.
func (r *CollectionRepository) DeleteCollection(ctx context.Context, name string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete collection: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		`DELETE FROM generated_images WHERE collection = ?`,
		`DELETE FROM saved_ads WHERE collection = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, name); err != nil {
			return fmt.Errorf("delete collection contents: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete collection rows: %w", err)
	}
	if affected == 0 {
		err = domain.ErrCollectionNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete collection: %w", err)
	}

	r.logger.WithContext(ctx).WithField("collection", name).Info("Deleted collection")
	return nil
}

// SaveAd inserts ad into collection unless an ad with the same
// ad_archive_id is already there.
func (r *CollectionRepository) SaveAd(ctx context.Context, collection string, ad domain.CanonicalAdRecord, notes string) (*domain.SavedAd, error) {
	adID := textValue(ad.AdArchiveID)
	if adID == "" {
		return nil, domain.ErrMissingAdID
	}

	if _, err := r.GetCollection(ctx, collection); err != nil {
		return nil, err
	}

	record, err := json.Marshal(ad)
	if err != nil {
		return nil, fmt.Errorf("encode ad record: %w", err)
	}

	saved := domain.SavedAd{
		Collection: collection,
		Ad:         ad,
		Notes:      notes,
		SavedAt:    r.now().UTC(),
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO saved_ads (collection, ad_archive_id, page_name, start_date, record, notes, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, collection, adID, textValue(ad.PageName), textValue(ad.StartDate), string(record), notes, saved.SavedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, domain.ErrAdAlreadySaved
		}
		return nil, fmt.Errorf("save ad: %w", err)
	}

	if saved.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("save ad id: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"collection":    collection,
		"ad_archive_id": adID,
	}).Info("Saved ad")

	return &saved, nil
}

// ListAds returns the collection's ads, newest first.
func (r *CollectionRepository) ListAds(ctx context.Context, collection string) ([]domain.SavedAd, error) {
	if _, err := r.GetCollection(ctx, collection); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, collection, record, notes, saved_at
		FROM saved_ads
		WHERE collection = ?
		ORDER BY saved_at DESC, id DESC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedAd
	for rows.Next() {
		ad, err := scanSavedAd(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ads rows: %w", err)
	}
	return out, nil
}

func (r *CollectionRepository) GetAd(ctx context.Context, collection string, id int64) (*domain.SavedAd, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, collection, record, notes, saved_at
		FROM saved_ads
		WHERE collection = ? AND id = ?
	`, collection, id)

	ad, err := scanSavedAd(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAdNotFound
	}
	return ad, err
}

func (r *CollectionRepository) DeleteAd(ctx context.Context, collection string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_ads WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ad rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrAdNotFound
	}
	return nil
}

func (r *CollectionRepository) RecordGeneratedImage(ctx context.Context, img domain.GeneratedImage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO generated_images (id, collection, saved_ad_id, variant_name, prompt_text, file_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, img.ID, img.Collection, img.SavedAdID, img.VariantName, img.PromptText, img.FilePath, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("record generated image: %w", err)
	}
	return nil
}

func (r *CollectionRepository) ListGeneratedImages(ctx context.Context, collection string) ([]domain.GeneratedImage, error) {
	if _, err := r.GetCollection(ctx, collection); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, collection, saved_ad_id, variant_name, prompt_text, file_path, created_at
		FROM generated_images
		WHERE collection = ?
		ORDER BY created_at DESC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list generated images: %w", err)
	}
	defer rows.Close()

	var out []domain.GeneratedImage
	for rows.Next() {
		var img domain.GeneratedImage
		if err := rows.Scan(&img.ID, &img.Collection, &img.SavedAdID, &img.VariantName, &img.PromptText, &img.FilePath, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated image: %w", err)
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list generated images rows: %w", err)
	}
	return out, nil
}

func (r *CollectionRepository) collectionExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM collections WHERE name = ?`, name).Scan(&n); err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedAd(row rowScanner) (*domain.SavedAd, error) {
	var (
		ad     domain.SavedAd
		record string
	)
	if err := row.Scan(&ad.ID, &ad.Collection, &record, &ad.Notes, &ad.SavedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan saved ad: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(record), &fields); err != nil {
		return nil, fmt.Errorf("decode saved ad %d: %w", ad.ID, err)
	}
	ad.Ad = domain.RecordFromMap(fields)
	return &ad, nil
}

// textValue renders an upstream value for an indexed TEXT column.
func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
