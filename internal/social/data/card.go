package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/jayabdulraman/social-agent-backend/internal/pkg/errors"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/social/models"
	"github.com/jayabdulraman/social-agent-backend/internal/social/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CardRepo persists posted-content cards and enforces the one-way
// preview to posted transition.
type CardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewCardRepo creates a CardRepo.
func NewCardRepo(db *gorm.DB, log *logger.Logger) *CardRepo {
	return &CardRepo{db: db, log: log}
}

// SavePreview stores a preview card and returns its id.
func (r *CardRepo) SavePreview(ctx context.Context, platform string, card *types.Card) (string, error) {
	sources := ""
	if len(card.Sources) > 0 {
		data, err := json.Marshal(card.Sources)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrInternalServer, "marshal sources")
		}
		sources = string(data)
	}

	record := &models.PostCard{
		Platform:     platform,
		Content:      card.Content,
		UserID:       card.UserID,
		Posted:       false,
		SourcesJSON:  sources,
		ResearchText: card.ResearchText,
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDatabaseError, "save preview card")
	}

	r.log.Debug("preview card saved",
		zap.String("id", record.ID),
		zap.String("platform", platform),
	)
	return record.ID, nil
}

// MarkPosted transitions a preview card to posted. The update only
// matches unposted rows, so a second publish of the same card fails
// with ErrPostAlreadyPosted instead of overwriting the first.
func (r *CardRepo) MarkPosted(ctx context.Context, id, postID, postURL string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.PostCard{}).
		Where("id = ? AND posted = ?", id, false).
		Updates(map[string]interface{}{
			"posted":    true,
			"post_id":   postID,
			"post_url":  postURL,
			"posted_at": &now,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, apperrors.ErrDatabaseError, "mark card posted")
	}
	if result.RowsAffected == 0 {
		var record models.PostCard
		err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.ErrPostCardNotFound, id)
		}
		return apperrors.New(apperrors.ErrPostAlreadyPosted, id)
	}
	return nil
}

// FindLatestPreview returns the newest unposted card matching the
// user and content, or nil when none exists.
func (r *CardRepo) FindLatestPreview(ctx context.Context, platform, userID, content string) (*models.PostCard, error) {
	var record models.PostCard
	err := r.db.WithContext(ctx).
		Where("platform = ? AND user_id = ? AND content = ? AND posted = ?", platform, userID, content, false).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseError, "find preview card")
	}
	return &record, nil
}

// SavePosted stores a card that was published without a prior preview.
func (r *CardRepo) SavePosted(ctx context.Context, platform string, card *types.Card) (string, error) {
	now := time.Now()
	record := &models.PostCard{
		Platform: platform,
		Content:  card.Content,
		UserID:   card.UserID,
		Posted:   true,
		PostedAt: &now,
		PostID:   firstNonEmpty(card.TweetID, card.PostID),
		PostURL:  firstNonEmpty(card.TweetURL, card.PostURL),
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrDatabaseError, "save posted card")
	}
	return record.ID, nil
}

// ListByUser returns the user's cards, newest first.
func (r *CardRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.PostCard, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.PostCard
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseError, "list cards")
	}
	return records, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
