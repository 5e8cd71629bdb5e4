package postgres

import (
	"context"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"

	"gorm.io/gorm"
)

var _ repository.RecommendationRepository = (*RecommendationRepository)(nil)

// RecommendationRepository запросы для ранжирования рекомендаций
type RecommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository создает новый экземпляр RecommendationRepository
func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// UserInterestIDs возвращает id интересов пользователя
func (r *RecommendationRepository) UserInterestIDs(ctx context.Context, userID uint) (_ []uint, err error) {
	defer observe("recommendation_user_interests", time.Now(), &err)

	ids := make([]uint, 0)
	err = r.db.WithContext(ctx).
		Model(&models.UserInterest{}).
		Where("user_id = ?", userID).
		Pluck("interest_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// JoinedBubbleIDs возвращает id баблов, где пользователь состоит
func (r *RecommendationRepository) JoinedBubbleIDs(ctx context.Context, userID uint) (_ []uint, err error) {
	defer observe("recommendation_joined_bubbles", time.Now(), &err)

	ids := make([]uint, 0)
	err = r.db.WithContext(ctx).
		Model(&models.BubbleMember{}).
		Where("user_id = ? AND status = ?", userID, models.MembershipJoined).
		Pluck("bubble_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// OpenBubblesByIDs возвращает открытые баблы из списка. Порядок строк не определен.
func (r *RecommendationRepository) OpenBubblesByIDs(ctx context.Context, ids []uint) (_ []models.BubbleSummary, err error) {
	bubbles := make([]models.BubbleSummary, 0)
	if len(ids) == 0 {
		return bubbles, nil
	}
	defer observe("recommendation_open_by_ids", time.Now(), &err)

	err = summaryQuery(r.db.WithContext(ctx)).
		Select(summaryColumns).
		Where("b.id = ANY(?) AND b.status = ?", idArray(ids), models.BubbleOpen).
		Scan(&bubbles).Error
	if err != nil {
		return nil, err
	}
	return bubbles, nil
}

// RankByInterestOverlap возвращает до limit открытых баблов, не принадлежащих пользователю
// и не из excludeIDs. При непустом interestIDs сортировка по числу общих интересов,
// затем по новизне; иначе только по новизне.
func (r *RecommendationRepository) RankByInterestOverlap(ctx context.Context, userID uint, interestIDs, excludeIDs []uint, limit int) (_ []models.BubbleSummary, err error) {
	defer observe("recommendation_rank_overlap", time.Now(), &err)

	query := summaryQuery(r.db.WithContext(ctx))
	order := "b.created_at DESC"
	if len(interestIDs) > 0 {
		query = query.Select(summaryColumns+
			", COUNT(DISTINCT CASE WHEN bi.interest_id = ANY(?) THEN bi.interest_id END) AS overlap_count",
			idArray(interestIDs))
		order = "overlap_count DESC, b.created_at DESC"
	} else {
		query = query.Select(summaryColumns)
	}

	query = query.Where("b.status = ? AND b.owner_id <> ?", models.BubbleOpen, userID)
	if len(excludeIDs) > 0 {
		query = query.Where("NOT (b.id = ANY(?))", idArray(excludeIDs))
	}

	bubbles := make([]models.BubbleSummary, 0)
	if err = query.Order(order).Limit(limit).Scan(&bubbles).Error; err != nil {
		return nil, err
	}
	return bubbles, nil
}
