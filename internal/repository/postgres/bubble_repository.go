package postgres

import (
	"context"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ repository.BubbleRepository = (*BubbleRepository)(nil)

// BubbleRepository представляет репозиторий баблов, участников и журнала взаимодействий
type BubbleRepository struct {
	db *gorm.DB
}

// NewBubbleRepository создает новый экземпляр BubbleRepository
func NewBubbleRepository(db *gorm.DB) *BubbleRepository {
	return &BubbleRepository{db: db}
}

// WithTx выполняет fn в транзакции. Ошибка или паника в fn откатывает все изменения.
func (r *BubbleRepository) WithTx(ctx context.Context, fn func(tx repository.BubbleRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BubbleRepository{db: tx})
	})
}

// Create создает бабл
func (r *BubbleRepository) Create(ctx context.Context, bubble *models.Bubble) (err error) {
	defer observe("bubble_create", time.Now(), &err)
	return r.db.WithContext(ctx).Create(bubble).Error
}

// GetByID получает бабл по ID
func (r *BubbleRepository) GetByID(ctx context.Context, id uint) (_ *models.Bubble, err error) {
	defer observe("bubble_get_by_id", time.Now(), &err)

	var bubble models.Bubble
	if err = r.db.WithContext(ctx).First(&bubble, id).Error; err != nil {
		return nil, err
	}
	return &bubble, nil
}

// GetByIDForUpdate получает бабл и блокирует строку до конца транзакции.
// Конкурентные вступления в один бабл выполняются последовательно.
func (r *BubbleRepository) GetByIDForUpdate(ctx context.Context, id uint) (_ *models.Bubble, err error) {
	defer observe("bubble_get_for_update", time.Now(), &err)

	var bubble models.Bubble
	err = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bubble, id).Error
	if err != nil {
		return nil, err
	}
	return &bubble, nil
}

// GetSummary получает бабл с именем владельца, числом участников и интересами
func (r *BubbleRepository) GetSummary(ctx context.Context, id uint) (_ *models.BubbleSummary, err error) {
	defer observe("bubble_get_summary", time.Now(), &err)

	var rows []models.BubbleSummary
	err = summaryQuery(r.db.WithContext(ctx)).
		Select(summaryColumns).
		Where("b.id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		err = gorm.ErrRecordNotFound
		return nil, err
	}
	return &rows[0], nil
}

// List возвращает баблы по фильтру, новые первыми. Пустой фильтр возвращает все баблы.
func (r *BubbleRepository) List(ctx context.Context, filter models.BubbleFilter) (_ []models.BubbleSummary, err error) {
	defer observe("bubble_list", time.Now(), &err)

	query := summaryQuery(r.db.WithContext(ctx)).Select(summaryColumns)
	if filter.Status != nil {
		query = query.Where("b.status = ?", *filter.Status)
	}
	if filter.MemberID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM bubble_members m WHERE m.bubble_id = b.id AND m.user_id = ? AND m.status = ?)",
			*filter.MemberID, models.MembershipJoined)
	}

	bubbles := make([]models.BubbleSummary, 0)
	if err = query.Order("b.created_at DESC").Scan(&bubbles).Error; err != nil {
		return nil, err
	}
	return bubbles, nil
}

// UpdateStatus меняет статус бабла
func (r *BubbleRepository) UpdateStatus(ctx context.Context, id uint, status models.BubbleStatus) (err error) {
	defer observe("bubble_update_status", time.Now(), &err)

	result := r.db.WithContext(ctx).
		Model(&models.Bubble{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddMember добавляет строку участника
func (r *BubbleRepository) AddMember(ctx context.Context, member *models.BubbleMember) (err error) {
	defer observe("bubble_add_member", time.Now(), &err)
	return r.db.WithContext(ctx).Create(member).Error
}

// GetMember возвращает строку участника независимо от статуса
func (r *BubbleRepository) GetMember(ctx context.Context, bubbleID, userID uint) (_ *models.BubbleMember, err error) {
	defer observe("bubble_get_member", time.Now(), &err)

	var member models.BubbleMember
	err = r.db.WithContext(ctx).
		Where("bubble_id = ? AND user_id = ?", bubbleID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Rejoin возвращает существующую строку участника в статус joined и обновляет joined_at
func (r *BubbleRepository) Rejoin(ctx context.Context, bubbleID, userID uint) (err error) {
	defer observe("bubble_rejoin", time.Now(), &err)

	return r.db.WithContext(ctx).
		Model(&models.BubbleMember{}).
		Where("bubble_id = ? AND user_id = ?", bubbleID, userID).
		Updates(map[string]interface{}{
			"status":    models.MembershipJoined,
			"joined_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

// MarkLeft переводит участника в статус left. Отсутствие строки не считается ошибкой.
func (r *BubbleRepository) MarkLeft(ctx context.Context, bubbleID, userID uint) (err error) {
	defer observe("bubble_mark_left", time.Now(), &err)

	return r.db.WithContext(ctx).
		Model(&models.BubbleMember{}).
		Where("bubble_id = ? AND user_id = ?", bubbleID, userID).
		Update("status", models.MembershipLeft).Error
}

// CountJoined считает участников со статусом joined
func (r *BubbleRepository) CountJoined(ctx context.Context, bubbleID uint) (_ int64, err error) {
	defer observe("bubble_count_joined", time.Now(), &err)

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.BubbleMember{}).
		Where("bubble_id = ? AND status = ?", bubbleID, models.MembershipJoined).
		Count(&count).Error
	return count, err
}

// IsMember проверяет, состоит ли пользователь в бабле
func (r *BubbleRepository) IsMember(ctx context.Context, bubbleID, userID uint) (_ bool, err error) {
	defer observe("bubble_is_member", time.Now(), &err)

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.BubbleMember{}).
		Where("bubble_id = ? AND user_id = ? AND status = ?", bubbleID, userID, models.MembershipJoined).
		Count(&count).Error
	return count > 0, err
}

// GetMembers возвращает участников бабла: владелец первым, затем по времени вступления
func (r *BubbleRepository) GetMembers(ctx context.Context, bubbleID uint) (_ []models.MemberInfo, err error) {
	defer observe("bubble_get_members", time.Now(), &err)

	members := make([]models.MemberInfo, 0)
	err = r.db.WithContext(ctx).
		Table("bubble_members bm").
		Select("u.id, u.name, u.email, u.sex, u.age, bm.role, bm.joined_at").
		Joins("JOIN users u ON u.id = bm.user_id").
		Where("bm.bubble_id = ? AND bm.status = ?", bubbleID, models.MembershipJoined).
		Order("CASE WHEN bm.role = 'owner' THEN 0 ELSE 1 END, bm.joined_at").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// AddInterests привязывает интересы к бабл; дубликаты пропускаются
func (r *BubbleRepository) AddInterests(ctx context.Context, bubbleID uint, interestIDs []uint) (err error) {
	if len(interestIDs) == 0 {
		return nil
	}
	defer observe("bubble_add_interests", time.Now(), &err)

	rows := make([]models.BubbleInterest, 0, len(interestIDs))
	for _, id := range interestIDs {
		rows = append(rows, models.BubbleInterest{BubbleID: bubbleID, InterestID: id})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// GetInterests возвращает интересы бабла
func (r *BubbleRepository) GetInterests(ctx context.Context, bubbleID uint) (_ []models.Interest, err error) {
	defer observe("bubble_get_interests", time.Now(), &err)

	interests := make([]models.Interest, 0)
	err = r.db.WithContext(ctx).
		Joins("JOIN bubble_interests bi ON bi.interest_id = interests.id").
		Where("bi.bubble_id = ?", bubbleID).
		Order("interests.category, interests.name").
		Find(&interests).Error
	if err != nil {
		return nil, err
	}
	return interests, nil
}

// RecordInteraction добавляет запись в журнал; повтор (user, bubble, action) ничего не меняет
func (r *BubbleRepository) RecordInteraction(ctx context.Context, userID, bubbleID uint, action models.InteractionAction) (err error) {
	defer observe("bubble_record_interaction", time.Now(), &err)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "bubble_id"}, {Name: "action"}},
			DoNothing: true,
		}).
		Create(&models.UserBubbleInteraction{
			UserID:   userID,
			BubbleID: bubbleID,
			Action:   action,
		}).Error
}
