package repository

import (
	"context"

	"BubblyService/internal/models"
)

// UserRepository описывает доступ к пользователям и их интересам
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AddInterests(ctx context.Context, userID uint, interestIDs []uint) error
	GetInterests(ctx context.Context, userID uint) ([]models.Interest, error)
}

// BubbleRepository описывает доступ к баблам, участникам, тегам и журналу взаимодействий.
// WithTx выполняет fn в одной транзакции; репозиторий, переданный в fn, работает внутри нее.
type BubbleRepository interface {
	WithTx(ctx context.Context, fn func(tx BubbleRepository) error) error

	Create(ctx context.Context, bubble *models.Bubble) error
	GetByID(ctx context.Context, id uint) (*models.Bubble, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Bubble, error)
	GetSummary(ctx context.Context, id uint) (*models.BubbleSummary, error)
	List(ctx context.Context, filter models.BubbleFilter) ([]models.BubbleSummary, error)
	UpdateStatus(ctx context.Context, id uint, status models.BubbleStatus) error

	AddMember(ctx context.Context, member *models.BubbleMember) error
	GetMember(ctx context.Context, bubbleID, userID uint) (*models.BubbleMember, error)
	Rejoin(ctx context.Context, bubbleID, userID uint) error
	MarkLeft(ctx context.Context, bubbleID, userID uint) error
	CountJoined(ctx context.Context, bubbleID uint) (int64, error)
	IsMember(ctx context.Context, bubbleID, userID uint) (bool, error)
	GetMembers(ctx context.Context, bubbleID uint) ([]models.MemberInfo, error)

	AddInterests(ctx context.Context, bubbleID uint, interestIDs []uint) error
	GetInterests(ctx context.Context, bubbleID uint) ([]models.Interest, error)

	RecordInteraction(ctx context.Context, userID, bubbleID uint, action models.InteractionAction) error
}

// InterestRepository описывает доступ к справочнику интересов
type InterestRepository interface {
	All(ctx context.Context) ([]models.Interest, error)
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]models.Interest, error)
}

// MessageRepository описывает доступ к сообщениям
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByBubble(ctx context.Context, bubbleID uint) ([]models.MessageView, error)
	RecentForUser(ctx context.Context, userID uint, limit int) ([]models.MessageView, error)
}

// RecommendationRepository описывает запросы ранжирования рекомендаций
type RecommendationRepository interface {
	UserInterestIDs(ctx context.Context, userID uint) ([]uint, error)
	JoinedBubbleIDs(ctx context.Context, userID uint) ([]uint, error)
	OpenBubblesByIDs(ctx context.Context, ids []uint) ([]models.BubbleSummary, error)
	RankByInterestOverlap(ctx context.Context, userID uint, interestIDs, excludeIDs []uint, limit int) ([]models.BubbleSummary, error)
}

// SessionRepository описывает серверное хранилище сессий
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) (string, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}
