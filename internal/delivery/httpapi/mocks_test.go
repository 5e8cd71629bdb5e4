package httpapi

import (
	"context"

	"BubblyService/internal/models"
	"BubblyService/internal/service"
	"BubblyService/pkg/apperrors"
)

// MockAuthService реализует service.AuthServiceInterface через функции-заглушки
type MockAuthService struct {
	RegisterFunc      func(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	LoginFunc         func(ctx context.Context, req *models.LoginRequest) (*models.User, error)
	MeFunc            func(ctx context.Context, userID uint) (*models.User, error)
	SaveInterestsFunc func(ctx context.Context, userID uint, req *models.SaveInterestsRequest) error
	sessions          map[string]uint
	loggedOut         []string
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{sessions: make(map[string]uint)}
}

func (m *MockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return &models.User{ID: 1, Name: req.Name, Email: req.Email}, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return &models.User{ID: 1, Email: req.Email}, nil
}

func (m *MockAuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, userID)
	}
	return &models.User{ID: userID, Name: "Anna"}, nil
}

func (m *MockAuthService) SaveInterests(ctx context.Context, userID uint, req *models.SaveInterestsRequest) error {
	if m.SaveInterestsFunc != nil {
		return m.SaveInterestsFunc(ctx, userID, req)
	}
	return nil
}

func (m *MockAuthService) UserInterests(ctx context.Context, userID uint) ([]models.Interest, error) {
	return []models.Interest{{ID: 1, Name: "Chess", Category: "Games"}}, nil
}

func (m *MockAuthService) StartSession(ctx context.Context, user *models.User) (string, error) {
	id := "session-for-user"
	m.sessions[id] = user.ID
	return id, nil
}

func (m *MockAuthService) Authenticate(ctx context.Context, sessionID string) (*models.Session, error) {
	userID, ok := m.sessions[sessionID]
	if !ok {
		return nil, apperrors.Auth("Authentication required")
	}
	return &models.Session{UserID: userID}, nil
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	m.loggedOut = append(m.loggedOut, sessionID)
	delete(m.sessions, sessionID)
	return nil
}

// MockBubbleService реализует service.BubbleServiceInterface
type MockBubbleService struct {
	CreateFunc func(ctx context.Context, ownerID uint, req *models.CreateBubbleRequest) (*models.Bubble, error)
	JoinFunc   func(ctx context.Context, userID, bubbleID uint) error
	CloseFunc  func(ctx context.Context, requesterID, bubbleID uint) (*models.Bubble, error)
	GetFunc    func(ctx context.Context, id uint) (*models.BubbleDetails, error)
	lastFilter models.BubbleFilter
}

func (m *MockBubbleService) CreateBubble(ctx context.Context, ownerID uint, req *models.CreateBubbleRequest) (*models.Bubble, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, req)
	}
	return &models.Bubble{ID: 10, OwnerID: ownerID, Title: req.Title, Status: models.BubbleOpen}, nil
}

func (m *MockBubbleService) JoinBubble(ctx context.Context, userID, bubbleID uint) error {
	if m.JoinFunc != nil {
		return m.JoinFunc(ctx, userID, bubbleID)
	}
	return nil
}

func (m *MockBubbleService) LeaveBubble(ctx context.Context, userID, bubbleID uint) error {
	return nil
}

func (m *MockBubbleService) CloseBubble(ctx context.Context, requesterID, bubbleID uint) (*models.Bubble, error) {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, requesterID, bubbleID)
	}
	return &models.Bubble{ID: bubbleID, Status: models.BubbleClosed}, nil
}

func (m *MockBubbleService) IsMember(ctx context.Context, userID, bubbleID uint) (bool, error) {
	return true, nil
}

func (m *MockBubbleService) ListBubbles(ctx context.Context, filter models.BubbleFilter) ([]models.BubbleSummary, error) {
	m.lastFilter = filter
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.Validation("Invalid status")
	}
	return []models.BubbleSummary{}, nil
}

func (m *MockBubbleService) MyBubbles(ctx context.Context, userID uint) ([]models.BubbleSummary, error) {
	return m.ListBubbles(ctx, models.BubbleFilter{MemberID: &userID})
}

func (m *MockBubbleService) GetBubble(ctx context.Context, id uint) (*models.BubbleDetails, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &models.BubbleDetails{Bubble: models.Bubble{ID: id}}, nil
}

// MockMessageService реализует service.MessageServiceInterface
type MockMessageService struct {
	SendFunc func(ctx context.Context, userID, bubbleID uint, content string) (*models.Message, error)
}

func (m *MockMessageService) Send(ctx context.Context, userID, bubbleID uint, content string) (*models.Message, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, userID, bubbleID, content)
	}
	return &models.Message{ID: 1, BubbleID: bubbleID, SenderID: userID, Content: content}, nil
}

func (m *MockMessageService) List(ctx context.Context, userID, bubbleID uint) ([]models.MessageView, error) {
	return []models.MessageView{}, nil
}

func (m *MockMessageService) Recent(ctx context.Context, userID uint) ([]models.MessageView, error) {
	return []models.MessageView{}, nil
}

// MockInterestService реализует service.InterestServiceInterface
type MockInterestService struct{}

func (m *MockInterestService) All(ctx context.Context) ([]models.Interest, error) {
	return []models.Interest{{ID: 1, Name: "Chess", Category: "Games"}}, nil
}

func (m *MockInterestService) Categories(ctx context.Context) ([]string, error) {
	return []string{"Games"}, nil
}

func (m *MockInterestService) ByCategory(ctx context.Context, category string) ([]models.Interest, error) {
	return []models.Interest{}, nil
}

// MockRecommendationService реализует service.RecommendationServiceInterface
type MockRecommendationService struct {
	trainErr error
}

func (m *MockRecommendationService) GetRecommendations(ctx context.Context, userID uint) ([]models.BubbleSummary, error) {
	return []models.BubbleSummary{{Bubble: models.Bubble{ID: 5}}, {Bubble: models.Bubble{ID: 2}}}, nil
}

func (m *MockRecommendationService) TrainModel(ctx context.Context) error {
	return m.trainErr
}

func (m *MockRecommendationService) Health(ctx context.Context) service.MLHealth {
	return service.MLHealth{Status: "degraded", MLService: "unavailable"}
}
