package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var errMockFailure = errors.New("mock failure")

type memberKey struct {
	bubbleID uint
	userID   uint
}

type interactionKey struct {
	userID   uint
	bubbleID uint
	action   models.InteractionAction
}

// Мок для репозитория баблов. WithTx откатывает изменения, если fn вернула ошибку.
type MockBubbleRepository struct {
	bubbles      map[uint]*models.Bubble
	members      map[memberKey]*models.BubbleMember
	interests    map[uint][]uint
	interactions map[interactionKey]int
	userNames    map[uint]string
	nextID       uint
	clock        time.Time

	failAddMember bool
	txCount       int
}

func NewMockBubbleRepository() *MockBubbleRepository {
	return &MockBubbleRepository{
		bubbles:      make(map[uint]*models.Bubble),
		members:      make(map[memberKey]*models.BubbleMember),
		interests:    make(map[uint][]uint),
		interactions: make(map[interactionKey]int),
		userNames:    make(map[uint]string),
		clock:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *MockBubbleRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type bubbleSnapshot struct {
	bubbles      map[uint]models.Bubble
	members      map[memberKey]models.BubbleMember
	interests    map[uint][]uint
	interactions map[interactionKey]int
	nextID       uint
}

func (m *MockBubbleRepository) snapshot() bubbleSnapshot {
	s := bubbleSnapshot{
		bubbles:      make(map[uint]models.Bubble, len(m.bubbles)),
		members:      make(map[memberKey]models.BubbleMember, len(m.members)),
		interests:    make(map[uint][]uint, len(m.interests)),
		interactions: make(map[interactionKey]int, len(m.interactions)),
		nextID:       m.nextID,
	}
	for k, v := range m.bubbles {
		s.bubbles[k] = *v
	}
	for k, v := range m.members {
		s.members[k] = *v
	}
	for k, v := range m.interests {
		s.interests[k] = append([]uint(nil), v...)
	}
	for k, v := range m.interactions {
		s.interactions[k] = v
	}
	return s
}

func (m *MockBubbleRepository) restore(s bubbleSnapshot) {
	m.bubbles = make(map[uint]*models.Bubble, len(s.bubbles))
	for k, v := range s.bubbles {
		b := v
		m.bubbles[k] = &b
	}
	m.members = make(map[memberKey]*models.BubbleMember, len(s.members))
	for k, v := range s.members {
		mem := v
		m.members[k] = &mem
	}
	m.interests = s.interests
	m.interactions = s.interactions
	m.nextID = s.nextID
}

func (m *MockBubbleRepository) WithTx(ctx context.Context, fn func(tx repository.BubbleRepository) error) error {
	m.txCount++
	saved := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

func (m *MockBubbleRepository) Create(ctx context.Context, bubble *models.Bubble) error {
	m.nextID++
	bubble.ID = m.nextID
	bubble.CreatedAt = m.tick()
	stored := *bubble
	m.bubbles[bubble.ID] = &stored
	return nil
}

// seedBubble добавляет бабл напрямую, минуя сервис
func (m *MockBubbleRepository) seedBubble(ownerID uint, status models.BubbleStatus, maxMembers *int) *models.Bubble {
	b := &models.Bubble{
		OwnerID:    ownerID,
		Title:      "bubble",
		Visibility: models.VisibilityPublic,
		MaxMembers: maxMembers,
		Status:     status,
	}
	_ = m.Create(context.Background(), b)
	m.members[memberKey{b.ID, ownerID}] = &models.BubbleMember{
		BubbleID: b.ID, UserID: ownerID, Role: models.RoleOwner, Status: models.MembershipJoined, JoinedAt: m.clock,
	}
	return b
}

func (m *MockBubbleRepository) GetByID(ctx context.Context, id uint) (*models.Bubble, error) {
	b, ok := m.bubbles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *MockBubbleRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Bubble, error) {
	return m.GetByID(ctx, id)
}

func (m *MockBubbleRepository) summary(b *models.Bubble) models.BubbleSummary {
	count, _ := m.CountJoined(context.Background(), b.ID)
	return models.BubbleSummary{
		Bubble:      *b,
		OwnerName:   m.userNames[b.OwnerID],
		MemberCount: count,
	}
}

func (m *MockBubbleRepository) GetSummary(ctx context.Context, id uint) (*models.BubbleSummary, error) {
	b, ok := m.bubbles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s := m.summary(b)
	return &s, nil
}

func (m *MockBubbleRepository) List(ctx context.Context, filter models.BubbleFilter) ([]models.BubbleSummary, error) {
	result := make([]models.BubbleSummary, 0)
	for _, b := range m.bubbles {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.MemberID != nil {
			mem, ok := m.members[memberKey{b.ID, *filter.MemberID}]
			if !ok || mem.Status != models.MembershipJoined {
				continue
			}
		}
		result = append(result, m.summary(b))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBubbleRepository) UpdateStatus(ctx context.Context, id uint, status models.BubbleStatus) error {
	b, ok := m.bubbles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = status
	return nil
}

func (m *MockBubbleRepository) AddMember(ctx context.Context, member *models.BubbleMember) error {
	if m.failAddMember {
		return errMockFailure
	}
	key := memberKey{member.BubbleID, member.UserID}
	if _, exists := m.members[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	stored := *member
	m.members[key] = &stored
	return nil
}

func (m *MockBubbleRepository) GetMember(ctx context.Context, bubbleID, userID uint) (*models.BubbleMember, error) {
	mem, ok := m.members[memberKey{bubbleID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *mem
	return &copied, nil
}

func (m *MockBubbleRepository) Rejoin(ctx context.Context, bubbleID, userID uint) error {
	if mem, ok := m.members[memberKey{bubbleID, userID}]; ok {
		mem.Status = models.MembershipJoined
		mem.JoinedAt = m.tick()
	}
	return nil
}

func (m *MockBubbleRepository) MarkLeft(ctx context.Context, bubbleID, userID uint) error {
	if mem, ok := m.members[memberKey{bubbleID, userID}]; ok {
		mem.Status = models.MembershipLeft
	}
	return nil
}

func (m *MockBubbleRepository) CountJoined(ctx context.Context, bubbleID uint) (int64, error) {
	var count int64
	for key, mem := range m.members {
		if key.bubbleID == bubbleID && mem.Status == models.MembershipJoined {
			count++
		}
	}
	return count, nil
}

func (m *MockBubbleRepository) IsMember(ctx context.Context, bubbleID, userID uint) (bool, error) {
	mem, ok := m.members[memberKey{bubbleID, userID}]
	return ok && mem.Status == models.MembershipJoined, nil
}

func (m *MockBubbleRepository) GetMembers(ctx context.Context, bubbleID uint) ([]models.MemberInfo, error) {
	members := make([]models.MemberInfo, 0)
	for key, mem := range m.members {
		if key.bubbleID == bubbleID && mem.Status == models.MembershipJoined {
			members = append(members, models.MemberInfo{
				ID: key.userID, Name: m.userNames[key.userID], Role: mem.Role, JoinedAt: mem.JoinedAt,
			})
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if (members[i].Role == models.RoleOwner) != (members[j].Role == models.RoleOwner) {
			return members[i].Role == models.RoleOwner
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

func (m *MockBubbleRepository) AddInterests(ctx context.Context, bubbleID uint, interestIDs []uint) error {
	for _, id := range interestIDs {
		exists := false
		for _, existing := range m.interests[bubbleID] {
			if existing == id {
				exists = true
				break
			}
		}
		if !exists {
			m.interests[bubbleID] = append(m.interests[bubbleID], id)
		}
	}
	return nil
}

func (m *MockBubbleRepository) GetInterests(ctx context.Context, bubbleID uint) ([]models.Interest, error) {
	interests := make([]models.Interest, 0)
	for _, id := range m.interests[bubbleID] {
		interests = append(interests, models.Interest{ID: id})
	}
	return interests, nil
}

func (m *MockBubbleRepository) RecordInteraction(ctx context.Context, userID, bubbleID uint, action models.InteractionAction) error {
	key := interactionKey{userID, bubbleID, action}
	if _, exists := m.interactions[key]; !exists {
		m.interactions[key] = 1
	}
	return nil
}

// Мок для репозитория пользователей
type MockUserRepository struct {
	users     map[uint]*models.User
	byEmail   map[string]*models.User
	interests map[uint][]uint
	err       error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:     make(map[uint]*models.User),
		byEmail:   make(map[string]*models.User),
		interests: make(map[uint][]uint),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	if _, exists := m.byEmail[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	user.ID = uint(len(m.users) + 1)
	m.users[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *MockUserRepository) AddInterests(ctx context.Context, userID uint, interestIDs []uint) error {
	for _, id := range interestIDs {
		exists := false
		for _, existing := range m.interests[userID] {
			if existing == id {
				exists = true
				break
			}
		}
		if !exists {
			m.interests[userID] = append(m.interests[userID], id)
		}
	}
	return nil
}

func (m *MockUserRepository) GetInterests(ctx context.Context, userID uint) ([]models.Interest, error) {
	interests := make([]models.Interest, 0)
	for _, id := range m.interests[userID] {
		interests = append(interests, models.Interest{ID: id})
	}
	return interests, nil
}

// Мок для хранилища сессий
type MockSessionRepository struct {
	sessions map[string]*models.Session
	err      error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*models.Session)}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	id := "sid-" + string(rune('a'+len(m.sessions)))
	m.sessions[id] = session
	return id, nil
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	session, ok := m.sessions[id]
	if !ok {
		return nil, redis.Nil
	}
	return session, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.sessions, id)
	return nil
}

// Мок для репозитория сообщений
type MockMessageRepository struct {
	messages    []models.Message
	recentLimit int
}

func (m *MockMessageRepository) Create(ctx context.Context, message *models.Message) error {
	message.ID = uint(len(m.messages) + 1)
	message.CreatedAt = time.Now()
	m.messages = append(m.messages, *message)
	return nil
}

func (m *MockMessageRepository) ListByBubble(ctx context.Context, bubbleID uint) ([]models.MessageView, error) {
	views := make([]models.MessageView, 0)
	for _, msg := range m.messages {
		if msg.BubbleID == bubbleID {
			views = append(views, models.MessageView{Message: msg})
		}
	}
	return views, nil
}

func (m *MockMessageRepository) RecentForUser(ctx context.Context, userID uint, limit int) ([]models.MessageView, error) {
	m.recentLimit = limit
	return []models.MessageView{}, nil
}

// Мок для репозитория рекомендаций
type MockRecommendationRepository struct {
	open        map[uint]models.BubbleSummary
	interestIDs []uint
	joinedIDs   []uint
	ranked      []models.BubbleSummary

	requestedIDs  []uint
	rankCalled    bool
	rankInterests []uint
	rankExcluded  []uint
	rankLimit     int
}

func NewMockRecommendationRepository() *MockRecommendationRepository {
	return &MockRecommendationRepository{open: make(map[uint]models.BubbleSummary)}
}

func (m *MockRecommendationRepository) addOpen(ids ...uint) {
	for _, id := range ids {
		m.open[id] = models.BubbleSummary{Bubble: models.Bubble{ID: id, Status: models.BubbleOpen}}
	}
}

func (m *MockRecommendationRepository) UserInterestIDs(ctx context.Context, userID uint) ([]uint, error) {
	return m.interestIDs, nil
}

func (m *MockRecommendationRepository) JoinedBubbleIDs(ctx context.Context, userID uint) ([]uint, error) {
	return m.joinedIDs, nil
}

// OpenBubblesByIDs возвращает строки в порядке возрастания id, как это делает SQL без ORDER BY
func (m *MockRecommendationRepository) OpenBubblesByIDs(ctx context.Context, ids []uint) ([]models.BubbleSummary, error) {
	m.requestedIDs = ids
	rows := make([]models.BubbleSummary, 0)
	for _, id := range ids {
		if b, ok := m.open[id]; ok {
			rows = append(rows, b)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (m *MockRecommendationRepository) RankByInterestOverlap(ctx context.Context, userID uint, interestIDs, excludeIDs []uint, limit int) ([]models.BubbleSummary, error) {
	m.rankCalled = true
	m.rankInterests = interestIDs
	m.rankExcluded = excludeIDs
	m.rankLimit = limit
	return m.ranked, nil
}

// Мок для ML-клиента
type MockMLClient struct {
	ids        []uint
	predictErr error
	trainErr   error
	health     interface{}
	healthErr  error
}

func (m *MockMLClient) Predict(ctx context.Context, userID uint, limit int) ([]uint, error) {
	return m.ids, m.predictErr
}

func (m *MockMLClient) Train(ctx context.Context) error {
	return m.trainErr
}

func (m *MockMLClient) Health(ctx context.Context) (interface{}, error) {
	return m.health, m.healthErr
}

// Мок для справочника интересов
type MockInterestRepository struct {
	interests []models.Interest
}

func (m *MockInterestRepository) All(ctx context.Context) ([]models.Interest, error) {
	return m.interests, nil
}

func (m *MockInterestRepository) Categories(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, i := range m.interests {
		if !seen[i.Category] {
			seen[i.Category] = true
			categories = append(categories, i.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *MockInterestRepository) ByCategory(ctx context.Context, category string) ([]models.Interest, error) {
	result := make([]models.Interest, 0)
	for _, i := range m.interests {
		if i.Category == category {
			result = append(result, i)
		}
	}
	return result, nil
}
