package models

import (
	"fmt"
	"strconv"
	"strings"
)

// BubbleStatus статус жизненного цикла бабла: open -> closed, обратного перехода нет
type BubbleStatus string

const (
	BubbleOpen   BubbleStatus = "open"
	BubbleClosed BubbleStatus = "closed"
)

// Valid проверяет допустимость значения
func (s BubbleStatus) Valid() bool {
	return s == BubbleOpen || s == BubbleClosed
}

// Visibility видимость бабла
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid проверяет допустимость значения
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// MemberRole роль участника бабла
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// Valid проверяет допустимость значения
func (r MemberRole) Valid() bool {
	return r == RoleOwner || r == RoleMember
}

// MembershipStatus статус членства: joined <-> left, повторное вступление разрешено
type MembershipStatus string

const (
	MembershipJoined MembershipStatus = "joined"
	MembershipLeft   MembershipStatus = "left"
)

// Valid проверяет допустимость значения
func (s MembershipStatus) Valid() bool {
	return s == MembershipJoined || s == MembershipLeft
}

// InteractionAction тип события в журнале взаимодействий
type InteractionAction string

const (
	ActionView InteractionAction = "view"
	ActionJoin InteractionAction = "join"
)

// Valid проверяет допустимость значения
func (a InteractionAction) Valid() bool {
	return a == ActionView || a == ActionJoin
}

// FlexibleInt целое число, которое клиент может прислать как JSON-число или как строку с числом
type FlexibleInt int

// UnmarshalJSON принимает 25, "25" и null
func (n *FlexibleInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if raw == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	*n = FlexibleInt(v)
	return nil
}
