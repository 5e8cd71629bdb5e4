package postgres

import (
	"errors"
	"time"

	"BubblyService/internal/models"
	"BubblyService/pkg/server"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// summaryColumns колонки строки списка баблов: сам бабл, имя владельца,
// число участников со статусом joined и названия интересов
const summaryColumns = `b.*, COALESCE(u.name, '') AS owner_name, ` +
	`COUNT(DISTINCT bm.user_id) AS member_count, ` +
	`ARRAY_REMOVE(ARRAY_AGG(DISTINCT i.name), NULL) AS interests`

// summaryQuery строит общий запрос для BubbleSummary; Select задается вызывающим кодом
func summaryQuery(db *gorm.DB) *gorm.DB {
	return db.Table("bubbles b").
		Joins("LEFT JOIN users u ON u.id = b.owner_id").
		Joins("LEFT JOIN bubble_members bm ON bm.bubble_id = b.id AND bm.status = ?", models.MembershipJoined).
		Joins("LEFT JOIN bubble_interests bi ON bi.bubble_id = b.id").
		Joins("LEFT JOIN interests i ON i.id = bi.interest_id").
		Group("b.id, u.name")
}

// idArray превращает список id в массив PostgreSQL для = ANY(?)
func idArray(ids []uint) interface{} {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return pq.Array(out)
}

// observe записывает метрики операции; "не найдено" не считается ошибкой базы
func observe(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	server.RecordDBOperation(operation, time.Since(start), err)
}
