package repositories

import (
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/store"
)

// Tables returns the key layout of every table the repositories use
func Tables() []store.Table {
	return []store.Table{
		{Name: models.TableItems, Key: []string{"id"}},
		{Name: models.TableLikeFacts, Key: []string{"user_id", "item_id"}},
		{Name: models.TableSaveFacts, Key: []string{"user_id", "item_id"}},
		{Name: models.TableProfiles, Key: []string{"user_id"}},
	}
}
