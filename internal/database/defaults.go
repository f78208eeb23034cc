package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/debtsense/internal/database/repository"
)

// InterestCategoryName is the default category interest charges post into.
const InterestCategoryName = "Interest & Fees"

// SeedDefaults ensures baseline categories exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	catRepo := repository.NewCategoryRepo(db)
	defaults := []string{
		"Income",
		"Bills",
		"Food",
		"Transport",
		"Savings",
		InterestCategoryName,
	}
	for idx, name := range defaults {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+name)).String()
		if err := catRepo.Upsert(ctx, repository.Category{ID: id, Name: name, SortOrder: idx}); err != nil {
			return err
		}
	}
	return nil
}
