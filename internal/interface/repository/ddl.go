package repository

import "gorm.io/gorm"

// serialPrimaryKey returns the auto-increment primary key column for the connected dialect
func serialPrimaryKey(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "id BIGSERIAL PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}
