package models

import (
	"log"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&StockRecord{},
		&ReplenishmentWave{}, &ReplenishmentTask{},
		&FragmentationSample{},
		&SyncLogEntry{},
		&ReplenishmentSettings{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
