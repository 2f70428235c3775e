package ioc

import (
	"log"

	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/model"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func InitDB() *gorm.DB {
	var cfg config.MySQLConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal mysql config failed: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN))
	if err != nil {
		log.Panicf("open mysql failed: %v", err)
	}

	if err = db.AutoMigrate(
		&model.User{},
		&model.BattleArchive{},
		&model.CompetitionResult{},
	); err != nil {
		log.Panicf("auto migrate failed: %v", err)
	}
	return db
}
