package ioc

import (
	"log"

	"github.com/IBM/sarama"
	"github.com/samarth494/Capstone-sub000/config"
	"github.com/samarth494/Capstone-sub000/event"
	"github.com/spf13/viper"
)

func InitProducer() event.Producer {
	var cfg config.KafkaConfig
	if err := viper.UnmarshalKey(cfg.Key(), &cfg); err != nil {
		log.Panicf("unmarshal kafka config failed: %v", err)
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		log.Panicf("init kafka sync producer failed: %v", err)
	}
	return event.NewSaramaSyncProducer(producer)
}
