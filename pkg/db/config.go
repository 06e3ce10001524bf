package db

import (
	"time"

	"github.com/smallbiznis/invoicedesk/internal/config"
)

type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	Path            string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
}

func NewConfig(cfg config.Config) Config {
	return Config{
		Type:            cfg.StoreDriver,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		Path:            cfg.DBPath,
		MaxIdleConn:     5,
		MaxOpenConn:     20,
		ConnMaxLifetime: 30 * time.Minute,
	}
}
