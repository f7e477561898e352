package db

import (
	"errors"
	"fmt"

	"github.com/ca-risken/common/pkg/logging"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Schema   string
}

type Client struct {
	DB     *gorm.DB
	logger logging.Logger
}

func NewClient(conf *Config, logger logging.Logger) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&interpolateParams=true&parseTime=true&loc=Local",
		conf.User, conf.Password, conf.Host, conf.Port, conf.Schema)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: host=%s, schema=%s, err=%w", conf.Host, conf.Schema, err)
	}
	return &Client{DB: db, logger: logger}, nil
}
