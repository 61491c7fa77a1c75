package config

import (
	"github.com/JaimeStill/agent-registry/pkg/database"
	"github.com/JaimeStill/agent-registry/pkg/storage"
)

var storageEnv = &storage.Env{
	Backend:         "STORAGE_BACKEND",
	BasePath:        "STORAGE_BASE_PATH",
	MaxDocumentSize: "STORAGE_MAX_DOCUMENT_SIZE",
	Database: &database.Env{
		DSN:             "DATABASE_DSN",
		Host:            "DATABASE_HOST",
		Port:            "DATABASE_PORT",
		Name:            "DATABASE_NAME",
		User:            "DATABASE_USER",
		Password:        "DATABASE_PASSWORD",
		SSLMode:         "DATABASE_SSL_MODE",
		MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
		MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
		ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
		ConnTimeout:     "DATABASE_CONN_TIMEOUT",
	},
}
