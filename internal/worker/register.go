package worker

import (
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"motortax-web/internal/config"
)

const TaskDeclarationGenerate = "declaration:generate"

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	declarationHandler := NewDeclarationTaskHandler(db, redis, cfg)
	mux.HandleFunc(TaskDeclarationGenerate, declarationHandler.Handle)
}
