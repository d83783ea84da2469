package main

import (
	"log/slog"
	"sync"

	"movienight/proj/internal/api/tasks"
	"movienight/proj/internal/config"
	"movienight/proj/internal/lib/decoder"
	"movienight/proj/internal/lib/validator"
	"movienight/proj/internal/services"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	Services  *services.Services
	validator *govalidator.Validate
	decoder   *schema.Decoder
	bgTasks   *tasks.BackgroundTasks
	done      chan struct{}
	closeOnce sync.Once
}

// NewApplication assembles the HTTP layer. bgTasks may be nil when nothing runs in the background.
func NewApplication(
	cfg *config.Config,
	log *slog.Logger,
	services *services.Services,
	bgTasks *tasks.BackgroundTasks,
) *Application {
	return &Application{
		cfg:       cfg,
		log:       log,
		Services:  services,
		validator: validator.New(),
		decoder:   decoder.New(),
		bgTasks:   bgTasks,
		done:      make(chan struct{}),
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}

// Close stops the goroutines owned by the HTTP layer, such as the limiter cleanup loop.
func (app *Application) Close() {
	app.closeOnce.Do(func() { close(app.done) })
}
