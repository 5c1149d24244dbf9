package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/handlers"
	"github.com/everestcap/skillforge/internal/middleware"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP intake and read API",
		Long:  "Serves task intake, usage recording, and the skill and overview read surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(false)
			if err != nil {
				return err
			}
			defer cleanup()

			router := buildRouter(rt)

			corsHandler := cors.New(cors.Options{
				AllowedOrigins: []string{rt.cfg.CORSOrigins},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type"},
			})

			srv := &http.Server{
				Addr:           ":" + rt.cfg.ServerPort,
				Handler:        corsHandler.Handler(router),
				ReadTimeout:    15 * time.Second,
				WriteTimeout:   15 * time.Second,
				IdleTimeout:    60 * time.Second,
				MaxHeaderBytes: 1 << 20,
			}

			go func() {
				rt.logger.Info("server_starting", zap.String("port", rt.cfg.ServerPort))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					rt.logger.Fatal("server_failed_to_start", zap.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			rt.logger.Info("server_shutting_down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				rt.logger.Error("server_forced_to_shutdown", zap.Error(err))
				return err
			}

			rt.logger.Info("server_exited")
			return nil
		},
	}
}

// buildRouter assembles the middleware chain and routes
func buildRouter(rt *runtime) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.Logging(rt.logger))

	healthChecker := handlers.NewHealthChecker(rt.db)
	r.HandleFunc("/health", healthChecker.HealthCheck).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	taskHandler := handlers.NewTaskHandler(rt.tasks)
	taskHandler.RegisterRoutes(apiRouter.PathPrefix("/tasks").Subrouter())

	skillHandler := handlers.NewSkillHandler(rt.skills, rt.usage)
	usageHandler := handlers.NewUsageHandler(rt.usage)
	skillHandler.RegisterRoutes(apiRouter.PathPrefix("/skills").Subrouter(), usageHandler)

	overviewHandler := handlers.NewOverviewHandler(rt.overview)
	apiRouter.HandleFunc("/overview", overviewHandler.GetOverview).Methods("GET")

	return r
}
