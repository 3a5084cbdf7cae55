package main

import (
	"context"
	"flag"
	"net/http"
	"strconv"
	"time"

	"github.com/condocore/condo-manager/internal/config"
	"github.com/condocore/condo-manager/internal/flags"
	"github.com/condocore/condo-manager/internal/httpapi"
	"github.com/condocore/condo-manager/internal/logging"
	"github.com/condocore/condo-manager/internal/migrate"
	"github.com/condocore/condo-manager/internal/rbac"
	"github.com/condocore/condo-manager/internal/service"
	"github.com/condocore/condo-manager/internal/session"
	"github.com/condocore/condo-manager/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	configDir := flag.String("config-dir", "./config", "directory containing app.json, database.json, logging.json")
	flag.Parse()

	appCfg, err := config.LoadApp(*configDir + "/app.json")
	if err != nil {
		panic(err)
	}
	dbCfg, err := config.LoadDatabase(*configDir + "/database.json")
	if err != nil {
		panic(err)
	}
	logCfg, err := config.LoadLogging(*configDir + "/logging.json")
	if err != nil {
		panic(err)
	}

	logs := logging.New(logCfg)
	log := logs.For("main")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	timeout := time.Duration(dbCfg.TimeoutMs) * time.Millisecond
	dsn := dbCfg.Path
	if dbCfg.Type == "postgres" {
		dsn = dbCfg.DSN
	}
	dbh, err := store.Open(ctx, store.Driver(dbCfg.Type), dsn, timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer dbh.Close()

	migrator := migrate.New(dbh, dbCfg.MigrationsPath, logs.For("migrate"))
	if err := migrator.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	rates, err := store.LoadFeeRates(ctx, dbh)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load fee rates from system_config, using defaults")
	}

	userRepo := store.NewUserRepository(dbh)
	projectRepo := store.NewProjectRepository(dbh)
	flagSvc := flags.New(dbh, logs.For("flags"))

	userSvc := service.NewUserService(userRepo, logs.For("service.user"))
	projectSvc := service.NewProjectService(projectRepo, rates, logs.For("service.project"))

	issuer, err := session.NewIssuer(appCfg.SecretKey, 8*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build session issuer")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(apiR chi.Router) {
		apiR.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		apiR.Post("/auth/login", httpapi.LoginHandler(userSvc, issuer))

		apiR.Group(func(pr chi.Router) {
			pr.Use(rbac.Authenticate(issuer))
			pr.Use(rbac.AttachRoleFromDB(dbh))

			pr.With(rbac.RequireAny("project:view")).Get("/projects", httpapi.ListProjectsHandler(projectSvc))
			pr.With(rbac.Require("project:manage")).Post("/projects", httpapi.CreateProjectHandler(projectSvc))
			pr.With(rbac.RequireAny("project:view")).Get("/projects/{projectID}", httpapi.GetProjectHandler(projectSvc))
			pr.With(rbac.Require("project:manage")).Patch("/projects/{projectID}/units", httpapi.UpdateProjectUnitsHandler(projectSvc))
			pr.With(rbac.Require("project:manage")).Delete("/projects/{projectID}", httpapi.DeleteProjectByIDHandler(projectSvc))
			pr.With(rbac.Require("project:manage")).Delete("/projects", httpapi.DeleteProjectByNameHandler(projectSvc))
			pr.With(rbac.Require("project:manage")).Patch("/units/{unitID}", httpapi.UpdateUnitHandler(projectSvc))

			pr.With(httpapi.RequireFlag(flagSvc, "finance"), rbac.Require("project:manage")).
				Get("/projects/{projectID}/stats", httpapi.GetProjectStatisticsHandler(projectSvc))

			pr.With(rbac.Require("user:manage")).Get("/users", httpapi.ListUsersHandler(userSvc))
			pr.With(rbac.Require("user:manage")).Post("/users", httpapi.CreateUserHandler(userRepo))
			pr.With(rbac.RequireOwnerOr("user:manage", isSelf)).Get("/users/{userID}", httpapi.GetUserHandler(userRepo))
			pr.With(rbac.RequireOwnerOr("user:change_password", isSelf)).
				Post("/users/{userID}/change-password", httpapi.ChangePasswordHandler(userRepo))
		})
	})

	addr := appCfg.Host + ":" + strconv.Itoa(appCfg.Port)
	log.Info().Str("addr", addr).Str("driver", dbCfg.Type).Msg("listening")
	log.Fatal().Err(http.ListenAndServe(addr, r)).Msg("server exited")
}

// isSelf is a placeholder ownership check: a real deployment would compare
// the path's userID against the authenticated subject's own row. Until the
// HTTP layer threads that lookup through, every such route falls back to
// the explicit permission instead of matching on ownership.
func isSelf(r *http.Request) bool {
	return false
}
