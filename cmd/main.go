package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"ecessbot/clients/courseinfo"
	"ecessbot/clients/discord"
	"ecessbot/config"
	"ecessbot/core/log"
	"ecessbot/handlers"
	"ecessbot/middleware"
	"ecessbot/models"
	"ecessbot/services/coursethreads"
	"ecessbot/services/jsonstore"
	"ecessbot/services/prompts"
	"ecessbot/services/rolemappings"
	"ecessbot/services/rolesession"
	"ecessbot/services/schedule"
	"ecessbot/services/threadpins"
	"ecessbot/usecases/courses"
	"ecessbot/usecases/pins"
	"ecessbot/usecases/reactionroles"
	"ecessbot/usecases/reconcile"
	"ecessbot/usecases/rolemapping"
	"ecessbot/utils"
)

type Options struct {
	EnvFile  string `long:"env-file" description:"Path to a .env file to load before reading the environment" default:".env"`
	DataDir  string `long:"data-dir" description:"Directory holding the JSON documents (overrides DATA_DIR)"`
	LogLevel string `long:"log-level" description:"debug, info, warn or error (overrides LOG_LEVEL)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Error("❌ Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	cfg, err := config.LoadConfig(opts.EnvFile)
	if err != nil {
		return err
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	instanceLock, err := utils.NewInstanceLock(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := instanceLock.TryLock(); err != nil {
		return err
	}
	defer func() {
		if err := instanceLock.Unlock(); err != nil {
			log.Warn("⚠️ Failed to release instance lock", "path", instanceLock.Path(), "error", err)
		}
	}()

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackAlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "ecessbot",
	})
	defer alertMiddleware.Wait()

	// Initialize the JSON document stores
	roleMappingsStore, err := jsonstore.New(cfg.DataDir, rolemappings.Filename, models.NewRoleMappingDocument)
	if err != nil {
		return err
	}
	threadPinsStore, err := jsonstore.New(cfg.DataDir, threadpins.Filename, models.NewThreadPinSet)
	if err != nil {
		return err
	}
	courseThreadsStore, err := jsonstore.New(cfg.DataDir, coursethreads.Filename, models.NewCourseThreadMap)
	if err != nil {
		return err
	}
	log.Info("📂 Using data files",
		"role_mappings", roleMappingsStore.Path(),
		"thread_pins", threadPinsStore.Path(),
		"course_threads", courseThreadsStore.Path())

	session, err := discordgo.New("Bot " + cfg.DiscordConfig.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	discordClient := discord.NewDiscordClient(session)
	courseInfoClient := courseinfo.NewClient(&http.Client{Timeout: 15 * time.Second}, cfg.CourseLookupConfig.Retries)

	roleMappingsService := rolemappings.NewRoleMappingsService(roleMappingsStore)
	threadPinsService := threadpins.NewThreadPinsService(threadPinsStore)
	courseThreadsService := coursethreads.NewCourseThreadsService(courseThreadsStore)
	roleSessionService := rolesession.NewRoleSessionService()
	promptsService := prompts.NewPromptsService(discordClient)
	scheduleService := schedule.NewScheduleService()

	roleMappingUseCase := rolemapping.NewRoleMappingUseCase(
		discordClient,
		roleMappingsService,
		roleSessionService,
		promptsService,
		cfg.DiscordConfig.CommandPrefix,
		cfg.SessionConfig.ConfirmTimeout,
	)
	reactionRolesUseCase := reactionroles.NewReactionRolesUseCase(discordClient, roleMappingsService)
	pinsUseCase := pins.NewPinsUseCase(discordClient, threadPinsService, cfg.ReconcileConfig.AutoArchiveDuration)
	coursesUseCase := courses.NewCoursesUseCase(
		discordClient,
		courseInfoClient,
		courseThreadsService,
		scheduleService,
		promptsService,
		cfg.CourseLookupConfig.Delay,
		cfg.ReconcileConfig.AutoArchiveDuration,
		cfg.SessionConfig.ButtonConfirmTimeout,
	)

	pinsReconciler := reconcile.NewReconciler(
		reconcile.DomainPins, discordClient, threadPinsService, cfg.ReconcileConfig.AutoArchiveDuration)
	coursesReconciler := reconcile.NewReconciler(
		reconcile.DomainCourses, discordClient, coursesUseCase.ThreadSource(), cfg.ReconcileConfig.AutoArchiveDuration)

	commandsHandler := handlers.NewCommandsHandler(
		discordClient,
		alertMiddleware,
		cfg.DiscordConfig,
		roleMappingUseCase,
		pinsUseCase,
		coursesUseCase,
	)
	eventsHandler := handlers.NewDiscordEventsHandler(
		discordClient,
		alertMiddleware,
		promptsService,
		commandsHandler,
		reactionRolesUseCase,
		cfg.EventWorkers,
		pinsReconciler,
		coursesReconciler,
	)
	eventsHandler.Register(session)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	log.Info("✅ Connected to the discord gateway", "bot_user_id", discordClient.BotUserID())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(handlers.NewRouter(discordClient)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		pinsReconciler.Run(groupCtx, cfg.ReconcileConfig.Interval, alertMiddleware.WrapBackgroundTask)
		return nil
	})
	group.Go(func() error {
		coursesReconciler.Run(groupCtx, cfg.ReconcileConfig.Interval, alertMiddleware.WrapBackgroundTask)
		return nil
	})
	group.Go(func() error {
		log.Info("✅ Listening", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("🛑 Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	})

	runErr := group.Wait()

	if err := session.Close(); err != nil {
		log.Warn("⚠️ Failed to close discord gateway", "error", err)
	}
	eventsHandler.Stop()
	log.Info("✅ Bot stopped gracefully")
	return runErr
}
