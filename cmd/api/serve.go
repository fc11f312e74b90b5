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

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/comment"
	commentrepo "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/comment/repo"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/dashboard"
	dashboardrepo "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/dashboard/repo"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/health"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/like"
	likerepo "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/like/repo"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/subscription"
	subscriptionrepo "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/subscription/repo"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/tweet"
	tweetrepo "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/tweet/repo"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/upload"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video"
	videorepo "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video/repo"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/media"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	sugar := rt.sugar
	sugar.Info("starting vidtube api")

	if migrate {
		if err := database.Migrate(ctx, rt.db.DB); err != nil {
			return err
		}
	}

	ids, err := utilities.IDGeneratorFromEnv()
	if err != nil {
		return fmt.Errorf("id generator: %w", err)
	}
	store, err := media.NewS3Store(ctx, media.ConfigFromEnv(), sugar)
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}
	uploads := upload.NewBuffer(upload.ConfigFromEnv(), sugar)

	authCfg := auth.ConfigFromEnv()
	users := userrepo.NewUserRepo(rt.db)
	sessions, err := auth.NewService(users, authCfg, sugar)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	videos := videorepo.NewVideoRepo(rt.db)
	userSvc := user.NewUserService(users, user.BcryptHasher{Cost: 12}, ids, store, sugar)
	videoSvc := video.NewService(videos, ids, store, sugar)
	commentSvc := comment.NewService(commentrepo.NewCommentRepo(rt.db), videos, ids, sugar)
	likeSvc := like.NewService(likerepo.NewLikeRepo(rt.db), ids, sugar)
	tweetSvc := tweet.NewService(tweetrepo.NewTweetRepo(rt.db), users, ids, sugar)
	subscriptionSvc := subscription.NewService(subscriptionrepo.NewSubscriptionRepo(rt.db), users, ids, sugar)
	dashboardSvc := dashboard.NewService(dashboardrepo.NewDashboardRepo(rt.db), users, sugar)

	handlers := router.Handlers{
		Users:         user.NewHandler(userSvc, sessions, uploads, sugar, authCfg.CookieSecure),
		Videos:        video.NewHandler(videoSvc, uploads, sugar),
		Comments:      comment.NewHandler(commentSvc, sugar),
		Likes:         like.NewHandler(likeSvc, sugar),
		Tweets:        tweet.NewHandler(tweetSvc, sugar),
		Subscriptions: subscription.NewHandler(subscriptionSvc, sugar),
		Dashboard:     dashboard.NewHandler(dashboardSvc, sugar),
		Health:        health.NewHandler(rt.db, sugar),
	}

	routerCfg := router.ConfigFromEnv()
	srv := &http.Server{
		Addr:              routerCfg.Addr,
		Handler:           router.RegisterRoutes(routerCfg, handlers, sessions, sugar),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sugar.Info("shutting down")
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
	return nil
}
